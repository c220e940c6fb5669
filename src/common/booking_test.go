package common

import (
	"context"
	"testing"
	"time"
	"timetokens/src/db"
	"timetokens/src/lib"
	"timetokens/src/models"
	"timetokens/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestTokenCost(t *testing.T) {
	cases := []struct {
		minutes int
		tokens  int
	}{
		{0, 0},
		{1, 1},
		{5, 1},
		{15, 3},
		{16, 4},
		{17, 4},
		{30, 6},
		{60, 12},
	}
	for _, c := range cases {
		assert.Equalf(t, c.tokens, TokenCost(c.minutes), "cost of %d minutes", c.minutes)
	}
}

type fakeEventManager struct {
	refs    []types.EventReference
	created int
}

func (f *fakeEventManager) Create(ctx context.Context, evt *types.CalendarEvent) (*types.ScheduleResult, error) {
	f.created++
	return &types.ScheduleResult{ReferencesToCreate: f.refs}, nil
}

// expectBookingLookups queues the booking row with its preloads, the
// booker lookup and the wallet lookup shared by the confirmation tests.
func expectBookingLookups(mock sqlmock.Sqlmock, requiresConfirmation bool, walletAmount int) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)

	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "uid", "title", "start_time", "end_time", "status", "paid", "responses", "event_type_id", "user_id"}).
			AddRow(1, "bk_abc", "Consultation", start, end, "pending", false, []byte(`{"email":"booker@example.com"}`), 7, 2))
	mock.ExpectQuery(`SELECT \* FROM "attendees"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "name", "email", "locale"}))
	mock.ExpectQuery(`SELECT \* FROM "event_types"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "title", "length", "requires_confirmation"}).
			AddRow(7, "Consultation", 30, requiresConfirmation))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "name", "email", "time_zone", "locale", "tokens"}).
			AddRow(2, "Expert", "expert@example.com", "Europe/London", "en", 100))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."email"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "name", "email"}).
			AddRow(3, "Booker", "booker@example.com"))
	mock.ExpectQuery(`SELECT \* FROM "time_tokens_wallets"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "emitter_id", "owner_id", "amount"}).
			AddRow(11, 2, 3, walletAmount))
}

func TestBookingPaymentConfirmed(t *testing.T) {
	d, mock := NewMockDB()
	db.NewDB(d)
	mock.MatchExpectationsInOrder(false)

	fake := &fakeEventManager{refs: []types.EventReference{
		{Type: "google_calendar", UID: "ref_1", MeetingID: "cal_evt_1", MeetingURL: "https://meet.example.com/abc"},
	}}
	NewEventManagerFactory(func(u *models.User) lib.EventManager { return fake })
	confirmed := make(chan *types.CalendarEvent, 1)
	scheduled := make(chan *types.CalendarEvent, 1)
	NewNotifier(
		func(evt *types.CalendarEvent) { scheduled <- evt },
		func(evt *types.CalendarEvent) { confirmed <- evt },
	)

	// 30 minutes costs 6 tokens; wallet holds 100, no shortfall writes.
	expectBookingLookups(mock, false, 100)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payments" SET "success"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "bookings" SET "paid"=\$1,"status"=\$2`).
		WithArgs(true, "accepted", sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "booking_references"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))
	mock.ExpectCommit()

	bid := uint(1)
	res := applyBookingPayment(context.Background(), &models.Payment{ID: 5, BookingID: &bid})

	assert.Equal(t, Applied, res.Kind)
	assert.Equal(t, "Booking with id '1' was paid and confirmed.", res.Message)
	assert.Equal(t, 1, fake.created)

	select {
	case evt := <-confirmed:
		assert.Equal(t, "bk_abc", evt.UID)
		assert.Equal(t, "expert@example.com", evt.Organizer.Email)
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation email was never dispatched")
	}
	select {
	case <-scheduled:
		t.Fatal("scheduled email dispatched for a confirmed booking")
	default:
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingPaymentRequiresConfirmation(t *testing.T) {
	d, mock := NewMockDB()
	db.NewDB(d)
	mock.MatchExpectationsInOrder(false)

	fake := &fakeEventManager{refs: []types.EventReference{
		{Type: "google_calendar", UID: "ref_2"},
	}}
	NewEventManagerFactory(func(u *models.User) lib.EventManager { return fake })
	confirmed := make(chan *types.CalendarEvent, 1)
	scheduled := make(chan *types.CalendarEvent, 1)
	NewNotifier(
		func(evt *types.CalendarEvent) { scheduled <- evt },
		func(evt *types.CalendarEvent) { confirmed <- evt },
	)

	expectBookingLookups(mock, true, 100)

	// Payment never bypasses the manual confirmation step: the update
	// carries paid only, the status column stays pending.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payments" SET "success"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "bookings" SET "paid"=\$1,"updated_at"=\$2`).
		WithArgs(true, sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "booking_references"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(22))
	mock.ExpectCommit()

	bid := uint(1)
	res := applyBookingPayment(context.Background(), &models.Payment{ID: 5, BookingID: &bid})

	assert.Equal(t, Applied, res.Kind)

	select {
	case <-scheduled:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled email was never dispatched")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingPaymentShortfall(t *testing.T) {
	d, mock := NewMockDB()
	db.NewDB(d)
	mock.MatchExpectationsInOrder(false)

	fake := &fakeEventManager{}
	NewEventManagerFactory(func(u *models.User) lib.EventManager { return fake })
	NewNotifier(func(*types.CalendarEvent) {}, func(*types.CalendarEvent) {})

	// Wallet holds 2 of the 6 tokens owed: the wallet empties and the
	// emitter's own balance covers the remaining 4.
	expectBookingLookups(mock, false, 2)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "time_tokens_wallets" SET "amount"=amount - \$1`).
		WithArgs(2, sqlmock.AnyArg(), 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" SET "tokens"=tokens - \$1`).
		WithArgs(4, sqlmock.AnyArg(), uint(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payments" SET "success"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "bookings" SET "paid"=\$1,"status"=\$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	bid := uint(1)
	res := applyBookingPayment(context.Background(), &models.Payment{ID: 5, BookingID: &bid})

	assert.Equal(t, Applied, res.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingPaymentWithoutBookerFails(t *testing.T) {
	d, mock := NewMockDB()
	db.NewDB(d)
	mock.MatchExpectationsInOrder(false)

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "uid", "title", "start_time", "end_time", "status", "paid", "responses", "event_type_id", "user_id"}).
			AddRow(1, "bk_abc", "Consultation", start, start.Add(30*time.Minute), "pending", false, []byte(`{}`), 7, 2))
	mock.ExpectQuery(`SELECT \* FROM "attendees"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "event_types"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(2, "expert@example.com"))

	bid := uint(1)
	res := applyBookingPayment(context.Background(), &models.Payment{ID: 5, BookingID: &bid})

	assert.Equal(t, Failed, res.Kind)
	assert.Equal(t, FailureNotFound, res.Failure)
	assert.Contains(t, res.Message, "no booker found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
