package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
	"timetokens/src/db"
	"timetokens/src/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB    *gorm.DB
	Mock  *sqlmock.Sqlmock
	Token *string
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	d, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: d,
	}))
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

const whsecret = "whsec_test_secret"

// stripeSignature signs a payload the way the provider does: the v1
// scheme is an HMAC-SHA256 over "<timestamp>.<payload>".
func stripeSignature(secret string, payload []byte, at time.Time) string {
	ts := fmt.Sprint(at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func (s *TestSuite) SetupSuite() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookingstatus", bookingStatusValidatorFunc)
	}
	os.Setenv("STRIPE_WEBHOOK_SECRET", whsecret)

	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = &mock

	token, err := utils.GenerateJWT(1, "someone@example.com")
	if err != nil {
		log.Fatalf("Error generating JWT token: %s\n", err.Error())
		return
	}
	s.Token = &token
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	apiv1Group(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestStripeWebhook() {
	router := setupRouter()
	stripeWebhookRoute(router)

	s.Run("Should answer non-POST methods with 405", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/webhook/stripe", nil)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 405, w.Code)
	})

	s.Run("Should reject a request without a signature header", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/webhook/stripe", strings.NewReader(`{}`))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
		rbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		assert.Equal(s.T(), "Missing stripe-signature", gjson.GetBytes(rbytes, "message").String())
	})

	s.Run("Should reject a tampered signature", func() {
		payload := []byte(`{"id":"evt_bad","type":"payment_intent.succeeded"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/webhook/stripe", strings.NewReader(string(payload)))
		req.Header.Set("Stripe-Signature", stripeSignature("whsec_wrong_secret", payload, time.Now()))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
		rbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		assert.Contains(s.T(), gjson.GetBytes(rbytes, "message").String(), "signature verification failed")
	})

	s.Run("Should acknowledge an unhandled event type with 202", func() {
		payload := []byte(fmt.Sprintf(`{"id":"evt_1","type":"customer.created","api_version":%q,"data":{"object":{}}}`, stripe.APIVersion))
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/webhook/stripe", strings.NewReader(string(payload)))
		req.Header.Set("Stripe-Signature", stripeSignature(whsecret, payload, time.Now()))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 202, w.Code)
		rbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		assert.Contains(s.T(), gjson.GetBytes(rbytes, "message").String(), "customer.created")
	})

	s.Run("Should skip a replayed event id with 202", func() {
		mock := *s.Mock
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "webhook_events"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectCommit()

		payload := []byte(fmt.Sprintf(`{"id":"evt_dup","type":"payment_intent.succeeded","api_version":%q,"data":{"object":{"id":"pi_1"}}}`, stripe.APIVersion))
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/webhook/stripe", strings.NewReader(string(payload)))
		req.Header.Set("Stripe-Signature", stripeSignature(whsecret, payload, time.Now()))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 202, w.Code)
		rbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		assert.True(s.T(), gjson.GetBytes(rbytes, "received").Bool())
		assert.Contains(s.T(), gjson.GetBytes(rbytes, "message").String(), "already processed")
		assert.NoError(s.T(), mock.ExpectationsWereMet())
	})
}

func (s *TestSuite) TestMalformedAuthorizationHeader() {
	router := setupRouter()
	bookingsRoutes(router)

	// A bare scheme with no token must be rejected, not crash the split.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/bookings", nil)
	req.Header.Set("Authorization", "Bearer")
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 401, w.Code)
}

func (s *TestSuite) TestBookingsFilters() {
	router := setupRouter()
	bookingsRoutes(router)

	mock := *s.Mock
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "email"}).
			AddRow(1, "someone@example.com"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/bookings?status=bogus", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *s.Token))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	assert.NotEmpty(s.T(), gjson.GetBytes(rbytes, "error").String())
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
