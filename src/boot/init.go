package boot

import (
	"log"
	"time"
	"timetokens/src/db"
	"timetokens/src/lib"
	"timetokens/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.EventType{},
		&models.Booking{},
		&models.Attendee{},
		&models.BookingReference{},
		&models.Payment{},
		&models.TimeTokensWallet{},
		&models.TimeTokensTransaction{},
		&models.Subscription{},
		&models.WebhookEvent{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	id, err := lib.CreateCronJob(ExpireStaleTransactions, 1*time.Hour)
	if err != nil {
		log.Printf("Error running job: %s\n", err.Error())
		return
	}
	jobsWaitingInQueue := len(sched.Jobs())
	log.Println("Jobs in queue:", jobsWaitingInQueue)
	log.Printf("Job ID: %s\n", *id)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}

// ExpireStaleTransactions flags top-up transactions that never got paid.
// Expired rows are kept for the audit trail, never deleted.
func ExpireStaleTransactions() {
	db := db.GetDb()
	err := db.
		Transaction(func(tx *gorm.DB) error {
			err := tx.Model(&models.TimeTokensTransaction{}).
				Where("paid", false).
				Where("expired", false).
				Where("created_at < ?", time.Now().Add(-24*time.Hour)).
				Update("expired", true).Error
			if err != nil {
				return err
			}
			return nil
		})
	if err != nil {
		log.Printf("Error while processing expired transactions: %s\n", err.Error())
	}
}
