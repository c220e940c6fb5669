package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"timetokens/src/config"
	"timetokens/src/db"
	"timetokens/src/lib"
	"timetokens/src/middlewares"
	"timetokens/src/models"
	"timetokens/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func subscriptionRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	group := apiv1.Group("/subscriptions")
	group.Use(middlewares.AuthMiddleware)

	group.
		POST("/upgrade", func(ctx *gin.Context) {
			var body types.UpgradeSubscriptionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			gdb := db.GetDb()

			var user models.User
			if err := gdb.Where(&models.User{ID: userId}).First(&user).Error; err != nil {
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if user.Level >= body.Level {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("already at level %d", user.Level)})
				return
			}

			sub := models.Subscription{
				UserID: userId,
				Level:  body.Level,
			}
			if err := gdb.Create(&sub).Error; err != nil {
				log.Printf("Error creating Subscription: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			amountCents := int64(body.Level) * config.SUBSCRIPTION_LEVEL_PRICE_CENTS
			cs, err := lib.CreateCheckoutSession(
				ctx.Request.Context(),
				amountCents,
				"usd",
				fmt.Sprintf("Plan upgrade to level %d", body.Level),
				map[string]string{
					"subscriptionId": fmt.Sprint(sub.ID),
				},
			)
			if err != nil {
				log.Printf("Error creating Checkout Session: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			externalId := cs.ID
			if cs.PaymentIntent != nil {
				externalId = cs.PaymentIntent.ID
			}
			payment := models.Payment{
				ExternalID:     externalId,
				Amount:         amountCents,
				Currency:       "usd",
				SubscriptionID: &sub.ID,
			}
			if err := gdb.Create(&payment).Error; err != nil {
				log.Printf("Error creating Payment: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"url": cs.URL, "payment": payment.UID})
		}).
		GET("", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			gdb := db.GetDb()
			var sub models.Subscription
			err := gdb.
				Where(&models.Subscription{UserID: userId, Paid: true}).
				Order("created_at desc").
				First(&sub).
				Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.Status(http.StatusNotFound)
				return
			}
			if err != nil {
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"subscription": sub})
		})
	return apiv1
}
