package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"
	"timetokens/src/config"
	"timetokens/src/db"
	"timetokens/src/lib"
	"timetokens/src/middlewares"
	"timetokens/src/models"
	"timetokens/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func timetokensRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	group := apiv1.Group("/timetokens")
	group.Use(middlewares.AuthMiddleware)

	group.
		POST("/buy", func(ctx *gin.Context) {
			var body types.BuyTokensRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ownerId := ctx.GetUint("id")
			gdb := db.GetDb()

			var emitter models.User
			err := gdb.
				Where(&models.User{ID: body.EmitterID}).
				First(&emitter).
				Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "expert not found"})
				return
			}
			if err != nil {
				log.Printf("Error retrieving emitter %d: %s\n", body.EmitterID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			price := emitter.Price
			if price == 0 {
				price = config.DEFAULT_TOKEN_PRICE_CENTS
			}
			amountCents := int64(price * body.Amount)

			wtx := models.TimeTokensTransaction{
				EmitterID: body.EmitterID,
				OwnerID:   ownerId,
				Amount:    body.Amount,
			}
			if err := gdb.Create(&wtx).Error; err != nil {
				log.Printf("Error creating TimeTokensTransaction: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}

			cs, err := lib.CreateCheckoutSession(
				ctx.Request.Context(),
				amountCents,
				"usd",
				fmt.Sprintf("%d time tokens (%s)", body.Amount, emitter.Name),
				map[string]string{
					"walletTransactionId": fmt.Sprint(wtx.ID),
				},
			)
			if err != nil {
				log.Printf("Error creating Checkout Session: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			// Payment mode sessions may not carry the PaymentIntent id yet;
			// reconciliation falls back to the metadata correlation.
			externalId := cs.ID
			if cs.PaymentIntent != nil {
				externalId = cs.PaymentIntent.ID
			}
			payment := models.Payment{
				ExternalID:          externalId,
				Amount:              amountCents,
				Currency:            "usd",
				WalletTransactionID: &wtx.ID,
			}
			if err := gdb.Create(&payment).Error; err != nil {
				log.Printf("Error creating Payment: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"url": cs.URL, "payment": payment.UID})
		}).
		GET("/experts", func(ctx *gin.Context) {
			ownerId := ctx.GetUint("id")
			cacheKey := fmt.Sprintf("timetokens:experts:%d", ownerId)
			rd := lib.GetRedisClient()
			if rd != nil {
				if cached, err := rd.Get(context.Background(), cacheKey).Result(); err == nil {
					ctx.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
					return
				}
			}
			gdb := db.GetDb()
			var wallets []models.TimeTokensWallet
			if err := gdb.
				Where(&models.TimeTokensWallet{OwnerID: ownerId}).
				Preload("Emitter").
				Order("created_at desc").
				Find(&wallets).
				Error; err != nil {
				log.Printf("Error retrieving wallets for owner %d: %s\n", ownerId, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			resp := gin.H{"experts": wallets}
			if rd != nil {
				if b, err := json.Marshal(resp); err == nil {
					if _, err := rd.SetEx(context.Background(), cacheKey, string(b), 5*time.Minute).Result(); err != nil {
						log.Printf("Error caching value [%s]: %s\n", cacheKey, err.Error())
					}
				}
			}
			ctx.JSON(http.StatusOK, resp)
		}).
		GET("/wallets/:emitterId", func(ctx *gin.Context) {
			var params types.WalletURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ownerId := ctx.GetUint("id")
			gdb := db.GetDb()
			var wallet models.TimeTokensWallet
			err := gdb.
				Where(&models.TimeTokensWallet{EmitterID: params.EmitterID, OwnerID: ownerId}).
				First(&wallet).
				Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.Status(http.StatusNotFound)
				return
			}
			if err != nil {
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"wallet": wallet})
		})
	return apiv1
}
