package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"timetokens/src/common"
	"timetokens/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

type webhookHandler func(ctx context.Context, event stripe.Event) common.Result

// Recognized provider event types. Anything else is acknowledged with
// 202 so the provider stops redelivering events we do not care about.
var webhookHandlers = map[stripe.EventType]webhookHandler{
	"payment_intent.succeeded": common.HandlePaymentSuccess,
	"application_fee.created":  common.HandlePaymentSuccess,
}

func webhookError(ctx *gin.Context, status int, message string) {
	body := gin.H{"message": message}
	if !utils.IsProd() {
		body["stack"] = string(debug.Stack())
	}
	ctx.JSON(status, body)
}

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		// The signature covers the exact bytes on the wire, so the body
		// has to be read raw before any parsing happens.
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			webhookError(ctx, http.StatusServiceUnavailable, "could not read request body")
			return
		}
		sig := ctx.GetHeader("Stripe-Signature")
		if sig == "" {
			webhookError(ctx, http.StatusBadRequest, "Missing stripe-signature")
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		if whsecret == "" {
			webhookError(ctx, http.StatusInternalServerError, "Missing STRIPE_WEBHOOK_SECRET")
			return
		}
		event, err := webhook.ConstructEvent(payload, sig, whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			webhookError(ctx, http.StatusBadRequest, "Webhook signature verification failed")
			return
		}
		log.Printf("[StripeEvent] %s %s\n", event.ID, event.Type)

		handler, ok := webhookHandlers[event.Type]
		if !ok {
			webhookError(ctx, http.StatusAccepted, "Unhandled Stripe Webhook event type "+string(event.Type))
			return
		}
		res := handler(ctx.Request.Context(), event)
		log.Printf("[StripeEvent] %s -> %d %s\n", event.ID, res.StatusCode(), res.Message)
		switch res.Kind {
		case common.Applied:
			ctx.JSON(http.StatusOK, gin.H{"received": true, "message": res.Message})
		case common.Skipped:
			ctx.JSON(http.StatusAccepted, gin.H{"received": true, "message": res.Message})
		default:
			webhookError(ctx, res.StatusCode(), res.Message)
		}
	})
	return apiv1
}
