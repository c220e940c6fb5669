package lib

import (
	"context"
	"os"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

// NewStripeClient replaces the package instance, used by tests.
func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// CreateCheckoutSession creates a hosted Checkout Session for a single
// priced line item. The metadata is mirrored onto the PaymentIntent so
// the webhook can correlate the payment back to its purpose.
func CreateCheckoutSession(ctx context.Context, amountCents int64, currency, productName string, metadata map[string]string) (*stripe.CheckoutSession, error) {
	sc := GetStripeClient()
	successUrl := os.Getenv("APP_HOST") + "/checkout/callback/success"
	cancelUrl := os.Getenv("APP_HOST") + "/checkout/callback/cancel"
	piParams := &stripe.CheckoutSessionCreatePaymentIntentDataParams{}
	for k, v := range metadata {
		piParams.AddMetadata(k, v)
	}
	createParams := stripe.CheckoutSessionCreateParams{
		SuccessURL:        stripe.String(successUrl),
		CancelURL:         stripe.String(cancelUrl),
		UIMode:            stripe.String("hosted"),
		Mode:              stripe.String("payment"),
		PaymentIntentData: piParams,
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(amountCents),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(productName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: metadata,
	}
	return sc.V1CheckoutSessions.Create(ctx, &createParams)
}
