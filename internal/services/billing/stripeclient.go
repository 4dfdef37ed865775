package billing

import (
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// APIClient — реализация StripeClient поверх официального SDK провайдера.
type APIClient struct {
	api *client.API
}

// NewAPIClient создает клиент провайдера с переданным секретным ключом.
func NewAPIClient(secretKey string) *APIClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &APIClient{api: api}
}

func (c *APIClient) NewCustomer(params *stripe.CustomerParams) (*stripe.Customer, error) {
	return c.api.Customers.New(params)
}

func (c *APIClient) NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return c.api.CheckoutSessions.New(params)
}

func (c *APIClient) NewPortalSession(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	return c.api.BillingPortalSessions.New(params)
}

func (c *APIClient) GetSubscription(id string) (*stripe.Subscription, error) {
	return c.api.Subscriptions.Get(id, nil)
}
