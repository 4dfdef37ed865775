package models

// Виды событий биллинга.
const (
	BillingEventSubscribed    = "subscription.activated"
	BillingEventCanceled      = "subscription.canceled"
	BillingEventPaymentFailed = "subscription.payment_failed"
)

// BillingEvent публикуется в очередь при изменении состояния подписки
// и потребляется воркером уведомлений.
type BillingEvent struct {
	Kind    string `json:"kind"`
	UserUID string `json:"user_uid"`
	Email   string `json:"email,omitempty"`
}
