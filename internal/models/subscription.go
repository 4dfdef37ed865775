package models

import "time"

// Статусы подписки, приходящие от платёжного провайдера.
// Для права на генерацию значим только StatusActive.
const (
	StatusActive     = "active"
	StatusCanceled   = "canceled"
	StatusPastDue    = "past_due"
	StatusIncomplete = "incomplete"
)

// Subscription отражает строку user_subscriptions — зеркало состояния
// подписки у платёжного провайдера. Сервис никогда не изменяет её напрямую,
// кроме как при обработке webhook-событий провайдера.
type Subscription struct {
	UserUID              string    // Идентификатор пользователя
	StripeCustomerID     string    // Идентификатор покупателя у провайдера
	StripeSubscriptionID string    // Идентификатор подписки у провайдера
	Status               string    // Статус подписки (active, canceled, ...)
	CurrentPeriodStart   time.Time // Начало оплаченного периода
	CurrentPeriodEnd     time.Time // Конец оплаченного периода
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsActive сообщает, даёт ли подписка безлимитный доступ в момент now.
// Просроченный период имеет приоритет над устаревшим статусом active.
func (s *Subscription) IsActive(now time.Time) bool {
	if s == nil {
		return false
	}
	return s.Status == StatusActive && s.CurrentPeriodEnd.After(now)
}
