package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v79"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
)

// HandleWebhookEvent зеркалирует событие провайдера в хранилище.
// Неизвестные типы событий игнорируются без ошибки: провайдер шлёт
// больше, чем нам нужно. После изменения подписки кеш пользователя
// сбрасывается, чтобы права пересчитались немедленно.
func (s *Service) HandleWebhookEvent(ctx context.Context, event stripe.Event) error {
	const op = "billing.HandleWebhookEvent"
	log := s.log.With(slog.String("op", op), slog.String("event_type", string(event.Type)))

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, log, event)
	case "customer.subscription.updated":
		return s.handleSubscriptionUpdated(ctx, log, event)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(ctx, log, event)
	case "invoice.payment_failed":
		return s.handlePaymentFailed(ctx, log, event)
	default:
		log.Debug("ignoring billing event")
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, log *slog.Logger, event stripe.Event) error {
	const op = "billing.handleCheckoutCompleted"

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	userUID := sess.ClientReferenceID
	if userUID == "" {
		userUID = sess.Metadata["user_uid"]
	}
	if userUID == "" {
		log.Warn("checkout session without user reference", slog.String("session_id", sess.ID))
		return nil
	}
	if sess.Subscription == nil || sess.Customer == nil {
		log.Warn("checkout session without subscription", slog.String("session_id", sess.ID))
		return nil
	}

	// Сессия не несёт границ оплаченного периода, их знает только подписка.
	stripeSub, err := s.stripe.GetSubscription(sess.Subscription.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sub := models.Subscription{
		UserUID:              userUID,
		StripeCustomerID:     sess.Customer.ID,
		StripeSubscriptionID: stripeSub.ID,
		Status:               string(stripeSub.Status),
		CurrentPeriodStart:   time.Unix(stripeSub.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:     time.Unix(stripeSub.CurrentPeriodEnd, 0).UTC(),
	}
	if err := s.repo.UpsertSubscription(ctx, sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidator.InvalidateSubscription(ctx, userUID)

	var email string
	if sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}
	s.notify(userUID, email, models.BillingEventSubscribed)
	log.Info("subscription mirrored from checkout", slog.String("user_uid", userUID))
	return nil
}

func (s *Service) handleSubscriptionUpdated(ctx context.Context, log *slog.Logger, event stripe.Event) error {
	const op = "billing.handleSubscriptionUpdated"

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	userUID, err := s.repo.UpdateSubscriptionByStripeID(ctx, sub.ID,
		string(sub.Status),
		time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		time.Unix(sub.CurrentPeriodEnd, 0).UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if userUID == "" {
		// Подписка неизвестна зеркалу: checkout-событие ещё не доехало.
		log.Warn("subscription update for unknown subscription", slog.String("subscription_id", sub.ID))
		return nil
	}

	s.invalidator.InvalidateSubscription(ctx, userUID)
	log.Info("subscription updated", slog.String("user_uid", userUID), slog.String("status", string(sub.Status)))
	return nil
}

func (s *Service) handleSubscriptionDeleted(ctx context.Context, log *slog.Logger, event stripe.Event) error {
	const op = "billing.handleSubscriptionDeleted"

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	userUID, err := s.repo.UpdateSubscriptionByStripeID(ctx, sub.ID,
		models.StatusCanceled,
		time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		time.Unix(sub.CurrentPeriodEnd, 0).UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if userUID == "" {
		log.Warn("subscription delete for unknown subscription", slog.String("subscription_id", sub.ID))
		return nil
	}

	s.invalidator.InvalidateSubscription(ctx, userUID)
	s.notify(userUID, customerEmail(sub.Customer), models.BillingEventCanceled)
	log.Info("subscription canceled", slog.String("user_uid", userUID))
	return nil
}

func customerEmail(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.Email
}

func (s *Service) handlePaymentFailed(ctx context.Context, log *slog.Logger, event stripe.Event) error {
	const op = "billing.handlePaymentFailed"

	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if invoice.Customer == nil {
		log.Warn("invoice without customer", slog.String("invoice_id", invoice.ID))
		return nil
	}

	userUID, err := s.repo.MarkSubscriptionStatusByCustomer(ctx, invoice.Customer.ID, models.StatusPastDue)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if userUID == "" {
		log.Warn("payment failure for unknown customer", slog.String("customer_id", invoice.Customer.ID))
		return nil
	}

	s.invalidator.InvalidateSubscription(ctx, userUID)
	s.notify(userUID, invoice.CustomerEmail, models.BillingEventPaymentFailed)
	log.Info("subscription marked past due", slog.String("user_uid", userUID))
	return nil
}
