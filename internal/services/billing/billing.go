// Package billing создает платёжные сессии и зеркалирует webhook-события
// платёжного провайдера в хранилище. Жизненный цикл подписки принадлежит
// провайдеру: сервис только отражает его канонические состояния.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/config"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/lib/sl"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
)

// ErrNoCustomer возвращается при попытке открыть портал управления
// подпиской без сохранённого покупателя у провайдера.
var ErrNoCustomer = errors.New("user has no billing customer")

// StripeClient описывает вызовы платёжного провайдера, используемые сервисом.
type StripeClient interface {
	NewCustomer(params *stripe.CustomerParams) (*stripe.Customer, error)
	NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	NewPortalSession(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error)
	GetSubscription(id string) (*stripe.Subscription, error)
}

// Repository определяет методы хранилища для зеркала подписок.
type Repository interface {
	GetStripeCustomerID(ctx context.Context, userUID string) (string, error)
	UpsertSubscription(ctx context.Context, sub models.Subscription) error
	UpdateSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID, status string, periodStart, periodEnd time.Time) (string, error)
	MarkSubscriptionStatusByCustomer(ctx context.Context, stripeCustomerID, status string) (string, error)
}

// Invalidator сбрасывает кешированную подписку пользователя.
type Invalidator interface {
	InvalidateSubscription(ctx context.Context, userUID string)
}

// Publisher публикует события биллинга для воркера уведомлений.
type Publisher interface {
	Publish(event models.BillingEvent) error
}

// Service реализует биллинг-операции.
type Service struct {
	stripe      StripeClient
	repo        Repository
	invalidator Invalidator
	publisher   Publisher
	cfg         config.Stripe
	log         *slog.Logger
}

// New создает Service. publisher может быть nil — тогда события не публикуются.
func New(stripeClient StripeClient, repo Repository, invalidator Invalidator, publisher Publisher, cfg config.Stripe, log *slog.Logger) *Service {
	return &Service{
		stripe:      stripeClient,
		repo:        repo,
		invalidator: invalidator,
		publisher:   publisher,
		cfg:         cfg,
		log:         log,
	}
}

// CreateCheckoutSession создает checkout-сессию подписки для пользователя
// и возвращает URL для перехода. Покупатель у провайдера создается при
// первом обращении.
func (s *Service) CreateCheckoutSession(ctx context.Context, user *models.User) (string, error) {
	const op = "billing.CreateCheckoutSession"

	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	siteURL := strings.TrimRight(s.cfg.SiteURL, "/")
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:          stripe.String(customerID),
		ClientReferenceID: stripe.String(user.UID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(siteURL + "/billing/success"),
		CancelURL:  stripe.String(siteURL + "/billing/cancel"),
	}
	sess, err := s.stripe.NewCheckoutSession(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return sess.URL, nil
}

// CreatePortalSession создает сессию портала управления подпиской.
func (s *Service) CreatePortalSession(ctx context.Context, user *models.User) (string, error) {
	const op = "billing.CreatePortalSession"

	customerID, err := s.repo.GetStripeCustomerID(ctx, user.UID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if customerID == "" {
		return "", ErrNoCustomer
	}

	siteURL := strings.TrimRight(s.cfg.SiteURL, "/")
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(siteURL + "/dashboard"),
	}
	sess, err := s.stripe.NewPortalSession(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return sess.URL, nil
}

func (s *Service) ensureCustomer(ctx context.Context, user *models.User) (string, error) {
	customerID, err := s.repo.GetStripeCustomerID(ctx, user.UID)
	if err != nil {
		return "", err
	}
	if customerID != "" {
		return customerID, nil
	}

	customer, err := s.stripe.NewCustomer(&stripe.CustomerParams{
		Email: stripe.String(user.Email),
		Metadata: map[string]string{
			"user_uid": user.UID,
		},
	})
	if err != nil {
		return "", err
	}
	return customer.ID, nil
}

func (s *Service) notify(userUID, email, kind string) {
	if s.publisher == nil {
		return
	}
	event := models.BillingEvent{Kind: kind, UserUID: userUID, Email: email}
	if err := s.publisher.Publish(event); err != nil {
		s.log.Warn("failed to publish billing event",
			slog.String("kind", kind), sl.Err(err))
	}
}
