// Package notifier отправляет письма о событиях биллинга, потребляя
// сообщения из очереди воркером уведомлений.
package notifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/lib/sl"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/lib/smtp"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
)

// Service потребляет биллинговые события и отправляет письма.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает Service с переданным SMTP-транспортом.
func New(transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// HandleBillingEvent обрабатывает одно сообщение очереди. Событие без
// адреса пропускается с предупреждением: повторная доставка его не
// исправит, а блокировать очередь бессмысленно.
func (s *Service) HandleBillingEvent(body []byte) error {
	var event models.BillingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal billing event", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}
	if event.Email == "" {
		s.log.Warn("billing event without email, skipping",
			slog.String("kind", event.Kind), slog.String("user_uid", event.UserUID))
		return nil
	}

	subject, bodyText, ok := composeEmail(event)
	if !ok {
		s.log.Warn("unknown billing event kind, skipping", slog.String("kind", event.Kind))
		return nil
	}

	return s.sendEmail([]string{event.Email}, subject, bodyText)
}

func composeEmail(event models.BillingEvent) (subject, body string, ok bool) {
	switch event.Kind {
	case models.BillingEventSubscribed:
		return "Your subscription is active",
			"Hello!\n\nYour subscription is now active: unlimited sermon and Bible study generation is unlocked.\n\nThank you for subscribing.",
			true
	case models.BillingEventCanceled:
		return "Your subscription has been canceled",
			"Hello!\n\nYour subscription has been canceled. You can keep using the free plan or resubscribe at any time from your dashboard.",
			true
	case models.BillingEventPaymentFailed:
		return "Payment failed for your subscription",
			"Hello!\n\nWe could not charge your card for the current billing period. Please update your payment method in the billing portal to keep unlimited access.",
			true
	}
	return "", "", false
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
