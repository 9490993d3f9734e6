// Package notifier отправляет пользователям письма о событиях их платежей.
package notifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/wealth-management/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/wealth-management/internal/lib/sl"
	"github.com/magabrotheeeer/wealth-management/internal/lib/smtp"
	"github.com/magabrotheeeer/wealth-management/internal/models"
)

// Service собирает и отправляет письма через SMTP.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(log *slog.Logger, transport smtp.TransportInterface) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// PaymentSubmitted обрабатывает событие payment.submitted: письмо плательщику
// о том, что заявка получена и ждёт проверки.
func (s *Service) PaymentSubmitted(body []byte) error {
	const op = "notifier.PaymentSubmitted"

	var event models.PaymentSubmitted
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %v: %w", op, err, rabbitmq.ErrPermanent)
	}
	if event.Email == "" {
		return fmt.Errorf("%s: event %d has no recipient: %w", op, event.PaymentID, rabbitmq.ErrPermanent)
	}

	name := event.FirstName
	if name == "" {
		name = event.Email
	}
	subject := "Payment received: " + event.PlanName
	bodyText := fmt.Sprintf("Hello, %s!\n\n"+
		"We received your payment for the %s plan (%.2f).\n"+
		"Reference: %s\n\n"+
		"The payment is pending verification. We will activate your subscription once it is confirmed.",
		name, event.PlanName, event.Price, event.PaymentReference)

	if err := s.sendEmail([]string{event.Email}, subject, bodyText); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		"From: " + from,
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
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
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
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent", slog.Any("to", to))
	return nil
}
