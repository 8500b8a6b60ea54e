package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
	"github.com/younegotiate/negotiate-api/internal/config"
	"github.com/younegotiate/negotiate-api/internal/models"
	"github.com/younegotiate/negotiate-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

const appURL = "https://app.younegotiate.app"

type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

func (s *EmailService) SendRecoveryCode(ctx context.Context, user *models.User, code string) error {
	data := struct {
		Name    string
		Code    string
		Minutes int
		AppURL  string
	}{
		Name:    user.FullName,
		Code:    code,
		Minutes: 15,
		AppURL:  appURL,
	}

	body, err := s.renderTemplate("recovery_code.html", data)
	if err != nil {
		return err
	}

	return s.send(user.Email, "Password Recovery Code", body)
}

func (s *EmailService) SendOfferAccepted(ctx context.Context, consumer *models.Consumer, amount float64, planDescription string) error {
	data := struct {
		Name            string
		AccountNumber   string
		Amount          string
		PlanDescription string
		AppURL          string
	}{
		Name:            consumer.FullName(),
		AccountNumber:   consumer.AccountNumber,
		Amount:          fmt.Sprintf("$%.2f", amount),
		PlanDescription: planDescription,
		AppURL:          appURL,
	}

	body, err := s.renderTemplate("offer_accepted.html", data)
	if err != nil {
		return err
	}

	return s.send(consumer.Email, "Your Offer Was Accepted", body)
}

func (s *EmailService) SendCounterOffer(ctx context.Context, consumer *models.Consumer, amount float64) error {
	data := struct {
		Name          string
		AccountNumber string
		Amount        string
		AppURL        string
	}{
		Name:          consumer.FullName(),
		AccountNumber: consumer.AccountNumber,
		Amount:        fmt.Sprintf("$%.2f", amount),
		AppURL:        appURL,
	}

	body, err := s.renderTemplate("counter_offer.html", data)
	if err != nil {
		return err
	}

	return s.send(consumer.Email, "You Received a Counter Offer", body)
}

func (s *EmailService) SendPaymentReceipt(ctx context.Context, consumer *models.Consumer, transaction *models.Transaction, remainingBalance float64) error {
	data := struct {
		Name             string
		AccountNumber    string
		Amount           string
		ReferenceID      string
		RemainingBalance string
		PaidOn           string
		AppURL           string
	}{
		Name:             consumer.FullName(),
		AccountNumber:    consumer.AccountNumber,
		Amount:           fmt.Sprintf("$%.2f", transaction.Amount),
		ReferenceID:      transaction.ReferenceID,
		RemainingBalance: fmt.Sprintf("$%.2f", remainingBalance),
		PaidOn:           transaction.CreatedAt.Format("01/02/2006"),
		AppURL:           appURL,
	}

	body, err := s.renderTemplate("payment_receipt.html", data)
	if err != nil {
		return err
	}

	return s.send(consumer.Email, "Payment Receipt", body)
}

func (s *EmailService) SendPaymentFailed(ctx context.Context, consumer *models.Consumer, amount float64) error {
	data := struct {
		Name          string
		AccountNumber string
		Amount        string
		AppURL        string
	}{
		Name:          consumer.FullName(),
		AccountNumber: consumer.AccountNumber,
		Amount:        fmt.Sprintf("$%.2f", amount),
		AppURL:        appURL,
	}

	body, err := s.renderTemplate("payment_failed.html", data)
	if err != nil {
		return err
	}

	return s.send(consumer.Email, "Payment Failed", body)
}

func (s *EmailService) SendAccountSettled(ctx context.Context, consumer *models.Consumer) error {
	data := struct {
		Name          string
		AccountNumber string
		AppURL        string
	}{
		Name:          consumer.FullName(),
		AccountNumber: consumer.AccountNumber,
		AppURL:        appURL,
	}

	body, err := s.renderTemplate("account_settled.html", data)
	if err != nil {
		return err
	}

	return s.send(consumer.Email, "Congratulations, Your Account Is Settled", body)
}

func (s *EmailService) send(to, subject, html string) error {
	if s.config.ResendAPIKey == "" {
		logger.Debug(fmt.Sprintf("Email skipped (Resend not configured) To: %s | Subject: %s", to, subject))
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	_, err := s.resendClient.Emails.Send(params)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", to, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: %s", to, subject))
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
