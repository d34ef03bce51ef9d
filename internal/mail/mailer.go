// Package mail sends transactional email over SMTP using gomail.
package mail

import (
	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"

	"moneymap/internal/config"
	"moneymap/internal/services"
)

// SMTPMailer implements services.Mailer over a plain SMTP connection.
type SMTPMailer struct {
	dialer      *gomail.Dialer
	from        string
	frontendURL string
}

// New creates an SMTPMailer from the application configuration.
func New(cfg *config.Config) (*SMTPMailer, error) {
	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", cfg.SMTPPort, err)
	}

	return &SMTPMailer{
		dialer:      gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUsername, cfg.SMTPPassword),
		from:        cfg.SMTPFrom,
		frontendURL: cfg.FrontendURL,
	}, nil
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

// SendVerificationEmail sends the post-registration verification link.
func (m *SMTPMailer) SendVerificationEmail(to, token string) error {
	verifyURL := fmt.Sprintf("%s/verify-email/%s", m.frontendURL, token)
	body := fmt.Sprintf(`
      <div style="max-width: 600px; margin: 0 auto; padding: 20px; font-family: Arial, sans-serif;">
        <h2>Welcome to MoneyMap!</h2>
        <p>Thank you for registering with MoneyMap. Please verify your email address to continue:</p>
        <p><a href="%s">Verify Email</a></p>
        <p>This link will expire in 24 hours.</p>
        <p style="color: #7f8c8d; font-size: 12px;">If you didn't create an account, please ignore this email.</p>
      </div>`, verifyURL)

	return m.send(to, "Verify Your Email - MoneyMap", body)
}

// SendTempPasswordEmail sends a temporary password after a reset request.
func (m *SMTPMailer) SendTempPasswordEmail(to, tempPassword string) error {
	body := fmt.Sprintf(`
      <div style="max-width: 600px; margin: 0 auto; padding: 20px; font-family: Arial, sans-serif;">
        <h2>Password Reset</h2>
        <p>Here is your temporary password for MoneyMap:</p>
        <p style="font-family: monospace; font-size: 18px;">%s</p>
        <p>Please login with this temporary password and change it immediately in your account settings.</p>
        <p style="color: #7f8c8d; font-size: 12px;">If you didn't request this password reset, please contact support immediately.</p>
      </div>`, tempPassword)

	return m.send(to, "Temporary Password - MoneyMap", body)
}

// SendBudgetAlert sends a threshold-crossing notification for one budget.
func (m *SMTPMailer) SendBudgetAlert(to string, alert services.AlertDecision) error {
	subject := fmt.Sprintf("Budget Alert: %s spending threshold reached", alert.Category)
	body := fmt.Sprintf(`
      <h2>Budget Alert for %s</h2>
      <p>You have spent %.1f%% of your budget for %s.</p>
      <ul>
        <li>Budget: $%.2f</li>
        <li>Spent: $%.2f</li>
        <li>Remaining: $%.2f</li>
      </ul>
      <p>This alert was triggered because you exceeded %.0f%% of your budget.</p>`,
		alert.Category, alert.Percentage, alert.Category,
		alert.BudgetAmount, alert.Spent, alert.BudgetAmount-alert.Spent,
		alert.Threshold)

	return m.send(to, subject, body)
}
