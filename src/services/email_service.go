// backend/src/services/email_service.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/username/tallytrace/backend/src/config"
	"github.com/username/tallytrace/backend/src/logger"
	"github.com/username/tallytrace/backend/src/models"
)

func NewEmailService() EmailService {
	if config.Cfg == nil {
		slog.Error("Configuration (config.Cfg) is nil. Email service will default to mock.")
		return &MockEmailService{}
	}

	provider := strings.ToLower(config.Cfg.EmailServiceProvider)
	logger.L.Info("Initializing email service", "provider", provider)

	switch provider {
	case "mailgun":
		if config.Cfg.MailgunDomain == "" || config.Cfg.MailgunPrivateAPIKey == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("Mailgun configuration incomplete (Domain, API Key, or SenderEmail missing). Falling back to MockEmailService.")
			return &MockEmailService{}
		}
		mg := mailgun.NewMailgun(config.Cfg.MailgunDomain, config.Cfg.MailgunPrivateAPIKey)
		logger.L.Info("Mailgun client initialized", "domain", config.Cfg.MailgunDomain)
		return &MailgunEmailService{
			mg:          mg,
			senderEmail: config.Cfg.SenderEmail,
			senderName:  config.Cfg.SenderName,
		}
	case "smtp":
		if config.Cfg.SMTPServer == "" || config.Cfg.SMTPUser == "" || config.Cfg.SMTPPassword == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("SMTP configuration incomplete. Falling back to MockEmailService.")
			return &MockEmailService{}
		}
		return &SMTPEmailService{
			SMTPServer:   config.Cfg.SMTPServer,
			SMTPPort:     config.Cfg.SMTPPort,
			SMTPUser:     config.Cfg.SMTPUser,
			SMTPPassword: config.Cfg.SMTPPassword,
			SenderEmail:  config.Cfg.SenderEmail,
		}
	default:
		logger.L.Info("Defaulting to MockEmailService.")
		return &MockEmailService{}
	}
}

func digestSubject(generatedAt time.Time) string {
	return fmt.Sprintf("Tally & Trace: upcoming bills and income for %s", generatedAt.Format("Jan 2, 2006"))
}

func buildDigestPlainText(reminders []models.UpcomingReminder, generatedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi,\n\nHere is what needs your attention as of %s:\n\n", generatedAt.Format("Jan 2, 2006"))
	if len(reminders) == 0 {
		b.WriteString("Nothing due in the lookahead window.\n")
	}
	for _, rem := range reminders {
		marker := " "
		if rem.Risk == models.RiskDanger {
			marker = "!"
		}
		fmt.Fprintf(&b, "%s %s  %-30s  %10.2f %s  (%s, %s)\n", marker, rem.OccurrenceDate, rem.Name, rem.Amount, rem.Currency, rem.EntryType, rem.Risk)
	}
	b.WriteString("\nLines marked with ! would overdraw the linked account.\n")
	b.WriteString("\nThanks,\nThe Tally & Trace Team")
	return b.String()
}

func buildDigestHTML(reminders []models.UpcomingReminder, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString(`<html><body style="font-family: Arial, sans-serif; line-height: 1.6;">`)
	fmt.Fprintf(&b, "<p>Hi,</p><p>Here is what needs your attention as of %s:</p>", generatedAt.Format("Jan 2, 2006"))
	if len(reminders) == 0 {
		b.WriteString("<p>Nothing due in the lookahead window.</p>")
	} else {
		b.WriteString(`<table cellpadding="6" cellspacing="0" border="1" style="border-collapse: collapse;">`)
		b.WriteString("<tr><th>Due</th><th>Name</th><th>Amount</th><th>Type</th><th>Risk</th></tr>")
		for _, rem := range reminders {
			style := ""
			if rem.Risk == models.RiskDanger {
				style = ` style="color: #b00020; font-weight: bold;"`
			}
			fmt.Fprintf(&b, "<tr%s><td>%s</td><td>%s</td><td align=\"right\">%.2f %s</td><td>%s</td><td>%s</td></tr>",
				style, rem.OccurrenceDate, rem.Name, rem.Amount, rem.Currency, rem.EntryType, rem.Risk)
		}
		b.WriteString("</table>")
	}
	b.WriteString("<p>Thanks,<br>The Tally &amp; Trace Team</p></body></html>")
	return b.String()
}

type SMTPEmailService struct {
	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SenderEmail  string
}

func (s *SMTPEmailService) SendReminderDigest(toEmail string, reminders []models.UpcomingReminder, generatedAt time.Time) error {
	from := s.SenderEmail
	to := []string{toEmail}
	subject := digestSubject(generatedAt)
	body := buildDigestPlainText(reminders, generatedAt)

	header := make(map[string]string)
	header["From"] = from
	header["To"] = toEmail
	header["Subject"] = subject
	header["MIME-version"] = "1.0"
	header["Content-Type"] = "text/plain; charset=\"UTF-8\""
	message := ""
	for k, v := range header {
		message += fmt.Sprintf("%s: %s\r\n", k, v)
	}
	message += "\r\n" + body
	auth := smtp.PlainAuth("", s.SMTPUser, s.SMTPPassword, s.SMTPServer)
	addr := fmt.Sprintf("%s:%d", s.SMTPServer, s.SMTPPort)
	err := smtp.SendMail(addr, auth, from, to, []byte(message))
	if err != nil {
		logger.L.Error("Failed to send reminder digest via SMTP", "error", err, "to", toEmail)
		return fmt.Errorf("failed to send reminder digest via SMTP: %w", err)
	}
	logger.L.Info("Reminder digest sent successfully via SMTP", "to", toEmail, "reminders", len(reminders))
	return nil
}

type MailgunEmailService struct {
	mg          mailgun.Mailgun
	senderEmail string
	senderName  string
}

func (s *MailgunEmailService) SendReminderDigest(toEmail string, reminders []models.UpcomingReminder, generatedAt time.Time) error {
	from := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	subject := digestSubject(generatedAt)

	message := s.mg.NewMessage(from, subject, buildDigestPlainText(reminders, generatedAt), toEmail)
	message.SetHtml(buildDigestHTML(reminders, generatedAt))
	message.AddTag("reminder-digest")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()
	resp, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("Failed to send reminder digest via Mailgun", "error", err, "to", toEmail, "mailgunResp", resp, "mailgunId", id)
		return fmt.Errorf("mailgun send failed: %w. Response: %s", err, resp)
	}
	logger.L.Info("Reminder digest sent successfully via Mailgun", "to", toEmail, "id", id, "reminders", len(reminders))
	return nil
}

type MockEmailService struct{}

func (m *MockEmailService) SendReminderDigest(toEmail string, reminders []models.UpcomingReminder, generatedAt time.Time) error {
	logger.L.Info("MockEmailService: Would send reminder digest.",
		"to", toEmail, "reminders", len(reminders), "generatedAt", generatedAt.Format("2006-01-02"))
	return nil
}
