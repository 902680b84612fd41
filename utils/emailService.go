package utils

import (
	"fmt"
	"log"

	"learnhub/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService sends transactional mail through SendGrid. Without an API key
// messages are only logged.
type EmailService struct {
	apiKey string
	from   *mail.Email
	send   func(*mail.SGMailV3) error
}

func NewEmailService(cfg *config.Config) *EmailService {
	s := &EmailService{
		apiKey: cfg.SendgridApiKey,
		from:   mail.NewEmail(cfg.EmailSenderName, cfg.EmailSender),
	}
	s.send = func(m *mail.SGMailV3) error {
		resp, err := sendgrid.NewSendClient(s.apiKey).Send(m)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, resp.Body)
		}
		return nil
	}
	return s
}

// SendEmail delivers one HTML message per recipient
func (s *EmailService) SendEmail(to []string, subject string, htmlBody string) error {
	if len(to) == 0 {
		return nil
	}
	if s.apiKey == "" {
		log.Printf("[EMAIL] (dry run) to=%v subject=%q", to, subject)
		return nil
	}
	if err := s.send(s.buildMessage(to, subject, htmlBody)); err != nil {
		log.Printf("[EMAIL] error sending %q: %v", subject, err)
		return err
	}
	log.Printf("[EMAIL] sent %q to %d recipient(s)", subject, len(to))
	return nil
}

// SendTemplate wraps the body in the house layout
func (s *EmailService) SendTemplate(to []string, subject, heading, body string) error {
	return s.SendEmail(to, subject, getEmailTemplate(heading, body))
}

func (s *EmailService) buildMessage(to []string, subject, htmlBody string) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(s.from)
	m.Subject = subject
	m.AddContent(mail.NewContent("text/html", htmlBody))
	for _, addr := range to {
		p := mail.NewPersonalization()
		p.AddTos(mail.NewEmail("", addr))
		m.AddPersonalizations(p)
	}
	return m
}

// SendOTPEmail mails a verification code
func (s *EmailService) SendOTPEmail(otp, email string) error {
	body := fmt.Sprintf(`
		<p>Use the code below to verify your account. It is valid for 5 minutes.</p>
		<div class="info-box"><strong style="font-size: 22px; letter-spacing: 4px;">%s</strong></div>
		<p>If you did not request this, you can ignore this email.</p>
	`, otp)
	return s.SendTemplate([]string{email}, "Your LearnHub verification code", "Verify your account", body)
}

// SendWelcomeEmail greets a new account in the background
func (s *EmailService) SendWelcomeEmail(email, name string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>LearnHub</strong>! Your account has been created.</p>
		<p>Browse the catalog and enroll in your first course.</p>
	`, name)
	go s.SendTemplate([]string{email}, "Welcome to LearnHub", "Welcome Onboard!", body)
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1E3A5F; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1E3A5F; line-height: 1.6; }
			.content h2 { color: #1E3A5F; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #F2A93B; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>LEARNHUB</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; LearnHub. You receive this email because you have a LearnHub account.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}
