package utils

import (
	"fmt"

	"lms/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail delivers a transactional email through SendGrid. Callers run this
// in a goroutine; failures are logged and never propagated to the request.
func SendEmail(toName, toEmail, subject, htmlBody string) error {
	if config.AppConfig.SendGridApiKey == "" {
		config.Log.Warnw("SendGrid not configured, skipping email", "to", toEmail, "subject", subject)
		return nil
	}

	from := mail.NewEmail("LearnSphere", config.AppConfig.EmailSender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", getEmailTemplate(subject, htmlBody))

	client := sendgrid.NewSendClient(config.AppConfig.SendGridApiKey)
	resp, err := client.Send(message)
	if err != nil {
		config.Log.Errorw("Failed to send email", "to", toEmail, "subject", subject, "error", err)
		return err
	}
	if resp.StatusCode >= 400 {
		config.Log.Errorw("SendGrid rejected email", "to", toEmail, "subject", subject, "status", resp.StatusCode, "body", resp.Body)
		return fmt.Errorf("sendgrid status %d", resp.StatusCode)
	}
	return nil
}

// getEmailTemplate wraps body content in the platform layout
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1B2A4A; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B2A4A; line-height: 1.6; }
			.content h2 { color: #1B2A4A; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #4C9F70; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #4C9F70; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>LEARNSPHERE</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 LearnSphere. All rights reserved.
			</div>
		</div>
	</body>
	</html>`, title, bodyContent)
}
