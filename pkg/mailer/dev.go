package mailer

import (
	"github.com/losclub/community-surveys/pkg/logger"
)

// DevMailer logs outgoing mail instead of sending it.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	logger.Info("[DEV MAIL]",
		"to", toEmail,
		"name", toName,
		"subject", subject,
		"text", text,
	)
	return "dev", nil
}

func (d *DevMailer) SendLoginLink(email, link string) error {
	logger.Info("[DEV MAIL] Login link",
		"to", email,
		"link", link,
	)
	return nil
}
