package email

import (
	"foodshare_backend/internal/logger"
)

// Provider sends email.
type Provider interface {
	Send(email *Email) error
	// SendTemplate renders templateName and sends it as the HTML body.
	SendTemplate(to []string, subject string, templateName string, data TemplateData) error
	Close() error
}

// LogProvider records messages in the log instead of sending them. It is used
// when SMTP is not configured.
type LogProvider struct {
	renderer *TemplateManager
}

func NewLogProvider(renderer *TemplateManager) *LogProvider {
	return &LogProvider{renderer: renderer}
}

func (p *LogProvider) Send(email *Email) error {
	logger.Info("Email suppressed (SMTP not configured)", "to", email.To, "subject", email.Subject)
	return nil
}

func (p *LogProvider) SendTemplate(to []string, subject string, templateName string, data TemplateData) error {
	if _, err := p.renderer.Render(templateName, data); err != nil {
		return err
	}
	return p.Send(&Email{To: to, Subject: subject})
}

func (p *LogProvider) Close() error { return nil }
