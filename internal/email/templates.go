package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// Built-in template names.
const (
	TemplateDonationClaimed   = "donation_claimed"
	TemplateDonationCollected = "donation_collected"
	TemplateDonationExpiring  = "donation_expiring"
)

var builtin = map[string]string{
	TemplateDonationClaimed: `<p>Hello {{.DonorName}},</p>
<p>Your donation <strong>{{.FoodItem}}</strong> was claimed by {{.ClaimerName}}.
They will contact you at {{.ContactInfo}} to arrange pickup from {{.PickupLocation}}.</p>`,
	TemplateDonationCollected: `<p>Hello {{.ClaimerName}},</p>
<p>The donation <strong>{{.FoodItem}}</strong> has been marked as collected. Thank you!</p>`,
	TemplateDonationExpiring: `<p>Hello {{.DonorName}},</p>
<p>Your donation <strong>{{.FoodItem}}</strong> expires on {{.ExpiryDate}} and has not been claimed yet.</p>`,
}

// TemplateManager renders named html templates.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager returns a manager preloaded with the built-in templates.
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{templates: make(map[string]*template.Template)}
	for name, body := range builtin {
		if err := tm.AddTemplate(name, body); err != nil {
			panic(err)
		}
	}
	return tm
}

func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Option("missingkey=zero").Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()
	return nil
}
