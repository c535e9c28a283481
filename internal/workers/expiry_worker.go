package workers

import (
	"context"
	"fmt"
	"time"

	"foodshare_backend/internal/email"
	"foodshare_backend/internal/logger"
	"foodshare_backend/internal/models"
	"foodshare_backend/internal/repositories"
	"foodshare_backend/internal/services"
)

const expiryBatchSize = 100

// ExpiryReminderWorker tells donors about available donations that are about
// to expire. Each donation is reminded at most once.
type ExpiryReminderWorker struct {
	donations     repositories.DonationRepository
	notifications services.NotificationService
	emailProvider email.Provider
	window        time.Duration
	now           func() time.Time
}

func NewExpiryReminderWorker(
	donations repositories.DonationRepository,
	notifications services.NotificationService,
	emailProvider email.Provider,
	window time.Duration,
) *ExpiryReminderWorker {
	return &ExpiryReminderWorker{
		donations:     donations,
		notifications: notifications,
		emailProvider: emailProvider,
		window:        window,
		now:           time.Now,
	}
}

func (w *ExpiryReminderWorker) Name() string { return "expiry_reminder" }

func (w *ExpiryReminderWorker) Run(ctx context.Context) error {
	now := w.now().UTC()
	due, err := w.donations.FindExpiring(ctx, repositories.ExpiringCriteria{
		Before: now.Add(w.window),
		Limit:  expiryBatchSize,
	})
	if err != nil {
		return err
	}

	reminded := 0
	for _, d := range due {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Claim the reminder first so a concurrent run cannot send it twice.
		ok, err := w.donations.MarkExpiryNotified(ctx, d.ID, now)
		if err != nil {
			logger.WorkerLog(w.Name(), "mark", err, "donation_id", d.ID)
			continue
		}
		if !ok {
			continue
		}
		w.remind(ctx, d)
		reminded++
	}

	if reminded > 0 {
		logger.Info("Expiry reminders sent", "count", reminded)
	}
	return nil
}

func (w *ExpiryReminderWorker) remind(ctx context.Context, d *models.Donation) {
	expiry := d.Expiry().Format(models.DateLayout)
	_, err := w.notifications.Notify(ctx, d.DonorID, models.NotificationDonationExpiring,
		"Donation expiring soon",
		fmt.Sprintf("Your donation %q expires on %s and has not been claimed yet.", d.FoodItem, expiry),
		map[string]interface{}{"donation_id": d.ID, "expiry_date": expiry})
	if err != nil {
		logger.WorkerLog(w.Name(), "notify", err, "donation_id", d.ID)
	}

	if w.emailProvider == nil || d.DonorEmail == "" {
		return
	}
	if err := w.emailProvider.SendTemplate([]string{d.DonorEmail}, "Your donation expires soon", email.TemplateDonationExpiring, email.TemplateData{
		"DonorName":  d.DonorName,
		"FoodItem":   d.FoodItem,
		"ExpiryDate": expiry,
	}); err != nil {
		logger.WorkerLog(w.Name(), "email", err, "donation_id", d.ID)
	}
}
