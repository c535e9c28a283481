package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodshare_backend/internal/auth"
	"foodshare_backend/internal/email"
	"foodshare_backend/internal/events"
	"foodshare_backend/internal/lifecycle"
	"foodshare_backend/internal/logger"
	"foodshare_backend/internal/metrics"
	"foodshare_backend/internal/models"
	"foodshare_backend/internal/repositories"
	"foodshare_backend/internal/services/dto"
	"foodshare_backend/internal/session"
	"foodshare_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

type DonationService interface {
	Create(ctx context.Context, s *session.Session, req *dto.CreateDonationRequest) (*dto.DonationResponse, error)
	Get(ctx context.Context, s *session.Session, id string) (*dto.DonationResponse, error)
	List(ctx context.Context, s *session.Session, query dto.ListDonationsQuery, page, pageSize int) (*dto.DonationListResponse, error)
	ListMine(ctx context.Context, s *session.Session, page, pageSize int) (*dto.DonationListResponse, error)
	ListClaims(ctx context.Context, s *session.Session, page, pageSize int) (*dto.DonationListResponse, error)
	Update(ctx context.Context, s *session.Session, id string, req *dto.UpdateDonationRequest) (*dto.DonationResponse, error)
	Delete(ctx context.Context, s *session.Session, id string) error

	Claim(ctx context.Context, s *session.Session, id string) (*dto.DonationResponse, error)
	Collect(ctx context.Context, s *session.Session, id string) (*dto.DonationResponse, error)
	// Advance moves a donation one step forward on behalf of an admin.
	Advance(ctx context.Context, s *session.Session, id string) (*dto.DonationResponse, error)
}

type donationService struct {
	donationRepo  repositories.DonationRepository
	notifications NotificationService
	emailProvider email.Provider
	publisher     events.Publisher
	now           func() time.Time
}

func NewDonationService(
	donationRepo repositories.DonationRepository,
	notifications NotificationService,
	emailProvider email.Provider,
	publisher events.Publisher,
) DonationService {
	return &donationService{
		donationRepo:  donationRepo,
		notifications: notifications,
		emailProvider: emailProvider,
		publisher:     publisher,
		now:           time.Now,
	}
}

// ---------------- CRUD ----------------

func (s *donationService) Create(ctx context.Context, sess *session.Session, req *dto.CreateDonationRequest) (*dto.DonationResponse, error) {
	if err := lifecycle.CheckCreate(sess); err != nil {
		return nil, err
	}

	expiry, err := parseExpiry(req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	donorName := strings.TrimSpace(sess.Name)
	if donorName == "" {
		donorName = models.AnonymousDonorName
	}

	d := &models.Donation{
		DonorID:        sess.IdentityID,
		DonorName:      donorName,
		DonorEmail:     sess.Email,
		FoodItem:       strings.TrimSpace(req.FoodItem),
		Category:       strings.TrimSpace(req.Category),
		Quantity:       strings.TrimSpace(req.Quantity),
		ExpiryDate:     datatypes.Date(expiry),
		PickupLocation: strings.TrimSpace(req.PickupLocation),
		ContactInfo:    strings.TrimSpace(req.ContactInfo),
		Notes:          strings.TrimSpace(req.Notes),
		Status:         models.DonationStatusAvailable,
	}
	if err := s.donationRepo.Create(ctx, d); err != nil {
		return nil, storeError(err, "donation")
	}

	logger.CtxInfo(ctx, "Donation created", "donation_id", d.ID, "donor_id", d.DonorID)
	resp := dto.NewDonationResponse(d)
	publish(ctx, s.publisher, events.TopicDonations, events.DonationCreated, d.DonorID, resp)
	return &resp, nil
}

func (s *donationService) Get(ctx context.Context, sess *session.Session, id string) (*dto.DonationResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	d, err := s.donationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "donation")
	}
	resp := dto.NewDonationResponse(d)
	return &resp, nil
}

func (s *donationService) List(ctx context.Context, sess *session.Session, query dto.ListDonationsQuery, page, pageSize int) (*dto.DonationListResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	criteria := repositories.DonationCriteria{
		Category: strings.TrimSpace(query.Category),
		Search:   strings.TrimSpace(query.Search),
		Sort:     repositories.ParseDonationSort(query.Sort),
		Page:     page,
		PageSize: pageSize,
	}
	if query.Status != "" {
		status, ok := models.ParseDonationStatus(query.Status)
		if !ok {
			return nil, apperrors.ValidationError(map[string]string{"status": "Must be one of: available, claimed, collected"})
		}
		criteria.Status = status
	}
	return s.list(ctx, criteria)
}

func (s *donationService) ListMine(ctx context.Context, sess *session.Session, page, pageSize int) (*dto.DonationListResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.list(ctx, repositories.DonationCriteria{
		DonorID:  sess.IdentityID,
		Sort:     repositories.SortCreatedDesc,
		Page:     page,
		PageSize: pageSize,
	})
}

func (s *donationService) ListClaims(ctx context.Context, sess *session.Session, page, pageSize int) (*dto.DonationListResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !auth.HasPermission(sess.Role, auth.PermDonationsClaim) {
		return nil, apperrors.Permission("donation", "Only NGOs or admins have claims")
	}
	return s.list(ctx, repositories.DonationCriteria{
		ClaimedBy: sess.IdentityID,
		Sort:      repositories.SortCreatedDesc,
		Page:      page,
		PageSize:  pageSize,
	})
}

func (s *donationService) list(ctx context.Context, criteria repositories.DonationCriteria) (*dto.DonationListResponse, error) {
	list, total, err := s.donationRepo.List(ctx, criteria)
	if err != nil {
		return nil, storeError(err, "donation")
	}
	return &dto.DonationListResponse{
		Donations:  dto.NewDonationResponses(list),
		Total:      total,
		Page:       criteria.Page,
		PageSize:   criteria.PageSize,
		TotalPages: dto.TotalPages(total, criteria.PageSize),
	}, nil
}

// Update edits an available donation owned by the caller. The write is
// conditional on both, so a claim that lands in between wins.
func (s *donationService) Update(ctx context.Context, sess *session.Session, id string, req *dto.UpdateDonationRequest) (*dto.DonationResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	d, err := s.donationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "donation")
	}
	if err := lifecycle.CheckModify(sess, d); err != nil {
		return nil, err
	}

	edit, err := buildEdit(req)
	if err != nil {
		return nil, err
	}
	cols := edit.Columns()
	if len(cols) == 0 {
		resp := dto.NewDonationResponse(d)
		return &resp, nil
	}

	if err := s.donationRepo.UpdateIfAvailable(ctx, id, sess.IdentityID, cols); err != nil {
		if errors.Is(err, repositories.ErrTransitionConflict) {
			return nil, lifecycle.ErrNotEditable()
		}
		return nil, storeError(err, "donation")
	}

	edit.Apply(d)
	d.UpdatedAt = s.now().UTC()
	resp := dto.NewDonationResponse(d)
	publish(ctx, s.publisher, events.TopicDonations, events.DonationUpdated, d.DonorID, resp)
	return &resp, nil
}

func (s *donationService) Delete(ctx context.Context, sess *session.Session, id string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	d, err := s.donationRepo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "donation")
	}
	if err := lifecycle.CheckModify(sess, d); err != nil {
		return err
	}

	if err := s.donationRepo.DeleteIfAvailable(ctx, id, sess.IdentityID); err != nil {
		if errors.Is(err, repositories.ErrTransitionConflict) {
			return lifecycle.ErrNotEditable()
		}
		return storeError(err, "donation")
	}

	logger.CtxInfo(ctx, "Donation deleted", "donation_id", id)
	publish(ctx, s.publisher, events.TopicDonations, events.DonationDeleted, d.DonorID, map[string]string{"id": id})
	return nil
}

// ---------------- Lifecycle ----------------

func (s *donationService) Claim(ctx context.Context, sess *session.Session, id string) (*dto.DonationResponse, error) {
	return s.transition(ctx, sess, id, lifecycle.Claim)
}

func (s *donationService) Collect(ctx context.Context, sess *session.Session, id string) (*dto.DonationResponse, error) {
	return s.transition(ctx, sess, id, lifecycle.Collect)
}

func (s *donationService) Advance(ctx context.Context, sess *session.Session, id string) (*dto.DonationResponse, error) {
	return s.transition(ctx, sess, id, lifecycle.Advance)
}

type checkFunc func(*session.Session, *models.Donation, time.Time) (models.DonationTransition, error)

// transition checks, then writes with a compare-and-swap on the prior status.
// Exactly one of two concurrent callers gets past the write.
func (s *donationService) transition(ctx context.Context, sess *session.Session, id string, check checkFunc) (*dto.DonationResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	d, err := s.donationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "donation")
	}

	t, err := check(sess, d, s.now())
	if err != nil {
		metrics.ObserveTransition(string(d.Status), metrics.OutcomeRejected)
		return nil, err
	}

	if err := s.donationRepo.Transition(ctx, id, t); err != nil {
		if errors.Is(err, repositories.ErrTransitionConflict) {
			metrics.ObserveTransition(string(t.To), metrics.OutcomeConflict)
			logger.CtxWarn(ctx, "Donation transition lost a race", "donation_id", id, "to", t.To)
			return nil, lostRace(t.To)
		}
		return nil, storeError(err, "donation")
	}

	t.Apply(d)
	d.UpdatedAt = t.At
	metrics.ObserveTransition(string(t.To), metrics.OutcomeApplied)
	logger.CtxInfo(ctx, "Donation status changed", "donation_id", id, "from", t.From, "to", t.To, "actor_id", t.ActorID)

	resp := dto.NewDonationResponse(d)
	switch t.To {
	case models.DonationStatusClaimed:
		publish(ctx, s.publisher, events.TopicDonations, events.DonationClaimed, d.DonorID, resp)
		s.notifyClaimed(ctx, d)
	case models.DonationStatusCollected:
		publish(ctx, s.publisher, events.TopicDonations, events.DonationCollected, d.DonorID, resp)
		s.notifyCollected(ctx, d)
	case models.DonationStatusAvailable:
	}
	return &resp, nil
}

func lostRace(to models.DonationStatus) error {
	if to == models.DonationStatusCollected {
		return lifecycle.ErrNotClaimed()
	}
	return lifecycle.ErrNotAvailable()
}

// ---------------- Side effects ----------------

// The transition is already committed when these run; failures are logged.

func (s *donationService) notifyClaimed(ctx context.Context, d *models.Donation) {
	claimer := d.ClaimedByName
	if claimer == "" {
		claimer = models.EmailLocalPart(d.ClaimedByEmail)
	}
	_, err := s.notifications.Notify(ctx, d.DonorID, models.NotificationDonationClaimed,
		"Donation claimed",
		fmt.Sprintf("Your donation %q was claimed by %s.", d.FoodItem, claimer),
		map[string]interface{}{"donation_id": d.ID, "claimed_by": d.ClaimedBy})
	if err != nil {
		logger.CtxWithError(ctx, "Failed to notify donor of claim", err, "donation_id", d.ID)
	}

	s.sendEmail(ctx, d.DonorEmail, "Your donation was claimed", email.TemplateDonationClaimed, email.TemplateData{
		"DonorName":      d.DonorName,
		"FoodItem":       d.FoodItem,
		"ClaimerName":    claimer,
		"ContactInfo":    d.ClaimedByEmail,
		"PickupLocation": d.PickupLocation,
	})
}

func (s *donationService) notifyCollected(ctx context.Context, d *models.Donation) {
	if d.ClaimedBy == "" {
		return
	}
	_, err := s.notifications.Notify(ctx, d.ClaimedBy, models.NotificationDonationCollected,
		"Donation collected",
		fmt.Sprintf("The donation %q has been marked as collected.", d.FoodItem),
		map[string]interface{}{"donation_id": d.ID, "collected_by": d.CollectedBy})
	if err != nil {
		logger.CtxWithError(ctx, "Failed to notify claimer of collection", err, "donation_id", d.ID)
	}

	s.sendEmail(ctx, d.ClaimedByEmail, "Donation collected", email.TemplateDonationCollected, email.TemplateData{
		"ClaimerName": d.ClaimedByName,
		"FoodItem":    d.FoodItem,
	})
}

func (s *donationService) sendEmail(ctx context.Context, to, subject, template string, data email.TemplateData) {
	if s.emailProvider == nil || to == "" {
		return
	}
	requestID := logger.GetRequestID(ctx)
	go func() {
		if err := s.emailProvider.SendTemplate([]string{to}, subject, template, data); err != nil {
			logger.Error("Failed to send email", "error", err, "template", template, "request_id", requestID)
		}
	}()
}

// ---------------- Helpers ----------------

func parseExpiry(value string) (time.Time, error) {
	t, err := time.ParseInLocation(models.DateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, apperrors.ValidationError(map[string]string{"expiry_date": "Must be a date in YYYY-MM-DD format"})
	}
	return t, nil
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

func buildEdit(req *dto.UpdateDonationRequest) (models.DonationEdit, error) {
	edit := models.DonationEdit{
		FoodItem:       trimmed(req.FoodItem),
		Category:       trimmed(req.Category),
		Quantity:       trimmed(req.Quantity),
		PickupLocation: trimmed(req.PickupLocation),
		ContactInfo:    trimmed(req.ContactInfo),
		Notes:          trimmed(req.Notes),
	}

	// Required fields may be changed but never cleared.
	blank := make(map[string]string)
	for field, value := range map[string]*string{
		"food_item":       edit.FoodItem,
		"category":        edit.Category,
		"quantity":        edit.Quantity,
		"pickup_location": edit.PickupLocation,
		"contact_info":    edit.ContactInfo,
	} {
		if value != nil && *value == "" {
			blank[field] = "Must not be blank"
		}
	}
	if len(blank) > 0 {
		return models.DonationEdit{}, apperrors.ValidationError(blank)
	}

	if req.ExpiryDate != nil {
		expiry, err := parseExpiry(*req.ExpiryDate)
		if err != nil {
			return models.DonationEdit{}, err
		}
		edit.ExpiryDate = &expiry
	}
	return edit, nil
}
