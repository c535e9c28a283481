// Package memory is an in-process implementation of the repositories, used by
// tests and by the "memory" database driver for local demos. All state sits
// behind one mutex, which also makes every conditional write atomic.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"foodshare_backend/internal/models"
	"foodshare_backend/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Store struct {
	mu            sync.Mutex
	now           func() time.Time
	identities    map[string]models.Identity
	profiles      map[string]models.Profile
	tokens        map[string]models.RefreshToken
	donations     map[string]models.Donation
	notifications map[string]models.Notification
	seq           int64

	// FailNotificationIDs makes MarkAsRead fail for the listed ids.
	FailNotificationIDs map[string]error
	// FailProfileCreate makes profile creation fail.
	FailProfileCreate error
}

func New() *Store {
	return &Store{
		now:                 time.Now,
		identities:          make(map[string]models.Identity),
		profiles:            make(map[string]models.Profile),
		tokens:              make(map[string]models.RefreshToken),
		donations:           make(map[string]models.Donation),
		notifications:       make(map[string]models.Notification),
		FailNotificationIDs: make(map[string]error),
	}
}

// FailNotification makes MarkAsRead of id fail with err; a nil err clears it.
func (s *Store) FailNotification(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.FailNotificationIDs, id)
		return
	}
	s.FailNotificationIDs[id] = err
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Identities:    identityRepo{s},
		RefreshTokens: tokenRepo{s},
		Profiles:      profileRepo{s},
		Donations:     donationRepo{s},
		Notifications: notificationRepo{s},
	}
}

// stamp assigns ids and strictly increasing creation times so that ordering
// by creation is deterministic even within one clock tick.
func (s *Store) stamp(b *models.BaseModel) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	s.seq++
	now := s.now().UTC().Add(time.Duration(s.seq) * time.Microsecond)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// ---------------------------------------------------------------------------
// identities

type identityRepo struct{ s *Store }

func (r identityRepo) CreateWithProfile(_ context.Context, identity *models.Identity, profile *models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	identity.Email = strings.ToLower(strings.TrimSpace(identity.Email))
	for _, existing := range r.s.identities {
		if existing.Email == identity.Email {
			return repositories.ErrEmailTaken
		}
	}
	if r.s.FailProfileCreate != nil {
		return r.s.FailProfileCreate
	}
	r.s.stamp(&identity.BaseModel)
	profile.IdentityID = identity.ID
	if _, ok := r.s.profiles[profile.IdentityID]; ok {
		return repositories.ErrProfileExists
	}
	profile.CreatedAt, profile.UpdatedAt = identity.CreatedAt, identity.CreatedAt
	r.s.identities[identity.ID] = *identity
	r.s.profiles[profile.IdentityID] = *profile
	return nil
}

func (r identityRepo) FindByID(_ context.Context, id string) (*models.Identity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	identity, ok := r.s.identities[id]
	if !ok {
		return nil, repositories.ErrIdentityNotFound
	}
	return &identity, nil
}

func (r identityRepo) FindByEmail(_ context.Context, email string) (*models.Identity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, identity := range r.s.identities {
		if identity.Email == email {
			found := identity
			return &found, nil
		}
	}
	return nil, repositories.ErrIdentityNotFound
}

// ---------------------------------------------------------------------------
// refresh tokens

type tokenRepo struct{ s *Store }

func (r tokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&token.BaseModel)
	r.s.tokens[token.Token] = *token
	return nil
}

func (r tokenRepo) FindByToken(_ context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[token]
	if !ok {
		return nil, repositories.ErrRefreshTokenNotFound
	}
	return &t, nil
}

func (r tokenRepo) DeleteByToken(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tokens[token]; !ok {
		return repositories.ErrRefreshTokenNotFound
	}
	delete(r.s.tokens, token)
	return nil
}

func (r tokenRepo) DeleteByIdentity(_ context.Context, identityID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, t := range r.s.tokens {
		if t.IdentityID == identityID {
			delete(r.s.tokens, k)
		}
	}
	return nil
}

func (r tokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, t := range r.s.tokens {
		if t.ExpiresAt.Before(now) {
			delete(r.s.tokens, k)
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// profiles

type profileRepo struct{ s *Store }

func (r profileRepo) FindByID(_ context.Context, identityID string) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[identityID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	return &p, nil
}

func (r profileRepo) Create(_ context.Context, profile *models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailProfileCreate != nil {
		return r.s.FailProfileCreate
	}
	if _, ok := r.s.profiles[profile.IdentityID]; ok {
		return repositories.ErrProfileExists
	}
	now := r.s.now().UTC()
	profile.CreatedAt, profile.UpdatedAt = now, now
	r.s.profiles[profile.IdentityID] = *profile
	return nil
}

func (r profileRepo) Update(_ context.Context, identityID string, cols map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[identityID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	for k, v := range cols {
		switch k {
		case "name":
			p.Name = v.(string)
		case "contact_info":
			p.ContactInfo = v.(string)
		case "organization_name":
			p.OrganizationName = v.(string)
		case "role":
			p.Role = v.(models.UserRole)
		}
	}
	p.UpdatedAt = r.s.now().UTC()
	r.s.profiles[identityID] = p
	return nil
}

func (r profileRepo) UpdateRole(ctx context.Context, identityID string, role models.UserRole) error {
	return r.Update(ctx, identityID, map[string]interface{}{"role": role})
}

func (r profileRepo) Delete(_ context.Context, identityID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[identityID]; !ok {
		return repositories.ErrProfileNotFound
	}
	delete(r.s.profiles, identityID)
	return nil
}

func (r profileRepo) List(_ context.Context, c repositories.ProfileCriteria) ([]*models.Profile, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(c.Search))
	var out []*models.Profile
	for _, p := range r.s.profiles {
		if c.Role != "" && p.Role != c.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Email), search) {
			continue
		}
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, c.Page, c.PageSize)
}

func (r profileRepo) CountByRole(_ context.Context) (repositories.RoleCounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(repositories.RoleCounts)
	for _, p := range r.s.profiles {
		counts[p.Role]++
	}
	return counts, nil
}

// ---------------------------------------------------------------------------
// donations

type donationRepo struct{ s *Store }

func (r donationRepo) Create(_ context.Context, d *models.Donation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&d.BaseModel)
	if d.Status == "" {
		d.Status = models.DonationStatusAvailable
	}
	r.s.donations[d.ID] = *d
	return nil
}

func (r donationRepo) FindByID(_ context.Context, id string) (*models.Donation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.donations[id]
	if !ok {
		return nil, repositories.ErrDonationNotFound
	}
	return &d, nil
}

func matches(d *models.Donation, c repositories.DonationCriteria) bool {
	if c.Status != "" && d.Status != c.Status {
		return false
	}
	if c.Category != "" && d.Category != c.Category {
		return false
	}
	if c.DonorID != "" && d.DonorID != c.DonorID {
		return false
	}
	if c.ClaimedBy != "" && d.ClaimedBy != c.ClaimedBy {
		return false
	}
	if s := strings.ToLower(strings.TrimSpace(c.Search)); s != "" {
		if !strings.Contains(strings.ToLower(d.FoodItem), s) && !strings.Contains(strings.ToLower(d.Notes), s) {
			return false
		}
	}
	return true
}

func (r donationRepo) List(_ context.Context, c repositories.DonationCriteria) ([]*models.Donation, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*models.Donation
	for _, d := range r.s.donations {
		if matches(&d, c) {
			cp := d
			out = append(out, &cp)
		}
	}
	sortDonations(out, c.Sort)
	return paginate(out, c.Page, c.PageSize)
}

func sortDonations(list []*models.Donation, by repositories.DonationSort) {
	newer := func(a, b *models.Donation) bool { return a.CreatedAt.After(b.CreatedAt) }
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch by {
		case repositories.SortCreatedAsc:
			return a.CreatedAt.Before(b.CreatedAt)
		case repositories.SortExpiryAsc:
			if !a.Expiry().Equal(b.Expiry()) {
				return a.Expiry().Before(b.Expiry())
			}
			return newer(a, b)
		case repositories.SortExpiryDesc:
			if !a.Expiry().Equal(b.Expiry()) {
				return a.Expiry().After(b.Expiry())
			}
			return newer(a, b)
		default:
			return newer(a, b)
		}
	})
}

// conditional reports why a guarded write did not apply. Caller holds the lock.
func (r donationRepo) conditional(id string, ok func(d models.Donation) bool) (models.Donation, error) {
	d, found := r.s.donations[id]
	if !found {
		return d, repositories.ErrDonationNotFound
	}
	if !ok(d) {
		return d, repositories.ErrTransitionConflict
	}
	return d, nil
}

func (r donationRepo) UpdateIfAvailable(_ context.Context, id, donorID string, cols map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, err := r.conditional(id, func(d models.Donation) bool {
		return d.DonorID == donorID && d.Status == models.DonationStatusAvailable
	})
	if err != nil {
		return err
	}
	applyColumns(&d, cols)
	d.UpdatedAt = r.s.now().UTC()
	r.s.donations[id] = d
	return nil
}

func (r donationRepo) DeleteIfAvailable(_ context.Context, id, donorID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, err := r.conditional(id, func(d models.Donation) bool {
		return d.DonorID == donorID && d.Status == models.DonationStatusAvailable
	}); err != nil {
		return err
	}
	delete(r.s.donations, id)
	return nil
}

func (r donationRepo) Transition(_ context.Context, id string, t models.DonationTransition) error {
	if !t.From.CanBecome(t.To) {
		return repositories.ErrTransitionConflict
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, err := r.conditional(id, func(d models.Donation) bool { return d.Status == t.From })
	if err != nil {
		return err
	}
	t.Apply(&d)
	d.UpdatedAt = r.s.now().UTC()
	r.s.donations[id] = d
	return nil
}

func (r donationRepo) CountByStatus(_ context.Context, c repositories.DonationCriteria) (repositories.StatusCounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.Status = ""
	counts := repositories.StatusCounts{
		models.DonationStatusAvailable: 0,
		models.DonationStatusClaimed:   0,
		models.DonationStatusCollected: 0,
	}
	for _, d := range r.s.donations {
		if matches(&d, c) {
			counts[d.Status]++
		}
	}
	return counts, nil
}

func (r donationRepo) FindExpiring(_ context.Context, c repositories.ExpiringCriteria) ([]*models.Donation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Donation
	for _, d := range r.s.donations {
		if d.Status == models.DonationStatusAvailable && d.ExpiryNotifiedAt == nil && !d.Expiry().After(c.Before) {
			cp := d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Expiry().Before(out[j].Expiry()) })
	if c.Limit > 0 && len(out) > c.Limit {
		out = out[:c.Limit]
	}
	return out, nil
}

func (r donationRepo) MarkExpiryNotified(_ context.Context, id string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.donations[id]
	if !ok || d.ExpiryNotifiedAt != nil {
		return false, nil
	}
	d.ExpiryNotifiedAt = &at
	r.s.donations[id] = d
	return true, nil
}

// applyColumns mirrors models.DonationEdit.Columns.
func applyColumns(d *models.Donation, cols map[string]interface{}) {
	edit := models.DonationEdit{}
	for k, v := range cols {
		switch k {
		case "food_item":
			s := v.(string)
			edit.FoodItem = &s
		case "category":
			s := v.(string)
			edit.Category = &s
		case "quantity":
			s := v.(string)
			edit.Quantity = &s
		case "expiry_date":
			switch t := v.(type) {
			case time.Time:
				edit.ExpiryDate = &t
			case datatypes.Date:
				tt := time.Time(t)
				edit.ExpiryDate = &tt
			}
		case "pickup_location":
			s := v.(string)
			edit.PickupLocation = &s
		case "contact_info":
			s := v.(string)
			edit.ContactInfo = &s
		case "notes":
			s := v.(string)
			edit.Notes = &s
		}
	}
	edit.Apply(d)
}

// ---------------------------------------------------------------------------
// notifications

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&n.BaseModel)
	r.s.notifications[n.ID] = *n
	return nil
}

func (r notificationRepo) FindByID(_ context.Context, id string) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, repositories.ErrNotificationNotFound
	}
	return &n, nil
}

func (r notificationRepo) owned(userID string, unreadOnly bool) []*models.Notification {
	var out []*models.Notification
	for _, n := range r.s.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		cp := n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r notificationRepo) ListByUser(_ context.Context, userID string, c repositories.NotificationCriteria) ([]*models.Notification, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return paginate(r.owned(userID, c.UnreadOnly), c.Page, c.PageSize)
}

func (r notificationRepo) ListUnreadIDs(_ context.Context, userID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for _, n := range r.owned(userID, true) {
		ids = append(ids, n.ID)
	}
	return ids, nil
}

func (r notificationRepo) MarkAsRead(_ context.Context, userID, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.FailNotificationIDs[id]; err != nil {
		return err
	}
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return repositories.ErrNotificationNotFound
	}
	n.IsRead = true
	n.ReadAt = &at
	r.s.notifications[id] = n
	return nil
}

func (r notificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.owned(userID, true))), nil
}

// ---------------------------------------------------------------------------

func paginate[T any](list []T, page, pageSize int) ([]T, int64, error) {
	total := int64(len(list))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = repositories.DefaultPageSize
	}
	if pageSize > repositories.MaxPageSize {
		pageSize = repositories.MaxPageSize
	}
	start := (page - 1) * pageSize
	if start >= len(list) {
		return []T{}, total, nil
	}
	end := start + pageSize
	if end > len(list) {
		end = len(list)
	}
	return list[start:end], total, nil
}
