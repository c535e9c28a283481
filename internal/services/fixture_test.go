package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"foodshare_backend/internal/auth"
	"foodshare_backend/internal/events"
	"foodshare_backend/internal/models"
	"foodshare_backend/internal/repositories"
	"foodshare_backend/internal/repositories/memory"
	"foodshare_backend/internal/services/dto"
	"foodshare_backend/internal/session"

	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	ctx   context.Context
	store *memory.Store
	repos *repositories.Repositories
	pub   *recordingPublisher
	svc   *ServiceContainer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	repos := store.Repositories()
	pub := &recordingPublisher{}
	return &fixture{
		ctx:   context.Background(),
		store: store,
		repos: repos,
		pub:   pub,
		svc: NewServiceContainer(Dependencies{
			Repositories: repos,
			Tokens:       auth.NewTokenManager("test-secret", time.Hour),
			RefreshTTL:   24 * time.Hour,
			Publisher:    pub,
		}),
	}
}

// account creates an identity with a profile of the given role and returns
// its session.
func (f *fixture) account(t *testing.T, email string, role models.UserRole) *session.Session {
	t.Helper()
	identity := &models.Identity{Email: email, PasswordHash: "x"}
	profile := &models.Profile{Name: models.EmailLocalPart(email), Email: email, Role: role}
	require.NoError(t, f.repos.Identities.CreateWithProfile(f.ctx, identity, profile))
	return session.FromProfile(profile)
}

func inDays(n int) string {
	return time.Now().UTC().AddDate(0, 0, n).Format(models.DateLayout)
}

func (f *fixture) donate(t *testing.T, donor *session.Session, item string) *dto.DonationResponse {
	t.Helper()
	resp, err := f.svc.DonationService.Create(f.ctx, donor, &dto.CreateDonationRequest{
		FoodItem:       item,
		Category:       "baked",
		Quantity:       "10 loaves",
		ExpiryDate:     inDays(3),
		PickupLocation: "12 Market St",
		ContactInfo:    "555-0100",
	})
	require.NoError(t, err)
	return resp
}
