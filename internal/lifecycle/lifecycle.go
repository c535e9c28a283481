// Package lifecycle holds the donation state machine rules. It performs no
// I/O: callers check here, then persist with a compare-and-swap on the
// expected prior status.
package lifecycle

import (
	"time"

	"foodshare_backend/internal/auth"
	"foodshare_backend/internal/models"
	"foodshare_backend/internal/session"
	"foodshare_backend/pkg/apperrors"
)

const domain = "donation"

var (
	errNoSession = apperrors.AuthRequired("Sign in to manage donations")

	errCreateRole    = apperrors.Permission(domain, "Only donors can create donations")
	errNotOwner      = apperrors.Permission(domain, "Only the donor can change this donation")
	errNotEditable   = apperrors.Permission(domain, "Only available donations can be edited or deleted")
	errClaimRole     = apperrors.Permission(domain, "Only NGOs or admins can claim donations")
	errSelfClaim     = apperrors.Permission(domain, "You cannot claim your own donation")
	errCollectActor  = apperrors.Permission(domain, "Only the donor or an admin can mark this donation as collected")
	errModerateRole  = apperrors.Permission(domain, "Only admins can moderate donations")
	errNotAvailable  = apperrors.InvalidState(domain, "This donation is no longer available")
	errNotClaimed    = apperrors.InvalidState(domain, "Only claimed donations can be marked as collected")
	errAlreadyClosed = apperrors.InvalidState(domain, "This donation has already been collected")
)

// ErrNotAvailable is what a lost claim race reports.
func ErrNotAvailable() error { return errNotAvailable }

// ErrNotClaimed is what a lost collect race reports.
func ErrNotClaimed() error { return errNotClaimed }

// ErrNotEditable is what a lost edit or delete race reports.
func ErrNotEditable() error { return errNotEditable }

func CheckCreate(s *session.Session) error {
	if s == nil {
		return errNoSession
	}
	if !auth.HasPermission(s.Role, auth.PermDonationsCreate) {
		return errCreateRole
	}
	return nil
}

// CheckModify guards edit and delete: donor only, available only.
func CheckModify(s *session.Session, d *models.Donation) error {
	if s == nil {
		return errNoSession
	}
	if !s.Is(d.DonorID) {
		return errNotOwner
	}
	if d.Status != models.DonationStatusAvailable {
		return errNotEditable
	}
	return nil
}

// Claim validates a claim and returns the transition to persist.
// Order: role, self-claim, state.
func Claim(s *session.Session, d *models.Donation, at time.Time) (models.DonationTransition, error) {
	if s == nil {
		return models.DonationTransition{}, errNoSession
	}
	if !auth.HasPermission(s.Role, auth.PermDonationsClaim) {
		return models.DonationTransition{}, errClaimRole
	}
	if s.Is(d.DonorID) {
		return models.DonationTransition{}, errSelfClaim
	}
	if d.Status != models.DonationStatusAvailable {
		return models.DonationTransition{}, errNotAvailable
	}
	return transition(s, d.Status, models.DonationStatusClaimed, at), nil
}

// Collect validates marking a donation collected.
// Order: state, then actor.
func Collect(s *session.Session, d *models.Donation, at time.Time) (models.DonationTransition, error) {
	if s == nil {
		return models.DonationTransition{}, errNoSession
	}
	if d.Status != models.DonationStatusClaimed {
		return models.DonationTransition{}, errNotClaimed
	}
	if !s.Is(d.DonorID) && !s.IsAdmin() {
		return models.DonationTransition{}, errCollectActor
	}
	return transition(s, d.Status, models.DonationStatusCollected, at), nil
}

// Advance is the admin moderation step: one status forward, with the admin
// recorded as claimer or collector. It never lets a donor claim their own
// donation.
func Advance(s *session.Session, d *models.Donation, at time.Time) (models.DonationTransition, error) {
	if s == nil {
		return models.DonationTransition{}, errNoSession
	}
	if !auth.HasPermission(s.Role, auth.PermDonationsModerate) {
		return models.DonationTransition{}, errModerateRole
	}
	switch d.Status {
	case models.DonationStatusAvailable:
		return Claim(s, d, at)
	case models.DonationStatusClaimed:
		return Collect(s, d, at)
	case models.DonationStatusCollected:
		return models.DonationTransition{}, errAlreadyClosed
	default:
		return models.DonationTransition{}, apperrors.InvalidState(domain, "Unknown donation status")
	}
}

func transition(s *session.Session, from, to models.DonationStatus, at time.Time) models.DonationTransition {
	return models.DonationTransition{
		From:       from,
		To:         to,
		ActorID:    s.IdentityID,
		ActorName:  s.Name,
		ActorEmail: s.Email,
		At:         at.UTC(),
	}
}
