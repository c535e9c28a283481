package validator

import (
	"errors"
	"testing"

	"foodshare_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	return verr.Errors
}

func TestSignUpRequest(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&dto.SignUpRequest{Email: "a@example.com", Password: "secret1", Role: "NGO"}))

	errs := validationErrors(t, v.Validate(&dto.SignUpRequest{Email: "nope", Password: "123", Role: "chef"}))
	assert.Equal(t, "Must be a valid email address", errs["email"])
	assert.Equal(t, "Must be at least 6 characters long", errs["password"])
	assert.Equal(t, "Must be one of: donor, ngo, admin", errs["role"])
}

func TestCreateDonationRequest(t *testing.T) {
	v := New()
	valid := dto.CreateDonationRequest{
		FoodItem: "Bread", Category: "baked", Quantity: "3", ExpiryDate: "2026-12-31",
		PickupLocation: "Depot", ContactInfo: "555",
	}
	assert.NoError(t, v.Validate(&valid))

	bad := valid
	bad.FoodItem = "   "
	bad.ExpiryDate = "12/31/2026"
	bad.ContactInfo = ""
	errs := validationErrors(t, v.Validate(&bad))
	assert.Equal(t, "Must not be blank", errs["food_item"])
	assert.Equal(t, "Must be a date in YYYY-MM-DD format", errs["expiry_date"])
	assert.Equal(t, "This field is required", errs["contact_info"])
	assert.Len(t, errs, 3)
}

func TestUpdateDonationRequest_PointersAreOptional(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(&dto.UpdateDonationRequest{}))

	blank := " "
	errs := validationErrors(t, v.Validate(&dto.UpdateDonationRequest{FoodItem: &blank}))
	assert.Contains(t, errs, "food_item")

	empty := ""
	errs = validationErrors(t, v.Validate(&dto.UpdateDonationRequest{Category: &empty, PickupLocation: &empty, Notes: &empty}))
	assert.Equal(t, "Must not be blank", errs["category"])
	assert.Equal(t, "Must not be blank", errs["pickup_location"])
	assert.NotContains(t, errs, "notes")
}

func TestListDonationsQuery_UsesFormNames(t *testing.T) {
	v := New()
	errs := validationErrors(t, v.Validate(&dto.ListDonationsQuery{Status: "lost", Sort: "price"}))
	assert.Equal(t, "Must be one of: available, claimed, collected", errs["status"])
	assert.Equal(t, "Must be one of: createdAt_desc, createdAt_asc, expiryDate_asc, expiryDate_desc", errs["sort"])
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Errors: map[string]string{"b": "second", "a": "first"}}
	assert.Equal(t, "Validation failed: field 'a': first; field 'b': second", err.Error())
}
