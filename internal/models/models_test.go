package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestParseUserRole(t *testing.T) {
	r, ok := ParseUserRole("  NGO ")
	assert.True(t, ok)
	assert.Equal(t, UserRoleNGO, r)

	_, ok = ParseUserRole("model")
	assert.False(t, ok)
	_, ok = ParseUserRole("")
	assert.False(t, ok)
}

func TestDonationStatus_Next(t *testing.T) {
	next, ok := DonationStatusAvailable.Next()
	assert.True(t, ok)
	assert.Equal(t, DonationStatusClaimed, next)

	next, ok = DonationStatusClaimed.Next()
	assert.True(t, ok)
	assert.Equal(t, DonationStatusCollected, next)

	_, ok = DonationStatusCollected.Next()
	assert.False(t, ok)

	assert.True(t, DonationStatusAvailable.CanBecome(DonationStatusClaimed))
	assert.False(t, DonationStatusAvailable.CanBecome(DonationStatusCollected))
	assert.False(t, DonationStatusClaimed.CanBecome(DonationStatusAvailable))
	assert.False(t, DonationStatusCollected.CanBecome(DonationStatusAvailable))
}

func TestDisplayName(t *testing.T) {
	p := &Profile{Email: "sam@example.com"}
	assert.Equal(t, "sam", p.DisplayName())
	p.Name = "Sam Smith"
	assert.Equal(t, "Sam Smith", p.DisplayName())
	assert.Equal(t, "nobody", EmailLocalPart("nobody"))
}

func TestDonationEdit(t *testing.T) {
	item := "Soup"
	expiry := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	edit := DonationEdit{FoodItem: &item, ExpiryDate: &expiry}

	cols := edit.Columns()
	assert.Len(t, cols, 2)
	assert.Equal(t, "Soup", cols["food_item"])
	assert.Equal(t, datatypes.Date(expiry), cols["expiry_date"])

	d := &Donation{FoodItem: "Bread", Quantity: "2 loaves"}
	edit.Apply(d)
	assert.Equal(t, "Soup", d.FoodItem)
	assert.Equal(t, "2 loaves", d.Quantity)
	assert.True(t, d.Expiry().Equal(expiry))

	assert.Empty(t, DonationEdit{}.Columns())
}
