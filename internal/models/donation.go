package models

import (
	"time"

	"gorm.io/datatypes"
)

const AnonymousDonorName = "Anonymous Donor"

// DateLayout is the wire format of expiry dates.
const DateLayout = "2006-01-02"

type Donation struct {
	BaseModel
	DonorID    string `gorm:"type:varchar(36);not null;index"`
	DonorName  string `gorm:"type:varchar(255)"`
	DonorEmail string `gorm:"type:varchar(255)"`

	FoodItem       string         `gorm:"type:varchar(255);not null"`
	Category       string         `gorm:"type:varchar(64);not null;index"`
	Quantity       string         `gorm:"type:varchar(255);not null"`
	ExpiryDate     datatypes.Date `gorm:"not null;index"`
	PickupLocation string         `gorm:"type:varchar(500);not null"`
	ContactInfo    string         `gorm:"type:varchar(255);not null"`
	Notes          string         `gorm:"type:text"`

	Status DonationStatus `gorm:"type:varchar(20);not null;default:'available';index"`

	ClaimedBy      string `gorm:"type:varchar(36);index"`
	ClaimedByName  string `gorm:"type:varchar(255)"`
	ClaimedByEmail string `gorm:"type:varchar(255)"`
	ClaimedAt      *time.Time

	CollectedBy      string `gorm:"type:varchar(36);index"`
	CollectedByName  string `gorm:"type:varchar(255)"`
	CollectedByEmail string `gorm:"type:varchar(255)"`
	CollectedAt      *time.Time

	ExpiryNotifiedAt *time.Time
}

// Expiry returns the expiry date as a time.Time at UTC midnight.
func (d *Donation) Expiry() time.Time {
	return time.Time(d.ExpiryDate)
}

// DonationEdit carries the donor-editable fields. Nil means unchanged.
type DonationEdit struct {
	FoodItem       *string
	Category       *string
	Quantity       *string
	ExpiryDate     *time.Time
	PickupLocation *string
	ContactInfo    *string
	Notes          *string
}

// Apply copies the set fields onto d.
func (e DonationEdit) Apply(d *Donation) {
	if e.FoodItem != nil {
		d.FoodItem = *e.FoodItem
	}
	if e.Category != nil {
		d.Category = *e.Category
	}
	if e.Quantity != nil {
		d.Quantity = *e.Quantity
	}
	if e.ExpiryDate != nil {
		d.ExpiryDate = datatypes.Date(*e.ExpiryDate)
	}
	if e.PickupLocation != nil {
		d.PickupLocation = *e.PickupLocation
	}
	if e.ContactInfo != nil {
		d.ContactInfo = *e.ContactInfo
	}
	if e.Notes != nil {
		d.Notes = *e.Notes
	}
}

// Columns returns the column map of the set fields.
func (e DonationEdit) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if e.FoodItem != nil {
		cols["food_item"] = *e.FoodItem
	}
	if e.Category != nil {
		cols["category"] = *e.Category
	}
	if e.Quantity != nil {
		cols["quantity"] = *e.Quantity
	}
	if e.ExpiryDate != nil {
		cols["expiry_date"] = datatypes.Date(*e.ExpiryDate)
	}
	if e.PickupLocation != nil {
		cols["pickup_location"] = *e.PickupLocation
	}
	if e.ContactInfo != nil {
		cols["contact_info"] = *e.ContactInfo
	}
	if e.Notes != nil {
		cols["notes"] = *e.Notes
	}
	return cols
}

// DonationTransition is one forward lifecycle step together with the actor
// metadata written alongside it.
type DonationTransition struct {
	From       DonationStatus
	To         DonationStatus
	ActorID    string
	ActorName  string
	ActorEmail string
	At         time.Time
}

// Columns returns the columns written by the transition.
func (t DonationTransition) Columns() map[string]interface{} {
	cols := map[string]interface{}{"status": t.To}
	switch t.To {
	case DonationStatusClaimed:
		cols["claimed_by"] = t.ActorID
		cols["claimed_by_name"] = t.ActorName
		cols["claimed_by_email"] = t.ActorEmail
		cols["claimed_at"] = t.At
	case DonationStatusCollected:
		cols["collected_by"] = t.ActorID
		cols["collected_by_name"] = t.ActorName
		cols["collected_by_email"] = t.ActorEmail
		cols["collected_at"] = t.At
	case DonationStatusAvailable:
	}
	return cols
}

// Apply mirrors Columns onto an in-memory donation.
func (t DonationTransition) Apply(d *Donation) {
	at := t.At
	d.Status = t.To
	switch t.To {
	case DonationStatusClaimed:
		d.ClaimedBy, d.ClaimedByName, d.ClaimedByEmail, d.ClaimedAt = t.ActorID, t.ActorName, t.ActorEmail, &at
	case DonationStatusCollected:
		d.CollectedBy, d.CollectedByName, d.CollectedByEmail, d.CollectedAt = t.ActorID, t.ActorName, t.ActorEmail, &at
	case DonationStatusAvailable:
	}
}
