package validator

import (
	"log"
	"strings"
	"time"

	"foodshare_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-user-role", validateUserRole)
	mustRegister("is-donation-status", validateDonationStatus)
	mustRegister("is-iso-date", validateISODate)
	mustRegister("notblank", validateNotBlank)
}

// Empty values pass every rule below; "required" covers presence.

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, ok := models.ParseUserRole(value)
	return ok
}

func validateDonationStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, ok := models.ParseDonationStatus(value)
	return ok
}

func validateISODate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse(models.DateLayout, value)
	return err == nil
}

// validateNotBlank rejects empty and whitespace-only strings. Optional pointer
// fields reach it only when present, so an explicit "" fails too.
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
