// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// validCurrencies contains the ISO 4217 currency codes accepted in preferences.
var validCurrencies = map[string]bool{
	"AUD": true, "BRL": true, "CAD": true, "CHF": true, "CNY": true,
	"DKK": true, "EUR": true, "GBP": true, "HKD": true, "IDR": true,
	"ILS": true, "INR": true, "JPY": true, "KRW": true, "MXN": true,
	"MYR": true, "NOK": true, "NZD": true, "PHP": true, "PLN": true,
	"RUB": true, "SEK": true, "SGD": true, "THB": true, "TRY": true,
	"TWD": true, "USD": true, "VND": true, "ZAR": true,
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("iso4217", validateISO4217)
		_ = v.RegisterValidation("goal_status", validateGoalStatus)
		_ = v.RegisterValidation("alert_threshold", validateAlertThreshold)
		_ = v.RegisterValidation("theme", validateTheme)
	}
}

func validateISO4217(fl validator.FieldLevel) bool {
	return validCurrencies[fl.Field().String()]
}

func validateGoalStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "In Progress", "Completed", "Failed":
		return true
	}
	return false
}

// Thresholds are percentages in (0, 100].
func validateAlertThreshold(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return v > 0 && v <= 100
}

func validateTheme(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "light", "dark":
		return true
	}
	return false
}
