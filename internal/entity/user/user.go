package user

import (
	"time"

	"max.ks1230/fintrack/internal/entity/currency"
)

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// User is a registered account. The ID is the canonical partition key for
// all ledger and budget data; email and display name are never used as
// keys.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	JoinedAt     time.Time `json:"joined_at"`
	Plan         Plan      `json:"plan"`
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Settings holds per-user presentation preferences. They carry no
// financial meaning; aggregation only reads the currency symbol.
type Settings struct {
	Theme       Theme  `json:"theme"`
	Currency    string `json:"currency"`
	DisplayName string `json:"display_name"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:    ThemeLight,
		Currency: currency.INR,
	}
}

// OrDefaults fills unset fields so old persisted records keep working.
func (s Settings) OrDefaults() Settings {
	if s.Theme == "" {
		s.Theme = ThemeLight
	}
	if s.Currency == "" {
		s.Currency = currency.INR
	}
	return s
}
