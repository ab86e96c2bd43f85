package domain

import "time"

// UnlimitedCredits is the sentinel credit balance meaning the account is
// never charged for generations.
const UnlimitedCredits = -1

// Account models a registered user of the platform.
type Account struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	IsAdmin        bool      `json:"is_admin"`
	IsBlocked      bool      `json:"is_blocked"`
	IsAgentEnabled bool      `json:"is_agent_enabled"`
	Credits        int       `json:"credits"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasCredits reports whether the account may start a generation: either the
// unlimited sentinel or a strictly positive balance.
func (a *Account) HasCredits() bool {
	return a.Credits == UnlimitedCredits || a.Credits > 0
}
