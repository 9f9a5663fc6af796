// internal/domain/user.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountType classifies a brokerage account.
type AccountType string

const (
	AccountTypeIndividual AccountType = "INDIVIDUAL"
	AccountTypeJoint      AccountType = "JOINT"
	AccountTypeCorporate  AccountType = "CORPORATE"
)

// User represents a demo user in the sandbox. There is no password field:
// accounts are pre-authenticated demo users.
type User struct {
	ID            string      `db:"id" json:"id"`
	Username      string      `db:"username" json:"username"` // Unique username
	Email         string      `db:"email" json:"email"`       // Unique email
	FirstName     *string     `db:"first_name" json:"first_name"`
	LastName      *string     `db:"last_name" json:"last_name"`
	Address       *string     `db:"address" json:"address"`
	City          *string     `db:"city" json:"city"`
	State         *string     `db:"state" json:"state"`
	ZipCode       *string     `db:"zip_code" json:"zip_code"`
	DateOfBirth   *time.Time  `db:"date_of_birth" json:"date_of_birth"`
	Country       *string     `db:"country" json:"country"`
	AccountNumber *string     `db:"account_number" json:"account_number"` // 11-digit account number
	AccountType   AccountType `db:"account_type" json:"account_type"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// NewUser creates a new User instance.
func NewUser(username, email string) *User {
	now := time.Now().UTC()
	return &User{
		ID:          uuid.NewString(),
		Username:    username,
		Email:       email,
		AccountType: AccountTypeIndividual,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
