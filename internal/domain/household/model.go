package household

import (
	"time"

	"github.com/shopspring/decimal"
)

type Household struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"not null"`
	Address    string    `gorm:"not null"`
	InviteCode string    `gorm:"size:8;not null;uniqueIndex"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// Member is a person identity. It outlives household membership: a member
// may be houseless (HouseholdID nil) and belongs to at most one household
// at a time.
type Member struct {
	ID            string          `gorm:"type:uuid;primaryKey"`
	HouseholdID   *string         `gorm:"type:uuid;index"`
	DisplayName   string          `gorm:"not null"`
	Role          Role            `gorm:"type:varchar(16);not null"`
	FixedRentBase decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime"`
}

func (m Member) InHousehold(householdID string) bool {
	return m.HouseholdID != nil && *m.HouseholdID == householdID
}
