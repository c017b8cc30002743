package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Organization carries the tenant settings this core consumes: the monthly calculation
// quota and the subscription anchor its billing period repeats from. The surrounding
// application owns everything else about organizations.
type Organization struct {
	ID                      uuid.UUID `gorm:"primaryKey;"`
	Name                    string    `gorm:"not null"`
	Plan                    string    `gorm:"not null;type:VARCHAR(50);default:'free'"`
	MaxCalculationsPerMonth int       `gorm:"not null"`
	SubscriptionStartedAt   time.Time `gorm:"not null"`
	CreatedAt               time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt               *time.Time
}

type OrganizationList []Organization

func (o Organization) String() string {
	val, _ := json.Marshal(o)
	return string(val)
}
