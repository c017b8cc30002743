package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/integrityops/vessel-compliance/internal/calculation"
)

// CalculationStatus is the lifecycle state of a Calculation.
//
// Transitions are monotonic and one-directional:
// pending -> running -> {completed, failed}. There is no transition out of a
// terminal state; re-running requires a new Calculation.
type CalculationStatus string

const (
	CalculationStatusPending   CalculationStatus = "pending"
	CalculationStatusRunning   CalculationStatus = "running"
	CalculationStatusCompleted CalculationStatus = "completed"
	CalculationStatusFailed    CalculationStatus = "failed"
)

// Terminal reports whether no further transition is permitted from s.
func (s CalculationStatus) Terminal() bool {
	return s == CalculationStatusCompleted || s == CalculationStatusFailed
}

type Calculation struct {
	ID               uuid.UUID `gorm:"primaryKey;"`
	CalculationType  string    `gorm:"not null;type:VARCHAR(100)"`
	Name             string    `gorm:"not null"`
	Description      string
	InputParameters  *JSONField[calculation.Params]  `gorm:"type:jsonb;not null"`
	OutputParameters *JSONField[calculation.Results] `gorm:"type:jsonb"`
	Status           CalculationStatus               `gorm:"not null;type:VARCHAR(20);default:'pending';index:calculations_status_idx"`
	ErrorMessage     *string
	VesselID         uuid.UUID `gorm:"not null;index:calculations_vessel_id_idx"`
	ProjectID        uuid.UUID `gorm:"not null;index:calculations_project_id_idx"`
	OrgID            uuid.UUID `gorm:"not null;index:calculations_org_id_idx"`
	ActorID          string    `gorm:"type:VARCHAR(255)"`
	IsActive         bool      `gorm:"not null;default:true"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt        *time.Time
}

type CalculationList []Calculation

func (c Calculation) String() string {
	val, _ := json.Marshal(c)
	return string(val)
}
