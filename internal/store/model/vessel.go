package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Vessel holds the validated engineering attributes of a pressure vessel or piping
// system. The CRUD lifecycle of vessels belongs to the surrounding application; this
// core only reads them for scoping and audit listings.
type Vessel struct {
	ID                 uuid.UUID `gorm:"primaryKey;"`
	Name               string    `gorm:"not null"`
	ProjectID          uuid.UUID `gorm:"not null;index:vessels_project_id_idx"`
	OrgID              uuid.UUID `gorm:"not null;index:vessels_org_id_idx"`
	DesignPressureKPa  float64   `gorm:"column:design_pressure_kpa"`
	DesignTemperatureC float64   `gorm:"column:design_temperature_c"`
	MaterialGrade      string    `gorm:"type:VARCHAR(100)"`
	CreatedAt          time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt          *time.Time
}

type VesselList []Vessel

func (v Vessel) String() string {
	val, _ := json.Marshal(v)
	return string(val)
}
