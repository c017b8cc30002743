package mappers

import (
	"github.com/google/uuid"

	"github.com/integrityops/vessel-compliance/internal/calculation"
	"github.com/integrityops/vessel-compliance/internal/store/model"
)

// CalculationCreateForm carries everything the orchestrator needs to start a
// calculation. The identifiers are opaque here: the surrounding application resolves
// and authorizes them before this core is called.
type CalculationCreateForm struct {
	CalculationType string
	Name            string
	Description     string
	InputParameters calculation.Params
	VesselID        uuid.UUID
	ProjectID       uuid.UUID
	OrgID           uuid.UUID
	ActorID         string
}

func (f CalculationCreateForm) ToModel() model.Calculation {
	return model.Calculation{
		ID:              uuid.New(),
		CalculationType: f.CalculationType,
		Name:            f.Name,
		Description:     f.Description,
		InputParameters: model.MakeJSONField(f.InputParameters),
		Status:          model.CalculationStatusPending,
		VesselID:        f.VesselID,
		ProjectID:       f.ProjectID,
		OrgID:           f.OrgID,
		ActorID:         f.ActorID,
		IsActive:        true,
	}
}
