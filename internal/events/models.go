package events

// CalculationEvent is the payload published on calculation lifecycle transitions.
type CalculationEvent struct {
	CalculationID   string `json:"calculation_id"`
	CalculationType string `json:"calculation_type"`
	OrgID           string `json:"org_id"`
	VesselID        string `json:"vessel_id"`
	Status          string `json:"status"`
	ErrorMessage    string `json:"error_message,omitempty"`
}
