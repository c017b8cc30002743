package service

import (
	"fmt"

	"github.com/google/uuid"
)

type ErrUnsupportedCalculationType struct {
	error
}

func NewErrUnsupportedCalculationType(calculationType string) *ErrUnsupportedCalculationType {
	return &ErrUnsupportedCalculationType{fmt.Errorf("unsupported calculation type %q", calculationType)}
}

// ErrQuotaExceeded carries the organization's current usage and limit so the caller can
// surface them to the user.
type ErrQuotaExceeded struct {
	error
	Current int
	Max     int
}

func NewErrQuotaExceeded(current, max int) *ErrQuotaExceeded {
	return &ErrQuotaExceeded{
		error:   fmt.Errorf("organization reached its monthly calculation quota: %d of %d used", current, max),
		Current: current,
		Max:     max,
	}
}

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id uuid.UUID, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %s not found", resourceType, id)}
}

func NewErrCalculationNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "calculation")
}

func NewErrOrganizationNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "organization")
}

func NewErrVesselNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "vessel")
}
