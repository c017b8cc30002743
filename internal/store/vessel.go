package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/integrityops/vessel-compliance/internal/store/model"
)

type Vessel interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Vessel, error)
	List(ctx context.Context, filter *VesselQueryFilter) (model.VesselList, error)
}

type VesselStore struct {
	db *gorm.DB
}

// Make sure we conform to Vessel interface
var _ Vessel = (*VesselStore)(nil)

func NewVesselStore(db *gorm.DB) Vessel {
	return &VesselStore{db: db}
}

func (v *VesselStore) Get(ctx context.Context, id uuid.UUID) (*model.Vessel, error) {
	var vessel model.Vessel
	result := v.getDB(ctx).First(&vessel, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &vessel, nil
}

func (v *VesselStore) List(ctx context.Context, filter *VesselQueryFilter) (model.VesselList, error) {
	var vessels model.VesselList
	tx := v.getDB(ctx).Model(&vessels).Order("created_at DESC")

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	result := tx.Find(&vessels)
	if result.Error != nil {
		return nil, result.Error
	}
	return vessels, nil
}

func (v *VesselStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return v.db
}
