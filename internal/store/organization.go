package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/integrityops/vessel-compliance/internal/store/model"
)

type Organization interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Organization, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Organization, error)
}

type OrganizationStore struct {
	db *gorm.DB
}

// Make sure we conform to Organization interface
var _ Organization = (*OrganizationStore)(nil)

func NewOrganizationStore(db *gorm.DB) Organization {
	return &OrganizationStore{db: db}
}

func (o *OrganizationStore) Get(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	return o.get(ctx, id, false)
}

// GetForUpdate reads the organization under a row-level lock. It is the serialization
// point for quota admission: concurrent admissions for the same organization queue on
// this lock until the surrounding transaction commits or rolls back. It must be called
// inside a transaction context.
func (o *OrganizationStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	return o.get(ctx, id, true)
}

func (o *OrganizationStore) get(ctx context.Context, id uuid.UUID, forUpdate bool) (*model.Organization, error) {
	tx := o.getDB(ctx)
	// sqlite has no row locks; its single-writer model serializes the admission anyway.
	if forUpdate && tx.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var org model.Organization
	result := tx.First(&org, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &org, nil
}

func (o *OrganizationStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return o.db
}
