package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/integrityops/vessel-compliance/internal/calculation"
	"github.com/integrityops/vessel-compliance/internal/store/model"
)

type Calculation interface {
	List(ctx context.Context, filter *CalculationQueryFilter, opts *CalculationQueryOptions) (model.CalculationList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Calculation, error)
	Create(ctx context.Context, calc model.Calculation) (*model.Calculation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.CalculationStatus, outputs calculation.Results, errorMessage *string) (*model.Calculation, error)
	CountActiveSince(ctx context.Context, orgID uuid.UUID, since time.Time) (int, error)
}

type CalculationStore struct {
	db *gorm.DB
}

// Make sure we conform to Calculation interface
var _ Calculation = (*CalculationStore)(nil)

func NewCalculationStore(db *gorm.DB) Calculation {
	return &CalculationStore{db: db}
}

func (c *CalculationStore) List(ctx context.Context, filter *CalculationQueryFilter, opts *CalculationQueryOptions) (model.CalculationList, error) {
	var calculations model.CalculationList
	tx := c.getDB(ctx).Model(&calculations).Order("created_at DESC")

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}
	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	result := tx.Find(&calculations)
	if result.Error != nil {
		return nil, result.Error
	}
	return calculations, nil
}

func (c *CalculationStore) Get(ctx context.Context, id uuid.UUID) (*model.Calculation, error) {
	var calc model.Calculation
	result := c.getDB(ctx).First(&calc, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &calc, nil
}

func (c *CalculationStore) Create(ctx context.Context, calc model.Calculation) (*model.Calculation, error) {
	result := c.getDB(ctx).Clauses(clause.Returning{}).Create(&calc)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &calc, nil
}

// UpdateStatus performs a single-row guarded transition. The WHERE clause on the
// current status makes the state machine safe without cross-record coordination: a row
// that already left `from` is not touched and the caller gets ErrStaleStatus, so a
// terminal record can never be reopened.
func (c *CalculationStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.CalculationStatus, outputs calculation.Results, errorMessage *string) (*model.Calculation, error) {
	now := time.Now()
	updates := map[string]any{
		"status":     to,
		"updated_at": &now,
	}
	if outputs != nil {
		updates["output_parameters"] = model.MakeJSONField(outputs)
	}
	if errorMessage != nil {
		updates["error_message"] = *errorMessage
	}

	result := c.getDB(ctx).Model(&model.Calculation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Either the record does not exist or it already left `from`.
		if _, err := c.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStaleStatus
	}

	return c.Get(ctx, id)
}

// CountActiveSince counts the active calculations created for an organization since
// the given instant. Callers run it inside the organization-locked admission
// transaction, which is what keeps concurrent quota checks from double-admitting.
func (c *CalculationStore) CountActiveSince(ctx context.Context, orgID uuid.UUID, since time.Time) (int, error) {
	var count int64
	result := c.getDB(ctx).Model(&model.Calculation{}).
		Where("org_id = ? AND is_active IS TRUE AND created_at >= ?", orgID, since).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(count), nil
}

func (c *CalculationStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return c.db
}
