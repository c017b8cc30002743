package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/integrityops/vessel-compliance/internal/store/model"
)

type SortOrder int

const (
	SortUnspecified SortOrder = iota
	SortByID
	SortByCreatedTime
	SortByUpdatedTime
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type CalculationQueryFilter BaseQuerier

func NewCalculationQueryFilter() *CalculationQueryFilter {
	return &CalculationQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (f *CalculationQueryFilter) ByVesselID(vesselID string) *CalculationQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("vessel_id = ?", vesselID)
	})
	return f
}

func (f *CalculationQueryFilter) ByProjectID(projectID string) *CalculationQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("project_id = ?", projectID)
	})
	return f
}

func (f *CalculationQueryFilter) ByOrgID(orgID string) *CalculationQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("org_id = ?", orgID)
	})
	return f
}

func (f *CalculationQueryFilter) ByStatus(status model.CalculationStatus) *CalculationQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", status)
	})
	return f
}

// ByActiveOnly excludes soft-deleted calculations. They stay in the table for audit but
// never appear in listings or quota counts.
func (f *CalculationQueryFilter) ByActiveOnly() *CalculationQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("is_active IS TRUE")
	})
	return f
}

func (f *CalculationQueryFilter) ByCreatedAfter(t time.Time) *CalculationQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("created_at >= ?", t)
	})
	return f
}

func (f *CalculationQueryFilter) ByCreatedBefore(t time.Time) *CalculationQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("created_at < ?", t)
	})
	return f
}

func (f *CalculationQueryFilter) ByNameLike(pattern string) *CalculationQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("name LIKE ?", "%"+pattern+"%")
	})
	return f
}

type CalculationQueryOptions BaseQuerier

func NewCalculationQueryOptions() *CalculationQueryOptions {
	return &CalculationQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (o *CalculationQueryOptions) WithLimit(limit int) *CalculationQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Limit(limit)
	})
	return o
}

func (o *CalculationQueryOptions) WithOffset(offset int) *CalculationQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Offset(offset)
	})
	return o
}

func (o *CalculationQueryOptions) WithSortOrder(sort SortOrder) *CalculationQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		switch sort {
		case SortByID:
			return tx.Order("id")
		case SortByUpdatedTime:
			return tx.Order("updated_at")
		case SortByCreatedTime:
			return tx.Order("created_at")
		default:
			return tx
		}
	})
	return o
}

type VesselQueryFilter BaseQuerier

func NewVesselQueryFilter() *VesselQueryFilter {
	return &VesselQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (f *VesselQueryFilter) ByProjectID(projectID string) *VesselQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("project_id = ?", projectID)
	})
	return f
}

func (f *VesselQueryFilter) ByOrgID(orgID string) *VesselQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("org_id = ?", orgID)
	})
	return f
}
