package store

import (
	"context"

	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Calculation() Calculation
	Organization() Organization
	Vessel() Vessel
	InitialMigration() error
	Close() error
}

type DataStore struct {
	db           *gorm.DB
	calculation  Calculation
	organization Organization
	vessel       Vessel
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		calculation:  NewCalculationStore(db),
		organization: NewOrganizationStore(db),
		vessel:       NewVesselStore(db),
		db:           db,
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Calculation() Calculation {
	return s.calculation
}

func (s *DataStore) Organization() Organization {
	return s.organization
}

func (s *DataStore) Vessel() Vessel {
	return s.vessel
}

func (s *DataStore) InitialMigration() error {
	return InitialMigration(s.db)
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
