package store_test

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/integrityops/vessel-compliance/internal/calculation"
	"github.com/integrityops/vessel-compliance/internal/config"
	"github.com/integrityops/vessel-compliance/internal/store"
	"github.com/integrityops/vessel-compliance/internal/store/model"
)

// The dev/test path runs against sqlite with the schema created by AutoMigrate, so the
// model tags must stay free of postgres-only defaults.
var _ = Describe("sqlite store", Ordered, func() {
	var s store.Store

	BeforeAll(func() {
		cfg := config.NewDefault()
		cfg.Database.Type = "sqlite"
		cfg.Database.Name = filepath.Join(GinkgoT().TempDir(), "store.db")

		db, err := store.InitDB(cfg)
		Expect(err).To(BeNil())

		s = store.NewStore(db)

		err = s.InitialMigration()
		Expect(err).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	It("round-trips a calculation through the migrated schema", func() {
		calc := model.Calculation{
			ID:              uuid.New(),
			CalculationType: "asme_b31_3",
			Name:            "wall thickness check",
			InputParameters: model.MakeJSONField(calculation.Params{"design_pressure_kpa": 2000.0}),
			Status:          model.CalculationStatusPending,
			VesselID:        uuid.New(),
			ProjectID:       uuid.New(),
			OrgID:           uuid.New(),
			IsActive:        true,
		}

		created, err := s.Calculation().Create(context.TODO(), calc)
		Expect(err).To(BeNil())
		Expect(created.CreatedAt.IsZero()).To(BeFalse())

		got, err := s.Calculation().Get(context.TODO(), created.ID)
		Expect(err).To(BeNil())
		Expect(got.InputParameters.Data).To(HaveKeyWithValue("design_pressure_kpa", 2000.0))

		updated, err := s.Calculation().UpdateStatus(context.TODO(), created.ID, model.CalculationStatusPending, model.CalculationStatusRunning, nil, nil)
		Expect(err).To(BeNil())
		Expect(updated.Status).To(Equal(model.CalculationStatusRunning))
	})
})
