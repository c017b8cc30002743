package store_test

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/integrityops/vessel-compliance/internal/calculation"
	"github.com/integrityops/vessel-compliance/internal/config"
	"github.com/integrityops/vessel-compliance/internal/store"
	"github.com/integrityops/vessel-compliance/internal/store/model"
)

const (
	insertCalculationStm   = "INSERT INTO calculations (id, calculation_type, name, input_parameters, status, vessel_id, project_id, org_id, is_active, created_at) VALUES ('%s', 'asme_b31_3', '%s', '{}', '%s', '%s', '%s', '%s', TRUE, CURRENT_TIMESTAMP);"
	insertCalculationAtStm = "INSERT INTO calculations (id, calculation_type, name, input_parameters, status, vessel_id, project_id, org_id, is_active, created_at) VALUES ('%s', 'asme_b31_3', '%s', '{}', '%s', '%s', '%s', '%s', %t, '%s');"
	insertOrganizationStm  = "INSERT INTO organizations (id, name, plan, max_calculations_per_month, subscription_started_at) VALUES ('%s', '%s', 'free', %d, '%s');"
	insertVesselStm        = "INSERT INTO vessels (id, name, project_id, org_id, design_pressure_kpa, design_temperature_c, material_grade) VALUES ('%s', '%s', '%s', '%s', 5000, 200, 'A106-B');"
	timestampLayout        = "2006-01-02T15:04:05Z"
)

var _ = Describe("calculation store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db

		err = s.InitialMigration()
		Expect(err).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE from calculations;")
		gormdb.Exec("DELETE from vessels;")
		gormdb.Exec("DELETE from organizations;")
	})

	Context("create", func() {
		It("successfully creates a pending calculation", func() {
			calc := model.Calculation{
				ID:              uuid.New(),
				CalculationType: "asme_b31_3",
				Name:            "wall thickness check",
				InputParameters: model.MakeJSONField(calculation.Params{"design_pressure_kpa": 5000.0}),
				Status:          model.CalculationStatusPending,
				VesselID:        uuid.New(),
				ProjectID:       uuid.New(),
				OrgID:           uuid.New(),
				IsActive:        true,
			}

			created, err := s.Calculation().Create(context.TODO(), calc)
			Expect(err).To(BeNil())
			Expect(created.Status).To(Equal(model.CalculationStatusPending))
			Expect(created.OutputParameters).To(BeNil())
			Expect(created.ErrorMessage).To(BeNil())
		})
	})

	Context("get", func() {
		It("successfully gets a calculation", func() {
			id := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertCalculationStm, id, "calc1", "pending", uuid.New(), uuid.New(), uuid.New()))
			Expect(tx.Error).To(BeNil())

			calc, err := s.Calculation().Get(context.TODO(), id)
			Expect(err).To(BeNil())
			Expect(calc.Name).To(Equal("calc1"))
			Expect(calc.Status).To(Equal(model.CalculationStatusPending))
		})

		It("fails to get a calculation -- record not found", func() {
			_, err := s.Calculation().Get(context.TODO(), uuid.New())
			Expect(err).To(Equal(store.ErrRecordNotFound))
		})
	})

	Context("list", func() {
		It("successfully lists all the calculations", func() {
			orgID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertCalculationStm, uuid.New(), "calc1", "pending", uuid.New(), uuid.New(), orgID))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertCalculationStm, uuid.New(), "calc2", "completed", uuid.New(), uuid.New(), orgID))
			Expect(tx.Error).To(BeNil())

			calculations, err := s.Calculation().List(context.TODO(), store.NewCalculationQueryFilter(), nil)
			Expect(err).To(BeNil())
			Expect(calculations).To(HaveLen(2))
		})

		It("successfully lists calculations -- filtered by org", func() {
			orgID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertCalculationStm, uuid.New(), "calc1", "pending", uuid.New(), uuid.New(), orgID))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertCalculationStm, uuid.New(), "calc2", "pending", uuid.New(), uuid.New(), uuid.New()))
			Expect(tx.Error).To(BeNil())

			calculations, err := s.Calculation().List(context.TODO(), store.NewCalculationQueryFilter().ByOrgID(orgID.String()), nil)
			Expect(err).To(BeNil())
			Expect(calculations).To(HaveLen(1))
			Expect(calculations[0].Name).To(Equal("calc1"))
		})

		It("successfully lists calculations -- filtered by status", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertCalculationStm, uuid.New(), "calc1", "failed", uuid.New(), uuid.New(), uuid.New()))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertCalculationStm, uuid.New(), "calc2", "completed", uuid.New(), uuid.New(), uuid.New()))
			Expect(tx.Error).To(BeNil())

			calculations, err := s.Calculation().List(context.TODO(), store.NewCalculationQueryFilter().ByStatus(model.CalculationStatusFailed), nil)
			Expect(err).To(BeNil())
			Expect(calculations).To(HaveLen(1))
			Expect(calculations[0].Name).To(Equal("calc1"))
		})

		It("successfully lists calculations -- active only", func() {
			now := time.Now().UTC().Format(timestampLayout)
			tx := gormdb.Exec(fmt.Sprintf(insertCalculationAtStm, uuid.New(), "active", "pending", uuid.New(), uuid.New(), uuid.New(), true, now))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertCalculationAtStm, uuid.New(), "inactive", "pending", uuid.New(), uuid.New(), uuid.New(), false, now))
			Expect(tx.Error).To(BeNil())

			calculations, err := s.Calculation().List(context.TODO(), store.NewCalculationQueryFilter().ByActiveOnly(), nil)
			Expect(err).To(BeNil())
			Expect(calculations).To(HaveLen(1))
			Expect(calculations[0].Name).To(Equal("active"))
		})

		It("successfully lists calculations -- limit and offset", func() {
			orgID := uuid.New()
			for i := 0; i < 5; i++ {
				tx := gormdb.Exec(fmt.Sprintf(insertCalculationStm, uuid.New(), fmt.Sprintf("calc%d", i), "pending", uuid.New(), uuid.New(), orgID))
				Expect(tx.Error).To(BeNil())
			}

			calculations, err := s.Calculation().List(context.TODO(), nil, store.NewCalculationQueryOptions().WithLimit(2))
			Expect(err).To(BeNil())
			Expect(calculations).To(HaveLen(2))

			calculations, err = s.Calculation().List(context.TODO(), nil, store.NewCalculationQueryOptions().WithLimit(2).WithOffset(4))
			Expect(err).To(BeNil())
			Expect(calculations).To(HaveLen(1))
		})
	})

	Context("update status", func() {
		It("successfully transitions pending to running", func() {
			id := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertCalculationStm, id, "calc1", "pending", uuid.New(), uuid.New(), uuid.New()))
			Expect(tx.Error).To(BeNil())

			calc, err := s.Calculation().UpdateStatus(context.TODO(), id, model.CalculationStatusPending, model.CalculationStatusRunning, nil, nil)
			Expect(err).To(BeNil())
			Expect(calc.Status).To(Equal(model.CalculationStatusRunning))
			Expect(calc.UpdatedAt).NotTo(BeNil())
		})

		It("successfully transitions running to completed with outputs", func() {
			id := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertCalculationStm, id, "calc1", "running", uuid.New(), uuid.New(), uuid.New()))
			Expect(tx.Error).To(BeNil())

			outputs := calculation.Results{"minimum_required_thickness_mm": 4.58, "acceptable": true}
			calc, err := s.Calculation().UpdateStatus(context.TODO(), id, model.CalculationStatusRunning, model.CalculationStatusCompleted, outputs, nil)
			Expect(err).To(BeNil())
			Expect(calc.Status).To(Equal(model.CalculationStatusCompleted))
			Expect(calc.OutputParameters).NotTo(BeNil())
			Expect(calc.OutputParameters.Data).To(HaveKeyWithValue("acceptable", true))
			Expect(calc.ErrorMessage).To(BeNil())
		})

		It("successfully transitions running to failed with an error message", func() {
			id := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertCalculationStm, id, "calc1", "running", uuid.New(), uuid.New(), uuid.New()))
			Expect(tx.Error).To(BeNil())

			errorMessage := "invalid input: field \"design_pressure_kpa\" is required"
			calc, err := s.Calculation().UpdateStatus(context.TODO(), id, model.CalculationStatusRunning, model.CalculationStatusFailed, nil, &errorMessage)
			Expect(err).To(BeNil())
			Expect(calc.Status).To(Equal(model.CalculationStatusFailed))
			Expect(calc.ErrorMessage).NotTo(BeNil())
			Expect(*calc.ErrorMessage).To(Equal(errorMessage))
			Expect(calc.OutputParameters).To(BeNil())
		})

		It("fails to transition -- stale status", func() {
			id := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertCalculationStm, id, "calc1", "completed", uuid.New(), uuid.New(), uuid.New()))
			Expect(tx.Error).To(BeNil())

			// a terminal record cannot be reopened
			_, err := s.Calculation().UpdateStatus(context.TODO(), id, model.CalculationStatusPending, model.CalculationStatusRunning, nil, nil)
			Expect(err).To(Equal(store.ErrStaleStatus))

			calc, err := s.Calculation().Get(context.TODO(), id)
			Expect(err).To(BeNil())
			Expect(calc.Status).To(Equal(model.CalculationStatusCompleted))
		})

		It("fails to transition -- record not found", func() {
			_, err := s.Calculation().UpdateStatus(context.TODO(), uuid.New(), model.CalculationStatusPending, model.CalculationStatusRunning, nil, nil)
			Expect(err).To(Equal(store.ErrRecordNotFound))
		})
	})

	Context("count active since", func() {
		It("counts only active records created in the window", func() {
			orgID := uuid.New()
			since := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

			inWindow := since.AddDate(0, 0, 10).Format(timestampLayout)
			beforeWindow := since.AddDate(0, 0, -10).Format(timestampLayout)

			tx := gormdb.Exec(fmt.Sprintf(insertCalculationAtStm, uuid.New(), "in1", "completed", uuid.New(), uuid.New(), orgID, true, inWindow))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertCalculationAtStm, uuid.New(), "in2", "failed", uuid.New(), uuid.New(), orgID, true, inWindow))
			Expect(tx.Error).To(BeNil())
			// soft-deleted: not counted
			tx = gormdb.Exec(fmt.Sprintf(insertCalculationAtStm, uuid.New(), "inactive", "completed", uuid.New(), uuid.New(), orgID, false, inWindow))
			Expect(tx.Error).To(BeNil())
			// previous billing period: not counted
			tx = gormdb.Exec(fmt.Sprintf(insertCalculationAtStm, uuid.New(), "old", "completed", uuid.New(), uuid.New(), orgID, true, beforeWindow))
			Expect(tx.Error).To(BeNil())
			// another organization: not counted
			tx = gormdb.Exec(fmt.Sprintf(insertCalculationAtStm, uuid.New(), "other", "completed", uuid.New(), uuid.New(), uuid.New(), true, inWindow))
			Expect(tx.Error).To(BeNil())

			count, err := s.Calculation().CountActiveSince(context.TODO(), orgID, since)
			Expect(err).To(BeNil())
			Expect(count).To(Equal(2))
		})
	})
})
