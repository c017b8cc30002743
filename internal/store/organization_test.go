package store_test

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/integrityops/vessel-compliance/internal/config"
	"github.com/integrityops/vessel-compliance/internal/store"
)

var _ = Describe("organization store", Ordered, func() {
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
		gormdb.Exec("DELETE from organizations;")
	})

	Context("get", func() {
		It("successfully gets an organization", func() {
			id := uuid.New()
			anchor := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC).Format(timestampLayout)
			tx := gormdb.Exec(fmt.Sprintf(insertOrganizationStm, id, "acme", 100, anchor))
			Expect(tx.Error).To(BeNil())

			org, err := s.Organization().Get(context.TODO(), id)
			Expect(err).To(BeNil())
			Expect(org.Name).To(Equal("acme"))
			Expect(org.Plan).To(Equal("free"))
			Expect(org.MaxCalculationsPerMonth).To(Equal(100))
		})

		It("fails to get an organization -- record not found", func() {
			_, err := s.Organization().Get(context.TODO(), uuid.New())
			Expect(err).To(Equal(store.ErrRecordNotFound))
		})
	})

	Context("get for update", func() {
		It("successfully gets an organization inside a transaction", func() {
			id := uuid.New()
			anchor := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC).Format(timestampLayout)
			tx := gormdb.Exec(fmt.Sprintf(insertOrganizationStm, id, "acme", 100, anchor))
			Expect(tx.Error).To(BeNil())

			ctx, err := s.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			org, err := s.Organization().GetForUpdate(ctx, id)
			Expect(err).To(BeNil())
			Expect(org.ID).To(Equal(id))

			_, err = store.Commit(ctx)
			Expect(err).To(BeNil())
		})
	})
})
