package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/integrityops/vessel-compliance/internal/calculation"
	"github.com/integrityops/vessel-compliance/internal/events"
	"github.com/integrityops/vessel-compliance/internal/service/mappers"
	"github.com/integrityops/vessel-compliance/internal/store"
	"github.com/integrityops/vessel-compliance/internal/store/model"
	"github.com/integrityops/vessel-compliance/pkg/metrics"
)

const DefaultComputeTimeout = 2 * time.Minute

// CalculationFilter is the service-level listing filter. Empty fields are ignored.
type CalculationFilter struct {
	VesselID  string
	ProjectID string
	OrgID     string
	Status    string
	NameLike  string
	Limit     int
	Offset    int
}

// CalculationService orchestrates the calculation lifecycle: admission under the
// organization's quota, the pending -> running -> {completed, failed} state machine and
// the standard-specific computation in between.
type CalculationService struct {
	store    store.Store
	registry *calculation.Registry
	quota    *QuotaEnforcer
	producer *events.EventProducer
	timeout  time.Duration
}

type CalculationServiceOption func(cs *CalculationService)

// WithEventProducer enables lifecycle event emission. Without it the service stays
// silent, which is what the tests and the migrate command want.
func WithEventProducer(producer *events.EventProducer) CalculationServiceOption {
	return func(cs *CalculationService) {
		cs.producer = producer
	}
}

func WithComputeTimeout(timeout time.Duration) CalculationServiceOption {
	return func(cs *CalculationService) {
		if timeout > 0 {
			cs.timeout = timeout
		}
	}
}

func NewCalculationService(s store.Store, registry *calculation.Registry, opts ...CalculationServiceOption) *CalculationService {
	cs := &CalculationService{
		store:    s,
		registry: registry,
		quota:    NewQuotaEnforcer(s),
		timeout:  DefaultComputeTimeout,
	}
	for _, o := range opts {
		o(cs)
	}
	return cs
}

func (cs *CalculationService) ListCalculations(ctx context.Context, filter *CalculationFilter) (model.CalculationList, error) {
	storeFilter := store.NewCalculationQueryFilter().ByActiveOnly()
	opts := store.NewCalculationQueryOptions()

	if filter != nil {
		if filter.VesselID != "" {
			storeFilter = storeFilter.ByVesselID(filter.VesselID)
		}
		if filter.ProjectID != "" {
			storeFilter = storeFilter.ByProjectID(filter.ProjectID)
		}
		if filter.OrgID != "" {
			storeFilter = storeFilter.ByOrgID(filter.OrgID)
		}
		if filter.Status != "" {
			storeFilter = storeFilter.ByStatus(model.CalculationStatus(filter.Status))
		}
		if filter.NameLike != "" {
			storeFilter = storeFilter.ByNameLike(filter.NameLike)
		}
		if filter.Limit > 0 {
			opts = opts.WithLimit(filter.Limit)
		}
		if filter.Offset > 0 {
			opts = opts.WithOffset(filter.Offset)
		}
	}

	calculations, err := cs.store.Calculation().List(ctx, storeFilter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}
	return calculations, nil
}

func (cs *CalculationService) GetCalculation(ctx context.Context, id uuid.UUID) (*model.Calculation, error) {
	calc, err := cs.store.Calculation().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrCalculationNotFound(id)
		}
		return nil, fmt.Errorf("failed to get calculation: %w", err)
	}
	return calc, nil
}

// RunCalculation takes a calculation through its whole lifecycle and returns the
// terminal record. A computation failure is an outcome, not an error: the record comes
// back in failed status with a nil error. The returned error is reserved for admission
// refusals (unsupported type, unknown organization or vessel, quota) and storage
// failures.
func (cs *CalculationService) RunCalculation(ctx context.Context, form mappers.CalculationCreateForm) (*model.Calculation, error) {
	logger := zap.S().Named("calculation_service")

	// Resolve before touching storage so an unsupported type leaves no trace.
	calculator, err := cs.registry.Resolve(calculation.Type(form.CalculationType))
	if err != nil {
		return nil, NewErrUnsupportedCalculationType(form.CalculationType)
	}

	created, err := cs.admit(ctx, form)
	if err != nil {
		return nil, err
	}
	logger.Infow("calculation admitted", "calculation_id", created.ID, "calculation_type", created.CalculationType, "org_id", created.OrgID)
	cs.emit(events.CalculationCreatedKind, created, "")

	running, err := cs.store.Calculation().UpdateStatus(ctx, created.ID, model.CalculationStatusPending, model.CalculationStatusRunning, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to mark calculation %s running: %w", created.ID, err)
	}

	// Compute outside any transaction or lock. A slow formula must not hold up
	// admissions for the rest of the organization.
	start := time.Now()
	results, computeErr := cs.compute(ctx, calculator, form.InputParameters)
	metrics.ObserveCalculationDurationMetric(form.CalculationType, time.Since(start).Seconds())

	if computeErr != nil {
		errorMessage := computeErr.Error()
		failed, err := cs.store.Calculation().UpdateStatus(ctx, running.ID, model.CalculationStatusRunning, model.CalculationStatusFailed, nil, &errorMessage)
		if err != nil {
			return nil, fmt.Errorf("failed to mark calculation %s failed: %w", running.ID, err)
		}
		metrics.IncreaseCalculationsTotalMetric(form.CalculationType, string(model.CalculationStatusFailed))
		cs.emit(events.CalculationFailedKind, failed, errorMessage)
		logger.Infow("calculation failed", "calculation_id", failed.ID, "error", errorMessage)
		return failed, nil
	}

	completed, err := cs.store.Calculation().UpdateStatus(ctx, running.ID, model.CalculationStatusRunning, model.CalculationStatusCompleted, results, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to mark calculation %s completed: %w", running.ID, err)
	}
	metrics.IncreaseCalculationsTotalMetric(form.CalculationType, string(model.CalculationStatusCompleted))
	cs.emit(events.CalculationCompletedKind, completed, "")
	logger.Infow("calculation completed", "calculation_id", completed.ID, "duration", time.Since(start))
	return completed, nil
}

// RecoverInterrupted fails every calculation stranded in a non-terminal state by a
// previous process. Called once at startup: a calculation computing when the process
// died can never complete, and a pending record older than the compute timeout was
// admitted but never picked up. Leaving either in place would hold its quota slot
// forever. Returns the number of records moved to failed.
func (cs *CalculationService) RecoverInterrupted(ctx context.Context) (int, error) {
	logger := zap.S().Named("calculation_service")

	fail := func(calcs model.CalculationList, from model.CalculationStatus, errorMessage string) (int, error) {
		recovered := 0
		for _, calc := range calcs {
			failed, err := cs.store.Calculation().UpdateStatus(ctx, calc.ID, from, model.CalculationStatusFailed, nil, &errorMessage)
			if err != nil {
				// another instance may have recovered it first
				if errors.Is(err, store.ErrStaleStatus) {
					continue
				}
				return recovered, fmt.Errorf("failed to recover calculation %s: %w", calc.ID, err)
			}
			metrics.IncreaseCalculationsTotalMetric(failed.CalculationType, string(model.CalculationStatusFailed))
			cs.emit(events.CalculationFailedKind, failed, errorMessage)
			logger.Warnw("recovered interrupted calculation", "calculation_id", failed.ID, "previous_status", from)
			recovered++
		}
		return recovered, nil
	}

	running, err := cs.store.Calculation().List(ctx,
		store.NewCalculationQueryFilter().ByStatus(model.CalculationStatusRunning), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list running calculations: %w", err)
	}
	recovered, err := fail(running, model.CalculationStatusRunning, "computation interrupted by service restart")
	if err != nil {
		return recovered, err
	}

	stalePending, err := cs.store.Calculation().List(ctx,
		store.NewCalculationQueryFilter().
			ByStatus(model.CalculationStatusPending).
			ByCreatedBefore(time.Now().Add(-cs.timeout)), nil)
	if err != nil {
		return recovered, fmt.Errorf("failed to list stale pending calculations: %w", err)
	}
	stale, err := fail(stalePending, model.CalculationStatusPending, "calculation never started; interrupted by service restart")
	return recovered + stale, err
}

// admit decides atomically whether the calculation may start, and creates the pending
// record if so. The organization row lock taken here is what serializes concurrent
// admissions: the quota count and the insert land in one transaction, so two racing
// calls cannot both squeeze through the last quota slot.
func (cs *CalculationService) admit(ctx context.Context, form mappers.CalculationCreateForm) (*model.Calculation, error) {
	ctx, err := cs.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	org, err := cs.store.Organization().GetForUpdate(ctx, form.OrgID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrOrganizationNotFound(form.OrgID)
		}
		return nil, fmt.Errorf("failed to get organization %s: %w", form.OrgID, err)
	}

	if _, err := cs.store.Vessel().Get(ctx, form.VesselID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrVesselNotFound(form.VesselID)
		}
		return nil, fmt.Errorf("failed to get vessel %s: %w", form.VesselID, err)
	}

	if err := cs.quota.Admit(ctx, org, time.Now()); err != nil {
		quotaErr := &ErrQuotaExceeded{}
		if errors.As(err, &quotaErr) {
			metrics.IncreaseQuotaDenialsTotalMetric(org.Plan)
		}
		return nil, err
	}

	created, err := cs.store.Calculation().Create(ctx, form.ToModel())
	if err != nil {
		return nil, fmt.Errorf("failed to create calculation: %w", err)
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// compute runs the calculator with a deadline. Calculators are pure functions without
// context plumbing, so on timeout the goroutine is abandoned and its result discarded.
func (cs *CalculationService) compute(ctx context.Context, calculator calculation.Calculator, params calculation.Params) (calculation.Results, error) {
	ctx, cancel := context.WithTimeout(ctx, cs.timeout)
	defer cancel()

	type outcome struct {
		results calculation.Results
		err     error
	}
	outCh := make(chan outcome, 1)
	go func() {
		results, err := calculator.Compute(params)
		outCh <- outcome{results: results, err: err}
	}()

	select {
	case out := <-outCh:
		return out.results, out.err
	case <-ctx.Done():
		return nil, calculation.NewExecutionError("timeout", ctx.Err())
	}
}

// emit publishes a lifecycle event on a best-effort basis. Event emission never fails a
// calculation.
func (cs *CalculationService) emit(kind string, calc *model.Calculation, errorMessage string) {
	if cs.producer == nil {
		return
	}

	event := events.CalculationEvent{
		CalculationID:   calc.ID.String(),
		CalculationType: calc.CalculationType,
		OrgID:           calc.OrgID.String(),
		VesselID:        calc.VesselID.String(),
		Status:          string(calc.Status),
		ErrorMessage:    errorMessage,
	}
	data, err := json.Marshal(event)
	if err != nil {
		zap.S().Named("calculation_service").Errorw("failed to marshal calculation event", "error", err, "calculation_id", calc.ID)
		return
	}
	if err := cs.producer.Write(context.TODO(), kind, bytes.NewReader(data)); err != nil {
		zap.S().Named("calculation_service").Errorw("failed to emit calculation event", "error", err, "kind", kind, "calculation_id", calc.ID)
	}
}
