package service

import (
	"context"
	"fmt"
	"time"

	"github.com/integrityops/vessel-compliance/internal/store"
	"github.com/integrityops/vessel-compliance/internal/store/model"
)

// QuotaEnforcer decides whether an organization may start one more calculation in its
// current billing period.
//
// The billing period is anchored to the organization's subscription start and repeats
// monthly from that anniversary; it is NOT the calendar month. Admit must run inside
// the orchestrator's transaction while the organization row is locked, so that the
// count it observes cannot be outrun by a concurrent admission.
type QuotaEnforcer struct {
	store store.Store
}

func NewQuotaEnforcer(s store.Store) *QuotaEnforcer {
	return &QuotaEnforcer{store: s}
}

// Admit returns nil when the organization may start another calculation, and
// *ErrQuotaExceeded carrying the observed usage when it may not.
func (q *QuotaEnforcer) Admit(ctx context.Context, org *model.Organization, now time.Time) error {
	periodStart := PeriodStart(org.SubscriptionStartedAt, now)

	current, err := q.store.Calculation().CountActiveSince(ctx, org.ID, periodStart)
	if err != nil {
		return fmt.Errorf("failed to count calculations for organization %s: %w", org.ID, err)
	}

	if current >= org.MaxCalculationsPerMonth {
		return NewErrQuotaExceeded(current, org.MaxCalculationsPerMonth)
	}
	return nil
}

// PeriodStart returns the start of the billing period containing now, for a
// subscription anchored at anchor and renewing monthly on its anniversary.
//
// The anchor day is clamped at months too short for it: an organization subscribed on
// Jan 31 renews on Feb 28 (29 in leap years), then again on Mar 31.
func PeriodStart(anchor, now time.Time) time.Time {
	if !anchor.Before(now) {
		return anchor
	}

	months := (now.Year()-anchor.Year())*12 + int(now.Month()) - int(anchor.Month())
	start := addMonthsClamped(anchor, months)
	if start.After(now) {
		start = addMonthsClamped(anchor, months-1)
	}
	return start
}

// addMonthsClamped steps t forward by whole months, clamping the day of month instead
// of letting it spill over the way time.AddDate does (Jan 31 + 1 month must be the last
// day of February, not March 2/3).
func addMonthsClamped(t time.Time, months int) time.Time {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	shifted := firstOfMonth.AddDate(0, months, 0)

	day := t.Day()
	if last := daysIn(shifted.Year(), shifted.Month(), t.Location()); day > last {
		day = last
	}
	return time.Date(shifted.Year(), shifted.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
