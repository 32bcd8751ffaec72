package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ogurasousui/hrms-attendance/internal/core/apperr"
)

func TestStatsForEmployeeCountsMissingWeekdaysAsAbsent(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	mark(t, svc, "EMP001", ymd(2025, 12, 1), "present")
	mark(t, svc, "EMP001", ymd(2025, 12, 2), "absent")

	stats, err := svc.StatsForEmployee(context.Background(), "EMP001", ymd(2025, 12, 1), ymd(2025, 12, 3))
	if err != nil {
		t.Fatalf("StatsForEmployee returned error: %v", err)
	}
	if stats.TotalDays != 3 {
		t.Fatalf("expected 3 working days, got %d", stats.TotalDays)
	}
	if stats.PresentDays != 1 || stats.AbsentDays != 1 {
		t.Fatalf("unexpected counts: present=%d absent=%d", stats.PresentDays, stats.AbsentDays)
	}
	if stats.Rate != 33.33 {
		t.Fatalf("expected rate 33.33, got %v", stats.Rate)
	}
	if stats.EmployeeID != emp001ID {
		t.Fatalf("expected resolved employee id, got %s", stats.EmployeeID)
	}
}

func TestStatsForEmployeeHalfDayWeight(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	mark(t, svc, "EMP001", ymd(2025, 12, 1), "present")
	mark(t, svc, "EMP001", ymd(2025, 12, 2), "half-day")
	mark(t, svc, "EMP001", ymd(2025, 12, 3), "leave")
	mark(t, svc, "EMP001", ymd(2025, 12, 4), "present")

	stats, err := svc.StatsForEmployee(context.Background(), emp001ID, ymd(2025, 12, 1), ymd(2025, 12, 7))
	if err != nil {
		t.Fatalf("StatsForEmployee returned error: %v", err)
	}
	if stats.TotalDays != 5 {
		t.Fatalf("expected 5 working days, got %d", stats.TotalDays)
	}
	if stats.HalfDays != 1 || stats.LeaveDays != 1 || stats.PresentDays != 2 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.Rate != 50 {
		t.Fatalf("expected rate 50, got %v", stats.Rate)
	}
}

func TestStatsForEmployeeRateRoundsTiesToEven(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	mark(t, svc, "EMP001", ymd(2025, 12, 1), "half-day")

	stats, err := svc.StatsForEmployee(context.Background(), "EMP001", ymd(2025, 12, 1), ymd(2025, 12, 22))
	if err != nil {
		t.Fatalf("StatsForEmployee returned error: %v", err)
	}
	if stats.TotalDays != 16 || stats.HalfDays != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.Rate != 3.12 {
		t.Fatalf("expected rate 3.12, got %v", stats.Rate)
	}
}

func TestEmployeeSummary(t *testing.T) {
	t.Parallel()

	svc, _, dir, _ := newTestService(t)
	mark(t, svc, "EMP001", ymd(2025, 12, 1), "present")
	mark(t, svc, "EMP001", ymd(2025, 12, 2), "half-day")

	for _, ref := range []string{"EMP001", emp001ID} {
		summary, err := svc.EmployeeSummary(context.Background(), ref, ymd(2025, 12, 1), ymd(2025, 12, 5))
		if err != nil {
			t.Fatalf("EmployeeSummary(%s) returned error: %v", ref, err)
		}
		if summary.EmployeeCode != "EMP001" || summary.EmployeeName != "Test EMP001" {
			t.Fatalf("unexpected employee: %+v", summary)
		}
		if summary.Stats.EmployeeID != emp001ID || summary.Stats.TotalDays != 5 || summary.Stats.Rate != 30 {
			t.Fatalf("unexpected stats: %+v", summary.Stats)
		}
	}

	now := time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC)
	dir.employees[0].DeletedAt = &now
	_, err := svc.EmployeeSummary(context.Background(), emp001ID, ymd(2025, 12, 1), ymd(2025, 12, 5))
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) || nf.Resource != "Employee" || nf.Identifier != emp001ID {
		t.Fatalf("expected employee not found for soft-deleted employee, got %v", err)
	}

	if _, err := svc.EmployeeSummary(context.Background(), "EMP999", ymd(2025, 12, 1), ymd(2025, 12, 5)); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown code, got %v", err)
	}
	if _, err := svc.EmployeeSummary(context.Background(), "bogus", ymd(2025, 12, 1), ymd(2025, 12, 5)); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStatsForEmployeeWeekendOnly(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	mark(t, svc, "EMP001", ymd(2025, 12, 6), "present")

	stats, err := svc.StatsForEmployee(context.Background(), "EMP001", ymd(2025, 12, 6), ymd(2025, 12, 6))
	if err != nil {
		t.Fatalf("StatsForEmployee returned error: %v", err)
	}
	if stats.TotalDays != 0 || stats.Rate != 0 {
		t.Fatalf("expected zero working days and rate, got days=%d rate=%v", stats.TotalDays, stats.Rate)
	}
}

func TestStatsForEmployeeErrors(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.StatsForEmployee(ctx, "EMP001", ymd(2025, 12, 3), ymd(2025, 12, 1)); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
	if repo.callCount() != 0 {
		t.Fatalf("expected no storage calls for invalid range, got %d", repo.callCount())
	}
	if _, err := svc.StatsForEmployee(ctx, "EMP999", ymd(2025, 12, 1), ymd(2025, 12, 3)); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.StatsForEmployee(ctx, "bad ref", ymd(2025, 12, 1), ymd(2025, 12, 3)); !errors.Is(err, ErrInvalidEmployeeRef) {
		t.Fatalf("expected ErrInvalidEmployeeRef, got %v", err)
	}
}

func TestStatsByDate(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)

	empty, err := svc.StatsByDate(context.Background(), ymd(2025, 12, 1))
	if err != nil {
		t.Fatalf("StatsByDate returned error: %v", err)
	}
	if empty.Total != 0 || empty.Rate != 0 {
		t.Fatalf("expected empty stats, got %+v", empty)
	}

	mark(t, svc, "EMP001", ymd(2025, 12, 1), "present")
	mark(t, svc, "EMP002", ymd(2025, 12, 1), "half-day")
	mark(t, svc, "EMP002", ymd(2025, 12, 2), "present")

	stats, err := svc.StatsByDate(context.Background(), ymd(2025, 12, 1))
	if err != nil {
		t.Fatalf("StatsByDate returned error: %v", err)
	}
	if stats.Total != 2 || stats.Present != 1 || stats.HalfDay != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.Rate != 50 {
		t.Fatalf("expected rate 50, got %v", stats.Rate)
	}
}

func TestStatsForRange(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	mark(t, svc, "EMP001", ymd(2025, 12, 1), "present")
	mark(t, svc, "EMP001", ymd(2025, 12, 2), "absent")
	mark(t, svc, "EMP002", ymd(2025, 12, 2), "present")
	mark(t, svc, "EMP002", ymd(2025, 12, 5), "leave")

	stats, err := svc.StatsForRange(context.Background(), ymd(2025, 12, 1), ymd(2025, 12, 3))
	if err != nil {
		t.Fatalf("StatsForRange returned error: %v", err)
	}
	if stats.TotalRecords != 3 || stats.Present != 2 || stats.Absent != 1 || stats.Leave != 0 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.Rate != 66.67 {
		t.Fatalf("expected rate 66.67, got %v", stats.Rate)
	}

	if _, err := svc.StatsForRange(context.Background(), ymd(2025, 12, 3), ymd(2025, 12, 1)); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestDefaultStatsWindow(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)

	start, end := svc.DefaultStatsWindow()
	if !start.Equal(ymd(2025, 12, 1)) || !end.Equal(ymd(2025, 12, 10)) {
		t.Fatalf("unexpected window %s..%s", start.Format(DateLayout), end.Format(DateLayout))
	}
}
