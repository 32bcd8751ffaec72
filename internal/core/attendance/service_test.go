package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ogurasousui/hrms-attendance/internal/core/apperr"
)

const emp002ID = "22222222-2222-2222-2222-222222222222"

func newTestService(t *testing.T) (*Service, *fakeAttendanceRepo, *fakeDirectory, *stubClock) {
	t.Helper()

	repo := newFakeAttendanceRepo()
	dir := &fakeDirectory{}
	dir.add(emp001ID, "EMP001")
	dir.add(emp002ID, "EMP002")
	clock := &stubClock{now: time.Date(2025, 12, 10, 9, 30, 0, 0, time.UTC)}
	return NewService(repo, dir, clock, nil), repo, dir, clock
}

func mark(t *testing.T, svc *Service, ref string, date time.Time, status string) *Record {
	t.Helper()

	rec, err := svc.MarkAttendance(context.Background(), MarkAttendanceInput{EmployeeRef: ref, Date: date, Status: status})
	if err != nil {
		t.Fatalf("MarkAttendance(%s, %s) returned error: %v", ref, date.Format(DateLayout), err)
	}
	return rec
}

func TestMarkAttendanceSuccess(t *testing.T) {
	t.Parallel()

	svc, _, _, clock := newTestService(t)
	notes := "on site"

	rec, err := svc.MarkAttendance(context.Background(), MarkAttendanceInput{
		EmployeeRef: "emp001",
		Date:        time.Date(2025, 12, 1, 15, 0, 0, 0, time.UTC),
		Notes:       &notes,
	})
	if err != nil {
		t.Fatalf("MarkAttendance returned error: %v", err)
	}

	if rec.ID == "" {
		t.Fatal("expected generated id")
	}
	if rec.EmployeeID != emp001ID {
		t.Fatalf("expected resolved employee id, got %s", rec.EmployeeID)
	}
	if !rec.Date.Equal(ymd(2025, 12, 1)) {
		t.Fatalf("expected normalized date, got %s", rec.Date)
	}
	if rec.Status != StatusPresent {
		t.Fatalf("expected default status present, got %s", rec.Status)
	}
	if rec.MarkedBy != DefaultMarkedBy {
		t.Fatalf("expected default marked_by, got %s", rec.MarkedBy)
	}
	if !rec.MarkedAt.Equal(clock.now) || !rec.CreatedAt.Equal(clock.now) {
		t.Fatalf("expected timestamps from clock, got marked=%s created=%s", rec.MarkedAt, rec.CreatedAt)
	}
	if rec.Notes == nil || *rec.Notes != notes {
		t.Fatalf("unexpected notes: %v", rec.Notes)
	}

	got, err := svc.GetAttendance(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("GetAttendance returned error: %v", err)
	}
	if got.ID != rec.ID || got.Status != rec.Status || !got.Date.Equal(rec.Date) || got.EmployeeID != rec.EmployeeID {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, rec)
	}
}

func TestMarkAttendanceAcceptsToday(t *testing.T) {
	t.Parallel()

	svc, _, _, clock := newTestService(t)
	mark(t, svc, "EMP001", clock.now, "leave")
}

func TestMarkAttendanceDuplicate(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	mark(t, svc, "EMP001", ymd(2025, 12, 1), "present")

	_, err := svc.MarkAttendance(context.Background(), MarkAttendanceInput{EmployeeRef: emp001ID, Date: ymd(2025, 12, 1), Status: "absent"})
	if !errors.Is(err, apperr.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	res, err := svc.ListAttendance(context.Background(), ListAttendanceInput{EmployeeRef: "EMP001"})
	if err != nil {
		t.Fatalf("ListAttendance returned error: %v", err)
	}
	if res.Total != 1 || res.Records[0].Status != StatusPresent {
		t.Fatalf("expected the original record only, got total=%d", res.Total)
	}
}

func TestMarkAttendanceDuplicateValueIsStableAcrossLayers(t *testing.T) {
	t.Parallel()

	want := emp001ID + " on 2025-12-01"

	for _, stale := range []bool{false, true} {
		svc, repo, _, _ := newTestService(t)
		mark(t, svc, "EMP001", ymd(2025, 12, 1), "present")
		repo.staleExists = stale

		_, err := svc.MarkAttendance(context.Background(), MarkAttendanceInput{EmployeeRef: "EMP001", Date: ymd(2025, 12, 1)})
		var dup *apperr.DuplicateError
		if !errors.As(err, &dup) {
			t.Fatalf("stale=%v: expected duplicate error, got %v", stale, err)
		}
		if dup.Value != want || dup.Field != "date" || dup.Resource != "Attendance" {
			t.Fatalf("stale=%v: unexpected duplicate detail %+v", stale, dup)
		}
	}
}

func TestMarkAttendanceConcurrentDuplicate(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.MarkAttendance(context.Background(), MarkAttendanceInput{EmployeeRef: "EMP001", Date: ymd(2025, 12, 2)})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperr.ErrDuplicate):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || dupes != workers-1 {
		t.Fatalf("expected exactly one success, got successes=%d duplicates=%d", successes, dupes)
	}
}

func TestMarkAttendanceFutureDate(t *testing.T) {
	t.Parallel()

	svc, repo, dir, _ := newTestService(t)

	_, err := svc.MarkAttendance(context.Background(), MarkAttendanceInput{EmployeeRef: "EMP001", Date: ymd(2025, 12, 11)})
	if !errors.Is(err, ErrFutureDate) {
		t.Fatalf("expected ErrFutureDate, got %v", err)
	}
	if repo.callCount() != 0 {
		t.Fatalf("expected no storage calls, got %d", repo.callCount())
	}
	if dir.codeLookups != 0 {
		t.Fatalf("expected no directory lookups, got %d", dir.codeLookups)
	}
}

func TestMarkAttendanceUnknownEmployee(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newTestService(t)

	_, err := svc.MarkAttendance(context.Background(), MarkAttendanceInput{EmployeeRef: "EMP999", Date: ymd(2025, 12, 1)})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if repo.callCount() != 0 {
		t.Fatalf("expected nothing persisted, got %d storage calls", repo.callCount())
	}
}

func TestMarkAttendanceValidation(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newTestService(t)

	cases := []struct {
		name string
		in   MarkAttendanceInput
		want error
	}{
		{name: "missing date", in: MarkAttendanceInput{EmployeeRef: "EMP001"}, want: ErrMissingDate},
		{name: "missing employee", in: MarkAttendanceInput{Date: ymd(2025, 12, 1)}, want: ErrMissingEmployeeRef},
		{name: "malformed employee", in: MarkAttendanceInput{EmployeeRef: "E-1", Date: ymd(2025, 12, 1)}, want: ErrInvalidEmployeeRef},
		{name: "invalid status", in: MarkAttendanceInput{EmployeeRef: "EMP001", Date: ymd(2025, 12, 1), Status: "sick"}, want: ErrInvalidStatus},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.MarkAttendance(context.Background(), tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if repo.callCount() != 0 {
		t.Fatalf("expected no storage calls, got %d", repo.callCount())
	}

	_, err := svc.MarkAttendance(context.Background(), MarkAttendanceInput{EmployeeRef: "EMP001", Date: ymd(2025, 12, 1), Status: " Sick "})
	var invalid *apperr.ValidationError
	if !errors.As(err, &invalid) || invalid.Field != "status" || invalid.Value != "Sick" {
		t.Fatalf("expected rejected status in validation detail, got %v", err)
	}
}

func TestMarkAttendanceSoftDeletedEmployeeByInternalID(t *testing.T) {
	t.Parallel()

	svc, repo, dir, clock := newTestService(t)
	deletedAt := clock.now
	dir.employees[0].DeletedAt = &deletedAt

	_, err := svc.MarkAttendance(context.Background(), MarkAttendanceInput{EmployeeRef: emp001ID, Date: ymd(2025, 12, 1)})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for soft-deleted employee, got %v", err)
	}

	_, err = svc.MarkAttendance(context.Background(), MarkAttendanceInput{EmployeeRef: "EMP001", Date: ymd(2025, 12, 1)})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for soft-deleted employee code, got %v", err)
	}
	if len(repo.records) != 0 {
		t.Fatalf("expected nothing persisted, got %d records", len(repo.records))
	}
}

func TestGetAttendanceErrors(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)

	if _, err := svc.GetAttendance(context.Background(), "not-a-uuid"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := svc.GetAttendance(context.Background(), "10000000-0000-0000-0000-000000000999"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListAttendanceRangeOrderingAndPagination(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	mark(t, svc, "EMP001", ymd(2025, 12, 3), "present")
	mark(t, svc, "EMP001", ymd(2025, 12, 1), "absent")
	mark(t, svc, "EMP002", ymd(2025, 12, 2), "present")
	mark(t, svc, "EMP001", ymd(2025, 12, 2), "half-day")
	mark(t, svc, "EMP001", ymd(2025, 11, 28), "leave")

	start, end := ymd(2025, 12, 1), ymd(2025, 12, 3)
	res, err := svc.ListAttendance(context.Background(), ListAttendanceInput{StartDate: &start, EndDate: &end, Limit: 2})
	if err != nil {
		t.Fatalf("ListAttendance returned error: %v", err)
	}
	if res.Total != 4 {
		t.Fatalf("expected total 4, got %d", res.Total)
	}
	if len(res.Records) != 2 {
		t.Fatalf("expected page of 2, got %d", len(res.Records))
	}
	if !res.Records[0].Date.Equal(ymd(2025, 12, 1)) || !res.Records[1].Date.Equal(ymd(2025, 12, 2)) {
		t.Fatalf("expected ascending dates, got %s, %s", res.Records[0].Date, res.Records[1].Date)
	}

	next, err := svc.ListAttendance(context.Background(), ListAttendanceInput{StartDate: &start, EndDate: &end, Skip: 2, Limit: 2})
	if err != nil {
		t.Fatalf("ListAttendance returned error: %v", err)
	}
	if next.Total != 4 || len(next.Records) != 2 {
		t.Fatalf("unexpected second page: total=%d len=%d", next.Total, len(next.Records))
	}
	if next.Records[1].Date.Before(next.Records[0].Date) || next.Records[0].Date.Before(res.Records[1].Date) {
		t.Fatal("expected pages to continue in ascending date order")
	}

	byStatus, err := svc.ListAttendance(context.Background(), ListAttendanceInput{EmployeeRef: "EMP001", Status: "PRESENT"})
	if err != nil {
		t.Fatalf("ListAttendance returned error: %v", err)
	}
	if byStatus.Total != 1 || byStatus.Records[0].Status != StatusPresent {
		t.Fatalf("unexpected status filter result: total=%d", byStatus.Total)
	}
}

func TestListAttendanceValidation(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	start, end := ymd(2025, 12, 3), ymd(2025, 12, 1)
	if _, err := svc.ListAttendance(ctx, ListAttendanceInput{StartDate: &start, EndDate: &end}); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
	if _, err := svc.ListAttendance(ctx, ListAttendanceInput{Limit: 101}); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
	if _, err := svc.ListAttendance(ctx, ListAttendanceInput{Skip: -1}); !errors.Is(err, ErrInvalidSkip) {
		t.Fatalf("expected ErrInvalidSkip, got %v", err)
	}
	if _, err := svc.ListAttendance(ctx, ListAttendanceInput{Status: "sick"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	res, err := svc.ListAttendance(ctx, ListAttendanceInput{})
	if err != nil {
		t.Fatalf("ListAttendance returned error: %v", err)
	}
	if res.Limit != DefaultListPageSize {
		t.Fatalf("expected default limit, got %d", res.Limit)
	}
}

func TestListEmployeeAttendance(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	mark(t, svc, "EMP001", ymd(2025, 12, 2), "present")
	mark(t, svc, "EMP001", ymd(2025, 12, 1), "absent")
	mark(t, svc, "EMP002", ymd(2025, 12, 1), "present")

	res, err := svc.ListEmployeeAttendance(context.Background(), ListAttendanceInput{EmployeeRef: "EMP001"})
	if err != nil {
		t.Fatalf("ListEmployeeAttendance returned error: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("expected 2 records, got %d", res.Total)
	}
	if !res.Records[0].Date.Before(res.Records[1].Date) {
		t.Fatal("expected ascending date order")
	}
	for _, rec := range res.Records {
		if rec.EmployeeID != emp001ID {
			t.Fatalf("unexpected employee %s", rec.EmployeeID)
		}
	}

	if _, err := svc.ListEmployeeAttendance(context.Background(), ListAttendanceInput{}); !errors.Is(err, ErrMissingEmployeeRef) {
		t.Fatalf("expected ErrMissingEmployeeRef, got %v", err)
	}
	if _, err := svc.ListEmployeeAttendance(context.Background(), ListAttendanceInput{EmployeeRef: "EMP999"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.ListEmployeeAttendance(context.Background(), ListAttendanceInput{EmployeeRef: "99999999-9999-9999-9999-999999999999"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown internal id, got %v", err)
	}
}

func TestUpdateAttendance(t *testing.T) {
	t.Parallel()

	svc, _, _, clock := newTestService(t)
	original := mark(t, svc, "EMP001", ymd(2025, 12, 1), "present")

	clock.now = clock.now.Add(time.Hour)
	status := "half-day"
	updated, err := svc.UpdateAttendance(context.Background(), UpdateAttendanceInput{ID: original.ID, Status: &status})
	if err != nil {
		t.Fatalf("UpdateAttendance returned error: %v", err)
	}
	if updated.Status != StatusHalfDay {
		t.Fatalf("expected half-day, got %s", updated.Status)
	}
	if updated.Notes != nil {
		t.Fatalf("expected notes untouched, got %v", *updated.Notes)
	}
	if !updated.UpdatedAt.Equal(clock.now) {
		t.Fatalf("expected updated_at from clock, got %s", updated.UpdatedAt)
	}
	if !updated.Date.Equal(original.Date) || updated.EmployeeID != original.EmployeeID {
		t.Fatal("expected date and employee unchanged")
	}

	notes := "left early"
	updated, err = svc.UpdateAttendance(context.Background(), UpdateAttendanceInput{ID: original.ID, Notes: &notes})
	if err != nil {
		t.Fatalf("UpdateAttendance returned error: %v", err)
	}
	if updated.Status != StatusHalfDay || updated.Notes == nil || *updated.Notes != notes {
		t.Fatalf("unexpected partial update result: %+v", updated)
	}

	unchanged, err := svc.UpdateAttendance(context.Background(), UpdateAttendanceInput{ID: original.ID})
	if err != nil {
		t.Fatalf("empty update returned error: %v", err)
	}
	if unchanged.Status != StatusHalfDay || *unchanged.Notes != notes {
		t.Fatalf("expected empty update to return current record, got %+v", unchanged)
	}
}

func TestUpdateAttendanceErrors(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	rec := mark(t, svc, "EMP001", ymd(2025, 12, 1), "present")

	bad := "sick"
	if _, err := svc.UpdateAttendance(context.Background(), UpdateAttendanceInput{ID: rec.ID, Status: &bad}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	status := "absent"
	if _, err := svc.UpdateAttendance(context.Background(), UpdateAttendanceInput{ID: "10000000-0000-0000-0000-000000000999", Status: &status}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.UpdateAttendance(context.Background(), UpdateAttendanceInput{ID: "nope"}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestDeleteAttendance(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService(t)
	rec := mark(t, svc, "EMP001", ymd(2025, 12, 1), "present")

	deleted, err := svc.DeleteAttendance(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("DeleteAttendance returned error: %v", err)
	}
	if !deleted {
		t.Fatal("expected record deleted")
	}

	deleted, err = svc.DeleteAttendance(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("second DeleteAttendance returned error: %v", err)
	}
	if deleted {
		t.Fatal("expected second delete to report false")
	}

	if _, err := svc.GetAttendance(context.Background(), rec.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	// 削除後は同じ日付で再登録できる
	mark(t, svc, "EMP001", ymd(2025, 12, 1), "absent")
}
