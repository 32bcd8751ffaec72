package attendance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ogurasousui/hrms-attendance/internal/core/employee"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeDirectory struct {
	mu          sync.Mutex
	employees   []*employee.Employee
	codeLookups int
	idLookups   int
}

func (d *fakeDirectory) add(id, code string) *employee.Employee {
	emp := &employee.Employee{ID: id, Code: employee.Code(code), FullName: "Test " + code}
	d.employees = append(d.employees, emp)
	return emp
}

func (d *fakeDirectory) FindByID(_ context.Context, id string) (*employee.Employee, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.idLookups++
	for _, emp := range d.employees {
		if emp.ID == id && emp.IsActive() {
			clone := *emp
			return &clone, nil
		}
	}
	return nil, employee.NotFound(id)
}

func (d *fakeDirectory) FindByCode(_ context.Context, code employee.Code) (*employee.Employee, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.codeLookups++
	for _, emp := range d.employees {
		if emp.Code == code && emp.IsActive() {
			clone := *emp
			return &clone, nil
		}
	}
	return nil, employee.NotFound(code.String())
}

type fakeAttendanceRepo struct {
	mu       sync.Mutex
	records  map[string]*Record
	sequence int
	calls    int
	// staleExists は事前確認が競合で空振りした状態を再現します。
	staleExists bool
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]*Record)}
}

func (r *fakeAttendanceRepo) Create(_ context.Context, rec *Record) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	for _, existing := range r.records {
		if existing.EmployeeID == rec.EmployeeID && existing.Date.Equal(rec.Date) {
			return nil, DuplicateRecord(rec.EmployeeID, rec.Date)
		}
	}

	clone := *rec
	r.sequence++
	clone.ID = fmt.Sprintf("10000000-0000-0000-0000-%012d", r.sequence)
	r.records[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *fakeAttendanceRepo) FindByID(_ context.Context, id string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	rec, ok := r.records[id]
	if !ok {
		return nil, NotFound(id)
	}
	clone := *rec
	return &clone, nil
}

func (r *fakeAttendanceRepo) Exists(_ context.Context, employeeID string, date time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.staleExists {
		return false, nil
	}

	for _, rec := range r.records {
		if rec.EmployeeID == employeeID && rec.Date.Equal(NormalizeDate(date)) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAttendanceRepo) matches(rec *Record, employeeID string, start, end *time.Time, status *Status) bool {
	if employeeID != "" && rec.EmployeeID != employeeID {
		return false
	}
	if start != nil && rec.Date.Before(*start) {
		return false
	}
	if end != nil && rec.Date.After(*end) {
		return false
	}
	if status != nil && rec.Status != *status {
		return false
	}
	return true
}

func (r *fakeAttendanceRepo) List(_ context.Context, filter ListFilter) ([]*Record, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	var matched []*Record
	for _, rec := range r.records {
		if r.matches(rec, filter.EmployeeID, filter.StartDate, filter.EndDate, filter.Status) {
			clone := *rec
			matched = append(matched, &clone)
		}
	}

	if filter.Chronological() {
		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].Date.Equal(matched[j].Date) {
				return matched[i].Date.Before(matched[j].Date)
			}
			return matched[i].ID < matched[j].ID
		})
	} else {
		sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	}

	total := len(matched)
	if filter.Offset >= total {
		return []*Record{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return matched[filter.Offset:end], total, nil
}

func (r *fakeAttendanceRepo) Update(_ context.Context, id string, patch Patch, updatedAt time.Time) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	rec, ok := r.records[id]
	if !ok {
		return nil, NotFound(id)
	}
	if patch.Status != nil {
		rec.Status = *patch.Status
	}
	if patch.Notes != nil {
		notes := *patch.Notes
		rec.Notes = &notes
	}
	rec.UpdatedAt = updatedAt
	clone := *rec
	return &clone, nil
}

func (r *fakeAttendanceRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	if _, ok := r.records[id]; !ok {
		return false, nil
	}
	delete(r.records, id)
	return true, nil
}

func (r *fakeAttendanceRepo) CountByStatus(_ context.Context, filter StatusFilter) (StatusCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++

	start, end := filter.StartDate, filter.EndDate
	var counts StatusCounts
	for _, rec := range r.records {
		if r.matches(rec, filter.EmployeeID, &start, &end, nil) {
			counts.Add(rec.Status, 1)
		}
	}
	return counts, nil
}

func (r *fakeAttendanceRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func ymd(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
