package window

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arnavshah/roster-api-go/pkg/models"
)

var errDown = errors.New("connection refused")

// fakeStore keeps assignments in memory. Setting fail makes every call
// return that error; gates block ListAssignments for a month until closed.
type fakeStore struct {
	mu    sync.Mutex
	rows  []models.Assignment
	next  int
	fail  error
	calls int
	gates map[time.Month]chan struct{}
}

func newFakeStore(rows ...models.Assignment) *fakeStore {
	return &fakeStore{rows: rows, gates: map[time.Month]chan struct{}{}}
}

func (f *fakeStore) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.fail
}

func (f *fakeStore) ListAssignments(ctx context.Context, month time.Month, year int, areaID string) ([]models.Assignment, error) {
	f.mu.Lock()
	gate := f.gates[month]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.begin(); err != nil {
		return nil, err
	}
	filter := Filter{Month: month, Year: year, AreaID: areaID}
	return f.filter(filter.Matches), nil
}

func (f *fakeStore) ListAllAssignments(_ context.Context, areaID string) ([]models.Assignment, error) {
	if err := f.begin(); err != nil {
		return nil, err
	}
	return f.filter(Filter{All: true, AreaID: areaID}.Matches), nil
}

func (f *fakeStore) ListAssignmentsByUser(_ context.Context, userID string) ([]models.Assignment, error) {
	if err := f.begin(); err != nil {
		return nil, err
	}
	return f.filter(func(a models.Assignment) bool { return a.UserID == userID }), nil
}

func (f *fakeStore) ListAssignmentsByDateRange(_ context.Context, start, end time.Time) ([]models.Assignment, error) {
	if err := f.begin(); err != nil {
		return nil, err
	}
	return f.filter(func(a models.Assignment) bool {
		return !a.StartDate.After(end) && !a.EndDate.Before(start)
	}), nil
}

func (f *fakeStore) filter(keep func(models.Assignment) bool) []models.Assignment {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Assignment
	for _, a := range f.rows {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func (f *fakeStore) CreateAssignment(_ context.Context, in models.AssignmentInput) (models.Assignment, error) {
	if err := f.begin(); err != nil {
		return models.Assignment{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	a := models.Assignment{
		ID:           fmt.Sprintf("new-%d", f.next),
		UserID:       in.UserID,
		AreaID:       in.AreaID,
		WorkTypeCode: in.WorkTypeCode,
		StartDate:    models.Day(in.StartDate),
		EndDate:      models.Day(in.EndDate),
	}
	f.rows = append(f.rows, a)
	return a, nil
}

func (f *fakeStore) UpdateAssignment(_ context.Context, id string, patch models.AssignmentPatch) (models.Assignment, error) {
	if err := f.begin(); err != nil {
		return models.Assignment{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.rows {
		if a.ID == id {
			f.rows[i] = patch.Apply(a)
			return f.rows[i], nil
		}
	}
	return models.Assignment{}, &models.NotFoundError{Kind: "assignment", ID: id}
}

func (f *fakeStore) DeleteAssignment(_ context.Context, id string) error {
	if err := f.begin(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.rows {
		if a.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return &models.NotFoundError{Kind: "assignment", ID: id}
}

func (f *fakeStore) DeleteAssignmentsByUserAndMonth(_ context.Context, userID string, month time.Month, year int) error {
	if err := f.begin(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	for _, a := range f.rows {
		if a.UserID == userID && a.Overlaps(year, month) {
			continue
		}
		kept = append(kept, a)
	}
	f.rows = kept
	return nil
}

func (f *fakeStore) setFail(err error) {
	f.mu.Lock()
	f.fail = err
	f.mu.Unlock()
}

func (f *fakeStore) gate(month time.Month) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[month] = ch
	return ch
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
