// Package window keeps a server-confirmed cache of the assignments visible in
// one month (or in every month) of an area.
package window

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/arnavshah/roster-api-go/pkg/logging"
	"github.com/arnavshah/roster-api-go/pkg/metrics"
	"github.com/arnavshah/roster-api-go/pkg/models"
	"github.com/arnavshah/roster-api-go/pkg/schedule"
)

// AssignmentStore is the remote collaborator that owns assignment records
type AssignmentStore interface {
	ListAssignments(ctx context.Context, month time.Month, year int, areaID string) ([]models.Assignment, error)
	ListAllAssignments(ctx context.Context, areaID string) ([]models.Assignment, error)
	ListAssignmentsByUser(ctx context.Context, userID string) ([]models.Assignment, error)
	ListAssignmentsByDateRange(ctx context.Context, start, end time.Time) ([]models.Assignment, error)
	CreateAssignment(ctx context.Context, in models.AssignmentInput) (models.Assignment, error)
	UpdateAssignment(ctx context.Context, id string, patch models.AssignmentPatch) (models.Assignment, error)
	DeleteAssignment(ctx context.Context, id string) error
	DeleteAssignmentsByUserAndMonth(ctx context.Context, userID string, month time.Month, year int) error
}

// State is the externally visible cache state
type State int

const (
	Unloaded State = iota
	Loaded
	LoadFailed
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case LoadFailed:
		return "load-failed"
	default:
		return "unloaded"
	}
}

// Filter is the month/area a window is showing. All means every month.
type Filter struct {
	Month  time.Month
	Year   int
	AreaID string
	All    bool
}

// Matches reports whether a belongs in a cache loaded for f: same area (when
// both are known) and, unless All, a date range overlapping the month
func (f Filter) Matches(a models.Assignment) bool {
	if f.AreaID != "" && a.AreaID != "" && f.AreaID != a.AreaID {
		return false
	}
	if f.All {
		return true
	}
	return a.Overlaps(f.Year, f.Month)
}

// Window is the single owner of the cached assignments. The cache only
// changes after the store has confirmed a load or a mutation.
type Window struct {
	store   AssignmentStore
	scope   models.AreaScope
	log     zerolog.Logger
	metrics *metrics.Recorder

	mu      sync.Mutex
	state   State
	filter  Filter
	cache   []models.Assignment
	loaded  bool
	seq     uint64
	lastErr error
}

type Option func(*Window)

func WithLogger(l zerolog.Logger) Option {
	return func(w *Window) { w.log = l }
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(w *Window) { w.metrics = r }
}

// New creates an unloaded window. scope supplies the area used when a load
// does not name one.
func New(store AssignmentStore, scope models.AreaScope, opts ...Option) *Window {
	w := &Window{
		store: store,
		scope: scope,
		log:   logging.New("window"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Window) area(areaID string) string {
	if areaID != "" {
		return areaID
	}
	return w.scope.AreaID
}

// Load replaces the cache with the assignments touching month/year. On
// failure the previous cache is kept. If another load starts, or a mutation
// is confirmed, before this one returns, the fetched data may be stale: it is
// dropped and ErrSuperseded is returned.
func (w *Window) Load(ctx context.Context, month time.Month, year int, areaID string) ([]models.Assignment, error) {
	if month < time.January || month > time.December {
		return nil, &models.ValidationError{Field: "month", Message: "month must be 1-12"}
	}
	f := Filter{Month: month, Year: year, AreaID: w.area(areaID)}
	return w.load(ctx, "load", f, func(ctx context.Context) ([]models.Assignment, error) {
		return w.store.ListAssignments(ctx, month, year, f.AreaID)
	})
}

// LoadAll replaces the cache with every assignment of the area
func (w *Window) LoadAll(ctx context.Context, areaID string) ([]models.Assignment, error) {
	f := Filter{All: true, AreaID: w.area(areaID)}
	return w.load(ctx, "load_all", f, func(ctx context.Context) ([]models.Assignment, error) {
		return w.store.ListAllAssignments(ctx, f.AreaID)
	})
}

func (w *Window) load(ctx context.Context, op string, f Filter, fetch func(context.Context) ([]models.Assignment, error)) ([]models.Assignment, error) {
	w.mu.Lock()
	w.seq++
	token := w.seq
	w.mu.Unlock()

	data, err := fetch(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if token != w.seq {
		w.log.Debug().Uint64("token", token).Uint64("current", w.seq).Msg("dropping superseded load")
		w.metrics.WindowOp(op, models.ErrSuperseded)
		return nil, models.ErrSuperseded
	}
	if err != nil {
		err = collaboratorError(op, err)
		w.state = LoadFailed
		w.lastErr = err
		w.log.Warn().Err(err).Str("op", op).Msg("load failed, keeping previous cache")
		w.metrics.WindowOp(op, err)
		return nil, err
	}

	w.cache = append([]models.Assignment(nil), data...)
	w.filter = f
	w.loaded = true
	w.state = Loaded
	w.lastErr = nil
	w.log.Debug().Str("op", op).Int("assignments", len(data)).Int("month", int(f.Month)).Int("year", f.Year).Str("area", f.AreaID).Msg("window loaded")
	w.metrics.WindowOp(op, nil)
	return append([]models.Assignment(nil), data...), nil
}

// Create persists a new assignment and caches it if it falls inside the
// current filter
func (w *Window) Create(ctx context.Context, in models.AssignmentInput) (models.Assignment, error) {
	in.WorkTypeCode = models.NormalizeCode(in.WorkTypeCode)
	if in.AreaID == "" {
		in.AreaID = w.scope.AreaID
	}
	if err := in.Validate(); err != nil {
		w.metrics.WindowOp("create", err)
		return models.Assignment{}, err
	}

	created, err := w.store.CreateAssignment(ctx, in)
	if err != nil {
		err = collaboratorError("create", err)
		w.metrics.WindowOp("create", err)
		return models.Assignment{}, err
	}

	w.mu.Lock()
	w.seq++
	if w.loaded && w.filter.Matches(created) {
		w.cache = append(w.cache, created)
	}
	w.mu.Unlock()

	w.log.Info().Str("assignment", created.ID).Str("user", created.UserID).Str("code", created.WorkTypeCode).Msg("assignment created")
	w.metrics.WindowOp("create", nil)
	return created, nil
}

// Update persists changes. The cached copy is replaced while the record
// still falls inside the filter and dropped once it has moved out.
func (w *Window) Update(ctx context.Context, id string, patch models.AssignmentPatch) (models.Assignment, error) {
	if patch.WorkTypeCode != nil {
		code := models.NormalizeCode(*patch.WorkTypeCode)
		patch.WorkTypeCode = &code
	}
	if id == "" {
		err := &models.ValidationError{Field: "id", Message: "id is required"}
		w.metrics.WindowOp("update", err)
		return models.Assignment{}, err
	}
	if err := patch.Validate(); err != nil {
		w.metrics.WindowOp("update", err)
		return models.Assignment{}, err
	}

	updated, err := w.store.UpdateAssignment(ctx, id, patch)
	if err != nil {
		err = collaboratorError("update", err)
		w.metrics.WindowOp("update", err)
		return models.Assignment{}, err
	}

	w.mu.Lock()
	w.seq++
	if w.loaded {
		i := w.indexOf(id)
		switch {
		case w.filter.Matches(updated) && i >= 0:
			w.cache[i] = updated
		case w.filter.Matches(updated):
			w.cache = append(w.cache, updated)
		case i >= 0:
			w.cache = append(w.cache[:i:i], w.cache[i+1:]...)
		}
	}
	w.mu.Unlock()

	w.log.Info().Str("assignment", id).Msg("assignment updated")
	w.metrics.WindowOp("update", nil)
	return updated, nil
}

// Delete removes the assignment remotely and then from the cache
func (w *Window) Delete(ctx context.Context, id string) error {
	if err := w.store.DeleteAssignment(ctx, id); err != nil {
		err = collaboratorError("delete", err)
		w.metrics.WindowOp("delete", err)
		return err
	}

	w.mu.Lock()
	w.seq++
	if i := w.indexOf(id); i >= 0 {
		w.cache = append(w.cache[:i:i], w.cache[i+1:]...)
	}
	w.mu.Unlock()

	w.log.Info().Str("assignment", id).Msg("assignment deleted")
	w.metrics.WindowOp("delete", nil)
	return nil
}

// DeleteByUserAndMonth clears a person's month remotely and drops the
// matching cached assignments
func (w *Window) DeleteByUserAndMonth(ctx context.Context, userID string, month time.Month, year int) error {
	if userID == "" {
		return &models.ValidationError{Field: "userId", Message: "userId is required"}
	}
	if month < time.January || month > time.December {
		return &models.ValidationError{Field: "month", Message: "month must be 1-12"}
	}
	if err := w.store.DeleteAssignmentsByUserAndMonth(ctx, userID, month, year); err != nil {
		err = collaboratorError("delete_month", err)
		w.metrics.WindowOp("delete_month", err)
		return err
	}

	w.mu.Lock()
	w.seq++
	kept := w.cache[:0:0]
	for _, a := range w.cache {
		if a.PersonID() == userID && a.Overlaps(year, month) {
			continue
		}
		kept = append(kept, a)
	}
	w.cache = kept
	w.mu.Unlock()

	w.metrics.WindowOp("delete_month", nil)
	return nil
}

// ListByUser fetches a person's assignments without touching the cache
func (w *Window) ListByUser(ctx context.Context, userID string) ([]models.Assignment, error) {
	out, err := w.store.ListAssignmentsByUser(ctx, userID)
	if err != nil {
		err = collaboratorError("list_by_user", err)
	}
	w.metrics.WindowOp("list_by_user", err)
	return out, err
}

// ListByDateRange fetches assignments overlapping start..end without touching the cache
func (w *Window) ListByDateRange(ctx context.Context, start, end time.Time) ([]models.Assignment, error) {
	if models.Day(start).After(models.Day(end)) {
		return nil, &models.ValidationError{Field: "endDate", Message: "startDate must not be after endDate"}
	}
	out, err := w.store.ListAssignmentsByDateRange(ctx, start, end)
	if err != nil {
		err = collaboratorError("list_by_range", err)
	}
	w.metrics.WindowOp("list_by_range", err)
	return out, err
}

// Snapshot returns a copy of the cached assignments
func (w *Window) Snapshot() []models.Assignment {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.Assignment(nil), w.cache...)
}

func (w *Window) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Filter returns the filter of the cached data; ok is false before the first
// successful load
func (w *Window) Filter() (Filter, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.filter, w.loaded
}

// Err returns the error of the last failed load, cleared by a successful one
func (w *Window) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Index builds a schedule index from the current snapshot
func (w *Window) Index(personnel []models.Person) *schedule.Index {
	start := time.Now()
	idx := schedule.Build(w.Snapshot(), personnel)
	w.metrics.IndexBuilt(time.Since(start), idx.Len())
	if skipped := idx.Skipped(); len(skipped) > 0 {
		w.log.Debug().Strs("assignments", skipped).Msg("assignments without a known person skipped")
	}
	for _, o := range idx.Overwrites() {
		w.log.Debug().Str("kept", o.Kept).Str("lost", o.Lost).Str("person", o.Key.PersonID).
			Time("day", models.Date(o.Key.Year, o.Key.Month, o.Key.Day)).Msg("overlapping assignments")
	}
	return idx
}

func (w *Window) indexOf(id string) int {
	for i, a := range w.cache {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// collaboratorError keeps the typed errors of the store and reports anything
// else as a FetchError
func collaboratorError(op string, err error) error {
	if models.IsValidation(err) || models.IsNotFound(err) || models.IsFetch(err) {
		return err
	}
	if errors.Is(err, models.ErrSuperseded) {
		return err
	}
	return &models.FetchError{Op: op, Err: err}
}
