package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"rigup/internal/catalog"
	"rigup/internal/resolve"
)

// Status tracks one entry through selection, resolution, and install.
type Status int

const (
	StatusNotSelected Status = iota
	StatusSelected
	StatusResolving
	StatusResolved
	StatusResolutionFailed
	StatusInstalling
	StatusSucceeded
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusNotSelected:
		return "not-selected"
	case StatusSelected:
		return "selected"
	case StatusResolving:
		return "resolving"
	case StatusResolved:
		return "resolved"
	case StatusResolutionFailed:
		return "resolution-failed"
	case StatusInstalling:
		return "installing"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// InFlight reports whether the entry has a worker acting on it.
func (s Status) InFlight() bool {
	return s == StatusResolving || s == StatusInstalling
}

// Terminal reports whether the entry finished an install run. Terminal
// entries can be re-selected and run again from scratch.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCancelled
}

// Selected reports whether the entry counts toward the selection set.
func (s Status) Selected() bool {
	return s != StatusNotSelected
}

var (
	ErrUnknownEntry      = errors.New("unknown entry")
	ErrEntryBusy         = errors.New("entry has work in flight")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ProgressEvent is a streamed status notification for the UI. Events are
// best-effort; Snapshot is the source of truth.
type ProgressEvent struct {
	EntryID string
	Status  Status
	Detail  string
}

// EntrySnapshot is a consistent copy of one entry's state.
type EntrySnapshot struct {
	ID          string
	DisplayName string
	Category    string
	Status      Status
	Version     string
	Detail      string
}

type entryState struct {
	status     Status
	resolution *resolve.Resolution
	detail     string
}

var allowedTransitions = map[Status][]Status{
	StatusNotSelected:      {StatusSelected},
	StatusSelected:         {StatusNotSelected, StatusResolving},
	StatusResolving:        {StatusResolved, StatusResolutionFailed, StatusCancelled},
	StatusResolved:         {StatusNotSelected, StatusResolving, StatusInstalling},
	StatusResolutionFailed: {StatusNotSelected, StatusResolving},
	StatusInstalling:       {StatusSucceeded, StatusFailed, StatusCancelled},
	StatusSucceeded:        {StatusNotSelected, StatusSelected},
	StatusFailed:           {StatusNotSelected, StatusSelected},
	StatusCancelled:        {StatusNotSelected, StatusSelected},
}

func transitionAllowed(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Session is the synchronized store for per-entry status plus the global
// dry-run flag. All mutation goes through its methods; concurrent workers
// never touch entry state directly.
type Session struct {
	mu      sync.Mutex
	entries map[string]*entryState
	order   []string
	dryRun  bool
	events  chan ProgressEvent
}

// New seeds the session from the catalog; default-enabled entries start
// selected.
func New(cat catalog.Catalog) *Session {
	s := &Session{
		entries: make(map[string]*entryState, len(cat.Software)),
		events:  make(chan ProgressEvent, 256),
	}
	for _, e := range cat.Software {
		st := StatusNotSelected
		if e.Default {
			st = StatusSelected
		}
		s.entries[e.ID] = &entryState{status: st}
		s.order = append(s.order, e.ID)
	}
	return s
}

// Events is the stream of status changes. The channel is buffered; when a
// consumer lags, the oldest event is dropped rather than blocking workers.
func (s *Session) Events() <-chan ProgressEvent {
	return s.events
}

func (s *Session) emit(ev ProgressEvent) {
	for {
		select {
		case s.events <- ev:
			return
		default:
		}
		select {
		case <-s.events:
		default:
		}
	}
}

// set applies a guarded transition. Callers hold s.mu.
func (s *Session) set(id string, st *entryState, to Status, detail string) error {
	if !transitionAllowed(st.status, to) {
		return fmt.Errorf("%w: %s: %s -> %s", ErrInvalidTransition, id, st.status, to)
	}
	st.status = to
	st.detail = detail
	s.emit(ProgressEvent{EntryID: id, Status: to, Detail: detail})
	return nil
}

// Toggle flips selection for one entry. Rejected while the entry has work
// in flight; toggling a finished or resolved entry resets it for a fresh
// run.
func (s *Session) Toggle(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntry, id)
	}
	if st.status.InFlight() {
		return fmt.Errorf("%w: %s", ErrEntryBusy, id)
	}
	if st.status.Selected() {
		st.resolution = nil
		return s.set(id, st, StatusNotSelected, "")
	}
	return s.set(id, st, StatusSelected, "")
}

// SelectAll selects every idle entry. Entries with work in flight are left
// alone.
func (s *Session) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		st := s.entries[id]
		if st.status == StatusNotSelected {
			s.set(id, st, StatusSelected, "")
		}
	}
}

// DeselectAll clears every idle selection and drops stale resolutions.
func (s *Session) DeselectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		st := s.entries[id]
		if st.status.Selected() && !st.status.InFlight() {
			st.resolution = nil
			s.set(id, st, StatusNotSelected, "")
		}
	}
}

// ToggleDryRun flips the global dry-run flag and returns the new value.
func (s *Session) ToggleDryRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dryRun = !s.dryRun
	return s.dryRun
}

func (s *Session) DryRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dryRun
}

// SetDryRun sets the flag directly (CLI flag plumbing).
func (s *Session) SetDryRun(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dryRun = v
}

// SelectedIDs returns the selected entry ids in catalog order.
func (s *Session) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, id := range s.order {
		if s.entries[id].status.Selected() {
			ids = append(ids, id)
		}
	}
	return ids
}

// Status returns the entry's current status.
func (s *Session) Status(id string) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.entries[id]
	if !ok {
		return StatusNotSelected, false
	}
	return st.status, true
}

// Resolution returns the entry's most recent successful resolution.
func (s *Session) Resolution(id string) (resolve.Resolution, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.entries[id]
	if !ok || st.resolution == nil {
		return resolve.Resolution{}, false
	}
	return *st.resolution, true
}

// BeginResolve moves a selected entry to resolving. Returns false when the
// entry is already resolving or installing, which enforces at-most-one
// in-flight resolution per entry.
func (s *Session) BeginResolve(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.entries[id]
	if !ok || st.status.InFlight() {
		return false
	}
	// Re-resolving after a finished run starts the entry over.
	if st.status.Terminal() {
		if s.set(id, st, StatusSelected, "") != nil {
			return false
		}
	}
	return s.set(id, st, StatusResolving, "") == nil
}

// FinishResolve records the resolver outcome for an entry.
func (s *Session) FinishResolve(id string, res resolve.Resolution, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.entries[id]
	if !ok {
		return
	}
	switch {
	case err == nil:
		st.resolution = &res
		s.set(id, st, StatusResolved, res.Version)
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		st.resolution = nil
		s.set(id, st, StatusCancelled, "cancelled")
	default:
		st.resolution = nil
		s.set(id, st, StatusResolutionFailed, err.Error())
	}
}

// ErrCancelled marks resolution or install work stopped by a cancel.
var ErrCancelled = errors.New("cancelled")

// BeginInstall moves a resolved entry to installing.
func (s *Session) BeginInstall(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.entries[id]
	if !ok || st.status != StatusResolved {
		return false
	}
	return s.set(id, st, StatusInstalling, "") == nil
}

// FinishInstall records the executor outcome for an entry.
func (s *Session) FinishInstall(id string, err error, cancelled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.entries[id]
	if !ok {
		return
	}
	switch {
	case cancelled:
		s.set(id, st, StatusCancelled, "cancelled")
	case err != nil:
		s.set(id, st, StatusFailed, err.Error())
	default:
		detail := "installed"
		if s.dryRun {
			detail = "dry run complete"
		}
		s.set(id, st, StatusSucceeded, detail)
	}
}

// CancelInFlight moves every resolving or installing entry to cancelled.
// Used for entries whose workers never started because the run was
// cancelled during dispatch.
func (s *Session) CancelInFlight() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		st := s.entries[id]
		if st.status.InFlight() {
			s.set(id, st, StatusCancelled, "cancelled")
		}
	}
}

// Snapshot returns a copy of every entry's state in catalog order. displayFor
// fills names from the catalog when provided.
func (s *Session) Snapshot(cat catalog.Catalog) []EntrySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]EntrySnapshot, 0, len(s.order))
	for _, id := range s.order {
		st := s.entries[id]
		snap := EntrySnapshot{ID: id, Status: st.status, Detail: st.detail}
		if st.resolution != nil {
			snap.Version = st.resolution.Version
		}
		if entry, ok := cat.Get(id); ok {
			snap.DisplayName = entry.DisplayName
			snap.Category = entry.Category
		}
		out = append(out, snap)
	}
	return out
}

// Busy reports whether any entry has work in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.entries {
		if st.status.InFlight() {
			return true
		}
	}
	return false
}

// Counts summarizes statuses for footer display, keys sorted for stable
// rendering.
func (s *Session) Counts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	for _, st := range s.entries {
		counts[st.status.String()]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return out
}
