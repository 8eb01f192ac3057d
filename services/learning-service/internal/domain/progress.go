package domain

import "time"

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressStarted    ProgressStatus = "started"
	ProgressCompleted  ProgressStatus = "completed"
)

// ProgressEntry records one visit to a tutorial within an enrollment.
type ProgressEntry struct {
	ID          uint
	Tutorial    TutorialID
	Status      ProgressStatus
	StartedAt   *time.Time
	CompletedAt *time.Time
}

func newProgressEntry(tutorial TutorialID) ProgressEntry {
	return ProgressEntry{Tutorial: tutorial, Status: ProgressNotStarted}
}

func (e *ProgressEntry) start(now time.Time) {
	e.Status = ProgressStarted
	e.StartedAt = &now
}

// complete marks the entry done. An entry that was never started gets the completion
// time as its start time, keeping CompletedAt >= StartedAt.
func (e *ProgressEntry) complete(now time.Time) {
	if e.StartedAt == nil {
		started := now
		e.StartedAt = &started
	}
	e.Status = ProgressCompleted
	e.CompletedAt = &now
}

func (e ProgressEntry) IsNotStarted() bool { return e.Status == ProgressNotStarted }
func (e ProgressEntry) IsInProgress() bool { return e.Status == ProgressStarted }
func (e ProgressEntry) IsCompleted() bool  { return e.Status == ProgressCompleted }

// ElapsedDays counts whole days between start and completion, or between start and now
// while the entry is open. Partial days are truncated.
func (e ProgressEntry) ElapsedDays(now time.Time) int64 {
	if e.StartedAt == nil {
		return 0
	}
	until := now
	if e.CompletedAt != nil {
		until = *e.CompletedAt
	}
	d := until.Sub(*e.StartedAt)
	if d <= 0 {
		return 0
	}
	return int64(d / (24 * time.Hour))
}

// ProgressLedger is the append-only list of progress entries of one enrollment.
type ProgressLedger struct {
	entries []ProgressEntry
}

func RestoreProgressLedger(entries []ProgressEntry) ProgressLedger {
	restored := make([]ProgressEntry, len(entries))
	copy(restored, entries)
	return ProgressLedger{entries: restored}
}

// Entries returns a copy of the entries in the order they were opened.
func (l *ProgressLedger) Entries() []ProgressEntry {
	out := make([]ProgressEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *ProgressLedger) Len() int {
	return len(l.entries)
}

// Initialize opens a not-started entry for the first tutorial of the path. It does
// nothing when the path is empty or the ledger already holds entries.
func (l *ProgressLedger) Initialize(path *LearningPath) {
	if len(l.entries) > 0 {
		return
	}
	first, err := path.First()
	if err != nil {
		return
	}
	l.entries = append(l.entries, newProgressEntry(first))
}

// Start moves the tutorial's entry to started. Only one entry may be in progress.
func (l *ProgressLedger) Start(tutorial TutorialID, now time.Time) error {
	if l.hasEntryInProgress() {
		return ErrTutorialAlreadyInProgress
	}
	idx := l.indexOf(tutorial)
	if idx < 0 {
		return ErrTutorialNotInLedger
	}
	if !l.entries[idx].IsNotStarted() {
		return ErrTutorialAlreadyStartedOrCompleted
	}
	l.entries[idx].start(now)
	return nil
}

// Complete marks the tutorial's entry completed, whether it was started or not, and,
// unless the tutorial is the tail of the path, opens a not-started entry for its
// successor. Completing an entry that is already completed changes nothing.
func (l *ProgressLedger) Complete(tutorial TutorialID, path *LearningPath, now time.Time) error {
	idx := l.indexOf(tutorial)
	if idx < 0 {
		return ErrTutorialNotInLedger
	}
	if l.entries[idx].IsCompleted() {
		return nil
	}
	l.entries[idx].complete(now)
	if path.IsTail(tutorial) {
		return nil
	}
	if next := path.Successor(tutorial); next.IsSet() && l.indexOf(next) < 0 {
		l.entries = append(l.entries, newProgressEntry(next))
	}
	return nil
}

// ElapsedDays sums the elapsed whole days of every entry.
func (l *ProgressLedger) ElapsedDays(now time.Time) int64 {
	var total int64
	for _, e := range l.entries {
		total += e.ElapsedDays(now)
	}
	return total
}

// Current returns the entry the student is expected to work on: the one in progress,
// or else the latest not-started entry.
func (l *ProgressLedger) Current() (ProgressEntry, bool) {
	for _, e := range l.entries {
		if e.IsInProgress() {
			return e, true
		}
	}
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].IsNotStarted() {
			return l.entries[i], true
		}
	}
	return ProgressEntry{}, false
}

func (l *ProgressLedger) EntryFor(tutorial TutorialID) (ProgressEntry, bool) {
	idx := l.indexOf(tutorial)
	if idx < 0 {
		return ProgressEntry{}, false
	}
	return l.entries[idx], true
}

func (l *ProgressLedger) hasEntryInProgress() bool {
	for _, e := range l.entries {
		if e.IsInProgress() {
			return true
		}
	}
	return false
}

func (l *ProgressLedger) indexOf(tutorial TutorialID) int {
	for i, e := range l.entries {
		if e.Tutorial == tutorial {
			return i
		}
	}
	return -1
}
