package dashboard

import "taskboard/internal/models"

// State is the explicit dashboard state. The controller is its sole
// mutator; everything handed out is a snapshot.
type State struct {
	Filter models.Filter
	Tasks  []*models.Task
	Counts models.Counts
	// LastError carries the inline error banner of the last failed load;
	// empty after a successful one. A failed load keeps the previous
	// task list visible rather than blanking it.
	LastError string
}

func (s State) snapshot() State {
	cp := s
	cp.Tasks = make([]*models.Task, len(s.Tasks))
	copy(cp.Tasks, s.Tasks)
	return cp
}

// MutationOutcome is the terminal state of one mutation attempt.
// Rollback means a full resync from the store, never a diff-based undo.
type MutationOutcome string

const (
	MutationCommitted  MutationOutcome = "committed"
	MutationRolledBack MutationOutcome = "rolled_back"
)
