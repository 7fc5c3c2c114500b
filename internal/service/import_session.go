package service

import (
	"fmt"
)

// ImportState is the lifecycle position of one import session. Values match
// the import_sessions.state column.
type ImportState string

const (
	ImportStateUpload    ImportState = "upload"
	ImportStatePreview   ImportState = "preview"
	ImportStateImporting ImportState = "importing"
	ImportStateCompleted ImportState = "completed"
	ImportStateCanceled  ImportState = "canceled"
)

// ImportEvent is a user action or commit outcome driving the session.
type ImportEvent string

const (
	EventParsed          ImportEvent = "parsed"
	EventBack            ImportEvent = "back"
	EventCommit          ImportEvent = "commit"
	EventCommitFailed    ImportEvent = "commit_failed"
	EventCommitSucceeded ImportEvent = "commit_succeeded"
	EventCancel          ImportEvent = "cancel"
)

// InvalidTransitionError reports an event the current state does not accept.
type InvalidTransitionError struct {
	State ImportState
	Event ImportEvent
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s while session is in %s state", e.Event, e.State)
}

var importTransitions = map[ImportState]map[ImportEvent]ImportState{
	ImportStateUpload: {
		EventParsed: ImportStatePreview,
		EventCancel: ImportStateCanceled,
	},
	ImportStatePreview: {
		EventBack:   ImportStateUpload,
		EventCommit: ImportStateImporting,
		EventCancel: ImportStateCanceled,
	},
	// Importing is deliberately not cancellable: the session either reaches
	// completed or falls back to preview on a commit failure.
	ImportStateImporting: {
		EventCommitFailed:    ImportStatePreview,
		EventCommitSucceeded: ImportStateCompleted,
	},
}

// Transition applies one event to a session state. Pure function so the
// lifecycle is testable without handlers, storage or a rendering surface.
func Transition(state ImportState, event ImportEvent) (ImportState, error) {
	if next, ok := importTransitions[state][event]; ok {
		return next, nil
	}
	return state, &InvalidTransitionError{State: state, Event: event}
}
