package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state ImportState
		event ImportEvent
		want  ImportState
	}{
		{ImportStateUpload, EventParsed, ImportStatePreview},
		{ImportStateUpload, EventCancel, ImportStateCanceled},
		{ImportStatePreview, EventBack, ImportStateUpload},
		{ImportStatePreview, EventCommit, ImportStateImporting},
		{ImportStatePreview, EventCancel, ImportStateCanceled},
		{ImportStateImporting, EventCommitFailed, ImportStatePreview},
		{ImportStateImporting, EventCommitSucceeded, ImportStateCompleted},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.state)+"/"+string(tt.event), func(t *testing.T) {
			t.Parallel()
			got, err := Transition(tt.state, tt.event)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTransitionRejectsInvalidEvents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state ImportState
		event ImportEvent
	}{
		// An importing session cannot be canceled or re-committed.
		{ImportStateImporting, EventCancel},
		{ImportStateImporting, EventCommit},
		{ImportStateImporting, EventBack},
		// Commit requires a preview; an untouched upload has nothing staged.
		{ImportStateUpload, EventCommit},
		{ImportStateUpload, EventBack},
		// Terminal states accept nothing.
		{ImportStateCompleted, EventCommit},
		{ImportStateCompleted, EventCancel},
		{ImportStateCanceled, EventParsed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.state)+"/"+string(tt.event), func(t *testing.T) {
			t.Parallel()
			got, err := Transition(tt.state, tt.event)

			var invalid *InvalidTransitionError
			require.ErrorAs(t, err, &invalid)
			require.Equal(t, tt.state, invalid.State)
			require.Equal(t, tt.event, invalid.Event)
			// The state is unchanged on rejection.
			require.Equal(t, tt.state, got)
		})
	}
}

func TestCommitFailureReturnsToPreviewNotUpload(t *testing.T) {
	t.Parallel()

	// A failed commit keeps the staged preview so the user can retry
	// without re-uploading.
	state, err := Transition(ImportStateImporting, EventCommitFailed)
	require.NoError(t, err)
	require.Equal(t, ImportStatePreview, state)

	state, err = Transition(state, EventCommit)
	require.NoError(t, err)
	require.Equal(t, ImportStateImporting, state)
}
