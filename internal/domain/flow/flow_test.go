package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	t.Run("next items keep order", func(t *testing.T) {
		o := NextItems([]string{"b", "a"})

		assert.True(t, o.IsNextItems())
		assert.Equal(t, OutcomeNextItems, o.Kind())
		assert.Equal(t, []string{"b", "a"}, o.Items())
		assert.Equal(t, "NEXT_ITEMS", o.String())
	})

	t.Run("empty item list is a timeout", func(t *testing.T) {
		assert.True(t, NextItems(nil).IsTimedOut())
		assert.True(t, NextItems([]string{}).IsTimedOut())
	})

	t.Run("items are copied", func(t *testing.T) {
		ids := []string{"a"}
		o := NextItems(ids)
		ids[0] = "changed"

		items := o.Items()
		items[0] = "changed again"

		assert.Equal(t, []string{"a"}, o.Items())
	})

	t.Run("ended and timed out carry no items", func(t *testing.T) {
		assert.True(t, Ended().IsEnded())
		assert.Nil(t, Ended().Items())
		assert.True(t, TimedOut().IsTimedOut())
		assert.Nil(t, TimedOut().Items())
		assert.Equal(t, "ENDED", Ended().String())
		assert.Equal(t, "TIMED_OUT", TimedOut().String())
	})

	t.Run("zero value is unknown", func(t *testing.T) {
		var o Outcome
		assert.False(t, o.IsNextItems() || o.IsEnded() || o.IsTimedOut())
		assert.Equal(t, "UNKNOWN", o.String())
	})
}

func TestAssignee(t *testing.T) {
	id, ok := AnyAssignee().Get()
	assert.False(t, ok)
	assert.Empty(t, id)
	assert.Equal(t, "*", AnyAssignee().String())

	id, ok = AssignedTo("alice").Get()
	assert.True(t, ok)
	assert.Equal(t, "alice", id)
	assert.Equal(t, "alice", AssignedTo("alice").String())

	assert.Equal(t, AnyAssignee(), AssignedTo(""))

	var zero Assignee
	assert.Equal(t, AnyAssignee(), zero)
}

func TestSnapshot_Outcome(t *testing.T) {
	tests := []struct {
		name     string
		snapshot Snapshot
		wantOK   bool
		wantKind OutcomeKind
	}{
		{name: "items", snapshot: Snapshot{Items: []string{"i"}}, wantOK: true, wantKind: OutcomeNextItems},
		{name: "items beat ended", snapshot: Snapshot{Items: []string{"i"}, RootEnded: true}, wantOK: true, wantKind: OutcomeNextItems},
		{name: "ended", snapshot: Snapshot{RootEnded: true}, wantOK: true, wantKind: OutcomeEnded},
		{name: "nothing yet", snapshot: Snapshot{}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, ok := tt.snapshot.Outcome()

			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantKind, outcome.Kind())
			}
		})
	}
}

func TestSnapshot_Root(t *testing.T) {
	assert.Equal(t, "", Snapshot{}.Root())
	assert.Equal(t, "g", Snapshot{Ancestors: []string{"c", "p", "g"}}.Root())
}
