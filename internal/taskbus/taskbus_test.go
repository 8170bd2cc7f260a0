package taskbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentforge/conditioncore/pkg/models"
)

func TestSubscribe_ReceivesCurrentStateThenUpdates(t *testing.T) {
	bus := New()
	id := NewTaskID()
	bus.UpdateState(id, models.TaskSnapshot{State: models.TaskStatePending})

	ch, cancel := bus.Subscribe(id)
	defer cancel()

	select {
	case snap := <-ch:
		assert.Equal(t, models.TaskStatePending, snap.State)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial snapshot")
	}

	bus.UpdateState(id, models.TaskSnapshot{State: models.TaskStateProgress, CurrentStep: "scrape"})

	select {
	case snap := <-ch:
		assert.Equal(t, "scrape", snap.CurrentStep)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for progress update")
	}
}

func TestSubscribe_LateSubscriberSeesOnlyTerminal(t *testing.T) {
	bus := New()
	id := NewTaskID()
	bus.UpdateState(id, models.TaskSnapshot{State: models.TaskStatePending})
	bus.UpdateState(id, models.TaskSnapshot{State: models.TaskStateProgress, CurrentStep: "scrape"})
	bus.UpdateState(id, models.TaskSnapshot{State: models.TaskStateSuccess})

	ch, cancel := bus.Subscribe(id)
	defer cancel()

	snap, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, models.TaskStateSuccess, snap.State)

	_, ok = <-ch
	assert.False(t, ok, "channel should be closed after delivering the terminal snapshot")
}

func TestSubscribe_UnknownTaskClosesEmptyChannel(t *testing.T) {
	bus := New()
	ch, cancel := bus.Subscribe("never-existed")
	defer cancel()

	_, ok := <-ch
	assert.False(t, ok)
}

func TestUpdateState_DeliversTerminalToPreConnectedSubscriberThenCloses(t *testing.T) {
	bus := New()
	id := NewTaskID()
	bus.UpdateState(id, models.TaskSnapshot{State: models.TaskStatePending})

	ch, cancel := bus.Subscribe(id)
	defer cancel()
	<-ch // drain initial pending snapshot

	bus.UpdateState(id, models.TaskSnapshot{State: models.TaskStateFailure, Error: "boom"})

	snap, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, "boom", snap.Error)

	_, ok = <-ch
	assert.False(t, ok)
}

func TestLastStateCache_EvictsOldestBeyondCapacity(t *testing.T) {
	cache := newLastStateCache(2)
	cache.put("a", models.TaskSnapshot{State: models.TaskStateSuccess, CurrentStep: "a"})
	cache.put("b", models.TaskSnapshot{State: models.TaskStateSuccess, CurrentStep: "b"})
	cache.put("c", models.TaskSnapshot{State: models.TaskStateSuccess, CurrentStep: "c"})

	_, ok := cache.get("a")
	assert.False(t, ok)
	_, ok = cache.get("b")
	assert.True(t, ok)
	_, ok = cache.get("c")
	assert.True(t, ok)
}
