package event

import (
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satococoa/gitwrap/internal/command"
	"github.com/satococoa/gitwrap/internal/errors"
)

func recorder(order *[]string, name string) Handler {
	return func(*Event) error {
		*order = append(*order, name)
		return nil
	}
}

func TestBus_PriorityOrder(t *testing.T) {
	t.Run("should run lower priority first", func(t *testing.T) {
		// Given: two prepare handlers with priorities 0 and -5
		bus := NewBus()
		var order []string
		bus.Subscribe(Prepare, recorder(&order, "0"), 0)
		bus.Subscribe(Prepare, recorder(&order, "-5"), -5)

		// When: dispatching a prepare event
		require.NoError(t, bus.Dispatch(&Event{Kind: Prepare}))

		// Then: -5 runs before 0
		assert.Equal(t, []string{"-5", "0"}, order)
	})

	t.Run("should keep registration order for equal priorities", func(t *testing.T) {
		bus := NewBus()
		var order []string
		bus.Subscribe(Output, recorder(&order, "a"), 10)
		bus.Subscribe(Output, recorder(&order, "b"), 0)
		bus.Subscribe(Output, recorder(&order, "c"), 10)
		bus.Subscribe(Output, recorder(&order, "d"), 0)

		require.NoError(t, bus.Dispatch(&Event{Kind: Output}))

		assert.Equal(t, []string{"b", "d", "a", "c"}, order)
	})

	t.Run("should only invoke handlers of the dispatched kind", func(t *testing.T) {
		bus := NewBus()
		var order []string
		bus.Subscribe(Success, recorder(&order, "success"), 0)
		bus.Subscribe(Error, recorder(&order, "error"), 0)

		require.NoError(t, bus.Dispatch(&Event{Kind: Error}))

		assert.Equal(t, []string{"error"}, order)
	})
}

func TestBus_ZeroValue(t *testing.T) {
	// Given: a bus that was declared, not constructed
	var bus Bus
	var order []string

	// When: subscribing and dispatching
	id := bus.Subscribe(Success, recorder(&order, "zero"), 0)
	require.NoError(t, bus.Dispatch(&Event{Kind: Success}))

	// Then: the handler runs and can be removed
	assert.Equal(t, []string{"zero"}, order)
	assert.Equal(t, 1, bus.Len(Success))
	assert.True(t, bus.Unsubscribe(Success, id))
	assert.NoError(t, bus.Dispatch(&Event{Kind: Error}))
}

func TestBus_Unsubscribe(t *testing.T) {
	t.Run("should remove handler", func(t *testing.T) {
		bus := NewBus()
		var order []string
		id := bus.Subscribe(Prepare, recorder(&order, "gone"), 0)
		bus.Subscribe(Prepare, recorder(&order, "kept"), 0)

		assert.True(t, bus.Unsubscribe(Prepare, id))
		require.NoError(t, bus.Dispatch(&Event{Kind: Prepare}))

		assert.Equal(t, []string{"kept"}, order)
		assert.Equal(t, 1, bus.Len(Prepare))
	})

	t.Run("should report unknown registrations", func(t *testing.T) {
		bus := NewBus()
		id := bus.Subscribe(Prepare, recorder(new([]string), "x"), 0)

		assert.False(t, bus.Unsubscribe(Success, id))
		assert.False(t, bus.Unsubscribe(Prepare, id+100))
	})

	t.Run("should allow handlers to unsubscribe during dispatch", func(t *testing.T) {
		bus := NewBus()
		var order []string
		var id SubscriptionID
		id = bus.Subscribe(Output, func(*Event) error {
			order = append(order, "once")
			bus.Unsubscribe(Output, id)
			return nil
		}, 0)
		bus.Subscribe(Output, recorder(&order, "always"), 1)

		require.NoError(t, bus.Dispatch(&Event{Kind: Output}))
		require.NoError(t, bus.Dispatch(&Event{Kind: Output}))

		assert.Equal(t, []string{"once", "always", "always"}, order)
	})
}

type multiSubscriber struct {
	seen []Kind
}

func (m *multiSubscriber) Subscriptions() []Subscription {
	h := func(e *Event) error {
		m.seen = append(m.seen, e.Kind)
		return nil
	}
	return []Subscription{
		{Kind: Prepare, Handler: h},
		{Kind: Success, Handler: h},
		{Kind: Error, Handler: h, Priority: 5},
	}
}

func TestBus_Subscriber(t *testing.T) {
	// Given: a subscriber registering three kinds
	bus := NewBus()
	sub := &multiSubscriber{}
	ids := bus.AddSubscriber(sub)
	require.Len(t, ids, 3)

	// When: dispatching each kind
	for _, k := range Kinds {
		require.NoError(t, bus.Dispatch(&Event{Kind: k}))
	}

	// Then: each registration fired independently
	assert.Equal(t, []Kind{Prepare, Success, Error}, sub.seen)

	// When: removing the subscriber
	bus.RemoveSubscriber(ids)

	// Then: nothing remains
	for _, k := range Kinds {
		assert.Zero(t, bus.Len(k))
	}
}

func TestBus_HandlerError(t *testing.T) {
	// Given: a failing handler between two recorders
	bus := NewBus()
	var order []string
	boom := stderrors.New("boom")
	bus.Subscribe(Prepare, recorder(&order, "first"), 0)
	bus.Subscribe(Prepare, func(*Event) error { return boom }, 1)
	bus.Subscribe(Prepare, recorder(&order, "never"), 2)

	// When: dispatching
	err := bus.Dispatch(&Event{Kind: Prepare})

	// Then: the error propagates and later handlers are skipped
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	var he *errors.HandlerError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "prepare", he.Event)
	assert.Equal(t, []string{"first"}, order)
}

func TestBus_SharedCommand(t *testing.T) {
	// Given: a handler that flips bypass and a later handler observing it
	bus := NewBus()
	cmd := command.New("push")
	var observed bool
	bus.Subscribe(Prepare, func(e *Event) error {
		e.Command.SetBypass(true)
		return nil
	}, -10)
	bus.Subscribe(Prepare, func(e *Event) error {
		observed = e.Command.Bypass
		return nil
	}, 0)

	// When: dispatching with the command
	require.NoError(t, bus.Dispatch(&Event{Kind: Prepare, Command: cmd}))

	// Then: the mutation is visible to later handlers and the caller
	assert.True(t, observed)
	assert.True(t, cmd.Bypass)
}

func TestBus_Concurrent(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	count := 0
	bus.Subscribe(Output, func(*Event) error {
		mu.Lock()
		defer mu.Unlock()
		count++
		return nil
	}, 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := bus.Subscribe(Success, func(*Event) error { return nil }, i)
			_ = bus.Dispatch(&Event{Kind: Output})
			bus.Unsubscribe(Success, id)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, count)
	assert.Zero(t, bus.Len(Success))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "prepare", Prepare.String())
	assert.Equal(t, "bypass", Bypass.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
	assert.True(t, Success.Terminal())
	assert.True(t, Bypass.Terminal())
	assert.False(t, Output.Terminal())
	assert.Equal(t, "stderr", Stderr.String())
}
