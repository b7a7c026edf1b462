package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_OnPublish_ShouldDeliverEventsInOrder(t *testing.T) {
	b := New()

	var got []Event
	b.Subscribe(TransactionsChanged, func(ev Event) {
		got = append(got, ev)
	})

	b.Publish(TransactionsChanged, "alice")
	b.Publish(TransactionsChanged, "alice")
	b.Publish(TransactionsChanged, "bob")

	assert.Equal(t, []Event{
		{Topic: TransactionsChanged, OwnerID: "alice"},
		{Topic: TransactionsChanged, OwnerID: "alice"},
		{Topic: TransactionsChanged, OwnerID: "bob"},
	}, got)
}

func Test_OnPublish_ShouldNotLeakAcrossTopics(t *testing.T) {
	b := New()

	var calls int
	b.Subscribe(BudgetChanged, func(Event) { calls++ })

	b.Publish(TransactionsChanged, "alice")
	b.Publish(SettingsChanged, "alice")

	assert.Zero(t, calls)
}

func Test_OnSubscribe_ShouldNotReplayPastEvents(t *testing.T) {
	b := New()
	b.Publish(TransactionsChanged, "alice")

	var calls int
	b.Subscribe(TransactionsChanged, func(Event) { calls++ })

	assert.Zero(t, calls)
}

func Test_OnUnsubscribe_ShouldStopDelivery(t *testing.T) {
	b := New()

	var calls int
	sub := b.Subscribe(TransactionsChanged, func(Event) { calls++ })

	b.Publish(TransactionsChanged, "alice")
	sub.Unsubscribe()
	b.Publish(TransactionsChanged, "alice")

	assert.Equal(t, 1, calls)

	// Unsubscribing twice is a no-op.
	sub.Unsubscribe()
}

func Test_OnPublish_ShouldCallSubscribersInRegistrationOrder(t *testing.T) {
	b := New()

	var order []string
	b.Subscribe(TransactionsChanged, func(Event) { order = append(order, "first") })
	b.Subscribe(TransactionsChanged, func(Event) { order = append(order, "second") })

	b.Publish(TransactionsChanged, "alice")

	assert.Equal(t, []string{"first", "second"}, order)
}
