package campusfeed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/campus-feed/pkg/campusfeed"
)

func TestEventName(t *testing.T) {
	assert.Equal(t, "instituteCreated", campusfeed.EventName(campusfeed.SourceInstitute, campusfeed.ActionCreated))
	assert.Equal(t, "recruiterVisibilityChanged", campusfeed.EventName(campusfeed.SourceRecruiter, campusfeed.ActionVisibilityChanged))
	assert.Equal(t, "staffDeleted", campusfeed.EventName(campusfeed.SourceStaff, campusfeed.ActionDeleted))
}

func TestHubBroadcast(t *testing.T) {
	hub := campusfeed.NewHub()

	first := hub.Subscribe()
	second := hub.Subscribe()
	defer first.Close()
	defer second.Close()

	hub.Publish(campusfeed.Event{Name: "staffCreated"})

	for _, sub := range []*campusfeed.Subscription{first, second} {
		select {
		case evt := <-sub.Events():
			assert.Equal(t, "staffCreated", evt.Name)
		default:
			t.Fatal("expected a buffered event")
		}
	}
}

func TestHubPublishWithoutSubscribersIsNoop(t *testing.T) {
	hub := campusfeed.NewHub()

	assert.NotPanics(t, func() {
		hub.Publish(campusfeed.Event{Name: "staffCreated"})
	})
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	hub := campusfeed.NewHub()

	slow := hub.Subscribe()
	defer slow.Close()

	// Overfill the buffer; publishing must never block.
	for i := 0; i < 64; i++ {
		hub.Publish(campusfeed.Event{Name: "staffUpdated"})
	}

	received := 0
	for {
		select {
		case <-slow.Events():
			received++
			continue
		default:
		}
		break
	}
	assert.Less(t, received, 64, "overflow events must be dropped, not queued unbounded")
	assert.Greater(t, received, 0)
}

func TestSubscriptionClose(t *testing.T) {
	hub := campusfeed.NewHub()

	sub := hub.Subscribe()
	sub.Close()

	_, open := <-sub.Events()
	require.False(t, open, "closing the subscription must close its channel")

	// Closing twice and publishing afterwards must both be safe.
	assert.NotPanics(t, func() {
		sub.Close()
		hub.Publish(campusfeed.Event{Name: "staffDeleted"})
	})
}
