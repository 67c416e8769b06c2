package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublishReachesForumSubscribers(t *testing.T) {
	b := NewBroker(4)

	golang, cancelGolang := b.Subscribe("golang")
	defer cancelGolang()
	rust, cancelRust := b.Subscribe("rust")
	defer cancelRust()

	b.Publish(Event{Type: TopicVoted, ForumID: "golang", Payload: "t1"})

	select {
	case ev := <-golang:
		assert.Equal(t, TopicVoted, ev.Type)
		assert.Equal(t, "t1", ev.Payload)
		assert.False(t, ev.At.IsZero())
	default:
		t.Fatal("expected event on golang subscriber")
	}

	select {
	case ev := <-rust:
		t.Fatalf("unexpected event on rust subscriber: %+v", ev)
	default:
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	b := NewBroker(1)
	ch, cancel := b.Subscribe("golang")
	defer cancel()

	b.Publish(Event{Type: PostCreated, ForumID: "golang"})
	b.Publish(Event{Type: ReportCreated, ForumID: "golang"})

	ev := <-ch
	assert.Equal(t, PostCreated, ev.Type)
	assert.Len(t, ch, 0)
}

func TestCancelClosesAndUnregisters(t *testing.T) {
	b := NewBroker(0)
	ch, cancel := b.Subscribe("golang")
	require.Equal(t, 1, b.Subscribers("golang"))

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, b.Subscribers("golang"))

	b.Publish(Event{Type: UserBlocked, ForumID: "golang"})
}

func TestConcurrentPublishers(t *testing.T) {
	b := NewBroker(100)
	ch, cancel := b.Subscribe("golang")
	defer cancel()

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 5; j++ {
				b.Publish(Event{Type: TopicCreated, ForumID: "golang"})
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	assert.Len(t, ch, 50)
}

func TestCloseDisconnectsEveryone(t *testing.T) {
	b := NewBroker(1)
	a, cancelA := b.Subscribe("golang")
	r, cancelR := b.Subscribe("rust")

	b.Close()

	_, ok := <-a
	assert.False(t, ok)
	_, ok = <-r
	assert.False(t, ok)
	assert.Equal(t, 0, b.Subscribers("golang"))

	cancelA()
	cancelR()
}

func TestAdminOnlyEventsAreFiltered(t *testing.T) {
	public := Event{Type: TopicCreated}
	moderation := Event{Type: ReportCreated, Audience: AdminsOnly}

	assert.True(t, public.VisibleTo(false))
	assert.True(t, public.VisibleTo(true))
	assert.False(t, moderation.VisibleTo(false))
	assert.True(t, moderation.VisibleTo(true))
}
