package app

import (
	"fmt"
	"testing"

	"edututor-service/internal/domain"
)

func TestFeedFanOut(t *testing.T) {
	feed := NewFeed()
	a, cancelA := feed.Subscribe()
	b, cancelB := feed.Subscribe()
	defer cancelA()
	defer cancelB()

	feed.Publish(domain.ClassActivity{UserID: "u1"})

	if got := <-a; got.UserID != "u1" {
		t.Fatalf("subscriber a got %+v", got)
	}
	if got := <-b; got.UserID != "u1" {
		t.Fatalf("subscriber b got %+v", got)
	}
}

func TestFeedDropsOldestWhenSlow(t *testing.T) {
	feed := NewFeed()
	ch, cancel := feed.Subscribe()
	defer cancel()

	// Overfill the buffer without draining; the oldest events give way.
	for i := 0; i < 10; i++ {
		feed.Publish(domain.ClassActivity{UserID: fmt.Sprintf("u%d", i)})
	}

	first := <-ch
	if first.UserID != "u2" {
		t.Fatalf("expected oldest surviving event u2, got %s", first.UserID)
	}
}

func TestFeedCancelClosesChannel(t *testing.T) {
	feed := NewFeed()
	ch, cancel := feed.Subscribe()
	cancel()
	cancel() // second cancel is a no-op

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after cancel")
	}

	// Publishing after cancel must not panic or block.
	feed.Publish(domain.ClassActivity{UserID: "u1"})
}
