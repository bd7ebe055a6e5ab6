package app

import (
	"sync"

	"edututor-service/internal/domain"
)

// Feed fans out class activity to in-process subscribers (the educator
// dashboard websocket). Publishing never blocks: slow subscribers have their
// oldest pending event dropped in favor of the newest.
type Feed struct {
	mu          sync.Mutex
	subscribers map[chan domain.ClassActivity]struct{}
}

func NewFeed() *Feed {
	return &Feed{subscribers: make(map[chan domain.ClassActivity]struct{})}
}

func (f *Feed) Subscribe() (<-chan domain.ClassActivity, func()) {
	ch := make(chan domain.ClassActivity, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

func (f *Feed) Publish(activity domain.ClassActivity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- activity:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- activity
		}
	}
}
