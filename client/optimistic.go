package client

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var (
	// ErrBusy is returned when an edit starts while another is still waiting
	// on the server.
	ErrBusy = errors.New("client: another edit is pending")
	// ErrNotInList is returned by Replace and Remove for unknown keys.
	ErrNotInList = errors.New("client: item not in list")
)

// List is an editable list whose writes show up locally before the server
// confirms them. It holds the last committed snapshot and, while a write is in
// flight, the pending state readers see instead. A failed write drops the
// pending state, which restores the committed snapshot.
type List[T any] struct {
	mu        sync.Mutex
	committed []T
	pending   []T
	inFlight  bool
	key       func(T) int
}

// NewList starts a list from items the server returned. key identifies an item
// for Replace and Remove.
func NewList[T any](items []T, key func(T) int) *List[T] {
	return &List[T]{committed: slices.Clone(items), key: key}
}

// Items returns what the user should see: the pending state during a write,
// otherwise the committed snapshot.
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight {
		return slices.Clone(l.pending)
	}
	return slices.Clone(l.committed)
}

// Pending reports whether a write is in flight.
func (l *List[T]) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight
}

// Get returns the visible item with key k.
func (l *List[T]) Get(k int) (T, bool) {
	for _, it := range l.Items() {
		if l.key(it) == k {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Reset replaces the committed snapshot, e.g. after a refetch.
func (l *List[T]) Reset(items []T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight {
		return ErrBusy
	}
	l.committed = slices.Clone(items)
	return nil
}

// Insert shows item immediately, then commits the server's version of it.
func (l *List[T]) Insert(ctx context.Context, item T, write func(context.Context) (T, error)) (T, error) {
	err := l.begin(func(items []T) ([]T, error) {
		return append(items, item), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	saved, err := write(ctx)
	if err != nil {
		l.rollback()
		return saved, err
	}
	l.commit(func(items []T) []T { return append(items, saved) })
	return saved, nil
}

// Replace shows item in place of the entry with the same key, then commits the
// server's version.
func (l *List[T]) Replace(ctx context.Context, item T, write func(context.Context) (T, error)) (T, error) {
	k := l.key(item)
	err := l.begin(func(items []T) ([]T, error) {
		i := l.index(items, k)
		if i < 0 {
			return nil, ErrNotInList
		}
		items[i] = item
		return items, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	saved, err := write(ctx)
	if err != nil {
		l.rollback()
		return saved, err
	}
	l.commit(func(items []T) []T {
		if i := l.index(items, k); i >= 0 {
			items[i] = saved
		}
		return items
	})
	return saved, nil
}

// Remove hides the entry with key k, then commits the removal.
func (l *List[T]) Remove(ctx context.Context, k int, write func(context.Context) error) error {
	drop := func(items []T) []T {
		return slices.DeleteFunc(items, func(it T) bool { return l.key(it) == k })
	}
	err := l.begin(func(items []T) ([]T, error) {
		if l.index(items, k) < 0 {
			return nil, ErrNotInList
		}
		return drop(items), nil
	})
	if err != nil {
		return err
	}
	if err := write(ctx); err != nil {
		l.rollback()
		return err
	}
	l.commit(drop)
	return nil
}

func (l *List[T]) index(items []T, k int) int {
	return slices.IndexFunc(items, func(it T) bool { return l.key(it) == k })
}

// begin applies edit to a copy of the committed snapshot and marks it pending.
func (l *List[T]) begin(edit func([]T) ([]T, error)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight {
		return ErrBusy
	}
	next, err := edit(slices.Clone(l.committed))
	if err != nil {
		return err
	}
	l.pending = next
	l.inFlight = true
	return nil
}

func (l *List[T]) commit(edit func([]T) []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.committed = edit(slices.Clone(l.committed))
	l.pending = nil
	l.inFlight = false
}

func (l *List[T]) rollback() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = nil
	l.inFlight = false
}
