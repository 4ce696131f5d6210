package ratelimiting

import (
	"context"
	"slices"
	"sync"
	"time"
)

// WindowLimiter allows at most limit operations to start within any window of the given length
type WindowLimiter struct {
	limit     int
	window    time.Duration
	nowFunc   func() time.Time
	afterFunc func(time.Duration) <-chan time.Time

	slots    chan struct{}
	finished []time.Time
	mutex    sync.Mutex
}

func NewWindowLimiter(
	limit int,
	window time.Duration,
	nowFunc func() time.Time,
	afterFunc func(time.Duration) <-chan time.Time,
) *WindowLimiter {
	slots := make(chan struct{}, limit)
	for range limit {
		slots <- struct{}{}
	}

	// Pretend every slot was used a full window ago, so the first requests don't wait
	finished := make([]time.Time, limit)
	longAgo := nowFunc().Add(-window)
	for i := range finished {
		finished[i] = longAgo
	}

	return &WindowLimiter{
		limit:     limit,
		window:    window,
		nowFunc:   nowFunc,
		afterFunc: afterFunc,

		slots:    slots,
		finished: finished,
	}
}

// Limit runs operation once the window has room for it.
//
// Returns false without running the operation when ctx is done, or when ctx has a deadline that
// would pass before the wait plus maxOperationTime.
func (l *WindowLimiter) Limit(ctx context.Context, maxOperationTime time.Duration, operation func()) bool {
	select {
	case <-l.slots:
		defer func() {
			l.slots <- struct{}{}
		}()
	case <-ctx.Done():
		return false
	}

	oldest, wait, ok := l.claimOldest(ctx, maxOperationTime)
	if !ok {
		return false
	}
	// Give the claimed entry back unless the operation runs
	toInsert := oldest
	defer func() {
		l.insertFinished(toInsert)
	}()

	if wait > 0 {
		select {
		case <-ctx.Done():
			return false
		case <-l.afterFunc(wait):
		}
	}

	operation()

	toInsert = l.nowFunc()
	return true
}

func (l *WindowLimiter) claimOldest(ctx context.Context, maxOperationTime time.Duration) (time.Time, time.Duration, bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	oldest := l.finished[0]
	wait := l.window - l.nowFunc().Sub(oldest)

	if deadline, ok := ctx.Deadline(); ok {
		if max(wait, 0)+maxOperationTime > deadline.Sub(l.nowFunc()) {
			return time.Time{}, 0, false
		}
	}

	l.finished = l.finished[1:]
	return oldest, wait, true
}

func (l *WindowLimiter) insertFinished(t time.Time) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	i, _ := slices.BinarySearchFunc(l.finished, t, func(a, b time.Time) int {
		return a.Compare(b)
	})
	l.finished = slices.Insert(l.finished, i, t)
}
