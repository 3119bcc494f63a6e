package client

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// HabitBoard shows one day's check-offs for every active habit and edits them
// optimistically.
type HabitBoard struct {
	client *Client
	date   string
	habits []Habit
	logs   *List[HabitLog]
	nextID atomic.Int64
}

func habitLogKey(l HabitLog) int { return l.ID }

// OpenHabitBoard loads active habits and their logs for date (empty means
// today on this machine). Per-habit log reads run concurrently.
func (c *Client) OpenHabitBoard(ctx context.Context, date string) (*HabitBoard, error) {
	if date == "" {
		date = time.Now().Format(time.DateOnly)
	}
	habits, err := c.Habits(ctx, true)
	if err != nil {
		return nil, err
	}

	perHabit := make([][]HabitLog, len(habits))
	g, gctx := errgroup.WithContext(ctx)
	for i, hb := range habits {
		i, hb := i, hb
		g.Go(func() (err error) {
			perHabit[i], err = c.HabitLogs(gctx, hb.ID, date, date)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var logs []HabitLog
	for _, l := range perHabit {
		logs = append(logs, l...)
	}
	return &HabitBoard{client: c, date: date, habits: habits, logs: NewList(logs, habitLogKey)}, nil
}

func (b *HabitBoard) Date() string    { return b.date }
func (b *HabitBoard) Habits() []Habit { return b.habits }

// LogFor returns the visible log of habitID for the board's date.
func (b *HabitBoard) LogFor(habitID int) (HabitLog, bool) {
	for _, l := range b.logs.Items() {
		if l.HabitID == habitID {
			return l, true
		}
	}
	return HabitLog{}, false
}

// Done reports whether habitID's visible log meets its target.
func (b *HabitBoard) Done(habitID int) bool {
	l, ok := b.LogFor(habitID)
	return ok && l.Completed
}

func (b *HabitBoard) target(habitID int) (float64, bool) {
	for _, hb := range b.habits {
		if hb.ID == habitID {
			return hb.TargetValue, true
		}
	}
	return 0, false
}

// Check sets habitID's value for the day, creating the log or updating it.
// The completed flag shown meanwhile uses the same rule as the server.
func (b *HabitBoard) Check(ctx context.Context, habitID int, value float64) (HabitLog, error) {
	target, ok := b.target(habitID)
	if !ok {
		return HabitLog{}, ErrNotInList
	}

	if existing, ok := b.LogFor(habitID); ok && existing.ID > 0 {
		existing.Value = value
		existing.Completed = value >= target
		return b.logs.Replace(ctx, existing, func(ctx context.Context) (HabitLog, error) {
			return b.client.UpdateHabitLog(ctx, existing.ID, value)
		})
	}

	placeholder := HabitLog{
		ID:        int(b.nextID.Add(-1)),
		HabitID:   habitID,
		Date:      b.date,
		Value:     value,
		Completed: value >= target,
	}
	return b.logs.Insert(ctx, placeholder, func(ctx context.Context) (HabitLog, error) {
		return b.client.LogHabit(ctx, habitID, b.date, value)
	})
}

// Uncheck deletes habitID's log for the day.
func (b *HabitBoard) Uncheck(ctx context.Context, habitID int) error {
	existing, ok := b.LogFor(habitID)
	if !ok {
		return ErrNotInList
	}
	return b.logs.Remove(ctx, existing.ID, func(ctx context.Context) error {
		return b.client.DeleteHabitLog(ctx, existing.ID)
	})
}
