package scene

import (
	"context"
	"time"
)

// Reveal calls fn for each command in order, waiting delay between calls.
// It is the progressive-draw scheduler: layout work has already happened,
// Reveal only paces the hand-off to a sink or terminal view.
//
// A non-positive delay reveals everything at once. Reveal stops early with
// ctx.Err() on cancellation or with the first error returned by fn.
func Reveal(ctx context.Context, cmds []Command, delay time.Duration, fn func(int, Command) error) error {
	var timer *time.Timer
	if delay > 0 {
		timer = time.NewTimer(delay)
		timer.Stop()
		defer timer.Stop()
	}

	for i, c := range cmds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(i, c); err != nil {
			return err
		}
		if timer == nil || i == len(cmds)-1 {
			continue
		}
		timer.Reset(delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}
