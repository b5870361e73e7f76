package kalimba

import (
	"context"
	"time"
)

// Arp walks a list of tine ids, hitting one every duration. An id of 0 is
// a rest.
type Arp struct {
	Tines    []int
	Duration time.Duration

	Target *Kalimba
}

// Run plays the sequence once, or forever when loop is set, until ctx ends.
func (a *Arp) Run(ctx context.Context, loop bool) error {
	if len(a.Tines) == 0 {
		return nil
	}

	tick := time.NewTicker(a.Duration)
	defer tick.Stop()

	for {
		for i := 0; i < len(a.Tines); i++ {
			if a.Tines[i] > 0 {
				a.Target.Activate(a.Tines[i])
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick.C:
			}
		}
		if !loop {
			return nil
		}
	}
}
