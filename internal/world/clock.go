package world

import (
	"fmt"
	"sort"
)

// DayLength is the number of in-world minutes in a day.
const DayLength = 1440

// Clock tracks elapsed simulation time. Minutes is absolute since the
// start of the simulation and is never wrapped; only FaceTime folds it
// onto the repeating day. Keeping the absolute value avoids the stall
// that wrapped busy-until bookkeeping can cause across midnight.
type Clock struct {
	Minutes int `json:"world_time"`
}

// FaceTime is the time of day in minutes, in [0,DayLength).
func (c Clock) FaceTime() int {
	return ((c.Minutes % DayLength) + DayLength) % DayLength
}

// Day is the 1-based day counter.
func (c Clock) Day() int {
	return c.Minutes/DayLength + 1
}

// HourString formats the face time as "15h05".
func (c Clock) HourString() string {
	f := c.FaceTime()
	return fmt.Sprintf("%dh%02d", f/60, f%60)
}

// Advance adds minutes to the clock and returns the new face time.
func (c *Clock) Advance(minutes int) int {
	c.Minutes += minutes
	return c.FaceTime()
}

// AdvanceToNextReady jumps the clock to the completion of the next
// in-progress action and returns the names of every character whose
// busy-until has elapsed. When nobody is busy it advances a single
// minute so time always makes progress.
func (c *Clock) AdvanceToNextReady(chars map[string]*Character) (int, []string) {
	minBusy := -1
	for _, ch := range chars {
		if ch.BusyUntil > c.Minutes {
			if minBusy == -1 || ch.BusyUntil < minBusy {
				minBusy = ch.BusyUntil
			}
		}
	}

	if minBusy == -1 {
		c.Advance(1)
	} else {
		c.Minutes = minBusy
	}

	ready := make([]string, 0, len(chars))
	for name, ch := range chars {
		if ch.BusyUntil <= c.Minutes {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)
	return c.Minutes, ready
}
