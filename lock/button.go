package lock

import "time"

// debouncer turns a noisy active low button level into press events.
type debouncer struct {
	raw     bool // Last raw level
	stable  bool // Debounced level
	changed time.Time
}

func (d *debouncer) reset(level bool, now time.Time) {
	d.raw = level
	d.stable = level
	d.changed = now
}

// update samples the raw level and reports true once when the debounced
// level goes low.
func (d *debouncer) update(level bool, now time.Time, interval time.Duration) bool {
	if level != d.raw {
		d.raw = level
		d.changed = now
		return false
	}
	if level == d.stable || now.Sub(d.changed) < interval {
		return false
	}
	d.stable = level
	return !level
}
