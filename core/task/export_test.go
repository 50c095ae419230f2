package task

import "time"

// SetNow fixes the service clock until restore is called.
func SetNow(now time.Time) (restore func()) {
	orig := nowFunc
	nowFunc = func() time.Time { return now }
	return func() { nowFunc = orig }
}
