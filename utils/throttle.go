package utils

import "time"

// Throttle spaces outbound requests by sleeping a fixed interval before each
// one. It does not account for time already spent since the last call.
type Throttle struct {
	Sleep func(time.Duration)
}

func NewThrottle() *Throttle {
	return &Throttle{Sleep: time.Sleep}
}

// Wait sleeps 1/rps seconds. A non-positive rps disables throttling.
func (t *Throttle) Wait(rps float64) {
	if t == nil || rps <= 0 {
		return
	}
	sleep := t.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(time.Duration(float64(time.Second) / rps))
}
