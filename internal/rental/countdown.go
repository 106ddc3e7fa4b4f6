package rental

import (
	"fmt"
	"time"
)

// DepositWindow is how long a new order may wait for its deposit.
const DepositWindow = 10 * time.Minute

// Countdown returns max(0, DepositWindow - (now - createdAt)).
func Countdown(createdAt, now time.Time) (time.Duration, bool) {
	remaining := DepositWindow - now.Sub(createdAt)
	if remaining <= 0 {
		return 0, true
	}
	return remaining, false
}

// FormatCountdown renders d as MM:SS, rounding partial seconds down.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// DepositEligible reports whether the countdown applies to an order.
func DepositEligible(s Status, deposit float64) bool {
	return !s.Terminal() && s != StatusCancelled && deposit > 0
}

// ShouldAutoCancel is true once the window is over and the order still waits
// for its deposit.
func ShouldAutoCancel(s Status, createdAt, now time.Time) bool {
	if s != StatusPending {
		return false
	}
	_, expired := Countdown(createdAt, now)
	return expired
}
