package stepper

// Nanoseconds is a signal timing constant, as read off a driver chip's
// datasheet (setup times, hold times, pulse widths).
type Nanoseconds uint32

// Ticks is a duration expressed in ticks of a Timer. How long one tick is
// depends on the timer's frequency.
type Ticks uint32

// Timer is a non-blocking countdown timer. Start arms it for a number of
// ticks; Poll reports whether it has expired yet, without blocking.
//
// The core never sleeps on a timer. All waiting is expressed as repeated
// calls to Poll, so a caller's main loop stays responsive. Callers must poll
// often enough that the underlying counter cannot wrap between polls; the
// maximum safe gap is the timer's counting range (2^32 ticks) divided by its
// frequency.
type Timer interface {
	// Freq returns the timer frequency in ticks per second.
	Freq() uint32

	// Start arms the countdown for the given number of ticks. Restarting a
	// running timer is allowed and abandons the previous countdown.
	Start(ticks Ticks) error

	// Poll reports whether the countdown has expired. It must not block.
	Poll() (expired bool, err error)
}

// NanosToTicks converts a nanosecond timing constant into ticks of a timer
// running at freq ticks per second. The result is rounded up, so a wait for
// the returned tick count is never shorter than the constant. A zero freq,
// or a result that does not fit the timer's 32-bit tick range, produces a
// SignalError with CauseTimeConversion.
func NanosToTicks(ns Nanoseconds, freq uint32) (Ticks, error) {
	if freq == 0 {
		return 0, &SignalError{Cause: CauseTimeConversion, Err: errZeroFreq}
	}
	ticks := (uint64(ns)*uint64(freq) + 1e9 - 1) / 1e9
	if ticks > 1<<32-1 {
		return 0, &SignalError{Cause: CauseTimeConversion, Err: errTickOverflow}
	}
	return Ticks(ticks), nil
}
