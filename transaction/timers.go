package transaction

import "time"

// Timers holds the RFC 3261 §17 timer base values (T1/T2/T4) a Layer and
// every transaction it creates runs on. The teacher's original constants
// (Timer_A..Timer_M) are fixed multiples/copies of these three bases;
// DefaultTimers reproduces the teacher's values, but a Layer built with
// WithTransactionTimers carries its own Timers through to every
// transaction it spins up instead of reading package-level constants.
type Timers struct {
	T1 time.Duration
	T2 time.Duration
	T4 time.Duration
}

// DefaultTimers returns RFC 3261's suggested default timer values.
func DefaultTimers() Timers {
	return Timers{
		T1: 500 * time.Millisecond,
		T2: 4 * time.Second,
		T4: 5 * time.Second,
	}
}

func (t Timers) orDefault() Timers {
	if t.T1 == 0 {
		t.T1 = 500 * time.Millisecond
	}
	if t.T2 == 0 {
		t.T2 = 4 * time.Second
	}
	if t.T4 == 0 {
		t.T4 = 5 * time.Second
	}
	return t
}

func (t Timers) timerA() time.Duration { return t.T1 }
func (t Timers) timerB() time.Duration { return 64 * t.T1 }
func (t Timers) timerD() time.Duration { return 32 * time.Second }
func (t Timers) timerE() time.Duration { return t.T1 }
func (t Timers) timerF() time.Duration { return 64 * t.T1 }
func (t Timers) timerG() time.Duration { return t.T1 }
func (t Timers) timerH() time.Duration { return 64 * t.T1 }
func (t Timers) timerI() time.Duration { return t.T4 }
func (t Timers) timerJ() time.Duration { return 64 * t.T1 }
func (t Timers) timerK() time.Duration { return t.T4 }
func (t Timers) timer1xx() time.Duration { return 200 * time.Millisecond }
func (t Timers) timerL() time.Duration { return 64 * t.T1 }
func (t Timers) timerM() time.Duration { return 64 * t.T1 }
func (t Timers) t2() time.Duration { return t.T2 }
