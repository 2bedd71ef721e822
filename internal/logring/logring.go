package logring

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Event that will be inserted into the Logring
type Event struct {
	Ptr     int
	TS      time.Time
	Level   logrus.Level
	Message string
}

// String formats the event the way a script would print it
func (e Event) String() string {
	return fmt.Sprintf("%s %-5s %s", e.TS.Format("2006-01-02 15:04:05"), e.Level.String(), e.Message)
}

// Logring is a circular buffer of log messages.
// It implements logrus.Hook so it can be attached to a logger.
type Logring struct {
	mu       sync.RWMutex
	capacity int
	buff     []Event
	ptr      int // where the next value will be inserted/written
	levels   []logrus.Level
}

// New Logring that keeps the last n messages at or above info
func New(n int) *Logring {
	if n < 1 {
		n = 1
	}
	mr := Logring{
		capacity: n,
		buff:     make([]Event, 0, n),
		levels: []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
			logrus.WarnLevel,
			logrus.InfoLevel,
		},
	}
	return &mr
}

// Levels satisfies logrus.Hook
func (r *Logring) Levels() []logrus.Level {
	return r.levels
}

// Fire satisfies logrus.Hook
func (r *Logring) Fire(e *logrus.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enqueue(e.Time, e.Level, e.Message)
	return nil
}

// Enqueue a message into the Logring
func (r *Logring) Enqueue(level logrus.Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enqueue(time.Now(), level, msg)
}

// enqueue the message
func (r *Logring) enqueue(ts time.Time, level logrus.Level, msg string) {
	e := Event{Ptr: r.ptr, TS: ts, Level: level, Message: msg}
	// if the array isn't full, we are just appending
	if r.ptr < r.capacity {
		r.buff = append(r.buff, e)
	} else {
		r.buff[r.ptr%r.capacity] = e
	}
	r.ptr++
}

// Size of the Logring
func (r *Logring) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.buff)
}

// Values of the Logring in the order they were added
func (r *Logring) Values() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values()
}

func (r *Logring) values() []Event {
	if r.ptr < r.capacity {
		// copy so callers can't sort the buffer
		ee := make([]Event, len(r.buff))
		copy(ee, r.buff)
		return ee
	}
	// return from the ptr forward, then up to ptr
	ee := make([]Event, 0, len(r.buff))
	ee = append(ee, r.buff[r.ptr%r.capacity:]...)
	ee = append(ee, r.buff[:r.ptr%r.capacity]...)
	return ee
}

// Newest returns the events with the newest first
func (r *Logring) Newest() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ee := r.values()
	slices.SortStableFunc(ee, func(a, b Event) int {
		return cmp.Compare(b.Ptr, a.Ptr)
	})
	return ee
}
