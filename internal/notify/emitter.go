package notify

import (
	"sort"
	"sync"
	"time"
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

const DefaultDuration = 4 * time.Second

// Policy decides what happens to visible notifications when a new one arrives.
type Policy int

const (
	// PolicyReplace dismisses everything on screen before showing the new message.
	PolicyReplace Policy = iota
	// PolicyStack lets notifications coexist until each one times out.
	PolicyStack
)

type Notification struct {
	ID       uint64
	Message  string
	Severity Severity
	Duration time.Duration
	Shown    time.Time
}

// Sink is the rendering surface notifications are drawn on.
type Sink interface {
	Show(n Notification)
	Dismiss(n Notification)
}

type Emitter struct {
	mu     sync.Mutex
	sink   Sink
	policy Policy
	nextID uint64
	active map[uint64]*entry
}

type entry struct {
	n     Notification
	timer *time.Timer
}

func NewEmitter(sink Sink, policy Policy) *Emitter {
	return &Emitter{
		sink:   sink,
		policy: policy,
		active: map[uint64]*entry{},
	}
}

// Notify shows message and schedules its dismissal. A zero duration means DefaultDuration.
func (e *Emitter) Notify(message string, severity Severity, duration time.Duration) Notification {
	if duration <= 0 {
		duration = DefaultDuration
	}

	e.mu.Lock()
	var replaced []Notification
	if e.policy == PolicyReplace {
		for id, en := range e.active {
			en.timer.Stop()
			replaced = append(replaced, en.n)
			delete(e.active, id)
		}
	}

	e.nextID++
	n := Notification{
		ID:       e.nextID,
		Message:  message,
		Severity: severity,
		Duration: duration,
		Shown:    time.Now(),
	}
	en := &entry{n: n}
	e.active[n.ID] = en
	en.timer = time.AfterFunc(duration, func() { e.expire(n.ID) })
	e.mu.Unlock()

	if e.sink != nil {
		sort.Slice(replaced, func(i, j int) bool { return replaced[i].ID < replaced[j].ID })
		for _, old := range replaced {
			e.sink.Dismiss(old)
		}
		e.sink.Show(n)
	}
	return n
}

func (e *Emitter) expire(id uint64) {
	e.mu.Lock()
	en, ok := e.active[id]
	if ok {
		delete(e.active, id)
	}
	e.mu.Unlock()

	if ok && e.sink != nil {
		e.sink.Dismiss(en.n)
	}
}

// visible returns the notifications currently visible, oldest first.
func (e *Emitter) visible() []Notification {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Notification, 0, len(e.active))
	for _, en := range e.active {
		out = append(out, en.n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Close stops pending timers without dismissing anything.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, en := range e.active {
		en.timer.Stop()
		delete(e.active, id)
	}
}
