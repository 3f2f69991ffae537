package app

import (
	"sync"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
)

const DefaultNotifyTTL = 5 * time.Second

// Notification is a transient message shown to the operator.
type Notification struct {
	Kind    Kind
	Message string
	seq     uint64
}

// Notifier keeps at most one notification per kind. A new one replaces the
// pending one of the same kind and each expires after ttl.
type Notifier struct {
	ttl      time.Duration
	onChange func(Notification)

	mu     sync.Mutex
	seq    uint64
	active map[Kind]Notification
	timers map[Kind]*time.Timer
}

// NewNotifier creates a notifier. onChange, if set, is called for every new
// notification.
func NewNotifier(ttl time.Duration, onChange func(Notification)) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNotifyTTL
	}
	return &Notifier{
		ttl:      ttl,
		onChange: onChange,
		active:   make(map[Kind]Notification),
		timers:   make(map[Kind]*time.Timer),
	}
}

func (n *Notifier) Success(message string) { n.show(KindSuccess, message) }

func (n *Notifier) Failure(message string) { n.show(KindFailure, message) }

func (n *Notifier) show(kind Kind, message string) {
	n.mu.Lock()
	n.seq++
	note := Notification{Kind: kind, Message: message, seq: n.seq}
	if timer, ok := n.timers[kind]; ok {
		timer.Stop()
	}
	n.active[kind] = note
	n.timers[kind] = time.AfterFunc(n.ttl, func() { n.dismiss(kind, note.seq) })
	onChange := n.onChange
	n.mu.Unlock()

	if onChange != nil {
		onChange(note)
	}
}

func (n *Notifier) dismiss(kind Kind, seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if current, ok := n.active[kind]; ok && current.seq == seq {
		delete(n.active, kind)
		delete(n.timers, kind)
	}
}

// Active returns the visible notifications, success first.
func (n *Notifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, 0, 2)
	for _, kind := range []Kind{KindSuccess, KindFailure} {
		if note, ok := n.active[kind]; ok {
			out = append(out, note)
		}
	}
	return out
}

// Stop cancels pending dismissals.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for kind, timer := range n.timers {
		timer.Stop()
		delete(n.timers, kind)
	}
}
