package mutation

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// NoticeKind classifies a user-facing notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// NoticeTTL is how long a notice stays on screen.
const NoticeTTL = 5 * time.Second

// Notice is a short message about the outcome of a command.
type Notice struct {
	Kind    NoticeKind
	Message string
	At      time.Time
}

// Expired reports whether the notice has outlived NoticeTTL at now.
func (n Notice) Expired(now time.Time) bool {
	return now.Sub(n.At) >= NoticeTTL
}

// Notifier receives notices from the dispatcher.
type Notifier interface {
	Notify(Notice)
}

// Notices is a buffered Notifier drained by the UI. When the buffer is
// full the oldest notices are the ones kept.
type Notices struct {
	ch chan Notice
}

// NewNotices creates a notifier holding up to size undelivered notices.
func NewNotices(size int) *Notices {
	if size <= 0 {
		size = 32
	}
	return &Notices{ch: make(chan Notice, size)}
}

// Notify queues n without blocking.
func (q *Notices) Notify(n Notice) {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	select {
	case q.ch <- n:
	default:
	}
}

// C returns the delivery channel.
func (q *Notices) C() <-chan Notice {
	return q.ch
}

// Drain returns every queued notice without waiting.
func (q *Notices) Drain() []Notice {
	var out []Notice
	for {
		select {
		case n := <-q.ch:
			out = append(out, n)
		default:
			return out
		}
	}
}

// NoticeMsg is a tea.Msg carrying a notice to the UI.
type NoticeMsg Notice

// WaitForNotice returns a tea.Cmd that waits for the next notice.
func (q *Notices) WaitForNotice() tea.Cmd {
	return func() tea.Msg {
		n, ok := <-q.ch
		if !ok {
			return nil
		}
		return NoticeMsg(n)
	}
}
