// Package notify carries user-facing notifications (toasts) produced by screen
// transitions. Transitions return notifications as values; dispatching them is
// a separate step so the effect can be observed and tested on its own.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelLoading Level = "loading"
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notification struct {
	ID      string    `json:"id"`
	Level   Level     `json:"type"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

func New(level Level, message string) Notification {
	return Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		At:      time.Now(),
	}
}

func Loading(message string) Notification { return New(LevelLoading, message) }
func Info(message string) Notification    { return New(LevelInfo, message) }
func Success(message string) Notification { return New(LevelSuccess, message) }
func Error(message string) Notification   { return New(LevelError, message) }

// Transient reports whether the notification only describes work in progress.
func (n Notification) Transient() bool {
	return n.Level == LevelLoading
}

type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification)
}

type DispatcherFunc func(ctx context.Context, n Notification)

func (f DispatcherFunc) Dispatch(ctx context.Context, n Notification) { f(ctx, n) }

// DispatchAll sends every notification in order. A nil dispatcher drops them.
func DispatchAll(ctx context.Context, d Dispatcher, notes []Notification) {
	if d == nil {
		return
	}
	for _, n := range notes {
		d.Dispatch(ctx, n)
	}
}

type Handler func(ctx context.Context, n Notification)

type subscription struct {
	levels  map[Level]struct{}
	handler Handler
}

// Bus fans a notification out to its subscribers synchronously.
type Bus struct {
	subs   []subscription
	logger *slog.Logger
	mu     sync.RWMutex
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe registers handler for the given levels, or for all levels when none are given.
func (b *Bus) Subscribe(handler Handler, levels ...Level) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var set map[Level]struct{}
	if len(levels) > 0 {
		set = make(map[Level]struct{}, len(levels))
		for _, l := range levels {
			set[l] = struct{}{}
		}
	}
	b.subs = append(b.subs, subscription{levels: set, handler: handler})
}

func (b *Bus) Dispatch(ctx context.Context, n Notification) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	b.logger.DebugContext(ctx, "dispatching notification",
		"notification_id", n.ID,
		"level", n.Level,
		"subscribers", len(subs))

	for _, s := range subs {
		if s.levels != nil {
			if _, ok := s.levels[n.Level]; !ok {
				continue
			}
		}
		s.handler(ctx, n)
	}
}

// Recorder keeps every dispatched notification in order.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Dispatch(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Settled drops transient (loading) notifications; these are what a finished
// request shows to the user.
func (r *Recorder) Settled() []Notification {
	all := r.All()
	out := make([]Notification, 0, len(all))
	for _, n := range all {
		if !n.Transient() {
			out = append(out, n)
		}
	}
	return out
}

func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// LogHandler writes notifications to the logger, errors at warn level.
func LogHandler(logger *slog.Logger) Handler {
	return func(ctx context.Context, n Notification) {
		level := slog.LevelInfo
		if n.Level == LevelError {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "notification",
			"notification_id", n.ID,
			"level", n.Level,
			"message", n.Message)
	}
}

type multi []Dispatcher

func (m multi) Dispatch(ctx context.Context, n Notification) {
	for _, d := range m {
		if d != nil {
			d.Dispatch(ctx, n)
		}
	}
}

// Multi dispatches to every non-nil dispatcher in order.
func Multi(dispatchers ...Dispatcher) Dispatcher {
	return multi(dispatchers)
}
