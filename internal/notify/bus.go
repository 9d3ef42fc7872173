package notify

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
)

// DefaultTTL is how long a notification stays active before auto-dismissing.
const DefaultTTL = 5 * time.Second

// Notification is one transient toast: enqueued on publish, auto-expired
// after the bus TTL, or dismissed manually by id.
type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type Handler func(Notification)

// Bus is the single process-wide notification channel. Surfaces subscribe
// once instead of each screen keeping its own show/hide state.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	active   map[string]Notification
	timers   map[string]*time.Timer
	ttl      time.Duration
	logger   *slog.Logger
}

func NewBus(ttl time.Duration, logger *slog.Logger) *Bus {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		active:  make(map[string]Notification),
		timers:  make(map[string]*time.Timer),
		ttl:     ttl,
		logger:  logger,
	}
}

// Subscribe registers a handler invoked for every published notification.
func (b *Bus) Subscribe(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish enqueues a notification, fans it out to subscribers and schedules
// its expiry.
func (b *Bus) Publish(kind Type, message string) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Type:      kind,
		Message:   message,
		CreatedAt: time.Now(),
	}

	b.mu.Lock()
	b.active[n.ID] = n
	b.timers[n.ID] = time.AfterFunc(b.ttl, func() { b.Dismiss(n.ID) })
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.Unlock()

	b.logger.Debug("notification published", "id", n.ID, "type", kind, "message", message)

	for _, handler := range handlers {
		go handler(n)
	}

	return n
}

// Dismiss removes a notification before (or at) its expiry. Unknown ids are
// a no-op.
func (b *Bus) Dismiss(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if timer, ok := b.timers[id]; ok {
		timer.Stop()
		delete(b.timers, id)
	}
	delete(b.active, id)
}

// Active returns the not-yet-expired notifications, oldest first.
func (b *Bus) Active() []Notification {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Notification, 0, len(b.active))
	for _, n := range b.active {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
