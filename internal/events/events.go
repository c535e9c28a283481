// Package events carries change notifications from services to live
// subscribers.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"foodshare_backend/internal/ids"
)

type Topic string

const (
	TopicDonations     Topic = "donations"
	TopicNotifications Topic = "notifications"
	TopicProfile       Topic = "profile"
)

func (t Topic) IsValid() bool {
	switch t {
	case TopicDonations, TopicNotifications, TopicProfile:
		return true
	default:
		return false
	}
}

// Private reports whether events on t are delivered only to their owner.
func (t Topic) Private() bool {
	return t == TopicNotifications || t == TopicProfile
}

// Event types.
const (
	DonationCreated     = "donation.created"
	DonationUpdated     = "donation.updated"
	DonationDeleted     = "donation.deleted"
	DonationClaimed     = "donation.claimed"
	DonationCollected   = "donation.collected"
	NotificationCreated = "notification.created"
	NotificationRead    = "notification.read"
	ProfileUpdated      = "profile.updated"
	ProfileDeleted      = "profile.deleted"
)

type Event struct {
	ID      string          `json:"id"`
	Topic   Topic           `json:"topic"`
	Type    string          `json:"type"`
	UserID  string          `json:"user_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	At      time.Time       `json:"at"`
}

// New builds an event; userID scopes private topics to their owner.
func New(topic Topic, typ, userID string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:      ids.New(),
		Topic:   topic,
		Type:    typ,
		UserID:  userID,
		Payload: raw,
		At:      time.Now().UTC(),
	}, nil
}

type Handler func(Event)

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Bus interface {
	Publisher
	// Subscribe registers h and returns a function that removes it.
	Subscribe(h Handler) (unsubscribe func())
	Close() error
}

// LocalBus fans events out to in-process handlers synchronously. Handlers
// must not block.
type LocalBus struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]Handler
}

func NewLocalBus() *LocalBus {
	return &LocalBus{handlers: make(map[int]Handler)}
}

func (b *LocalBus) Publish(_ context.Context, e Event) error {
	b.dispatch(e)
	return nil
}

func (b *LocalBus) dispatch(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, h := range b.handlers {
		h(e)
	}
}

func (b *LocalBus) Subscribe(h Handler) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.handlers[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}
}

func (b *LocalBus) Close() error {
	b.mu.Lock()
	b.handlers = make(map[int]Handler)
	b.mu.Unlock()
	return nil
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
