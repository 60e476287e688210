package store

import "time"

// Store is the shared state surface the game coordinator runs against:
// sets with random sampling for the matchmaking pool and per-room connected
// sets, TTL'd keys for assignment pointers, and pub/sub topics for event
// fan-out. Delivery on topics is best-effort and at-most-once.
type Store interface {
	// SAdd reports whether the member was newly added.
	SAdd(key, member string) bool
	// SRem reports whether the member was present. A member can be removed
	// exactly once, which makes SRem usable as a claim operation.
	SRem(key, member string) bool
	SCard(key string) int
	// SRandMember returns up to count distinct members in random order.
	SRandMember(key string, count int) []string

	SetEx(key, value string, ttl time.Duration)
	Get(key string) (string, bool)
	Del(key string)
	Exists(key string) bool

	Publish(topic string, payload []byte)
	Subscribe(topic string) *Subscription
}

// Subscription is a handle on one topic subscriber. Messages the subscriber
// is too slow to drain are dropped.
type Subscription struct {
	C chan []byte

	topic string
	store *Memory
}

// Close detaches the subscription from its topic and closes C.
func (s *Subscription) Close() {
	s.store.unsubscribe(s)
}
