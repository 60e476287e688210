package store

import (
	"math/rand"
	"sync"
	"time"
)

const subscriberBuffer = 64

type expiringValue struct {
	value     string
	expiresAt time.Time
}

// Memory is the in-process Store implementation. All operations are
// individually atomic under one mutex; expired keys are dropped lazily on
// access and by a periodic sweep.
type Memory struct {
	mu     sync.Mutex
	sets   map[string]map[string]struct{}
	keys   map[string]expiringValue
	topics map[string]map[*Subscription]struct{}
	done   chan struct{}
}

func NewMemory() *Memory {
	m := &Memory{
		sets:   make(map[string]map[string]struct{}),
		keys:   make(map[string]expiringValue),
		topics: make(map[string]map[*Subscription]struct{}),
		done:   make(chan struct{}),
	}
	go m.sweep()
	return m
}

// Close stops the expiry sweep.
func (m *Memory) Close() {
	close(m.done)
}

func (m *Memory) sweep() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for key, entry := range m.keys {
				if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
					delete(m.keys, key)
				}
			}
			m.mu.Unlock()
		}
	}
}

func (m *Memory) SAdd(key, member string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.sets[key]
	if !ok {
		set = make(map[string]struct{})
		m.sets[key] = set
	}
	if _, exists := set[member]; exists {
		return false
	}
	set[member] = struct{}{}
	return true
}

func (m *Memory) SRem(key, member string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.sets[key]
	if !ok {
		return false
	}
	if _, exists := set[member]; !exists {
		return false
	}
	delete(set, member)
	if len(set) == 0 {
		delete(m.sets, key)
	}
	return true
}

func (m *Memory) SCard(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sets[key])
}

func (m *Memory) SRandMember(key string, count int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.sets[key]
	members := make([]string, 0, len(set))
	for member := range set {
		members = append(members, member)
	}
	rand.Shuffle(len(members), func(i, j int) {
		members[i], members[j] = members[j], members[i]
	})
	if count < len(members) {
		members = members[:count]
	}
	return members
}

func (m *Memory) SetEx(key, value string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := expiringValue{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.keys[key] = entry
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.keys[key]
	if !ok {
		return "", false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(m.keys, key)
		return "", false
	}
	return entry.value, true
}

func (m *Memory) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
}

func (m *Memory) Exists(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *Memory) Publish(topic string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sub := range m.topics[topic] {
		select {
		case sub.C <- payload:
		default:
			// Slow subscriber, drop. Delivery is at-most-once.
		}
	}
}

func (m *Memory) Subscribe(topic string) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := &Subscription{
		C:     make(chan []byte, subscriberBuffer),
		topic: topic,
		store: m,
	}
	subs, ok := m.topics[topic]
	if !ok {
		subs = make(map[*Subscription]struct{})
		m.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

func (m *Memory) unsubscribe(sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs, ok := m.topics[sub.topic]
	if !ok {
		return
	}
	if _, present := subs[sub]; !present {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(m.topics, sub.topic)
	}
	close(sub.C)
}
