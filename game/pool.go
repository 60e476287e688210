package game

import (
	"math/rand"

	"github.com/Gleb-Barkovskiy/game-server/config"
	"github.com/Gleb-Barkovskiy/game-server/logger"
	"github.com/Gleb-Barkovskiy/game-server/store"
)

type EnqueueResult int

const (
	ENQUEUE_ADDED EnqueueResult = iota
	ENQUEUE_ALREADY_QUEUED
	ENQUEUE_ALREADY_ASSIGNED
)

// RoomStarter is implemented by the Service; the pool only needs to hand
// over a cast and get a room id back.
type RoomStarter interface {
	StartRoom(users []string, spy, secretLocation string) string
}

// Pool tracks waiting users and periodically forms rooms out of them. The
// waiting set and assignment pointers live in the shared store; claim-once
// semantics of SRem serialize concurrent ticks.
type Pool struct {
	store  store.Store
	cfg    config.Config
	rooms  RoomStarter
	ticker PeriodicTickerChannelCreator
}

func NewPool(st store.Store, cfg config.Config, rooms RoomStarter, ticker PeriodicTickerChannelCreator) *Pool {
	return &Pool{store: st, cfg: cfg, rooms: rooms, ticker: ticker}
}

// Enqueue fails closed: a user already assigned to a room or already waiting
// is not added again.
func (p *Pool) Enqueue(username string) EnqueueResult {
	if p.store.Exists(assignmentKey(username)) {
		return ENQUEUE_ALREADY_ASSIGNED
	}
	if !p.store.SAdd(waitingPoolKey, username) {
		return ENQUEUE_ALREADY_QUEUED
	}
	logger.Infof("[Pool] %s added to waiting pool", username)
	return ENQUEUE_ADDED
}

// PendingRoom is a pure lookup of the user's current assignment.
func (p *Pool) PendingRoom(username string) (string, bool) {
	return p.store.Get(assignmentKey(username))
}

// Run drives Tick on the matchmaking interval until the channel is closed.
func (p *Pool) Run(started chan struct{}) {
	ticks := p.ticker.Create(p.cfg.MatchmakingInterval)
	close(started)
	for range ticks {
		p.Tick()
	}
}

// Tick forms at most one room. Sampling fewer than the minimum is not an
// error; claimed users are returned to the pool and the next tick retries.
func (p *Pool) Tick() {
	if p.store.SCard(waitingPoolKey) < p.cfg.MinMatchSize {
		return
	}

	candidates := p.store.SRandMember(waitingPoolKey, p.cfg.MaxMatchSize)

	// SRem only succeeds for the tick that gets there first, so overlapping
	// samples from concurrent ticks cannot both claim a user.
	claimed := make([]string, 0, len(candidates))
	for _, username := range candidates {
		if p.store.SRem(waitingPoolKey, username) {
			claimed = append(claimed, username)
		}
	}

	if len(claimed) < p.cfg.MinMatchSize {
		for _, username := range claimed {
			p.store.SAdd(waitingPoolKey, username)
		}
		return
	}

	spy := claimed[rand.Intn(len(claimed))]
	secretLocation := p.cfg.Locations[rand.Intn(len(p.cfg.Locations))]

	roomId := p.rooms.StartRoom(claimed, spy, secretLocation)
	logger.Infof("[Pool] room %s formed with %d users, spy %s", roomId, len(claimed), spy)

	for _, username := range claimed {
		p.store.SetEx(assignmentKey(username), roomId, p.cfg.RoomTTL)
		p.notifyAssigned(username, roomId, spy, secretLocation)
	}
}

// notifyAssigned publishes the private "you've been matched" notification.
// The spy gets the catalog and never the secret; everyone else gets only the
// secret.
func (p *Pool) notifyAssigned(username, roomId, spy, secretLocation string) {
	event := AssignedRoomEvent{RoomId: roomId, Role: "player", Location: secretLocation}
	if username == spy {
		event = AssignedRoomEvent{RoomId: roomId, Role: "spy", Locations: p.cfg.Locations}
	}
	data, err := MarshalEvent(event)
	if err != nil {
		logger.Criticalf("[Pool] failed to marshal assignment for %s: %v", username, err)
		return
	}
	p.store.Publish(userTopic(username), data)
}
