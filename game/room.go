package game

import (
	"time"

	"github.com/Gleb-Barkovskiy/game-server/config"
	"github.com/Gleb-Barkovskiy/game-server/logger"
	"github.com/Gleb-Barkovskiy/game-server/store"
)

func NewRoom(id string, users []string, spy, secretLocation string, cfg config.Config, st store.Store, scheduler Scheduler, onClose func(roomId string)) *Room {
	return &Room{
		id:             id,
		cfg:            cfg,
		store:          st,
		scheduler:      scheduler,
		onClose:        onClose,
		users:          users,
		spy:            spy,
		secretLocation: secretLocation,
		status:         STATUS_ACTIVE,
		currentTurn:    0,
		questionLog:    make([]Submission, 0),
		votes:          make(map[string]string),
		connected:      make(map[string]struct{}),
		createdAt:      time.Now(),

		inbox:              make(chan ClientPacketEnvelope, 256),
		connectRequests:    make(chan connectRequest),
		disconnectRequests: make(chan string, 16),
		leaveRequests:      make(chan leaveRequest),
		snapshotRequests:   make(chan chan RoomSnapshot),
		timerFirings:       make(chan timerFiring, 16),
		closed:             make(chan struct{}),
	}
}

func (r *Room) Id() string { return r.id }

// Run is the room actor. It is the only goroutine that touches room state;
// it exits when the room is destroyed (TTL expiry or last player leaving).
func (r *Room) Run() {
	r.scheduleGameTimer()
	r.scheduleExpiryTimer()

	defer func() {
		if r.onClose != nil {
			r.onClose(r.id)
		}
	}()
	defer close(r.closed)

	for {
		select {
		case env := <-r.inbox:
			r.handleClientPacket(env)
		case req := <-r.connectRequests:
			r.handleConnect(req)
		case username := <-r.disconnectRequests:
			r.handleDisconnect(username)
		case req := <-r.leaveRequests:
			r.handleLeave(req)
		case reply := <-r.snapshotRequests:
			reply <- r.snapshot()
		case f := <-r.timerFirings:
			r.handleTimerFiring(f)
		}
		if r.destroyed {
			return
		}
	}
}

// Deliver hands an inbound client packet to the actor. Packets for a closed
// room are dropped, matching the "rejected input" policy.
func (r *Room) Deliver(env ClientPacketEnvelope) {
	select {
	case r.inbox <- env:
	case <-r.closed:
	}
}

// Connect registers a live attachment and returns the private welcome
// events: the user's role, and the current turn snapshot if the room is
// already active.
func (r *Room) Connect(username string) ([]Event, error) {
	req := connectRequest{username: username, reply: make(chan connectReply, 1)}
	select {
	case r.connectRequests <- req:
	case <-r.closed:
		return nil, ErrRoomClosed
	}
	select {
	case reply := <-req.reply:
		return reply.welcome, reply.err
	case <-r.closed:
		return nil, ErrRoomClosed
	}
}

func (r *Room) Disconnect(username string) {
	select {
	case r.disconnectRequests <- username:
	case <-r.closed:
	}
}

// Leave removes the user from the room's turn order entirely.
func (r *Room) Leave(username string) error {
	req := leaveRequest{username: username, reply: make(chan error, 1)}
	select {
	case r.leaveRequests <- req:
	case <-r.closed:
		return ErrRoomClosed
	}
	select {
	case err := <-req.reply:
		return err
	case <-r.closed:
		return ErrRoomClosed
	}
}

func (r *Room) Snapshot() (RoomSnapshot, bool) {
	reply := make(chan RoomSnapshot, 1)
	select {
	case r.snapshotRequests <- reply:
	case <-r.closed:
		return RoomSnapshot{}, false
	}
	select {
	case snap := <-reply:
		return snap, true
	case <-r.closed:
		return RoomSnapshot{}, false
	}
}

func (r *Room) snapshot() RoomSnapshot {
	users := make([]string, len(r.users))
	copy(users, r.users)
	return RoomSnapshot{Id: r.id, Status: r.status, Users: users, CreatedAt: r.createdAt}
}

// deliverTimer is called from timer goroutines. Once the actor has exited,
// firings are dropped instead of blocking the scheduler.
func (r *Room) deliverTimer(f timerFiring) {
	select {
	case r.timerFirings <- f:
	case <-r.closed:
	}
}

func (r *Room) publish(e Event) {
	data, err := MarshalEvent(e)
	if err != nil {
		logger.Criticalf("[Room %s] failed to marshal %s event: %v", r.id, e.Kind(), err)
		return
	}
	logger.Debugf("[Room %s] publishing %s", r.id, e.Kind())
	r.store.Publish(roomTopic(r.id), data)
}
