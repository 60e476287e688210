package game

import (
	"encoding/json"
	"time"

	"github.com/Gleb-Barkovskiy/game-server/logger"
	"golang.org/x/time/rate"
)

const pingInterval = 30 * time.Second

// Player wraps one live connection to a room: a rate-limited read pump
// feeding the room actor and a write pump draining the outbound queue.
type Player struct {
	username    string
	room        *Room
	socket      NetworkSession
	rateLimiter *rate.Limiter
	outbox      chan []byte
	done        chan struct{}
}

func NewPlayer(username string, room *Room, socket NetworkSession) *Player {
	return &Player{
		username:    username,
		room:        room,
		socket:      socket,
		rateLimiter: rate.NewLimiter(1, 5),
		outbox:      make(chan []byte, 256),
		done:        make(chan struct{}),
	}
}

// Send queues data for the write pump. Sends race disconnection, so a closed
// player just drops the payload (delivery is best-effort).
func (p *Player) Send(data []byte) {
	select {
	case p.outbox <- data:
	case <-p.done:
	}
}

// ReadPump blocks until the socket dies, forwarding well-formed packets to
// the room actor. It owns the player's teardown.
func (p *Player) ReadPump() {
	defer func() {
		close(p.done)
		p.room.Disconnect(p.username)
	}()

	for {
		data, err := p.socket.Read()
		if err != nil {
			return
		}
		if !p.rateLimiter.Allow() {
			logger.Warningf("[Player %s] rate limited, dropping packet", p.username)
			continue
		}

		var packet ClientPacket
		if err := json.Unmarshal(data, &packet); err != nil {
			logger.Debugf("[Player %s] dropping malformed packet: %v", p.username, err)
			continue
		}

		p.room.Deliver(ClientPacketEnvelope{packet: packet, from: p.username})
	}
}

func (p *Player) WritePump() {
	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case data := <-p.outbox:
			if err := p.socket.Write(data); err != nil {
				return
			}
		case <-pingTicker.C:
			if err := p.socket.Ping(); err != nil {
				return
			}
		case <-p.done:
			return
		}
	}
}
