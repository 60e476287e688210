package game

import (
	"time"

	"github.com/Gleb-Barkovskiy/game-server/config"
	"github.com/Gleb-Barkovskiy/game-server/store"
)

type RoomStatus int

const (
	STATUS_ACTIVE RoomStatus = iota
	STATUS_VOTING
	STATUS_ENDED
)

func (s RoomStatus) String() string {
	switch s {
	case STATUS_ACTIVE:
		return "active"
	case STATUS_VOTING:
		return "voting"
	case STATUS_ENDED:
		return "ended"
	}
	return "unknown"
}

// ClientPacket is the inbound wire format on a room channel. Exactly one of
// the three actions is meaningful per packet.
type ClientPacket struct {
	SubmitTurn bool   `json:"submit_turn,omitempty"`
	Question   string `json:"question,omitempty"`
	Answer     string `json:"answer,omitempty"`
	Guess      string `json:"guess,omitempty"`
	Vote       string `json:"vote,omitempty"`
}

type ClientPacketEnvelope struct {
	packet ClientPacket
	from   string
}

// Submission is one questionLog entry.
type Submission struct {
	Player   string `json:"player"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// RoomSnapshot is the read-only view served to the HTTP display endpoints.
type RoomSnapshot struct {
	Id        string
	Status    RoomStatus
	Users     []string
	CreatedAt time.Time
}

type connectRequest struct {
	username string
	reply    chan connectReply
}

type connectReply struct {
	welcome []Event
	err     error
}

type leaveRequest struct {
	username string
	reply    chan error
}

type timerKind int

const (
	timerTurn timerKind = iota
	timerVoting
	timerGame
	timerExpiry
)

// timerFiring carries the phase identity captured when the timer was
// scheduled. The room actor compares it against current state before acting;
// a mismatch means the phase already moved on and the firing is a no-op.
type timerFiring struct {
	kind        timerKind
	turnIndex   int
	votingRound int
}

// Room owns one match. All fields below the channels are touched only by the
// actor goroutine running Run; everything else talks to it through the
// channels or the thread-safe methods in room.go.
type Room struct {
	id        string
	cfg       config.Config
	store     store.Store
	scheduler Scheduler
	onClose   func(roomId string)

	users          []string
	spy            string
	secretLocation string
	status         RoomStatus
	currentTurn    int
	questionLog    []Submission
	votes          map[string]string
	connected      map[string]struct{}
	gameStarted    bool
	votingRound    int
	createdAt      time.Time

	inbox              chan ClientPacketEnvelope
	connectRequests    chan connectRequest
	disconnectRequests chan string
	leaveRequests      chan leaveRequest
	snapshotRequests   chan chan RoomSnapshot
	timerFirings       chan timerFiring
	closed             chan struct{}
	destroyed          bool
}
