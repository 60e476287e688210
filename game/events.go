package game

import "encoding/json"

// EventKind tags every payload published on a room or user topic.
type EventKind string

const (
	EVENT_ASSIGNED_ROOM       EventKind = "assigned_room"
	EVENT_ROLE                EventKind = "role"
	EVENT_TURN                EventKind = "turn"
	EVENT_NEW_SUBMISSION      EventKind = "new_submission"
	EVENT_START_VOTING        EventKind = "start_voting"
	EVENT_VOTE_CAST           EventKind = "vote_cast"
	EVENT_VOTING_TIE          EventKind = "voting_tie"
	EVENT_PLAYER_ELIMINATED   EventKind = "player_eliminated"
	EVENT_PLAYERS_WIN         EventKind = "players_win"
	EVENT_SPY_WIN             EventKind = "spy_win"
	EVENT_SPY_LOSE            EventKind = "spy_lose"
	EVENT_SPY_WIN_TWO_PLAYERS EventKind = "spy_win_two_players"
	EVENT_SPY_WIN_TIMEOUT     EventKind = "spy_win_timeout"
	EVENT_PLAYER_LEFT         EventKind = "player_left"
)

// Event is a closed union: one struct per kind. Producers construct the
// concrete struct, consumers switch on the concrete type (or on the "type"
// field after marshalling).
type Event interface {
	Kind() EventKind
}

// AssignedRoomEvent goes to a user's personal topic when matchmaking places
// them in a room. Exactly one of Locations (spy) or Location (player) is set:
// the spy never learns the secret, non-spies never see the catalog.
type AssignedRoomEvent struct {
	RoomId    string   `json:"room_id"`
	Role      string   `json:"role"`
	Locations []string `json:"locations,omitempty"`
	Location  string   `json:"location,omitempty"`
}

func (AssignedRoomEvent) Kind() EventKind { return EVENT_ASSIGNED_ROOM }

// RoleEvent is sent privately on first connect, same exclusivity rule as
// AssignedRoomEvent.
type RoleEvent struct {
	Role      string   `json:"role"`
	Locations []string `json:"locations,omitempty"`
	Location  string   `json:"location,omitempty"`
}

func (RoleEvent) Kind() EventKind { return EVENT_ROLE }

type TurnEvent struct {
	CurrentPlayer    string `json:"current_player"`
	PreviousQuestion string `json:"previous_question,omitempty"`
	IsLast           bool   `json:"is_last"`
}

func (TurnEvent) Kind() EventKind { return EVENT_TURN }

type NewSubmissionEvent struct {
	Player   string `json:"player"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (NewSubmissionEvent) Kind() EventKind { return EVENT_NEW_SUBMISSION }

type StartVotingEvent struct{}

func (StartVotingEvent) Kind() EventKind { return EVENT_START_VOTING }

type VoteCastEvent struct {
	Player string `json:"player"`
}

func (VoteCastEvent) Kind() EventKind { return EVENT_VOTE_CAST }

type VotingTieEvent struct{}

func (VotingTieEvent) Kind() EventKind { return EVENT_VOTING_TIE }

type PlayerEliminatedEvent struct {
	Player string `json:"player"`
}

func (PlayerEliminatedEvent) Kind() EventKind { return EVENT_PLAYER_ELIMINATED }

type PlayersWinEvent struct {
	Spy string `json:"spy"`
}

func (PlayersWinEvent) Kind() EventKind { return EVENT_PLAYERS_WIN }

type SpyWinEvent struct {
	Spy      string `json:"spy"`
	Location string `json:"location"`
}

func (SpyWinEvent) Kind() EventKind { return EVENT_SPY_WIN }

type SpyLoseEvent struct {
	Spy      string `json:"spy"`
	Guess    string `json:"guess"`
	Location string `json:"location"`
}

func (SpyLoseEvent) Kind() EventKind { return EVENT_SPY_LOSE }

type SpyWinTwoPlayersEvent struct {
	Spy string `json:"spy"`
}

func (SpyWinTwoPlayersEvent) Kind() EventKind { return EVENT_SPY_WIN_TWO_PLAYERS }

type SpyWinTimeoutEvent struct {
	Spy string `json:"spy"`
}

func (SpyWinTimeoutEvent) Kind() EventKind { return EVENT_SPY_WIN_TIMEOUT }

type PlayerLeftEvent struct {
	Player string `json:"player"`
}

func (PlayerLeftEvent) Kind() EventKind { return EVENT_PLAYER_LEFT }

// MarshalEvent flattens the event struct and splices in the "type" tag.
func MarshalEvent(e Event) ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["type"] = e.Kind()
	return json.Marshal(fields)
}
