package config

import "time"

// Config carries the game settings that the matchmaking pool and room
// actors need. It is constructed once in main and passed down explicitly.
type Config struct {
	// Locations is the catalog the secret location is drawn from. The spy
	// receives the whole catalog, everyone else only the secret.
	Locations []string

	// Matchmaking.
	MatchmakingInterval time.Duration
	MinMatchSize        int
	MaxMatchSize        int

	// Per-phase timeouts and the room's total lifetime. RoomTTL doubles as
	// the expiry of each player's assignment pointer.
	TurnTimeout   time.Duration
	VotingTimeout time.Duration
	GameTimeout   time.Duration
	RoomTTL       time.Duration
}

func Default() Config {
	return Config{
		Locations: []string{
			"Paris", "Tokyo Airport", "London Museum",
			"New York Subway", "Rome Colosseum", "Sydney Opera House",
		},
		MatchmakingInterval: 5 * time.Second,
		MinMatchSize:        3,
		MaxMatchSize:        8,
		TurnTimeout:         150 * time.Second,
		VotingTimeout:       60 * time.Second,
		GameTimeout:         960 * time.Second,
		RoomTTL:             960 * time.Second,
	}
}
