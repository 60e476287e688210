package game

import "time"

// Scheduler is how the timeout supervisor arms its delayed checks. The
// production implementation is time.AfterFunc; tests substitute a fake and
// fire the captured callbacks by hand.
type Scheduler interface {
	Schedule(d time.Duration, fire func())
}

type timerScheduler struct{}

func (timerScheduler) Schedule(d time.Duration, fire func()) {
	time.AfterFunc(d, fire)
}

func NewScheduler() Scheduler {
	return timerScheduler{}
}

// PeriodicTickerChannelCreator abstracts time.Ticker for the matchmaking
// loop so tests can drive ticks manually.
type PeriodicTickerChannelCreator interface {
	Create(d time.Duration) <-chan time.Time
}

type ticker struct{}

func (ticker) Create(d time.Duration) <-chan time.Time {
	return time.NewTicker(d).C
}

func NewTickerGen() ticker {
	return ticker{}
}

// Each schedule call captures the phase identity the check is tied to; the
// firing is validated against live state in handleTimerFiring.

func (r *Room) scheduleTurnTimer(turnIndex int) {
	r.scheduler.Schedule(r.cfg.TurnTimeout, func() {
		r.deliverTimer(timerFiring{kind: timerTurn, turnIndex: turnIndex})
	})
}

func (r *Room) scheduleVotingTimer(votingRound int) {
	r.scheduler.Schedule(r.cfg.VotingTimeout, func() {
		r.deliverTimer(timerFiring{kind: timerVoting, votingRound: votingRound})
	})
}

func (r *Room) scheduleGameTimer() {
	r.scheduler.Schedule(r.cfg.GameTimeout, func() {
		r.deliverTimer(timerFiring{kind: timerGame})
	})
}

func (r *Room) scheduleExpiryTimer() {
	r.scheduler.Schedule(r.cfg.RoomTTL, func() {
		r.deliverTimer(timerFiring{kind: timerExpiry})
	})
}
