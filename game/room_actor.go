package game

import (
	"slices"
	"strings"

	"github.com/Gleb-Barkovskiy/game-server/logger"
)

// Everything in this file runs on the room actor goroutine.

func (r *Room) handleClientPacket(env ClientPacketEnvelope) {
	if r.status == STATUS_ENDED {
		logger.Debugf("[Room %s] dropping packet from %s: game ended", r.id, env.from)
		return
	}
	switch {
	case env.packet.SubmitTurn:
		r.handleSubmission(env.from, env.packet.Question, env.packet.Answer)
	case env.packet.Guess != "":
		r.handleGuess(env.from, env.packet.Guess)
	case env.packet.Vote != "":
		r.handleVote(env.from, env.packet.Vote)
	}
}

func (r *Room) handleSubmission(from, question, answer string) {
	if r.status != STATUS_ACTIVE {
		logger.Debugf("[Room %s] dropping submission from %s: status is %s", r.id, from, r.status)
		return
	}
	if r.currentTurn >= len(r.users) || r.users[r.currentTurn] != from {
		logger.Debugf("[Room %s] dropping out-of-turn submission from %s (turn %d)", r.id, from, r.currentTurn)
		return
	}

	r.questionLog = append(r.questionLog, Submission{Player: from, Question: question, Answer: answer})
	logger.Infof("[Room %s] submission from %s recorded (log size %d)", r.id, from, len(r.questionLog))
	r.publish(NewSubmissionEvent{Player: from, Question: question, Answer: answer})

	r.currentTurn++
	r.startTurn(r.currentTurn)
}

// startTurn emits the turn event for turnIndex, or enters voting once every
// player has had their turn.
func (r *Room) startTurn(turnIndex int) {
	if r.status != STATUS_ACTIVE {
		return
	}
	if turnIndex >= len(r.users) {
		r.enterVoting(StartVotingEvent{})
		return
	}

	previousQuestion := ""
	if n := len(r.questionLog); n > 0 {
		previousQuestion = r.questionLog[n-1].Question
	}
	r.publish(TurnEvent{
		CurrentPlayer:    r.users[turnIndex],
		PreviousQuestion: previousQuestion,
		IsLast:           turnIndex == len(r.users)-1,
	})
	r.scheduleTurnTimer(turnIndex)
}

// enterVoting (re)starts a voting phase. The announcement differs between a
// fresh phase (start_voting) and a tie restart (voting_tie); everything else
// is identical: votes cleared, round bumped, timer rescheduled.
func (r *Room) enterVoting(announcement Event) {
	r.status = STATUS_VOTING
	r.votes = make(map[string]string)
	r.votingRound++
	r.publish(announcement)
	r.scheduleVotingTimer(r.votingRound)
}

func (r *Room) handleGuess(from, guess string) {
	if from != r.spy {
		logger.Debugf("[Room %s] dropping guess from non-spy %s", r.id, from)
		return
	}
	// A wrong guess is a losing move, not a retry.
	if strings.EqualFold(guess, r.secretLocation) {
		logger.Infof("[Room %s] spy %s guessed the location", r.id, r.spy)
		r.publish(SpyWinEvent{Spy: r.spy, Location: r.secretLocation})
	} else {
		logger.Infof("[Room %s] spy %s guessed %q, location was %q", r.id, r.spy, guess, r.secretLocation)
		r.publish(SpyLoseEvent{Spy: r.spy, Guess: guess, Location: r.secretLocation})
	}
	r.status = STATUS_ENDED
}

func (r *Room) handleVote(from, target string) {
	if r.status != STATUS_VOTING {
		logger.Debugf("[Room %s] dropping vote from %s: status is %s", r.id, from, r.status)
		return
	}
	if !slices.Contains(r.users, from) {
		logger.Debugf("[Room %s] dropping vote from non-member %s", r.id, from)
		return
	}

	r.votes[from] = target
	logger.Infof("[Room %s] vote recorded: %s -> %s (%d/%d)", r.id, from, target, len(r.votes), len(r.users))
	r.publish(VoteCastEvent{Player: from})

	if len(r.votes) == len(r.users) {
		r.tally()
	}
}

// tally resolves the voting phase by plurality. Ties reset the phase; a
// unique winner is either the spy (players win) or an elimination.
func (r *Room) tally() {
	voteCounts := make(map[string]int, len(r.users))
	for _, user := range r.users {
		voteCounts[user] = 0
	}
	for _, target := range r.votes {
		if _, ok := voteCounts[target]; ok {
			voteCounts[target]++
		}
	}

	maxVotes := 0
	for _, count := range voteCounts {
		if count > maxVotes {
			maxVotes = count
		}
	}
	topVoted := make([]string, 0, 1)
	for _, user := range r.users {
		if voteCounts[user] == maxVotes {
			topVoted = append(topVoted, user)
		}
	}

	if len(topVoted) > 1 {
		logger.Infof("[Room %s] voting tie between %v with %d votes each", r.id, topVoted, maxVotes)
		r.enterVoting(VotingTieEvent{})
		return
	}

	votedPlayer := topVoted[0]
	if votedPlayer == r.spy {
		logger.Infof("[Room %s] spy %s was voted out", r.id, r.spy)
		r.publish(PlayersWinEvent{Spy: r.spy})
		r.status = STATUS_ENDED
		return
	}

	r.eliminate(votedPlayer)
}

// eliminate removes a non-spy and either ends the game (too few players) or
// resets for a fresh round of questions.
func (r *Room) eliminate(votedPlayer string) {
	r.removeUser(votedPlayer)
	r.currentTurn = 0
	r.questionLog = make([]Submission, 0)
	r.votes = make(map[string]string)
	r.status = STATUS_ACTIVE
	logger.Infof("[Room %s] %s eliminated, %d players remain", r.id, votedPlayer, len(r.users))
	r.publish(PlayerEliminatedEvent{Player: votedPlayer})

	switch {
	case len(r.users) == 2:
		// A two-player interrogation is unplayable; scored as a spy win.
		r.publish(SpyWinTwoPlayersEvent{Spy: r.spy})
		r.status = STATUS_ENDED
	case len(r.users) > 2:
		r.startTurn(0)
	default:
		// Unreachable under correct tallying, handled anyway.
		r.publish(SpyWinEvent{Spy: r.spy, Location: r.secretLocation})
		r.status = STATUS_ENDED
	}
}

func (r *Room) removeUser(username string) {
	if i := slices.Index(r.users, username); i >= 0 {
		r.users = slices.Delete(r.users, i, i+1)
	}
	delete(r.connected, username)
	delete(r.votes, username)
}

func (r *Room) handleConnect(req connectRequest) {
	if !slices.Contains(r.users, req.username) {
		req.reply <- connectReply{err: ErrNotInRoom}
		return
	}

	r.connected[req.username] = struct{}{}
	logger.Infof("[Room %s] %s connected (%d/%d)", r.id, req.username, len(r.connected), len(r.users))

	welcome := make([]Event, 0, 2)
	if req.username == r.spy {
		welcome = append(welcome, RoleEvent{Role: "spy", Locations: r.cfg.Locations})
	} else {
		welcome = append(welcome, RoleEvent{Role: "player", Location: r.secretLocation})
	}
	if r.status == STATUS_ACTIVE && r.currentTurn < len(r.users) {
		previousQuestion := ""
		if n := len(r.questionLog); n > 0 {
			previousQuestion = r.questionLog[n-1].Question
		}
		welcome = append(welcome, TurnEvent{
			CurrentPlayer:    r.users[r.currentTurn],
			PreviousQuestion: previousQuestion,
			IsLast:           r.currentTurn == len(r.users)-1,
		})
	}
	req.reply <- connectReply{welcome: welcome}

	// First time everyone is attached: start the first turn.
	if !r.gameStarted && len(r.connected) == len(r.users) {
		r.gameStarted = true
		logger.Infof("[Room %s] all players connected, starting game", r.id)
		r.startTurn(0)
	}
}

func (r *Room) handleDisconnect(username string) {
	delete(r.connected, username)
	logger.Infof("[Room %s] %s disconnected (%d/%d)", r.id, username, len(r.connected), len(r.users))
}

func (r *Room) handleLeave(req leaveRequest) {
	if !slices.Contains(r.users, req.username) {
		req.reply <- ErrNotInRoom
		return
	}

	r.removeUser(req.username)
	logger.Infof("[Room %s] %s left, %d players remain", r.id, req.username, len(r.users))

	if len(r.users) == 0 {
		r.destroyed = true
		req.reply <- nil
		return
	}

	r.publish(PlayerLeftEvent{Player: req.username})

	if r.status != STATUS_ENDED {
		switch {
		case req.username == r.spy:
			// Spy forfeits by leaving.
			r.publish(PlayersWinEvent{Spy: r.spy})
			r.status = STATUS_ENDED
		case len(r.users) < 2:
			r.publish(SpyWinEvent{Spy: r.spy, Location: r.secretLocation})
			r.status = STATUS_ENDED
		default:
			if r.currentTurn >= len(r.users) {
				r.currentTurn = 0
			}
		}
	}

	req.reply <- nil
}

// handleTimerFiring is the staleness boundary: the identity captured at
// schedule time must still match current state, otherwise the phase has
// moved on and the firing is discarded.
func (r *Room) handleTimerFiring(f timerFiring) {
	switch f.kind {
	case timerTurn:
		if r.status != STATUS_ACTIVE || r.currentTurn != f.turnIndex {
			logger.Debugf("[Room %s] stale turn timer for index %d ignored", r.id, f.turnIndex)
			return
		}
		logger.Infof("[Room %s] turn %d timed out, forcing advance", r.id, f.turnIndex)
		r.currentTurn++
		r.startTurn(r.currentTurn)

	case timerVoting:
		if r.status != STATUS_VOTING || r.votingRound != f.votingRound {
			logger.Debugf("[Room %s] stale voting timer for round %d ignored", r.id, f.votingRound)
			return
		}
		logger.Infof("[Room %s] voting round %d timed out, tallying %d/%d votes", r.id, f.votingRound, len(r.votes), len(r.users))
		r.tally()

	case timerGame:
		if r.status != STATUS_ACTIVE {
			return
		}
		logger.Infof("[Room %s] game timed out, spy %s wins", r.id, r.spy)
		r.publish(SpyWinTimeoutEvent{Spy: r.spy})
		r.status = STATUS_ENDED

	case timerExpiry:
		// Expiry can race the game timer when the two durations coincide;
		// credit the spy here too so the timeout win is emitted exactly once.
		if r.status == STATUS_ACTIVE {
			r.publish(SpyWinTimeoutEvent{Spy: r.spy})
			r.status = STATUS_ENDED
		}
		logger.Infof("[Room %s] room expired", r.id)
		r.destroyed = true
	}
}
