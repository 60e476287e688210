package game

import (
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/Gleb-Barkovskiy/game-server/config"
	"github.com/Gleb-Barkovskiy/game-server/store"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.MatchmakingInterval = time.Millisecond
	return cfg
}

// newTestRoom builds a room with a fake scheduler and a subscription on its
// broadcast topic. Handlers are called directly on the test goroutine, the
// same way the actor would.
func newTestRoom(t *testing.T, users []string, spy, secretLocation string) (*Room, *fakeScheduler, *store.Subscription) {
	t.Helper()
	mem := store.NewMemory()
	t.Cleanup(mem.Close)

	sched := &fakeScheduler{}
	room := NewRoom("room-under-test", slices.Clone(users), spy, secretLocation, testConfig(), mem, sched, nil)
	sub := mem.Subscribe(roomTopic(room.id))
	t.Cleanup(sub.Close)
	return room, sched, sub
}

func connect(t *testing.T, room *Room, username string) []Event {
	t.Helper()
	req := connectRequest{username: username, reply: make(chan connectReply, 1)}
	room.handleConnect(req)
	reply := <-req.reply
	require.NoError(t, reply.err)
	return reply.welcome
}

func submit(room *Room, from, question, answer string) {
	room.handleClientPacket(ClientPacketEnvelope{
		from:   from,
		packet: ClientPacket{SubmitTurn: true, Question: question, Answer: answer},
	})
}

func vote(room *Room, from, target string) {
	room.handleClientPacket(ClientPacketEnvelope{from: from, packet: ClientPacket{Vote: target}})
}

func guess(room *Room, from, location string) {
	room.handleClientPacket(ClientPacketEnvelope{from: from, packet: ClientPacket{Guess: location}})
}

// drainEvents decodes everything currently buffered on the subscription.
// Publishes happen synchronously inside the handlers, so there is nothing to
// wait for.
func drainEvents(t *testing.T, sub *store.Subscription) []map[string]any {
	t.Helper()
	events := []map[string]any{}
	for {
		select {
		case data := <-sub.C:
			var event map[string]any
			require.NoError(t, json.Unmarshal(data, &event))
			events = append(events, event)
		default:
			return events
		}
	}
}

func kinds(events []map[string]any) []string {
	out := make([]string, 0, len(events))
	for _, event := range events {
		out = append(out, event["type"].(string))
	}
	return out
}

func awaitEvent(t *testing.T, sub *store.Subscription, kind string, timeout time.Duration) map[string]any {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case data := <-sub.C:
			var event map[string]any
			require.NoError(t, json.Unmarshal(data, &event))
			if event["type"] == kind {
				return event
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", kind)
			return nil
		}
	}
}
