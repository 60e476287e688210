package game

import (
	"context"
	"net/http"

	"github.com/Gleb-Barkovskiy/game-server/domain"
	"github.com/Gleb-Barkovskiy/game-server/logger"
	"github.com/Gleb-Barkovskiy/game-server/store"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type UserGetter interface {
	GetUserById(ctx context.Context, id string) (domain.User, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type GameHandler struct {
	pool    *Pool
	service *Service
	users   UserGetter
	store   store.Store
}

func NewGameHandler(pool *Pool, service *Service, users UserGetter, st store.Store) *GameHandler {
	return &GameHandler{pool: pool, service: service, users: users, store: st}
}

// username resolves the authenticated user id set by the auth middleware to
// a username. Aborts the request itself on failure.
func (h *GameHandler) username(ctx *gin.Context) (string, bool) {
	id := ctx.GetString("id")
	if id == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return "", false
	}
	user, err := h.users.GetUserById(ctx.Request.Context(), id)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return "", false
	}
	return user.Username, true
}

func (h *GameHandler) JoinPoolHandler(ctx *gin.Context) {
	username, ok := h.username(ctx)
	if !ok {
		return
	}

	switch h.pool.Enqueue(username) {
	case ENQUEUE_ADDED:
		ctx.JSON(http.StatusOK, gin.H{"message": "Added to waiting pool"})
	case ENQUEUE_ALREADY_QUEUED:
		ctx.JSON(http.StatusOK, gin.H{"message": "Already in pool"})
	case ENQUEUE_ALREADY_ASSIGNED:
		roomId, _ := h.pool.PendingRoom(username)
		ctx.JSON(http.StatusOK, gin.H{"message": "Already assigned to a room", "room_id": roomId})
	}
}

func (h *GameHandler) PendingRoomHandler(ctx *gin.Context) {
	username, ok := h.username(ctx)
	if !ok {
		return
	}

	roomId, ok := h.pool.PendingRoom(username)
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no-room-assigned"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"room_id": roomId})
}

// requireAssignment checks that the caller's assignment pointer matches the
// room in the path. Acting on someone else's room is refused outright.
func (h *GameHandler) requireAssignment(ctx *gin.Context, username string) (string, bool) {
	roomId := ctx.Param("roomid")
	assigned, ok := h.store.Get(assignmentKey(username))
	if !ok || assigned != roomId {
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not-authorized-for-room"})
		return "", false
	}
	return roomId, true
}

func (h *GameHandler) RoomInfoHandler(ctx *gin.Context) {
	username, ok := h.username(ctx)
	if !ok {
		return
	}
	roomId, ok := h.requireAssignment(ctx, username)
	if !ok {
		return
	}

	room, ok := h.service.Room(roomId)
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "room-not-found"})
		return
	}
	snap, ok := room.Snapshot()
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "room-not-found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"room_id":    snap.Id,
		"status":     snap.Status.String(),
		"users":      snap.Users,
		"created_at": snap.CreatedAt,
	})
}

func (h *GameHandler) RoomUsersHandler(ctx *gin.Context) {
	username, ok := h.username(ctx)
	if !ok {
		return
	}
	roomId, ok := h.requireAssignment(ctx, username)
	if !ok {
		return
	}

	room, ok := h.service.Room(roomId)
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "room-not-found"})
		return
	}
	snap, ok := room.Snapshot()
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "room-not-found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"users": snap.Users})
}

func (h *GameHandler) LeaveRoomHandler(ctx *gin.Context) {
	username, ok := h.username(ctx)
	if !ok {
		return
	}
	roomId, ok := h.requireAssignment(ctx, username)
	if !ok {
		return
	}

	h.store.Del(assignmentKey(username))

	if room, exists := h.service.Room(roomId); exists {
		if err := room.Leave(username); err != nil {
			logger.Warningf("[GameHandler] leave of %s from %s: %v", username, roomId, err)
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Left room successfully"})
}

// UserChannelHandler streams the personal topic (assignment notifications)
// over a websocket.
func (h *GameHandler) UserChannelHandler(ctx *gin.Context) {
	username, ok := h.username(ctx)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "websocket-upgrade-failed"})
		return
	}
	socket := NewWebsocketConnection(conn)

	sub := h.store.Subscribe(userTopic(username))
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, err := socket.Read(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case data := <-sub.C:
			if err := socket.Write(data); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// RoomChannelHandler attaches a player to their room: subscribes to the
// room's broadcast topic, registers the connection with the room actor,
// delivers the private welcome events, then pumps until disconnect.
func (h *GameHandler) RoomChannelHandler(ctx *gin.Context) {
	username, ok := h.username(ctx)
	if !ok {
		return
	}
	roomId := ctx.Param("roomid")

	assigned, ok := h.store.Get(assignmentKey(username))
	if !ok || assigned != roomId {
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not-authorized-for-room"})
		return
	}

	room, exists := h.service.Room(roomId)
	if !exists {
		ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "room-not-found"})
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "websocket-upgrade-failed"})
		return
	}
	socket := NewWebsocketConnection(conn)

	// Subscribe before Connect so no broadcast between the welcome snapshot
	// and the first pumped message is missed.
	sub := h.store.Subscribe(roomTopic(roomId))
	defer sub.Close()

	welcome, err := room.Connect(username)
	if err != nil {
		socket.Close(err.Error())
		return
	}

	player := NewPlayer(username, room, socket)
	for _, event := range welcome {
		data, err := MarshalEvent(event)
		if err != nil {
			logger.Criticalf("[GameHandler] failed to marshal welcome %s: %v", event.Kind(), err)
			continue
		}
		player.Send(data)
	}

	go player.WritePump()
	go func() {
		for data := range sub.C {
			player.Send(data)
		}
	}()

	logger.Infof("[GameHandler] %s attached to room %s", username, roomId)
	player.ReadPump()
}
