package game

import (
	"sync"

	"github.com/Gleb-Barkovskiy/game-server/config"
	"github.com/Gleb-Barkovskiy/game-server/logger"
	"github.com/Gleb-Barkovskiy/game-server/store"
	"github.com/google/uuid"
)

// Service is the room registry. Rooms register here when matchmaking forms
// them and unregister themselves when their actor exits.
type Service struct {
	locker    sync.RWMutex
	rooms     map[string]*Room
	store     store.Store
	cfg       config.Config
	scheduler Scheduler
}

func NewService(st store.Store, cfg config.Config, scheduler Scheduler) *Service {
	return &Service{
		rooms:     make(map[string]*Room),
		store:     st,
		cfg:       cfg,
		scheduler: scheduler,
	}
}

// StartRoom creates a room with the given cast, runs its actor, and returns
// the new room id.
func (s *Service) StartRoom(users []string, spy, secretLocation string) string {
	roomId := uuid.NewString()
	room := NewRoom(roomId, users, spy, secretLocation, s.cfg, s.store, s.scheduler, s.removeRoom)

	s.locker.Lock()
	s.rooms[roomId] = room
	s.locker.Unlock()

	go room.Run()
	logger.Infof("[Service] room %s started with users %v", roomId, users)
	return roomId
}

func (s *Service) Room(roomId string) (*Room, bool) {
	s.locker.RLock()
	defer s.locker.RUnlock()
	room, ok := s.rooms[roomId]
	return room, ok
}

func (s *Service) removeRoom(roomId string) {
	s.locker.Lock()
	delete(s.rooms, roomId)
	s.locker.Unlock()
	logger.Infof("[Service] room %s removed", roomId)
}
