package game

import (
	"context"
	"time"

	"github.com/Gleb-Barkovskiy/game-server/domain"
	"github.com/stretchr/testify/mock"
)

// --- NetworkSession ---

type MockNetworkSession struct {
	mock.Mock
}

func (m *MockNetworkSession) Close(errCode string) {
	m.Called(errCode)
}

func (m *MockNetworkSession) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockNetworkSession) Read() ([]byte, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockNetworkSession) Ping() error {
	args := m.Called()
	return args.Error(0)
}

// --- RoomStarter ---

type MockRoomStarter struct {
	mock.Mock
}

func (m *MockRoomStarter) StartRoom(users []string, spy, secretLocation string) string {
	args := m.Called(users, spy, secretLocation)
	return args.String(0)
}

// --- UserGetter ---

type MockUserGetter struct {
	mock.Mock
}

func (m *MockUserGetter) GetUserById(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

// --- Scheduler ---

type scheduledCall struct {
	d    time.Duration
	fire func()
}

// fakeScheduler records schedule calls; tests fire the callbacks by hand.
type fakeScheduler struct {
	scheduled []scheduledCall
}

func (f *fakeScheduler) Schedule(d time.Duration, fire func()) {
	f.scheduled = append(f.scheduled, scheduledCall{d: d, fire: fire})
}
