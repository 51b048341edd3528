package chathub_test

import (
	"sync"
	"testing"
	"time"

	"pairchat/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) EnsureUser(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetOrCreateRoom(userA, userB uint) (*models.ChatRoom, error) {
	args := m.Called(userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockStorage) LatestRoomFor(userID uint) (*models.ChatRoom, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockStorage) GetRoomByID(roomID uint) (*models.ChatRoom, error) {
	args := m.Called(roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockStorage) SaveMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) RecentHistory(roomID uint, limit int) ([]models.Message, error) {
	args := m.Called(roomID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) PublishEvent(roomID uint, ev models.MessageEvent) error {
	args := m.Called(roomID, ev)
	return args.Error(0)
}

// MockClient is a hand-rolled double for the chathub.Client interface with a
// buffered send channel the tests read back from.
type MockClient struct {
	connID   string
	userID   uint
	username string
	roomID   uint
	send     chan models.Event

	mu     sync.Mutex
	closed bool
}

func newMockClient(connID string, userID uint, username string, roomID uint) *MockClient {
	return &MockClient{
		connID:   connID,
		userID:   userID,
		username: username,
		roomID:   roomID,
		send:     make(chan models.Event, 10), // Buffered to prevent blocking in tests
	}
}

func (c *MockClient) GetConnID() string                   { return c.connID }
func (c *MockClient) GetUserID() uint                     { return c.userID }
func (c *MockClient) GetUsername() string                 { return c.username }
func (c *MockClient) GetRoomID() uint                     { return c.roomID }
func (c *MockClient) GetSendChannel() chan<- models.Event { return c.send }
func (c *MockClient) Run()                                {}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *MockClient) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// recvEvent pops the next queued event, failing the test after a timeout.
func recvEvent(t *testing.T, c *MockClient) models.Event {
	t.Helper()
	select {
	case ev, ok := <-c.send:
		if !ok {
			t.Fatalf("client %s send channel closed", c.connID)
		}
		return ev
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("client %s received no event", c.connID)
	}
	return nil
}

// tryRecvEvent reports whether an event is queued without waiting.
func tryRecvEvent(c *MockClient) (models.Event, bool) {
	select {
	case ev, ok := <-c.send:
		if !ok {
			return nil, false
		}
		return ev, true
	default:
		return nil, false
	}
}
