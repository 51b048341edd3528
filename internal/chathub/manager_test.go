package chathub_test

import (
	"errors"
	"testing"
	"time"

	"pairchat/backend/internal/chathub"
	"pairchat/backend/internal/config"
	"pairchat/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestManager_RegisterPushesHistoryOldestFirst(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)

	sentAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	history := []models.Message{
		{ID: 1, RoomID: 7, SenderID: 3, Text: "hi", SentAt: sentAt,
			Sender: models.User{ID: 3, Username: "alice"}},
		{ID: 2, RoomID: 7, SenderID: 5, Text: "hey", SentAt: sentAt.Add(time.Minute),
			Sender: models.User{ID: 5, Username: "bob"}},
	}
	storageMock.On("RecentHistory", uint(7), config.HistoryLimit).Return(history, nil)

	clientA := newMockClient("conn_A", 3, "alice", 7)

	go hub.Run()
	hub.RegisterCh <- clientA
	time.Sleep(100 * time.Millisecond)

	ev := recvEvent(t, clientA)
	historyEv, ok := ev.(models.HistoryEvent)
	assert.True(t, ok, "first event must be the history push")
	assert.Equal(t, models.EventTypeHistory, historyEv.Type)
	assert.Len(t, historyEv.Messages, 2)
	assert.Equal(t, uint(1), historyEv.Messages[0].ID)
	assert.Equal(t, "alice", historyEv.Messages[0].Sender)
	assert.Equal(t, uint(2), historyEv.Messages[1].ID)
	assert.Equal(t, "2024-01-01T00:00:00Z", historyEv.Messages[0].SentAt)
}

func TestManager_RegisterEmptyRoomPushesEmptyHistory(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)
	storageMock.On("RecentHistory", uint(7), config.HistoryLimit).Return([]models.Message{}, nil)

	clientA := newMockClient("conn_A", 3, "alice", 7)

	go hub.Run()
	hub.RegisterCh <- clientA
	time.Sleep(100 * time.Millisecond)

	ev := recvEvent(t, clientA)
	historyEv, ok := ev.(models.HistoryEvent)
	assert.True(t, ok)
	assert.NotNil(t, historyEv.Messages)
	assert.Empty(t, historyEv.Messages)
}

func TestManager_IncomingPersistsThenPublishes(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)

	sentAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	storageMock.On("SaveMessage", mock.AnythingOfType("*models.Message")).
		Run(func(args mock.Arguments) {
			msg := args.Get(0).(*models.Message)
			msg.ID = 42
			msg.SentAt = sentAt
		}).Return(nil)
	storageMock.On("PublishEvent", uint(7), mock.AnythingOfType("models.MessageEvent")).Return(nil)

	go hub.Run()
	hub.IncomingCh <- models.Incoming{
		RoomID: 7, ConnID: "conn_A", SenderID: 3, SenderName: "alice", Text: "hello",
	}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertCalled(t, "SaveMessage", mock.AnythingOfType("*models.Message"))
	storageMock.AssertCalled(t, "PublishEvent", uint(7), mock.MatchedBy(func(ev models.MessageEvent) bool {
		return ev.Type == models.EventTypeMessage &&
			ev.ID == 42 &&
			ev.Sender == "alice" &&
			ev.Text == "hello" &&
			ev.SentAt == "2024-01-01T00:00:00Z"
	}))
}

func TestManager_SaveFailureNeverPublishes(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)
	storageMock.On("RecentHistory", uint(7), config.HistoryLimit).Return([]models.Message{}, nil)
	storageMock.On("SaveMessage", mock.AnythingOfType("*models.Message")).
		Return(errors.New("connection refused"))

	clientA := newMockClient("conn_A", 3, "alice", 7)

	go hub.Run()
	hub.RegisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	recvEvent(t, clientA) // history push

	hub.IncomingCh <- models.Incoming{
		RoomID: 7, ConnID: "conn_A", SenderID: 3, SenderName: "alice", Text: "hello",
	}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything)
	assert.True(t, clientA.Closed(), "sender must be dropped when its message cannot persist")
}

func TestManager_FanOutReachesRoomMembersOnly(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)
	storageMock.On("RecentHistory", mock.AnythingOfType("uint"), config.HistoryLimit).
		Return([]models.Message{}, nil)

	clientA := newMockClient("conn_A", 3, "alice", 7)
	clientB := newMockClient("conn_B", 5, "bob", 7)
	clientC := newMockClient("conn_C", 9, "carol", 8)

	go hub.Run()
	hub.RegisterCh <- clientA
	hub.RegisterCh <- clientB
	hub.RegisterCh <- clientC
	time.Sleep(100 * time.Millisecond)
	recvEvent(t, clientA)
	recvEvent(t, clientB)
	recvEvent(t, clientC)

	ev := models.MessageEvent{
		Type: models.EventTypeMessage, ID: 1, Sender: "alice", Text: "hi",
		SentAt: "2024-01-01T00:00:00Z",
	}
	hub.PubSubCh <- models.RoomEvent{RoomID: 7, Event: ev}
	time.Sleep(100 * time.Millisecond)

	// Both room members get the identical event, the sender's connection
	// included.
	assert.Equal(t, ev, recvEvent(t, clientA))
	assert.Equal(t, ev, recvEvent(t, clientB))

	_, got := tryRecvEvent(clientC)
	assert.False(t, got, "other rooms must not see the event")
}

func TestManager_UnregisterStopsDelivery(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)
	storageMock.On("RecentHistory", uint(7), config.HistoryLimit).Return([]models.Message{}, nil)

	clientA := newMockClient("conn_A", 3, "alice", 7)
	clientB := newMockClient("conn_B", 5, "bob", 7)

	go hub.Run()
	hub.RegisterCh <- clientA
	hub.RegisterCh <- clientB
	time.Sleep(100 * time.Millisecond)
	recvEvent(t, clientA)
	recvEvent(t, clientB)

	hub.UnregisterCh <- clientB
	time.Sleep(100 * time.Millisecond)
	assert.True(t, clientB.Closed())

	ev := models.MessageEvent{
		Type: models.EventTypeMessage, ID: 1, Sender: "alice", Text: "still here",
		SentAt: "2024-01-01T00:00:00Z",
	}
	hub.PubSubCh <- models.RoomEvent{RoomID: 7, Event: ev}
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, ev, recvEvent(t, clientA))
	_, got := tryRecvEvent(clientB)
	assert.False(t, got, "unregistered client must receive nothing")

	// Disconnecting an already-removed client is a no-op.
	hub.UnregisterCh <- clientB
	time.Sleep(50 * time.Millisecond)
}
