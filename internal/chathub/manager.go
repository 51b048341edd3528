package chathub

import (
	"log"

	"pairchat/backend/internal/config"
	"pairchat/backend/internal/models"
	"pairchat/backend/internal/storage"
)

// ManagerService is the hub: it owns broadcast-group membership for every room
// with a local connection and fans published events out to the members. All
// state changes go through Run's single goroutine, so registration, fan-out
// and removal never race each other.
type ManagerService struct {
	// Rooms maps roomID -> connID -> client for locally hosted connections.
	Rooms map[uint]map[string]Client

	// Channels
	IncomingCh   chan models.Incoming
	PubSubCh     chan models.RoomEvent
	RegisterCh   chan Client
	UnregisterCh chan Client

	Storage storage.Storage
}

func NewManagerService(s storage.Storage) *ManagerService {
	return &ManagerService{
		Rooms:        make(map[uint]map[string]Client),
		IncomingCh:   make(chan models.Incoming),
		PubSubCh:     make(chan models.RoomEvent),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		Storage:      s,
	}
}

// Run is the hub's main dispatcher.
func (m *ManagerService) Run() {
	for {
		select {
		case client := <-m.RegisterCh:
			m.registerClient(client)

		case client := <-m.UnregisterCh:
			m.unregisterClient(client)

		case in := <-m.IncomingCh:
			m.handleIncoming(in)

		case ev := <-m.PubSubCh:
			m.handleRoomEvent(ev)
		}
	}
}

// registerClient joins the connection to its room's group and queues the
// one-time history push. History lands on the Send channel before any later
// broadcast because both happen on the Run goroutine.
func (m *ManagerService) registerClient(client Client) {
	roomID := client.GetRoomID()

	clients, ok := m.Rooms[roomID]
	if !ok {
		clients = make(map[string]Client)
		m.Rooms[roomID] = clients
	}
	clients[client.GetConnID()] = client
	log.Printf("Client %s (user %d) joined room %d (%d local)",
		client.GetConnID(), client.GetUserID(), roomID, len(clients))

	history, err := m.Storage.RecentHistory(roomID, config.HistoryLimit)
	if err != nil {
		log.Printf("ERROR: Failed to load history for room %d: %v", roomID, err)
		m.unregisterClient(client)
		return
	}

	views := make([]models.MessageView, 0, len(history))
	for i := range history {
		views = append(views, models.NewMessageView(&history[i], history[i].Sender.Username))
	}
	m.deliver(client, models.NewHistoryEvent(views))
}

// unregisterClient removes the connection from its room's group. Calling it
// for an already-removed connection is a no-op.
func (m *ManagerService) unregisterClient(client Client) {
	roomID := client.GetRoomID()

	clients, ok := m.Rooms[roomID]
	if !ok {
		return
	}
	if _, ok := clients[client.GetConnID()]; !ok {
		return
	}

	delete(clients, client.GetConnID())
	if len(clients) == 0 {
		delete(m.Rooms, roomID)
	}
	client.Close()
	log.Printf("Client %s left room %d", client.GetConnID(), roomID)
}

// handleIncoming persists one client message, then publishes the resulting
// event to the room's broadcast channel. The event is never published for a
// message that failed to persist; instead the sender's connection is dropped
// so the failure is visible to the caller.
func (m *ManagerService) handleIncoming(in models.Incoming) {
	msg := &models.Message{
		RoomID:   in.RoomID,
		SenderID: in.SenderID,
		Text:     in.Text,
	}
	if err := m.Storage.SaveMessage(msg); err != nil {
		log.Printf("ERROR: Dropping message from %s in room %d: %v", in.ConnID, in.RoomID, err)
		if sender, ok := m.Rooms[in.RoomID][in.ConnID]; ok {
			m.unregisterClient(sender)
		}
		return
	}

	ev := models.NewMessageEvent(msg, in.SenderName)
	if err := m.Storage.PublishEvent(in.RoomID, ev); err != nil {
		log.Printf("ERROR: Failed to publish message %d for room %d: %v", msg.ID, in.RoomID, err)
	}
}

// handleRoomEvent fans a published event out to every local member of the
// room, the sender's own connection included.
func (m *ManagerService) handleRoomEvent(ev models.RoomEvent) {
	for _, client := range m.Rooms[ev.RoomID] {
		m.deliver(client, ev.Event)
	}
}

// deliver queues an event on a client's Send channel without ever blocking
// the hub. A client whose queue is full has stopped draining; it is dropped.
func (m *ManagerService) deliver(client Client, ev models.Event) {
	select {
	case client.GetSendChannel() <- ev:
	default:
		log.Printf("WARNING: Client %s send queue full, dropping connection", client.GetConnID())
		m.unregisterClient(client)
	}
}
