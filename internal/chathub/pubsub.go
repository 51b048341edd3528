package chathub

import (
	"encoding/json"
	"log"

	"pairchat/backend/internal/models"
	"pairchat/backend/internal/storage"

	"github.com/redis/go-redis/v9"
)

// ListenEvents pumps the Redis pattern subscription into the hub. Events
// published by any server process, this one included, arrive here; the room id
// is recovered from the channel name and the hub routes to local members.
// Redis preserves per-channel publish order, so per-room FIFO holds end to end.
func (m *ManagerService) ListenEvents(pubsub *redis.PubSub) {
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		roomID, err := storage.RoomIDFromChannel(msg.Channel)
		if err != nil {
			log.Printf("WARNING: Ignoring message on unexpected channel %q: %v", msg.Channel, err)
			continue
		}

		var ev models.MessageEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("ERROR: Failed to decode broadcast for room %d: %v", roomID, err)
			continue
		}

		m.PubSubCh <- models.RoomEvent{RoomID: roomID, Event: ev}
	}
}
