package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// Redis channel naming for the per-room broadcast groups.
const (
	roomChannelPrefix  = "chat:"
	roomChannelPattern = roomChannelPrefix + "*"
)

// RoomChannel derives the broadcast channel name for a room. Every connection
// joined to the same room shares this one channel, regardless of which server
// process hosts it.
func RoomChannel(roomID uint) string {
	return fmt.Sprintf("%s%d", roomChannelPrefix, roomID)
}

// RoomIDFromChannel recovers the room id from a broadcast channel name.
func RoomIDFromChannel(channel string) (uint, error) {
	raw, ok := strings.CutPrefix(channel, roomChannelPrefix)
	if !ok {
		return 0, fmt.Errorf("not a room channel: %q", channel)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad room id in channel %q: %w", channel, err)
	}
	return uint(id), nil
}
