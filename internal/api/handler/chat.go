package handler

import (
	"errors"
	"net/http"
	"strconv"

	"pairchat/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// ChatWith resolves (or lazily creates) the single room between the caller and
// the target user.
func (h *Handler) ChatWith(c *gin.Context) {
	ident := identityFrom(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	otherID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	partner, err := h.Storage.GetUserByID(uint(otherID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		return
	}
	if partner == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	room, err := h.Storage.GetOrCreateRoom(ident.UserID, partner.ID)
	if errors.Is(err, storage.ErrSelfRoom) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot chat with yourself"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"room_id": room.ID, "partner": partner.Username})
}

// LatestRoom returns the caller's most recently active room, or 204 when the
// caller has none.
func (h *Handler) LatestRoom(c *gin.Context) {
	ident := identityFrom(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	room, err := h.Storage.LatestRoomFor(ident.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up rooms"})
		return
	}
	if room == nil {
		c.Status(http.StatusNoContent)
		return
	}

	partner, err := h.Storage.GetUserByID(room.PartnerID(ident.UserID))
	if err != nil || partner == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up partner"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"room_id": room.ID, "partner": partner.Username})
}
