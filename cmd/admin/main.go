package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"pairchat/backend/internal/config"
	"pairchat/backend/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Small operator CLI: create users, inspect a user's latest room, dump recent
// history. Runs against the same database as the service.
func main() {
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	s := storage.NewService(db, nil) // No redis needed for the admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <useradd|latest|history> [args]")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "useradd":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin useradd <username>")
			os.Exit(1)
		}
		user, err := s.EnsureUser(os.Args[2])
		if err != nil {
			log.Fatalf("Error creating user: %v", err)
		}
		fmt.Printf("User %q has id %d.\n", user.Username, user.ID)

	case "latest":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin latest <user_id>")
			os.Exit(1)
		}
		userID := parseID(os.Args[2])
		room, err := s.LatestRoomFor(userID)
		if err != nil {
			log.Fatalf("Error looking up rooms: %v", err)
		}
		if room == nil {
			fmt.Printf("User %d has no rooms.\n", userID)
			return
		}
		fmt.Printf("Room %d (users %d and %d), last active %s.\n",
			room.ID, room.User1ID, room.User2ID, room.UpdatedAt.Format("2006-01-02 15:04:05"))

	case "history":
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin history <room_id> [limit]")
			os.Exit(1)
		}
		roomID := parseID(os.Args[2])
		limit := config.HistoryLimit
		if len(os.Args) > 3 {
			limit = int(parseID(os.Args[3]))
		}
		messages, err := s.RecentHistory(roomID, limit)
		if err != nil {
			log.Fatalf("Error loading history: %v", err)
		}
		for _, m := range messages {
			fmt.Printf("[%s] %s: %s\n", m.SentAt.Format("15:04:05"), m.Sender.Username, m.Text)
		}

	default:
		fmt.Printf("Unknown command %q.\n", os.Args[1])
		os.Exit(1)
	}
}

func parseID(raw string) uint {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		log.Fatalf("Invalid id %q. Please provide an integer.", raw)
	}
	return uint(id)
}
