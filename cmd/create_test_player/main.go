package main

import (
	"context"
	"log"
	"os"
	"time"

	"twq_coin/internal/ledger"
	"twq_coin/internal/service"
	"twq_coin/internal/snapshot"
)

// Creates (or reuses) a local file-store player and prints a JWT for manual
// API testing. No database needed.
func main() {
	dir := os.Getenv("SNAPSHOT_DIR")
	if dir == "" {
		dir = "data/snapshots"
	}

	fs, err := snapshot.NewFileStore(dir)
	if err != nil {
		log.Fatalf("open snapshot dir: %v", err)
	}

	svc := service.NewLedgerService(ledger.DefaultConfig(), fs, fs, nil)
	ctx := context.Background()

	acc, login, err := svc.Authenticate(ctx, service.TgUser{
		ID:        1234567890,
		Username:  "testplayer",
		FirstName: "Tester",
	}, time.Now())
	if err != nil {
		log.Fatalf("authenticate failed: %v", err)
	}

	log.Printf("player id=%s points=%d streak=%d\n", acc.PlayerID, acc.TotalPoints, acc.LoginStreak)
	if login != nil {
		log.Printf("daily login claimed: day=%d points=%d\n", login.StreakDay, login.PointsAwarded)
	}

	service.InitJWT()
	token, err := service.GenerateJWT(acc.PlayerID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
