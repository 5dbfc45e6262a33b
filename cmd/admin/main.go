// Package main provides admin management utilities for the job board.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"jobboard/internal/authz"
	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/repository"
	"jobboard/internal/service"

	"gorm.io/gorm"
)

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin issue-token [label] [ttl_hours]   - Issue a single-use admin invite token")
	fmt.Println("  go run ./cmd/admin revoke-token <token_id>           - Revoke an invite token")
	fmt.Println("  go run ./cmd/admin list-tokens                       - List invite tokens")
	fmt.Println("  go run ./cmd/admin set-status <user_id> <active|inactive>")
	fmt.Println("  go run ./cmd/admin expire-jobs                       - Expire active jobs past their deadline")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch command := os.Args[1]; command {
	case "issue-token":
		label := ""
		if len(os.Args) > 2 {
			label = os.Args[2]
		}
		var ttl time.Duration
		if len(os.Args) > 3 {
			ttl = time.Duration(mustID(os.Args[3])) * time.Hour
		}
		issueToken(ctx, service.NewAdminTokenService(db, cfg.AdminTokenTTL()), label, ttl)

	case "revoke-token":
		requireArgs(3)
		id := mustID(os.Args[2])
		if err := service.NewAdminTokenService(db, cfg.AdminTokenTTL()).Revoke(ctx, id); err != nil {
			log.Fatalf("Failed to revoke token: %v", err)
		}
		fmt.Printf("✅ Revoked invite token %d\n", id)

	case "list-tokens":
		listTokens(ctx, service.NewAdminTokenService(db, cfg.AdminTokenTTL()))

	case "set-status":
		requireArgs(4)
		setStatus(ctx, db, mustID(os.Args[2]), os.Args[3])

	case "expire-jobs":
		jobs := service.NewJobService(repository.NewJobRepository(db), repository.NewCategoryRepository(db))
		n, err := jobs.ExpireOverdue(ctx, time.Now())
		if err != nil {
			log.Fatalf("Failed to expire jobs: %v", err)
		}
		fmt.Printf("✅ Expired %d overdue jobs\n", n)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func requireArgs(n int) {
	if len(os.Args) < n {
		printUsage()
		os.Exit(1)
	}
}

func mustID(raw string) uint {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		log.Fatalf("Invalid number %q", raw)
	}
	return uint(v)
}

func issueToken(ctx context.Context, tokens *service.AdminTokenService, label string, ttl time.Duration) {
	issued, err := tokens.Issue(ctx, label, ttl, nil)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Printf("✅ Invite token %d (expires %s)\n", issued.Record.ID, issued.Record.ExpiresAt.Format(time.RFC3339))
	fmt.Printf("   %s\n", issued.Token)
	fmt.Println("   The token is shown once. Register with POST /api/auth/admin-register?token=<token>")
}

func listTokens(ctx context.Context, tokens *service.AdminTokenService) {
	list, err := tokens.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list tokens: %v", err)
	}
	if len(list) == 0 {
		fmt.Println("No invite tokens issued")
		return
	}

	now := time.Now()
	fmt.Println("\n📋 Admin Invite Tokens:")
	fmt.Println("─────────────────────────────────────")
	for _, t := range list {
		state := "open"
		switch {
		case t.UsedAt != nil:
			state = "used"
		case t.RevokedAt != nil:
			state = "revoked"
		case now.After(t.ExpiresAt):
			state = "expired"
		}
		fmt.Printf("ID: %d | Label: %s | Expires: %s | %s\n", t.ID, t.Label, t.ExpiresAt.Format(time.RFC3339), state)
	}
	fmt.Println("─────────────────────────────────────")
}

func setStatus(ctx context.Context, db *gorm.DB, userID uint, status string) {
	users := service.NewUserService(repository.NewUserRepository(db))
	// The CLI acts as a system admin with no user of its own.
	if err := users.SetStatus(ctx, authz.AdminScope(0), userID, status); err != nil {
		log.Fatalf("Failed to set status: %v", err)
	}
	fmt.Printf("✅ User %d is now %s\n", userID, status)
}
