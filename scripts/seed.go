//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hugh/hoteldesk/internal/auth"
	"github.com/hugh/hoteldesk/internal/records"
	"github.com/hugh/hoteldesk/internal/store"
	"github.com/hugh/hoteldesk/pkg/config"
	"github.com/hugh/hoteldesk/pkg/util"
	"github.com/joho/godotenv"
)

// Seeds an approved staff account and a handful of rooms so a fresh store
// can be logged into without going through the approval mail.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	opts, err := cfg.KV.RedisOptions()
	if err != nil {
		log.Fatalf("invalid store url: %v", err)
	}

	ctx := context.Background()
	st, err := store.Connect(ctx, opts, logger)
	if err != nil {
		log.Fatalf("failed to connect to store: %v", err)
	}
	defer st.Close()

	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")
	name := os.Getenv("SEED_NAME")

	if email == "" {
		email = "frontdesk@example.com"
	}
	if password == "" {
		password = "frontdesk123!"
	}
	if name == "" {
		name = "Lễ tân"
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	created := false
	err = st.Update(ctx, func(tx store.Txn) error {
		var users []auth.User
		if _, err := store.TxnGetJSON(tx, store.KeyUsers, &users); err != nil {
			return err
		}
		for _, u := range users {
			if strings.EqualFold(u.Email, email) {
				return nil
			}
		}
		users = append(users, auth.User{
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
			Approved:     true,
		})
		created = true
		return store.TxnSetJSON(tx, store.KeyUsers, users)
	}, store.KeyUsers)
	if err != nil {
		log.Fatalf("failed to seed account: %v", err)
	}

	if created {
		fmt.Printf("Created approved account %s\n", email)
		fmt.Printf("Password: %s\n", password)
	} else {
		fmt.Printf("Account %s already exists, left unchanged\n", email)
	}

	recordService := records.NewService(st, logger)
	existing, err := recordService.List(ctx, "rooms")
	if err != nil {
		log.Fatalf("failed to list rooms: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d rooms already present, skipping\n", len(existing))
		return
	}

	for floor := 1; floor <= 2; floor++ {
		for n := 1; n <= 3; n++ {
			room := records.Record{
				"number": floor*100 + n,
				"floor":  floor,
				"type":   "standard",
				"status": "available",
			}
			if _, err := recordService.Create(ctx, "rooms", room); err != nil {
				log.Fatalf("failed to create room: %v", err)
			}
		}
	}
	fmt.Println("Created 6 sample rooms")
}
