package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"socialnet/backend/internal/config"
	"socialnet/backend/internal/database"
	"socialnet/backend/internal/events"
	"socialnet/backend/internal/models"
	"socialnet/backend/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const seedPassword = "password123"

type options struct {
	Users        int
	PostsPerUser int
	Seed         int64
}

type stats struct {
	Users, Requests, Friendships, Posts, Messages int
}

func main() {
	var opts options
	flag.IntVar(&opts.Users, "users", 20, "number of users to create")
	flag.IntVar(&opts.PostsPerUser, "posts", 3, "posts per user")
	flag.Int64Var(&opts.Seed, "seed", 0, "random seed (0 uses the clock)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.Open(database.Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	st, err := seed(context.Background(), db, opts)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("Seeded %d users, %d friend requests (%d accepted), %d posts, %d messages. Password for every user: %s",
		st.Users, st.Requests, st.Friendships, st.Posts, st.Messages, seedPassword)
}

// seed fills db through the service layer so every invariant holds for the
// generated data.
func seed(ctx context.Context, db *gorm.DB, opts options) (stats, error) {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(opts.Seed)

	pub := events.Nop{}
	identity := service.NewIdentity(db, pub).WithHashCost(bcrypt.MinCost)
	friends := service.NewFriends(db, pub)
	posts := service.NewPosts(db, friends, pub)
	messages := service.NewMessages(db, pub)

	var st stats
	users := make([]*models.User, 0, opts.Users)
	for len(users) < opts.Users {
		u, err := identity.Register(ctx, service.RegisterParams{
			Username: fmt.Sprintf("%s%d", faker.Username(), faker.Number(10, 9999)),
			Email:    faker.Email(),
			Password: seedPassword,
		})
		if errors.Is(err, service.ErrConflict) {
			continue
		}
		if err != nil {
			return st, fmt.Errorf("register: %w", err)
		}
		users = append(users, u)
	}
	st.Users = len(users)

	// Each user asks a few others; about two thirds get accepted.
	for _, u := range users {
		for i := 0; i < 3 && len(users) > 1; i++ {
			other := users[faker.Number(0, len(users)-1)]
			edge, err := friends.CreateRequest(ctx, u.ID, other.ID)
			if errors.Is(err, service.ErrConflict) || errors.Is(err, service.ErrValidation) {
				continue
			}
			if err != nil {
				return st, fmt.Errorf("friend request: %w", err)
			}
			st.Requests++

			if faker.Number(0, 2) > 0 {
				if _, err := friends.Respond(ctx, edge.ID, other.ID, service.ActionAccept); err != nil {
					return st, fmt.Errorf("accept: %w", err)
				}
				st.Friendships++
			}
		}
	}

	for _, u := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			if _, err := posts.Create(ctx, u.ID, faker.Sentence(faker.Number(4, 16)), nil); err != nil {
				return st, fmt.Errorf("post: %w", err)
			}
			st.Posts++
		}

		ids, err := friends.ListAccepted(ctx, u.ID)
		if err != nil {
			return st, err
		}
		for _, id := range ids {
			if _, err := messages.Send(ctx, u.ID, id, faker.Sentence(faker.Number(2, 10))); err != nil {
				return st, fmt.Errorf("message: %w", err)
			}
			st.Messages++
		}
	}

	return st, nil
}
