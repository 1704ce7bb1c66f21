package service_test

import (
	"context"
	"fmt"
	"testing"

	"socialnet/backend/internal/database/databasetest"
	"socialnet/backend/internal/events"
	"socialnet/backend/internal/models"
	"socialnet/backend/internal/service"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type env struct {
	db       *gorm.DB
	events   *events.Recorder
	identity *service.Identity
	friends  *service.Friends
	posts    *service.Posts
	messages *service.Messages
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := databasetest.New(t)
	rec := &events.Recorder{}
	friends := service.NewFriends(db, rec)
	return &env{
		db:       db,
		events:   rec,
		identity: service.NewIdentity(db, rec).WithHashCost(bcrypt.MinCost),
		friends:  friends,
		posts:    service.NewPosts(db, friends, rec),
		messages: service.NewMessages(db, rec),
	}
}

func (e *env) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.identity.Register(context.Background(), service.RegisterParams{
		Username: name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "password123",
	})
	require.NoError(t, err)
	return u
}

// befriend makes a and b accepted friends.
func (e *env) befriend(t *testing.T, a, b *models.User) {
	t.Helper()
	ctx := context.Background()
	edge, err := e.friends.CreateRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = e.friends.Respond(ctx, edge.ID, b.ID, service.ActionAccept)
	require.NoError(t, err)
}
