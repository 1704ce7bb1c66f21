package service_test

import (
	"context"
	"testing"
	"time"

	"socialnet/backend/internal/events"
	"socialnet/backend/internal/models"
	"socialnet/backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAcceptedFriendshipIsSymmetric(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")

	edge, err := e.friends.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, edge.Status)

	ok, err := e.friends.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok, "pending edge is not a friendship")

	accepted, err := e.friends.Respond(ctx, edge.ID, bob.ID, service.ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, accepted.Status)

	ab, err := e.friends.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	ba, err := e.friends.AreFriends(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ab)
	assert.True(t, ba)

	aliceFriends, err := e.friends.ListAccepted(ctx, alice.ID)
	require.NoError(t, err)
	bobFriends, err := e.friends.ListAccepted(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, aliceFriends)
	assert.Equal(t, []uint{alice.ID}, bobFriends)

	assert.Contains(t, e.events.Types(), events.FriendRequest)
	assert.Contains(t, e.events.Types(), events.FriendAccepted)
}

func TestDuplicateRequestConflicts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")

	edge, err := e.friends.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = e.friends.CreateRequest(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, service.ErrConflict)
	_, err = e.friends.CreateRequest(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = e.friends.Respond(ctx, edge.ID, bob.ID, service.ActionAccept)
	require.NoError(t, err)

	_, err = e.friends.CreateRequest(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, service.ErrConflict)
	_, err = e.friends.CreateRequest(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestSelfRequestIsInvalid(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")

	_, err := e.friends.CreateRequest(ctx, alice.ID, alice.ID)
	assert.ErrorIs(t, err, service.ErrValidation)

	// Still invalid once alice has other edges.
	e.befriend(t, alice, bob)
	_, err = e.friends.CreateRequest(ctx, alice.ID, alice.ID)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestRequestToUnknownUser(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")

	_, err := e.friends.CreateRequest(context.Background(), alice.ID, 9999)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRejectDeletesEdge(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")

	edge, err := e.friends.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = e.friends.Respond(ctx, edge.ID, bob.ID, service.ActionReject)
	require.NoError(t, err)

	var count int64
	e.db.Model(&models.FriendEdge{}).Count(&count)
	assert.Zero(t, count)

	// Either side may try again.
	_, err = e.friends.CreateRequest(ctx, bob.ID, alice.ID)
	assert.NoError(t, err)
}

func TestRespondAuthorization(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob, carol := e.user(t, "alice"), e.user(t, "bob"), e.user(t, "carol")

	edge, err := e.friends.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = e.friends.Respond(ctx, edge.ID, alice.ID, service.ActionAccept)
	assert.ErrorIs(t, err, service.ErrForbidden, "requester cannot accept their own request")
	_, err = e.friends.Respond(ctx, edge.ID, carol.ID, service.ActionReject)
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = e.friends.Respond(ctx, edge.ID+100, bob.ID, service.ActionAccept)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = e.friends.Respond(ctx, edge.ID, bob.ID, service.Action("maybe"))
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = e.friends.Respond(ctx, edge.ID, bob.ID, service.ActionAccept)
	require.NoError(t, err)
	_, err = e.friends.Respond(ctx, edge.ID, bob.ID, service.ActionAccept)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestListPending(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob, carol := e.user(t, "alice"), e.user(t, "bob"), e.user(t, "carol")

	_, err := e.friends.CreateRequest(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	_, err = e.friends.CreateRequest(ctx, bob.ID, carol.ID)
	require.NoError(t, err)
	_, err = e.friends.CreateRequest(ctx, carol.ID, e.user(t, "dave").ID)
	require.NoError(t, err)

	pending, err := e.friends.ListPending(ctx, carol.ID)
	require.NoError(t, err)
	require.Len(t, pending, 2, "outgoing requests are not listed")
	assert.Equal(t, "alice", pending[0].Requester.Username)
	assert.Equal(t, "bob", pending[1].Requester.Username)

	none, err := e.friends.ListPending(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListFriendsIgnoresDirectionAndPending(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob, carol, dave := e.user(t, "alice"), e.user(t, "bob"), e.user(t, "carol"), e.user(t, "dave")

	e.befriend(t, alice, bob)
	e.befriend(t, carol, alice)
	_, err := e.friends.CreateRequest(ctx, alice.ID, dave.ID)
	require.NoError(t, err)

	friends, err := e.friends.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	var names []string
	for _, f := range friends {
		names = append(names, f.Username)
	}
	assert.Equal(t, []string{"bob", "carol"}, names)
}

func TestRemove(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob, carol := e.user(t, "alice"), e.user(t, "bob"), e.user(t, "carol")

	edge, err := e.friends.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = e.friends.Respond(ctx, edge.ID, bob.ID, service.ActionAccept)
	require.NoError(t, err)

	assert.ErrorIs(t, e.friends.Remove(ctx, edge.ID, carol.ID), service.ErrForbidden)
	require.NoError(t, e.friends.Remove(ctx, edge.ID, bob.ID))
	assert.ErrorIs(t, e.friends.Remove(ctx, edge.ID, bob.ID), service.ErrNotFound)

	ok, err := e.friends.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")

	s, err := e.friends.Status(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	edge, err := e.friends.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	s, _ = e.friends.Status(ctx, alice.ID, bob.ID)
	assert.Equal(t, "pending_outgoing", s)
	s, _ = e.friends.Status(ctx, bob.ID, alice.ID)
	assert.Equal(t, "pending_incoming", s)

	_, err = e.friends.Respond(ctx, edge.ID, bob.ID, service.ActionAccept)
	require.NoError(t, err)
	s, _ = e.friends.Status(ctx, bob.ID, alice.ID)
	assert.Equal(t, "accepted", s)
}

func TestConcurrentReverseRequestHitsUniqueIndex(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice, bob := e.user(t, "alice"), e.user(t, "bob")

	// Bob's request lands after alice's existence check but before her insert.
	var raced bool
	err := e.db.Callback().Create().Before("gorm:create").Register("race:reverse_request", func(tx *gorm.DB) {
		edge, ok := tx.Statement.Dest.(*models.FriendEdge)
		if !ok || raced {
			return
		}
		raced = true
		lo, hi := models.OrderedPair(edge.RequesterID, edge.RecipientID)
		now := time.Now()
		_, execErr := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"INSERT INTO friend_edges (requester_id, recipient_id, user_low_id, user_high_id, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			edge.RecipientID, edge.RequesterID, lo, hi, string(models.StatusPending), now, now)
		tx.AddError(execErr)
	})
	require.NoError(t, err)

	_, err = e.friends.CreateRequest(ctx, alice.ID, bob.ID)
	require.True(t, raced)
	require.ErrorIs(t, err, service.ErrConflict)

	var count int64
	require.NoError(t, e.db.Model(&models.FriendEdge{}).Count(&count).Error)
	assert.Zero(t, count, "failed request rolls back with its transaction")
}
