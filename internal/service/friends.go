package service

import (
	"context"
	"errors"

	"socialnet/backend/internal/events"
	"socialnet/backend/internal/metrics"
	"socialnet/backend/internal/models"

	"gorm.io/gorm"
)

// Action is a recipient's answer to a pending friend request.
type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
)

// Friends manages friend edges. A single row exists per unordered pair of
// users; once accepted it counts in both directions.
type Friends struct {
	db     *gorm.DB
	events events.Publisher
}

// NewFriends creates a Friends backed by db.
func NewFriends(db *gorm.DB, pub events.Publisher) *Friends {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Friends{db: db, events: pub}
}

// CreateRequest opens a pending edge from requesterID to recipientID.
func (s *Friends) CreateRequest(ctx context.Context, requesterID, recipientID uint) (*models.FriendEdge, error) {
	if recipientID == 0 {
		return nil, validation("friend_id required")
	}
	if requesterID == recipientID {
		return nil, validation("cannot add yourself as a friend")
	}

	edge := models.FriendEdge{
		RequesterID: requesterID,
		RecipientID: recipientID,
		Status:      models.StatusPending,
	}
	var requester models.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipient models.User
		if err := tx.Select("id").First(&recipient, recipientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("user not found")
			}
			return err
		}
		if err := tx.Select("id", "username").First(&requester, requesterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("user not found")
			}
			return err
		}

		exists, err := edgeExists(tx, requesterID, recipientID)
		if err != nil {
			return err
		}
		if exists {
			return errEdgeExists
		}

		// The unique index on the canonical pair catches a concurrent request
		// that slipped in between the check above and this insert.
		if err := tx.Omit("Requester", "Recipient").Create(&edge).Error; err != nil {
			if isDuplicateKey(err) {
				return errEdgeExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.FriendRequests.WithLabelValues("requested").Inc()
	s.events.Publish(ctx, events.New(events.FriendRequest, FriendRequestPayload{
		ID:   edge.ID,
		From: UserSummary{ID: requester.ID, Username: requester.Username},
	}, recipientID))
	return &edge, nil
}

var errEdgeExists = conflict("friend request already exists or you are already friends")

// Respond applies the recipient's answer to a pending request. Accepting
// flips the status; rejecting deletes the row so a new request can be made
// later. The returned edge is the accepted one, or the deleted one on reject.
func (s *Friends) Respond(ctx context.Context, edgeID, actorID uint, action Action) (*models.FriendEdge, error) {
	if action != ActionAccept && action != ActionReject {
		return nil, validation("action must be accept or reject")
	}

	var edge models.FriendEdge
	var recipient models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&edge, edgeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("friend request not found")
			}
			return err
		}
		if edge.RecipientID != actorID {
			return forbidden("only the recipient can respond to a friend request")
		}
		if edge.Status != models.StatusPending {
			return conflict("friend request already accepted")
		}

		if action == ActionReject {
			return tx.Delete(&edge).Error
		}
		if err := tx.Model(&edge).Update("status", models.StatusAccepted).Error; err != nil {
			return err
		}
		edge.Status = models.StatusAccepted
		return tx.Select("id", "username").First(&recipient, actorID).Error
	})
	if err != nil {
		return nil, err
	}

	if action == ActionReject {
		metrics.FriendRequests.WithLabelValues("rejected").Inc()
		return &edge, nil
	}

	metrics.FriendRequests.WithLabelValues("accepted").Inc()
	s.events.Publish(ctx, events.New(events.FriendAccepted, FriendRequestPayload{
		ID:   edge.ID,
		From: UserSummary{ID: recipient.ID, Username: recipient.Username},
	}, edge.RequesterID))
	return &edge, nil
}

// Remove deletes an edge in any state. Either side may do it: the requester
// cancels a pending request, and either friend can unfriend.
func (s *Friends) Remove(ctx context.Context, edgeID, actorID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var edge models.FriendEdge
		if err := tx.First(&edge, edgeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("friend request not found")
			}
			return err
		}
		if edge.RequesterID != actorID && edge.RecipientID != actorID {
			return forbidden("you are not part of this friendship")
		}
		if err := tx.Delete(&edge).Error; err != nil {
			return err
		}
		metrics.FriendRequests.WithLabelValues("removed").Inc()
		return nil
	})
}

// ListAccepted returns the ids of every accepted friend of userID, whichever
// side of the edge they are stored on.
func (s *Friends) ListAccepted(ctx context.Context, userID uint) ([]uint, error) {
	var edges []models.FriendEdge
	err := s.db.WithContext(ctx).
		Select("requester_id", "recipient_id").
		Where("(requester_id = ? OR recipient_id = ?) AND status = ?", userID, userID, models.StatusAccepted).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(edges))
	for i := range edges {
		ids = append(ids, edges[i].Other(userID))
	}
	return ids, nil
}

// ListFriends returns the accepted friends of userID as users, by username.
func (s *Friends) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	ids, err := s.ListAccepted(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListPending returns pending requests addressed to userID, oldest first, with
// the requester loaded.
func (s *Friends) ListPending(ctx context.Context, userID uint) ([]models.FriendEdge, error) {
	var edges []models.FriendEdge
	err := s.db.WithContext(ctx).
		Preload("Requester").
		Where("recipient_id = ? AND status = ?", userID, models.StatusPending).
		Order("created_at ASC, id ASC").
		Find(&edges).Error
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// AreFriends reports whether an accepted edge joins a and b.
func (s *Friends) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	return areFriends(s.db.WithContext(ctx), a, b)
}

// Status describes the edge between viewerID and otherID from the viewer's
// side: "", "accepted", "pending_outgoing" or "pending_incoming".
func (s *Friends) Status(ctx context.Context, viewerID, otherID uint) (string, error) {
	lo, hi := models.OrderedPair(viewerID, otherID)
	var edge models.FriendEdge
	err := s.db.WithContext(ctx).Where("user_low_id = ? AND user_high_id = ?", lo, hi).First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	switch {
	case edge.Status == models.StatusAccepted:
		return string(models.StatusAccepted), nil
	case edge.RequesterID == viewerID:
		return "pending_outgoing", nil
	default:
		return "pending_incoming", nil
	}
}

func areFriends(db *gorm.DB, a, b uint) (bool, error) {
	if a == b {
		return false, nil
	}
	lo, hi := models.OrderedPair(a, b)
	var count int64
	err := db.Model(&models.FriendEdge{}).
		Where("user_low_id = ? AND user_high_id = ? AND status = ?", lo, hi, models.StatusAccepted).
		Count(&count).Error
	return count > 0, err
}

func edgeExists(db *gorm.DB, a, b uint) (bool, error) {
	lo, hi := models.OrderedPair(a, b)
	var count int64
	err := db.Model(&models.FriendEdge{}).
		Where("user_low_id = ? AND user_high_id = ?", lo, hi).
		Count(&count).Error
	return count > 0, err
}

// FriendRequestPayload is the event payload for friend request transitions.
type FriendRequestPayload struct {
	ID   uint        `json:"id"`
	From UserSummary `json:"from"`
}
