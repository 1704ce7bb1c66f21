package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"socialnet/backend/internal/events"
	"socialnet/backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SearchLimit caps the number of users returned by Search.
const SearchLimit = 50

const invalidCredentials = "invalid credentials"

// Identity manages user accounts.
type Identity struct {
	db     *gorm.DB
	events events.Publisher
	cost   int
}

// NewIdentity creates an Identity backed by db.
func NewIdentity(db *gorm.DB, pub events.Publisher) *Identity {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Identity{db: db, events: pub, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost. Tests and the seeder use
// bcrypt.MinCost to keep things fast.
func (s *Identity) WithHashCost(cost int) *Identity {
	s.cost = cost
	return s
}

// RegisterParams holds the fields needed to create an account.
type RegisterParams struct {
	Username string
	Email    string
	Password string
}

// Register creates a new user with a bcrypt-hashed password.
func (s *Identity) Register(ctx context.Context, p RegisterParams) (*models.User, error) {
	username := strings.TrimSpace(p.Username)
	email := strings.TrimSpace(p.Email)
	if username == "" || email == "" || p.Password == "" {
		return nil, validation("username, email and password are required")
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("username = ? OR email = ?", username, email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict("username or email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Username: username, Email: email, PasswordHash: string(hash)}
	if err := db.Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, conflict("username or email already exists")
		}
		return nil, err
	}

	s.events.Publish(ctx, events.New(events.UserRegistered, UserSummary{ID: user.ID, Username: user.Username}))
	return &user, nil
}

// Authenticate resolves identifier as a username or an email and checks the
// password. Every failure is reported the same way so callers cannot tell an
// unknown account from a wrong password.
func (s *Identity) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, validation("missing credentials")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("username = ? OR email = ?", identifier, identifier).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, unauthorized(invalidCredentials)
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, unauthorized(invalidCredentials)
	}
	return &user, nil
}

// Get returns a single user.
func (s *Identity) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns one page of users ordered by id, along with the total count.
func (s *Identity) List(ctx context.Context, page Page) ([]models.User, int64, error) {
	db := s.db.WithContext(ctx).Model(&models.User{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := page.apply(db.Order("id ASC")).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateParams holds the fields of a partial update; nil means unchanged.
type UpdateParams struct {
	Username *string
	Email    *string
	Password *string
}

// Update changes the given fields of userID. Only the user themselves may do it.
func (s *Identity) Update(ctx context.Context, userID, actorID uint, p UpdateParams) (*models.User, error) {
	if userID != actorID {
		return nil, forbidden("you can only update your own account")
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if p.Username != nil {
		username := strings.TrimSpace(*p.Username)
		if username == "" {
			return nil, validation("username cannot be empty")
		}
		updates["username"] = username
	}
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		if email == "" {
			return nil, validation("email cannot be empty")
		}
		updates["email"] = email
	}
	if p.Password != nil {
		if *p.Password == "" {
			return nil, validation("password cannot be empty")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*p.Password), s.cost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updates["password_hash"] = string(hash)
	}
	if len(updates) == 0 {
		return user, nil
	}

	db := s.db.WithContext(ctx)
	if err := s.ensureUnique(db, userID, updates); err != nil {
		return nil, err
	}
	if err := db.Model(user).Updates(updates).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, conflict("username or email already exists")
		}
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *Identity) ensureUnique(db *gorm.DB, userID uint, updates map[string]any) error {
	for _, col := range []string{"username", "email"} {
		v, ok := updates[col]
		if !ok {
			continue
		}
		var count int64
		if err := db.Model(&models.User{}).Where(col+" = ? AND id <> ?", v, userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflict(col + " already exists")
		}
	}
	return nil
}

// Delete removes the account and everything it owns in one transaction. It
// returns the media references of the deleted posts.
func (s *Identity) Delete(ctx context.Context, userID, actorID uint) ([]string, error) {
	if userID != actorID {
		return nil, forbidden("you can only delete your own account")
	}

	var media []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("user not found")
			}
			return err
		}
		if err := tx.Where("sender_id = ? OR receiver_id = ?", userID, userID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).
			Where("author_id = ? AND image_url IS NOT NULL", userID).
			Pluck("image_url", &media).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", userID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("requester_id = ? OR recipient_id = ?", userID, userID).Delete(&models.FriendEdge{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return media, nil
}

// Search does a case-insensitive substring match on username, leaving out
// the caller. An empty query matches nothing.
func (s *Identity) Search(ctx context.Context, query string, excludingID uint) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.User{}, nil
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(username) LIKE ? ESCAPE '!'", "%"+escapeLike(strings.ToLower(query))+"%").
		Where("id <> ?", excludingID).
		Order("username ASC").
		Limit(SearchLimit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
