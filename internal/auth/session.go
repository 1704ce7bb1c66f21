package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"socialnet/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const SessionCookie = "session_id"

// ErrNoSession means the cookie is missing, tampered with, expired or has
// been destroyed server-side.
var ErrNoSession = errors.New("no active session")

// SessionStore keeps sessions in Redis. The cookie holds a signed token
// carrying the session id; the user it belongs to only lives server-side.
type SessionStore struct {
	rdb    redis.UniversalClient
	secret string
	ttl    time.Duration
	secure bool
}

func NewSessionStore(rdb redis.UniversalClient, secret string, ttl time.Duration, secure bool) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{rdb: rdb, secret: secret, ttl: ttl, secure: secure}
}

func sessionKey(sid string) string { return "session:" + sid }

func userSessionsKey(userID uint) string {
	return "user_sessions:" + strconv.FormatUint(uint64(userID), 10)
}

// Create starts a session for userID and returns the cookie value.
func (s *SessionStore) Create(ctx context.Context, userID uint) (string, error) {
	sid := uuid.New().String()
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(sid), userID, s.ttl)
		pipe.SAdd(ctx, userSessionsKey(userID), sid)
		pipe.Expire(ctx, userSessionsKey(userID), s.ttl)
		return nil
	})
	if err != nil {
		return "", err
	}
	return jwt.GenerateToken(sid, s.ttl, s.secret)
}

// Resolve returns the user bound to the session in token.
func (s *SessionStore) Resolve(ctx context.Context, token string) (uint, error) {
	sid, err := jwt.ParseToken(token, s.secret)
	if err != nil {
		return 0, ErrNoSession
	}
	id, err := s.rdb.Get(ctx, sessionKey(sid)).Uint64()
	if err == redis.Nil {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// Destroy ends the session in token. Unknown sessions are not an error.
func (s *SessionStore) Destroy(ctx context.Context, token string) error {
	sid, err := jwt.ParseToken(token, s.secret)
	if err != nil {
		return nil
	}
	userID, err := s.rdb.GetDel(ctx, sessionKey(sid)).Uint64()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	return s.rdb.SRem(ctx, userSessionsKey(uint(userID)), sid).Err()
}

// RevokeUser ends every session belonging to userID.
func (s *SessionStore) RevokeUser(ctx context.Context, userID uint) error {
	sids, err := s.rdb.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(sids)+1)
	for _, sid := range sids {
		keys = append(keys, sessionKey(sid))
	}
	keys = append(keys, userSessionsKey(userID))
	return s.rdb.Del(ctx, keys...).Err()
}

// SetCookie writes the session cookie on the response.
func (s *SessionStore) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(s.ttl/time.Second), "/", "", s.secure, true)
}

// ClearCookie expires the session cookie on the client.
func (s *SessionStore) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", s.secure, true)
}
