package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"socialnet/backend/internal/auth"
	"socialnet/backend/internal/database/databasetest"
	"socialnet/backend/internal/handler"
	"socialnet/backend/internal/hub"
	"socialnet/backend/internal/ratelimit"
	"socialnet/backend/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router  *gin.Engine
	handler *handler.Handler
}

type serverOption func(*handler.Handler, redis.UniversalClient, **ratelimit.Limiter)

func withMessageLimit(n int64) serverOption {
	return func(_ *handler.Handler, rdb redis.UniversalClient, l **ratelimit.Limiter) {
		*l = ratelimit.New(rdb, "messages", n, time.Minute)
	}
}

func withMedia(m handler.MediaStore) serverOption {
	return func(h *handler.Handler, _ redis.UniversalClient, _ **ratelimit.Limiter) {
		h.Media = m
	}
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	db := databasetest.New(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	h := hub.NewHub()
	friends := service.NewFriends(db, h)
	hd := &handler.Handler{
		Users:    service.NewIdentity(db, h).WithHashCost(bcrypt.MinCost),
		Friends:  friends,
		Posts:    service.NewPosts(db, friends, h),
		Messages: service.NewMessages(db, h),
		Sessions: auth.NewSessionStore(rdb, "test-secret", time.Hour, false),
		Hub:      h,
	}

	var limiter *ratelimit.Limiter
	for _, opt := range opts {
		opt(hd, rdb, &limiter)
	}

	return &testServer{router: handler.NewRouter(hd, limiter), handler: hd}
}

// do sends a JSON request. cookie may be nil.
func (s *testServer) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type account struct {
	ID     uint
	Name   string
	Cookie *http.Cookie
}

// signup registers name and logs in.
func (s *testServer) signup(t *testing.T, name string) account {
	t.Helper()

	w := s.do(t, http.MethodPost, "/users", map[string]string{
		"username": name,
		"email":    name + "@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user handler.UserResponse
	decode(t, w, &user)

	w = s.do(t, http.MethodPost, "/login", map[string]string{
		"identifier": name,
		"password":   "password123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return account{ID: user.ID, Name: name, Cookie: sessionCookie(t, w)}
}

// befriend has a request b and b accept.
func (s *testServer) befriend(t *testing.T, a, b account) {
	t.Helper()

	w := s.do(t, http.MethodPost, "/friends", map[string]uint{"friend_id": b.ID}, a.Cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created handler.FriendRequestCreatedResponse
	decode(t, w, &created)

	w = s.do(t, http.MethodPut, fmt.Sprintf("/friends/%d", created.ID), map[string]string{"action": "accept"}, b.Cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			return &http.Cookie{Name: c.Name, Value: c.Value}
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var e handler.ErrorResponse
	decode(t, w, &e)
	return e.Error
}

type fakeMedia struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeMedia) Put(_ context.Context, key, contentType string, r io.Reader, _ int64) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = b
	f.types[key] = contentType
	return nil
}

func (f *fakeMedia) Remove(_ context.Context, key string) error {
	delete(f.objects, key)
	delete(f.types, key)
	return nil
}

func (f *fakeMedia) PresignGet(_ context.Context, key string, _ time.Duration) (*url.URL, error) {
	return url.Parse("http://media.local/bucket/" + key + "?sig=x")
}
