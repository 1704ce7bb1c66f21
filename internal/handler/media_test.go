package handler_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"socialnet/backend/internal/handler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func upload(t *testing.T, s *testServer, a account, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(a.Cookie)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestUploadMedia(t *testing.T) {
	store := newFakeMedia()
	s := newTestServer(t, withMedia(store))
	alice := s.signup(t, "alice")

	w := upload(t, s, alice, "dot.png", tinyPNG)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp handler.MediaUploadResponse
	decode(t, w, &resp)
	assert.True(t, strings.HasPrefix(resp.Key, "posts/"), resp.Key)
	assert.True(t, strings.HasSuffix(resp.Key, ".png"), resp.Key)
	assert.Contains(t, resp.URL, resp.Key)
	assert.Equal(t, tinyPNG, store.objects[resp.Key])
	assert.Equal(t, "image/png", store.types[resp.Key])

	w = upload(t, s, alice, "notes.txt", []byte("just text"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(t, s, alice, "big.png", append(append([]byte{}, tinyPNG...), make([]byte, 5<<20)...))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestUploadMediaDisabled(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")

	w := upload(t, s, alice, "dot.png", tinyPNG)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func uploadedPost(t *testing.T, s *testServer, a account) (uint, string) {
	t.Helper()
	w := upload(t, s, a, "dot.png", tinyPNG)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var up handler.MediaUploadResponse
	decode(t, w, &up)

	w = s.do(t, http.MethodPost, "/posts", map[string]string{"content": "pic", "image_url": up.Key}, a.Cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var post handler.PostResponse
	decode(t, w, &post)
	return post.ID, up.Key
}

func TestDeletePostRemovesMedia(t *testing.T) {
	store := newFakeMedia()
	s := newTestServer(t, withMedia(store))
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")

	id, key := uploadedPost(t, s, alice)
	_, bobKey := uploadedPost(t, s, bob)

	// a post pointing at someone else's object does not delete it
	w := s.do(t, http.MethodPost, "/posts", map[string]string{"content": "borrowed", "image_url": bobKey}, alice.Cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	var borrowed handler.PostResponse
	decode(t, w, &borrowed)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/posts/%d", borrowed.ID), nil, alice.Cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, store.objects, bobKey)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/posts/%d", id), nil, alice.Cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, store.objects, key)
}

func TestDeleteUserRemovesMedia(t *testing.T) {
	store := newFakeMedia()
	s := newTestServer(t, withMedia(store))
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")

	_, key := uploadedPost(t, s, alice)
	_, bobKey := uploadedPost(t, s, bob)

	w := s.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", alice.ID), nil, alice.Cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, store.objects, key)
	assert.Contains(t, store.objects, bobKey)
}
