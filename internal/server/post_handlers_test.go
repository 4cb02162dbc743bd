package server

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedPosts extracts the posts array from a feed response.
func feedPosts(t *testing.T, resp *http.Response) []any {
	t.Helper()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	posts, ok := body["posts"].([]any)
	require.True(t, ok, "feed response should carry a posts array")
	return posts
}

func TestCreatePostEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice")

	t.Run("text only", func(t *testing.T) {
		resp := env.doMultipart(t, http.MethodPost, "/api/posts/", "hello world", nil, token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.NotZero(t, body["postId"])
	})

	t.Run("with photos", func(t *testing.T) {
		photos := [][]byte{[]byte("jpeg-bytes-1"), []byte("jpeg-bytes-2")}
		resp := env.doMultipart(t, http.MethodPost, "/api/posts/", "photo post", photos, token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		feed := feedPosts(t, env.doJSON(t, http.MethodGet, "/api/posts/", nil, token))
		require.NotEmpty(t, feed)
		newest := feed[0].(map[string]any)
		got, ok := newest["photos"].([]any)
		require.True(t, ok)
		require.Len(t, got, 2)
		// Photo blobs cross the JSON boundary as base64.
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("jpeg-bytes-1")), got[0])
	})

	t.Run("empty content rejected", func(t *testing.T) {
		resp := env.doMultipart(t, http.MethodPost, "/api/posts/", "", nil, token)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("six photos rejected", func(t *testing.T) {
		photos := make([][]byte, 6)
		for i := range photos {
			photos[i] = []byte{byte(i)}
		}
		resp := env.doMultipart(t, http.MethodPost, "/api/posts/", "too many", photos, token)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})
}

func TestFeedEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice")

	for i := 1; i <= 5; i++ {
		resp := env.doMultipart(t, http.MethodPost, "/api/posts/", fmt.Sprintf("post %d", i), nil, token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	t.Run("newest first with author attached", func(t *testing.T) {
		feed := feedPosts(t, env.doJSON(t, http.MethodGet, "/api/posts/?page=1&limit=3", nil, token))
		require.Len(t, feed, 3)
		first := feed[0].(map[string]any)
		assert.Equal(t, "post 5", first["content"])
		assert.Equal(t, "Test alice", first["author_name"])
	})

	t.Run("empty page is an empty array", func(t *testing.T) {
		feed := feedPosts(t, env.doJSON(t, http.MethodGet, "/api/posts/?page=10&limit=3", nil, token))
		assert.Empty(t, feed)
	})

	t.Run("invalid pagination rejected", func(t *testing.T) {
		resp := env.doJSON(t, http.MethodGet, "/api/posts/?page=0", nil, token)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerAndLogin(t, "alice")
	mallory := env.registerAndLogin(t, "mallory")

	resp := env.doMultipart(t, http.MethodPost, "/api/posts/", "alice's post", nil, alice)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	postID := fmt.Sprintf("%v", created["postId"])

	t.Run("non-author cannot update", func(t *testing.T) {
		resp := env.doMultipart(t, http.MethodPut, "/api/posts/"+postID, "hijacked", nil, mallory)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "FORBIDDEN", body["code"])
	})

	t.Run("author can update", func(t *testing.T) {
		resp := env.doMultipart(t, http.MethodPut, "/api/posts/"+postID, "edited", nil, alice)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		feed := feedPosts(t, env.doJSON(t, http.MethodGet, "/api/posts/", nil, alice))
		newest := feed[0].(map[string]any)
		assert.Equal(t, "edited", newest["content"])
	})

	t.Run("missing post is NotFound, not Forbidden", func(t *testing.T) {
		resp := env.doMultipart(t, http.MethodPut, "/api/posts/99999", "ghost", nil, mallory)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "NOT_FOUND", body["code"])
	})

	t.Run("non-author cannot delete", func(t *testing.T) {
		resp := env.doJSON(t, http.MethodDelete, "/api/posts/"+postID, nil, mallory)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("author deletes and the post leaves the feed", func(t *testing.T) {
		resp := env.doJSON(t, http.MethodDelete, "/api/posts/"+postID, nil, alice)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		feed := feedPosts(t, env.doJSON(t, http.MethodGet, "/api/posts/", nil, alice))
		assert.Empty(t, feed)
	})
}

func TestCommentEndpoint(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerAndLogin(t, "alice")
	bob := env.registerAndLogin(t, "bob")

	resp := env.doMultipart(t, http.MethodPost, "/api/posts/", "commentable", nil, alice)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	postID := fmt.Sprintf("%v", created["postId"])

	t.Run("comment lands in the feed with its author", func(t *testing.T) {
		resp := env.doJSON(t, http.MethodPost, "/api/posts/"+postID+"/comments",
			fiber.Map{"comment": "nice one"}, bob)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.NotZero(t, body["commentId"])

		feed := feedPosts(t, env.doJSON(t, http.MethodGet, "/api/posts/", nil, alice))
		newest := feed[0].(map[string]any)
		comments, ok := newest["comments"].([]any)
		require.True(t, ok)
		require.Len(t, comments, 1)
		comment := comments[0].(map[string]any)
		assert.Equal(t, "nice one", comment["content"])
		assert.Equal(t, "Test bob", comment["author_name"])
	})

	t.Run("missing post is NotFound", func(t *testing.T) {
		resp := env.doJSON(t, http.MethodPost, "/api/posts/99999/comments",
			fiber.Map{"comment": "ghost"}, bob)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("empty comment rejected", func(t *testing.T) {
		resp := env.doJSON(t, http.MethodPost, "/api/posts/"+postID+"/comments",
			fiber.Map{"comment": ""}, bob)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestLikeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerAndLogin(t, "alice")
	bob := env.registerAndLogin(t, "bob")

	resp := env.doMultipart(t, http.MethodPost, "/api/posts/", "likeable", nil, alice)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	postID := fmt.Sprintf("%v", created["postId"])

	toggle := func(t *testing.T, token string) bool {
		resp := env.doJSON(t, http.MethodPost, "/api/posts/"+postID+"/likes", nil, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		liked, ok := body["liked"].(bool)
		require.True(t, ok)
		return liked
	}

	t.Run("toggle pairs cancel out", func(t *testing.T) {
		assert.True(t, toggle(t, bob))
		assert.False(t, toggle(t, bob))
		assert.True(t, toggle(t, bob))
	})

	t.Run("feed reflects count and per-user liked flag", func(t *testing.T) {
		assert.True(t, toggle(t, alice))

		feed := feedPosts(t, env.doJSON(t, http.MethodGet, "/api/posts/", nil, alice))
		newest := feed[0].(map[string]any)
		assert.EqualValues(t, 2, newest["likes_count"])
		assert.Equal(t, true, newest["liked"])

		// A third user sees the same count but no liked flag.
		carol := env.registerAndLogin(t, "carol")
		feed = feedPosts(t, env.doJSON(t, http.MethodGet, "/api/posts/", nil, carol))
		newest = feed[0].(map[string]any)
		assert.EqualValues(t, 2, newest["likes_count"])
		assert.Equal(t, false, newest["liked"])
	})

	t.Run("missing post is NotFound", func(t *testing.T) {
		resp := env.doJSON(t, http.MethodPost, "/api/posts/99999/likes", nil, bob)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})
}
