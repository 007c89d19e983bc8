package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"postboard/app/models"
	"postboard/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) do(method, target, body, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedPost(t *testing.T, title string) *models.Post {
	post := &models.Post{Title: title, Content: "content of " + title, Author: "admin"}
	_, err := e.posts.Insert(context.Background(), post)
	require.NoError(t, err)
	return post
}

func TestPostAPI(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("create post", func(t *testing.T) {
		w := env.do("POST", "/api/post", `{"title": "Test Post", "content": "Body", "author": "admin"}`, "application/json")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "/api/post/1", w.Header().Get("Location"))

		var post models.Post
		require.NoError(t, json.NewDecoder(w.Body).Decode(&post))
		assert.Equal(t, int64(1), post.ID)
		assert.Equal(t, "Test Post", post.Title)
		assert.False(t, post.CreatedTime.IsZero())
	})

	t.Run("create invalid post", func(t *testing.T) {
		w := env.do("POST", "/api/post", `{"title": "", "content": "Body"}`, "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body errorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "required", body.Fields["title"])
		assert.Equal(t, "required", body.Fields["author"])
	})

	t.Run("create with malformed JSON", func(t *testing.T) {
		w := env.do("POST", "/api/post", `{"title":`, "application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid JSON")
	})

	t.Run("list posts", func(t *testing.T) {
		env.seedPost(t, "Second")

		w := env.do("GET", "/api/post", "", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var posts []models.Post
		require.NoError(t, json.NewDecoder(w.Body).Decode(&posts))
		require.Len(t, posts, 2)
		assert.Equal(t, "Second", posts[0].Title)
	})

	t.Run("get post with etag", func(t *testing.T) {
		w := env.do("GET", "/api/post/1", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		etag := w.Header().Get("ETag")
		require.NotEmpty(t, etag)
		assert.Len(t, etag, 66)

		req := httptest.NewRequest("GET", "/api/post/1", nil)
		req.Header.Set("If-None-Match", etag)
		cached := httptest.NewRecorder()
		env.router.ServeHTTP(cached, req)
		assert.Equal(t, http.StatusNotModified, cached.Code)
		assert.Zero(t, cached.Body.Len())
	})

	t.Run("get missing post", func(t *testing.T) {
		w := env.do("GET", "/api/post/999", "", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), `"error"`)

		w = env.do("GET", "/api/post/abc", "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update post changes etag", func(t *testing.T) {
		before := env.do("GET", "/api/post/1", "", "").Header().Get("ETag")

		w := env.do("PUT", "/api/post/1", `{"title": "Updated", "content": "New body"}`, "application/json")
		assert.Equal(t, http.StatusOK, w.Code)

		var post models.Post
		require.NoError(t, json.NewDecoder(w.Body).Decode(&post))
		assert.Equal(t, "Updated", post.Title)
		assert.Equal(t, "admin", post.Author)

		after := env.do("GET", "/api/post/1", "", "").Header().Get("ETag")
		assert.NotEqual(t, before, after)
	})

	t.Run("update missing post", func(t *testing.T) {
		w := env.do("PUT", "/api/post/999", `{"title": "x", "content": "y"}`, "application/json")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("search posts", func(t *testing.T) {
		w := env.do("GET", "/api/post/search?category=t&keyword=upd", "", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var posts []models.Post
		require.NoError(t, json.NewDecoder(w.Body).Decode(&posts))
		require.Len(t, posts, 1)
		assert.Equal(t, int64(1), posts[0].ID)

		w = env.do("GET", "/api/post/search?category=zz&keyword=upd", "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete post", func(t *testing.T) {
		w := env.do("DELETE", "/api/post/1", "", "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = env.do("DELETE", "/api/post/1", "", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("storage errors", func(t *testing.T) {
		tests := []struct {
			name       string
			err        error
			status     int
			retryAfter string
			hidden     bool
		}{
			{"unavailable", repositories.NewStoreError("post.list", repositories.KindUnavailable, errors.New("conn refused")), http.StatusServiceUnavailable, "", false},
			{"transient", repositories.NewStoreError("post.list", repositories.KindTransient, errors.New("deadlock")), http.StatusServiceUnavailable, "1", false},
			{"internal", errors.New("secret driver detail"), http.StatusInternalServerError, "", true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				env.posts.Err = tt.err
				defer func() { env.posts.Err = nil }()

				w := env.do("GET", "/api/post", "", "")
				assert.Equal(t, tt.status, w.Code)
				assert.Equal(t, tt.retryAfter, w.Header().Get("Retry-After"))
				if tt.hidden {
					assert.NotContains(t, w.Body.String(), "secret")
					assert.Equal(t, "request failed", env.hook.LastEntry().Message)
				}
			})
		}
	})
}

func TestPostViews(t *testing.T) {
	env := setupTestEnv(t)
	post := env.seedPost(t, "Hello View")

	t.Run("list page", func(t *testing.T) {
		w := env.do("GET", "/post/list", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "Hello View")
	})

	t.Run("list as JSON by Accept header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/post/list", nil)
		req.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		var posts []models.Post
		require.NoError(t, json.NewDecoder(w.Body).Decode(&posts))
		assert.Len(t, posts, 1)
	})

	t.Run("details page with comments", func(t *testing.T) {
		_, err := env.comments.Insert(context.Background(), &models.Comment{PostID: post.ID, Content: "great read", Writer: "guest"})
		require.NoError(t, err)

		w := env.do("GET", "/post/details?id=1", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "content of Hello View")
		assert.Contains(t, w.Body.String(), "great read")
	})

	t.Run("details errors", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, env.do("GET", "/post/details", "", "").Code)
		assert.Equal(t, http.StatusNotFound, env.do("GET", "/post/details?id=77", "", "").Code)
	})

	t.Run("create form", func(t *testing.T) {
		w := env.do("GET", "/post/create", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `action="/post/create"`)
	})

	t.Run("create from form redirects to list", func(t *testing.T) {
		form := url.Values{"title": {"From Form"}, "content": {"typed"}, "author": {"kim"}}
		w := env.do("POST", "/post/create", form.Encode(), "application/x-www-form-urlencoded")

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/post/list", w.Header().Get("Location"))

		posts, err := env.posts.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "From Form", posts[0].Title)
	})

	t.Run("invalid form is shown again", func(t *testing.T) {
		form := url.Values{"title": {"Half done"}, "author": {"kim"}}
		w := env.do("POST", "/post/create", form.Encode(), "application/x-www-form-urlencoded")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `value="Half done"`)
		assert.Contains(t, w.Body.String(), "invalid input")
	})

	t.Run("modify form", func(t *testing.T) {
		w := env.do("GET", "/post/modify?id=1", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `action="/post/update"`)
		assert.Contains(t, w.Body.String(), "Hello View")
	})

	t.Run("update from form redirects to details", func(t *testing.T) {
		form := url.Values{"id": {"1"}, "title": {"Renamed"}, "content": {"edited"}}
		w := env.do("POST", "/post/update", form.Encode(), "application/x-www-form-urlencoded")

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/post/details?id=1", w.Header().Get("Location"))

		got, err := env.posts.GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
	})

	t.Run("update with bad id", func(t *testing.T) {
		form := url.Values{"id": {"x"}, "title": {"t"}, "content": {"c"}}
		w := env.do("POST", "/post/update", form.Encode(), "application/x-www-form-urlencoded")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("search page", func(t *testing.T) {
		w := env.do("GET", "/post/search?category=a&keyword=KIM", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "From Form")
		assert.NotContains(t, w.Body.String(), "Renamed")
		assert.Contains(t, w.Body.String(), `value="KIM"`)
	})

	t.Run("delete redirects to list", func(t *testing.T) {
		w := env.do("GET", "/post/delete?id=1", "", "")
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/post/list", w.Header().Get("Location"))

		got, err := env.posts.GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
