package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/listing"
	"github.com/robbertpopa/itec-web-2025/internal/models"
)

var (
	_ listing.Catalog  = (*Client)(nil)
	_ listing.Profiles = (*Client)(nil)
	_ listing.Covers   = (*Client)(nil)
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/catalog", func(w http.ResponseWriter, r *http.Request) {
		courses := []models.Course{{ID: "k01", Name: "Go"}, {ID: "k02", Name: "Rust"}}
		if r.URL.Query().Get("after") == "k01" {
			courses = courses[1:]
		}
		assert.Equal(t, "8", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"courses": courses})
	})
	mux.HandleFunc("/v1/catalog/recent", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("k"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"courses": []models.Course{{ID: "k09"}}})
	})
	mux.HandleFunc("/v1/users/u1", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized: Missing or invalid token"})
			return
		}
		_ = json.NewEncoder(w).Encode(models.Profile{ID: "u1", FullName: "Ada"})
	})
	mux.HandleFunc("/v1/users/ghost", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "User not found"})
	})
	mux.HandleFunc("/v1/courses/k01/cover", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn/k01.jpg"})
	})
	mux.HandleFunc("/v1/courses/k02/cover", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Image not found"})
	})
	mux.HandleFunc("/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.TokenPair{AccessToken: "tok", RefreshToken: "ref"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Courses(t *testing.T) {
	c := New(newServer(t).URL+"/v1/", "")
	ctx := context.Background()

	courses, err := c.Courses(ctx, "", 8)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "k01", courses[0].ID)

	courses, err = c.Courses(ctx, "k01", 8)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "k02", courses[0].ID)

	recent, err := c.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "k09", recent[0].ID)
}

func TestClient_Profile(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	c := New(srv.URL+"/v1", "")
	_, err := c.Profile(ctx, "u1")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Contains(t, err.Error(), "HTTP 401")

	_, err = c.Login(ctx, "ada@example.com", "secret123")
	require.NoError(t, err)
	p, err := c.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.FullName)

	_, err = c.Profile(ctx, "ghost")
	assert.ErrorIs(t, err, app_errors.ErrUserNotFound)
}

func TestClient_CoverURL(t *testing.T) {
	c := New(newServer(t).URL+"/v1", "")
	ctx := context.Background()

	u, err := c.CoverURL(ctx, "k01")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/k01.jpg", u)

	_, err = c.CoverURL(ctx, "k02")
	assert.ErrorIs(t, err, app_errors.ErrObjectNotFound)
}

func TestIsStatus(t *testing.T) {
	err := &HTTPError{StatusCode: http.StatusTeapot, Message: "short and stout"}
	assert.True(t, IsStatus(err, http.StatusTeapot))
	assert.False(t, IsStatus(err, http.StatusNotFound))
	assert.False(t, IsStatus(assert.AnError, http.StatusTeapot))
}
