package elastic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbertpopa/itec-web-2025/internal/models"
)

type recorded struct {
	method string
	path   string
	body   map[string]interface{}
}

func newTestRepo(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*CourseSearchRepo, *[]recorded) {
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet && r.URL.Path == "/" {
			_, _ = io.WriteString(w, `{"version":{"number":"8.19.0"}}`)
			return
		}
		rec := recorded{method: r.Method, path: r.URL.Path}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		calls = append(calls, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewCourseSearchRepository(client, "courses"), &calls
}

func TestCourseSearchRepo_Index(t *testing.T) {
	repo, calls := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"result":"created"}`)
	})

	err := repo.Index(context.Background(), models.Course{
		ID:          "c1",
		Name:        "Intro to Go",
		Description: "basics",
		OwnerID:     "u1",
		Lessons:     models.Lessons{"Setup", "", "Types"},
	})
	require.NoError(t, err)
	require.Len(t, *calls, 1)

	call := (*calls)[0]
	assert.Equal(t, http.MethodPut, call.method)
	assert.True(t, strings.HasSuffix(call.path, "/courses/_doc/c1"))
	assert.Equal(t, "Intro to Go", call.body["name"])
	assert.Equal(t, []interface{}{"Setup", "Types"}, call.body["lessons"])
}

func TestCourseSearchRepo_Search(t *testing.T) {
	repo, calls := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"hits":{"hits":[{"_id":"c2"},{"_id":"c1"}]}}`)
	})

	ids, err := repo.Search(context.Background(), "intro", 0, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"c2", "c1"}, ids)

	call := (*calls)[0]
	assert.Equal(t, "/courses/_search", call.path)
	assert.EqualValues(t, 5, call.body["size"])
}

func TestCourseSearchRepo_SearchError(t *testing.T) {
	repo, _ := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"bad query"}`)
	})

	_, err := repo.Search(context.Background(), "intro", 0, 5)
	assert.ErrorContains(t, err, "bad query")
}

func TestCourseSearchRepo_CreateIndexIfNotExist(t *testing.T) {
	repo, calls := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	})

	require.NoError(t, repo.CreateIndexIfNotExist(context.Background()))
	require.Len(t, *calls, 2)
	assert.Equal(t, http.MethodPut, (*calls)[1].method)
	mappings := (*calls)[1].body["mappings"].(map[string]interface{})
	assert.Contains(t, mappings["properties"], "lessons")
}
