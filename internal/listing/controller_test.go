package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

type fakeCatalog struct {
	mu      sync.Mutex
	courses []models.Course
	calls   int
	err     error
	gate    chan struct{}
}

func (f *fakeCatalog) Courses(ctx context.Context, after string, limit int) ([]models.Course, error) {
	f.mu.Lock()
	f.calls++
	err, gate := f.err, f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	start := 0
	if after != "" {
		start = len(f.courses)
		for i, c := range f.courses {
			if c.ID == after {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(f.courses) {
		end = len(f.courses)
	}
	out := make([]models.Course, end-start)
	copy(out, f.courses[start:end])
	return out, nil
}

func (f *fakeCatalog) Recent(_ context.Context, k int) ([]models.Course, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if k > len(f.courses) {
		k = len(f.courses)
	}
	out := make([]models.Course, k)
	copy(out, f.courses[len(f.courses)-k:])
	return out, nil
}

func (f *fakeCatalog) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeCatalog) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type fakeProfiles map[string]models.Profile

func (f fakeProfiles) Profile(_ context.Context, userID string) (models.Profile, error) {
	p, ok := f[userID]
	if !ok {
		return models.Profile{}, app_errors.ErrUserNotFound
	}
	return p, nil
}

type fakeCovers struct {
	urls  map[string]string
	stall bool
}

func (f *fakeCovers) CoverURL(ctx context.Context, courseID string) (string, error) {
	if f.stall {
		<-ctx.Done()
		return "", ctx.Err()
	}
	u, ok := f.urls[courseID]
	if !ok {
		return "", app_errors.ErrObjectNotFound
	}
	return u, nil
}

func seed(n int) *fakeCatalog {
	f := &fakeCatalog{}
	for i := 1; i <= n; i++ {
		f.courses = append(f.courses, models.Course{
			ID:          fmt.Sprintf("k%d", i),
			Name:        fmt.Sprintf("Course %d", i),
			Description: "plain",
			OwnerID:     "u1",
			CreatedAt:   fmt.Sprintf("2025-01-%02dT00:00:00Z", i),
		})
	}
	return f
}

func newController(catalog Catalog, opts Options) *Controller {
	profiles := fakeProfiles{"u1": {FullName: "Ada Lovelace", ProfilePicture: "https://img/ada.jpg"}}
	covers := &fakeCovers{urls: map[string]string{}}
	return NewController(logger.Discard(), catalog, profiles, covers, opts)
}

func ids(items []models.CoursePreview) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		count, size, want int
	}{
		{0, 8, 1},
		{1, 8, 1},
		{8, 8, 1},
		{9, 8, 2},
		{10, 8, 2},
		{16, 8, 2},
		{17, 8, 3},
		{5, 1, 5},
		{7, 3, 3},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.count, tt.size), func(t *testing.T) {
			assert.Equal(t, tt.want, TotalPages(tt.count, tt.size))
		})
	}
}

func TestController_KeyRangePages(t *testing.T) {
	catalog := seed(10)
	c := newController(catalog, Options{PageSize: 8})
	defer c.Close()
	ctx := context.Background()

	first, err := c.LoadPage(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k2", "k3", "k4", "k5", "k6", "k7", "k8"}, ids(first.Items))
	assert.True(t, first.HasMore)
	assert.Equal(t, "k8", first.Cursor)

	second, err := c.LoadPage(ctx, "k8")
	require.NoError(t, err)
	assert.Equal(t, []string{"k9", "k10"}, ids(second.Items))
	assert.False(t, second.HasMore)

	v := c.View()
	assert.Equal(t, Loaded, v.Status)
	assert.Equal(t, 2, v.Page)
	assert.Equal(t, 2, v.TotalPages)
	assert.Equal(t, 10, v.Loaded)
	assert.Equal(t, []string{"k9", "k10"}, ids(v.Items))
}

func TestController_ReloadIsIdempotent(t *testing.T) {
	catalog := seed(20)
	c := newController(catalog, Options{PageSize: 8})
	defer c.Close()
	ctx := context.Background()

	_, err := c.LoadPage(ctx, "")
	require.NoError(t, err)
	p2a, err := c.LoadPage(ctx, "k8")
	require.NoError(t, err)
	p2b, err := c.LoadPage(ctx, "k8")
	require.NoError(t, err)

	assert.Equal(t, ids(p2a.Items), ids(p2b.Items))
	assert.Equal(t, 16, c.View().Loaded)

	p1, err := c.LoadPage(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k2", "k3", "k4", "k5", "k6", "k7", "k8"}, ids(p1.Items))
	assert.Equal(t, 8, c.View().Loaded)
	assert.Equal(t, 1, c.View().Page)
}

func TestController_FilterIsLocalAndCaseInsensitive(t *testing.T) {
	catalog := seed(10)
	catalog.courses[1].Name = "Intro to Go"
	catalog.courses[4].Description = "An INTRODUCTION to channels"
	catalog.courses[9].Name = "intro again"

	c := newController(catalog, Options{PageSize: 8})
	defer c.Close()
	ctx := context.Background()

	_, err := c.LoadPage(ctx, "")
	require.NoError(t, err)
	_, err = c.LoadPage(ctx, "k8")
	require.NoError(t, err)
	require.NoError(t, c.GoToPage(2))
	calls := catalog.Calls()

	c.ApplyFilter("intro")
	lower := c.View()
	c.ApplyFilter("INTRO")
	upper := c.View()

	assert.Equal(t, []string{"k2", "k5", "k10"}, ids(lower.Items))
	assert.Equal(t, ids(lower.Items), ids(upper.Items))
	assert.Equal(t, 1, lower.Page)
	assert.Equal(t, 1, lower.TotalPages)
	assert.Equal(t, calls, catalog.Calls(), "filtering must not query the catalog")
}

func TestController_ClearFilterRestoresPageOne(t *testing.T) {
	catalog := seed(12)
	c := newController(catalog, Options{PageSize: 4})
	defer c.Close()
	ctx := context.Background()

	_, err := c.LoadPage(ctx, "")
	require.NoError(t, err)
	before := c.View()

	c.ApplyFilter("course 3")
	require.Equal(t, []string{"k3"}, ids(c.View().Items))

	c.ApplyFilter("")
	after := c.View()
	assert.Equal(t, ids(before.Items), ids(after.Items))
	assert.Equal(t, 1, after.Page)
	assert.Equal(t, "", after.Term)
}

func TestController_FilteredTotalPagesCountsFetchedOnly(t *testing.T) {
	catalog := seed(30)
	c := newController(catalog, Options{PageSize: 8})
	defer c.Close()

	_, err := c.LoadPage(context.Background(), "")
	require.NoError(t, err)

	c.ApplyFilter("course")
	assert.Equal(t, 1, c.TotalPages())
	assert.ErrorIs(t, c.GoToPage(2), app_errors.ErrPageOutOfRange)

	c.ApplyFilter("course 3")
	v := c.View()
	assert.Equal(t, []string{"k3"}, ids(v.Items), "k30 is not fetched yet")
	assert.Equal(t, 1, v.TotalPages)
}

func TestController_EnrichmentFallbacks(t *testing.T) {
	catalog := seed(3)
	catalog.courses[1].OwnerID = "ghost"
	catalog.courses[2].OwnerID = "nameless"

	profiles := fakeProfiles{
		"u1":       {FullName: "Ada Lovelace", ProfilePicture: "https://img/ada.jpg"},
		"nameless": {ProfilePicture: "https://img/anon.jpg"},
	}
	covers := &fakeCovers{urls: map[string]string{"k1": "https://blob/k1.jpg"}}
	c := NewController(logger.Discard(), catalog, profiles, covers, Options{PageSize: 8})
	defer c.Close()

	page, err := c.LoadPage(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, page.Items, 3)

	assert.Equal(t, "https://blob/k1.jpg", page.Items[0].ImageURL)
	assert.Equal(t, "Ada Lovelace", page.Items[0].AuthorName)
	assert.Equal(t, "https://img/ada.jpg", page.Items[0].OwnerProfilePicture)

	assert.Equal(t, "", page.Items[1].ImageURL, "missing cover means no image")
	assert.Equal(t, UnknownAuthor, page.Items[1].AuthorName)
	assert.Equal(t, "", page.Items[1].OwnerProfilePicture)

	assert.Equal(t, UnknownAuthor, page.Items[2].AuthorName)
	assert.Equal(t, "https://img/anon.jpg", page.Items[2].OwnerProfilePicture)
	assert.Equal(t, Loaded, c.View().Status)
}

func TestController_LookupTimeoutFallsBack(t *testing.T) {
	catalog := seed(2)
	profiles := fakeProfiles{"u1": {FullName: "Ada Lovelace"}}
	covers := &fakeCovers{stall: true}
	c := NewController(logger.Discard(), catalog, profiles, covers, Options{PageSize: 8, LookupTimeout: 20 * time.Millisecond})
	defer c.Close()

	start := time.Now()
	page, err := c.LoadPage(context.Background(), "")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	for _, p := range page.Items {
		assert.Equal(t, "", p.ImageURL)
		assert.Equal(t, "Ada Lovelace", p.AuthorName)
	}
}

func TestController_FailureKeepsDataAndRetries(t *testing.T) {
	catalog := seed(10)
	c := newController(catalog, Options{PageSize: 8})
	defer c.Close()
	ctx := context.Background()

	_, err := c.LoadPage(ctx, "")
	require.NoError(t, err)

	boom := errors.New("store unavailable")
	catalog.setErr(boom)
	_, err = c.LoadPage(ctx, "k8")
	assert.ErrorIs(t, err, boom)

	v := c.View()
	assert.Equal(t, Failed, v.Status)
	assert.ErrorIs(t, v.Err, boom)
	assert.Equal(t, 8, v.Loaded)
	assert.Len(t, v.Items, 8)

	catalog.setErr(nil)
	page, err := c.Retry(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"k9", "k10"}, ids(page.Items))
	assert.Equal(t, Loaded, c.View().Status)
	assert.Nil(t, c.View().Err)
}

func TestController_CoalescesConcurrentLoads(t *testing.T) {
	catalog := seed(10)
	catalog.gate = make(chan struct{})
	c := newController(catalog, Options{PageSize: 8})
	defer c.Close()

	var wg sync.WaitGroup
	results := make([]Page, 3)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := c.LoadPage(context.Background(), "")
			assert.NoError(t, err)
			results[i] = p
		}()
	}

	assert.Eventually(t, func() bool { return catalog.Calls() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(catalog.gate)
	wg.Wait()

	assert.Equal(t, 1, catalog.Calls())
	for _, r := range results {
		assert.Equal(t, ids(results[0].Items), ids(r.Items))
	}
}

func TestController_CloseDiscardsInFlight(t *testing.T) {
	catalog := seed(10)
	catalog.gate = make(chan struct{})
	c := newController(catalog, Options{PageSize: 8})

	done := make(chan error, 1)
	go func() {
		_, err := c.LoadPage(context.Background(), "")
		done <- err
	}()
	assert.Eventually(t, func() bool { return catalog.Calls() == 1 }, time.Second, 5*time.Millisecond)

	c.Close()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, app_errors.ErrControllerClosed)
	case <-time.After(time.Second):
		t.Fatal("LoadPage did not return after Close")
	}

	v := c.View()
	assert.Equal(t, 0, v.Loaded)
	assert.NotEqual(t, Failed, v.Status)

	_, err := c.LoadPage(context.Background(), "")
	assert.ErrorIs(t, err, app_errors.ErrControllerClosed)
}

func TestController_CallerCancel(t *testing.T) {
	catalog := seed(10)
	catalog.gate = make(chan struct{})
	c := newController(catalog, Options{PageSize: 8})
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.LoadPage(ctx, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Failed, c.View().Status)
	close(catalog.gate)
}

func TestController_NextAndPrev(t *testing.T) {
	catalog := seed(10)
	c := newController(catalog, Options{PageSize: 4})
	defer c.Close()
	ctx := context.Background()

	_, err := c.LoadPage(ctx, "")
	require.NoError(t, err)
	assert.ErrorIs(t, c.Prev(), app_errors.ErrPageOutOfRange)

	require.NoError(t, c.Next(ctx))
	v := c.View()
	assert.Equal(t, 2, v.Page)
	assert.Equal(t, []string{"k5", "k6", "k7", "k8"}, ids(v.Items))

	require.NoError(t, c.Next(ctx))
	v = c.View()
	assert.Equal(t, 3, v.Page)
	assert.Equal(t, []string{"k9", "k10"}, ids(v.Items))
	assert.False(t, v.HasMore)

	assert.ErrorIs(t, c.Next(ctx), app_errors.ErrPageOutOfRange)
	require.NoError(t, c.Prev())
	assert.Equal(t, 2, c.View().Page)

	require.NoError(t, c.GoToPage(1))
	assert.ErrorIs(t, c.GoToPage(0), app_errors.ErrPageOutOfRange)
	assert.ErrorIs(t, c.GoToPage(4), app_errors.ErrPageOutOfRange)
}

func TestController_NextDoesNotLoadWhileFiltering(t *testing.T) {
	catalog := seed(10)
	c := newController(catalog, Options{PageSize: 8})
	defer c.Close()
	ctx := context.Background()

	_, err := c.LoadPage(ctx, "")
	require.NoError(t, err)
	c.ApplyFilter("course")
	calls := catalog.Calls()

	assert.ErrorIs(t, c.Next(ctx), app_errors.ErrPageOutOfRange)
	assert.Equal(t, calls, catalog.Calls())
}

func TestController_EmptyMessages(t *testing.T) {
	c := newController(seed(0), Options{PageSize: 8})
	defer c.Close()

	_, err := c.LoadPage(context.Background(), "")
	require.NoError(t, err)
	v := c.View()
	assert.True(t, v.Empty())
	assert.Equal(t, 1, v.TotalPages)
	assert.Equal(t, EmptyMessage, v.EmptyMessage)

	c.ApplyFilter("nothing")
	assert.Equal(t, EmptySearchMessage, c.View().EmptyMessage)
}

func TestController_Recent(t *testing.T) {
	catalog := seed(10)
	c := newController(catalog, Options{PageSize: 8})
	defer c.Close()

	recent, err := c.Recent(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"k10", "k9", "k8", "k7"}, ids(recent))
	assert.Equal(t, "Ada Lovelace", recent[0].AuthorName)

	v := c.View()
	assert.Equal(t, Idle, v.Status)
	assert.Equal(t, 0, v.Loaded)
}
