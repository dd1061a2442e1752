package query

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/listing"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/internal/storage/blob"
	"github.com/robbertpopa/itec-web-2025/internal/storage/memory"
	"github.com/robbertpopa/itec-web-2025/internal/storage/repository"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

type fakeSearch struct {
	ids   []string
	total int
	err   error
}

func (f *fakeSearch) Search(_ context.Context, _ string, from, size int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if from >= len(f.ids) {
		return nil, nil
	}
	end := from + size
	if end > len(f.ids) {
		end = len(f.ids)
	}
	return f.ids[from:end], nil
}

func (f *fakeSearch) Count(context.Context, string) (int, error) {
	return f.total, f.err
}

type fixture struct {
	svc   *CourseQueryService
	blobs *blob.Memory
}

func setup(t *testing.T, search searchRepo) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	courses := repository.NewCourseRepo(store)
	users := repository.NewUserRepo(store)
	blobs := blob.NewMemory()

	require.NoError(t, users.SaveProfile(ctx, "u1", models.Profile{FullName: "Ada Lovelace", ProfilePicture: "pic.jpg"}))
	for i := 1; i <= 10; i++ {
		name := fmt.Sprintf("Course %d", i)
		if i == 3 {
			name = "Intro to Go"
		}
		_, err := courses.NewCourse(ctx, &models.Course{
			ID:        fmt.Sprintf("k%02d", i),
			Name:      name,
			OwnerID:   "u1",
			CreatedAt: fmt.Sprintf("2025-01-%02dT00:00:00.000Z", 11-i),
		})
		require.NoError(t, err)
	}
	require.NoError(t, courses.SetLesson(ctx, "k01", 0, "Welcome"))
	require.NoError(t, blobs.Upload(ctx, "courses/k01/cover.jpg", strings.NewReader("img"), 3, "image/jpeg"))

	covers := listing.NewBlobCovers(blobs, listing.DefaultCoverPath)
	svc := NewCourseQueryService(logger.Discard(), courses, users, covers, search, listing.Options{PageSize: 8})
	return fixture{svc: svc, blobs: blobs}
}

func TestCourseQueryService_Courses(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	page, err := f.svc.Courses(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, page.Courses, 8)
	assert.True(t, page.HasMore)
	assert.Equal(t, "k08", page.Cursor)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, "Ada Lovelace", page.Courses[0].AuthorName)
	assert.Equal(t, "memory:///courses/k01/cover.jpg", page.Courses[0].ImageURL)
	assert.Empty(t, page.Courses[1].ImageURL)

	next, err := f.svc.Courses(ctx, page.Cursor, "")
	require.NoError(t, err)
	require.Len(t, next.Courses, 2)
	assert.False(t, next.HasMore)
	assert.Equal(t, "k09", next.Courses[0].ID)
}

func TestCourseQueryService_CoursesFiltered(t *testing.T) {
	f := setup(t, nil)

	page, err := f.svc.Courses(context.Background(), "", "INTRO")
	require.NoError(t, err)
	require.Len(t, page.Courses, 1)
	assert.Equal(t, "k03", page.Courses[0].ID)
	assert.Empty(t, page.Message)

	none, err := f.svc.Courses(context.Background(), "", "rust")
	require.NoError(t, err)
	assert.Empty(t, none.Courses)
	assert.Equal(t, listing.EmptySearchMessage, none.Message)
}

func TestCourseQueryService_Recent(t *testing.T) {
	f := setup(t, nil)

	recent, err := f.svc.Recent(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, recent, 4)
	assert.Equal(t, []string{"k01", "k02", "k03", "k04"}, []string{recent[0].ID, recent[1].ID, recent[2].ID, recent[3].ID})
}

type recordingRepo struct {
	courseRepo
	recentK int
}

func (r *recordingRepo) Recent(ctx context.Context, k int) ([]models.Course, error) {
	r.recentK = k
	return r.courseRepo.Recent(ctx, k)
}

func TestCourseQueryService_RecentIsCapped(t *testing.T) {
	repo := &recordingRepo{courseRepo: repository.NewCourseRepo(memory.New())}
	covers := listing.NewBlobCovers(blob.NewMemory(), listing.DefaultCoverPath)
	svc := NewCourseQueryService(logger.Discard(), repo, repository.NewUserRepo(memory.New()), covers, nil, listing.Options{})

	_, err := svc.Recent(context.Background(), 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, maxCatalogLimit, repo.recentK)
}

func TestCourseQueryService_CourseByID(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	detail, err := f.svc.CourseByID(ctx, "k01")
	require.NoError(t, err)
	assert.Equal(t, []string{"Welcome"}, detail.Lessons)
	assert.Equal(t, "Ada Lovelace", detail.AuthorName)

	detail, err = f.svc.CourseByID(ctx, "k02")
	require.NoError(t, err)
	assert.NotNil(t, detail.Lessons)
	assert.Empty(t, detail.Lessons)

	_, err = f.svc.CourseByID(ctx, "missing")
	assert.ErrorIs(t, err, app_errors.ErrCourseNotFound)
}

func TestCourseQueryService_CoverURL(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	url, err := f.svc.CoverURL(ctx, "k01")
	require.NoError(t, err)
	assert.Equal(t, "memory:///courses/k01/cover.jpg", url)

	_, err = f.svc.CoverURL(ctx, "k02")
	assert.ErrorIs(t, err, app_errors.ErrObjectNotFound)

	_, err = f.svc.CoverURL(ctx, "missing")
	assert.ErrorIs(t, err, app_errors.ErrCourseNotFound)
}

func TestCourseQueryService_Catalog(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	raw, err := f.svc.Catalog(ctx, "k05", 3)
	require.NoError(t, err)
	require.Len(t, raw, 3)
	assert.Equal(t, "k06", raw[0].ID)

	recent, err := f.svc.CatalogRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "k02", recent[0].ID, "oldest of the last two first")
	assert.Equal(t, "k01", recent[1].ID)
}

func TestCourseQueryService_Search(t *testing.T) {
	f := setup(t, &fakeSearch{ids: []string{"k03", "gone", "k01"}, total: 3})

	res, err := f.svc.Search(context.Background(), "go", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Courses, 2, "hits without a record are skipped")
	assert.Equal(t, "k03", res.Courses[0].ID)
	assert.Equal(t, "Ada Lovelace", res.Courses[1].AuthorName)
}

func TestCourseQueryService_SearchDisabled(t *testing.T) {
	f := setup(t, nil)
	_, err := f.svc.Search(context.Background(), "go", 0, 10)
	assert.ErrorIs(t, err, app_errors.ErrNotSupported)
}
