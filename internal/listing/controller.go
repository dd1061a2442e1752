// Package listing pages through the course catalog in key order, enriches
// every record with its cover URL and owner profile, and keeps a locally
// filtered view over what has been fetched.
package listing

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

const (
	DefaultPageSize      = 8
	DefaultLookupTimeout = 3 * time.Second
	DefaultConcurrency   = 16

	UnknownAuthor = "Unknown"

	EmptyMessage       = "There are no courses available at the moment."
	EmptySearchMessage = "No courses match your search criteria. Try a different search term."
)

type Status int

const (
	Idle Status = iota
	Loading
	Loaded
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "idle"
}

// Catalog is the ordered course collection.
type Catalog interface {
	// Courses returns up to limit courses whose keys sort strictly after
	// after, in key order. An empty after starts at the first key.
	Courses(ctx context.Context, after string, limit int) ([]models.Course, error)
	// Recent returns the last k courses by createdAt, oldest first.
	Recent(ctx context.Context, k int) ([]models.Course, error)
}

type Profiles interface {
	Profile(ctx context.Context, userID string) (models.Profile, error)
}

type Covers interface {
	CoverURL(ctx context.Context, courseID string) (string, error)
}

type Options struct {
	PageSize      int
	LookupTimeout time.Duration
	Concurrency   int
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.LookupTimeout <= 0 {
		o.LookupTimeout = DefaultLookupTimeout
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// Page is the result of one LoadPage call.
type Page struct {
	Items   []models.CoursePreview
	HasMore bool
	Cursor  string
}

// View is a snapshot of the controller state for rendering.
type View struct {
	Status       Status
	Err          error
	Items        []models.CoursePreview
	Page         int
	TotalPages   int
	HasMore      bool
	Term         string
	Loaded       int
	EmptyMessage string
}

func (v View) Empty() bool {
	return v.Status != Loading && len(v.Items) == 0
}

// Controller owns the pagination and filter state of one view. It is safe
// for concurrent use. Concurrent loads of the same cursor share one query.
type Controller struct {
	log      logger.Log
	catalog  Catalog
	profiles Profiles
	covers   Covers
	opts     Options

	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group

	mu          sync.Mutex
	closed      bool
	status      Status
	err         error
	loaded      []models.CoursePreview
	hasMore     bool
	term        string
	page        int
	lastAttempt string
}

func NewController(l logger.Log, catalog Catalog, profiles Profiles, covers Covers, opts Options) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		log:      l.With("component", "listing"),
		catalog:  catalog,
		profiles: profiles,
		covers:   covers,
		opts:     opts.withDefaults(),
		ctx:      ctx,
		cancel:   cancel,
		page:     1,
	}
}

type fetchResult struct {
	items   []models.CoursePreview
	hasMore bool
}

// LoadPage fetches the page of courses whose keys follow after. Reloading a
// cursor that is already loaded replaces that page and drops everything
// loaded behind it. On failure the previously loaded data is kept.
func (c *Controller) LoadPage(ctx context.Context, after string) (Page, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Page{}, app_errors.ErrControllerClosed
	}
	c.status = Loading
	c.err = nil
	c.lastAttempt = after
	c.mu.Unlock()

	ch := c.group.DoChan(after, func() (interface{}, error) {
		return c.fetch(after)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res = singleflight.Result{Err: ctx.Err()}
	case <-c.ctx.Done():
		return Page{}, app_errors.ErrControllerClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Page{}, app_errors.ErrControllerClosed
	}
	if res.Err != nil {
		c.status = Failed
		c.err = res.Err
		c.log.ErrorErr("LoadPage: failed to load courses", res.Err, "after", after)
		return Page{}, res.Err
	}

	fr := res.Val.(fetchResult)
	start := c.merge(after, fr.items)
	c.hasMore = fr.hasMore
	c.status = Loaded
	if c.term == "" {
		c.page = start/c.opts.PageSize + 1
	} else {
		c.page = 1
	}

	items := make([]models.CoursePreview, len(fr.items))
	copy(items, fr.items)
	return Page{Items: items, HasMore: fr.hasMore, Cursor: c.cursor()}, nil
}

// merge places items right after the cursor record and returns the index of
// the first inserted item. An unknown cursor restarts the accumulated list.
func (c *Controller) merge(after string, items []models.CoursePreview) int {
	keep := 0
	if after != "" {
		keep = -1
		for i, p := range c.loaded {
			if p.ID == after {
				keep = i + 1
				break
			}
		}
		if keep < 0 {
			keep = 0
		}
	}
	merged := make([]models.CoursePreview, 0, keep+len(items))
	merged = append(merged, c.loaded[:keep]...)
	merged = append(merged, items...)
	c.loaded = merged
	return keep
}

func (c *Controller) cursor() string {
	if len(c.loaded) == 0 {
		return ""
	}
	return c.loaded[len(c.loaded)-1].ID
}

// fetch asks for one record more than a page to learn whether another page
// exists.
func (c *Controller) fetch(after string) (fetchResult, error) {
	n := c.opts.PageSize
	courses, err := c.catalog.Courses(c.ctx, after, n+1)
	if err != nil {
		return fetchResult{}, err
	}
	hasMore := len(courses) > n
	if hasMore {
		courses = courses[:n]
	}
	return fetchResult{items: c.enrich(c.ctx, courses), hasMore: hasMore}, nil
}

// Recent returns the last k courses by creation time, newest first, enriched
// like a page. It leaves the pagination state untouched.
func (c *Controller) Recent(ctx context.Context, k int) ([]models.CoursePreview, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, app_errors.ErrControllerClosed
	}

	ctx, cancel := mergeCancel(ctx, c.ctx)
	defer cancel()

	courses, err := c.catalog.Recent(ctx, k)
	if err != nil {
		c.log.ErrorErr("Recent: failed to load courses", err)
		return nil, err
	}
	for i, j := 0, len(courses)-1; i < j; i, j = i+1, j-1 {
		courses[i], courses[j] = courses[j], courses[i]
	}
	return c.enrich(ctx, courses), nil
}

// Retry repeats the last attempted load.
func (c *Controller) Retry(ctx context.Context) (Page, error) {
	c.mu.Lock()
	after := c.lastAttempt
	c.mu.Unlock()
	return c.LoadPage(ctx, after)
}

// ApplyFilter narrows the view to loaded courses whose name or description
// contains term, ignoring case, and returns to page 1. It never queries.
func (c *Controller) ApplyFilter(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.term = term
	c.page = 1
}

func (c *Controller) GoToPage(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 1 || n > c.totalPages(len(c.filtered())) {
		return app_errors.ErrPageOutOfRange
	}
	c.page = n
	return nil
}

// Next moves one page forward. At the last loaded page it loads the following
// one when the store has more and no filter is active.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	if c.page < c.totalPages(len(c.filtered())) {
		c.page++
		c.mu.Unlock()
		return nil
	}
	canLoad := c.term == "" && c.hasMore && c.status != Loading
	after := c.cursor()
	c.mu.Unlock()

	if !canLoad {
		return app_errors.ErrPageOutOfRange
	}
	_, err := c.LoadPage(ctx, after)
	return err
}

func (c *Controller) Prev() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page <= 1 {
		return app_errors.ErrPageOutOfRange
	}
	c.page--
	return nil
}

func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages(len(c.filtered()))
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := c.filtered()
	total := c.totalPages(len(filtered))
	page := c.page
	if page > total {
		page = total
	}
	from := (page - 1) * c.opts.PageSize
	to := from + c.opts.PageSize
	if to > len(filtered) {
		to = len(filtered)
	}
	items := make([]models.CoursePreview, to-from)
	copy(items, filtered[from:to])

	v := View{
		Status:     c.status,
		Err:        c.err,
		Items:      items,
		Page:       page,
		TotalPages: total,
		HasMore:    c.hasMore,
		Term:       c.term,
		Loaded:     len(c.loaded),
	}
	if len(items) == 0 {
		v.EmptyMessage = EmptyMessage
		if c.term != "" {
			v.EmptyMessage = EmptySearchMessage
		}
	}
	return v
}

// Close abandons in-flight loads. Results arriving afterwards are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}

func (c *Controller) filtered() []models.CoursePreview {
	if c.term == "" {
		return c.loaded
	}
	return Filter(c.loaded, c.term)
}

func (c *Controller) totalPages(count int) int {
	return TotalPages(count, c.opts.PageSize)
}

// TotalPages is ceil(count/size), and 1 for an empty list.
func TotalPages(count, size int) int {
	if count <= 0 || size <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

// Filter keeps the courses whose name or description contains term,
// ignoring case.
func Filter(courses []models.CoursePreview, term string) []models.CoursePreview {
	needle := strings.ToLower(term)
	out := make([]models.CoursePreview, 0, len(courses))
	for _, c := range courses {
		if strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.Description), needle) {
			out = append(out, c)
		}
	}
	return out
}

// mergeCancel returns a context cancelled when either parent is.
func mergeCancel(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
