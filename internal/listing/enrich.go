package listing

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

// enrich resolves the cover URL and owner profile of every course. Each
// lookup is best effort with its own timeout; a failed or timed out lookup
// leaves the sentinel value and never affects the other lookups.
func (c *Controller) enrich(ctx context.Context, courses []models.Course) []models.CoursePreview {
	out := make([]models.CoursePreview, len(courses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)

	for i, course := range courses {
		out[i] = course.Preview()
		out[i].AuthorName = UnknownAuthor

		g.Go(func() error {
			out[i].ImageURL = c.coverURL(gctx, course.ID)
			return nil
		})
		g.Go(func() error {
			out[i].AuthorName, out[i].OwnerProfilePicture = c.owner(gctx, course.ID, course.OwnerID)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Enrich resolves covers and owners for courses loaded outside the
// pagination state, such as a single course or search hits.
func (c *Controller) Enrich(ctx context.Context, courses []models.Course) []models.CoursePreview {
	ctx, cancel := mergeCancel(ctx, c.ctx)
	defer cancel()
	return c.enrich(ctx, courses)
}

func (c *Controller) coverURL(ctx context.Context, courseID string) string {
	ctx, cancel := context.WithTimeout(ctx, c.opts.LookupTimeout)
	defer cancel()

	u, err := c.covers.CoverURL(ctx, courseID)
	if err != nil {
		c.log.Debug("enrich: no cover image", "course", courseID, logger.Err(err))
		return ""
	}
	return u
}

func (c *Controller) owner(ctx context.Context, courseID, ownerID string) (name, picture string) {
	if ownerID == "" {
		return UnknownAuthor, ""
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.LookupTimeout)
	defer cancel()

	p, err := c.profiles.Profile(ctx, ownerID)
	if err != nil {
		c.log.Debug("enrich: owner lookup failed", "course", courseID, "owner", ownerID, logger.Err(err))
		return UnknownAuthor, ""
	}
	if p.FullName == "" {
		return UnknownAuthor, p.ProfilePicture
	}
	return p.FullName, p.ProfilePicture
}
