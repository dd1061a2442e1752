// Package summary drains the summarize queue: each task names a lesson file
// whose condensed Markdown version is written next to the course tree.
package summary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/internal/storage/blob"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

const (
	sourcePrefix  = "courses/"
	summaryPrefix = "summarized/"
	maxSourceSize = 1 << 20
)

type queueRepo interface {
	NextWaiting(ctx context.Context) (*models.SummaryTask, error)
	Claim(ctx context.Context, id string) error
	Complete(ctx context.Context, id string) error
	Fail(ctx context.Context, id string, cause error) error
}

// Summarizer condenses a text document into Markdown.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type SummaryService struct {
	log        logger.Log
	queue      queueRepo
	blobs      blob.Store
	summarizer Summarizer
	timeout    time.Duration
}

func NewSummaryService(l logger.Log, q queueRepo, blobs blob.Store, s Summarizer, timeout time.Duration) *SummaryService {
	return &SummaryService{
		log:        l.With("component", "summary"),
		queue:      q,
		blobs:      blobs,
		summarizer: s,
		timeout:    timeout,
	}
}

// Path maps a lesson file to the location of its summary.
func Path(source string) string {
	return strings.Replace(source, sourcePrefix, summaryPrefix, 1)
}

// ProcessNext claims the oldest waiting task and runs it. It reports whether
// a task was processed; losing the claim to another worker is not an error.
func (s *SummaryService) ProcessNext(ctx context.Context) (bool, error) {
	task, err := s.queue.NextWaiting(ctx)
	if err != nil {
		if errors.Is(err, app_errors.ErrQueueEmpty) {
			s.log.Debug("ProcessNext: no waiting tasks found")
			return false, nil
		}
		return false, err
	}

	if err := s.queue.Claim(ctx, task.ID); err != nil {
		if errors.Is(err, app_errors.ErrTaskClaimed) {
			s.log.Info("ProcessNext: task was already claimed by another worker", "task", task.ID)
			return false, nil
		}
		return false, err
	}
	s.log.Info("ProcessNext: claimed task", "task", task.ID, "path", task.Path)

	if err := s.run(ctx, task.Path); err != nil {
		s.log.ErrorErr("ProcessNext: task failed", err, "task", task.ID)
		if ferr := s.queue.Fail(ctx, task.ID, err); ferr != nil {
			return true, fmt.Errorf("mark task %s failed: %w", task.ID, ferr)
		}
		return true, nil
	}

	if err := s.queue.Complete(ctx, task.ID); err != nil {
		return true, fmt.Errorf("mark task %s done: %w", task.ID, err)
	}
	s.log.Info("ProcessNext: task marked as done", "task", task.ID, "summary", Path(task.Path))
	return true, nil
}

func (s *SummaryService) run(ctx context.Context, source string) (err error) {
	ctx, span := otel.Tracer("summary").Start(ctx, "summary.run")
	span.SetAttributes(attribute.String("summary.source", source))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	content, err := s.read(ctx, source)
	if err != nil {
		return err
	}

	summary, err := s.summarizer.Summarize(ctx, content)
	if err != nil {
		return err
	}

	target := Path(source)
	return s.blobs.Upload(ctx, target, bytes.NewBufferString(summary), int64(len(summary)), blob.ContentType(target, ""))
}

func (s *SummaryService) read(ctx context.Context, source string) (string, error) {
	rc, err := s.blobs.Open(ctx, source)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxSourceSize))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", source, err)
	}
	if !utf8.Valid(data) {
		return "", app_errors.ErrDecoding
	}
	return string(data), nil
}
