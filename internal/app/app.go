package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robbertpopa/itec-web-2025/internal/app/server"
	"github.com/robbertpopa/itec-web-2025/internal/config"
	"github.com/robbertpopa/itec-web-2025/internal/delivery/http"
	"github.com/robbertpopa/itec-web-2025/internal/listing"
	"github.com/robbertpopa/itec-web-2025/internal/observability"
	"github.com/robbertpopa/itec-web-2025/internal/service"
	"github.com/robbertpopa/itec-web-2025/internal/service/auth"
	"github.com/robbertpopa/itec-web-2025/internal/service/course/discussion"
	"github.com/robbertpopa/itec-web-2025/internal/service/course/enrollment"
	"github.com/robbertpopa/itec-web-2025/internal/service/course/management"
	"github.com/robbertpopa/itec-web-2025/internal/service/course/query"
	"github.com/robbertpopa/itec-web-2025/internal/service/lesson"
	"github.com/robbertpopa/itec-web-2025/internal/service/lesson/schedule"
	"github.com/robbertpopa/itec-web-2025/internal/service/user"
	"github.com/robbertpopa/itec-web-2025/internal/storage/repository"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

// NewServices assembles the service layer over the opened drivers.
func NewServices(log logger.Log, cfg *config.Config, d *Drivers, provider auth.Provider) service.Collection {
	courseRepo := repository.NewCourseRepo(d.Store)
	users := user.NewUserService(log, repository.NewUserRepo(d.Store), d.Blobs)
	covers := listing.NewBlobCovers(d.Blobs, cfg.Listing.CoverPath)

	opts := listing.Options{
		PageSize:      cfg.Listing.PageSize,
		LookupTimeout: cfg.Listing.LookupTimeout,
		Concurrency:   cfg.Listing.Concurrency,
	}

	return service.Collection{
		Auth:       provider,
		Users:      users,
		Courses:    query.NewCourseQueryService(log, courseRepo, users, covers, d.Index, opts),
		Management: management.NewCourseManagementService(log, courseRepo, d.Index, d.Blobs, cfg.Listing.CoverPath),
		Enrollment: enrollment.NewEnrollmentService(log, courseRepo, repository.NewEnrollmentRepo(d.Store)),
		Discussion: discussion.NewDiscussionService(log, courseRepo, repository.NewDiscussionRepo(d.Store), users),
		Lessons:    lesson.NewLessonService(log, courseRepo, d.Index, d.Blobs, repository.NewQueueRepo(d.Store)),
		Schedule:   schedule.NewScheduleService(log, repository.NewScheduleRepo(d.Store)),
	}
}

func Run(cfg *config.Config) {
	log := logger.New(cfg.Env)
	log.Info("Starting with Env: "+cfg.Env, "store", cfg.Store.Driver, "blob", cfg.Blob.Driver, "auth", cfg.Auth.Driver)

	ctx := context.Background()
	shutdownTracing, err := observability.InitTracing(ctx, log, cfg.Env, cfg.Tracing)
	if err != nil {
		log.FatalErr("error initializing tracing", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.ErrorErr("tracing shutdown", err)
		}
	}()

	drivers, err := OpenDrivers(ctx, log, cfg)
	if err != nil {
		log.FatalErr("error opening storage drivers", err)
	}
	defer drivers.Close()

	provider, err := drivers.AuthProvider(ctx, log, cfg)
	if err != nil {
		log.FatalErr("error creating auth provider", err)
	}

	r := http.InitRoutes(log, cfg, NewServices(log, cfg, drivers, provider))

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	log.Info("http server started", "address", cfg.HTTPServer.Address)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("http server stopped", err)
	}
	if err := srv.Shutdown(); err != nil {
		log.ErrorErr("http server shutdown", err)
	}
}
