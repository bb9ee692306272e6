package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"linkedin-digest/internal/config"
	"linkedin-digest/internal/digest"
	"linkedin-digest/internal/observability"
	"linkedin-digest/internal/scraper"
)

// Browser — сессия браузера, которой управляет запуск.
type Browser interface {
	scraper.Browser
	Login(ctx context.Context, creds config.LinkedInCredentials) error
	Close() error
}

// Launcher запускает браузер.
type Launcher func(ctx context.Context) (Browser, error)

// Sender доставляет готовый дайджест.
type Sender interface {
	Send(ctx context.Context, d *digest.Digest, attachments []string) error
}

type Orchestrator struct {
	cfg     *config.Config
	logger  *observability.Logger
	launch  Launcher
	scraper *scraper.Scraper
	builder *digest.Builder
	sender  Sender
	remove  func(string) error
	now     func() time.Time
	runID   string
}

func NewOrchestrator(
	cfg *config.Config,
	logger *observability.Logger,
	launch Launcher,
	s *scraper.Scraper,
	b *digest.Builder,
	sender Sender,
) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		logger:  logger,
		launch:  launch,
		scraper: s,
		builder: b,
		sender:  sender,
		remove:  os.Remove,
		now:     time.Now,
		runID:   uuid.NewString(),
	}
}

// WithRunID задаёт идентификатор запуска (по умолчанию случайный UUID).
func (o *Orchestrator) WithRunID(id string) *Orchestrator {
	o.runID = id
	return o
}

// Report — итог запуска.
type Report struct {
	RunID       string
	Harvest     *scraper.Harvest
	Posts       []scraper.Post
	Attachments []string
	Delivered   bool
	Removed     int
}

// Run выполняет один запуск: вход, сбор публикаций, сборка и отправка письма.
// Браузер закрывается и скриншоты удаляются при любом исходе.
func (o *Orchestrator) Run(ctx context.Context) (report *Report, err error) {
	report = &Report{RunID: o.runID}
	logger := o.logger.With("run_id", o.runID)
	started := o.now()

	logger.Info("Starting run", "sources", len(o.cfg.Sources))

	if err := o.scraper.PrepareScreenshotDir(); err != nil {
		return report, fmt.Errorf("setup failed: %w", err)
	}

	b, err := o.launch(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		report.Removed = o.cleanup(logger, b, report.Harvest)
		logger.Info("Run finished",
			"delivered", report.Delivered,
			"posts", len(report.Posts),
			"screenshots_removed", report.Removed,
			"duration", o.now().Sub(started).String(),
		)
	}()

	logger.Info("🔐 Logging in")
	if err := b.Login(ctx, o.cfg.Credentials.LinkedIn); err != nil {
		return report, fmt.Errorf("login failed: %w", err)
	}

	h, err := o.scraper.FetchAll(ctx, b, o.cfg.Sources)
	report.Harvest = h
	if err != nil {
		return report, fmt.Errorf("scraping interrupted: %w", err)
	}

	posts := h.Posts
	if len(posts) == 0 {
		logger.Warn("No posts captured from any source, sending placeholder")
		posts = []scraper.Post{scraper.PlaceholderPost()}
	}
	report.Posts = posts

	d, err := o.builder.Build(posts, o.now())
	if err != nil {
		return report, err
	}
	report.Attachments = digest.Attachments(posts)

	logger.Info("📧 Sending email",
		"subject", d.Subject,
		"posts", len(posts),
		"attachments", len(report.Attachments),
	)
	if err := o.sender.Send(ctx, d, report.Attachments); err != nil {
		return report, err
	}
	report.Delivered = true
	logger.Info("✅ Email sent")

	return report, nil
}

// cleanup удаляет каждый записанный скриншот ровно один раз и закрывает браузер.
func (o *Orchestrator) cleanup(logger *observability.Logger, b Browser, h *scraper.Harvest) int {
	removed := 0
	if h != nil {
		for _, path := range h.Screenshots {
			if err := o.remove(path); err != nil {
				logger.Debug("Failed to remove screenshot", "file", path, "error", err.Error())
				continue
			}
			removed++
		}
	}

	if err := b.Close(); err != nil {
		logger.Warn("Failed to close browser", "error", err.Error())
	}
	return removed
}
