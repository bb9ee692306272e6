package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"linkedin-digest/internal/observability"
)

type Scraper struct {
	selectors *Selectors
	opts      Options
	extractor TextExtractor
	logger    *observability.Logger
	pause     PauseFunc
	now       func() time.Time
	namer     *Namer
}

func NewScraper(selectors *Selectors, opts Options, extractor TextExtractor, logger *observability.Logger) *Scraper {
	return &Scraper{
		selectors: selectors,
		opts:      opts,
		extractor: extractor,
		logger:    logger,
		pause:     Pause,
		now:       time.Now,
		namer:     NewNamer(),
	}
}

// WithPause подменяет ожидания (тесты).
func (s *Scraper) WithPause(p PauseFunc) *Scraper {
	s.pause = p
	return s
}

// WithClock подменяет источник времени для имён файлов.
func (s *Scraper) WithClock(now func() time.Time) *Scraper {
	s.now = now
	return s
}

// PrepareScreenshotDir создаёт каталог для скриншотов. Вызывается до запуска браузера.
func (s *Scraper) PrepareScreenshotDir() error {
	if err := os.MkdirAll(s.opts.ScreenshotDir, 0o755); err != nil {
		return fmt.Errorf("failed to create screenshot dir %s: %w", s.opts.ScreenshotDir, err)
	}
	return nil
}

// FetchAll проходит по источникам по порядку. Ошибка источника или публикации
// не прерывает проход; прерывает только отмена контекста.
// Harvest возвращается всегда, даже вместе с ошибкой.
func (s *Scraper) FetchAll(ctx context.Context, b Browser, sources []string) (*Harvest, error) {
	h := &Harvest{}

	for _, sourceURL := range sources {
		if err := ctx.Err(); err != nil {
			return h, err
		}

		outcome := s.fetchSource(ctx, b, sourceURL, h)
		h.Sources = append(h.Sources, outcome)

		if outcome.Skipped() {
			s.logger.Error("Failed to process source",
				"source", outcome.Name,
				"url", sourceURL,
				"error", outcome.Err.Error(),
			)
			if isCancellation(ctx, outcome.Err) {
				return h, ctx.Err()
			}
			continue
		}

		s.logger.Info("Source processed",
			"source", outcome.Name,
			"captured", outcome.Captured(),
			"found", len(outcome.Posts),
		)
	}

	return h, nil
}

func (s *Scraper) fetchSource(ctx context.Context, b Browser, sourceURL string, h *Harvest) SourceOutcome {
	name := SourceName(sourceURL)
	outcome := SourceOutcome{URL: sourceURL, Name: name}

	s.logger.Info("📄 Loading source page", "source", name)

	if err := b.Navigate(ctx, sourceURL); err != nil {
		outcome.Err = fmt.Errorf("navigate: %w", err)
		return outcome
	}
	if err := s.pause(ctx, s.opts.PageLoadDelay); err != nil {
		outcome.Err = err
		return outcome
	}

	// Скролл подгружает ленивые публикации
	for i := 0; i < s.opts.ScrollCycles; i++ {
		if err := b.ScrollToFraction(ctx, s.opts.ScrollFraction); err != nil {
			outcome.Err = fmt.Errorf("scroll %d: %w", i+1, err)
			return outcome
		}
		if err := s.pause(ctx, s.opts.ScrollDelay); err != nil {
			outcome.Err = err
			return outcome
		}
	}

	s.logger.Info("📸 Capturing posts", "source", name)

	containers, err := b.FindPosts(ctx, s.selectors.PostContainer)
	if err != nil {
		outcome.Err = fmt.Errorf("find posts: %w", err)
		return outcome
	}
	if len(containers) > s.opts.PostsPerSource {
		containers = containers[:s.opts.PostsPerSource]
	}

	for i, el := range containers {
		idx := i + 1
		post, shot, err := s.capturePost(ctx, name, idx, el)
		if shot != "" {
			h.Screenshots = append(h.Screenshots, shot)
		}
		if err != nil {
			s.logger.Error("Failed to process post",
				"source", name,
				"index", idx,
				"error", err.Error(),
			)
			outcome.Posts = append(outcome.Posts, PostOutcome{Index: idx, Err: err})
			if isCancellation(ctx, err) {
				outcome.Err = err
				return outcome
			}
			continue
		}
		h.Posts = append(h.Posts, post)
		outcome.Posts = append(outcome.Posts, PostOutcome{Index: idx})
	}

	return outcome
}

// capturePost возвращает путь к скриншоту, если файл был записан, даже при ошибке.
func (s *Scraper) capturePost(ctx context.Context, source string, idx int, el PostElement) (Post, string, error) {
	path := filepath.Join(s.opts.ScreenshotDir, s.namer.Next(source, idx, s.now()))

	if err := s.screenshot(ctx, el, path); err != nil {
		return Post{}, "", fmt.Errorf("screenshot: %w", err)
	}

	s.expand(ctx, el)

	html, err := el.HTML(ctx)
	if err != nil {
		return Post{}, path, fmt.Errorf("read post html: %w", err)
	}
	text, err := s.extractor.ExtractText(html, s.selectors.PostText)
	if err != nil {
		return Post{}, path, fmt.Errorf("extract text: %w", err)
	}

	return Post{Source: source, Text: text, Screenshot: path}, path, nil
}

// screenshot: раскрыть, отцентровать, подождать, снять.
// При любой ошибке — одна повторная съёмка без подготовки.
func (s *Scraper) screenshot(ctx context.Context, el PostElement, path string) error {
	img, err := s.stagedCapture(ctx, el)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.logger.Warn("Staged screenshot failed, retrying raw capture",
			"file", filepath.Base(path),
			"error", err.Error(),
		)
		img, err = el.Screenshot(ctx)
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(path, img, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (s *Scraper) stagedCapture(ctx context.Context, el PostElement) ([]byte, error) {
	s.expand(ctx, el)

	if err := el.CenterInView(ctx); err != nil {
		return nil, err
	}
	if err := s.pause(ctx, s.opts.SettleDelay); err != nil {
		return nil, err
	}
	return el.Screenshot(ctx)
}

// expand нажимает все "see more" внутри публикации. Ошибки игнорируются.
func (s *Scraper) expand(ctx context.Context, el PostElement) {
	controls, err := el.Controls(ctx, s.selectors.ShowMore)
	if err != nil {
		s.logger.Debug("Show-more lookup failed", "error", err.Error())
		return
	}
	for _, c := range controls {
		if err := c.CenterInView(ctx); err != nil {
			s.logger.Debug("Show-more scroll failed", "error", err.Error())
			return
		}
		if err := c.Click(ctx); err != nil {
			s.logger.Debug("Show-more click failed", "error", err.Error())
			return
		}
		if err := s.pause(ctx, s.opts.ExpandDelay); err != nil {
			return
		}
	}
}

// isCancellation смотрит только на контекст запуска: таймаут отдельной
// страницы тоже DeadlineExceeded, но он не должен останавливать проход.
func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil && err != nil
}
