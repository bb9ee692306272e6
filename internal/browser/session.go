package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"linkedin-digest/internal/config"
	"linkedin-digest/internal/observability"
	"linkedin-digest/internal/scraper"
)

const urlPollInterval = 250 * time.Millisecond

// Session — одна вкладка управляемого Chrome на весь запуск.
type Session struct {
	cfg       *config.Config
	selectors *scraper.Selectors
	logger    *observability.Logger
	pacer     *Pacer

	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// Launch запускает Chrome с фиксированными флагами и открывает пустую вкладку.
func Launch(ctx context.Context, cfg *config.Config, selectors *scraper.Selectors, logger *observability.Logger) (*Session, error) {
	l := newLauncher(cfg)

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to launch chrome: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to chrome: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  cfg.Browser.WindowWidth,
		Height: cfg.Browser.WindowHeight,
	})
	if err != nil {
		logger.Warn("Failed to set viewport", "error", err.Error())
	}

	logger.Debug("Chrome launched", "control_url", controlURL, "headless", cfg.Browser.Headless)

	return &Session{
		cfg:       cfg,
		selectors: selectors,
		logger:    logger,
		pacer:     NewPacer(cfg.Browser.NavigationsPerMinute),
		launcher:  l,
		browser:   b,
		page:      page,
	}, nil
}

func newLauncher(cfg *config.Config) *launcher.Launcher {
	l := launcher.New().
		Headless(cfg.Browser.Headless).
		NoSandbox(cfg.Browser.NoSandbox).
		Set("start-maximized").
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-extensions").
		Set("disable-infobars").
		Set("disable-webrtc").
		Set("disable-dev-shm-usage").
		Set("window-size", strconv.Itoa(cfg.Browser.WindowWidth)+","+strconv.Itoa(cfg.Browser.WindowHeight))

	if cfg.Browser.ChromePath != "" {
		l = l.Bin(cfg.Browser.ChromePath)
	}
	return l
}

// Login открывает страницу входа, ждёт поле логина, отправляет учётные данные
// и ждёт URL с маркером ленты. Таймаут любого ожидания — ошибка.
func (s *Session) Login(ctx context.Context, creds config.LinkedInCredentials) error {
	if err := s.Navigate(ctx, s.cfg.LinkedIn.LoginURL); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}

	page := s.page.Context(ctx).Timeout(s.cfg.GetLoginTimeout())
	defer page.CancelTimeout()

	username, err := page.Element(s.selectors.UsernameField)
	if err != nil {
		return fmt.Errorf("wait for username field: %w", err)
	}
	if err := username.Input(creds.Email); err != nil {
		return fmt.Errorf("type username: %w", err)
	}

	password, err := page.Element(s.selectors.PasswordField)
	if err != nil {
		return fmt.Errorf("find password field: %w", err)
	}
	if err := password.Input(creds.Password); err != nil {
		return fmt.Errorf("type password: %w", err)
	}
	if err := password.Type(input.Enter); err != nil {
		return fmt.Errorf("submit login form: %w", err)
	}

	if err := s.waitForURL(ctx, s.cfg.LinkedIn.LandingMarker, s.cfg.GetLoginTimeout()); err != nil {
		return fmt.Errorf("wait for %q after login: %w", s.cfg.LinkedIn.LandingMarker, err)
	}

	s.logger.Info("Logged in", "landing_marker", s.cfg.LinkedIn.LandingMarker)
	return nil
}

// waitForURL опрашивает URL вкладки через CDP: во время перехода
// JS-контекст страницы может пропадать, а информация о вкладке — нет.
func (s *Session) waitForURL(ctx context.Context, marker string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(urlPollInterval)
	defer ticker.Stop()

	for {
		info, err := s.page.Context(ctx).Info()
		if err == nil && strings.Contains(info.URL, marker) {
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Navigate переходит на url и ждёт событие load.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.pacer.Wait(ctx); err != nil {
		return err
	}

	page := s.page.Context(ctx).Timeout(s.cfg.GetPageTimeout())
	defer page.CancelTimeout()

	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitLoad()
}

// ScrollToFraction прокручивает окно до fraction от текущей высоты документа.
func (s *Session) ScrollToFraction(ctx context.Context, fraction float64) error {
	_, err := s.page.Context(ctx).Eval(`(f) => window.scrollTo(0, document.body.scrollHeight * f)`, fraction)
	return err
}

// FindPosts не ждёт появления элементов: пустой список — нормальный результат.
func (s *Session) FindPosts(ctx context.Context, selector string) ([]scraper.PostElement, error) {
	els, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}

	posts := make([]scraper.PostElement, 0, len(els))
	for _, el := range els {
		posts = append(posts, &element{el: el})
	}
	return posts, nil
}

// Close закрывает браузер и убивает процесс Chrome.
func (s *Session) Close() error {
	var errs []error
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
	}
	return errors.Join(errs...)
}
