package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedin-digest/internal/config"
	"linkedin-digest/internal/digest"
	"linkedin-digest/internal/observability"
	"linkedin-digest/internal/scraper"
)

const (
	goodURL = "https://www.linkedin.com/company/good-source/posts/"
	badURL  = "https://www.linkedin.com/in/bad-source/recent-activity/all/"
)

type fakePost struct{ text string }

func (p *fakePost) Controls(ctx context.Context, selector string) ([]scraper.Control, error) {
	return nil, nil
}
func (p *fakePost) CenterInView(ctx context.Context) error { return nil }
func (p *fakePost) Screenshot(ctx context.Context) ([]byte, error) {
	return []byte("\x89PNG fake"), nil
}
func (p *fakePost) HTML(ctx context.Context) (string, error) { return p.text, nil }

type fakeBrowser struct {
	posts    map[string][]string
	navErrs  map[string]error
	loginErr error
	current  string
	closed   int
	loggedIn config.LinkedInCredentials
}

func (b *fakeBrowser) Login(ctx context.Context, creds config.LinkedInCredentials) error {
	b.loggedIn = creds
	return b.loginErr
}

func (b *fakeBrowser) Navigate(ctx context.Context, url string) error {
	b.current = url
	return b.navErrs[url]
}

func (b *fakeBrowser) ScrollToFraction(ctx context.Context, fraction float64) error { return nil }

func (b *fakeBrowser) FindPosts(ctx context.Context, selector string) ([]scraper.PostElement, error) {
	var out []scraper.PostElement
	for _, text := range b.posts[b.current] {
		out = append(out, &fakePost{text: text})
	}
	return out, nil
}

func (b *fakeBrowser) Close() error {
	b.closed++
	return nil
}

type plainText struct{}

func (plainText) ExtractText(html, selector string) (string, error) { return html, nil }

type fakeSender struct {
	err         error
	sent        *digest.Digest
	attachments []string
	calls       int
}

func (s *fakeSender) Send(ctx context.Context, d *digest.Digest, attachments []string) error {
	s.calls++
	s.sent = d
	s.attachments = attachments
	return s.err
}

type fixture struct {
	orch    *Orchestrator
	browser *fakeBrowser
	sender  *fakeSender
	removed map[string]int
}

func newFixture(t *testing.T, b *fakeBrowser, sources ...string) *fixture {
	t.Helper()

	cfg := config.Default()
	cfg.Sources = sources
	cfg.Credentials.LinkedIn = config.LinkedInCredentials{Email: "me@example.com", Password: "pw"}

	opts := scraper.DefaultOptions()
	opts.ScreenshotDir = t.TempDir()
	logger := observability.NewNopLogger()
	s := scraper.NewScraper(scraper.DefaultSelectors(), opts, plainText{}, logger).
		WithPause(func(ctx context.Context, d time.Duration) error { return ctx.Err() })

	f := &fixture{browser: b, sender: &fakeSender{}, removed: map[string]int{}}
	f.orch = NewOrchestrator(cfg, logger,
		func(ctx context.Context) (Browser, error) { return b, nil },
		s, digest.NewBuilder(cfg.Digest.Title, cfg.Digest.SubjectPrefix), f.sender,
	).WithRunID("test-run")
	f.orch.remove = func(path string) error {
		f.removed[path]++
		return os.Remove(path)
	}
	return f
}

func (f *fixture) assertCleanedUp(t *testing.T, report *Report) {
	t.Helper()
	assert.Equal(t, 1, f.browser.closed, "browser must be closed exactly once")
	if report.Harvest == nil {
		return
	}
	for _, path := range report.Harvest.Screenshots {
		assert.Equal(t, 1, f.removed[path], "screenshot %s", path)
		assert.NoFileExists(t, path)
	}
	assert.Equal(t, len(report.Harvest.Screenshots), report.Removed)
}

func TestRunDeliversAndCleansUp(t *testing.T) {
	b := &fakeBrowser{posts: map[string][]string{goodURL: {"p1", "p2"}}}
	f := newFixture(t, b, goodURL)

	report, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "test-run", report.RunID)
	assert.True(t, report.Delivered)
	assert.Equal(t, "me@example.com", b.loggedIn.Email)
	require.Equal(t, 1, f.sender.calls)
	assert.Len(t, f.sender.attachments, 2)
	assert.Len(t, f.sender.sent.ContentIDs, 2)
	assert.Contains(t, f.sender.sent.HTML, "Good Source")
	f.assertCleanedUp(t, report)
	assert.Equal(t, 2, report.Removed)
}

func TestRunSendsPlaceholderWhenNothingCaptured(t *testing.T) {
	b := &fakeBrowser{}
	f := newFixture(t, b, goodURL, badURL)

	report, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, f.sender.calls)
	assert.Empty(t, f.sender.attachments)
	assert.Contains(t, f.sender.sent.HTML, scraper.PlaceholderText)
	assert.Contains(t, f.sender.sent.HTML, scraper.PlaceholderSource)
	assert.NotContains(t, f.sender.sent.HTML, "<img")
	require.Len(t, report.Posts, 1)
	f.assertCleanedUp(t, report)
}

func TestRunFailingSourceStillDelivers(t *testing.T) {
	b := &fakeBrowser{
		posts:   map[string][]string{goodURL: {"p1"}},
		navErrs: map[string]error{badURL: errors.New("navigation timeout")},
	}
	f := newFixture(t, b, badURL, goodURL)

	report, err := f.orch.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Delivered)
	require.Len(t, report.Harvest.Sources, 2)
	assert.True(t, report.Harvest.Sources[0].Skipped())
	assert.Len(t, f.sender.attachments, 1)
	f.assertCleanedUp(t, report)
}

func TestRunLoginFailureAbortsWithoutSending(t *testing.T) {
	b := &fakeBrowser{loginErr: errors.New("landing page not reached")}
	f := newFixture(t, b, goodURL)

	report, err := f.orch.Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "login failed")

	assert.Zero(t, f.sender.calls)
	assert.False(t, report.Delivered)
	f.assertCleanedUp(t, report)
}

func TestRunSendFailureStillCleansUp(t *testing.T) {
	b := &fakeBrowser{posts: map[string][]string{goodURL: {"p1", "p2", "p3"}}}
	f := newFixture(t, b, goodURL)
	f.sender.err = errors.New("535 authentication failed")

	report, err := f.orch.Run(context.Background())
	require.Error(t, err)

	assert.False(t, report.Delivered)
	require.NotNil(t, report.Harvest)
	assert.Len(t, report.Harvest.Screenshots, 3)
	f.assertCleanedUp(t, report)
}

func TestRunLaunchFailure(t *testing.T) {
	f := newFixture(t, &fakeBrowser{}, goodURL)
	f.orch.launch = func(ctx context.Context) (Browser, error) {
		return nil, errors.New("chrome not found")
	}

	report, err := f.orch.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, report.Harvest)
	assert.Zero(t, f.sender.calls)
	assert.Zero(t, f.browser.closed)
}

func TestRunCancelledBeforeScraping(t *testing.T) {
	b := &fakeBrowser{posts: map[string][]string{goodURL: {"p1"}}}
	f := newFixture(t, b, goodURL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.orch.Run(ctx)
	require.Error(t, err)
	assert.Zero(t, f.sender.calls)
	f.assertCleanedUp(t, report)
}

func TestRunScreenshotDirFailureIsSetupError(t *testing.T) {
	f := newFixture(t, &fakeBrowser{posts: map[string][]string{goodURL: {"p1"}}}, goodURL)

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	opts := scraper.DefaultOptions()
	opts.ScreenshotDir = filepath.Join(blocker, "shots")
	f.orch.scraper = scraper.NewScraper(scraper.DefaultSelectors(), opts, plainText{}, observability.NewNopLogger())

	launched := false
	f.orch.launch = func(ctx context.Context) (Browser, error) {
		launched = true
		return f.browser, nil
	}

	report, err := f.orch.Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "setup failed")
	assert.NotContains(t, err.Error(), "scraping interrupted")
	assert.False(t, launched)
	assert.Nil(t, report.Harvest)
	assert.Zero(t, f.sender.calls)
}
