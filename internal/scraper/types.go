package scraper

import (
	"context"
	"time"
)

// Post — одна захваченная публикация. Screenshot == "" означает "без скриншота".
type Post struct {
	Source     string
	Text       string
	Screenshot string
}

// PostOutcome — результат обработки одной публикации (Index с 1).
type PostOutcome struct {
	Index int
	Err   error
}

func (o PostOutcome) Skipped() bool { return o.Err != nil }

// SourceOutcome — результат обработки одного источника.
type SourceOutcome struct {
	URL   string
	Name  string
	Posts []PostOutcome
	Err   error
}

func (o SourceOutcome) Skipped() bool { return o.Err != nil }

// Captured считает успешно обработанные публикации источника.
func (o SourceOutcome) Captured() int {
	n := 0
	for _, p := range o.Posts {
		if !p.Skipped() {
			n++
		}
	}
	return n
}

// Harvest — всё, что собрал проход по источникам.
// Screenshots содержит каждый записанный файл, включая файлы пропущенных публикаций.
type Harvest struct {
	Posts       []Post
	Screenshots []string
	Sources     []SourceOutcome
}

// Selectors — DOM-маркеры LinkedIn.
type Selectors struct {
	UsernameField string `yaml:"username_field"`
	PasswordField string `yaml:"password_field"`
	PostContainer string `yaml:"post_container"`
	ShowMore      string `yaml:"show_more"`
	PostText      string `yaml:"post_text"`
}

// DefaultSelectors — маркеры текущей вёрстки LinkedIn.
func DefaultSelectors() *Selectors {
	return &Selectors{
		UsernameField: "#username",
		PasswordField: "#password",
		PostContainer: ".feed-shared-update-v2",
		ShowMore:      ".feed-shared-inline-show-more-text__link",
		PostText:      ".update-components-text",
	}
}

// Options управляют хореографией прохода по источнику.
type Options struct {
	PostsPerSource int
	ScrollCycles   int
	ScrollFraction float64
	PageLoadDelay  time.Duration
	ScrollDelay    time.Duration
	ExpandDelay    time.Duration
	SettleDelay    time.Duration
	ScreenshotDir  string
}

// DefaultOptions — фиксированные паузы и лимиты прохода.
func DefaultOptions() Options {
	return Options{
		PostsPerSource: 3,
		ScrollCycles:   3,
		ScrollFraction: 0.8,
		PageLoadDelay:  5 * time.Second,
		ScrollDelay:    2 * time.Second,
		ExpandDelay:    time.Second,
		SettleDelay:    1500 * time.Millisecond,
		ScreenshotDir:  ".",
	}
}

// Browser — то, что нужно проходу от открытой сессии.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	ScrollToFraction(ctx context.Context, fraction float64) error
	FindPosts(ctx context.Context, selector string) ([]PostElement, error)
}

// PostElement — контейнер публикации на текущей странице.
type PostElement interface {
	Controls(ctx context.Context, selector string) ([]Control, error)
	CenterInView(ctx context.Context) error
	Screenshot(ctx context.Context) ([]byte, error)
	HTML(ctx context.Context) (string, error)
}

// Control — кликабельный элемент внутри публикации («ещё»).
type Control interface {
	CenterInView(ctx context.Context) error
	Click(ctx context.Context) error
}

// TextExtractor достаёт текст публикации из её HTML.
type TextExtractor interface {
	ExtractText(html, selector string) (string, error)
}

// PauseFunc ждёт d или отмены контекста.
type PauseFunc func(ctx context.Context, d time.Duration) error

// Pause — PauseFunc по умолчанию.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
