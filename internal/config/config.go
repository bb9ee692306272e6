package config

import (
	"fmt"
	"time"
)

type Config struct {
	Sources       []string            `yaml:"sources"`
	Browser       BrowserConfig       `yaml:"browser"`
	LinkedIn      LinkedInConfig      `yaml:"linkedin"`
	Timing        TimingConfig        `yaml:"timing"`
	SelectorsFile string              `yaml:"selectors_file"`
	Normalize     NormalizeConfig     `yaml:"normalize"`
	Digest        DigestConfig        `yaml:"digest"`
	SMTP          SMTPConfig          `yaml:"smtp"`
	Observability ObservabilityConfig `yaml:"observability"`
	RunTimeoutM   int                 `yaml:"run_timeout_m"`

	// Секреты только из окружения
	Credentials Credentials `yaml:"-"`

	// каталог файла конфигурации, относительно него ищется selectors_file
	dir string
}

type BrowserConfig struct {
	ChromePath           string `yaml:"chrome_path"`
	Headless             bool   `yaml:"headless"`
	NoSandbox            bool   `yaml:"no_sandbox"`
	WindowWidth          int    `yaml:"window_width"`
	WindowHeight         int    `yaml:"window_height"`
	PageTimeoutS         int    `yaml:"page_timeout_s"`
	LoginTimeoutS        int    `yaml:"login_timeout_s"`
	NavigationsPerMinute int    `yaml:"navigations_per_minute"`
}

type LinkedInConfig struct {
	LoginURL       string  `yaml:"login_url"`
	LandingMarker  string  `yaml:"landing_marker"`
	PostsPerSource int     `yaml:"posts_per_source"`
	ScrollCycles   int     `yaml:"scroll_cycles"`
	ScrollFraction float64 `yaml:"scroll_fraction"`
}

type TimingConfig struct {
	PageLoadDelayMS int `yaml:"page_load_delay_ms"`
	ScrollDelayMS   int `yaml:"scroll_delay_ms"`
	ExpandDelayMS   int `yaml:"expand_delay_ms"`
	SettleDelayMS   int `yaml:"settle_delay_ms"`
}

type NormalizeConfig struct {
	StripBlocks    []string `yaml:"strip_blocks"`
	TrimNBSP       bool     `yaml:"trim_nbsp"`
	CollapseSpaces bool     `yaml:"collapse_spaces"`
	MaxPostChars   int      `yaml:"max_post_chars"`
}

type DigestConfig struct {
	Title         string `yaml:"title"`
	SubjectPrefix string `yaml:"subject_prefix"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      string `yaml:"tls"`
	FromName string `yaml:"from_name"`
}

type ObservabilityConfig struct {
	LogPath  string `yaml:"log_path"`
	LogLevel string `yaml:"log_level"`
}

// DefaultSources — фиксированный список лент.
var DefaultSources = []string{
	"https://www.linkedin.com/company/how-to-ai-guide/posts/?feedView=all&viewAsMember=true",
	"https://www.linkedin.com/in/zoranmilosevic/recent-activity/all/",
	"https://www.linkedin.com/company/whatisaimedia/posts/?feedView=all&viewAsMember=true",
	"https://www.linkedin.com/company/how-to-prompt/posts/?feedView=all&viewAsMember=true",
	"https://www.linkedin.com/company/ai-breaking/posts/?feedView=all&viewAsMember=true",
	"https://www.linkedin.com/in/midudev/recent-activity/all/",
}

// Default — конфигурация, которая действует без файла.
func Default() *Config {
	sources := make([]string, len(DefaultSources))
	copy(sources, DefaultSources)

	return &Config{
		Sources: sources,
		Browser: BrowserConfig{
			Headless:             true,
			NoSandbox:            true,
			WindowWidth:          1920,
			WindowHeight:         1080,
			PageTimeoutS:         30,
			LoginTimeoutS:        10,
			NavigationsPerMinute: 20,
		},
		LinkedIn: LinkedInConfig{
			LoginURL:       "https://www.linkedin.com/login",
			LandingMarker:  "/feed",
			PostsPerSource: 3,
			ScrollCycles:   3,
			ScrollFraction: 0.8,
		},
		Timing: TimingConfig{
			PageLoadDelayMS: 5000,
			ScrollDelayMS:   2000,
			ExpandDelayMS:   1000,
			SettleDelayMS:   1500,
		},
		Normalize: NormalizeConfig{
			// скрытые подписи для скринридеров («hashtag» перед #тегом)
			StripBlocks: []string{".visually-hidden"},
			TrimNBSP:    true,
		},
		Digest: DigestConfig{
			Title:         "Resumen de Publicaciones de LinkedIn",
			SubjectPrefix: "Resumen de publicaciones de LinkedIn",
			ScreenshotDir: ".",
		},
		SMTP: SMTPConfig{
			Host:     "smtp.gmail.com",
			Port:     465,
			TLS:      TLSImplicit,
			FromName: "LinkedIn Digest",
		},
		Observability: ObservabilityConfig{
			LogPath:  "logs/linkedin-digest.log",
			LogLevel: "info",
		},
		RunTimeoutM: 30,
	}
}

const (
	TLSImplicit = "implicit"
	TLSStartTLS = "starttls"
	TLSNone     = "none"
)

// Validation
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("sources must not be empty")
	}
	if c.Browser.PageTimeoutS <= 0 {
		return fmt.Errorf("browser.page_timeout_s must be > 0")
	}
	if c.Browser.LoginTimeoutS <= 0 {
		return fmt.Errorf("browser.login_timeout_s must be > 0")
	}
	if c.Browser.NavigationsPerMinute < 0 {
		return fmt.Errorf("browser.navigations_per_minute must be >= 0")
	}
	if c.Browser.WindowWidth <= 0 || c.Browser.WindowHeight <= 0 {
		return fmt.Errorf("browser.window_width and browser.window_height must be > 0")
	}
	if c.LinkedIn.LoginURL == "" {
		return fmt.Errorf("linkedin.login_url is required")
	}
	if c.LinkedIn.LandingMarker == "" {
		return fmt.Errorf("linkedin.landing_marker is required")
	}
	if c.LinkedIn.PostsPerSource <= 0 {
		return fmt.Errorf("linkedin.posts_per_source must be > 0")
	}
	if c.LinkedIn.ScrollCycles < 0 {
		return fmt.Errorf("linkedin.scroll_cycles must be >= 0")
	}
	if c.LinkedIn.ScrollFraction <= 0 || c.LinkedIn.ScrollFraction > 1 {
		return fmt.Errorf("linkedin.scroll_fraction must be in (0, 1]")
	}
	if c.Timing.PageLoadDelayMS < 0 || c.Timing.ScrollDelayMS < 0 || c.Timing.ExpandDelayMS < 0 || c.Timing.SettleDelayMS < 0 {
		return fmt.Errorf("timing delays must be >= 0")
	}
	if c.Normalize.MaxPostChars < 0 {
		return fmt.Errorf("normalize.max_post_chars must be >= 0")
	}
	if c.Digest.Title == "" {
		return fmt.Errorf("digest.title is required")
	}
	if c.Digest.SubjectPrefix == "" {
		return fmt.Errorf("digest.subject_prefix is required")
	}
	if c.SMTP.Host == "" {
		return fmt.Errorf("smtp.host is required")
	}
	if c.SMTP.Port <= 0 {
		return fmt.Errorf("smtp.port must be > 0")
	}
	if c.SMTP.TLS != TLSImplicit && c.SMTP.TLS != TLSStartTLS && c.SMTP.TLS != TLSNone {
		return fmt.Errorf("smtp.tls must be 'implicit', 'starttls' or 'none'")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	if c.RunTimeoutM <= 0 {
		return fmt.Errorf("run_timeout_m must be > 0")
	}
	return nil
}

// Getters
func (c *Config) GetPageTimeout() time.Duration {
	return time.Duration(c.Browser.PageTimeoutS) * time.Second
}

func (c *Config) GetLoginTimeout() time.Duration {
	return time.Duration(c.Browser.LoginTimeoutS) * time.Second
}

func (c *Config) GetPageLoadDelay() time.Duration {
	return time.Duration(c.Timing.PageLoadDelayMS) * time.Millisecond
}

func (c *Config) GetScrollDelay() time.Duration {
	return time.Duration(c.Timing.ScrollDelayMS) * time.Millisecond
}

func (c *Config) GetExpandDelay() time.Duration {
	return time.Duration(c.Timing.ExpandDelayMS) * time.Millisecond
}

func (c *Config) GetSettleDelay() time.Duration {
	return time.Duration(c.Timing.SettleDelayMS) * time.Millisecond
}

func (c *Config) GetRunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutM) * time.Minute
}

func (c *Config) GetSMTPAddr() string {
	return fmt.Sprintf("%s:%d", c.SMTP.Host, c.SMTP.Port)
}
