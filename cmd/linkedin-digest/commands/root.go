package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"linkedin-digest/internal/app"
	"linkedin-digest/internal/browser"
	"linkedin-digest/internal/config"
	"linkedin-digest/internal/digest"
	"linkedin-digest/internal/mailer"
	"linkedin-digest/internal/normalize"
	"linkedin-digest/internal/observability"
	"linkedin-digest/internal/scraper"
)

var (
	configPath  string
	envFile     string
	dryRun      bool
	previewFile string
)

var rootCmd = &cobra.Command{
	Use:   "linkedin-digest [--config <path>] [--dry-run]",
	Short: "Collects recent LinkedIn posts from configured sources and emails them as an HTML digest.",
	Args:  cobra.NoArgs,
	Run:   run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "configs/config.yaml", "Path to the YAML config (optional).")
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "Dotenv file with credentials (optional).")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Write the digest to --preview-file instead of sending it.")
	rootCmd.Flags().StringVar(&previewFile, "preview-file", "digest_preview.html", "Output file for --dry-run.")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Failed to load %s: %v", envFile, err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	selectors, err := cfg.Selectors()
	if err != nil {
		log.Fatalf("Failed to load selectors: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogPath, cfg.Observability.LogLevel)
	if missing := cfg.Credentials.Missing(); len(missing) > 0 {
		logger.Warn("Credentials not set", "variables", strings.Join(missing, ","))
	}

	ctx, cancel := app.GracefulShutdown(logger, cfg.GetRunTimeout())
	defer cancel()

	scr := scraper.NewScraper(selectors, scraperOptions(cfg), normalize.NewNormalizer(cfg), logger)

	var sender app.Sender = mailer.NewMailer(cfg, logger)
	if dryRun {
		sender = mailer.NewPreviewSender(previewFile, logger)
	}

	launch := func(ctx context.Context) (app.Browser, error) {
		s, err := browser.Launch(ctx, cfg, selectors, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	orch := app.NewOrchestrator(cfg, logger, launch, scr,
		digest.NewBuilder(cfg.Digest.Title, cfg.Digest.SubjectPrefix), sender)

	report, err := orch.Run(ctx)
	if err != nil {
		// ошибка запуска не меняет код выхода
		logger.Error("❌ Critical error", "run_id", report.RunID, "error", err.Error())
		return
	}

	logger.Info("Run completed",
		"run_id", report.RunID,
		"posts", len(report.Posts),
		"attachments", len(report.Attachments),
		"dry_run", dryRun,
	)
}

func scraperOptions(cfg *config.Config) scraper.Options {
	return scraper.Options{
		PostsPerSource: cfg.LinkedIn.PostsPerSource,
		ScrollCycles:   cfg.LinkedIn.ScrollCycles,
		ScrollFraction: cfg.LinkedIn.ScrollFraction,
		PageLoadDelay:  cfg.GetPageLoadDelay(),
		ScrollDelay:    cfg.GetScrollDelay(),
		ExpandDelay:    cfg.GetExpandDelay(),
		SettleDelay:    cfg.GetSettleDelay(),
		ScreenshotDir:  cfg.Digest.ScreenshotDir,
	}
}
