package mailer

import (
	"context"
	"fmt"
	"os"

	"linkedin-digest/internal/digest"
	"linkedin-digest/internal/observability"
)

// PreviewSender пишет HTML дайджеста в файл вместо отправки (--dry-run).
type PreviewSender struct {
	path   string
	logger *observability.Logger
}

func NewPreviewSender(path string, logger *observability.Logger) *PreviewSender {
	return &PreviewSender{path: path, logger: logger}
}

func (p *PreviewSender) Send(ctx context.Context, d *digest.Digest, attachments []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(p.path, []byte(d.HTML), 0o644); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}

	p.logger.Info("Digest preview written",
		"file", p.path,
		"subject", d.Subject,
		"attachments", len(attachments),
	)
	return nil
}
