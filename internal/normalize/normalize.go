package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"linkedin-digest/internal/config"
)

var horizontalSpaces = regexp.MustCompile(`[ \t]+`)

type Normalizer struct {
	cfg *config.Config
}

func NewNormalizer(cfg *config.Config) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// ExtractText находит элемент selector в HTML публикации и возвращает его текст.
// Переводы строк (<br>, абзацы) сохраняются.
func (n *Normalizer) ExtractText(html, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse post HTML: %w", err)
	}

	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("text element %q not found", selector)
	}

	return n.cleanSelection(sel), nil
}

// cleanSelection убирает мусорные блоки и извлекает текст
func (n *Normalizer) cleanSelection(sel *goquery.Selection) string {
	sel.Find("script, style").Remove()
	for _, block := range n.cfg.Normalize.StripBlocks {
		sel.Find(block).Remove()
	}

	sel.Find("br").ReplaceWithHtml("\n")
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		if p.Next().Length() > 0 {
			p.AppendHtml("\n")
		}
	})

	text := sel.Text()

	if n.cfg.Normalize.TrimNBSP {
		// Заменяем NBSP (\u00A0) на обычный пробел
		text = strings.ReplaceAll(text, "\u00A0", " ")
	}

	if n.cfg.Normalize.CollapseSpaces {
		// Схлопываем только горизонтальные пробелы, переводы строк остаются
		text = horizontalSpaces.ReplaceAllString(text, " ")
	}

	return n.TruncatePreview(strings.TrimSpace(text))
}

// TruncatePreview обрезает текст до MaxPostChars символов (0 — без ограничения)
func (n *Normalizer) TruncatePreview(text string) string {
	limit := n.cfg.Normalize.MaxPostChars
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	truncated := string(runes[:limit-1])

	// Находим последний пробел перед лимитом
	if lastSpace := strings.LastIndexAny(truncated, " \n"); lastSpace > 0 {
		return strings.TrimRight(truncated[:lastSpace], " \n") + "…"
	}

	return truncated + "…"
}
