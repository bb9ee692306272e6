package scraper

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	// FallbackSourceName используется, когда URL не похож ни на компанию, ни на профиль.
	FallbackSourceName = "LinkedIn Source"

	// PlaceholderSource и PlaceholderText — публикация-заглушка, если ничего не найдено.
	PlaceholderSource = "Sistema"
	PlaceholderText   = "No se encontraron publicaciones recientes en ninguna fuente."

	companyMarker = "/company/"
	profileMarker = "/in/"

	screenshotTimeLayout = "20060102_150405"
)

// SourceName извлекает читаемое имя источника из URL.
func SourceName(rawURL string) string {
	for _, marker := range []string{companyMarker, profileMarker} {
		idx := strings.Index(rawURL, marker)
		if idx < 0 {
			continue
		}
		segment := rawURL[idx+len(marker):]
		if end := strings.IndexAny(segment, "/?#"); end >= 0 {
			segment = segment[:end]
		}
		if segment == "" {
			return FallbackSourceName
		}
		return titleCase(strings.ReplaceAll(segment, "-", " "))
	}
	return FallbackSourceName
}

// titleCase: буква после не-буквы — заглавная, остальные строчные.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// PlaceholderPost подставляется, когда за запуск ничего не собрано.
func PlaceholderPost() Post {
	return Post{Source: PlaceholderSource, Text: PlaceholderText}
}

// Namer выдаёт имена файлов скриншотов, уникальные в пределах запуска.
type Namer struct {
	issued map[string]struct{}
}

func NewNamer() *Namer {
	return &Namer{issued: make(map[string]struct{})}
}

// Next возвращает pub_<Source>_<index>_<YYYYMMDD_HHMMSS>.png; если такое имя
// уже выдавалось в этом запуске, добавляется суффикс _<n>.
func (n *Namer) Next(source string, index int, at time.Time) string {
	base := fmt.Sprintf("pub_%s_%d_%s", fileSafe(source), index, at.Format(screenshotTimeLayout))

	name := base + ".png"
	for i := 2; ; i++ {
		if _, taken := n.issued[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s_%d.png", base, i)
	}
	n.issued[name] = struct{}{}
	return name
}

// fileSafe заменяет пробелы и всё, что не входит в незарезервированные
// символы URL, на "_": имя файла служит и Content-ID, и ссылкой cid:.
func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '.', r == '_', r == '~':
			return r
		default:
			return '_'
		}
	}, name)
}
