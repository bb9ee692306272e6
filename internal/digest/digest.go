package digest

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"linkedin-digest/internal/scraper"
)

const (
	headerDateLayout  = "02/01/2006 15:04"
	subjectDateLayout = "02/01/2006"
)

// Digest — готовое письмо.
type Digest struct {
	Subject string
	HTML    string
	// ContentIDs — имена файлов, на которые ссылаются <img src="cid:...">, по порядку.
	ContentIDs []string
}

// Section — подряд идущие публикации одного источника.
type Section struct {
	Source string
	Posts  []Entry
}

type Entry struct {
	Text  string
	Image template.URL
}

var page = template.Must(template.New("digest").Parse(`<html><body style="font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto;">
	<h1 style="color: #0077b5;">{{.Title}}</h1>
	<p style="color: #666;">Fecha: {{.Date}}</p>
{{- range .Sections}}
	<h2 style="margin-top: 30px; border-bottom: 2px solid #0077b5; padding-bottom: 5px; color: #333;">{{.Source}}</h2>
{{- range .Posts}}
	<div style="margin-bottom: 40px; border: 1px solid #e0e0e0; border-radius: 8px; overflow: hidden;">
		<div style="padding: 15px;">
			<pre style="white-space: pre-wrap; font-family: inherit; margin: 0 0 15px 0;">{{.Text}}</pre>
{{- if .Image}}
			<img src="{{.Image}}" style="max-width: 100%; border: 1px solid #ddd; border-radius: 4px;">
{{- end}}
		</div>
	</div>
{{- end}}
{{- end}}
</body></html>
`))

type Builder struct {
	title         string
	subjectPrefix string
}

func NewBuilder(title, subjectPrefix string) *Builder {
	return &Builder{title: title, subjectPrefix: subjectPrefix}
}

// Build собирает HTML письма. Публикации группируются только подряд:
// источник, встретившийся снова после другого, получает новый заголовок.
func (b *Builder) Build(posts []scraper.Post, now time.Time) (*Digest, error) {
	sections := Sections(posts)

	var buf bytes.Buffer
	err := page.Execute(&buf, struct {
		Title    string
		Date     string
		Sections []Section
	}{
		Title:    b.title,
		Date:     now.Format(headerDateLayout),
		Sections: sections,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render digest: %w", err)
	}

	return &Digest{
		Subject:    fmt.Sprintf("%s - %s", b.subjectPrefix, now.Format(subjectDateLayout)),
		HTML:       buf.String(),
		ContentIDs: ContentIDs(posts),
	}, nil
}

// Sections группирует подряд идущие публикации одного источника.
func Sections(posts []scraper.Post) []Section {
	var sections []Section
	for i, p := range posts {
		if i == 0 || p.Source != posts[i-1].Source {
			sections = append(sections, Section{Source: p.Source})
		}
		last := &sections[len(sections)-1]

		entry := Entry{Text: p.Text}
		if p.Screenshot != "" {
			// cid: не входит в безопасные схемы html/template
			entry.Image = template.URL("cid:" + ContentID(p.Screenshot))
		}
		last.Posts = append(last.Posts, entry)
	}
	return sections
}

// ContentID — идентификатор вложения для файла скриншота.
func ContentID(path string) string {
	return filepath.Base(path)
}

// ContentIDs — content-id каждой публикации со скриншотом.
func ContentIDs(posts []scraper.Post) []string {
	var ids []string
	for _, p := range posts {
		if p.Screenshot != "" {
			ids = append(ids, ContentID(p.Screenshot))
		}
	}
	return ids
}

// Attachments — файлы скриншотов публикаций, без отсутствующих.
func Attachments(posts []scraper.Post) []string {
	var files []string
	for _, p := range posts {
		if p.Screenshot != "" {
			files = append(files, p.Screenshot)
		}
	}
	return files
}
