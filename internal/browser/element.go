package browser

import (
	"context"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"linkedin-digest/internal/scraper"
)

const centerIntoViewJS = `function() { this.scrollIntoView({block: 'center'}) }`

var (
	_ scraper.PostElement = (*element)(nil)
	_ scraper.Control     = (*element)(nil)
	_ scraper.Browser     = (*Session)(nil)
)

// element оборачивает *rod.Element в scraper.PostElement и scraper.Control.
type element struct {
	el *rod.Element
}

func (e *element) Controls(ctx context.Context, selector string) ([]scraper.Control, error) {
	els, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}

	controls := make([]scraper.Control, 0, len(els))
	for _, el := range els {
		controls = append(controls, &element{el: el})
	}
	return controls, nil
}

func (e *element) CenterInView(ctx context.Context) error {
	_, err := e.el.Context(ctx).Eval(centerIntoViewJS)
	return err
}

func (e *element) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

// Screenshot снимает ровно прямоугольник элемента в PNG.
func (e *element) Screenshot(ctx context.Context) ([]byte, error) {
	return e.el.Context(ctx).Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
}

func (e *element) HTML(ctx context.Context) (string, error) {
	return e.el.Context(ctx).HTML()
}
