package browser

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer ограничивает частоту переходов между страницами.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer пропускает perMinute переходов в минуту, не больше одного подряд.
// perMinute <= 0 отключает ограничение.
func NewPacer(perMinute int) *Pacer {
	if perMinute <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)}
}

// Wait блокирует до разрешения на переход или отмены контекста
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
