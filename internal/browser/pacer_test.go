package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacerDisabled(t *testing.T) {
	p := NewPacer(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 50; i++ {
		require.NoError(t, p.Wait(ctx))
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestPacerSpacesNavigations(t *testing.T) {
	// 600/мин -> один переход раз в 100 мс
	p := NewPacer(600)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(ctx))
	}
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestPacerHonoursCancellation(t *testing.T) {
	p := NewPacer(1)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, p.Wait(ctx))
	cancel()
	assert.Error(t, p.Wait(ctx))
}
