package shader

import (
	"testing"

	"github.com/gogpu/framepipe/effect"
)

func TestThumbnailStripAccumulates(t *testing.T) {
	cfg, pool := newTestConfig(t)
	out := &collector{}
	chain := buildChain(t, cfg, out, 4, 4, effect.ThumbnailStrip{
		TimestampsMs: []int64{0, 100},
		CellWidth:    4,
		CellHeight:   4,
	})

	if w, h := chain.OutputSize(); w != 8 || h != 4 {
		t.Fatalf("output size = %dx%d, want 8x4", w, h)
	}

	// First frame fills cell 0 and emits a strip with cell 1 empty.
	first, err := pool.Acquire(4, 4)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	for i := range first.Data() {
		first.Data()[i] = 200
	}
	feed(t, chain, first, 0)

	if len(out.frames) != 1 {
		t.Fatalf("got %d strips after first frame, want 1", len(out.frames))
	}
	strip := out.frames[0].Texture
	if got := strip.Data()[0]; got != 200 {
		t.Fatalf("cell 0 pixel = %d, want 200", got)
	}
	if got := strip.Data()[4*4]; got != 0 {
		t.Fatalf("cell 1 pixel = %d, want empty", got)
	}

	// A frame before the next timestamp emits nothing.
	feed(t, chain, acquireGradient(t, pool, 4, 4), 50000)
	if len(out.frames) != 1 {
		t.Fatalf("mid-interval frame emitted a strip")
	}

	// The frame reaching 100ms fills cell 1.
	second, err := pool.Acquire(4, 4)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	for i := range second.Data() {
		second.Data()[i] = 90
	}
	feed(t, chain, second, 100000)

	if len(out.frames) != 2 {
		t.Fatalf("got %d strips after second timestamp, want 2", len(out.frames))
	}
	strip = out.frames[1].Texture
	if got := strip.Data()[0]; got != 200 {
		t.Fatalf("cell 0 pixel = %d, want 200 preserved", got)
	}
	if got := strip.Data()[4*4]; got != 90 {
		t.Fatalf("cell 1 pixel = %d, want 90", got)
	}
}

func TestBlurStageZeroSigmaPassesThrough(t *testing.T) {
	cfg, pool := newTestConfig(t)
	out := &collector{}
	chain := buildChain(t, cfg, out, 4, 4, effect.Blur{
		SigmaFunc: func(us int64) (float64, float64) {
			if us < 1000 {
				return 0, 0
			}
			return 1.5, 1.5
		},
	})

	sharp := acquireGradient(t, pool, 4, 4)
	want := make([]byte, len(sharp.Data()))
	copy(want, sharp.Data())
	feed(t, chain, sharp, 0)

	if out.frames[0].Texture != sharp {
		t.Fatal("zero-sigma frame was copied instead of passed through")
	}

	blurred := acquireGradient(t, pool, 4, 4)
	feed(t, chain, blurred, 2000)
	if out.frames[1].Texture == blurred {
		t.Fatal("blurred frame reused the input texture")
	}
}
