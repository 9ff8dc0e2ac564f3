package frame

import "testing"

// fillSolid paints the whole buffer with one RGBA color.
func fillSolid(t *testing.T, b *Buffer, r, g, bl, a uint8) {
	t.Helper()
	for i := 0; i < len(b.Data); i += 4 {
		b.Data[i] = r
		b.Data[i+1] = g
		b.Data[i+2] = bl
		b.Data[i+3] = a
	}
}

func TestBufferDimensions(t *testing.T) {
	b := NewBuffer(100, 50)
	if b.Width != 100 || b.Height != 50 {
		t.Fatalf("dimensions = %dx%d, want 100x50", b.Width, b.Height)
	}
	if len(b.Data) != 100*50*4 {
		t.Fatalf("data len = %d, want %d", len(b.Data), 100*50*4)
	}
}

func TestLuminanceExtremes(t *testing.T) {
	b := NewBuffer(1, 1)
	if got := b.Luminance(0, 0); got != 0 {
		t.Errorf("black luminance = %d, want 0", got)
	}
	fillSolid(t, b, 255, 255, 255, 255)
	if got := b.Luminance(0, 0); got != 255 {
		t.Errorf("white luminance = %d, want 255", got)
	}
	if got := b.LuminanceLinear(0, 0); got != 255 {
		t.Errorf("white linear luminance = %d, want 255", got)
	}
}

func TestAreaSampleUniform(t *testing.T) {
	b := NewBuffer(8, 8)
	fillSolid(t, b, 40, 80, 120, 255)
	r, g, bl, _ := b.AreaSample(0, 0, 8, 8)
	if r != 40 || g != 80 || bl != 120 {
		t.Errorf("area sample = (%d,%d,%d), want (40,80,120)", r, g, bl)
	}
}

func TestAreaSampleSinglePixelFastPath(t *testing.T) {
	b := NewBuffer(4, 4)
	b.Data[0], b.Data[1], b.Data[2], b.Data[3] = 10, 20, 30, 255
	r, g, bl, _ := b.AreaSample(0, 0, 1, 1)
	if r != 10 || g != 20 || bl != 30 {
		t.Errorf("1x1 sample = (%d,%d,%d), want (10,20,30)", r, g, bl)
	}
}

func TestGridCopyFromMismatchIsNoop(t *testing.T) {
	a := NewGrid(4, 4)
	other := NewGrid(5, 4)
	for i := range other.Cells {
		other.Cells[i] = Cell{Ch: '#', Fg: [3]uint8{255, 255, 255}}
	}
	a.CopyFrom(other)
	if a.Get(0, 0).Ch != ' ' {
		t.Error("copy_from with mismatched dimensions modified the grid")
	}
}

func TestGridCopyFromMatch(t *testing.T) {
	a := NewGrid(3, 3)
	other := NewGrid(3, 3)
	other.Set(1, 1, Cell{Ch: '@', Fg: [3]uint8{1, 2, 3}})
	a.CopyFrom(other)
	if got := a.Get(1, 1); got.Ch != '@' || got.Fg != [3]uint8{1, 2, 3} {
		t.Errorf("copied cell = %+v", got)
	}
}

func TestGridClear(t *testing.T) {
	g := NewGrid(2, 2)
	g.Set(0, 0, Cell{Ch: '#'})
	g.Clear()
	if g.Get(0, 0).Ch != ' ' {
		t.Error("clear left a non-blank cell")
	}
}

func TestPoolRecyclesWithoutAllocating(t *testing.T) {
	p := NewPool(16, 16, PoolSize)

	seen := map[*Buffer]bool{}
	// Simulate steady state: acquire, hand off, release, repeat far more
	// times than the pool size. Every handle must come from the original set.
	for i := 0; i < 1000; i++ {
		b := p.Acquire()
		if b == nil {
			t.Fatalf("pool starved at iteration %d with no outstanding handles", i)
		}
		seen[b] = true
		b.Release()
	}
	if len(seen) > PoolSize {
		t.Errorf("pool handed out %d distinct buffers, want <= %d", len(seen), PoolSize)
	}
}

func TestPoolSkipsWhenSaturated(t *testing.T) {
	p := NewPool(4, 4, PoolSize)
	held := make([]*Buffer, 0, PoolSize)
	for {
		b := p.Acquire()
		if b == nil {
			break
		}
		held = append(held, b)
	}
	if len(held) != PoolSize {
		t.Fatalf("acquired %d buffers before starvation, want %d", len(held), PoolSize)
	}
	if b := p.Acquire(); b != nil {
		t.Error("saturated pool handed out a buffer instead of skipping")
	}
	held[0].Release()
	if b := p.Acquire(); b == nil {
		t.Error("pool did not recycle a released buffer")
	}
}
