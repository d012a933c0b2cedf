package texture

import (
	"errors"
	"fmt"
	"sync"
)

// Pool errors. Callers should test with errors.Is.
var (
	// ErrPoolClosed indicates the pool has been closed; blocked Acquire
	// calls are woken with this error.
	ErrPoolClosed = errors.New("texture: pool closed")

	// ErrExhausted is returned by fail-fast pools when the capacity bound
	// is reached and no texture is free.
	ErrExhausted = errors.New("texture: pool exhausted")

	// ErrNotOwned indicates a Release of a texture the pool did not hand
	// out, or a double release. Both are programming errors in the caller.
	ErrNotOwned = errors.New("texture: release of unowned texture")
)

// Pool allocates and recycles textures, grouped in buckets by dimensions.
//
// The pool enforces a capacity bound per bucket: at most capacity textures
// of one size exist at a time. When the bound is reached, Acquire blocks
// until a texture of that size is released (backpressure). A fail-fast
// pool returns ErrExhausted instead of blocking; it backs bounded
// texture-output consumers that are required to release frames at the
// configured capacity.
//
// All methods are safe for concurrent use, although in practice the
// pipeline's execution goroutine is the only acquirer.
type Pool struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int
	failFast bool
	closed   bool
	nextID   uint64

	free  map[sizeKey][]*Texture
	inUse map[*Texture]struct{}
	// outstanding counts live textures (free + in use) per bucket.
	outstanding map[sizeKey]int
}

// sizeKey identifies a bucket of identically-sized textures.
type sizeKey struct {
	width  int
	height int
}

// DefaultCapacity is the per-bucket texture bound used when no explicit
// capacity is configured. One input, one output and two intermediates per
// size cover a linear chain without stalling.
const DefaultCapacity = 10

// NewPool creates a pool with the given per-bucket capacity.
// A capacity of 0 selects DefaultCapacity.
func NewPool(capacity int) *Pool {
	return newPool(capacity, false)
}

// NewFailFastPool creates a pool that returns ErrExhausted instead of
// blocking when a bucket is at capacity.
func NewFailFastPool(capacity int) *Pool {
	return newPool(capacity, true)
}

func newPool(capacity int, failFast bool) *Pool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	p := &Pool{
		capacity:    capacity,
		failFast:    failFast,
		free:        make(map[sizeKey][]*Texture),
		inUse:       make(map[*Texture]struct{}),
		outstanding: make(map[sizeKey]int),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Capacity returns the per-bucket capacity bound.
func (p *Pool) Capacity() int { return p.capacity }

// Acquire returns a texture of the requested size, transferring ownership
// to the caller. The returned texture is cleared.
//
// If the bucket is at capacity, Acquire blocks until a texture is released
// or the pool is closed; fail-fast pools return ErrExhausted immediately.
func (p *Pool) Acquire(width, height int) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("texture: invalid size %dx%d", width, height)
	}
	key := sizeKey{width: width, height: height}

	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		if p.closed {
			return nil, ErrPoolClosed
		}
		if bucket := p.free[key]; len(bucket) > 0 {
			tex := bucket[len(bucket)-1]
			p.free[key] = bucket[:len(bucket)-1]
			p.inUse[tex] = struct{}{}
			tex.Clear()
			return tex, nil
		}
		if p.outstanding[key] < p.capacity {
			p.nextID++
			tex := &Texture{
				id:     p.nextID,
				width:  width,
				height: height,
				format: defaultFormat,
				data:   make([]byte, width*height*4),
			}
			p.outstanding[key]++
			p.inUse[tex] = struct{}{}
			return tex, nil
		}
		if p.failFast {
			return nil, fmt.Errorf("texture: %dx%d bucket at capacity %d: %w",
				width, height, p.capacity, ErrExhausted)
		}
		p.cond.Wait()
	}
}

// Release returns a texture to its bucket and wakes one blocked acquirer.
// Releasing a texture the pool did not hand out, or releasing twice,
// returns ErrNotOwned.
func (p *Pool) Release(tex *Texture) error {
	if tex == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.inUse[tex]; !ok {
		return fmt.Errorf("texture: id %d: %w", tex.id, ErrNotOwned)
	}
	delete(p.inUse, tex)

	if p.closed {
		key := sizeKey{width: tex.width, height: tex.height}
		p.outstanding[key]--
		tex.destroy()
		return nil
	}

	key := sizeKey{width: tex.width, height: tex.height}
	p.free[key] = append(p.free[key], tex)
	p.cond.Broadcast()
	return nil
}

// InUse reports the number of textures currently held by callers.
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inUse)
}

// FreeCount reports the number of idle textures across all buckets.
func (p *Pool) FreeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, bucket := range p.free {
		n += len(bucket)
	}
	return n
}

// Close destroys all idle textures and wakes blocked acquirers with
// ErrPoolClosed. Textures still in use are destroyed as they are released.
// Close is idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for key, bucket := range p.free {
		for _, tex := range bucket {
			tex.destroy()
			p.outstanding[key]--
		}
	}
	p.free = make(map[sizeKey][]*Texture)
	p.cond.Broadcast()
}
