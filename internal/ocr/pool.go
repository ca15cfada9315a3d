package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
)

// ErrPoolClosed is returned by Recognize after Close.
var ErrPoolClosed = errors.New("ocr: engine pool closed")

// Pool shares a fixed set of engines between goroutines. Each Recognize call
// checks out one idle engine, so at most Size recognitions run at once.
type Pool struct {
	engines chan Engine
	all     []Engine

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a pool from engines built by factory. If any engine fails to
// start, the ones already created are closed and the error is returned.
func NewPool(size int, factory func() (Engine, error)) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("ocr: pool size must be positive, got %d", size)
	}

	p := &Pool{
		engines: make(chan Engine, size),
		all:     make([]Engine, 0, size),
	}
	for i := 0; i < size; i++ {
		e, err := factory()
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("ocr: starting engine %d of %d: %w", i+1, size, err)
		}
		p.all = append(p.all, e)
		p.engines <- e
	}
	return p, nil
}

// Size returns the number of engines in the pool.
func (p *Pool) Size() int {
	return len(p.all)
}

// Recognize runs img through the next idle engine. It waits for an engine
// until ctx is done.
func (p *Pool) Recognize(ctx context.Context, img image.Image) ([]string, error) {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return nil, ErrPoolClosed
	}

	var e Engine
	select {
	case e = <-p.engines:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { p.engines <- e }()

	return e.Recognize(ctx, img)
}

// Info reports the first engine's description with the pool size filled in.
func (p *Pool) Info() Info {
	if len(p.all) == 0 {
		return Info{Available: false, Error: "no engines"}
	}
	info := p.all[0].Info()
	info.PoolSize = len(p.all)
	return info
}

// Close closes every engine. It does not wait for calls in flight.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	var errs []error
	for _, e := range p.all {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
