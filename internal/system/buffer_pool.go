package system

import (
	"image"
	"sync"
)

// rgbaPool переиспользует буферы image.RGBA одного размера, чтобы
// параллельная оптимизация кадров не нагружала GC.
type rgbaPool struct {
	pools map[string]*sync.Pool
	mu    sync.RWMutex
}

var framePool = &rgbaPool{
	pools: make(map[string]*sync.Pool),
}

// AcquireRGBA возвращает буфер нужного размера из пула или создает новый.
func AcquireRGBA(rect image.Rectangle) *image.RGBA {
	return framePool.get(rect)
}

// ReleaseRGBA возвращает буфер в пул для повторного использования.
func ReleaseRGBA(img *image.RGBA) {
	framePool.put(img)
}

func (p *rgbaPool) get(rect image.Rectangle) *image.RGBA {
	key := rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(rect)
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *rgbaPool) put(img *image.RGBA) {
	if img == nil {
		return
	}
	key := img.Rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
