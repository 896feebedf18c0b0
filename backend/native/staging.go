package native

import (
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gtex"
)

// Staging buffers are carved out of blocks of at least stageBlock bytes.
// Every stage starts at a multiple of stageAlign, where buffer to image
// copies may read from.
const (
	stageBlock = 4 << 20
	stageAlign = gtex.StageAlignment

	// DefaultRetain is how many bytes of idle staging memory a pool keeps
	// across Reclaim calls.
	DefaultRetain = 16 * stageBlock
)

// stageBlockBuf is one mapped upload buffer with a bump allocator.
type stageBlockBuf struct {
	buffer hal.Buffer
	data   []byte
	used   uint64
}

func (b *stageBlockBuf) reserve(size uint64) (uint64, bool) {
	off := (b.used + stageAlign - 1) &^ (stageAlign - 1)
	if off+size > uint64(len(b.data)) {
		return 0, false
	}
	b.used = off + size
	return off, true
}

// PoolStats is a snapshot of a StagingPool.
type PoolStats struct {
	// Blocks holds buffers with stages handed out since the last
	// Reclaim; FreeBlocks holds buffers ready for reuse.
	Blocks     int
	FreeBlocks int

	// Images counts transient blit images awaiting Reclaim.
	Images int

	// Staged is the number of bytes handed out since the pool was
	// created.
	Staged uint64

	// Released counts blocks destroyed because the idle memory exceeded
	// the retain limit.
	Released int
}

// StagingPool lends host-visible upload memory and transient images to
// any number of textures. Loans stay valid until Reclaim, which the
// owner calls once the GPU has finished every submission that used them.
//
// A StagingPool is safe for concurrent use.
type StagingPool struct {
	mu sync.Mutex

	device hal.Device

	active []*stageBlockBuf
	free   []*stageBlockBuf
	images []*gtex.StageImage

	retain    uint64
	staged    uint64
	released  int
	destroyed bool
}

var _ gtex.StagingPool = (*StagingPool)(nil)

// NewStagingPool returns an empty pool allocating from device.
func NewStagingPool(device hal.Device) *StagingPool {
	return &StagingPool{device: device, retain: DefaultRetain}
}

// SetRetain sets how many bytes of idle blocks survive Reclaim. Older
// blocks are released first.
func (p *StagingPool) SetRetain(n uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.retain = n
}

// AcquireStage reserves size bytes of mapped upload memory.
func (p *StagingPool) AcquireStage(size uint64) (*gtex.Stage, error) {
	if size == 0 {
		return nil, errors.New("native: zero-sized stage")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return nil, ErrPoolDestroyed
	}

	if n := len(p.active); n > 0 {
		if off, ok := p.active[n-1].reserve(size); ok {
			return p.stage(p.active[n-1], off, size), nil
		}
	}
	for i, b := range p.free {
		if off, ok := b.reserve(size); ok {
			p.free = append(p.free[:i], p.free[i+1:]...)
			p.active = append(p.active, b)
			return p.stage(b, off, size), nil
		}
	}

	b, err := p.newBlock(max(size, stageBlock))
	if err != nil {
		return nil, err
	}
	off, _ := b.reserve(size)
	p.active = append(p.active, b)
	return p.stage(b, off, size), nil
}

func (p *StagingPool) stage(b *stageBlockBuf, off, size uint64) *gtex.Stage {
	p.staged += size
	return &gtex.Stage{
		Buffer: b.buffer,
		Offset: off,
		Data:   b.data[off : off+size : off+size],
	}
}

func (p *StagingPool) newBlock(size uint64) (*stageBlockBuf, error) {
	size = (size + stageAlign - 1) &^ (stageAlign - 1)
	buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label:            "gtex_staging",
		Size:             size,
		Usage:            gputypes.BufferUsageCopySrc | gputypes.BufferUsageMapWrite,
		MappedAtCreation: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create %d byte staging buffer", size)
	}
	m, err := p.device.MapBuffer(buf, 0, size)
	if err != nil {
		p.device.DestroyBuffer(buf)
		return nil, errors.Wrap(err, "map staging buffer")
	}
	gtex.Logger().Debug("staging block created", "size", size)
	return &stageBlockBuf{
		buffer: buf,
		data:   unsafe.Slice((*byte)(m.Ptr), size),
	}, nil
}

// AcquireImage creates a transient single level image sampled by the
// blit path. It is destroyed by the next Reclaim.
func (p *StagingPool) AcquireImage(req gtex.ImageRequest) (*gtex.StageImage, error) {
	if req.Width == 0 || req.Height == 0 {
		return nil, errors.Newf("native: empty stage image %dx%d", req.Width, req.Height)
	}
	layers := max(req.Layers, 1)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return nil, ErrPoolDestroyed
	}

	size := hal.Extent3D{Width: req.Width, Height: req.Height, DepthOrArrayLayers: layers}
	tex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "gtex_stage_image",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        req.Format,
		Usage:         gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create %s stage image", req.Format)
	}
	img := &gtex.StageImage{Texture: tex, Format: req.Format, Size: size}

	dim := gputypes.TextureViewDimension2D
	if layers > 1 {
		dim = gputypes.TextureViewDimension2DArray
	}
	img.View, err = p.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           "gtex_stage_view",
		Format:          req.Format,
		Dimension:       dim,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: layers,
	})
	if err != nil {
		p.destroyImage(img)
		return nil, errors.Wrap(err, "create stage image view")
	}
	for i := range layers {
		v, err := p.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label:           "gtex_stage_layer_view",
			Format:          req.Format,
			Dimension:       gputypes.TextureViewDimension2D,
			Aspect:          gputypes.TextureAspectAll,
			MipLevelCount:   1,
			BaseArrayLayer:  i,
			ArrayLayerCount: 1,
		})
		if err != nil {
			p.destroyImage(img)
			return nil, errors.Wrapf(err, "create stage layer view %d", i)
		}
		img.LayerViews = append(img.LayerViews, v)
	}

	p.images = append(p.images, img)
	return img, nil
}

func (p *StagingPool) destroyImage(img *gtex.StageImage) {
	for i := len(img.LayerViews) - 1; i >= 0; i-- {
		p.device.DestroyTextureView(img.LayerViews[i])
	}
	if img.View != nil {
		p.device.DestroyTextureView(img.View)
	}
	p.device.DestroyTexture(img.Texture)
}

// Reclaim returns every block to the free list and destroys every
// transient image. Stages and images handed out earlier must no longer
// be referenced by pending GPU work.
func (p *StagingPool) Reclaim() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, b := range p.active {
		b.used = 0
		p.free = append(p.free, b)
	}
	p.active = p.active[:0]
	for _, img := range p.images {
		p.destroyImage(img)
	}
	p.images = p.images[:0]
	p.trim()
}

// trim destroys the oldest free blocks until the idle memory fits the
// retain limit. The caller must hold p.mu.
func (p *StagingPool) trim() {
	var idle uint64
	for _, b := range p.free {
		idle += uint64(len(b.data))
	}
	n := 0
	for n < len(p.free) && idle > p.retain {
		b := p.free[n]
		idle -= uint64(len(b.data))
		p.release(b)
		n++
	}
	if n > 0 {
		p.free = append(p.free[:0], p.free[n:]...)
		p.released += n
		gtex.Logger().Debug("staging blocks released", "count", n, "idle", idle)
	}
}

// release unmaps and destroys one block. The caller must hold p.mu.
func (p *StagingPool) release(b *stageBlockBuf) {
	if err := p.device.UnmapBuffer(b.buffer); err != nil {
		gtex.Logger().Warn("staging block unmap failed", "size", len(b.data), "err", err)
	}
	p.device.DestroyBuffer(b.buffer)
}

// Stats returns a snapshot of the pool.
func (p *StagingPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Blocks:     len(p.active),
		FreeBlocks: len(p.free),
		Images:     len(p.images),
		Staged:     p.staged,
		Released:   p.released,
	}
}

// Destroy releases every buffer and image. Later acquisitions fail with
// ErrPoolDestroyed. Safe to call more than once.
func (p *StagingPool) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return
	}
	p.destroyed = true
	for _, img := range p.images {
		p.destroyImage(img)
	}
	p.images = nil
	for _, b := range append(p.active, p.free...) {
		p.release(b)
	}
	p.active, p.free = nil, nil
}
