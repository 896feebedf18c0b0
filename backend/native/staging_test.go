package native

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gtex"
)

func TestAcquireStageSharesBlock(t *testing.T) {
	dev := &device{}
	pool := NewStagingPool(dev)

	a, err := pool.AcquireStage(10)
	if err != nil {
		t.Fatalf("AcquireStage(10) error: %v", err)
	}
	b, err := pool.AcquireStage(20)
	if err != nil {
		t.Fatalf("AcquireStage(20) error: %v", err)
	}

	if a.Buffer != b.Buffer {
		t.Error("small stages landed in different buffers")
	}
	if a.Offset != 0 || b.Offset != gtex.StageAlignment {
		t.Errorf("offsets = %d, %d, want 0, %d", a.Offset, b.Offset, gtex.StageAlignment)
	}
	if len(a.Data) != 10 || len(b.Data) != 20 {
		t.Errorf("len(Data) = %d, %d, want 10, 20", len(a.Data), len(b.Data))
	}
	if dev.buffers != 1 {
		t.Errorf("buffers created = %d, want 1", dev.buffers)
	}
	if got := pool.Stats().Staged; got != 30 {
		t.Errorf("Stats().Staged = %d, want 30", got)
	}
}

func TestStageAliasesMappedBuffer(t *testing.T) {
	dev := &device{}
	pool := NewStagingPool(dev)

	st, err := pool.AcquireStage(8)
	if err != nil {
		t.Fatalf("AcquireStage() error: %v", err)
	}
	copy(st.Data, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	m, err := dev.MapBuffer(st.Buffer, st.Offset, 8)
	if err != nil {
		t.Fatalf("MapBuffer() error: %v", err)
	}
	got := unsafe.Slice((*byte)(m.Ptr), 8)
	for i, v := range got {
		if v != byte(i+1) {
			t.Fatalf("mapped byte %d = %d, want %d", i, v, i+1)
		}
	}
}

func TestAcquireStageLargeGetsOwnBlock(t *testing.T) {
	dev := &device{}
	pool := NewStagingPool(dev)

	if _, err := pool.AcquireStage(64); err != nil {
		t.Fatal(err)
	}
	big, err := pool.AcquireStage(stageBlock + 1)
	if err != nil {
		t.Fatalf("AcquireStage(large) error: %v", err)
	}
	if big.Offset != 0 || uint64(len(big.Data)) != stageBlock+1 {
		t.Errorf("large stage = offset %d len %d, want 0 and %d", big.Offset, len(big.Data), stageBlock+1)
	}
	if s := pool.Stats(); s.Blocks != 2 {
		t.Errorf("Stats().Blocks = %d, want 2", s.Blocks)
	}
}

func TestReclaimReusesBlocks(t *testing.T) {
	dev := &device{}
	pool := NewStagingPool(dev)

	if _, err := pool.AcquireStage(100); err != nil {
		t.Fatal(err)
	}
	pool.Reclaim()
	if s := pool.Stats(); s.Blocks != 0 || s.FreeBlocks != 1 {
		t.Errorf("after Reclaim Stats() = %+v, want 0 active and 1 free", s)
	}

	st, err := pool.AcquireStage(100)
	if err != nil {
		t.Fatal(err)
	}
	if st.Offset != 0 {
		t.Errorf("reused stage offset = %d, want 0", st.Offset)
	}
	if dev.buffers != 1 {
		t.Errorf("buffers created = %d, want 1", dev.buffers)
	}
}

func TestAcquireStageErrors(t *testing.T) {
	if _, err := NewStagingPool(&device{}).AcquireStage(0); err == nil {
		t.Error("AcquireStage(0) succeeded")
	}
	if _, err := NewStagingPool(&device{failBuffer: true}).AcquireStage(4); !errors.Is(err, errDevice) {
		t.Errorf("AcquireStage() error = %v, want device error", err)
	}
}

func TestAcquireImageLayerViews(t *testing.T) {
	dev := &device{}
	pool := NewStagingPool(dev)

	img, err := pool.AcquireImage(gtex.ImageRequest{
		Format: gputypes.TextureFormatRGBA8Unorm,
		Width:  16,
		Height: 16,
		Layers: 6,
	})
	if err != nil {
		t.Fatalf("AcquireImage() error: %v", err)
	}
	if len(img.LayerViews) != 6 || img.View == nil {
		t.Fatalf("layer views = %d, view = %v, want 6 and a view", len(img.LayerViews), img.View)
	}
	if img.Size.DepthOrArrayLayers != 6 {
		t.Errorf("Size.DepthOrArrayLayers = %d, want 6", img.Size.DepthOrArrayLayers)
	}
	if s := pool.Stats(); s.Images != 1 {
		t.Errorf("Stats().Images = %d, want 1", s.Images)
	}

	pool.Reclaim()
	if dev.destroyedViews != 7 || dev.destroyedTextures != 1 {
		t.Errorf("Reclaim destroyed %d views and %d textures, want 7 and 1", dev.destroyedViews, dev.destroyedTextures)
	}
}

func TestPoolDestroy(t *testing.T) {
	dev := &device{}
	pool := NewStagingPool(dev)
	if _, err := pool.AcquireStage(4); err != nil {
		t.Fatal(err)
	}
	pool.Reclaim()
	if _, err := pool.AcquireStage(stageBlock * 2); err != nil {
		t.Fatal(err)
	}

	pool.Destroy()
	pool.Destroy()
	if dev.destroyedBuffers != 2 {
		t.Errorf("destroyed buffers = %d, want 2", dev.destroyedBuffers)
	}
	if _, err := pool.AcquireStage(4); !errors.Is(err, ErrPoolDestroyed) {
		t.Errorf("AcquireStage() after Destroy error = %v, want ErrPoolDestroyed", err)
	}
	if _, err := pool.AcquireImage(gtex.ImageRequest{Width: 1, Height: 1}); !errors.Is(err, ErrPoolDestroyed) {
		t.Errorf("AcquireImage() after Destroy error = %v, want ErrPoolDestroyed", err)
	}
}

func TestReclaimReleasesBeyondRetain(t *testing.T) {
	dev := &device{}
	pool := NewStagingPool(dev)
	pool.SetRetain(stageBlock)

	for range 3 {
		if _, err := pool.AcquireStage(stageBlock); err != nil {
			t.Fatal(err)
		}
	}
	pool.Reclaim()

	s := pool.Stats()
	if s.FreeBlocks != 1 || s.Released != 2 {
		t.Errorf("Stats() = %+v, want 1 free block and 2 released", s)
	}
	if dev.destroyedBuffers != 2 {
		t.Errorf("destroyed buffers = %d, want 2", dev.destroyedBuffers)
	}
}

func TestPoolDestroyLogsUnmapFailure(t *testing.T) {
	var buf bytes.Buffer
	gtex.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer gtex.SetLogger(nil)

	dev := &device{failUnmap: true}
	pool := NewStagingPool(dev)
	if _, err := pool.AcquireStage(4); err != nil {
		t.Fatal(err)
	}
	pool.Destroy()

	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "unmap failed") {
		t.Errorf("log = %q, want a warning about the failed unmap", buf.String())
	}
	if dev.destroyedBuffers != 1 {
		t.Errorf("destroyed buffers = %d, want 1", dev.destroyedBuffers)
	}
}
