package gtex

import (
	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// region is the destination box of an update within one mip level.
// depth counts 3D slices or array layers.
type region struct {
	x, y                 uint32
	width, height, depth uint32
}

// Update2D uploads a width x height image into layer 0 of level.
func (t *Texture) Update2D(cs CommandStream, data PixelBuffer, width, height, level uint32) error {
	return t.update(cs, data, region{width: width, height: height, depth: 1}, level, nil)
}

// Update2DRegion uploads a width x height image at (x, y) of layer 0 of
// level.
func (t *Texture) Update2DRegion(cs CommandStream, data PixelBuffer, x, y, width, height, level uint32) error {
	return t.update(cs, data, region{x: x, y: y, width: width, height: height, depth: 1}, level, nil)
}

// Update3D uploads depth slices of a 3D image, or layers [0, depth) of a
// 2D array, at level in a single copy command.
func (t *Texture) Update3D(cs CommandStream, data PixelBuffer, width, height, depth, level uint32) error {
	return t.update(cs, data, region{width: width, height: height, depth: depth}, level, nil)
}

// UpdateCube uploads the six faces of level from one buffer. Face i is
// read at faces[i] and written to array layer i. In staging memory the
// faces are repacked in order, face i at i times the aligned face size.
func (t *Texture) UpdateCube(cs CommandStream, data PixelBuffer, faces FaceOffsets, level uint32) error {
	if t.target != gputypes.TextureViewDimensionCube && t.target != gputypes.TextureViewDimensionCubeArray {
		return errors.Wrapf(ErrOutOfRange, "%s: cube update of %s image", t.label, t.target)
	}
	w, h := t.levelSize(level)
	return t.update(cs, data, region{width: w, height: h, depth: 6}, level, &faces)
}

// levelSize returns the width and height of level.
func (t *Texture) levelSize(level uint32) (uint32, uint32) {
	return max(t.size.Width>>level, 1), max(t.size.Height>>level, 1)
}

// update checks the request, picks the upload path once for the whole
// call and records it.
func (t *Texture) update(cs CommandStream, data PixelBuffer, rg region, level uint32, faces *FaceOffsets) error {
	if t.destroyed {
		return errors.Wrapf(ErrDestroyed, "%s", t.label)
	}
	if t.pool == nil {
		return errors.Wrapf(ErrUnsupported, "%s: no staging pool", t.label)
	}
	target, err := t.updateRange(rg, level, faces != nil)
	if err != nil {
		return err
	}

	rows := rowsOf(data.Format, rg.height)
	host, faces, err := widen(data, rg.width, rows, rg.depth, faces)
	if err != nil {
		return errors.Wrapf(err, "%s", t.label)
	}
	pitch, err := host.rowPitch(rg.width)
	if err != nil {
		return errors.Wrapf(err, "%s", t.label)
	}
	if err := checkLength(host, pitch, rows, rg.depth, faces); err != nil {
		return errors.Wrapf(err, "%s", t.label)
	}

	tight, _ := PixelBuffer{Format: host.Format}.rowPitch(rg.width)
	layout := newStageLayout(tight, rows, rg.depth)

	path := t.policy.Path(host.Format, t.format)
	Logger().Debug("gtex: upload",
		"label", t.label,
		"path", path.String(),
		"host", host.Format,
		"range", target.String(),
		"bytes", len(host.Data))
	switch path {
	case PathCopy:
		return t.uploadCopy(cs, host, pitch, layout, rg, target, faces)
	case PathBlit:
		if t.dimension == gputypes.TextureDimension3D {
			return errors.Wrapf(ErrUnsupported, "%s: 3D format conversion", t.label)
		}
		return t.uploadBlit(cs, host, pitch, layout, rg, target, faces)
	default:
		return errors.Wrapf(ErrUnsupported, "%s: upload of %s into %s", t.label, host.Format, t.format)
	}
}

// updateRange validates rg against level and returns the subresources
// it writes.
func (t *Texture) updateRange(rg region, level uint32, cube bool) (SubresourceRange, error) {
	if level >= t.levels {
		return SubresourceRange{}, errors.Wrapf(ErrOutOfRange, "%s: level %d of %d", t.label, level, t.levels)
	}
	w, h := t.levelSize(level)
	if rg.width == 0 || rg.height == 0 || rg.depth == 0 ||
		rg.x+rg.width > w || rg.y+rg.height > h {
		return SubresourceRange{}, errors.Wrapf(ErrOutOfRange, "%s: region %dx%d at (%d,%d) in level %d of %dx%d",
			t.label, rg.width, rg.height, rg.x, rg.y, level, w, h)
	}
	r := SubresourceRange{Aspect: t.aspect, BaseLevel: level, LevelCount: 1, LayerCount: 1}
	switch {
	case cube:
		r.LayerCount = 6
	case t.dimension == gputypes.TextureDimension3D:
		if d := max(t.size.DepthOrArrayLayers>>level, 1); rg.depth > d {
			return SubresourceRange{}, errors.Wrapf(ErrOutOfRange, "%s: depth %d of %d", t.label, rg.depth, d)
		}
	default:
		if rg.depth > t.layers {
			return SubresourceRange{}, errors.Wrapf(ErrOutOfRange, "%s: %d layers of %d", t.label, rg.depth, t.layers)
		}
		r.LayerCount = rg.depth
	}
	return r, nil
}

// widen reshapes packed RGB data to four channels. Cube faces are
// reshaped one by one and repacked back to back.
func widen(data PixelBuffer, width, rows, slices uint32, faces *FaceOffsets) (PixelBuffer, *FaceOffsets, error) {
	if data.Channels != 3 {
		return data, faces, nil
	}
	if faces == nil {
		out, err := data.reshape(width, rows*slices)
		return out, nil, err
	}
	var (
		out  PixelBuffer
		offs FaceOffsets
	)
	for i, off := range faces {
		if off >= uint64(len(data.Data)) {
			return PixelBuffer{}, nil, errors.Wrapf(ErrShortData, "face %d at %d", i, off)
		}
		face := data
		face.Data = data.Data[off:]
		r, err := face.reshape(width, rows)
		if err != nil {
			return PixelBuffer{}, nil, errors.Wrapf(err, "face %d", i)
		}
		offs[i] = uint64(len(out.Data))
		out.Data = append(out.Data, r.Data...)
		out.Format = r.Format
	}
	return out, &offs, nil
}

// checkLength verifies that data holds every row the copy will read.
func checkLength(data PixelBuffer, pitch, rows, slices uint32, faces *FaceOffsets) error {
	n := uint64(len(data.Data))
	image := uint64(pitch) * uint64(rows)
	if faces == nil {
		if need := image * uint64(slices); n < need {
			return errors.Wrapf(ErrShortData, "%d bytes, need %d", n, need)
		}
		return nil
	}
	for i, off := range faces {
		if need := off + image; n < need {
			return errors.Wrapf(ErrShortData, "face %d: %d bytes, need %d", i, n, need)
		}
	}
	return nil
}

// stageLayout places an upload in staging memory. Rows start every
// pitch bytes and images, meaning slices, layers or faces, every
// rowsPerImage rows.
type stageLayout struct {
	rowBytes     uint32
	pitch        uint32
	rows         uint32
	rowsPerImage uint32
	images       uint32
}

func newStageLayout(rowBytes, rows, images uint32) stageLayout {
	l := stageLayout{
		rowBytes:     rowBytes,
		pitch:        (rowBytes + CopyPitchAlignment - 1) &^ (CopyPitchAlignment - 1),
		rows:         rows,
		rowsPerImage: rows,
		images:       images,
	}
	// pitch is a multiple of 256, so one extra row realigns every image.
	if images > 1 && uint64(l.pitch)*uint64(rows)%StageAlignment != 0 {
		l.rowsPerImage++
	}
	return l
}

func (l stageLayout) imageSize() uint64 { return uint64(l.pitch) * uint64(l.rowsPerImage) }

func (l stageLayout) size() uint64 { return l.imageSize() * uint64(l.images) }

// pack copies the rows of src, which are srcPitch bytes apart, into dst.
// Image i is read at faces[i] when faces is set and right after image
// i-1 otherwise. It always lands at i*imageSize.
func (l stageLayout) pack(dst, src []byte, srcPitch uint32, faces *FaceOffsets) {
	if faces == nil && srcPitch == l.pitch && l.rowsPerImage == l.rows {
		copy(dst, src[:l.size()])
		return
	}
	for i := range l.images {
		from := uint64(i) * uint64(srcPitch) * uint64(l.rows)
		if faces != nil {
			from = faces[i]
		}
		to := uint64(i) * l.imageSize()
		for r := range uint64(l.rows) {
			s := from + r*uint64(srcPitch)
			d := to + r*uint64(l.pitch)
			copy(dst[d:d+uint64(l.rowBytes)], src[s:s+uint64(l.rowBytes)])
		}
	}
}

// copyRegions builds the buffer to image regions of an upload staged at
// base. Cube uploads get one region per face, writing layer i; other
// uploads get a single region covering every slice or layer.
func copyRegions(dst hal.Texture, aspect gputypes.TextureAspect, base uint64, l stageLayout, level uint32,
	origin hal.Origin3D, size hal.Extent3D, cube bool) []hal.BufferTextureCopy {
	layout := hal.ImageDataLayout{Offset: base, BytesPerRow: l.pitch, RowsPerImage: l.rowsPerImage}
	if !cube {
		return []hal.BufferTextureCopy{{
			BufferLayout: layout,
			TextureBase:  hal.ImageCopyTexture{Texture: dst, MipLevel: level, Origin: origin, Aspect: aspect},
			Size:         size,
		}}
	}
	out := make([]hal.BufferTextureCopy, 6)
	for i := range out {
		o := origin
		o.Z = uint32(i)
		layout.Offset = base + uint64(i)*l.imageSize()
		out[i] = hal.BufferTextureCopy{
			BufferLayout: layout,
			TextureBase:  hal.ImageCopyTexture{Texture: dst, MipLevel: level, Origin: o, Aspect: aspect},
			Size:         hal.Extent3D{Width: size.Width, Height: size.Height, DepthOrArrayLayers: 1},
		}
	}
	return out
}

// stage packs host rows into memory borrowed from the pool.
func (t *Texture) stage(host PixelBuffer, pitch uint32, l stageLayout, faces *FaceOffsets) (*Stage, error) {
	size := l.size()
	st, err := t.pool.AcquireStage(size)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: acquire %d staging bytes", t.label, size)
	}
	if uint64(len(st.Data)) < size {
		return nil, errors.Wrapf(ErrContractViolation, "%s: staging pool returned %d bytes, want %d", t.label, len(st.Data), size)
	}
	if st.Offset%StageAlignment != 0 {
		return nil, errors.Wrapf(ErrContractViolation, "%s: stage offset %d not a multiple of %d", t.label, st.Offset, StageAlignment)
	}
	l.pack(st.Data, host.Data, pitch, faces)
	return st, nil
}

// uploadCopy stages host rows in a buffer and copies them into target,
// leaving target in AccessCopyDst.
func (t *Texture) uploadCopy(cs CommandStream, host PixelBuffer, pitch uint32, l stageLayout, rg region,
	target SubresourceRange, faces *FaceOffsets) error {
	st, err := t.stage(host, pitch, l, faces)
	if err != nil {
		return err
	}
	origin := hal.Origin3D{X: rg.x, Y: rg.y}
	size := hal.Extent3D{Width: rg.width, Height: rg.height, DepthOrArrayLayers: rg.depth}
	regions := copyRegions(t.image, t.aspect, st.Offset, l, target.BaseLevel, origin, size, faces != nil)

	t.transition(cs, target, AccessCopyDst)
	cs.CopyBufferToTexture(st.Buffer, t.image, regions)
	return nil
}

// uploadBlit stages host rows in an intermediate image of the host
// format, then blits each layer into target with linear filtering. The
// target is left in the stream's blit destination state. For an sRGB
// target the intermediate is the sRGB variant of the host format, so the
// stored texels equal the host bytes as on the copy path.
func (t *Texture) uploadBlit(cs CommandStream, host PixelBuffer, pitch uint32, l stageLayout, rg region,
	target SubresourceRange, faces *FaceOffsets) error {
	srcState, dstState := cs.BlitStates()
	if dstState == AccessColorAttachment && !t.usage.Contains(gputypes.TextureUsageRenderAttachment) {
		return errors.Wrapf(ErrUnsupported, "%s: blit target needs render attachment usage", t.label)
	}

	layers := target.LayerCount
	var dstViews []hal.TextureView
	if dstState == AccessColorAttachment {
		for i := range layers {
			v, err := t.AttachmentView(target.BaseLevel, target.BaseLayer+i, t.aspect)
			if err != nil {
				return err
			}
			dstViews = append(dstViews, v.Handle)
		}
	}

	format := host.Format
	if linearFormat(t.format) != t.format {
		format = srgbFormat(format)
	}
	img, err := t.pool.AcquireImage(ImageRequest{
		Format: format,
		Width:  rg.width,
		Height: rg.height,
		Layers: layers,
	})
	if err != nil {
		return errors.Wrapf(err, "%s: acquire intermediate image", t.label)
	}
	st, err := t.stage(host, pitch, l, faces)
	if err != nil {
		return err
	}

	whole := SubresourceRange{Aspect: gputypes.TextureAspectAll, LevelCount: 1, LayerCount: layers}
	size := hal.Extent3D{Width: rg.width, Height: rg.height, DepthOrArrayLayers: layers}
	cs.Barrier(img.Texture, Barrier{Range: whole, Old: AccessUndefined, New: AccessCopyDst})
	cs.CopyBufferToTexture(st.Buffer, img.Texture,
		copyRegions(img.Texture, gputypes.TextureAspectAll, st.Offset, l, 0, hal.Origin3D{}, size, faces != nil))
	cs.Barrier(img.Texture, Barrier{Range: whole, Old: AccessCopyDst, New: srcState})

	t.transition(cs, target, dstState)

	regions := make([]BlitRegion, layers)
	extent := hal.Extent3D{Width: rg.width, Height: rg.height, DepthOrArrayLayers: 1}
	for i := range layers {
		reg := BlitRegion{
			SrcLayer:  i,
			SrcView:   img.View,
			SrcSize:   extent,
			DstLevel:  target.BaseLevel,
			DstLayer:  target.BaseLayer + i,
			DstOrigin: hal.Origin3D{X: rg.x, Y: rg.y},
			DstSize:   extent,
		}
		if int(i) < len(img.LayerViews) {
			reg.SrcView = img.LayerViews[i]
		}
		if dstViews != nil {
			reg.DstView = dstViews[i]
		}
		regions[i] = reg
	}
	return cs.Blit(BlitCommand{
		Src:       img.Texture,
		Dst:       t.image,
		DstFormat: t.format,
		Regions:   regions,
		Filter:    gputypes.FilterModeLinear,
	})
}
