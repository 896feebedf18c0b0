package gtex

import (
	"encoding/binary"
	"image"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"
)

// PixelBuffer is host pixel data for one update call.
type PixelBuffer struct {
	// Data holds the texels, rows top to bottom, slices or faces one
	// after another.
	Data []byte

	// Format is the texel layout of Data once reshaped.
	Format gputypes.TextureFormat

	// Channels is 3 for packed RGB data that must be widened to the four
	// channels of Format before staging. Zero means Data already matches
	// Format.
	Channels int

	// BytesPerRow is the stride between rows in Data. Zero means rows are
	// tightly packed.
	BytesPerRow uint32
}

// FaceOffsets are the byte offsets of the six cube faces within one
// PixelBuffer, in +X, -X, +Y, -Y, +Z, -Z order.
type FaceOffsets [6]uint64

// rowPitch returns the stride of Data for rows of width texels.
func (p PixelBuffer) rowPitch(width uint32) (uint32, error) {
	b, ok := formatBlock(p.Format)
	if !ok {
		return 0, errors.Wrapf(ErrUnsupported, "host format %s", p.Format)
	}
	texel := b.bytes
	if p.Channels == 3 {
		texel = b.bytes / uint32(b.components) * 3
	}
	tight := (width + b.width - 1) / b.width * texel
	if p.BytesPerRow == 0 {
		return tight, nil
	}
	if p.BytesPerRow < tight {
		return 0, errors.Wrapf(ErrShortData, "row stride %d below %d", p.BytesPerRow, tight)
	}
	return p.BytesPerRow, nil
}

// rowsOf returns the number of block rows for height texels.
func rowsOf(f gputypes.TextureFormat, height uint32) uint32 {
	b, _ := formatBlock(f)
	if b.height == 0 {
		return height
	}
	return (height + b.height - 1) / b.height
}

// reshape widens packed RGB rows of width texels to the four channels of
// p.Format, filling alpha with one. The result is tightly packed.
func (p PixelBuffer) reshape(width, rows uint32) (PixelBuffer, error) {
	if p.Channels != 3 {
		return p, nil
	}
	b, ok := formatBlock(p.Format)
	if !ok || b.components != 4 || b.width != 1 || p.Format.IsDepthStencil() {
		return PixelBuffer{}, errors.Wrapf(ErrUnsupported, "cannot widen RGB data to %s", p.Format)
	}
	pitch, err := p.rowPitch(width)
	if err != nil {
		return PixelBuffer{}, err
	}
	if uint64(len(p.Data)) < uint64(pitch)*uint64(rows-1)+uint64(width)*uint64(b.bytes/4*3) {
		return PixelBuffer{}, errors.Wrapf(ErrShortData, "%d bytes for %d rows", len(p.Data), rows)
	}
	cs := b.bytes / 4
	one := alphaOne(p.Format, cs)
	out := make([]byte, 0, int(width*rows*b.bytes))
	for y := uint32(0); y < rows; y++ {
		row := p.Data[y*pitch:]
		for x := uint32(0); x < width; x++ {
			out = append(out, row[x*3*cs:(x+1)*3*cs]...)
			out = append(out, one...)
		}
	}
	return PixelBuffer{Data: out, Format: p.Format}, nil
}

// alphaOne encodes an opaque alpha component of cs bytes for f.
func alphaOne(f gputypes.TextureFormat, cs uint32) []byte {
	out := make([]byte, cs)
	switch f {
	case gputypes.TextureFormatRGBA32Float:
		binary.LittleEndian.PutUint32(out, math.Float32bits(1))
	case gputypes.TextureFormatRGBA16Float:
		binary.LittleEndian.PutUint16(out, 0x3c00)
	case gputypes.TextureFormatRGBA8Snorm:
		out[0] = 0x7f
	case gputypes.TextureFormatRGBA16Snorm:
		binary.LittleEndian.PutUint16(out, 0x7fff)
	case gputypes.TextureFormatRGBA8Uint, gputypes.TextureFormatRGBA8Sint,
		gputypes.TextureFormatRGBA16Uint, gputypes.TextureFormatRGBA16Sint,
		gputypes.TextureFormatRGBA32Uint, gputypes.TextureFormatRGBA32Sint:
		out[0] = 1
	default:
		for i := range out {
			out[i] = 0xff
		}
	}
	return out
}

// PixelsFromImage converts img to tightly packed RGBA8 host data.
func PixelsFromImage(img image.Image) PixelBuffer {
	b := img.Bounds()
	return scaled(img, b.Dx(), b.Dy(), xdraw.Src)
}

// MipChain returns host data for levels successive mip levels of img,
// each half the size of the previous one and at least one texel wide.
// Level 0 is img itself; lower levels are filtered with Catmull-Rom.
func MipChain(img image.Image, levels uint32) []PixelBuffer {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]PixelBuffer, 0, levels)
	out = append(out, PixelsFromImage(img))
	for l := uint32(1); l < levels; l++ {
		w, h = max(w/2, 1), max(h/2, 1)
		out = append(out, scaled(img, w, h, xdraw.Src))
	}
	return out
}

func scaled(img image.Image, w, h int, op xdraw.Op) PixelBuffer {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		xdraw.Copy(dst, image.Point{}, img, b, op, nil)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, op, nil)
	}
	return PixelBuffer{
		Data:        dst.Pix,
		Format:      gputypes.TextureFormatRGBA8Unorm,
		BytesPerRow: uint32(dst.Stride),
	}
}
