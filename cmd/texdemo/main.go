// Command texdemo records the uploads of a mipmapped 2D texture and a
// cube map against the noop HAL device and prints the commands that a
// real device would receive.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/gtex"
	"github.com/gogpu/gtex/backend/native"
)

func main() {
	var (
		size    = flag.Int("size", 256, "edge length of the 2D texture")
		face    = flag.Int("face", 64, "edge length of each cube face")
		policy  = flag.String("policy", "", "JSON upload policy file")
		verbose = flag.Bool("v", false, "log texture activity")
	)
	flag.Parse()

	if *verbose {
		gtex.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if err := run(uint32(*size), uint32(*face), *policy); err != nil {
		log.Fatalf("texdemo: %v", err)
	}
}

func run(size, faceSize uint32, policyPath string) error {
	var opts []gtex.Option
	if policyPath != "" {
		f, err := os.Open(policyPath)
		if err != nil {
			return err
		}
		p, err := gtex.LoadPolicy(f)
		_ = f.Close()
		if err != nil {
			return err
		}
		opts = append(opts, gtex.WithPolicy(p))
	}

	device := &noop.Device{}
	pool := native.NewStagingPool(device)
	defer pool.Destroy()
	blitter, err := native.NewBlitter(device)
	if err != nil {
		return err
	}
	defer blitter.Destroy()

	raw, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "texdemo"})
	if err != nil {
		return err
	}
	if err := raw.BeginEncoding("texdemo"); err != nil {
		return err
	}
	enc := &printEncoder{CommandEncoder: raw}
	stream := native.NewStream(enc, blitter)

	// Mipmapped 2D texture on the copy path.
	levels := gtex.ComputeLevels(size, size, 1)
	albedo, err := gtex.NewTexture(device, pool, gtex.Config{
		Label:  "albedo",
		Target: gputypes.TextureViewDimension2D,
		Format: gputypes.TextureFormatRGBA8UnormSrgb,
		Width:  size,
		Height: size,
		Levels: levels,
	}, opts...)
	if err != nil {
		return err
	}
	defer albedo.Destroy()

	fmt.Printf("-- %s: %dx%d, %d levels\n", albedo.Label(), size, size, levels)
	for level, px := range gtex.MipChain(gradient(int(size), color.RGBA{R: 255, A: 255}), levels) {
		w, h := max(size>>level, 1), max(size>>level, 1)
		if err := albedo.Update2D(stream, px, w, h, uint32(level)); err != nil {
			return err
		}
	}
	if _, err := albedo.SampledView(stream); err != nil {
		return err
	}

	// Cube map on the blit path: RGBA host data, BGRA device format.
	sky, err := gtex.NewTexture(device, pool, gtex.Config{
		Label:  "sky",
		Target: gputypes.TextureViewDimensionCube,
		Format: gputypes.TextureFormatBGRA8Unorm,
		Width:  faceSize,
		Height: faceSize,
		Levels: 1,
		Usage:  gputypes.TextureUsageRenderAttachment,
	}, opts...)
	if err != nil {
		return err
	}
	defer sky.Destroy()

	data, offsets, err := cubeFaces(context.Background(), int(faceSize))
	if err != nil {
		return err
	}
	fmt.Printf("-- %s: 6 faces of %dx%d\n", sky.Label(), faceSize, faceSize)
	if err := sky.UpdateCube(stream, data, offsets, 0); err != nil {
		return err
	}
	if _, err := sky.SampledView(stream); err != nil {
		return err
	}

	if _, err := raw.EndEncoding(); err != nil {
		return err
	}

	barriers, copies, blits := stream.Counts()
	stats := pool.Stats()
	fmt.Printf("-- recorded %d barriers, %d copies, %d blits\n", barriers, copies, blits)
	fmt.Printf("-- staged %d bytes in %d blocks, %d transient images\n", stats.Staged, stats.Blocks, stats.Images)

	// The noop queue completes immediately.
	pool.Reclaim()
	blitter.Reclaim()
	return nil
}

// cubeFaces renders the six faces concurrently and packs them into one
// buffer.
func cubeFaces(ctx context.Context, size int) (gtex.PixelBuffer, gtex.FaceOffsets, error) {
	tints := [6]color.RGBA{
		{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255},
		{R: 255, G: 255, A: 255}, {G: 255, B: 255, A: 255}, {R: 255, B: 255, A: 255},
	}
	var faces [6]gtex.PixelBuffer
	g, _ := errgroup.WithContext(ctx)
	for i := range faces {
		g.Go(func() error {
			faces[i] = gtex.PixelsFromImage(gradient(size, tints[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return gtex.PixelBuffer{}, gtex.FaceOffsets{}, err
	}

	var offsets gtex.FaceOffsets
	out := gtex.PixelBuffer{Format: gputypes.TextureFormatRGBA8Unorm}
	for i, f := range faces {
		offsets[i] = uint64(len(out.Data))
		out.Data = append(out.Data, f.Data...)
	}
	return out, offsets, nil
}

// gradient fades from tint at the top left to black at the bottom right.
func gradient(size int, tint color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			k := 255 - (x+y)*255/max(2*size-2, 1)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(int(tint.R) * k / 255),
				G: uint8(int(tint.G) * k / 255),
				B: uint8(int(tint.B) * k / 255),
				A: 255,
			})
		}
	}
	return img
}

// printEncoder prints the commands recorded through it.
type printEncoder struct {
	hal.CommandEncoder
}

func (e *printEncoder) TransitionTextures(barriers []hal.TextureBarrier) {
	for _, b := range barriers {
		fmt.Printf("barrier  levels %d+%d layers %d+%d  %v -> %v\n",
			b.Range.BaseMipLevel, b.Range.MipLevelCount, b.Range.BaseArrayLayer, b.Range.ArrayLayerCount,
			b.Usage.OldUsage, b.Usage.NewUsage)
	}
	e.CommandEncoder.TransitionTextures(barriers)
}

func (e *printEncoder) CopyBufferToTexture(src hal.Buffer, dst hal.Texture, regions []hal.BufferTextureCopy) {
	for _, r := range regions {
		fmt.Printf("copy     level %d  offset %d  %dx%dx%d at z=%d\n",
			r.TextureBase.MipLevel, r.BufferLayout.Offset,
			r.Size.Width, r.Size.Height, r.Size.DepthOrArrayLayers, r.TextureBase.Origin.Z)
	}
	e.CommandEncoder.CopyBufferToTexture(src, dst, regions)
}

func (e *printEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	fmt.Printf("pass     %s\n", desc.Label)
	return e.CommandEncoder.BeginRenderPass(desc)
}
