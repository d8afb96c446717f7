package fractile

import (
	"image"

	"golang.org/x/image/draw"
)

// downsample scales a from x from RGBA buffer to to x to with Catmull-Rom
// filtering. The output is opaque.
func downsample(pix []byte, from, to int) []byte {
	src := &image.RGBA{Pix: pix, Stride: from * 4, Rect: image.Rect(0, 0, from, from)}
	dst := image.NewRGBA(image.Rect(0, 0, to, to))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst.Pix
}
