package main

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"terrainnav/grid"
	"terrainnav/terrain"
)

// decodeHeightMap reads a png, bmp or tiff image and converts it to
// 8-bit heights. Colour images are reduced to their luminance.
func decodeHeightMap(r io.Reader) (*grid.Grid[byte], error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return heightsFromImage(img)
}

func heightsFromImage(img image.Image) (*grid.Grid[byte], error) {
	b := img.Bounds()
	gray, ok := img.(*image.Gray)
	if !ok || b.Min != (image.Point{}) {
		gray = image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	}
	g, err := grid.New[byte](b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < g.Height(); y++ {
		g.SetRow(y, gray.Pix[y*gray.Stride:y*gray.Stride+g.Width()])
	}
	return g, nil
}

func readHeightMap(filename string) (*grid.Grid[byte], error) {
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	g, err := decodeHeightMap(bufio.NewReader(fp))
	if err != nil {
		return nil, fmt.Errorf("height-map %s: %w", filename, err)
	}
	return g, nil
}

func grayImage(g *grid.Grid[byte]) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width(), g.Height()))
	for y := 0; y < g.Height(); y++ {
		copy(img.Pix[y*img.Stride:], g.Row(y))
	}
	return img
}

// occlusionImage packs the four channels into R, G, B and A.
func occlusionImage(g *grid.Grid[terrain.OcclusionInterval]) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.Width(), g.Height()))
	for y := 0; y < g.Height(); y++ {
		for x, o := range g.Row(y) {
			copy(img.Pix[y*img.Stride+x*4:], o[:])
		}
	}
	return img
}

func ambientImage(g *grid.Grid[terrain.OcclusionInterval]) *image.Gray {
	return grayImage(grid.Map(g, func(o terrain.OcclusionInterval) byte {
		return byte(math32.Round(o.AmbientFactor() * 255))
	}))
}

func encodeImage(w io.Writer, ext string, img image.Image) error {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unsupported image format %q (want .png, .bmp or .tiff)", ext)
}

func writeImage(filename string, img image.Image) error {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(fp)
	if err := encodeImage(w, filepath.Ext(filename), img); err != nil {
		fp.Close()
		return fmt.Errorf("write %s: %w", filename, err)
	}
	if err := w.Flush(); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}
