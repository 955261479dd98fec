package grid

import "fmt"

// Size 地形尺寸及拉伸系数.
type Size struct {
	Width, Height int
	// StretchH 每格在 XY 平面上的世界长度.
	StretchH float32
	// StretchV 每单位高度的世界长度.
	StretchV float32
}

// SizeOf 返回拉伸系数为 1 的尺寸.
func SizeOf[T any](g *Grid[T]) Size {
	return Size{Width: g.Width(), Height: g.Height(), StretchH: 1, StretchV: 1}
}

func (s Size) Validate() error {
	if s.Width < 1 || s.Height < 1 {
		return fmt.Errorf("%w: terrain size %dx%d", ErrInvalidArgument, s.Width, s.Height)
	}
	if !(s.StretchH > 0) || !(s.StretchV > 0) {
		return fmt.Errorf("%w: stretch factors must be positive, got h=%v v=%v", ErrInvalidArgument, s.StretchH, s.StretchV)
	}
	return nil
}

// Matches 判断网格尺寸是否与 Size 一致.
func (s Size) Matches(width, height int) bool {
	return s.Width == width && s.Height == height
}
