package grid

import (
	"fmt"
)

type Rect struct {
	// Min 表示矩形的左上角边界, inclusive; Max 表示矩形的右下角边界, exclusive.
	Min, Max Coord
}

// RectOf 返回 [0,0)-(width,height) 的矩形.
func RectOf(width, height int) Rect {
	return Rect{Max: Coord{X: width, Y: height}}
}

func (rect Rect) Width() int {
	return rect.Max.X - rect.Min.X
}

func (rect Rect) Height() int {
	return rect.Max.Y - rect.Min.Y
}

// AreaSize 格子总数, 空矩形为 0.
func (rect Rect) AreaSize() int {
	if rect.Width() <= 0 || rect.Height() <= 0 {
		return 0
	}
	return rect.Width() * rect.Height()
}

// ContainsPoint 判断 p 是否落在 [Min, Max) 内.
func (rect Rect) ContainsPoint(p Coord) bool {
	return p.X >= rect.Min.X && p.X < rect.Max.X &&
		p.Y >= rect.Min.Y && p.Y < rect.Max.Y
}

func (rect Rect) String() string {
	return fmt.Sprintf("[%v, %v)", rect.Min, rect.Max)
}
