package grid

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument 调用方传入了非法参数（尺寸、坐标、拉伸系数）.
var ErrInvalidArgument = errors.New("invalid argument")

// Grid 二维矩形网格, 按行优先存储, 以 (x, y) 寻址.
type Grid[T any] struct {
	width, height int
	cells         []T // len = width*height
}

// New 创建 width*height 的零值网格.
func New[T any](width, height int) (*Grid[T], error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: grid size %dx%d", ErrInvalidArgument, width, height)
	}
	return &Grid[T]{
		width:  width,
		height: height,
		cells:  make([]T, width*height),
	}, nil
}

// FromColumns 以 data[x][y] 布局构建网格.
func FromColumns[T any](data [][]T) (*Grid[T], error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrInvalidArgument)
	}
	g, err := New[T](len(data), len(data[0]))
	if err != nil {
		return nil, err
	}
	for x, col := range data {
		if len(col) != g.height {
			return nil, fmt.Errorf("%w: column %d has %d cells, want %d", ErrInvalidArgument, x, len(col), g.height)
		}
		for y, v := range col {
			g.cells[g.idx(x, y)] = v
		}
	}
	return g, nil
}

// FromRows 以 rows[y][x] 布局构建网格.
func FromRows[T any](rows [][]T) (*Grid[T], error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrInvalidArgument)
	}
	g, err := New[T](len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != g.width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidArgument, y, len(row), g.width)
		}
		copy(g.cells[y*g.width:(y+1)*g.width], row)
	}
	return g, nil
}

func (g *Grid[T]) Width() int  { return g.width }
func (g *Grid[T]) Height() int { return g.height }

func (g *Grid[T]) Bounds() Rect {
	return RectOf(g.width, g.height)
}

func (g *Grid[T]) InBounds(x, y int) bool {
	return g.Bounds().ContainsPoint(Coord{X: x, Y: y})
}

// idx = x + y*width
func (g *Grid[T]) idx(x, y int) int {
	return x + y*g.width
}

// At 越界时 panic, 与切片访问一致.
func (g *Grid[T]) At(x, y int) T {
	if !g.InBounds(x, y) {
		panic(fmt.Sprintf("grid: (%d,%d) out of bounds %dx%d", x, y, g.width, g.height))
	}
	return g.cells[g.idx(x, y)]
}

func (g *Grid[T]) Set(x, y int, v T) {
	if !g.InBounds(x, y) {
		panic(fmt.Sprintf("grid: (%d,%d) out of bounds %dx%d", x, y, g.width, g.height))
	}
	g.cells[g.idx(x, y)] = v
}

// Row 返回第 y 行的只读视图, 调用方不得修改.
func (g *Grid[T]) Row(y int) []T {
	return g.cells[y*g.width : (y+1)*g.width]
}

// SetRow 覆盖第 y 行.
func (g *Grid[T]) SetRow(y int, row []T) {
	copy(g.cells[y*g.width:(y+1)*g.width], row)
}

func (g *Grid[T]) Fill(v T) {
	for i := range g.cells {
		g.cells[i] = v
	}
}

func (g *Grid[T]) Clone() *Grid[T] {
	return &Grid[T]{
		width:  g.width,
		height: g.height,
		cells:  append([]T(nil), g.cells...),
	}
}

// Map 逐格转换为新网格.
func Map[T, U any](g *Grid[T], f func(T) U) *Grid[U] {
	out := &Grid[U]{width: g.width, height: g.height, cells: make([]U, len(g.cells))}
	for i, v := range g.cells {
		out.cells[i] = f(v)
	}
	return out
}

// Equal 判断两网格尺寸与内容是否一致.
func Equal[T comparable](a, b *Grid[T]) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.width != b.width || a.height != b.height {
		return false
	}
	for i := range a.cells {
		if a.cells[i] != b.cells[i] {
			return false
		}
	}
	return true
}

// AboveLevel 以水位阈值生成阻挡网格: 高度 > level 视为阻挡.
func AboveLevel(heights *Grid[byte], level byte) *Grid[bool] {
	return Map(heights, func(h byte) bool { return h > level })
}

// BelowLevel 高度 < level 视为阻挡, 用于水下不可通行的地形.
func BelowLevel(heights *Grid[byte], level byte) *Grid[bool] {
	return Map(heights, func(h byte) bool { return h < level })
}
