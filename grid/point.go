package grid

import "fmt"

// Coord 表示网格上的一个格子.
type Coord struct {
	X int
	Y int
}

// CoordOf 将连续坐标截断为格子坐标.
func CoordOf(xFloat, yFloat float32) Coord {
	return Coord{X: int(xFloat), Y: int(yFloat)}
}

// Add 返回偏移后的坐标, 范围检查要在外部判断.
func (c Coord) Add(dx, dy int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}
