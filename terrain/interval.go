package terrain

import "github.com/chewxy/math32"

// AngleInterval 光线可到达的仰角区间 [Rise, Set], 弧度.
// 0 为升起方向的地平线, π 为落下方向的地平线.
type AngleInterval struct {
	Rise float32
	Set  float32
}

// Contains 判断仰角 angle 是否落在区间内（两端 inclusive）.
func (iv AngleInterval) Contains(angle float32) bool {
	return iv.Rise <= angle && angle <= iv.Set
}

// Len 区间长度, 区间为空时返回 0.
func (iv AngleInterval) Len() float32 {
	if iv.Set <= iv.Rise {
		return 0
	}
	return iv.Set - iv.Rise
}

// OcclusionInterval holds four encoded horizon channels of one cell.
// Channels are indexed by the Channel constants.
type OcclusionInterval [4]byte

type Channel int

const (
	// RiseX is the horizon towards +x: 0 when open, up to 255 at the zenith.
	RiseX Channel = iota
	// SetX is π minus the horizon towards -x: 255 when open.
	SetX
	// RiseY is the horizon towards +y.
	RiseY
	// SetY is π minus the horizon towards -y.
	SetY
)

func decodeOcclusion(b byte) float32 {
	return float32(b) / 255 * math32.Pi
}

// X 解码 x 轴方向的可见区间.
func (o OcclusionInterval) X() AngleInterval {
	return AngleInterval{Rise: decodeOcclusion(o[RiseX]), Set: decodeOcclusion(o[SetX])}
}

// Y 解码 y 轴方向的可见区间.
func (o OcclusionInterval) Y() AngleInterval {
	return AngleInterval{Rise: decodeOcclusion(o[RiseY]), Set: decodeOcclusion(o[SetY])}
}

// AmbientFactor is the mean open fraction of the two sky arcs, in [0, 1].
func (o OcclusionInterval) AmbientFactor() float32 {
	return (o.X().Len() + o.Y().Len()) / (2 * math32.Pi)
}
