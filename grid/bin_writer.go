package grid

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
)

// BinWriter 按固定字节序写入基础类型, 用于生成网格内容的摘要键.
type BinWriter struct {
	writer       *bufio.Writer
	littleEndian bool
	endianBuf    []byte
}

func NewBinWriter(w io.Writer, littleEndian bool) *BinWriter {
	return &BinWriter{
		writer:       bufio.NewWriter(w),
		littleEndian: littleEndian,
		endianBuf:    make([]byte, 8),
	}
}

func (w *BinWriter) WriteUint8(v uint8) {
	_ = w.writer.WriteByte(v)
}

func (w *BinWriter) WriteUint32(v uint32) {
	_, _ = w.writer.Write(Uint32ToBytes(w.endianBuf, v, w.littleEndian))
}

func (w *BinWriter) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

func (w *BinWriter) Write(bts []byte) {
	_, _ = w.writer.Write(bts)
}

// WriteByteGrid 写入尺寸头及全部格子.
func (w *BinWriter) WriteByteGrid(g *Grid[byte]) {
	w.WriteUint32(uint32(g.width))
	w.WriteUint32(uint32(g.height))
	w.Write(g.cells)
}

func (w *BinWriter) Flush() *BinWriter {
	_ = w.writer.Flush()
	return w
}

func Uint32ToBytes(dst []byte, u32 uint32, littleEndian bool) []byte {
	if littleEndian {
		binary.LittleEndian.PutUint32(dst, u32)
	} else {
		binary.BigEndian.PutUint32(dst, u32)
	}
	return dst[:4]
}
