package scene

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Light buffer layout (std140). Each record is three vec4 slots:
//
//	slot 0  position      xyz, w = 0
//	slot 1  color         rgba
//	slot 2  attenuation   constant, linear, quadratic, w = 0
const (
	LightSlotSize       = 16
	LightSlotsPerRecord = 3
	LightRecordSize     = LightSlotSize * LightSlotsPerRecord
)

// LightRecord is the shading-relevant part of a light
type LightRecord struct {
	Position    mgl32.Vec3
	Color       mgl32.Vec4
	Attenuation Attenuation
}

// Marshal serializes the record into dst, which must hold LightRecordSize bytes
func (r LightRecord) Marshal(dst []byte) {
	_ = dst[LightRecordSize-1]
	putVec4(dst[0:16], r.Position[0], r.Position[1], r.Position[2], 0)
	putVec4(dst[16:32], r.Color[0], r.Color[1], r.Color[2], r.Color[3])
	putVec4(dst[32:48], r.Attenuation.Constant, r.Attenuation.Linear, r.Attenuation.Quadratic, 0)
}

// UnmarshalLightRecord decodes a record written by Marshal
func UnmarshalLightRecord(src []byte) LightRecord {
	_ = src[LightRecordSize-1]
	var r LightRecord
	r.Position = mgl32.Vec3{getF32(src, 0), getF32(src, 4), getF32(src, 8)}
	r.Color = mgl32.Vec4{getF32(src, 16), getF32(src, 20), getF32(src, 24), getF32(src, 28)}
	r.Attenuation = Attenuation{
		Constant:  getF32(src, 32),
		Linear:    getF32(src, 36),
		Quadratic: getF32(src, 40),
	}
	return r
}

// LightRecordOffset returns the byte offset of record i
func LightRecordOffset(i int) int {
	return i * LightRecordSize
}

// LightBuffer is the CPU staging copy of the light uniform buffer. Its
// allocation is fixed at construction; writes past it are refused.
type LightBuffer struct {
	staging []byte
	count   int
	// records handed out by the previous Bytes; they must be overwritten
	// with zeros when the light count shrinks
	span int
}

// NewLightBuffer allocates room for capacity records
func NewLightBuffer(capacity int) *LightBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &LightBuffer{staging: make([]byte, capacity*LightRecordSize)}
}

// Capacity returns the maximum number of records
func (b *LightBuffer) Capacity() int {
	return len(b.staging) / LightRecordSize
}

// Size returns the allocation in bytes
func (b *LightBuffer) Size() int {
	return len(b.staging)
}

// Reset zeroes the staging bytes and forgets the records packed so far.
func (b *LightBuffer) Reset() {
	b.span = max(b.span, b.count)
	clear(b.staging)
	b.count = 0
}

// Len returns the number of records packed since the last Reset
func (b *LightBuffer) Len() int {
	return b.count
}

// Pack writes rec into slot i
func (b *LightBuffer) Pack(i int, rec LightRecord) error {
	if i < 0 || i >= b.Capacity() {
		return &BufferOverrunError{Lights: i + 1, Capacity: b.Capacity()}
	}
	off := LightRecordOffset(i)
	rec.Marshal(b.staging[off : off+LightRecordSize])
	if i+1 > b.count {
		b.count = i + 1
	}
	return nil
}

// Record decodes slot i
func (b *LightBuffer) Record(i int) (LightRecord, error) {
	if i < 0 || i >= b.Capacity() {
		return LightRecord{}, &BoundsError{Index: i, Len: b.Capacity()}
	}
	off := LightRecordOffset(i)
	return UnmarshalLightRecord(b.staging[off : off+LightRecordSize]), nil
}

// Bytes returns the packed prefix of the staging buffer. When fewer records
// were packed than last time the prefix extends over the zeroed tail so an
// upload clears the records that are gone.
func (b *LightBuffer) Bytes() []byte {
	n := max(b.count, b.span)
	b.span = b.count
	return b.staging[:n*LightRecordSize]
}

func putVec4(dst []byte, x, y, z, w float32) {
	binary.LittleEndian.PutUint32(dst[0:4], math.Float32bits(x))
	binary.LittleEndian.PutUint32(dst[4:8], math.Float32bits(y))
	binary.LittleEndian.PutUint32(dst[8:12], math.Float32bits(z))
	binary.LittleEndian.PutUint32(dst[12:16], math.Float32bits(w))
}

func getF32(src []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(src[off : off+4]))
}
