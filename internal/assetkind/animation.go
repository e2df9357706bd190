package assetkind

import (
	"github.com/spaghettifunk/forge/internal/binarycodec"
	"github.com/spaghettifunk/forge/internal/mathutil"
)

type PositionKey struct {
	Time  float32
	Value mathutil.Vec3
}

type RotationKey struct {
	Time  float32
	Value mathutil.Quaternion
}

type ScaleKey struct {
	Time  float32
	Value mathutil.Vec3
}

// AnimationChannel carries the three independently-sampled key streams for
// one bone (spec.md §4.5).
type AnimationChannel struct {
	BoneName      string
	PositionKeys  []PositionKey
	RotationKeys  []RotationKey
	ScaleKeys     []ScaleKey
}

func (c *AnimationChannel) WriteTo(w *binarycodec.Writer) {
	w.WriteString(c.BoneName)
	binarycodec.WriteSlice(w, c.PositionKeys, func(w *binarycodec.Writer, k PositionKey) {
		w.WriteF32(k.Time)
		writeVec3(w, k.Value)
	})
	binarycodec.WriteSlice(w, c.RotationKeys, func(w *binarycodec.Writer, k RotationKey) {
		w.WriteF32(k.Time)
		writeVec4(w, mathutil.Vec4(k.Value))
	})
	binarycodec.WriteSlice(w, c.ScaleKeys, func(w *binarycodec.Writer, k ScaleKey) {
		w.WriteF32(k.Time)
		writeVec3(w, k.Value)
	})
}

func (c *AnimationChannel) ReadFrom(r *binarycodec.Reader) {
	c.BoneName = r.ReadString()
	c.PositionKeys = binarycodec.ReadSlice(r, func(r *binarycodec.Reader) PositionKey {
		return PositionKey{Time: r.ReadF32(), Value: readVec3(r)}
	})
	c.RotationKeys = binarycodec.ReadSlice(r, func(r *binarycodec.Reader) RotationKey {
		return RotationKey{Time: r.ReadF32(), Value: mathutil.Quaternion(readVec4(r))}
	})
	c.ScaleKeys = binarycodec.ReadSlice(r, func(r *binarycodec.Reader) ScaleKey {
		return ScaleKey{Time: r.ReadF32(), Value: readVec3(r)}
	})
}

type Animation struct {
	Name           Name
	ID             ID
	Duration       float32
	TicksPerSecond float32
	Channels       []*AnimationChannel
}

func (a *Animation) WriteTo(w *binarycodec.Writer) {
	w.WriteString(string(a.Name))
	w.WriteU64(uint64(a.ID))
	w.WriteF32(a.Duration)
	w.WriteF32(a.TicksPerSecond)
	binarycodec.WriteSlice(w, a.Channels, func(w *binarycodec.Writer, c *AnimationChannel) { c.WriteTo(w) })
}

func (a *Animation) ReadFrom(r *binarycodec.Reader) {
	a.Name = Name(r.ReadString())
	a.ID = ID(r.ReadU64())
	a.Duration = r.ReadF32()
	a.TicksPerSecond = r.ReadF32()
	a.Channels = binarycodec.ReadSlice(r, func(r *binarycodec.Reader) *AnimationChannel {
		c := &AnimationChannel{}
		c.ReadFrom(r)
		return c
	})
}

func (a *Animation) AssetName() Name           { return a.Name }
func (a *Animation) AssetID() ID                { return a.ID }
func (*Animation) DefaultFileExtension() string { return "san" }
func (*Animation) CacheName() string            { return "animations" }
