package assetkind

import "github.com/spaghettifunk/forge/internal/binarycodec"

type AudioFormat int

const (
	AudioFormatPCM16 AudioFormat = iota
	AudioFormatOggVorbis
)

// Audio is a pass-through packaged audio bank (spec.md §4 table: "Audio
// Pipeline / Script Pipeline — pass-through packaging").
type Audio struct {
	Name       Name
	ID         ID
	Format     AudioFormat
	Channels   uint8
	SampleRate uint32
	Data       []byte
}

func (a *Audio) WriteTo(w *binarycodec.Writer) {
	w.WriteString(string(a.Name))
	w.WriteU64(uint64(a.ID))
	w.WriteI32(int32(a.Format))
	w.WriteU8(a.Channels)
	w.WriteU32(a.SampleRate)
	w.WriteRawBytes(a.Data)
}

func (a *Audio) ReadFrom(r *binarycodec.Reader) {
	a.Name = Name(r.ReadString())
	a.ID = ID(r.ReadU64())
	a.Format = AudioFormat(r.ReadI32())
	a.Channels = r.ReadU8()
	a.SampleRate = r.ReadU32()
	a.Data = r.ReadRawBytes()
}

func (a *Audio) AssetName() Name           { return a.Name }
func (a *Audio) AssetID() ID                { return a.ID }
func (*Audio) DefaultFileExtension() string { return "sau" }
func (*Audio) CacheName() string            { return "audio" }
