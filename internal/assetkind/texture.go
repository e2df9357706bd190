package assetkind

import "github.com/spaghettifunk/forge/internal/binarycodec"

type TextureType int

const (
	TextureType2D TextureType = iota
	TextureTypeCube
	TextureType3D
	TextureTypeArray
)

type TextureFormat int

const (
	TextureFormatRGBA8 TextureFormat = iota
	TextureFormatRGBA16F
	TextureFormatRGBA32F
	TextureFormatR32F
)

// TextureCompression enumeration values are preserved verbatim across
// releases. TextureCompressionBC5 has its own value, distinct from
// TextureCompressionBC4, and selecting it logs no warning.
type TextureCompression int

const (
	TextureCompressionNone TextureCompression = iota
	TextureCompressionBC1
	TextureCompressionBC2
	TextureCompressionBC3
	TextureCompressionBC4
	TextureCompressionBC5 // own value, distinct from BC4.
	TextureCompressionBC6
	TextureCompressionBC7
	TextureCompressionBC3RGBM
)

type Texture struct {
	Name        Name
	ID          ID
	PixelData   []byte
	Width       int32
	Height      int32
	Depth       int32
	Mips        int32
	Type        TextureType
	Format      TextureFormat
	Compression TextureCompression
}

func (t *Texture) WriteTo(w *binarycodec.Writer) {
	w.WriteString(string(t.Name))
	w.WriteU64(uint64(t.ID))
	w.WriteRawBytes(t.PixelData)
	w.WriteI32(t.Width)
	w.WriteI32(t.Height)
	w.WriteI32(t.Depth)
	w.WriteI32(t.Mips)
	w.WriteI32(int32(t.Type))
	w.WriteI32(int32(t.Format))
	w.WriteI32(int32(t.Compression))
}

func (t *Texture) ReadFrom(r *binarycodec.Reader) {
	t.Name = Name(r.ReadString())
	t.ID = ID(r.ReadU64())
	t.PixelData = r.ReadRawBytes()
	t.Width = r.ReadI32()
	t.Height = r.ReadI32()
	t.Depth = r.ReadI32()
	t.Mips = r.ReadI32()
	t.Type = TextureType(r.ReadI32())
	t.Format = TextureFormat(r.ReadI32())
	t.Compression = TextureCompression(r.ReadI32())
}

func (t *Texture) AssetName() Name                { return t.Name }
func (t *Texture) AssetID() ID                     { return t.ID }
func (*Texture) DefaultFileExtension() string      { return "ste" }
func (*Texture) CacheName() string                 { return "textures" }

// DefaultMagentaTexture is the built-in 1x1 RGBA magenta texture inserted by
// PackageDefaultAssets when missing (spec.md §4.3).
func DefaultMagentaTexture() *Texture {
	return &Texture{
		Name:        "ps_default_texture",
		ID:          HashName("ps_default_texture"),
		PixelData:   []byte{255, 0, 255, 255},
		Width:       1,
		Height:      1,
		Depth:       1,
		Mips:        1,
		Type:        TextureType2D,
		Format:      TextureFormatRGBA8,
		Compression: TextureCompressionNone,
	}
}
