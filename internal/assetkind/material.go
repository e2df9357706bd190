package assetkind

import "github.com/spaghettifunk/forge/internal/binarycodec"

type TextureFilter int

const (
	TextureFilterLinear TextureFilter = iota
	TextureFilterNearest
)

type TextureAddressMode int

const (
	TextureAddressRepeat TextureAddressMode = iota
	TextureAddressClamp
	TextureAddressMirror
)

type SamplerData struct {
	Filter         TextureFilter
	MaxAnisotropy  uint32 // clamped to [1, 16]
	Address        TextureAddressMode
}

func (s *SamplerData) WriteTo(w *binarycodec.Writer) {
	w.WriteI32(int32(s.Filter))
	w.WriteU32(s.MaxAnisotropy)
	w.WriteI32(int32(s.Address))
}

func (s *SamplerData) ReadFrom(r *binarycodec.Reader) {
	s.Filter = TextureFilter(r.ReadI32())
	s.MaxAnisotropy = r.ReadU32()
	s.Address = TextureAddressMode(r.ReadI32())
}

// ClampAnisotropy enforces the spec's [1,16] bound on MaxAnisotropy.
func (s *SamplerData) ClampAnisotropy() {
	if s.MaxAnisotropy < 1 {
		s.MaxAnisotropy = 1
	}
	if s.MaxAnisotropy > 16 {
		s.MaxAnisotropy = 16
	}
}

type BlendFunction int

const (
	BlendFunctionNone BlendFunction = iota
	BlendFunctionDefault
	BlendFunctionAdditive
)

// UniformBufferData is the raw byte payload for one uniform buffer, sized to
// match the shader's reflected layout for that block (spec.md §3).
type UniformBufferData struct {
	Name string
	Data []byte
}

func (u *UniformBufferData) WriteTo(w *binarycodec.Writer) {
	w.WriteString(u.Name)
	w.WriteRawBytes(u.Data)
}

func (u *UniformBufferData) ReadFrom(r *binarycodec.Reader) {
	u.Name = r.ReadString()
	u.Data = r.ReadRawBytes()
}

type Material struct {
	Name              Name
	ID                ID
	VertexShaderID    ID
	GeometryShaderID  ID // 0 = absent
	PixelShaderID     ID
	UniformBuffers    []*UniformBufferData
	SeparateImages    []ID
	SeparateSamplers  []*SamplerData
	Wireframe         bool
	BackfaceCulling   bool
	BlendFunction     BlendFunction
}

func (m *Material) WriteTo(w *binarycodec.Writer) {
	w.WriteString(string(m.Name))
	w.WriteU64(uint64(m.ID))
	w.WriteU64(uint64(m.VertexShaderID))
	w.WriteU64(uint64(m.GeometryShaderID))
	w.WriteU64(uint64(m.PixelShaderID))
	binarycodec.WriteSlice(w, m.UniformBuffers, func(w *binarycodec.Writer, u *UniformBufferData) { u.WriteTo(w) })
	binarycodec.WriteSlice(w, m.SeparateImages, func(w *binarycodec.Writer, id ID) { w.WriteU64(uint64(id)) })
	binarycodec.WriteSlice(w, m.SeparateSamplers, func(w *binarycodec.Writer, s *SamplerData) { s.WriteTo(w) })
	w.WriteBool(m.Wireframe)
	w.WriteBool(m.BackfaceCulling)
	w.WriteI32(int32(m.BlendFunction))
}

func (m *Material) ReadFrom(r *binarycodec.Reader) {
	m.Name = Name(r.ReadString())
	m.ID = ID(r.ReadU64())
	m.VertexShaderID = ID(r.ReadU64())
	m.GeometryShaderID = ID(r.ReadU64())
	m.PixelShaderID = ID(r.ReadU64())
	m.UniformBuffers = binarycodec.ReadSlice(r, func(r *binarycodec.Reader) *UniformBufferData {
		u := &UniformBufferData{}
		u.ReadFrom(r)
		return u
	})
	m.SeparateImages = binarycodec.ReadSlice(r, func(r *binarycodec.Reader) ID { return ID(r.ReadU64()) })
	m.SeparateSamplers = binarycodec.ReadSlice(r, func(r *binarycodec.Reader) *SamplerData {
		s := &SamplerData{}
		s.ReadFrom(r)
		return s
	})
	m.Wireframe = r.ReadBool()
	m.BackfaceCulling = r.ReadBool()
	m.BlendFunction = BlendFunction(r.ReadI32())
}

func (m *Material) AssetName() Name            { return m.Name }
func (m *Material) AssetID() ID                 { return m.ID }
func (*Material) DefaultFileExtension() string  { return "sma" }
func (*Material) CacheName() string             { return "materials" }
