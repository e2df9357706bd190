package assetkind

import "github.com/spaghettifunk/forge/internal/binarycodec"

// Script is the compiled Lua bytecode blob produced by shelling out to
// luajit (spec.md §6: "Script asset"). SourceHash is an (expansion) field
// recording the hash of the Lua source at compile time so a future
// incremental build can detect a stale blob without re-invoking luajit.
type Script struct {
	Name       Name
	ID         ID
	Bytecode   []byte
	SourceHash uint64
}

func (s *Script) WriteTo(w *binarycodec.Writer) {
	w.WriteString(string(s.Name))
	w.WriteU64(uint64(s.ID))
	w.WriteRawBytes(s.Bytecode)
	w.WriteU64(s.SourceHash)
}

func (s *Script) ReadFrom(r *binarycodec.Reader) {
	s.Name = Name(r.ReadString())
	s.ID = ID(r.ReadU64())
	s.Bytecode = r.ReadRawBytes()
	s.SourceHash = r.ReadU64()
}

func (s *Script) AssetName() Name           { return s.Name }
func (s *Script) AssetID() ID                { return s.ID }
func (*Script) DefaultFileExtension() string { return "ssc" }
func (*Script) CacheName() string            { return "scripts" }
