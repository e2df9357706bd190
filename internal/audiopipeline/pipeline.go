// Package audiopipeline implements the pass-through Audio Pipeline (spec.md
// §4 table: "Audio Pipeline / Script Pipeline — pass-through packaging").
// The source file's bytes are copied verbatim; only the header fields
// needed for playback (format, channel count, sample rate) are parsed out.
package audiopipeline

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/spaghettifunk/forge/internal/assetkind"
	"github.com/spaghettifunk/forge/internal/buildctx"
	"github.com/spaghettifunk/forge/internal/corelog"
	"github.com/spaghettifunk/forge/internal/pathutil"
	"github.com/spaghettifunk/forge/internal/store"
)

type Pipeline struct {
	ctx   *buildctx.Context
	store *store.Store[*assetkind.Audio]
}

func New(ctx *buildctx.Context) (*Pipeline, error) {
	s := store.New[*assetkind.Audio](
		ctx.OutputRoot, ctx.KindDir("audio"), "audio", "sau",
		func() *assetkind.Audio { return &assetkind.Audio{} },
		func() []*assetkind.Audio { return []*assetkind.Audio{} },
	)
	s.SetCompression(ctx.Compression)
	p := &Pipeline{ctx: ctx, store: s}
	if err := s.Initialize(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) Store() *store.Store[*assetkind.Audio] { return p.store }

// Create reads srcPath whole and parses just enough of its container header
// to populate format/channels/sample_rate; the payload bytes are the
// untouched source file (no resampling or transcoding, spec.md §9).
func (p *Pipeline) Create(name assetkind.Name, srcPath pathutil.Path) (*assetkind.Audio, error) {
	data, err := os.ReadFile(srcPath.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", corelog.ErrInputIO, err)
	}

	audio := &assetkind.Audio{Name: name.Clamp(), ID: assetkind.HashName(name), Data: data}
	switch strings.ToLower(srcPath.Ext()) {
	case ".wav":
		if err := parseWAVHeader(data, audio); err != nil {
			return nil, err
		}
	case ".ogg":
		if err := parseOggVorbisHeader(data, audio); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unrecognised audio extension %q", corelog.ErrDecode, srcPath.Ext())
	}
	return audio, nil
}

// parseWAVHeader walks a canonical RIFF/WAVE chunk list looking for "fmt ",
// reading channels/sample-rate directly from it (offsets per the standard
// WAVEFORMATEX layout).
func parseWAVHeader(data []byte, audio *assetkind.Audio) error {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return fmt.Errorf("%w: not a RIFF/WAVE file", corelog.ErrDecode)
	}
	audio.Format = assetkind.AudioFormatPCM16

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if chunkID == "fmt " {
			if body+16 > len(data) {
				return fmt.Errorf("%w: truncated fmt chunk", corelog.ErrDecode)
			}
			audio.Channels = uint8(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			audio.SampleRate = binary.LittleEndian.Uint32(data[body+4 : body+8])
			return nil
		}
		offset = body + chunkSize + chunkSize%2
	}
	return fmt.Errorf("%w: no fmt chunk found", corelog.ErrDecode)
}

// parseOggVorbisHeader reads the Vorbis identification header out of the
// first Ogg page: capture pattern "OggS", then a page body beginning with
// the 7-byte packet type+signature "\x01vorbis", followed by a 4-byte
// version, 1-byte channel count and 4-byte little-endian sample rate.
func parseOggVorbisHeader(data []byte, audio *assetkind.Audio) error {
	if len(data) < 27 || string(data[0:4]) != "OggS" {
		return fmt.Errorf("%w: not an Ogg file", corelog.ErrDecode)
	}
	audio.Format = assetkind.AudioFormatOggVorbis

	numSegments := int(data[26])
	headerLen := 27 + numSegments
	if headerLen >= len(data) {
		return fmt.Errorf("%w: truncated Ogg page header", corelog.ErrDecode)
	}
	pageBodyLen := 0
	for i := 0; i < numSegments; i++ {
		pageBodyLen += int(data[27+i])
	}
	body := data[headerLen:]
	if len(body) < pageBodyLen || pageBodyLen < 30 {
		return fmt.Errorf("%w: truncated Ogg page body", corelog.ErrDecode)
	}
	if string(body[0:7]) != "\x01vorbis" {
		return fmt.Errorf("%w: first Ogg packet is not a Vorbis identification header", corelog.ErrDecode)
	}
	audio.Channels = body[11]
	audio.SampleRate = binary.LittleEndian.Uint32(body[12:16])
	return nil
}

// PackageAudio decodes srcPath's header and writes the resulting Audio
// record into the package store.
func (p *Pipeline) PackageAudio(assetOrigin string, name assetkind.Name, srcPath pathutil.Path) (assetkind.ID, error) {
	audio, err := p.Create(name, srcPath)
	if err != nil {
		return 0, err
	}
	id, ok := p.store.Package(assetOrigin, audio)
	if !ok {
		return 0, fmt.Errorf("%w: failed to package audio %q", corelog.ErrPersistenceFailure, name)
	}
	return id, nil
}
