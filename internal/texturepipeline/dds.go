package texturepipeline

import (
	"encoding/binary"
	"fmt"

	"github.com/spaghettifunk/forge/internal/assetkind"
	"github.com/spaghettifunk/forge/internal/corelog"
)

// ddsSurface is the decoded result of reading a DDS header + block data,
// ahead of the pipeline wrapping it into a Texture record (spec.md §4.3).
type ddsSurface struct {
	Width, Height, Depth, Mips int32
	Type                       assetkind.TextureType
	Pixels                     []byte // RGBA8, top row first
}

const ddsMagic = 0x20534444 // "DDS "

// fourCC codes for the block-compressed formats spec.md §4.3 names.
const (
	fourCCDXT1 = 0x31545844 // "DXT1" -> BC1
	fourCCDXT3 = 0x33545844 // "DXT3" -> BC2-ish, not decoded here
	fourCCDXT5 = 0x35545844 // "DXT5" -> BC3
	fourCCATI2 = 0x32495441 // "ATI2" -> BC5
)

// decodeDDS reads a DDS surface description and decodes the top mip level
// of the first face or slice only; further cube faces, volume slices and
// mip levels are not read, and the result always reports Depth 1 and
// Mips 1 (Type still reflects the cubemap/volume caps2 bits).
// Block-compressed formats are decoded to RGBA8 in 4x4 tiles for
// BC1/BC3/BC5 (spec.md §4.3: "others rejected"). Uncompressed DDS surfaces
// are re-ordered into RGBA using the channel-mask table, substituting
// 0/255 for absent channels.
func decodeDDS(data []byte) (*ddsSurface, error) {
	if len(data) < 128 || binary.LittleEndian.Uint32(data[0:4]) != ddsMagic {
		return nil, fmt.Errorf("dds: bad magic")
	}
	header := data[4:128]
	height := int32(binary.LittleEndian.Uint32(header[8:12]))
	width := int32(binary.LittleEndian.Uint32(header[12:16]))
	mips := int32(binary.LittleEndian.Uint32(header[24:28]))
	if mips == 0 {
		mips = 1
	}
	pf := header[72:100] // DDS_PIXELFORMAT block within the header
	flags := binary.LittleEndian.Uint32(pf[0:4])
	fourCC := binary.LittleEndian.Uint32(pf[4:8])

	const ddpfFourCC = 0x4
	body := data[128:]

	surfaceType := assetkind.TextureType2D
	caps2 := binary.LittleEndian.Uint32(header[108:112])
	const ddsCaps2Cubemap = 0x200
	const ddsCaps2Volume = 0x200000
	switch {
	case caps2&ddsCaps2Cubemap != 0:
		surfaceType = assetkind.TextureTypeCube
	case caps2&ddsCaps2Volume != 0:
		surfaceType = assetkind.TextureType3D
	}

	if flags&ddpfFourCC != 0 {
		pixels, err := decodeBlockCompressed(body, int(width), int(height), fourCC)
		if err != nil {
			return nil, err
		}
		return &ddsSurface{Width: width, Height: height, Depth: 1, Mips: 1, Type: surfaceType, Pixels: pixels}, nil
	}

	rgbBitCount := binary.LittleEndian.Uint32(pf[8:12])
	rMask := binary.LittleEndian.Uint32(pf[12:16])
	gMask := binary.LittleEndian.Uint32(pf[16:20])
	bMask := binary.LittleEndian.Uint32(pf[20:24])
	aMask := binary.LittleEndian.Uint32(pf[24:28])
	pixels := decodeUncompressed(body, int(width), int(height), int(rgbBitCount/8), rMask, gMask, bMask, aMask)
	return &ddsSurface{Width: width, Height: height, Depth: 1, Mips: 1, Type: surfaceType, Pixels: pixels}, nil
}

func decodeBlockCompressed(body []byte, width, height int, fourCC uint32) ([]byte, error) {
	blocksX := (width + 3) / 4
	blocksY := (height + 3) / 4
	out := make([]byte, width*height*4)

	writeTile := func(bx, by int, tile [16][4]byte) {
		for ty := 0; ty < 4; ty++ {
			py := by*4 + ty
			if py >= height {
				continue
			}
			for tx := 0; tx < 4; tx++ {
				px := bx*4 + tx
				if px >= width {
					continue
				}
				dst := (py*width + px) * 4
				copy(out[dst:dst+4], tile[ty*4+tx][:])
			}
		}
	}

	switch fourCC {
	case fourCCDXT1:
		blockSize := 8
		for by := 0; by < blocksY; by++ {
			for bx := 0; bx < blocksX; bx++ {
				off := (by*blocksX + bx) * blockSize
				if off+blockSize > len(body) {
					return nil, fmt.Errorf("dds: truncated BC1 data")
				}
				writeTile(bx, by, decodeBC1Block(body[off:off+blockSize]))
			}
		}
	case fourCCDXT5:
		blockSize := 16
		for by := 0; by < blocksY; by++ {
			for bx := 0; bx < blocksX; bx++ {
				off := (by*blocksX + bx) * blockSize
				if off+blockSize > len(body) {
					return nil, fmt.Errorf("dds: truncated BC3 data")
				}
				writeTile(bx, by, decodeBC3Block(body[off:off+blockSize]))
			}
		}
	case fourCCATI2:
		blockSize := 16
		for by := 0; by < blocksY; by++ {
			for bx := 0; bx < blocksX; bx++ {
				off := (by*blocksX + bx) * blockSize
				if off+blockSize > len(body) {
					return nil, fmt.Errorf("dds: truncated BC5 data")
				}
				writeTile(bx, by, decodeBC5Block(body[off:off+blockSize]))
			}
		}
	default:
		return nil, fmt.Errorf("dds: unsupported compressed format 0x%x (only BC1/BC3/BC5 supported)", fourCC)
	}
	return out, nil
}

func rgb565(c uint16) (r, g, b byte) {
	r = byte((c >> 11 & 0x1F) * 255 / 31)
	g = byte((c >> 5 & 0x3F) * 255 / 63)
	b = byte((c & 0x1F) * 255 / 31)
	return
}

func decodeBC1Block(block []byte) [16][4]byte {
	c0 := binary.LittleEndian.Uint16(block[0:2])
	c1 := binary.LittleEndian.Uint16(block[2:4])
	idx := binary.LittleEndian.Uint32(block[4:8])

	r0, g0, b0 := rgb565(c0)
	r1, g1, b1 := rgb565(c1)
	var palette [4][4]byte
	palette[0] = [4]byte{r0, g0, b0, 255}
	palette[1] = [4]byte{r1, g1, b1, 255}
	if c0 > c1 {
		palette[2] = [4]byte{byte((2*int(r0) + int(r1)) / 3), byte((2*int(g0) + int(g1)) / 3), byte((2*int(b0) + int(b1)) / 3), 255}
		palette[3] = [4]byte{byte((int(r0) + 2*int(r1)) / 3), byte((int(g0) + 2*int(g1)) / 3), byte((int(b0) + 2*int(b1)) / 3), 255}
	} else {
		palette[2] = [4]byte{byte((int(r0) + int(r1)) / 2), byte((int(g0) + int(g1)) / 2), byte((int(b0) + int(b1)) / 2), 255}
		palette[3] = [4]byte{0, 0, 0, 0}
	}

	var tile [16][4]byte
	for i := 0; i < 16; i++ {
		sel := (idx >> uint(2*i)) & 0x3
		tile[i] = palette[sel]
	}
	return tile
}

func decodeBC3Block(block []byte) [16][4]byte {
	alpha0 := block[0]
	alpha1 := block[1]
	var alphaBits uint64
	for i := 0; i < 6; i++ {
		alphaBits |= uint64(block[2+i]) << (8 * i)
	}
	var alphaPalette [8]byte
	alphaPalette[0] = alpha0
	alphaPalette[1] = alpha1
	if alpha0 > alpha1 {
		for i := 1; i <= 6; i++ {
			alphaPalette[1+i] = byte((int(7-i)*int(alpha0) + i*int(alpha1)) / 7)
		}
	} else {
		for i := 1; i <= 4; i++ {
			alphaPalette[1+i] = byte((int(5-i)*int(alpha0) + i*int(alpha1)) / 5)
		}
		alphaPalette[6] = 0
		alphaPalette[7] = 255
	}

	tile := decodeBC1Block(block[8:16])
	for i := 0; i < 16; i++ {
		sel := (alphaBits >> uint(3*i)) & 0x7
		tile[i][3] = alphaPalette[sel]
	}
	return tile
}

func decodeBC5Block(block []byte) [16][4]byte {
	red := decodeBC3AlphaChannel(block[0:8])
	green := decodeBC3AlphaChannel(block[8:16])
	var tile [16][4]byte
	for i := 0; i < 16; i++ {
		tile[i] = [4]byte{red[i], green[i], 0, 255}
	}
	return tile
}

func decodeBC3AlphaChannel(block []byte) [16]byte {
	a0 := block[0]
	a1 := block[1]
	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(block[2+i]) << (8 * i)
	}
	var palette [8]byte
	palette[0] = a0
	palette[1] = a1
	if a0 > a1 {
		for i := 1; i <= 6; i++ {
			palette[1+i] = byte((int(7-i)*int(a0) + i*int(a1)) / 7)
		}
	} else {
		for i := 1; i <= 4; i++ {
			palette[1+i] = byte((int(5-i)*int(a0) + i*int(a1)) / 5)
		}
		palette[6] = 0
		palette[7] = 255
	}
	var out [16]byte
	for i := 0; i < 16; i++ {
		out[i] = palette[(bits>>uint(3*i))&0x7]
	}
	return out
}

// decodeUncompressed re-orders an uncompressed DDS surface into RGBA order
// using the channel-mask table, substituting 0/255 for absent channels
// (spec.md §4.3).
func decodeUncompressed(body []byte, width, height, bytesPerPixel int, rMask, gMask, bMask, aMask uint32) []byte {
	out := make([]byte, width*height*4)
	stride := width * bytesPerPixel
	for y := 0; y < height; y++ {
		rowOff := y * stride
		if rowOff+stride > len(body) {
			corelog.LogWarn("dds: truncated uncompressed surface at row %d", y)
			break
		}
		for x := 0; x < width; x++ {
			pxOff := rowOff + x*bytesPerPixel
			var px uint32
			for b := 0; b < bytesPerPixel; b++ {
				px |= uint32(body[pxOff+b]) << (8 * b)
			}
			dst := (y*width + x) * 4
			out[dst+0] = extractChannel(px, rMask)
			out[dst+1] = extractChannel(px, gMask)
			out[dst+2] = extractChannel(px, bMask)
			if aMask == 0 {
				out[dst+3] = 255
			} else {
				out[dst+3] = extractChannel(px, aMask)
			}
		}
	}
	return out
}

func extractChannel(px, mask uint32) byte {
	if mask == 0 {
		return 0
	}
	shift := 0
	for mask&1 == 0 {
		mask >>= 1
		shift++
	}
	width := 0
	for mask&1 == 1 {
		mask >>= 1
		width++
	}
	val := (px >> uint(shift)) & ((1 << uint(width)) - 1)
	if width >= 8 {
		return byte(val >> uint(width-8))
	}
	return byte(val << uint(8-width))
}
