// Package export writes accumulation fields to zstd-compressed files and
// reads them back.
//
// The decompressed layout is the magic "TMF1", width and height as
// little-endian uint32, one format byte, then width*height pairs of
// little-endian float32 (numerator, denominator) in row order, row 0 first.
package export

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/phanxgames/tempmap"
)

var magic = [4]byte{'T', 'M', 'F', '1'}

const headerSize = 4 + 4 + 4 + 1

// ErrBadField is returned when the data is not a field file.
var ErrBadField = errors.New("export: not a tempmap field")

// EncodeField serializes f uncompressed.
func EncodeField(f *tempmap.Field) []byte {
	w, h := f.Width(), f.Height()
	buf := make([]byte, headerSize+w*h*8)
	copy(buf, magic[:])
	binary.LittleEndian.PutUint32(buf[4:], uint32(w))
	binary.LittleEndian.PutUint32(buf[8:], uint32(h))
	buf[12] = byte(f.Format())
	off := headerSize
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			num, den := f.At(x, y)
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(num))
			binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(den))
			off += 8
		}
	}
	return buf
}

// DecodeField parses the uncompressed form produced by EncodeField.
func DecodeField(data []byte) (*tempmap.Field, error) {
	if len(data) < headerSize || !bytes.Equal(data[:4], magic[:]) {
		return nil, ErrBadField
	}
	w := int(binary.LittleEndian.Uint32(data[4:]))
	h := int(binary.LittleEndian.Uint32(data[8:]))
	format := tempmap.FieldFormat(data[12])
	if format != tempmap.FieldFloat32 && format != tempmap.FieldHalf {
		return nil, fmt.Errorf("%w: format %d", ErrBadField, format)
	}
	if w <= 0 || h <= 0 || w > tempmap.MaxFieldPixels || h > tempmap.MaxFieldPixels || w*h > tempmap.MaxFieldPixels {
		return nil, fmt.Errorf("%w: size %dx%d", ErrBadField, w, h)
	}
	if len(data) != headerSize+w*h*8 {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrBadField, len(data), w, h)
	}
	f, err := tempmap.NewField(w, h, format)
	if err != nil {
		return nil, err
	}
	off := headerSize
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			num := math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			den := math.Float32frombits(binary.LittleEndian.Uint32(data[off+4:]))
			f.Set(x, y, num, den)
			off += 8
		}
	}
	return f, nil
}

// WriteField compresses f with zstd into w.
func WriteField(w io.Writer, f *tempmap.Field) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	if _, err := enc.Write(EncodeField(f)); err != nil {
		enc.Close()
		return fmt.Errorf("write field: %w", err)
	}
	return enc.Close()
}

// ReadField decompresses and parses a field written by WriteField.
func ReadField(r io.Reader) (*tempmap.Field, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress failed: %w", err)
	}
	return DecodeField(data)
}

// SaveField writes f to path.
func SaveField(path string, f *tempmap.Field) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteField(file, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadField reads a field from path.
func LoadField(path string) (*tempmap.Field, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadField(file)
}
