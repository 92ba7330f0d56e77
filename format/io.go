package format

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// CompressionLevel selects how hard the snapshot payload is squeezed.
type CompressionLevel int

const (
	// CompressionLevelNone stores the payload uncompressed.
	CompressionLevelNone CompressionLevel = iota
	// CompressionLevelFast favors encoding speed.
	CompressionLevelFast
	// CompressionLevelDefault balances speed and size.
	CompressionLevelDefault
	// CompressionLevelBest favors output size.
	CompressionLevelBest
)

// compressionThreshold is the payload size below which compression is not
// worth attempting.
const compressionThreshold = 1024

// zstdLevel maps a snapshot compression level onto the encoder's scale.
func (l CompressionLevel) zstdLevel() zstd.EncoderLevel {
	switch l {
	case CompressionLevelFast:
		return zstd.SpeedFastest
	case CompressionLevelBest:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

// header is the fixed preamble in front of every snapshot payload: magic,
// format version, compression tag, and the uncompressed payload length. The
// length is informational; decoders size nothing from it.
type header struct {
	version     int16
	compression uint8
	payloadLen  int64
}

// readHeader consumes and validates the preamble.
func readHeader(r io.Reader) (header, error) {
	var h header

	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return h, fmt.Errorf("snapshot magic: %w", err)
	}
	if magic != MagicNumber {
		return h, fmt.Errorf("not a snapshot stream: magic 0x%08X", magic)
	}

	if err := binary.Read(r, binary.BigEndian, &h.version); err != nil {
		return h, fmt.Errorf("snapshot version: %w", err)
	}
	if h.version > CurrentVersion {
		return h, fmt.Errorf("snapshot version %d is newer than supported %d", h.version, CurrentVersion)
	}

	if err := binary.Read(r, binary.BigEndian, &h.compression); err != nil {
		return h, fmt.Errorf("snapshot compression tag: %w", err)
	}
	switch h.compression {
	case CompressionNone, CompressionZstd:
	default:
		return h, fmt.Errorf("unknown compression tag %d", h.compression)
	}

	n, err := readVarInt(r)
	if err != nil {
		return h, fmt.Errorf("snapshot payload length: %w", err)
	}
	h.payloadLen = n
	return h, nil
}

// writeTo emits the preamble.
func (h header) writeTo(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, uint32(MagicNumber)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, h.version); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, h.compression); err != nil {
		return err
	}
	return writeVarInt(w, h.payloadLen)
}

// Read decodes a snapshot stream produced by Write.
func Read(r io.Reader) (*World, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	payload := r
	if h.compression == CompressionZstd {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open zstd payload: %w", err)
		}
		defer dec.Close()
		payload = dec.IOReadCloser()
	}

	w, err := DecodeWorld(payload)
	if err != nil {
		return nil, fmt.Errorf("snapshot payload: %w", err)
	}
	w.Version = h.version
	return w, nil
}

// Write encodes a snapshot with the default compression level.
func Write(w io.Writer, world *World) error {
	return WriteWithCompression(w, world, CompressionLevelDefault)
}

// WriteWithCompression encodes a snapshot at the given compression level.
// The payload is stored compressed only when the squeezed form is actually
// smaller; the header's compression tag records which form won.
func WriteWithCompression(w io.Writer, world *World, level CompressionLevel) error {
	if err := world.Validate(); err != nil {
		return fmt.Errorf("snapshot world: %w", err)
	}

	buf := newBuffer()
	EncodeWorld(buf, world)
	payload := buf.Bytes()

	h := header{version: CurrentVersion, compression: CompressionNone, payloadLen: int64(len(payload))}
	body := payload
	if squeezed := compressPayload(payload, level); squeezed != nil {
		h.compression = CompressionZstd
		body = squeezed
	}

	if err := h.writeTo(w); err != nil {
		return fmt.Errorf("snapshot header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("snapshot payload: %w", err)
	}
	return nil
}

// compressPayload returns the zstd form of the payload, or nil when the
// level disables compression, the payload is too small to bother with, the
// encoder cannot be built, or the squeezed form is no smaller.
func compressPayload(payload []byte, level CompressionLevel) []byte {
	if level == CompressionLevelNone || len(payload) <= compressionThreshold {
		return nil
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level.zstdLevel()))
	if err != nil {
		return nil
	}
	defer enc.Close()

	squeezed := enc.EncodeAll(payload, make([]byte, 0, len(payload)))
	if len(squeezed) >= len(payload) {
		return nil
	}
	return squeezed
}
