package media

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf16"
)

// maxEncodedLen is the largest payload a 2-byte length prefix can describe.
const maxEncodedLen = 0xFFFF

// ErrStringTooLong is returned when a string does not fit the compact layout.
var ErrStringTooLong = errors.New("encoded string exceeds 65535 bytes")

// EncodeTrack writes the compact form of a track: its playback URL as a
// length-prefixed modified UTF-8 string. Metadata is persisted separately.
func EncodeTrack(w io.Writer, t *Track) error {
	if t == nil {
		return fmt.Errorf("encoding track: nil track")
	}
	if err := writeUTF(w, t.PlaybackURL); err != nil {
		return fmt.Errorf("encoding track: %w", err)
	}
	return nil
}

// DecodeTrack reads a playback URL written by EncodeTrack and joins it with
// the supplied metadata.
func DecodeTrack(info TrackInfo, r io.Reader) (*Track, error) {
	url, err := readUTF(r)
	if err != nil {
		return nil, fmt.Errorf("decoding track: %w", err)
	}
	return &Track{TrackInfo: info, PlaybackURL: url}, nil
}

// writeUTF writes s as a big-endian uint16 byte count followed by modified
// UTF-8: NUL is two bytes and supplementary characters are written as a
// surrogate pair of three-byte sequences.
func writeUTF(w io.Writer, s string) error {
	units := utf16.Encode([]rune(s))

	buf := make([]byte, 2, 2+len(units)*3)
	for _, u := range units {
		switch {
		case u >= 0x0001 && u <= 0x007F:
			buf = append(buf, byte(u))
		case u <= 0x07FF:
			buf = append(buf,
				byte(0xC0|(u>>6)&0x1F),
				byte(0x80|u&0x3F))
		default:
			buf = append(buf,
				byte(0xE0|(u>>12)&0x0F),
				byte(0x80|(u>>6)&0x3F),
				byte(0x80|u&0x3F))
		}
	}

	n := len(buf) - 2
	if n > maxEncodedLen {
		return fmt.Errorf("%w: %d", ErrStringTooLong, n)
	}
	binary.BigEndian.PutUint16(buf[:2], uint16(n))

	_, err := w.Write(buf)
	return err
}

// readUTF is the inverse of writeUTF.
func readUTF(r io.Reader) (string, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", fmt.Errorf("reading length: %w", err)
	}
	n := int(binary.BigEndian.Uint16(lenBuf[:]))

	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", fmt.Errorf("reading %d bytes: %w", n, err)
	}

	units := make([]uint16, 0, n)
	for i := 0; i < n; {
		b := data[i]
		switch {
		case b&0x80 == 0:
			units = append(units, uint16(b))
			i++
		case b&0xE0 == 0xC0:
			if i+1 >= n || data[i+1]&0xC0 != 0x80 {
				return "", fmt.Errorf("malformed input around byte %d", i)
			}
			units = append(units, uint16(b&0x1F)<<6|uint16(data[i+1]&0x3F))
			i += 2
		case b&0xF0 == 0xE0:
			if i+2 >= n || data[i+1]&0xC0 != 0x80 || data[i+2]&0xC0 != 0x80 {
				return "", fmt.Errorf("malformed input around byte %d", i)
			}
			units = append(units,
				uint16(b&0x0F)<<12|uint16(data[i+1]&0x3F)<<6|uint16(data[i+2]&0x3F))
			i += 3
		default:
			return "", fmt.Errorf("malformed input around byte %d", i)
		}
	}

	return string(utf16.Decode(units)), nil
}
