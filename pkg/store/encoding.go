package store

import (
	"bytes"
	"unicode/utf16"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeText converts file content to a UTF-8 string. A UTF-8 byte order
// mark is stripped and UTF-16 content with a byte order mark is converted.
// Everything else is returned as is.
func decodeText(data []byte) string {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):])
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeUTF16(data[len(bomUTF16LE):], false)
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeUTF16(data[len(bomUTF16BE):], true)
	default:
		return string(data)
	}
}

func decodeUTF16(data []byte, bigEndian bool) string {
	// drop a dangling odd byte
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}

	u16s := make([]uint16, 0, len(data)/2)
	for i := 0; i < len(data); i += 2 {
		if bigEndian {
			u16s = append(u16s, uint16(data[i])<<8|uint16(data[i+1]))
		} else {
			u16s = append(u16s, uint16(data[i])|uint16(data[i+1])<<8)
		}
	}
	return string(utf16.Decode(u16s))
}
