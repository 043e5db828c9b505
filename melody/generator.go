package melody

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"
)

// entrySize is the size in bytes of one table entry (uint16 frequency + uint16 duration).
const entrySize = 4

// CalculateSize returns the size in bytes of the compiled table,
// including the 2 byte entry count.
func (m *Melody) CalculateSize() int {
	return 2 + entrySize*len(m.Segments)
}

// tableEntry returns the frequency and duration of a segment as they are
// stored in the table. Values that don't fit 16 bits are clamped.
func tableEntry(s Segment) (uint16, uint16) {
	freq := min(max(s.Freq, 0), math.MaxUint16)
	dur := min(max(s.Duration, 0), MaxDuration)
	return uint16(freq), uint16(dur)
}

// Compile converts the melody into the binary table format: a little-endian
// uint16 entry count followed by one (uint16 freq, uint16 duration) pair per entry.
func (m *Melody) Compile() ([]byte, error) {
	if len(m.Segments) > math.MaxUint16 {
		return nil, fmt.Errorf("too many entries for a 16-bit count: %d", len(m.Segments))
	}

	totalSize := m.CalculateSize()
	buffer := bytes.NewBuffer(make([]byte, 0, totalSize))

	binary.Write(buffer, binary.LittleEndian, uint16(len(m.Segments)))
	for _, s := range m.Segments {
		freq, dur := tableEntry(s)
		binary.Write(buffer, binary.LittleEndian, [2]uint16{freq, dur})
	}

	// Sanity check to make sure the output binary is the expected size.
	if buffer.Len() != totalSize {
		return nil, fmt.Errorf("table size mismatch: got %d bytes, expected %d", buffer.Len(), totalSize)
	}
	return buffer.Bytes(), nil
}

// GuardName derives a C include guard from a melody name,
// e.g. "badapple_melody" becomes "BADAPPLE_MELODY_H".
func GuardName(name string) string {
	if name == "" {
		name = "melody"
	}
	guard := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToUpper(r)
		}
		return '_'
	}, name)
	if unicode.IsDigit(rune(guard[0])) {
		guard = "_" + guard
	}
	return guard + "_H"
}

// WriteHeader writes the melody as a C header holding a constant Note_t table
// and its length.
func (m *Melody) WriteHeader(w io.Writer) error {
	guard := GuardName(m.Name)
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "/* Auto-generated melody table, %d entries */\n", len(m.Segments))
	fmt.Fprintf(bw, "#ifndef %s\n", guard)
	fmt.Fprintf(bw, "#define %s\n\n", guard)
	bw.WriteString("#include <stddef.h>\n#include <stdint.h>\n\n")
	bw.WriteString("typedef struct {\n    uint16_t freq;\n    uint16_t duration;\n} Note_t;\n\n")

	bw.WriteString("static const Note_t melody[] = {\n")
	for _, s := range m.Segments {
		freq, dur := tableEntry(s)
		fmt.Fprintf(bw, "  {%d, %d},\n", freq, dur)
	}
	bw.WriteString("};\n\n")
	bw.WriteString("static const size_t melody_len = sizeof(melody)/sizeof(melody[0]);\n\n")
	fmt.Fprintf(bw, "#endif /* %s */\n", guard)

	return bw.Flush()
}
