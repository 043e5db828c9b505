package header

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"regexp"
	"strconv"

	"github.com/QEStudios/BuzzerCompiler/melody"
)

// entryPattern matches a single table entry such as "  {440, 500},".
var entryPattern = regexp.MustCompile(`\{\s*(\d+)\s*,\s*(\d+)\s*\},`)

// Small struct for non-fatal warnings
type ParseWarning struct {
	Line    int
	Message string
}

func (pw ParseWarning) String() string {
	return fmt.Sprintf("line %d: %s", pw.Line, pw.Message)
}

type ParseResult struct {
	Segments []melody.Segment
	Warnings []ParseWarning
}

// Parser reads the melody table back out of a generated C header.
type Parser struct {
	scanner    *bufio.Scanner
	logger     *log.Logger
	lineNumber int

	warnings []ParseWarning

	// Parsing can only be done once per Parser.
	used bool
}

// NewParser creates a new parser to parse a header file.
func NewParser(r io.Reader, logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.Default()
	}
	return &Parser{
		scanner: bufio.NewScanner(r),
		logger:  logger,
	}
}

func (p *Parser) addWarning(format string, args ...any) {
	p.warnings = append(p.warnings, ParseWarning{
		Line:    p.lineNumber,
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *Parser) fatalf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", p.lineNumber, fmt.Sprintf(format, args...))
}

// Parse collects every {freq, duration} entry in the file, in order.
// Lines without an entry are skipped.
func (p *Parser) Parse() (*ParseResult, error) {
	if p.used {
		return nil, fmt.Errorf("parser already used")
	}
	p.used = true

	var segs []melody.Segment
	for p.scanner.Scan() {
		p.lineNumber++
		m := entryPattern.FindStringSubmatch(p.scanner.Text())
		if m == nil {
			continue
		}

		freq, err := strconv.ParseUint(m[1], 10, 16)
		if err != nil {
			return nil, p.fatalf("invalid frequency %q: %v", m[1], err)
		}
		dur, err := strconv.ParseUint(m[2], 10, 32)
		if err != nil {
			return nil, p.fatalf("invalid duration %q: %v", m[2], err)
		}
		if dur == 0 {
			p.addWarning("zero duration entry {%d, 0} skipped", freq)
			continue
		}

		segs = append(segs, melody.Segment{Freq: int(freq), Duration: int(dur)})
	}
	if err := p.scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	if len(p.warnings) > 0 {
		p.logger.Println("Warnings produced while parsing header:")
		for _, w := range p.warnings {
			p.logger.Println(w)
		}
	}
	p.logger.Printf("Parsed %d entries", len(segs))

	return &ParseResult{Segments: segs, Warnings: p.warnings}, nil
}
