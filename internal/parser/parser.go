package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/dshills/dictcc-mcp/pkg/types"
)

const (
	// dictccMarker must appear on the first line of a dump
	dictccMarker = "dict.cc"

	commentPrefix = "#"
)

var (
	languagePairPattern = regexp.MustCompile(`[A-Z]{2}-[A-Z]{2}`)
	timestampPattern    = regexp.MustCompile(`\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}`)
)

// Parser reads dict.cc vocabulary dumps
type Parser struct{}

// New creates a new Parser instance
func New() *Parser {
	return &Parser{}
}

// ParseFile reads a dump file. A file without recognisable metadata is
// not an error: the result has HasMetadata=false and no lines.
func (p *Parser) ParseFile(filePath string) (*types.ParseResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	result, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	result.Path = filePath
	return result, nil
}

// Parse reads a dump from r
func (p *Parser) Parse(r io.Reader) (*types.ParseResult, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	result := &types.ParseResult{}

	meta, ok, err := readMetadata(br)
	if err != nil {
		return nil, err
	}
	if !ok {
		return result, nil
	}
	result.Metadata = meta
	result.HasMetadata = true

	lines, comments, err := readEntryLines(br)
	if err != nil {
		return nil, err
	}
	result.Lines = lines
	result.CommentLines = comments
	return result, nil
}

// readMetadata extracts the language pair from line 1 and the timestamp
// from line 2. Both lines are consumed whether or not they match.
func readMetadata(r *bufio.Reader) (types.DictionaryMetadata, bool, error) {
	var meta types.DictionaryMetadata

	first, err := readLine(r)
	if err != nil && !errors.Is(err, io.EOF) {
		return meta, false, err
	}
	if strings.Contains(first, dictccMarker) {
		meta.LanguagePair = languagePairPattern.FindString(first)
	}

	second, err := readLine(r)
	if err != nil && !errors.Is(err, io.EOF) {
		return meta, false, err
	}
	meta.Timestamp = timestampPattern.FindString(second)

	if meta.LanguagePair == "" || meta.Timestamp == "" {
		return meta, false, nil
	}
	return meta, true, nil
}

// readEntryLines returns the remaining non-comment lines and the number of
// comment lines skipped.
func readEntryLines(r *bufio.Reader) ([]string, int, error) {
	var lines []string
	comments := 0
	for {
		line, err := readLine(r)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, 0, err
		}
		done := errors.Is(err, io.EOF)
		if done && line == "" {
			break
		}
		if strings.HasPrefix(line, commentPrefix) {
			comments++
		} else {
			lines = append(lines, line)
		}
		if done {
			break
		}
	}
	return lines, comments, nil
}

// readLine returns the next line without its terminator. io.EOF is
// returned together with the final unterminated line, if any.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, err
}

// ParseEntryLine splits a raw line on tabs into an entry with the given id.
// Lines with fewer than three fields are rejected.
func ParseEntryLine(id int64, line string) (*types.Entry, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 3 {
		return nil, false
	}
	return &types.Entry{
		ID:       id,
		Left:     ParseWordForm(fields[0]),
		Right:    ParseWordForm(fields[1]),
		Category: fields[2],
	}, true
}
