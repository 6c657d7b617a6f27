package core

// reader.go turns raw file bytes into trimmed rows.
//
// Files arrive from spreadsheet exports in whatever encoding the tool chose:
//
//   - UTF-8 with or without a BOM
//   - UTF-16 with a BOM (Excel "Unicode text")
//   - Windows-1252 from older Excel and Windows tools
//
// A BOM selects the decoder; BOM-less input that is not valid UTF-8 is
// decoded as Windows-1252. Cells are split on the delimiter without quote
// handling, so a delimiter inside a quoted value splits the cell.

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEmptyTokens are the cell values treated as empty when
// ReaderOptions.EmptyTokens is nil.
var DefaultEmptyTokens = []string{"null", "NULL", "n/a", "N/A", "-", `""`}

// ReaderOptions controls how ReadRows splits and cleans a file.
type ReaderOptions struct {
	Delimiter   string   // Cell separator (default: ",")
	EmptyTokens []string // Exact trimmed values replaced by "" (default: DefaultEmptyTokens)
	MaxSize     int64    // Largest accepted input in bytes; 0 disables the check
}

// DefaultReaderOptions returns options with the comma delimiter and the
// default sentinel tokens.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		Delimiter:   ",",
		EmptyTokens: DefaultEmptyTokens,
	}
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// ReadRows decodes data and returns the header row followed by every data
// row that has at least one non-empty cell. Cells are trimmed and sentinel
// tokens are replaced by "". Leading blank lines before the header are
// skipped. A file with no header fails with a *ParseError.
func ReadRows(data []byte, opts ReaderOptions) ([]RawRow, error) {
	if opts.MaxSize > 0 && int64(len(data)) > opts.MaxSize {
		return nil, &ParseError{Err: fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, len(data), opts.MaxSize)}
	}

	text, err := decodeText(data)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("%w: %v", ErrEncoding, err)}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Err: ErrEmptyInput}
	}

	delim := opts.Delimiter
	if delim == "" {
		delim = ","
	}
	empty := opts.EmptyTokens
	if empty == nil {
		empty = DefaultEmptyTokens
	}
	sentinels := make(map[string]bool, len(empty))
	for _, tok := range empty {
		sentinels[tok] = true
	}

	lines := strings.Split(lineBreaks.Replace(text), "\n")
	rows := make([]RawRow, 0, len(lines))

	for _, line := range lines {
		if len(rows) == 0 && strings.TrimSpace(line) == "" {
			continue
		}

		row := splitCells(line, delim, sentinels)
		if len(rows) == 0 {
			if isEmptyRow(row) {
				return nil, &ParseError{Err: ErrMissingHeader}
			}
			rows = append(rows, row)
			continue
		}
		if isEmptyRow(row) {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// decodeText returns data as a UTF-8 string.
func decodeText(data []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return "", err
	}
	if utf8.Valid(out) {
		return string(out), nil
	}

	out, _, err = transform.Bytes(charmap.Windows1252.NewDecoder(), out)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func splitCells(line, delim string, sentinels map[string]bool) RawRow {
	parts := strings.Split(line, delim)
	row := make(RawRow, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if sentinels[p] {
			p = ""
		}
		row[i] = p
	}
	return row
}

// isEmptyRow returns true if all cells in the row are empty.
func isEmptyRow(row RawRow) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
