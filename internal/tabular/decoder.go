package tabular

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Row is one decoded data line, keyed by cleaned header name. Missing
// trailing cells map to "".
type Row map[string]string

// Supported source encodings for Decode. The reading app exports CSV in
// the legacy Thai code page, so windows-874 is the upload default; this
// is the only place in the system where bytes are reinterpreted.
const (
	EncodingUTF8       = "utf-8"
	EncodingWindows874 = "windows-874"
)

// Decode parses a delimited text buffer into header-keyed rows.
// The first non-blank line is the header. Fewer than two non-blank lines
// yields an empty slice, not an error. Both \n and \r\n terminators are
// accepted; headers and cells are trimmed and stripped of double quotes.
func Decode(raw []byte, encoding string) ([]Row, error) {
	text, err := decodeBytes(raw, encoding)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) < 2 {
		return []Row{}, nil
	}

	headers := splitCells(lines[0])
	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cols := splitCells(line)
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(cols) {
				row[h] = cols[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DecodeXLSX parses the first sheet of an Excel workbook with the same
// header/cell rules as Decode. Workbooks are already Unicode internally,
// so no code page handling applies.
func DecodeXLSX(raw []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []Row{}, nil
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(cells) < 2 {
		return []Row{}, nil
	}

	headers := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		headers[i] = clean(h)
	}
	rows := make([]Row, 0, len(cells)-1)
	for _, line := range cells[1:] {
		if blankLine(line) {
			continue
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(line) {
				row[h] = clean(line[i])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeBytes(raw []byte, encoding string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingUTF8, "utf8":
		return string(raw), nil
	case EncodingWindows874, "cp874", "tis-620":
		decoded, err := charmap.Windows874.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("decode windows-874: %w", err)
		}
		return string(decoded), nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", encoding)
	}
}

func splitCells(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = clean(p)
	}
	return parts
}

func clean(cell string) string {
	return strings.TrimSpace(strings.ReplaceAll(cell, `"`, ""))
}

func blankLine(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
