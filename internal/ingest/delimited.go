package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"

	"github.com/snstools/snsmaster/internal/schema"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decoders are tried in order; the first that yields valid text wins. CP932
// covers the Shift-JIS exports common from Japanese ad managers.
var decoders = []struct {
	name   string
	decode func([]byte) (string, error)
}{
	{"utf-8-sig", decodeUTF8SIG},
	{"utf-8", decodeUTF8},
	{"cp932", decodeCP932},
}

// readDelimited reads a .csv or .tsv file, trying each supported encoding in
// order and sniffing the delimiter from a content sample. It reports the
// encoding and delimiter that succeeded.
func readDelimited(path string) ([]schema.RawRow, string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", "", err
	}

	var lastErr error
	for _, d := range decoders {
		text, err := d.decode(data)
		if err != nil {
			lastErr = err
			continue
		}
		sep, err := sniffDelimiter(text)
		if err != nil {
			lastErr = err
			continue
		}
		rows, err := parseDelimited(text, sep)
		if err != nil {
			lastErr = err
			continue
		}
		return rows, d.name, string(sep), nil
	}
	return nil, "", "", fmt.Errorf("all encodings exhausted: %w", lastErr)
}

func decodeUTF8SIG(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("invalid UTF-8")
	}
	return string(data), nil
}

func decodeUTF8(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("invalid UTF-8")
	}
	return string(data), nil
}

func decodeCP932(data []byte) (string, error) {
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding cp932: %w", err)
	}
	return string(out), nil
}

// sniffDelimiter picks comma or tab from a 4 KiB sample by frequency. A
// sample containing neither is not a delimited file.
func sniffDelimiter(text string) (rune, error) {
	sample := text
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	commas := strings.Count(sample, ",")
	tabs := strings.Count(sample, "\t")
	switch {
	case tabs > commas:
		return '\t', nil
	case commas > 0:
		return ',', nil
	}
	return 0, fmt.Errorf("could not determine delimiter")
}

func parseDelimited(text string, sep rune) ([]schema.RawRow, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing rows: %w", err)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return buildRows(all[0], all[1:]), nil
}
