package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// LoadOptions controls how a delimited file becomes a Table.
type LoadOptions struct {
	// Delimiter between fields. If 0, '\t' for .tsv paths and ',' otherwise.
	Delimiter rune
	// Encoding of the input: "utf-8" (default), "latin1" or "windows-1252".
	Encoding string
	// IndexColumn treats the first column as the row key instead of data.
	IndexColumn bool
	// DecimalSeparator for numbers; 0 auto-detects per value.
	DecimalSeparator rune
	// ThousandsSeparator is stripped before parsing when set.
	ThousandsSeparator rune
	// MissingTokens are read as missing values. Nil uses the defaults.
	MissingTokens []string
	// Sheet selects a worksheet by name for .xlsx input; empty reads the
	// first sheet.
	Sheet string
}

// DefaultLoadOptions reads a comma-separated UTF-8 file whose first column is
// the row index.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Delimiter:        ',',
		Encoding:         "utf-8",
		IndexColumn:      true,
		DecimalSeparator: '.',
	}
}

const opLoad = "load csv"

// Load reads a delimited file, or an .xlsx workbook, into a Table. Failures
// are *FileError values carrying the path.
func Load(path string, opt LoadOptions) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadXLSX(path, opt)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, classifyFS(opLoad, path, err, false)
	}
	defer f.Close()

	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	t, err := Read(f, opt)
	if err != nil {
		var fe *FileError
		if errors.As(err, &fe) {
			fe.Path = path
			return nil, fe
		}
		return nil, &FileError{Op: opLoad, Kind: KindUnknown, Path: path, Err: err}
	}
	return t, nil
}

// Read parses delimited content from r.
func Read(r io.Reader, opt LoadOptions) (*Table, error) {
	src, err := decoder(r, opt.Encoding)
	if err != nil {
		return nil, &FileError{Op: opLoad, Kind: KindEncoding, Err: err}
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}
	cr := csv.NewReader(src)
	cr.Comma = delim
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &FileError{Op: opLoad, Kind: KindParse, Err: errors.New("missing header row")}
		}
		return nil, readError(err)
	}
	return fromRows(header, func() ([]string, error) {
		rec, err := cr.Read()
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, readError(err)
		}
		return rec, err
	}, opt)
}

// fromRows assembles a Table from a header and a row iterator that returns
// io.EOF after the last row. Short rows are padded with empty cells.
func fromRows(header []string, next func() ([]string, error), opt LoadOptions) (*Table, error) {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if err := checkUTF8(header, 0); err != nil {
		return nil, err
	}

	offset := 0
	indexName := ""
	if opt.IndexColumn && len(header) > 0 {
		offset = 1
		indexName = strings.TrimSpace(header[0])
	}
	names := uniqueNames(header[offset:])
	ncol := len(names)
	raw := make([][]string, ncol)
	var index []string

	record := 0
	for {
		rec, err := next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		record++
		if len(rec) > len(header) {
			return nil, &FileError{Op: opLoad, Kind: KindParse,
				Err: fmt.Errorf("record %d: expected %d fields, saw %d", record, len(header), len(rec))}
		}
		if err := checkUTF8(rec, record); err != nil {
			return nil, err
		}
		if len(rec) < len(header) {
			tmp := make([]string, len(header))
			copy(tmp, rec)
			rec = tmp
		}
		if offset == 1 {
			index = append(index, rec[0])
		}
		for j := 0; j < ncol; j++ {
			raw[j] = append(raw[j], rec[j+offset])
		}
	}

	t := New(record)
	if offset == 1 {
		if index == nil {
			index = []string{}
		}
		t.Index = index
		t.IndexName = indexName
	}
	tokens := missingSet(opt.MissingTokens)
	for j, name := range names {
		vals := raw[j]
		if vals == nil {
			vals = []string{}
		}
		if err := t.Set(inferColumn(name, vals, tokens, opt)); err != nil {
			return nil, &FileError{Op: opLoad, Kind: KindUnknown, Err: err}
		}
	}
	return t, nil
}

// inferColumn resolves the column variant once: numeric if every present
// value parses as a number, bool if every present value is true/false,
// text otherwise. A column with no present values is numeric.
func inferColumn(name string, vals []string, tokens map[string]bool, opt LoadOptions) Column {
	n := len(vals)
	missing := make([]bool, n)
	nums := make([]float64, n)
	numeric, boolean := true, true
	for i, v := range vals {
		if isMissingToken(v, tokens) {
			missing[i] = true
			nums[i] = math.NaN()
			continue
		}
		if numeric {
			if x, ok := parseNumeric(v, opt); ok {
				nums[i] = x
			} else {
				numeric = false
			}
		}
		if boolean {
			if _, ok := parseBool(v); !ok {
				boolean = false
			}
		}
		if !numeric && !boolean {
			break
		}
	}
	switch {
	case numeric:
		return NewNumeric(name, nums)
	case boolean:
		bs := make([]bool, n)
		valid := make([]bool, n)
		for i, v := range vals {
			if missing[i] {
				continue
			}
			bs[i], _ = parseBool(v)
			valid[i] = true
		}
		return NewBool(name, bs, valid)
	default:
		strs := make([]string, n)
		valid := make([]bool, n)
		for i, v := range vals {
			if isMissingToken(v, tokens) {
				continue
			}
			strs[i] = v
			valid[i] = true
		}
		return NewText(name, strs, valid)
	}
}

func missingSet(tokens []string) map[string]bool {
	if tokens == nil {
		tokens = defaultMissingTokens
	}
	set := make(map[string]bool, len(tokens)+1)
	set[""] = true
	for _, tok := range tokens {
		set[tok] = true
	}
	return set
}

func decoder(r io.Reader, name string) (io.Reader, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "latin-1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

func checkUTF8(fields []string, record int) error {
	for _, f := range fields {
		if !utf8.ValidString(f) {
			return &FileError{Op: opLoad, Kind: KindEncoding, Err: fmt.Errorf("record %d: invalid UTF-8 byte sequence", record)}
		}
	}
	return nil
}

func readError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &FileError{Op: opLoad, Kind: KindParse, Err: err}
	}
	return &FileError{Op: opLoad, Kind: KindUnknown, Err: err}
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
