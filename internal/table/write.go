package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SaveOptions controls CSV output.
type SaveOptions struct {
	// Delimiter between fields; 0 means ','.
	Delimiter rune
	// WriteIndex prepends the row index column when the table has one.
	WriteIndex bool
}

const opSave = "write csv"

// Write renders t as delimited text. The index column is omitted unless
// opt.WriteIndex is set.
func Write(w io.Writer, t *Table, opt SaveOptions) error {
	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	withIndex := opt.WriteIndex && t.Index != nil
	width := t.Width()
	if withIndex {
		width++
	}
	rec := make([]string, 0, width)
	if withIndex {
		rec = append(rec, t.IndexName)
	}
	rec = append(rec, t.Names()...)
	if err := cw.Write(rec); err != nil {
		return err
	}
	cols := t.Columns()
	for i := 0; i < t.Rows(); i++ {
		rec = rec[:0]
		if withIndex {
			rec = append(rec, t.Index[i])
		}
		for _, c := range cols {
			rec = append(rec, c.Format(i))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes t to path through a temp file and rename, so a failed write
// never leaves a partial file at path.
func Save(t *Table, path string, opt SaveOptions) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return classifyFS(opSave, path, err, true)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := Write(tmp, t, opt); err != nil {
		tmp.Close()
		cleanup()
		return &FileError{Op: opSave, Kind: KindUnknown, Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return classifyFS(opSave, path, err, true)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return classifyFS(opSave, path, err, true)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return classifyFS(opSave, path, fmt.Errorf("atomic rename: %w", err), true)
	}
	return nil
}
