package table

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteOmitsIndex(t *testing.T) {
	tab, err := Read(strings.NewReader("i,a,b\n7,1.5,x\n8,,y\n"), DefaultLoadOptions())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, tab, SaveOptions{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "a,b\n1.5,x\n,y\n"
	if buf.String() != want {
		t.Fatalf("csv = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := Write(&buf, tab, SaveOptions{WriteIndex: true, Delimiter: ';'}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "i;a;b\n7;1.5;x\n") {
		t.Fatalf("indexed csv = %q", buf.String())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	src := writeCSV(t, "in.csv", listingRows)
	tab, err := Load(src, DefaultLoadOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out := filepath.Join(t.TempDir(), "out.csv")
	if err := Save(tab, out, SaveOptions{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	opt := DefaultLoadOptions()
	opt.IndexColumn = false
	back, err := Load(out, opt)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if strings.Join(back.Names(), ",") != strings.Join(tab.Names(), ",") {
		t.Fatalf("names = %v, want %v", back.Names(), tab.Names())
	}
	if back.Rows() != tab.Rows() {
		t.Fatalf("rows = %d, want %d", back.Rows(), tab.Rows())
	}
	for _, c := range tab.Columns() {
		bc, _ := back.Column(c.Name())
		if bc.Kind() != c.Kind() {
			t.Fatalf("%s kind = %s, want %s", c.Name(), bc.Kind(), c.Kind())
		}
		for i := 0; i < tab.Rows(); i++ {
			if bc.Format(i) != c.Format(i) {
				t.Fatalf("%s[%d] = %q, want %q", c.Name(), i, bc.Format(i), c.Format(i))
			}
		}
	}
	entries, _ := os.ReadDir(filepath.Dir(out))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestSaveMissingDirectory(t *testing.T) {
	tab, _ := FromColumns(NewNumeric("a", []float64{1}))
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "out.csv")
	err := Save(tab, path, SaveOptions{})
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("no output file expected")
	}
}

func TestSaveReadOnlyDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	defer os.Chmod(dir, 0o755)
	tab, _ := FromColumns(NewNumeric("a", []float64{1}))
	err := Save(tab, filepath.Join(dir, "out.csv"), SaveOptions{})
	if !errors.Is(err, ErrWritePermission) {
		t.Fatalf("err = %v, want ErrWritePermission", err)
	}
}
