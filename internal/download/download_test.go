package download

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tealeg/xlsx/v3"

	"github.com/evmarket/analytics-console/internal/model"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		format model.ExportFormat
		want   string
	}{
		{model.ExportPDF, "report-7.pdf"},
		{model.ExportExcel, "report-7.xlsx"},
		{model.ExportCSV, "report-7.csv"},
	}
	for _, tt := range tests {
		got, err := Filename(7, tt.format)
		if err != nil {
			t.Fatalf("Filename(%s) failed: %v", tt.format, err)
		}
		if got != tt.want {
			t.Errorf("expected %s, got %s", tt.want, got)
		}
	}

	if _, err := Filename(7, "docx"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestDirSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	d := NewDir(dir)

	path, err := d.Save("report-7.csv", []byte("a,b\n1,2\n"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if path != filepath.Join(dir, "report-7.csv") {
		t.Errorf("unexpected path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(data) != "a,b\n1,2\n" {
		t.Errorf("unexpected content %q", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected no temp files left behind, got %d entries", len(entries))
	}
}

func TestDirSaveRejectsPaths(t *testing.T) {
	d := NewDir(t.TempDir())
	if _, err := d.Save("../escape.csv", []byte("x")); err == nil {
		t.Error("expected error for a name containing a path")
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	m.Save("report-1.pdf", []byte("%PDF"))

	data, ok := m.File("report-1.pdf")
	if !ok || string(data) != "%PDF" {
		t.Errorf("unexpected file %q (found=%v)", data, ok)
	}
	if names := m.Names(); len(names) != 1 || names[0] != "report-1.pdf" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestInspectExcel(t *testing.T) {
	f := xlsx.NewFile()
	sh, err := f.AddSheet("Battery Health")
	if err != nil {
		t.Fatalf("AddSheet failed: %v", err)
	}
	header := sh.AddRow()
	header.AddCell().SetString("vehicle")
	header.AddCell().SetString("soh")
	row := sh.AddRow()
	row.AddCell().SetString("EV-1")
	row.AddCell().SetFloat(0.93)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("writing workbook: %v", err)
	}

	sheets, err := InspectExcel(buf.Bytes())
	if err != nil {
		t.Fatalf("InspectExcel failed: %v", err)
	}
	if len(sheets) != 1 {
		t.Fatalf("expected 1 sheet, got %d", len(sheets))
	}
	s := sheets[0]
	if s.Name != "Battery Health" || s.Rows != 2 || s.Columns != 2 {
		t.Errorf("unexpected summary %+v", s)
	}
	if len(s.Header) != 2 || s.Header[0] != "vehicle" || s.Header[1] != "soh" {
		t.Errorf("unexpected header %v", s.Header)
	}
}

func TestInspectExcelGarbage(t *testing.T) {
	if _, err := InspectExcel([]byte("not a workbook")); err == nil {
		t.Error("expected error for invalid workbook")
	}
}
