package sheet

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	data := []byte("regdno,name,tc,tg,sgpa,e1,i1,t1,cr1,gp1\n" +
		"Y20ACS001,Anand,20,160,8,80,20,100,4,8\n" +
		"\n" +
		"Y20ACS002,Bala,20,150,7.5,75,18,93,4,7\n")

	rows, err := Parse("results.csv", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (blank row skipped)", len(rows))
	}
	if rows[0]["regdno"] != "Y20ACS001" {
		t.Errorf("regdno = %v", rows[0]["regdno"])
	}
	if rows[1]["sgpa"] != "7.5" {
		t.Errorf("sgpa = %v", rows[1]["sgpa"])
	}
}

func TestParseCSVHeaderNormalized(t *testing.T) {
	data := []byte(" RegdNo , Name ,TC\nY20ACS001,Anand,20\n")

	rows, err := Parse("results.csv", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rows[0]["regdno"] != "Y20ACS001" || rows[0]["name"] != "Anand" || rows[0]["tc"] != "20" {
		t.Errorf("header keys not normalized: %v", rows[0])
	}
}

func TestParseCSVLeadingBlankRows(t *testing.T) {
	data := []byte("\n\nregdno,name,tc\nY20ACS001,Anand,20\n")

	rows, err := Parse("results.csv", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
}

func TestParseCSVRaggedRow(t *testing.T) {
	// Short rows leave trailing columns absent rather than failing
	data := []byte("regdno,name,tc\nY20ACS001,Anand\n")

	rows, err := Parse("results.csv", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := rows[0]["tc"]; ok {
		t.Errorf("tc should be absent on a short row, got %v", rows[0]["tc"])
	}
}

func TestParseEmpty(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "no bytes", data: nil},
		{name: "only blank rows", data: []byte("\n\n")},
		{name: "header only", data: []byte("regdno,name,tc\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("results.csv", tt.data)
			if !errors.Is(err, ErrEmptyFile) {
				t.Errorf("err = %v, want ErrEmptyFile", err)
			}
		})
	}
}

func TestParseInvalidUTF8(t *testing.T) {
	data := []byte("regdno,name,tc\nY20ACS001,An\x80nd,20\n")

	rows, err := Parse("results.csv", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rows[0]["name"] != "An�nd" {
		t.Errorf("name = %q, want replacement character substitution", rows[0]["name"])
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	header := []any{"regdno", "name", "tc", "sgpa"}
	row := []any{"Y20ACS001", "Anand", 20, 8.25}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &row); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	rows, err := Parse("results.xlsx", buf.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0]["regdno"] != "Y20ACS001" {
		t.Errorf("regdno = %v", rows[0]["regdno"])
	}
	if rows[0]["tc"] != "20" {
		t.Errorf("tc = %v, want string \"20\" (cells stay raw)", rows[0]["tc"])
	}
}

func TestParseXLSXGarbage(t *testing.T) {
	if _, err := Parse("results.xlsx", []byte("not a zip archive")); err == nil {
		t.Fatal("garbage xlsx should fail to parse")
	}
}
