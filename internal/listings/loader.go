package listings

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Options controls how a listings file is read.
type Options struct {
	// Sheet selects an XLSX worksheet by name. Empty means the first sheet.
	Sheet string
	// Delimiter for CSV. If 0, chosen from the file extension.
	Delimiter rune
}

// Raw is the listings table exactly as loaded, with normalized column names.
// Every column holds strings; missing markers are stored as NA.
type Raw struct {
	Name  string
	Frame dataframe.DataFrame
}

// Len returns the number of data rows.
func (r *Raw) Len() int { return r.Frame.Nrow() }

// reader turns a file into header-first records.
type reader interface {
	CanRead(path string) bool
	Read(path string, opt Options) ([][]string, error)
}

var readers = []reader{csvReader{}, xlsxReader{}}

// Load reads a listings file and validates its schema.
func Load(path string, opt Options) (*Raw, error) {
	for _, rd := range readers {
		if !rd.CanRead(path) {
			continue
		}
		records, err := rd.Read(path, opt)
		if err != nil {
			return nil, err
		}
		return FromRecords(filepath.Base(path), records)
	}
	return nil, fmt.Errorf("unsupported input format %q (use .csv, .tsv or .xlsx)", filepath.Ext(path))
}

// FromRecords builds a Raw table from header-first records.
func FromRecords(name string, records [][]string) (*Raw, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyDataset)
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = NormalizeName(h)
	}
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			return nil, fmt.Errorf("%w: %s has duplicate column %s", ErrSchema, name, h)
		}
		seen[h] = true
	}
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s is missing columns: %s", ErrSchema, name, strings.Join(missing, ", "))
	}
	rows := make([][]string, 0, len(records))
	rows = append(rows, header)
	for _, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}
		// pad short rows, drop trailing extras
		row := make([]string, len(header))
		copy(row, rec)
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}
		rows = append(rows, row)
	}
	if len(rows) == 1 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyDataset)
	}
	df := dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingTokens),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("load %s: %w", name, df.Err)
	}
	return &Raw{Name: name, Frame: df}, nil
}

func missingColumns(header []string) []string {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

type csvReader struct{}

func (csvReader) CanRead(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".csv" || ext == ".tsv"
}

func (csvReader) Read(path string, opt Options) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(f)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

type xlsxReader struct{}

func (xlsxReader) CanRead(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

func (xlsxReader) Read(path string, opt Options) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrEmptyDataset)
	}
	sheet := sheets[0]
	if opt.Sheet != "" {
		sheet = ""
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return nil, fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
				opt.Sheet, filepath.Base(path), strings.Join(sheets, ", "))
		}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, nil
}
