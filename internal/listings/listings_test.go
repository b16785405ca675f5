package listings

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

const header = "id,name,neighbourhood_group,neighbourhood,latitude,longitude,room_type,price,minimum_nights,number_of_reviews,last_review,availability_365"

var fixtureRows = []string{
	"1,Loft,Manhattan,Harlem,40.8116,-73.9465,Entire home/apt,100,2,10,2019-05-01,120",
	"2,Studio,Manhattan,Midtown,40.7549,-73.9840,Entire home/apt,120,3,5,2019-06-15,200",
	"3,Room,Manhattan,East Village,40.7265,-73.9815,Private room,110,1,30,2019-06-20,60",
	"4,Room,Brooklyn,Williamsburg,40.7081,-73.9571,Private room,60,2,45,2019-07-01,30",
	"5,Room,Brooklyn,Bushwick,40.6944,-73.9213,Private room,70,1,20,2019-03-10,90",
	"6,Couch,Brooklyn,Bedford-Stuyvesant,40.6872,-73.9418,Shared room,65,1,8,2019-02-14,300",
	"7,House,Queens,Astoria,40.7644,-73.9235,Entire home/apt,80,5,3,2019-01-05,250",
	"8,Room,Queens,Flushing,40.7675,-73.8331,Private room,90,2,12,2019-04-22,180",
	"9,Bunk,Queens,Jamaica,40.7027,-73.7890,Shared room,75,1,25,2019-05-30,45",
	"10,Apt,Bronx,Fordham,40.8615,-73.8977,Entire home/apt,85,3,15,2019-06-01,150",
}

func csvText(rows ...string) string {
	return header + "\n" + strings.Join(rows, "\n") + "\n"
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func loadAndClean(t *testing.T, content string) (*Table, CleanStats) {
	t.Helper()
	raw, err := Load(writeFile(t, "listings.csv", content), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tbl, st, err := NewCleaner(DefaultCleanOptions(), nil).Clean(raw)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	return tbl, st
}

func TestNormalizeName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Neighbourhood Group", "neighbourhood_group"},
		{"  PRICE ", "price"},
		{"minimum-nights", "minimum_nights"},
		{"availability.365", "availability_365"},
		{"\ufeffid", "id"},
		{"Borough", "neighbourhood_group"},
		{"number  of   reviews", "number_of_reviews"},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadCSVNormalizesHeader(t *testing.T) {
	content := "ID,Name,Borough,Neighbourhood,Latitude,Longitude,Room Type,Price,Minimum Nights,Number of Reviews,Last Review,Availability 365\n" +
		strings.Join(fixtureRows[:3], "\n") + "\n"
	raw, err := Load(writeFile(t, "listings.csv", content), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if raw.Len() != 3 {
		t.Fatalf("rows = %d, want 3", raw.Len())
	}
	names := strings.Join(raw.Frame.Names(), ",")
	if !strings.Contains(names, "neighbourhood_group") || !strings.Contains(names, "availability_365") {
		t.Fatalf("unexpected columns: %s", names)
	}
	if raw.Name != "listings.csv" {
		t.Fatalf("name = %q", raw.Name)
	}
}

func TestLoadTSV(t *testing.T) {
	content := strings.ReplaceAll(csvText(fixtureRows[:2]...), ",", "\t")
	raw, err := Load(writeFile(t, "listings.tsv", content), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if raw.Len() != 2 || raw.Frame.Ncol() != 12 {
		t.Fatalf("shape = %dx%d, want 2x12", raw.Len(), raw.Frame.Ncol())
	}
}

func TestLoadMissingColumns(t *testing.T) {
	path := writeFile(t, "bad.csv", "id,price,room_type\n1,100,Private room\n")
	_, err := Load(path, Options{})
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("err = %v, want ErrSchema", err)
	}
	for _, col := range []string{ColBorough, ColMinNights, ColAvailability} {
		if !strings.Contains(err.Error(), col) {
			t.Errorf("error %q does not name %s", err, col)
		}
	}
}

func TestLoadDuplicateColumns(t *testing.T) {
	tests := []struct {
		name   string
		header string
		dup    string
	}{
		{"alias", strings.Replace(header, "id,name,", "id,borough,", 1), ColBorough},
		{"case", strings.Replace(header, "id,name,", "id,Price,", 1), ColPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := [][]string{strings.Split(tt.header, ","), strings.Split(fixtureRows[0], ",")}
			_, err := FromRecords("dup.csv", records)
			if !errors.Is(err, ErrSchema) {
				t.Fatalf("err = %v, want ErrSchema", err)
			}
			if !strings.Contains(err.Error(), "duplicate column "+tt.dup) {
				t.Fatalf("error %q does not name %s", err, tt.dup)
			}
		})
	}
}

func TestCleanRejectsFrameWithoutColumns(t *testing.T) {
	raw := &Raw{Name: "partial", Frame: dataframe.LoadRecords([][]string{{"price"}, {"100"}})}
	if _, _, err := NewCleaner(DefaultCleanOptions(), nil).Clean(raw); !errors.Is(err, ErrSchema) {
		t.Fatalf("err = %v, want ErrSchema", err)
	}
}

func TestLoadEmptyAndUnsupported(t *testing.T) {
	if _, err := Load(writeFile(t, "empty.csv", header+"\n"), Options{}); !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("header only: err = %v, want ErrEmptyDataset", err)
	}
	if _, err := Load(writeFile(t, "empty.csv", ""), Options{}); !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("no bytes: err = %v, want ErrEmptyDataset", err)
	}
	if _, err := Load(writeFile(t, "listings.json", "[]"), Options{}); err == nil {
		t.Fatal("expected error for .json input")
	}
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := "Listings"
	if _, err := f.NewSheet(sheet); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	rows := append([]string{header}, fixtureRows[:4]...)
	for i, line := range rows {
		cells := strings.Split(line, ",")
		vals := make([]interface{}, len(cells))
		for j, c := range cells {
			vals[j] = c
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "listings.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	_ = f.Close()

	raw, err := Load(path, Options{Sheet: "listings"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if raw.Len() != 4 {
		t.Fatalf("rows = %d, want 4", raw.Len())
	}
	if _, err := Load(path, Options{Sheet: "Missing"}); err == nil || !strings.Contains(err.Error(), "Available sheets") {
		t.Fatalf("err = %v, want sheet not found", err)
	}
	// the default sheet is empty
	if _, err := Load(path, Options{}); !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("first sheet: err = %v, want ErrEmptyDataset", err)
	}
}

func TestCleanFilterSteps(t *testing.T) {
	rows := append([]string{}, fixtureRows...)
	rows = append(rows,
		"11,Free,Manhattan,Harlem,40.81,-73.94,Private room,0,1,2,2019-01-01,100",
		"12,Closed,Brooklyn,Bushwick,40.69,-73.92,Private room,70,1,2,2019-01-01,0",
		"13,Long,Queens,Astoria,40.76,-73.92,Entire home/apt,90,400,2,2019-01-01,100",
		"14,Blank,Bronx,Fordham,40.86,-73.89,Private room,80,1,2,,100",
		"15,Null,Bronx,Fordham,40.86,-73.89,NA,80,1,2,2019-01-01,100",
	)
	tbl, st := loadAndClean(t, csvText(rows...))
	want := CleanStats{Raw: 15, AfterMissing: 13, AfterPrice: 12, AfterAvailability: 11, AfterMinNights: 10, Cleaned: 10}
	got := st
	got.PriceMean, got.PriceSD, got.LowerBound, got.UpperBound = 0, 0, 0, 0
	if got != want {
		t.Fatalf("stats = %+v, want %+v", got, want)
	}
	if st.Dropped() != 5 || tbl.Len() != 10 {
		t.Fatalf("dropped %d, len %d", st.Dropped(), tbl.Len())
	}
	if d := st.PriceMean - 85.5; d > 1e-9 || d < -1e-9 {
		t.Fatalf("price mean = %v, want 85.5", st.PriceMean)
	}
	for _, p := range tbl.Prices() {
		if p <= 0 || p < st.LowerBound || p > st.UpperBound {
			t.Fatalf("price %v outside (0, [%v, %v])", p, st.LowerBound, st.UpperBound)
		}
	}
	for _, a := range tbl.Floats(ColAvailability) {
		if a <= 0 {
			t.Fatalf("availability %v survived", a)
		}
	}
	for _, n := range tbl.Floats(ColMinNights) {
		if n > 365 {
			t.Fatalf("minimum_nights %v survived", n)
		}
	}
}

func TestCleanDropsPriceOutliers(t *testing.T) {
	rows := append(append([]string{}, fixtureRows...),
		"11,Penthouse,Manhattan,Midtown,40.75,-73.98,Entire home/apt,1000,2,1,2019-06-01,100")
	tbl, st := loadAndClean(t, csvText(rows...))
	if st.AfterMinNights != 11 || st.Cleaned != 10 {
		t.Fatalf("stats = %+v, want 11 before and 10 after the outlier pass", st)
	}
	for _, p := range tbl.Prices() {
		if p == 1000 {
			t.Fatal("outlier survived")
		}
	}
	// single pass: bounds come from the 11-row set
	if st.PriceMean < 168 || st.PriceMean > 169 {
		t.Fatalf("mean used for bounds = %v, want about 168.6", st.PriceMean)
	}
}

func TestCleanErrors(t *testing.T) {
	cleaner := NewCleaner(DefaultCleanOptions(), nil)
	tests := []struct {
		name string
		rows []string
		want error
	}{
		{"non-numeric price", []string{"1,Loft,Manhattan,Harlem,40.81,-73.94,Private room,cheap,1,2,2019-01-01,100"}, ErrNonNumeric},
		{"fractional nights", []string{"1,Loft,Manhattan,Harlem,40.81,-73.94,Private room,90,1.5,2,2019-01-01,100"}, ErrNonNumeric},
		{"all missing", []string{"1,Loft,Manhattan,Harlem,40.81,-73.94,Private room,90,1,2,,100"}, ErrEmptyDataset},
		{"all free", []string{"1,Loft,Manhattan,Harlem,40.81,-73.94,Private room,0,1,2,2019-01-01,100"}, ErrEmptyDataset},
		{"never available", []string{"1,Loft,Manhattan,Harlem,40.81,-73.94,Private room,90,1,2,2019-01-01,0"}, ErrEmptyDataset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Load(writeFile(t, "listings.csv", csvText(tt.rows...)), Options{})
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if _, _, err := cleaner.Clean(raw); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCleanNonNumericNamesRow(t *testing.T) {
	rows := []string{
		fixtureRows[0],
		"7,Loft,Manhattan,Harlem,40.81,-73.94,Private room,90,1,2,2019-01-01,soon",
	}
	raw, err := Load(writeFile(t, "listings.csv", csvText(rows...)), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, _, err = NewCleaner(DefaultCleanOptions(), nil).Clean(raw)
	if !errors.Is(err, ErrNonNumeric) {
		t.Fatalf("err = %v, want ErrNonNumeric", err)
	}
	for _, want := range []string{ColAvailability, "row 2", "id 7", `"soon"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestCleanInvalidDate(t *testing.T) {
	raw, err := Load(writeFile(t, "listings.csv", csvText("1,Loft,Manhattan,Harlem,40.81,-73.94,Private room,90,1,2,last spring,100")), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, _, err := NewCleaner(DefaultCleanOptions(), nil).Clean(raw); err == nil || !strings.Contains(err.Error(), "last_review") {
		t.Fatalf("err = %v, want date error", err)
	}
}

func TestCleanSingleRowKeepsIt(t *testing.T) {
	tbl, st := loadAndClean(t, csvText(fixtureRows[0]))
	if tbl.Len() != 1 || st.PriceSD != 0 {
		t.Fatalf("len %d sd %v, want 1 row and zero spread", tbl.Len(), st.PriceSD)
	}
}

func TestRoomTypeSubsetsPartition(t *testing.T) {
	rows := append(append([]string{}, fixtureRows...),
		"11,Suite,Queens,Astoria,40.76,-73.92,Hotel room,85,1,4,2019-02-01,100")
	tbl, _ := loadAndClean(t, csvText(rows...))
	subsets := tbl.RoomTypeSubsets()
	labels := make([]string, len(subsets))
	seen := map[int]bool{}
	total := 0
	for i, v := range subsets {
		labels[i] = v.Label
		total += v.Len()
		for _, r := range v.Rows() {
			if seen[r] {
				t.Fatalf("row %d in more than one subset", r)
			}
			seen[r] = true
		}
	}
	if got := strings.Join(labels, "|"); got != "Entire home/apt|Private room|Shared room|Hotel room" {
		t.Fatalf("levels = %s", got)
	}
	if total != tbl.Len() {
		t.Fatalf("subset sizes sum to %d, want %d", total, tbl.Len())
	}
	if n := subsets[0].Len(); n != 4 {
		t.Fatalf("entire home subset = %d, want 4", n)
	}
	if got := fmt.Sprint(subsets[2].Prices()); got != "[65 75]" {
		t.Fatalf("shared room prices = %s", got)
	}
}

func TestTableAccessorsReturnCopies(t *testing.T) {
	tbl, _ := loadAndClean(t, csvText(fixtureRows...))
	p := tbl.Prices()
	p[0] = -1
	if tbl.Prices()[0] == -1 {
		t.Fatal("Prices exposed internal storage")
	}
	l := tbl.Labels(ColBorough)
	l[0] = "Mars"
	if tbl.Labels(ColBorough)[0] == "Mars" {
		t.Fatal("Labels exposed internal storage")
	}
	if got := tbl.LastReviews()[3].Format("2006-01-02"); got != "2019-07-01" {
		t.Fatalf("last_review[3] = %s", got)
	}
	if v := tbl.Where(ColBorough, "Staten Island"); v.Len() != 0 || len(v.Prices()) != 0 {
		t.Fatalf("empty view = %d rows", v.Len())
	}
}

func TestWriteCSV(t *testing.T) {
	tbl, _ := loadAndClean(t, csvText(fixtureRows...))
	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 11 || len(records[0]) != 12 {
		t.Fatalf("shape = %dx%d, want 11x12", len(records), len(records[0]))
	}
	if records[0][2] != ColBorough {
		t.Fatalf("header = %v", records[0])
	}
}
