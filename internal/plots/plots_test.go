package plots

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/bnbeda/internal/analysis"
	"github.com/KaramelBytes/bnbeda/internal/listings"
)

const listingsCSV = `neighbourhood_group,neighbourhood,latitude,longitude,room_type,price,minimum_nights,number_of_reviews,last_review,availability_365
Manhattan,Harlem,40.8116,-73.9465,Entire home/apt,100,2,10,2019-05-01,120
Manhattan,Midtown,40.7549,-73.9840,Entire home/apt,120,3,5,2019-06-15,200
Manhattan,East Village,40.7265,-73.9815,Private room,110,1,30,2019-06-20,60
Brooklyn,Williamsburg,40.7081,-73.9571,Private room,60,2,45,2019-07-01,30
Brooklyn,Bushwick,40.6944,-73.9213,Private room,70,1,20,2019-03-10,90
Brooklyn,Bedford-Stuyvesant,40.6872,-73.9418,Shared room,65,1,8,2019-02-14,300
Queens,Astoria,40.7644,-73.9235,Entire home/apt,80,5,3,2019-01-05,250
Queens,Flushing,40.7675,-73.8331,Private room,90,2,12,2019-04-22,180
Queens,Jamaica,40.7027,-73.7890,Shared room,75,1,25,2019-05-30,45
Bronx,Fordham,40.8615,-73.8977,Entire home/apt,85,3,15,2019-06-01,150
`

func buildGallery(t *testing.T, csv string) (*Gallery, *listings.Table) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listings.csv")
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	raw, err := listings.Load(path, listings.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tbl, _, err := listings.NewCleaner(listings.DefaultCleanOptions(), nil).Clean(raw)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	f, err := analysis.RunQuestions(tbl, analysis.DefaultBenchmark)
	if err != nil {
		t.Fatalf("RunQuestions: %v", err)
	}
	g, err := Build(tbl, f, Options{Bins: 5})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g, tbl
}

func TestBuildOrderAndNames(t *testing.T) {
	g, _ := buildGallery(t, listingsCSV)
	figs := g.Figures()
	if len(figs) != len(Names) || len(Names) != 15 {
		t.Fatalf("figures = %d, want 15", len(figs))
	}
	for i, f := range figs {
		if f.Name != Names[i] {
			t.Fatalf("figure %d = %s, want %s", i, f.Name, Names[i])
		}
		if f.Plot == nil || f.Plot.Title.Text == "" {
			t.Fatalf("%s has no title", f.Name)
		}
	}
	if title := figs[len(figs)-1].Plot.Title.Text; !strings.Contains(title, "F = 1.37") {
		t.Fatalf("anova title = %q", title)
	}
}

func TestBuildWithoutSharedRooms(t *testing.T) {
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(listingsCSV), "\n") {
		if !strings.Contains(l, listings.SharedRoom) {
			lines = append(lines, l)
		}
	}
	g, _ := buildGallery(t, strings.Join(lines, "\n")+"\n")
	var shared string
	for _, f := range g.Figures() {
		if f.Name == SharedRoomPriceHistogram {
			shared = f.Plot.Title.Text
		}
	}
	if !strings.Contains(shared, "no listings") {
		t.Fatalf("shared room histogram title = %q", shared)
	}
}

func TestExportDefaultsAndFormats(t *testing.T) {
	g, _ := buildGallery(t, listingsCSV)
	dir := t.TempDir()
	files, err := Export(dir, g, Options{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(files) != 15 || files[0] != BoroughCounts+"."+DefaultOptions().Format {
		t.Fatalf("files = %v", files)
	}
	if _, err := Export(dir, g, Options{Format: "gif"}); err == nil || !strings.Contains(err.Error(), "gif") {
		t.Fatalf("err = %v, want unsupported format", err)
	}
}

func TestExportWritesFiles(t *testing.T) {
	g, _ := buildGallery(t, listingsCSV)
	dir := filepath.Join(t.TempDir(), "nested", "plots")
	for _, format := range []string{"png", "svg"} {
		files, err := Export(dir, g, Options{WidthIn: 4, HeightIn: 3, Format: format})
		if err != nil {
			t.Fatalf("Export %s: %v", format, err)
		}
		if len(files) != 15 {
			t.Fatalf("%s: wrote %d files", format, len(files))
		}
		for _, name := range files {
			if filepath.Ext(name) != "."+format {
				t.Fatalf("file %s has wrong extension", name)
			}
			fi, err := os.Stat(filepath.Join(dir, name))
			if err != nil || fi.Size() == 0 {
				t.Fatalf("%s not written: %v", name, err)
			}
		}
	}
}
