package listings

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"
)

var labelColumns = []string{ColBorough, ColNeighbourhood, ColRoomType}

// Table is the cleaned listings table. It is immutable: accessors return copies.
type Table struct {
	frame      dataframe.DataFrame
	numeric    map[string][]float64
	labels     map[string][]string
	lastReview []time.Time
}

// NewTable builds a Table from a cleaned frame whose numeric columns are already typed.
func NewTable(df dataframe.DataFrame) (*Table, error) {
	t := &Table{
		frame:   df,
		numeric: make(map[string][]float64, len(floatColumns)+len(intColumns)),
		labels:  make(map[string][]string, len(labelColumns)),
	}
	if err := checkColumns(df); err != nil {
		return nil, err
	}
	for _, c := range append(slices.Clone(floatColumns), intColumns...) {
		t.numeric[c] = df.Col(c).Float()
	}
	for _, c := range labelColumns {
		t.labels[c] = df.Col(c).Records()
	}
	raw := df.Col(ColLastReview).Records()
	t.lastReview = make([]time.Time, len(raw))
	for i, v := range raw {
		d, ok := parseDate(v)
		if !ok {
			return nil, fmt.Errorf("parse %s: invalid date %q", ColLastReview, v)
		}
		t.lastReview[i] = d
	}
	return t, nil
}

// checkColumns fails unless every required column resolves in df.
func checkColumns(df dataframe.DataFrame) error {
	for _, c := range RequiredColumns {
		if err := df.Col(c).Err; err != nil {
			return fmt.Errorf("%w: column %s: %w", ErrSchema, c, err)
		}
	}
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.frame.Nrow() }

// Frame returns a copy of the underlying dataframe.
func (t *Table) Frame() dataframe.DataFrame { return t.frame.Copy() }

// Floats returns a numeric column, or nil if col is not numeric.
func (t *Table) Floats(col string) []float64 {
	return slices.Clone(t.numeric[col])
}

// Labels returns a categorical column, or nil if col is not categorical.
func (t *Table) Labels(col string) []string {
	return slices.Clone(t.labels[col])
}

// Prices returns the price column.
func (t *Table) Prices() []float64 { return t.Floats(ColPrice) }

// LastReviews returns the last_review column.
func (t *Table) LastReviews() []time.Time { return slices.Clone(t.lastReview) }

// Levels returns the distinct labels of a categorical column. For room_type
// the known room types come first.
func (t *Table) Levels(col string) []string {
	seen := map[string]bool{}
	var rest []string
	for _, v := range t.labels[col] {
		if !seen[v] {
			seen[v] = true
			rest = append(rest, v)
		}
	}
	sort.Strings(rest)
	if col != ColRoomType {
		return rest
	}
	var out []string
	for _, rt := range RoomTypes {
		if seen[rt] {
			out = append(out, rt)
		}
	}
	for _, v := range rest {
		if !slices.Contains(RoomTypes, v) {
			out = append(out, v)
		}
	}
	return out
}

// Where returns a view of the rows whose col equals label.
func (t *Table) Where(col, label string) View {
	v := View{Label: label, table: t}
	for i, l := range t.labels[col] {
		if l == label {
			v.rows = append(v.rows, i)
		}
	}
	return v
}

// RoomTypeSubsets partitions the table by room type.
func (t *Table) RoomTypeSubsets() []View {
	levels := t.Levels(ColRoomType)
	out := make([]View, 0, len(levels))
	for _, l := range levels {
		out = append(out, t.Where(ColRoomType, l))
	}
	return out
}

// WriteCSV writes the cleaned table as CSV.
func (t *Table) WriteCSV(w io.Writer) error {
	return t.frame.WriteCSV(w)
}

// View is a read-only selection of table rows.
type View struct {
	Label string
	table *Table
	rows  []int
}

// Len returns the number of rows in the view.
func (v View) Len() int { return len(v.rows) }

// Rows returns the table row indexes of the view.
func (v View) Rows() []int { return slices.Clone(v.rows) }

// Floats gathers a numeric column for the view's rows.
func (v View) Floats(col string) []float64 {
	if v.table == nil {
		return nil
	}
	src := v.table.numeric[col]
	if src == nil {
		return nil
	}
	out := make([]float64, len(v.rows))
	for i, r := range v.rows {
		out[i] = src[r]
	}
	return out
}

// Prices gathers the price column for the view's rows.
func (v View) Prices() []float64 { return v.Floats(ColPrice) }

var dateLayouts = []string{"2006-01-02", "2006/01/02", "1/2/2006", "01-02-06", time.RFC3339, "2006-01-02 15:04:05"}

func parseDate(s string) (time.Time, bool) {
	for _, l := range dateLayouts {
		if d, err := time.Parse(l, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
