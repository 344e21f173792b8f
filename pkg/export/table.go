package export

import "fmt"

// Column describes one exported field. Weight scales the PDF column width
// relative to its siblings; zero means 1.
type Column struct {
	Key    string
	Title  string
	Weight float64
}

// Table is the tabular content shared by every renderer.
type Table struct {
	Title    string
	Subtitle string
	Columns  []Column
	Rows     []map[string]string
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("export requires at least one column")
	}
	return nil
}

func (t Table) record(row map[string]string) []string {
	out := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		out[i] = row[col.Key]
	}
	return out
}

func (t Table) titles() []string {
	out := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		out[i] = col.Title
		if out[i] == "" {
			out[i] = col.Key
		}
	}
	return out
}
