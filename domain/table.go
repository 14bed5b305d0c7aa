package domain

// Table is the uniform tabular view of a result section used by exporters.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}
