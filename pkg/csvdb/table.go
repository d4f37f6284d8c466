package csvdb

import (
	"fmt"
	"goCrashFilter/pkg/utils"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Table is an in-memory csv table: an ordered list of column names and
// rows of string values. Every row has exactly len(columns) values.
type Table struct {
	name    string
	columns []string
	colMap  map[string]int
	rows    [][]string
}

func NewTable(name string, columns []string) *Table {
	t := new(Table)
	t.name = name
	t.columns = make([]string, 0, len(columns))
	t.colMap = make(map[string]int, len(columns))
	t.rows = make([][]string, 0)
	for _, col := range columns {
		t.addColumn(col)
	}
	return t
}

func (t *Table) addColumn(col string) bool {
	if _, ok := t.colMap[col]; ok {
		return false
	}
	t.colMap[col] = len(t.columns)
	t.columns = append(t.columns, col)
	return true
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) SetName(name string) {
	t.name = name
}

func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the i-th row. The slice is shared with the table.
func (t *Table) Row(i int) []string {
	return t.rows[i]
}

func (t *Table) GetColIdx(colName string) int {
	i, ok := t.colMap[colName]
	if ok {
		return i
	}
	return -1
}

func (t *Table) HasColumn(colName string) bool {
	return t.GetColIdx(colName) >= 0
}

// Value returns the value of column colName in row i, or "" when the
// column is unknown.
func (t *Table) Value(i int, colName string) string {
	j := t.GetColIdx(colName)
	if j < 0 {
		return ""
	}
	return t.rows[i][j]
}

func (t *Table) appendValues(values []string) {
	row := make([]string, len(t.columns))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// AppendRow adds one row. With columns == nil args must cover every column
// in order, otherwise args are matched to columns and the rest stay empty.
func (t *Table) AppendRow(columns []string, args ...interface{}) error {
	if columns == nil && len(args) != len(t.columns) {
		return errors.New("len of args do not match to table columns")
	}
	if columns != nil && len(columns) != len(args) {
		return errors.New("len of columns and args do not match")
	}

	row := make([]string, len(t.columns))
	if columns == nil {
		for i, v := range args {
			row[i] = asString(v)
		}
	} else {
		for i, col := range columns {
			j, ok := t.colMap[col]
			if !ok {
				return errors.New(fmt.Sprintf("column %s does not exist", col))
			}
			row[j] = asString(args[i])
		}
	}
	t.rows = append(t.rows, row)
	return nil
}

// Concat appends the rows of other. Columns of other that t does not have
// are added at the end in other's order, and every row lacking a column
// gets an empty value for it.
func (t *Table) Concat(other *Table) {
	added := 0
	for _, col := range other.columns {
		if t.addColumn(col) {
			added++
		}
	}
	if added > 0 {
		for i, row := range t.rows {
			wider := make([]string, len(t.columns))
			copy(wider, row)
			t.rows[i] = wider
		}
	}

	idxs := make([]int, len(other.columns))
	for i, col := range other.columns {
		idxs[i] = t.colMap[col]
	}
	for _, orow := range other.rows {
		row := make([]string, len(t.columns))
		for i, v := range orow {
			row[idxs[i]] = v
		}
		t.rows = append(t.rows, row)
	}
}

// Select returns a new table with the same columns holding the rows for
// which conditionCheckFunc returns true. A nil func selects every row.
// Rows are shared with t.
func (t *Table) Select(conditionCheckFunc func([]string) bool) *Table {
	s := NewTable(t.name, t.columns)
	for _, row := range t.rows {
		if conditionCheckFunc == nil || conditionCheckFunc(row) {
			s.rows = append(s.rows, row)
		}
	}
	return s
}

func (t *Table) Count(conditionCheckFunc func([]string) bool) int {
	if conditionCheckFunc == nil {
		return len(t.rows)
	}
	cnt := 0
	for _, row := range t.rows {
		if conditionCheckFunc(row) {
			cnt++
		}
	}
	return cnt
}

// Distinct returns the distinct non-empty values of column in order of
// first appearance. Values are compared by keyFunc(value) when keyFunc is
// not nil, and the first spelling seen is kept.
func (t *Table) Distinct(column string, keyFunc func(string) string) ([]string, error) {
	idx, ok := t.colMap[column]
	if !ok {
		return nil, errors.New(fmt.Sprintf("Column %s does not exist", column))
	}
	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, row := range t.rows {
		v := row[idx]
		if strings.TrimSpace(v) == "" {
			continue
		}
		k := v
		if keyFunc != nil {
			k = keyFunc(v)
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		values = append(values, v)
	}
	return values, nil
}

// Save writes the header and every row to path, replacing any existing
// file. The parent directory is created when missing.
func (t *Table) Save(path string) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	writer, err := newWriter(path)
	if err != nil {
		return err
	}
	if err := writer.write(t.columns); err != nil {
		writer.close()
		return errors.WithStack(err)
	}
	for _, row := range t.rows {
		if err := writer.write(row); err != nil {
			writer.close()
			return errors.WithStack(err)
		}
	}
	if err := writer.flush(); err != nil {
		writer.close()
		return err
	}
	return writer.close()
}

func tableNameFromPath(path string) string {
	base := filepath.Base(path)
	for _, ext := range []string{".gzip", ".gz", ".csv"} {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			base = base[:len(base)-len(ext)]
		}
	}
	return base
}

// uniqueColumns renames repeated header names to NAME.1, NAME.2 ...
func uniqueColumns(header []string) []string {
	used := make(map[string]bool, len(header))
	cols := make([]string, len(header))
	for i, col := range header {
		name := col
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", col, n)
		}
		used[name] = true
		cols[i] = name
	}
	return cols
}
