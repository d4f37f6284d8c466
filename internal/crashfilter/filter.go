package crashfilter

import (
	"goCrashFilter/pkg/csvdb"
	"strings"
)

// Filter returns the rows of tbl whose column value contains query,
// ignoring case. Empty values never match. No match gives an empty table.
func Filter(tbl *csvdb.Table, column, query string) (*csvdb.Table, error) {
	idx := tbl.GetColIdx(column)
	if idx < 0 {
		return nil, &MissingColumnError{Column: column, Available: tbl.Columns()}
	}
	q := strings.ToLower(strings.TrimSpace(query))
	return tbl.Select(func(v []string) bool {
		val := strings.TrimSpace(v[idx])
		if val == "" {
			return false
		}
		return strings.Contains(strings.ToLower(val), q)
	}), nil
}

func FilterMunicipality(cfg *Config, tbl *csvdb.Table, municipality string) (*csvdb.Table, error) {
	return Filter(tbl, cfg.MunicipalityColumn, municipality)
}

// FilterRoadway expects the output of FilterMunicipality.
func FilterRoadway(cfg *Config, tbl *csvdb.Table, roadway string) (*csvdb.Table, error) {
	return Filter(tbl, cfg.RoadwayColumn, roadway)
}
