package crashfilter

import (
	"goCrashFilter/pkg/csvdb"
	"goCrashFilter/pkg/utils"
	"path/filepath"
	"testing"
)

const (
	testCSV2010 = `CITY_TOWN_NAME,RDWY
CAMBRIDGE,MEMORIAL DRIVE
BOSTON,STORROW DRIVE
Cambridge,HIGHLAND AVENUE / TOWER STREET
`
	testCSV2011 = `CITY_TOWN_NAME,RDWY,YEAR
CAMBRIDGE,Memorial Drive,2011
BOSTON,BEACON STREET,2011
cambridge,,2011
`
)

// initTestConfig creates <root>/csv with the given files and returns a
// config reading from it and writing to <root>/analyzed.
func initTestConfig(t *testing.T, files map[string]string) *Config {
	t.Helper()
	rootDir, err := utils.InitTestDir(t.Name())
	if err != nil {
		t.Fatalf("%v", err)
	}
	srcDir := filepath.Join(rootDir, "csv")
	if err := utils.EnsureDir(srcDir); err != nil {
		t.Fatalf("%v", err)
	}
	for name, content := range files {
		if _, err := utils.WriteTestFile(srcDir, name, content); err != nil {
			t.Fatalf("%v", err)
		}
	}
	cfg := NewConfig()
	cfg.SourceDir = srcDir
	cfg.OutputDir = filepath.Join(rootDir, "analyzed")
	return cfg
}

func tableRows(tb *csvdb.Table) [][]string {
	rows := make([][]string, tb.Len())
	for i := 0; i < tb.Len(); i++ {
		rows[i] = tb.Row(i)
	}
	return rows
}

func newTestTable(columns []string, rows ...[]interface{}) *csvdb.Table {
	tb := csvdb.NewTable("test", columns)
	for _, row := range rows {
		tb.AppendRow(nil, row...)
	}
	return tb
}
