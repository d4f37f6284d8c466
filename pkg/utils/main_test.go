package utils

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cambridge", "CAMBRIDGE"},
		{"Memorial Drive", "MEMORIAL_DRIVE"},
		{"HIGHLAND AVENUE / TOWER STREET", "HIGHLAND_AVENUE_TOWER_STREET"},
		{" ../etc/passwd ", "ETC_PASSWD"},
		{"Route 2A", "ROUTE_2A"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if err := GetGotExpErr("sanitized", SanitizeName(tt.in), tt.want); err != nil {
				t.Errorf("%v", err)
			}
		})
	}
}

func TestGlobFiles(t *testing.T) {
	dir, err := InitTestDir("TestGlobFiles")
	if err != nil {
		t.Fatalf("%v", err)
	}
	for _, name := range []string{"2012.csv", "2010.csv", "2011.csv.gz", "notes.txt"} {
		if _, err := WriteTestFile(dir, name, "a\n1\n"); err != nil {
			t.Fatalf("%v", err)
		}
	}
	if err := EnsureDir(filepath.Join(dir, "nested.csv")); err != nil {
		t.Fatalf("%v", err)
	}

	got, err := GlobFiles(dir, "*.csv", "*.csv.gz")
	if err != nil {
		t.Fatalf("%v", err)
	}
	want := []string{
		filepath.Join(dir, "2010.csv"),
		filepath.Join(dir, "2011.csv.gz"),
		filepath.Join(dir, "2012.csv"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GlobFiles mismatch (-want +got):\n%s", diff)
	}
}
