package crashfilter

import (
	"bytes"
	"goCrashFilter/pkg/csvdb"
	"goCrashFilter/pkg/utils"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func runPipeline(t *testing.T, cfg *Config) (*Result, error) {
	t.Helper()
	p, err := NewPipeline(cfg)
	if err != nil {
		t.Fatalf("%v", err)
	}
	return p.Run()
}

func TestPipelineRun(t *testing.T) {
	cfg := initTestConfig(t, map[string]string{
		"2010.csv": testCSV2010,
		"2011.csv": testCSV2011,
	})

	res, err := runPipeline(t, cfg)
	if err != nil {
		t.Fatalf("%v", err)
	}

	if diff := cmp.Diff([]Stage{StageMerged, StageMunicipality, StageRoadway}, res.Computed); diff != "" {
		t.Errorf("computed stages mismatch (-want +got):\n%s", diff)
	}
	if err := utils.GetGotExpErr("cached stages", len(res.Cached), 0); err != nil {
		t.Errorf("%v", err)
	}

	merged, err := csvdb.ReadTable(ArtifactPath(cfg, StageMerged, cfg.Key()))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if diff := cmp.Diff([]string{"CITY_TOWN_NAME", "RDWY", "YEAR"}, merged.Columns()); diff != "" {
		t.Errorf("merged columns mismatch (-want +got):\n%s", diff)
	}
	if err := utils.GetGotExpErr("merged rows", merged.Len(), 6); err != nil {
		t.Errorf("%v", err)
	}
	for i := 0; i < 3; i++ {
		if err := utils.GetGotExpErr("YEAR of 2010 row", merged.Value(i, "YEAR"), ""); err != nil {
			t.Errorf("%v", err)
		}
	}

	if err := utils.GetGotExpErr("municipality rows", res.Municipality.Len(), 4); err != nil {
		t.Errorf("%v", err)
	}
	wantRoadway := [][]string{
		{"CAMBRIDGE", "MEMORIAL DRIVE", ""},
		{"CAMBRIDGE", "Memorial Drive", "2011"},
	}
	roadway, err := csvdb.ReadTable(ArtifactPath(cfg, StageRoadway, cfg.Key()))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if diff := cmp.Diff(wantRoadway, tableRows(roadway)); diff != "" {
		t.Errorf("roadway rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantRoadway, tableRows(res.Roadway)); diff != "" {
		t.Errorf("in-memory roadway rows mismatch (-want +got):\n%s", diff)
	}

	catalog, err := OpenCatalog(cfg)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if err := utils.GetGotExpErr("catalog entries", len(catalog.Entries()), 3); err != nil {
		t.Errorf("%v", err)
	}
	e, ok := catalog.Get("filtered_massDOT_data_CAMBRIDGE__MEMORIAL_DRIVE")
	if !ok {
		t.Fatalf("roadway artifact missing from catalog")
	}
	if err := utils.GetGotExpErr("catalog rows", e.Rows, 2); err != nil {
		t.Errorf("%v", err)
	}
	if err := utils.GetGotExpErr("catalog stage", e.Labels["stage"], "roadway"); err != nil {
		t.Errorf("%v", err)
	}
}

func TestPipelineRerun(t *testing.T) {
	cfg := initTestConfig(t, map[string]string{
		"2010.csv": testCSV2010,
		"2011.csv": testCSV2011,
	})
	if _, err := runPipeline(t, cfg); err != nil {
		t.Fatalf("%v", err)
	}
	roadwayPath := ArtifactPath(cfg, StageRoadway, cfg.Key())
	municipalityPath := ArtifactPath(cfg, StageMunicipality, cfg.Key())

	// the final artifact is never overwritten
	if err := os.WriteFile(roadwayPath, []byte("sentinel\n"), 0644); err != nil {
		t.Fatalf("%v", err)
	}
	res, err := runPipeline(t, cfg)
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
	if err := utils.GetGotExpErr("computed", len(res.Computed), 0); err != nil {
		t.Errorf("%v", err)
	}
	b, err := os.ReadFile(roadwayPath)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !bytes.Equal(b, []byte("sentinel\n")) {
		t.Errorf("roadway artifact was overwritten: %q", b)
	}

	// an unreadable source file would fail any new merge
	if _, err := utils.WriteTestFile(cfg.SourceDir, "2012.csv", "CITY_TOWN_NAME\n\"broken\n"); err != nil {
		t.Fatalf("%v", err)
	}

	if err := os.Remove(roadwayPath); err != nil {
		t.Fatalf("%v", err)
	}
	res, err = runPipeline(t, cfg)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if diff := cmp.Diff([]Stage{StageMunicipality}, res.Cached); diff != "" {
		t.Errorf("cached stages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Stage{StageRoadway}, res.Computed); diff != "" {
		t.Errorf("computed stages mismatch (-want +got):\n%s", diff)
	}
	if res.Merged != nil {
		t.Errorf("merged table should not be loaded when the municipality artifact exists")
	}
	if err := utils.GetGotExpErr("roadway rows", res.Roadway.Len(), 2); err != nil {
		t.Errorf("%v", err)
	}

	for _, p := range []string{roadwayPath, municipalityPath} {
		if err := os.Remove(p); err != nil {
			t.Fatalf("%v", err)
		}
	}
	res, err = runPipeline(t, cfg)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if diff := cmp.Diff([]Stage{StageMerged}, res.Cached); diff != "" {
		t.Errorf("cached stages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Stage{StageMunicipality, StageRoadway}, res.Computed); diff != "" {
		t.Errorf("computed stages mismatch (-want +got):\n%s", diff)
	}
	if err := utils.GetGotExpErr("merged rows", res.Merged.Len(), 6); err != nil {
		t.Errorf("%v", err)
	}
}

func TestPipelineCaseInsensitiveKey(t *testing.T) {
	cfg := initTestConfig(t, map[string]string{"2011.csv": testCSV2011})
	if _, err := runPipeline(t, cfg); err != nil {
		t.Fatalf("%v", err)
	}

	cfg.Municipality = "cambridge"
	cfg.Roadway = "MEMORIAL drive"
	_, err := runPipeline(t, cfg)
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed for the same key in another case, got %v", err)
	}
}

func TestPipelineKeysDoNotShareArtifacts(t *testing.T) {
	cfg := initTestConfig(t, map[string]string{
		"2010.csv": "CITY_TOWN_NAME,RDWY\nCAMBRIDGE,MEMORIAL DRIVE\nCAMBRIDGE MEMORIAL DRIVE,ELM\n",
	})
	if _, err := runPipeline(t, cfg); err != nil {
		t.Fatalf("%v", err)
	}

	cfg.Municipality = "Cambridge Memorial Drive"
	cfg.Roadway = "Elm"
	res, err := runPipeline(t, cfg)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if diff := cmp.Diff([]Stage{StageMerged}, res.Cached); diff != "" {
		t.Errorf("cached stages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Stage{StageMunicipality, StageRoadway}, res.Computed); diff != "" {
		t.Errorf("computed stages mismatch (-want +got):\n%s", diff)
	}
	want := [][]string{{"CAMBRIDGE MEMORIAL DRIVE", "ELM"}}
	if diff := cmp.Diff(want, tableRows(res.Roadway)); diff != "" {
		t.Errorf("roadway rows mismatch (-want +got):\n%s", diff)
	}
}

func TestPipelineEmptyResult(t *testing.T) {
	cfg := initTestConfig(t, map[string]string{
		"2010.csv": testCSV2010,
		"2011.csv": testCSV2011,
	})
	cfg.Roadway = "Storrow"

	res, err := runPipeline(t, cfg)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if err := utils.GetGotExpErr("roadway rows", res.Roadway.Len(), 0); err != nil {
		t.Errorf("%v", err)
	}
	tb, err := csvdb.ReadTable(ArtifactPath(cfg, StageRoadway, cfg.Key()))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if err := utils.GetGotExpErr("artifact rows", tb.Len(), 0); err != nil {
		t.Errorf("%v", err)
	}
	if diff := cmp.Diff([]string{"CITY_TOWN_NAME", "RDWY", "YEAR"}, tb.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	cfg.Municipality = "Worcester"
	cfg.Roadway = "Main Street"
	res, err = runPipeline(t, cfg)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if err := utils.GetGotExpErr("municipality rows", res.Municipality.Len(), 0); err != nil {
		t.Errorf("%v", err)
	}
	if !ArtifactExists(ArtifactPath(cfg, StageRoadway, cfg.Key())) {
		t.Errorf("empty roadway artifact was not written")
	}
}

func TestPipelineErrors(t *testing.T) {
	t.Run("source read failure", func(t *testing.T) {
		cfg := initTestConfig(t, map[string]string{
			"2010.csv": testCSV2010,
			"2011.csv": "CITY_TOWN_NAME,RDWY\nCAMBRIDGE,\"MASS AVE\n",
		})
		_, err := runPipeline(t, cfg)
		var sre *SourceReadError
		if !errors.As(err, &sre) {
			t.Fatalf("expected SourceReadError, got %v", err)
		}
		if err := utils.GetGotExpErr("failed file", filepath.Base(sre.Path), "2011.csv"); err != nil {
			t.Errorf("%v", err)
		}
		if ArtifactExists(ArtifactPath(cfg, StageMerged, cfg.Key())) {
			t.Errorf("merged artifact written after a failed merge")
		}
	})

	t.Run("missing roadway column", func(t *testing.T) {
		cfg := initTestConfig(t, map[string]string{
			"2010.csv": "CITY_TOWN_NAME,YEAR\nCAMBRIDGE,2010\n",
		})
		_, err := runPipeline(t, cfg)
		var mce *MissingColumnError
		if !errors.As(err, &mce) {
			t.Fatalf("expected MissingColumnError, got %v", err)
		}
		if err := utils.GetGotExpErr("column", mce.Column, "RDWY"); err != nil {
			t.Errorf("%v", err)
		}
		for _, stage := range []Stage{StageMunicipality, StageRoadway} {
			if ArtifactExists(ArtifactPath(cfg, stage, cfg.Key())) {
				t.Errorf("%s artifact written without a roadway column", stage)
			}
		}
		catalog, err := OpenCatalog(cfg)
		if err != nil {
			t.Fatalf("%v", err)
		}
		if _, ok := catalog.Get(artifactName(cfg, ArtifactPath(cfg, StageMunicipality, cfg.Key()))); ok {
			t.Errorf("municipality artifact cataloged without a roadway column")
		}
	})

	t.Run("missing municipality column", func(t *testing.T) {
		cfg := initTestConfig(t, map[string]string{
			"2010.csv": "TOWN,RDWY\nCAMBRIDGE,MEMORIAL DRIVE\n",
		})
		_, err := runPipeline(t, cfg)
		var mce *MissingColumnError
		if !errors.As(err, &mce) {
			t.Fatalf("expected MissingColumnError, got %v", err)
		}
		if err := utils.GetGotExpErr("column", mce.Column, "CITY_TOWN_NAME"); err != nil {
			t.Errorf("%v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Municipality = ""
		if _, err := NewPipeline(cfg); err == nil {
			t.Errorf("expected an error for an empty municipality")
		}
	})
}

func TestPipelineFanOut(t *testing.T) {
	cfg := initTestConfig(t, map[string]string{
		"2010.csv": "CITY_TOWN_NAME,RDWY\nCambridge,MEMORIAL DRIVE\nBOSTON,STORROW DRIVE\n,MASS PIKE\n",
		"2011.csv": "CITY_TOWN_NAME,RDWY,YEAR\nCAMBRIDGE,MASS AVE,2011\nBoston,BEACON STREET,2011\ncambridge,BROADWAY,2011\n",
	})
	cfg.FanOut = true

	res, err := runPipeline(t, cfg)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if res.Roadway != nil || res.Municipality != nil {
		t.Errorf("fan-out must not run the single municipality or roadway stages")
	}

	dir := filepath.Join(cfg.OutputDir, cfg.FanOutDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("%v", err)
	}
	names := make([]string, 0)
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if diff := cmp.Diff([]string{"BOSTON.csv", "CAMBRIDGE.csv"}, names); diff != "" {
		t.Errorf("fan-out files mismatch (-want +got):\n%s", diff)
	}

	for name, wantRows := range map[string]int{"Cambridge": 3, "BOSTON": 2} {
		tb, err := csvdb.ReadTable(ArtifactPath(cfg, StageFanOut, FilterKey{Municipality: name}))
		if err != nil {
			t.Fatalf("%v", err)
		}
		if err := utils.GetGotExpErr(name+" rows", tb.Len(), wantRows); err != nil {
			t.Errorf("%v", err)
		}
		for i := 0; i < tb.Len(); i++ {
			v := tb.Value(i, cfg.MunicipalityColumn)
			if !strings.Contains(strings.ToUpper(v), strings.ToUpper(name)) {
				t.Errorf("%s file holds a row of %s", name, v)
			}
		}
		if _, ok := res.FanOut[name]; !ok {
			t.Errorf("%s missing from the result", name)
		}
	}

	// the merged artifact is reused by a second fan-out
	res, err = runPipeline(t, cfg)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if diff := cmp.Diff([]Stage{StageMerged}, res.Cached); diff != "" {
		t.Errorf("cached stages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Stage{StageFanOut}, res.Computed); diff != "" {
		t.Errorf("computed stages mismatch (-want +got):\n%s", diff)
	}
}
