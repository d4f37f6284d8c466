package crashfilter

import (
	"fmt"
	"goCrashFilter/pkg/csvdb"
	"goCrashFilter/pkg/utils"
	"path/filepath"
	"strings"
)

type Stage int

const (
	StageMerged Stage = iota
	StageMunicipality
	StageRoadway
	StageFanOut
)

func (s Stage) String() string {
	switch s {
	case StageMerged:
		return "merged"
	case StageMunicipality:
		return "municipality"
	case StageRoadway:
		return "roadway"
	case StageFanOut:
		return "fanout"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// FilterKey is the (municipality, roadway) pair a run filters on.
type FilterKey struct {
	Municipality string
	Roadway      string
}

// ArtifactPath is where stage writes its table for key, and where the
// cache probe looks for it.
//
//	merged:       <out>/merged_massDOT_impact_data.csv
//	municipality: <out>/filtered_massDOT_data_<CITY>.csv
//	roadway:      <out>/filtered_massDOT_data_<CITY>__<ROADWAY>.csv
//	fanout:       <out>/<fanOutDir>/<CITY>.csv
//
// SanitizeName never yields "__", so a roadway name cannot be mistaken for
// the municipality name of another key.
func ArtifactPath(cfg *Config, stage Stage, key FilterKey) string {
	city := utils.SanitizeName(key.Municipality)
	var name string
	switch stage {
	case StageMerged:
		name = cMergedArtifactName
	case StageMunicipality:
		name = fmt.Sprintf("%s_%s", cFilteredArtifactName, city)
	case StageRoadway:
		name = fmt.Sprintf("%s_%s__%s", cFilteredArtifactName, city,
			utils.SanitizeName(key.Roadway))
	case StageFanOut:
		return filepath.Join(cfg.OutputDir, cfg.FanOutDir, city+cArtifactExt)
	}
	return filepath.Join(cfg.OutputDir, name+cArtifactExt)
}

// ArtifactExists trusts any file at path as a valid artifact.
func ArtifactExists(path string) bool {
	return utils.PathExist(path)
}

// OpenCatalog opens the catalog of artifacts written under cfg.OutputDir.
func OpenCatalog(cfg *Config) (*csvdb.Catalog, error) {
	return csvdb.OpenCatalog(cfg.OutputDir, cCatalogName)
}

// artifactName is the artifact path relative to the output directory,
// without extension. It names the artifact in the catalog.
func artifactName(cfg *Config, path string) string {
	rel, err := filepath.Rel(cfg.OutputDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return strings.TrimSuffix(filepath.ToSlash(rel), cArtifactExt)
}
