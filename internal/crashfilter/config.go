package crashfilter

import (
	"goCrashFilter/pkg/utils"
	"path/filepath"

	"github.com/pkg/errors"
)

// Config holds every parameter of one run.
type Config struct {
	SourceDir          string
	OutputDir          string
	Municipality       string
	Roadway            string
	MunicipalityColumn string
	RoadwayColumn      string
	FanOut             bool
	FanOutDir          string
}

func NewConfig() *Config {
	return &Config{
		SourceDir:          CDefaultSourceDir,
		OutputDir:          CDefaultOutputDir,
		Municipality:       CDefaultMunicipality,
		Roadway:            CDefaultRoadway,
		MunicipalityColumn: CDefaultMunicipalityColumn,
		RoadwayColumn:      CDefaultRoadwayColumn,
		FanOutDir:          CDefaultFanOutDir,
	}
}

func (c *Config) Key() FilterKey {
	return FilterKey{Municipality: c.Municipality, Roadway: c.Roadway}
}

func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return errors.New("source directory is not set")
	}
	if c.OutputDir == "" {
		return errors.New("output directory is not set")
	}
	if filepath.Clean(c.SourceDir) == filepath.Clean(c.OutputDir) {
		return errors.Errorf("output directory %s must differ from the source directory", c.OutputDir)
	}
	if c.MunicipalityColumn == "" {
		return errors.New("municipality column is not set")
	}
	if c.FanOut {
		if utils.SanitizeName(c.FanOutDir) == "" {
			return errors.Errorf("fan-out directory %q is not usable", c.FanOutDir)
		}
		return nil
	}
	if c.RoadwayColumn == "" {
		return errors.New("roadway column is not set")
	}
	if utils.SanitizeName(c.Municipality) == "" {
		return errors.Errorf("municipality %q has no letters or digits", c.Municipality)
	}
	if utils.SanitizeName(c.Roadway) == "" {
		return errors.Errorf("roadway %q has no letters or digits", c.Roadway)
	}
	return nil
}
