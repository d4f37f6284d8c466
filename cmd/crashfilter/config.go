package main

import (
	"goCrashFilter/internal/crashfilter"
	"os"
	"regexp"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var envPlaceholderRe = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

/*
*
---
sourceDir: csv
outputDir: analyzed
municipality: CAMBRIDGE
roadway: Memorial Drive
municipalityColumn: CITY_TOWN_NAME
roadwayColumn: RDWY
bulk: false
bulkDir: municipalities
*
*/
type fileConfig struct {
	SourceDir          string `yaml:"sourceDir"`
	OutputDir          string `yaml:"outputDir"`
	Municipality       string `yaml:"municipality"`
	Roadway            string `yaml:"roadway"`
	MunicipalityColumn string `yaml:"municipalityColumn"`
	RoadwayColumn      string `yaml:"roadwayColumn"`
	FanOut             *bool  `yaml:"bulk"`
	FanOutDir          string `yaml:"bulkDir"`
}

// loadConfig reads a yaml config file. {{ VAR }} placeholders are replaced
// with the environment variable VAR before parsing.
func loadConfig(path string) (*fileConfig, error) {
	logrus.WithField("path", path).Info("Loading configuration")

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	content := envPlaceholderRe.ReplaceAllStringFunc(string(b), func(placeholder string) string {
		varName := envPlaceholderRe.FindStringSubmatch(placeholder)[1]
		return os.Getenv(varName)
	})

	c := new(fileConfig)
	if err := yaml.Unmarshal([]byte(content), c); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return c, nil
}

func (fc *fileConfig) apply(cfg *crashfilter.Config) {
	if fc.SourceDir != "" {
		cfg.SourceDir = fc.SourceDir
	}
	if fc.OutputDir != "" {
		cfg.OutputDir = fc.OutputDir
	}
	if fc.Municipality != "" {
		cfg.Municipality = fc.Municipality
	}
	if fc.Roadway != "" {
		cfg.Roadway = fc.Roadway
	}
	if fc.MunicipalityColumn != "" {
		cfg.MunicipalityColumn = fc.MunicipalityColumn
	}
	if fc.RoadwayColumn != "" {
		cfg.RoadwayColumn = fc.RoadwayColumn
	}
	if fc.FanOut != nil {
		cfg.FanOut = *fc.FanOut
	}
	if fc.FanOutDir != "" {
		cfg.FanOutDir = fc.FanOutDir
	}
}

// buildConfig resolves every setting as: flag given on the command line,
// then positional argument, then config file, then default.
func buildConfig(cmd *cobra.Command, args []string, opts *options) (*crashfilter.Config, error) {
	cfg := crashfilter.NewConfig()

	if opts.configPath != "" {
		fc, err := loadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		fc.apply(cfg)
	}

	positional := []*string{&cfg.SourceDir, &cfg.Municipality, &cfg.Roadway}
	for i, arg := range args {
		if i < len(positional) {
			*positional[i] = arg
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.SourceDir = opts.sourceDir
	}
	if flags.Changed("out") {
		cfg.OutputDir = opts.outputDir
	}
	if flags.Changed("city") {
		cfg.Municipality = opts.municipality
	}
	if flags.Changed("roadway") {
		cfg.Roadway = opts.roadway
	}
	if flags.Changed("city-column") {
		cfg.MunicipalityColumn = opts.municipalityColumn
	}
	if flags.Changed("roadway-column") {
		cfg.RoadwayColumn = opts.roadwayColumn
	}
	if flags.Changed("bulk") {
		cfg.FanOut = opts.fanOut
	}
	if flags.Changed("bulk-dir") {
		cfg.FanOutDir = opts.fanOutDir
	}
	return cfg, nil
}
