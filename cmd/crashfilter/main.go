// crashfilter merges MassDOT crash exports and filters them by municipality
// and roadway, keeping every intermediate csv as a cache.
//
// Usage:
//
//	crashfilter [dir [city [roadway]]] [-d dir] [-o out] [--city name] [--roadway name]
//	crashfilter --bulk [-d dir] [-o out]
//	crashfilter catalog [-o out]
package main

import (
	"fmt"
	"goCrashFilter/internal/crashfilter"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	debug      bool
	silent     bool

	sourceDir          string
	outputDir          string
	municipality       string
	roadway            string
	municipalityColumn string
	roadwayColumn      string
	fanOut             bool
	fanOutDir          string
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "crashfilter [dir [city [roadway]]]",
		Short: "Merge MassDOT crash exports and filter them by municipality and roadway",
		Long: `crashfilter merges every csv export found in a directory, keeps the
crashes of one municipality and then of one roadway in it. Every stage
is written under the output directory and reused on the next run.
With --bulk one file per municipality is written instead.`,
		Args:          cobra.MaximumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), opts.debug, opts.silent)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd, args, opts)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Path to the configuration file")
	pf.BoolVar(&opts.debug, "debug", false, "Enable debug mode")
	pf.BoolVar(&opts.silent, "silent", false, "Enable silent mode")
	pf.StringVarP(&opts.outputDir, "out", "o", crashfilter.CDefaultOutputDir, "Directory for merged and filtered files")

	f := rootCmd.Flags()
	f.StringVarP(&opts.sourceDir, "dir", "d", crashfilter.CDefaultSourceDir, "Directory holding the crash csv exports")
	f.StringVar(&opts.municipality, "city", crashfilter.CDefaultMunicipality, "Municipality to keep")
	f.StringVar(&opts.roadway, "roadway", crashfilter.CDefaultRoadway, "Roadway to keep within the municipality")
	f.StringVar(&opts.municipalityColumn, "city-column", crashfilter.CDefaultMunicipalityColumn, "Municipality column name")
	f.StringVar(&opts.roadwayColumn, "roadway-column", crashfilter.CDefaultRoadwayColumn, "Roadway column name")
	f.BoolVar(&opts.fanOut, "bulk", false, "Write one file per municipality instead of filtering")
	f.StringVar(&opts.fanOutDir, "bulk-dir", crashfilter.CDefaultFanOutDir, "Sub directory of --out for --bulk files")

	rootCmd.AddCommand(newCatalogCmd(opts))
	return rootCmd
}

func setupLogging(w io.Writer, debug, silent bool) {
	logrus.SetOutput(w)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else if silent {
		logrus.SetLevel(logrus.ErrorLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

func runFilter(cmd *cobra.Command, args []string, opts *options) error {
	cfg, err := buildConfig(cmd, args, opts)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"dir":          cfg.SourceDir,
		"out":          cfg.OutputDir,
		"municipality": cfg.Municipality,
		"roadway":      cfg.Roadway,
		"bulk":         cfg.FanOut,
	}).Info("Starting crashfilter")

	p, err := crashfilter.NewPipeline(cfg)
	if err != nil {
		return err
	}
	res, err := p.Run()
	if errors.Is(err, crashfilter.ErrAlreadyProcessed) {
		logrus.WithError(err).Warn("Already processed, remove the file to run again")
		return nil
	}
	if err != nil {
		return err
	}
	for _, path := range res.Written {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}

func execute(args []string, out io.Writer) error {
	rootCmd := newRootCmd(new(options))
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	return rootCmd.Execute()
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 1024)
			n := runtime.Stack(buf, false)
			logrus.WithFields(logrus.Fields{
				"panic": r,
				"stack": string(buf[:n]),
			}).Error("A panic occurred")
			os.Exit(2)
		}
	}()

	if err := execute(os.Args[1:], os.Stdout); err != nil {
		logrus.WithError(err).Fatal("Application encountered an error")
	}

	logrus.Info("Application finished successfully")
}
