package crashfilter

import (
	"goCrashFilter/pkg/csvdb"
	"goCrashFilter/pkg/utils"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// MergeDir reads every csv file directly inside dir, in file name order,
// and concatenates them into one table. The columns are the union of all
// file columns in order of first appearance. Any unreadable file fails the
// whole merge. MergeDir writes nothing; the pipeline saves the result as
// the merged artifact.
func MergeDir(dir string) (*csvdb.Table, error) {
	if !utils.PathExist(dir) {
		return nil, &SourceReadError{Path: dir, Err: errors.New("directory does not exist")}
	}
	files, err := utils.GlobFiles(dir, cSourcePatterns...)
	if err != nil {
		return nil, &SourceReadError{Path: dir, Err: err}
	}
	if len(files) == 0 {
		return nil, &SourceReadError{Path: dir, Err: errors.New("no csv files found")}
	}

	merged := csvdb.NewTable(cMergedArtifactName, nil)
	for _, f := range files {
		t, err := csvdb.ReadTable(f)
		if err != nil {
			return nil, &SourceReadError{Path: f, Err: err}
		}
		logrus.WithFields(logrus.Fields{
			"file":    f,
			"rows":    t.Len(),
			"columns": len(t.Columns()),
		}).Info("Read source file")
		merged.Concat(t)
	}

	logrus.WithFields(logrus.Fields{
		"files":   len(files),
		"rows":    merged.Len(),
		"columns": len(merged.Columns()),
	}).Info("Merged source files")
	return merged, nil
}
