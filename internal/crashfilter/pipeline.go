package crashfilter

import (
	"fmt"
	"goCrashFilter/pkg/csvdb"
	"goCrashFilter/pkg/utils"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type State int

const (
	StateNeedMerge State = iota
	StateHaveMerge
	StateNeedMunicipalityFilter
	StateHaveMunicipalityFilter
	StateNeedRoadwayFilter
	StateFanOut
	StateDone
)

func (s State) String() string {
	switch s {
	case StateNeedMerge:
		return "NeedMerge"
	case StateHaveMerge:
		return "HaveMerge"
	case StateNeedMunicipalityFilter:
		return "NeedMunicipalityFilter"
	case StateHaveMunicipalityFilter:
		return "HaveMunicipalityFilter"
	case StateNeedRoadwayFilter:
		return "NeedRoadwayFilter"
	case StateFanOut:
		return "FanOut"
	case StateDone:
		return "Done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result is what one run produced or loaded.
type Result struct {
	Merged       *csvdb.Table
	Municipality *csvdb.Table
	Roadway      *csvdb.Table
	// fan-out tables keyed by municipality value
	FanOut map[string]*csvdb.Table

	Cached   []Stage
	Computed []Stage
	Written  []string
}

// Pipeline runs merge -> municipality filter -> roadway filter, reusing
// any artifact already on disk, or the fan-out over every municipality.
type Pipeline struct {
	cfg     *Config
	key     FilterKey
	catalog *csvdb.Catalog
	res     *Result
}

func NewPipeline(cfg *Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := new(Pipeline)
	p.cfg = cfg
	p.key = cfg.Key()
	return p, nil
}

func (p *Pipeline) Run() (*Result, error) {
	p.res = &Result{FanOut: make(map[string]*csvdb.Table)}

	if !p.cfg.FanOut {
		path := ArtifactPath(p.cfg, StageRoadway, p.key)
		if ArtifactExists(path) {
			logrus.WithField("path", path).Warn("Roadway artifact exists, nothing to do")
			return p.res, errors.Wrapf(ErrAlreadyProcessed, "%s", path)
		}
	}

	catalog, err := OpenCatalog(p.cfg)
	if err != nil {
		return p.res, err
	}
	p.catalog = catalog

	state := StateNeedMerge
	for state != StateDone {
		logrus.WithField("state", state).Debug("Pipeline step")
		next, err := p.step(state)
		if err != nil {
			return p.res, err
		}
		state = next
	}
	return p.res, nil
}

func (p *Pipeline) step(state State) (State, error) {
	switch state {
	case StateNeedMerge:
		return p.needMerge()
	case StateHaveMerge:
		return p.haveMerge()
	case StateNeedMunicipalityFilter:
		return p.needMunicipalityFilter()
	case StateHaveMunicipalityFilter:
		return p.haveMunicipalityFilter()
	case StateNeedRoadwayFilter:
		return p.needRoadwayFilter()
	case StateFanOut:
		return p.fanOut()
	}
	return StateDone, errors.Errorf("unknown pipeline state %v", state)
}

func (p *Pipeline) needMerge() (State, error) {
	if !p.cfg.FanOut && ArtifactExists(ArtifactPath(p.cfg, StageMunicipality, p.key)) {
		// the municipality table is read back directly
		logrus.Info("Municipality artifact exists, skipping merge")
		return StateNeedMunicipalityFilter, nil
	}

	path := ArtifactPath(p.cfg, StageMerged, p.key)
	if ArtifactExists(path) {
		t, err := p.readArtifact(StageMerged, path)
		if err != nil {
			return StateDone, err
		}
		p.res.Merged = t
		return StateHaveMerge, nil
	}

	t, err := MergeDir(p.cfg.SourceDir)
	if err != nil {
		return StateDone, err
	}
	if err := p.writeArtifact(StageMerged, path, t, nil); err != nil {
		return StateDone, err
	}
	p.res.Merged = t
	p.res.Computed = append(p.res.Computed, StageMerged)
	return StateHaveMerge, nil
}

// haveMerge checks the filter columns before any filtered artifact is
// written.
func (p *Pipeline) haveMerge() (State, error) {
	t := p.res.Merged
	values, err := t.Distinct(p.cfg.MunicipalityColumn, utils.SanitizeName)
	if err != nil {
		return StateDone, &MissingColumnError{Column: p.cfg.MunicipalityColumn, Available: t.Columns()}
	}
	if !p.cfg.FanOut && !t.HasColumn(p.cfg.RoadwayColumn) {
		return StateDone, &MissingColumnError{Column: p.cfg.RoadwayColumn, Available: t.Columns()}
	}
	idx := t.GetColIdx(p.cfg.MunicipalityColumn)
	blank := t.Count(func(v []string) bool {
		return strings.TrimSpace(v[idx]) == ""
	})
	logrus.WithFields(logrus.Fields{
		"rows":           t.Len(),
		"columns":        len(t.Columns()),
		"municipalities": len(values),
		"unnamed":        blank,
	}).Info("Merged table ready")

	if p.cfg.FanOut {
		return StateFanOut, nil
	}
	return StateNeedMunicipalityFilter, nil
}

func (p *Pipeline) needMunicipalityFilter() (State, error) {
	path := ArtifactPath(p.cfg, StageMunicipality, p.key)
	if ArtifactExists(path) {
		t, err := p.readArtifact(StageMunicipality, path)
		if err != nil {
			return StateDone, err
		}
		p.res.Municipality = t
		return StateHaveMunicipalityFilter, nil
	}

	t, err := FilterMunicipality(p.cfg, p.res.Merged, p.key.Municipality)
	if err != nil {
		return StateDone, err
	}
	if err := p.writeArtifact(StageMunicipality, path, t, map[string]string{
		"municipality": p.key.Municipality,
	}); err != nil {
		return StateDone, err
	}
	p.res.Municipality = t
	p.res.Computed = append(p.res.Computed, StageMunicipality)
	return StateHaveMunicipalityFilter, nil
}

func (p *Pipeline) haveMunicipalityFilter() (State, error) {
	t := p.res.Municipality
	fields := logrus.Fields{
		"municipality": p.key.Municipality,
		"rows":         t.Len(),
	}
	if roadways, err := t.Distinct(p.cfg.RoadwayColumn, utils.SanitizeName); err == nil {
		fields["roadways"] = len(roadways)
	}
	if t.Len() == 0 {
		logrus.WithFields(fields).Warn("No crashes matched the municipality")
	} else {
		logrus.WithFields(fields).Info("Municipality table ready")
	}
	return StateNeedRoadwayFilter, nil
}

func (p *Pipeline) needRoadwayFilter() (State, error) {
	t, err := FilterRoadway(p.cfg, p.res.Municipality, p.key.Roadway)
	if err != nil {
		return StateDone, err
	}
	path := ArtifactPath(p.cfg, StageRoadway, p.key)
	if err := p.writeArtifact(StageRoadway, path, t, map[string]string{
		"municipality": p.key.Municipality,
		"roadway":      p.key.Roadway,
	}); err != nil {
		return StateDone, err
	}
	p.res.Roadway = t
	p.res.Computed = append(p.res.Computed, StageRoadway)

	fields := logrus.Fields{
		"municipality": p.key.Municipality,
		"roadway":      p.key.Roadway,
		"rows":         t.Len(),
	}
	if t.Len() == 0 {
		logrus.WithFields(fields).Warn("No crashes matched the roadway")
	} else {
		logrus.WithFields(fields).Info("Roadway table ready")
	}
	return StateDone, nil
}

// fanOut writes one municipality artifact per distinct municipality value.
// Values are told apart by their artifact name, so spellings that only
// differ in case or punctuation share one file.
func (p *Pipeline) fanOut() (State, error) {
	merged := p.res.Merged
	values, err := merged.Distinct(p.cfg.MunicipalityColumn, utils.SanitizeName)
	if err != nil {
		return StateDone, &MissingColumnError{Column: p.cfg.MunicipalityColumn, Available: merged.Columns()}
	}
	dir := filepath.Join(p.cfg.OutputDir, p.cfg.FanOutDir)
	if err := utils.EnsureDir(dir); err != nil {
		return StateDone, err
	}

	for _, v := range values {
		key := FilterKey{Municipality: v}
		if utils.SanitizeName(v) == "" {
			logrus.WithField("municipality", v).Warn("Skipping municipality without a usable file name")
			continue
		}
		t, err := FilterMunicipality(p.cfg, merged, v)
		if err != nil {
			return StateDone, err
		}
		path := ArtifactPath(p.cfg, StageFanOut, key)
		if err := p.writeArtifact(StageFanOut, path, t, map[string]string{
			"municipality": v,
		}); err != nil {
			return StateDone, err
		}
		p.res.FanOut[v] = t
		logrus.WithFields(logrus.Fields{
			"municipality": v,
			"rows":         t.Len(),
		}).Debug("Wrote municipality file")
	}
	p.res.Computed = append(p.res.Computed, StageFanOut)

	logrus.WithFields(logrus.Fields{
		"dir":            dir,
		"municipalities": len(p.res.FanOut),
	}).Info("Fan-out finished")
	return StateDone, nil
}

func (p *Pipeline) readArtifact(stage Stage, path string) (*csvdb.Table, error) {
	t, err := csvdb.ReadTable(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading cached %s artifact", stage)
	}
	p.res.Cached = append(p.res.Cached, stage)
	logrus.WithFields(logrus.Fields{
		"stage":   stage.String(),
		"path":    path,
		"rows":    t.Len(),
		"columns": len(t.Columns()),
	}).Info("Using cached artifact")
	return t, nil
}

func (p *Pipeline) writeArtifact(stage Stage, path string,
	t *csvdb.Table, labels map[string]string) error {
	if err := t.Save(path); err != nil {
		return err
	}
	p.res.Written = append(p.res.Written, path)

	name := artifactName(p.cfg, path)
	t.SetName(name)
	l := map[string]string{"stage": stage.String()}
	for k, v := range labels {
		l[k] = v
	}
	p.catalog.Register(path, t, l)
	if err := p.catalog.Save(); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"stage": stage.String(),
		"path":  path,
		"rows":  t.Len(),
	}).Info("Wrote artifact")
	return nil
}
