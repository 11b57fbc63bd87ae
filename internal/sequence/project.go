package sequence

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/stagefx/internal/diagnostics"
	"github.com/coreman2200/stagefx/internal/effect"
	"github.com/coreman2200/stagefx/internal/zone"
)

var ErrEmptyProject = errors.New("project has no clips")

// LoadProject reads a YAML (or JSON) project file.
func LoadProject(path string) (Project, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("read project: %w", err)
	}
	return ParseProject(b)
}

func ParseProject(b []byte) (Project, error) {
	var p Project
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Project{}, fmt.Errorf("parse project: %w", err)
	}
	if len(p.Clips) == 0 {
		return p, ErrEmptyProject
	}
	return p, nil
}

// SaveProject writes p as YAML.
func SaveProject(path string, p Project) error {
	b, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// loadedClip is a validated clip plus its position in the project file.
type loadedClip struct {
	Clip
	index int
}

// Check validates every clip of p against reg without loading it.
func Check(p Project, reg *effect.Registry) []diagnostics.Diagnostic {
	_, diags := validate(p, reg)
	return diags
}

// validate keeps the usable clips and reports one diagnostic per rejected
// clip. Kept clips get a default id and intensity.
func validate(p Project, reg *effect.Registry) ([]loadedClip, []diagnostics.Diagnostic) {
	var (
		kept  []loadedClip
		diags []diagnostics.Diagnostic
		seen  = map[string]bool{}
	)
	for i, c := range p.Clips {
		if c.ID == "" {
			c.ID = fmt.Sprintf("clip-%d", i)
		}
		if code, detail := checkClip(&c, reg); code != "" {
			diags = append(diags, diagnostics.Clip(code, i, c.ID, detail))
			continue
		}
		if seen[c.ID] {
			diags = append(diags, diagnostics.Clip(diagnostics.ClipDuplicateID, i, c.ID, "id already used by an earlier clip"))
			continue
		}
		seen[c.ID] = true
		if c.Intensity <= 0 || math.IsNaN(c.Intensity) {
			c.Intensity = 1
		}
		c.Intensity = math.Min(c.Intensity, 1)
		kept = append(kept, loadedClip{Clip: c, index: i})
	}
	return kept, diags
}

func checkClip(c *Clip, reg *effect.Registry) (code, detail string) {
	if !reg.Has(c.Effect) {
		return diagnostics.ClipUnknownEffect, fmt.Sprintf("%v: %q", effect.ErrUnknownEffect, c.Effect)
	}
	if !finite(c.StartMs) || !finite(c.EndMs) || c.EndMs <= c.StartMs {
		return diagnostics.ClipBadWindow, fmt.Sprintf("window [%v, %v) is empty", c.StartMs, c.EndMs)
	}
	if err := checkKeys(c.Keyframes); err != nil {
		return diagnostics.ClipKeyframes, err.Error()
	}
	if _, err := zone.ParseAll(c.Zones); err != nil {
		return diagnostics.ClipUnknownZone, err.Error()
	}
	targets := make([]string, 0, len(c.Automation))
	for t := range c.Automation {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	for _, t := range targets {
		if !automationTargets[t] {
			return diagnostics.ClipAutomation, fmt.Sprintf("unknown target %q", t)
		}
		if err := checkKeys(c.Automation[t].Points); err != nil {
			return diagnostics.ClipAutomation, fmt.Sprintf("%s: %v", t, err)
		}
	}
	return "", ""
}

func checkKeys(keys []Keyframe) error {
	for i, k := range keys {
		if !finite(k.T) || !finite(k.V) {
			return fmt.Errorf("keyframe %d is not a number", i)
		}
		if i > 0 && k.T <= keys[i-1].T {
			return fmt.Errorf("keyframe %d at t=%v does not follow t=%v", i, k.T, keys[i-1].T)
		}
	}
	return nil
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
