package diagnostics

import "fmt"

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

func (d Diagnostic) Error() string {
	if d.Detail == "" {
		return d.Code + ": " + d.Summary
	}
	return d.Code + ": " + d.Summary + ": " + d.Detail
}

// Codes for clips rejected while loading a project.
const (
	ClipUnknownEffect = "CLIP.UNKNOWN_EFFECT"
	ClipBadWindow     = "CLIP.BAD_WINDOW"
	ClipKeyframes     = "CLIP.KEYFRAMES"
	ClipUnknownZone   = "CLIP.UNKNOWN_ZONE"
	ClipAutomation    = "CLIP.AUTOMATION"
	ClipDuplicateID   = "CLIP.DUPLICATE_ID"
)

var clipFixes = map[string][]string{
	ClipUnknownEffect: {"Check the effect name against the catalog list (fxsim -list)."},
	ClipBadWindow:     {"Make endMs greater than startMs.", "Both values are milliseconds from show start."},
	ClipKeyframes:     {"Sort keyframes by t and remove duplicates.", "Keyframe times are relative to the clip start."},
	ClipUnknownZone:   {"Use a zone such as front-left, movers or all."},
	ClipAutomation:    {"Automation targets: dimmer white amber intensity hue saturation lightness pan tilt strobe composition."},
	ClipDuplicateID:   {"Give every clip a unique id."},
}

// Clip reports a clip that was skipped at load time.
func Clip(code string, index int, id, detail string) Diagnostic {
	label := id
	if label == "" {
		label = fmt.Sprintf("#%d", index)
	}
	return Diagnostic{
		Severity:       Err,
		Code:           code,
		Summary:        fmt.Sprintf("clip %s skipped", label),
		Detail:         detail,
		SuggestedFixes: clipFixes[code],
		Evidence:       map[string]any{"clip": id, "index": index},
	}
}
