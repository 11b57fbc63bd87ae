package sequence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/coreman2200/stagefx/internal/diagnostics"
	"github.com/coreman2200/stagefx/internal/effect"
	"github.com/coreman2200/stagefx/internal/effect/catalog"
)

const projectYAML = `
name: opener
seed: 7
clips:
  - id: wash
    startMs: 0
    endMs: 4000
    effect: lamp
    zones: [front, movers_left]
    keyframes:
      - {t: 0, v: 0, ease: ease-out}
      - {t: 500, v: 1}
    automation:
      hue:
        default: 30
  - id: broken
    startMs: 10
    endMs: 5
    effect: lamp
`

func TestLoadProjectYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.yaml")
	if err := os.WriteFile(path, []byte(projectYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadProject(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Name != "opener" || p.Seed != 7 || len(p.Clips) != 2 {
		t.Fatalf("project = %+v", p)
	}
	c := p.Clips[0]
	if len(c.Keyframes) != 2 || c.Keyframes[0].Ease != "ease-out" || c.Automation[AutoHue].Default != 30 {
		t.Fatalf("clip = %+v", c)
	}
	if p.End() != 4000 {
		t.Fatalf("end = %v", p.End())
	}

	diags := Check(p, testRegistry())
	if len(diags) != 1 || diags[0].Code != diagnostics.ClipBadWindow {
		t.Fatalf("diagnostics = %+v", diags)
	}
	if diags[0].Evidence["clip"] != "broken" {
		t.Fatalf("evidence = %+v", diags[0].Evidence)
	}
}

func TestLoadProjectJSON(t *testing.T) {
	p, err := ParseProject([]byte(`{"name":"j","seed":1,"clips":[{"id":"a","startMs":0,"endMs":10,"effect":"lamp"}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Clips[0].EndMs != 10 {
		t.Fatalf("clip = %+v", p.Clips[0])
	}
}

func TestLoadProjectErrors(t *testing.T) {
	if _, err := LoadProject(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist, got %v", err)
	}
	if _, err := ParseProject([]byte("name: empty\n")); !errors.Is(err, ErrEmptyProject) {
		t.Fatalf("expected empty project error, got %v", err)
	}
}

func TestSaveProjectRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	in := Project{Name: "x", Seed: 3, Clips: []Clip{{ID: "a", StartMs: 5, EndMs: 50, Effect: "lamp"}}}
	if err := SaveProject(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := LoadProject(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Clips[0].EndMs != 50 || out.Seed != 3 {
		t.Fatalf("round trip = %+v", out)
	}
}

func TestBundledDemoShowIsClean(t *testing.T) {
	p, err := LoadProject(filepath.Join("..", "..", "shows", "demo.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	reg := effect.NewRegistry()
	catalog.Register(reg)
	if diags := Check(p, reg); len(diags) != 0 {
		t.Fatalf("demo show has diagnostics: %+v", diags)
	}
	if len(p.Clips) != 5 || p.End() != 16000 {
		t.Fatalf("clips=%d end=%v", len(p.Clips), p.End())
	}
}
