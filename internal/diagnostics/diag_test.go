package diagnostics

import (
	"strings"
	"testing"
)

func TestClip(t *testing.T) {
	d := Clip(ClipBadWindow, 3, "", "endMs 100 <= startMs 200")
	if d.Severity != Err || d.Code != ClipBadWindow {
		t.Fatalf("unexpected %+v", d)
	}
	if d.Summary != "clip #3 skipped" {
		t.Fatalf("summary = %q", d.Summary)
	}
	if len(d.SuggestedFixes) == 0 {
		t.Fatalf("no fixes for %s", d.Code)
	}
	if d.Evidence["index"] != 3 {
		t.Fatalf("evidence = %v", d.Evidence)
	}
	if !strings.Contains(d.Error(), "endMs 100") {
		t.Fatalf("error = %q", d.Error())
	}

	d = Clip(ClipDuplicateID, 0, "intro", "")
	if d.Error() != "CLIP.DUPLICATE_ID: clip intro skipped" {
		t.Fatalf("error = %q", d.Error())
	}
}
