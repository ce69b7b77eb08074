package scenario

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/san-kum/armik/internal/config"
	"github.com/san-kum/armik/internal/kinematics"
)

const dragScript = `
name: drag
lengths: [150, 120, 90]
viewport: {width: 720, height: 468}
frames: 8
events:
  - {frame: 0, type: down, x: 300, y: 200}
  - {frame: 3, type: move, x: 500, y: 250}
  - {frame: 5, type: up}
  - {frame: 6, type: resize, w: 1000, h: 600}
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	sc, err := Load(writeScript(t, dragScript))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "drag" || len(sc.Events) != 4 {
		t.Fatalf("unexpected scenario: %+v", sc)
	}
	if sc.Solver.MaxIterations != kinematics.DefaultMaxIterations || sc.Solver.Tolerance != kinematics.DefaultTolerance {
		t.Errorf("solver defaults not applied: %+v", sc.Solver)
	}
}

func TestLoadRejectsBadEvents(t *testing.T) {
	_, err := Load(writeScript(t, `
events:
  - {frame: -1, type: down}
  - {frame: 2, type: wiggle}
`))
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"event 0", "event 1"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestRunDrag(t *testing.T) {
	sc, err := Load(writeScript(t, dragScript))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Run(context.Background(), sc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Frames) != 8 {
		t.Fatalf("got %d frames, want 8", len(res.Frames))
	}

	tests := []struct {
		frame    int
		target   r2.Point
		base     r2.Point
		dragging bool
	}{
		{0, r2.Point{X: 300, Y: 200}, r2.Point{X: 360, Y: 351}, true},
		{2, r2.Point{X: 300, Y: 200}, r2.Point{X: 360, Y: 351}, true},
		{3, r2.Point{X: 500, Y: 250}, r2.Point{X: 360, Y: 351}, true},
		{5, r2.Point{X: 500, Y: 250}, r2.Point{X: 360, Y: 351}, false},
		{6, r2.Point{X: 540, Y: 180}, r2.Point{X: 500, Y: 450}, false},
	}
	for _, tt := range tests {
		f := res.Frames[tt.frame]
		if f.Target != tt.target || f.Base != tt.base || f.Dragging != tt.dragging {
			t.Errorf("frame %d: target=%v base=%v dragging=%v", tt.frame, f.Target, f.Base, f.Dragging)
		}
		if f.Pose[0] != f.Base {
			t.Errorf("frame %d: base not pinned", tt.frame)
		}
		if e := kinematics.MaxRigidityError(f.Pose, sc.Lengths); e > 1e-6 {
			t.Errorf("frame %d: rigidity error %g", tt.frame, e)
		}
	}
}

func TestRunExtendsToLastEvent(t *testing.T) {
	sc := &Scenario{
		Lengths:  []float64{50, 50},
		Frames:   1,
		Events:   []Step{{Frame: 4, Type: "target", X: 10, Y: 10}},
		Viewport: config.ViewportConfig{Width: 200, Height: 200},
	}
	sc.applyDefaults()
	res, err := Run(context.Background(), sc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Frames) != 5 {
		t.Fatalf("got %d frames, want 5", len(res.Frames))
	}
	if got := res.Frames[4].Target; got != (r2.Point{X: 10, Y: 10}) {
		t.Errorf("target = %v", got)
	}
}

func TestRunCancelled(t *testing.T) {
	sc, err := Load(writeScript(t, dragScript))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Run(ctx, sc, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(res.Frames) != 0 {
		t.Errorf("cancelled run solved %d frames", len(res.Frames))
	}
}
