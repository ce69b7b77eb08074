package viz

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/armik/internal/session"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Renderer prints frames to a writer as they are solved. It satisfies
// sim.Observer so a batch run can be watched without the interactive view.
type Renderer struct {
	out       io.Writer
	frameRate int
	lastFrame time.Time
	canvas    *Canvas
	proj      projection
}

// NewRenderer sizes a cols x rows canvas to a viewport of the given world
// height. A frameRate of zero draws every frame.
func NewRenderer(out io.Writer, cols, rows int, viewportHeight float64, frameRate int) *Renderer {
	c := NewCanvas(cols, rows)
	_, dotsH := c.Dots()
	return &Renderer{
		out:       out,
		frameRate: frameRate,
		canvas:    c,
		proj:      projection{scale: viewportHeight / float64(dotsH)},
	}
}

func (r *Renderer) OnFrame(f session.Frame, t float64) {
	if r.frameRate > 0 {
		if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
			return
		}
		r.lastFrame = time.Now()
	}

	r.canvas.Clear()
	drawFrame(r.canvas, r.proj, f)

	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "  frame %d  t=%.2fs\n", f.Index, t)
	b.WriteString("  " + strings.Repeat("-", r.canvas.Width) + "\n")
	for _, line := range strings.Split(r.canvas.String(), "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("  " + strings.Repeat("-", r.canvas.Width) + "\n")
	fmt.Fprintf(&b, "  target=(%.1f, %.1f) error=%.3f iters=%d reachable=%t\n",
		f.Target.X, f.Target.Y, f.Stats.Error, f.Stats.Iterations, f.Stats.Reachable)

	io.WriteString(r.out, b.String())
}

func (r *Renderer) Start() { io.WriteString(r.out, hideCursor) }
func (r *Renderer) Stop()  { io.WriteString(r.out, showCursor) }
