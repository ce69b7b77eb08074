package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/san-kum/armik/internal/kinematics"
	"github.com/san-kum/armik/internal/session"
)

const (
	background  = "#10172b"
	armStroke   = "rgba(102, 167, 255, 0.9)"
	jointFill   = "#f0f4ff"
	targetFill  = "#ff6b81"
	baseFill    = "#8b9bff"
	trailStroke = "#5f73f3"
)

// fit maps world coordinates into a width x height picture with uniform
// scale, so segment lengths keep their proportions.
type fit struct {
	lo     r2.Point
	scale  float64
	offset r2.Point
}

func newFit(bounds r2.Rect, width, height int) fit {
	size := bounds.Size()
	if size.X == 0 {
		size.X = 1
	}
	if size.Y == 0 {
		size.Y = 1
	}
	margin := size.Mul(0.1)
	bounds = bounds.Expanded(margin)
	size = bounds.Size()

	scale := math.Min(float64(width)/size.X, float64(height)/size.Y)
	used := size.Mul(scale)
	return fit{
		lo:     bounds.Lo(),
		scale:  scale,
		offset: r2.Point{X: (float64(width) - used.X) / 2, Y: (float64(height) - used.Y) / 2},
	}
}

func (f fit) apply(p r2.Point) r2.Point {
	return p.Sub(f.lo).Mul(f.scale).Add(f.offset)
}

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
}

func writePath(sb *strings.Builder, pts []r2.Point, f fit, stroke string, strokeWidth float64) {
	if len(pts) < 2 {
		return
	}
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="%.1f" stroke-linecap="round" stroke-linejoin="round" d="`, stroke, strokeWidth))
	for i, p := range pts {
		q := f.apply(p)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("M%.1f,%.1f", q.X, q.Y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", q.X, q.Y))
		}
	}
	sb.WriteString("\"/>\n")
}

func writeCircle(sb *strings.Builder, p r2.Point, f fit, r float64, fill string) {
	q := f.apply(p)
	sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, q.X, q.Y, r, fill))
}

// PoseToSVG draws one pose with its target.
func PoseToSVG(pose kinematics.Pose, target r2.Point, width, height int) string {
	if len(pose) == 0 {
		return ""
	}
	bounds := r2.RectFromPoints(pose...).AddPoint(target)
	f := newFit(bounds, width, height)

	var sb strings.Builder
	header(&sb, width, height)
	writePath(&sb, pose, f, armStroke, 12)
	for _, p := range pose {
		writeCircle(&sb, p, f, 10, jointFill)
	}
	writeCircle(&sb, target, f, 12, targetFill)
	writeCircle(&sb, pose[0], f, 14, baseFill)
	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryToSVG draws a polyline through points.
func TrajectoryToSVG(points []r2.Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}
	f := newFit(r2.RectFromPoints(points...), width, height)

	var sb strings.Builder
	header(&sb, width, height)
	writePath(&sb, points, f, strokeColor, 1.5)
	sb.WriteString("</svg>")
	return sb.String()
}

// RunToSVG draws the effector trail of a run with the last pose on top.
func RunToSVG(frames []session.Frame, width, height int) string {
	if len(frames) == 0 {
		return ""
	}

	trail := make([]r2.Point, 0, len(frames))
	bounds := r2.EmptyRect()
	for _, fr := range frames {
		trail = append(trail, fr.Pose.Effector())
		bounds = bounds.AddPoint(fr.Target)
		for _, p := range fr.Pose {
			bounds = bounds.AddPoint(p)
		}
	}
	f := newFit(bounds, width, height)
	last := frames[len(frames)-1]

	var sb strings.Builder
	header(&sb, width, height)
	writePath(&sb, trail, f, trailStroke, 1.5)
	writePath(&sb, last.Pose, f, armStroke, 12)
	for _, p := range last.Pose {
		writeCircle(&sb, p, f, 10, jointFill)
	}
	writeCircle(&sb, last.Target, f, 12, targetFill)
	if len(last.Pose) > 0 {
		writeCircle(&sb, last.Pose[0], f, 14, baseFill)
	}
	sb.WriteString("</svg>")
	return sb.String()
}
