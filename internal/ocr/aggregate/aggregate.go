// Package aggregate turns unordered box-level OCR detections into
// reading-order text and repairs common single-character misreads.
package aggregate

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Point is a pixel coordinate.
type Point struct {
	X float64
	Y float64
}

// Detection is a single OCR hit with quadrilateral geometry. Corner
// order follows detector convention: top-left, top-right, bottom-right,
// bottom-left. Boxes need not be axis-aligned.
type Detection struct {
	Text       string
	Box        [4]Point
	Confidence float64
}

// topY is the minimum corner y-value.
func (d Detection) topY() float64 {
	y := d.Box[0].Y
	for _, p := range d.Box[1:] {
		if p.Y < y {
			y = p.Y
		}
	}
	return y
}

// leftX is the minimum corner x-value.
func (d Detection) leftX() float64 {
	x := d.Box[0].X
	for _, p := range d.Box[1:] {
		if p.X < x {
			x = p.X
		}
	}
	return x
}

// height is the vertical extent between the top-left and bottom-left corners.
func (d Detection) height() float64 {
	return math.Abs(d.Box[3].Y - d.Box[0].Y)
}

// JoinPolicy selects the separator between aggregated lines.
type JoinPolicy int

const (
	// JoinSpace joins lines with a single space (default).
	JoinSpace JoinPolicy = iota
	// JoinNewline joins lines with a newline.
	JoinNewline
)

// ParseJoinPolicy maps a config string to a policy; anything other than
// "newline" means JoinSpace.
func ParseJoinPolicy(s string) JoinPolicy {
	if s == "newline" {
		return JoinNewline
	}
	return JoinSpace
}

func (p JoinPolicy) separator() string {
	if p == JoinNewline {
		return "\n"
	}
	return " "
}

// Aggregator converts detections into ordered text.
type Aggregator struct {
	policy JoinPolicy
}

// New creates an aggregator with the given line-join policy.
func New(policy JoinPolicy) *Aggregator {
	return &Aggregator{policy: policy}
}

// Aggregate groups detections into visual lines, orders them top-to-bottom
// and left-to-right, joins them per the configured policy, and applies the
// repair pass. Pure and deterministic: any permutation of the same input
// set yields the same output.
func (a *Aggregator) Aggregate(dets []Detection) string {
	kept := make([]Detection, 0, len(dets))
	for _, d := range dets {
		if strings.TrimSpace(d.Text) != "" {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		return ""
	}

	// Line threshold adapts to font size: half the mean detection height.
	var total float64
	for _, d := range kept {
		total += d.height()
	}
	threshold := total / float64(len(kept)) / 2

	// Deterministic reading order regardless of input order: top-y first,
	// ties broken by left-x then text.
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].topY() != kept[j].topY() {
			return kept[i].topY() < kept[j].topY()
		}
		if kept[i].leftX() != kept[j].leftX() {
			return kept[i].leftX() < kept[j].leftX()
		}
		return kept[i].Text < kept[j].Text
	})

	// Greedy top-to-bottom walk; a gap larger than the threshold against the
	// running last top-y opens a new line.
	var lines [][]Detection
	var current []Detection
	lastY := math.Inf(-1)
	for _, d := range kept {
		y := d.topY()
		if len(current) == 0 || math.Abs(y-lastY) <= threshold {
			current = append(current, d)
		} else {
			lines = append(lines, current)
			current = []Detection{d}
		}
		lastY = y
	}
	lines = append(lines, current)

	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		sort.Slice(line, func(i, j int) bool {
			if line[i].leftX() != line[j].leftX() {
				return line[i].leftX() < line[j].leftX()
			}
			return line[i].Text < line[j].Text
		})
		words := make([]string, len(line))
		for i, d := range line {
			words[i] = d.Text
		}
		parts = append(parts, strings.Join(words, " "))
	}

	return Repair(strings.Join(parts, a.policy.separator()))
}

// repairTable maps common misreads of the pronoun "I". Applied in order
// as literal substring replacements.
var repairTable = [][2]string{
	{"1 ", "I "},
	{" 1 ", " I "},
	{" i ", " I "},
	{" im ", " I'm "},
	{" ill ", " I'll "},
	{" ive ", " I've "},
	{" id ", " I'd "},
}

// Repair fixes common OCR misreads and capitalizes sentence starts.
func Repair(text string) string {
	for _, r := range repairTable {
		text = strings.ReplaceAll(text, r[0], r[1])
	}

	sentences := strings.Split(text, ". ")
	for i, s := range sentences {
		runes := []rune(s)
		if len(runes) > 0 && unicode.IsLower(runes[0]) {
			runes[0] = unicode.ToUpper(runes[0])
			sentences[i] = string(runes)
		}
	}
	return strings.Join(sentences, ". ")
}
