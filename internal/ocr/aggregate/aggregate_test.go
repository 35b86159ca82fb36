package aggregate

import (
	"math/rand"
	"testing"
)

// rectDetection builds an axis-aligned detection from two corners.
func rectDetection(text string, x1, y1, x2, y2 float64) Detection {
	return Detection{
		Text: text,
		Box: [4]Point{
			{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2},
		},
		Confidence: 0.9,
	}
}

func TestAggregateEmpty(t *testing.T) {
	a := New(JoinSpace)
	if got := a.Aggregate(nil); got != "" {
		t.Errorf("Aggregate(nil) = %q, want empty", got)
	}
	if got := a.Aggregate([]Detection{}); got != "" {
		t.Errorf("Aggregate(empty) = %q, want empty", got)
	}
}

func TestAggregateSingleDetection(t *testing.T) {
	a := New(JoinSpace)
	got := a.Aggregate([]Detection{rectDetection("hello there", 0, 0, 50, 10)})
	if got != "Hello there" {
		t.Errorf("Aggregate() = %q, want %q", got, "Hello there")
	}
}

func TestAggregateTwoLines(t *testing.T) {
	// Heights ~10, threshold ~5: "you" at y=12 starts a new line.
	dets := []Detection{
		rectDetection("I", 0, 0, 10, 10),
		rectDetection("see", 12, 0, 30, 10),
		rectDetection("you", 0, 12, 20, 22),
	}

	a := New(JoinSpace)
	if got := a.Aggregate(dets); got != "I see you" {
		t.Errorf("Aggregate() = %q, want %q", got, "I see you")
	}

	nl := New(JoinNewline)
	if got := nl.Aggregate(dets); got != "I see\nyou" {
		t.Errorf("Aggregate() with newline join = %q, want %q", got, "I see\nyou")
	}
}

func TestAggregatePermutationIndependent(t *testing.T) {
	dets := []Detection{
		rectDetection("quick", 40, 0, 80, 12),
		rectDetection("The", 0, 1, 35, 13),
		rectDetection("fox", 85, 0, 110, 12),
		rectDetection("jumps", 0, 20, 50, 32),
		rectDetection("high", 55, 21, 90, 33),
	}

	a := New(JoinSpace)
	want := a.Aggregate(dets)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]Detection, len(dets))
		copy(shuffled, dets)
		rng.Shuffle(len(shuffled), func(x, y int) {
			shuffled[x], shuffled[y] = shuffled[y], shuffled[x]
		})
		if got := a.Aggregate(shuffled); got != want {
			t.Fatalf("permutation %d: Aggregate() = %q, want %q", i, got, want)
		}
	}
}

func TestAggregateThresholdBoundary(t *testing.T) {
	// Height 10 everywhere, threshold 5.
	sameLine := []Detection{
		rectDetection("a", 0, 0, 10, 10),
		rectDetection("b", 15, 4, 25, 14), // top-y diff 4 <= 5
	}
	split := []Detection{
		rectDetection("a", 0, 0, 10, 10),
		rectDetection("b", 15, 6, 25, 16), // top-y diff 6 > 5
	}

	a := New(JoinNewline)
	if got := a.Aggregate(sameLine); got != "A b" {
		t.Errorf("same-line Aggregate() = %q, want %q", got, "A b")
	}
	if got := a.Aggregate(split); got != "A\nb" {
		t.Errorf("split Aggregate() = %q, want %q", got, "A\nb")
	}
}

func TestAggregateIdenticalTopYSingleLine(t *testing.T) {
	dets := []Detection{
		rectDetection("world", 40, 0, 80, 10),
		rectDetection("hello", 0, 0, 35, 10),
	}

	a := New(JoinSpace)
	if got := a.Aggregate(dets); got != "Hello world" {
		t.Errorf("Aggregate() = %q, want %q", got, "Hello world")
	}
}

func TestAggregateDropsEmptyDetections(t *testing.T) {
	dets := []Detection{
		rectDetection("kept", 0, 0, 30, 10),
		rectDetection("", 35, 0, 45, 10),
		rectDetection("   ", 50, 0, 60, 10),
	}

	a := New(JoinSpace)
	if got := a.Aggregate(dets); got != "Kept" {
		t.Errorf("Aggregate() = %q, want %q", got, "Kept")
	}
}

func TestRepairPronounMisreads(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"well i think so", "Well I think so"},
		{"yes im ready", "Yes I'm ready"},
		{"maybe ill go. but ive decided", "Maybe I'll go. But I've decided"},
		{"1 saw it", "I saw it"},
		{"so id rather wait", "So I'd rather wait"},
		{"nothing to fix here", "Nothing to fix here"},
	}

	for _, tt := range tests {
		if got := Repair(tt.in); got != tt.want {
			t.Errorf("Repair(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRepairCapitalizesSentenceStarts(t *testing.T) {
	got := Repair("first part. second part. Third part")
	want := "First part. Second part. Third part"
	if got != want {
		t.Errorf("Repair() = %q, want %q", got, want)
	}
}

func TestParseJoinPolicy(t *testing.T) {
	if ParseJoinPolicy("newline") != JoinNewline {
		t.Error("newline should parse to JoinNewline")
	}
	if ParseJoinPolicy("space") != JoinSpace {
		t.Error("space should parse to JoinSpace")
	}
	if ParseJoinPolicy("") != JoinSpace {
		t.Error("empty should default to JoinSpace")
	}
}
