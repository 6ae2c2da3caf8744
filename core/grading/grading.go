// Package grading implements the GPA rules: per-module grade resolution,
// semester evaluation with the E/F gate, and two-semester final aggregation.
// Everything here is a pure function over its input; persistence and display
// are the caller's concern.
package grading

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Grade is a letter grade in the fixed set {A, B, C, D, E, F}.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
	GradeF Grade = "F"
)

// Credit is the fixed credit weight carried by every module.
const Credit = 3

var (
	// GradeOrder lists grades from best to worst; escalating a grade moves it
	// towards GradeF.
	GradeOrder = []Grade{GradeA, GradeB, GradeC, GradeD, GradeE, GradeF}

	// GradePoints maps each grade to its point value.
	GradePoints = map[Grade]float64{
		GradeA: 5.0,
		GradeB: 4.0,
		GradeC: 3.0,
		GradeD: 2.0,
		GradeE: 1.0,
		GradeF: 0.0,
	}

	ErrUnknownGrade = errors.New("unknown grade")
)

// Resolve returns the effective grade and its point value for a single module.
// A reference (resit) module is penalized by one grade band; GradeF is an
// absorbing ceiling and stays GradeF.
func Resolve(grade Grade, reference bool) (Grade, float64, error) {
	idx := gradeIndex(grade)
	if idx < 0 {
		return "", 0, errors.Wrapf(ErrUnknownGrade, "%q", grade)
	}
	if reference && idx < len(GradeOrder)-1 {
		idx++
	}
	effective := GradeOrder[idx]
	return effective, GradePoints[effective], nil
}

func gradeIndex(grade Grade) int {
	for i, g := range GradeOrder {
		if g == grade {
			return i
		}
	}
	return -1
}

// round2 rounds to 2 decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatGPA renders a rounded GPA the way it is displayed: trailing zeros
// dropped but always at least one decimal (5.0 -> "5.0", 3.93 -> "3.93").
func formatGPA(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
