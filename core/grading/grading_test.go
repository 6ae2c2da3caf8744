package grading

import (
	"testing"

	"github.com/pkg/errors"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		grade      Grade
		reference  bool
		wantGrade  Grade
		wantPoints float64
		wantErr    error
	}{
		{name: "A unchanged", grade: GradeA, wantGrade: GradeA, wantPoints: 5.0},
		{name: "B unchanged", grade: GradeB, wantGrade: GradeB, wantPoints: 4.0},
		{name: "C unchanged", grade: GradeC, wantGrade: GradeC, wantPoints: 3.0},
		{name: "D unchanged", grade: GradeD, wantGrade: GradeD, wantPoints: 2.0},
		{name: "E unchanged", grade: GradeE, wantGrade: GradeE, wantPoints: 1.0},
		{name: "F unchanged", grade: GradeF, wantGrade: GradeF, wantPoints: 0.0},
		{name: "A escalates to B", grade: GradeA, reference: true, wantGrade: GradeB, wantPoints: 4.0},
		{name: "B escalates to C", grade: GradeB, reference: true, wantGrade: GradeC, wantPoints: 3.0},
		{name: "C escalates to D", grade: GradeC, reference: true, wantGrade: GradeD, wantPoints: 2.0},
		{name: "D escalates to E", grade: GradeD, reference: true, wantGrade: GradeE, wantPoints: 1.0},
		{name: "E escalates to F", grade: GradeE, reference: true, wantGrade: GradeF, wantPoints: 0.0},
		{name: "F is a fixed point", grade: GradeF, reference: true, wantGrade: GradeF, wantPoints: 0.0},
		{name: "unknown grade", grade: "G", wantErr: ErrUnknownGrade},
		{name: "empty grade", grade: "", wantErr: ErrUnknownGrade},
		{name: "lowercase grade", grade: "a", wantErr: ErrUnknownGrade},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grade, points, err := Resolve(tt.grade, tt.reference)
			if tt.wantErr != nil {
				if errors.Cause(err) != tt.wantErr {
					t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() unexpected error = %v", err)
			}
			if grade != tt.wantGrade {
				t.Errorf("Resolve() grade = %v, want %v", grade, tt.wantGrade)
			}
			if points != tt.wantPoints {
				t.Errorf("Resolve() points = %v, want %v", points, tt.wantPoints)
			}
		})
	}
}

func TestResolve_referenceMatchesNonReferenceOnF(t *testing.T) {
	refGrade, refPoints, err := Resolve(GradeF, true)
	if err != nil {
		t.Fatalf("Resolve() unexpected error = %v", err)
	}
	grade, points, err := Resolve(GradeF, false)
	if err != nil {
		t.Fatalf("Resolve() unexpected error = %v", err)
	}
	if refGrade != grade || refPoints != points {
		t.Errorf("Resolve(F, true) = (%v, %v); Resolve(F, false) = (%v, %v)", refGrade, refPoints, grade, points)
	}
}

func TestFormatGPA(t *testing.T) {
	tests := []struct {
		gpa  float64
		want string
	}{
		{5.0, "5.0"},
		{0.0, "0.0"},
		{2.0, "2.0"},
		{3.9, "3.9"},
		{3.93, "3.93"},
		{2.67, "2.67"},
	}
	for _, tt := range tests {
		if got := formatGPA(tt.gpa); got != tt.want {
			t.Errorf("formatGPA(%v) = %q, want %q", tt.gpa, got, tt.want)
		}
	}
}
