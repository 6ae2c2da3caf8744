package grading

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestEvaluateSemester(t *testing.T) {
	tests := []struct {
		name        string
		modules     []ModuleEntry
		wantGPA     float64
		wantStatus  string
		wantMessage string
		wantDetails []ModuleResult
	}{
		{
			name:        "two As",
			modules:     []ModuleEntry{{Grade: GradeA}, {Grade: GradeA}},
			wantGPA:     5.0,
			wantStatus:  StatusExcellentPass,
			wantMessage: "Your semester GPA is 5.0 --- Excellent Pass.",
		},
		{
			name:       "single C passes",
			modules:    []ModuleEntry{{Grade: GradeC}},
			wantGPA:    3.0,
			wantStatus: StatusPass,
		},
		{
			name: "reference escalation pulls status down",
			modules: []ModuleEntry{
				{Grade: GradeD},
				{Grade: GradeC, Reference: true},
			},
			wantGPA:    2.0,
			wantStatus: StatusWithdrew,
			wantDetails: []ModuleResult{
				{GradeBefore: GradeD, GradeAfter: GradeD, Points: 2.0},
				{GradeBefore: GradeC, GradeAfter: GradeD, Points: 2.0, Reference: true},
			},
		},
		{
			name:        "empty module list",
			modules:     []ModuleEntry{},
			wantGPA:     0.0,
			wantStatus:  StatusWithdrew,
			wantDetails: []ModuleResult{},
		},
		{
			name:       "fail band lower bound",
			modules:    []ModuleEntry{{Grade: GradeC}, {Grade: GradeC}, {Grade: GradeC}, {Grade: GradeD}, {Grade: GradeD}},
			wantGPA:    2.6, // (3+3+3+2+2)/5
			wantStatus: StatusWithdrew,
		},
		{
			name:       "mixed grades round to 2 decimals",
			modules:    []ModuleEntry{{Grade: GradeA}, {Grade: GradeB}, {Grade: GradeB}},
			wantGPA:    4.33,
			wantStatus: StatusExcellentPass,
		},
		{
			name: "labels and codes pass through in order",
			modules: []ModuleEntry{
				{Label: "Algorithms", Code: "CS201", Grade: GradeB},
				{Label: "Databases", Code: "CS202", Grade: GradeA},
			},
			wantGPA:    4.5,
			wantStatus: StatusExcellentPass,
			wantDetails: []ModuleResult{
				{Label: "Algorithms", Code: "CS201", GradeBefore: GradeB, GradeAfter: GradeB, Points: 4.0},
				{Label: "Databases", Code: "CS202", GradeBefore: GradeA, GradeAfter: GradeA, Points: 5.0},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := EvaluateSemester(tt.modules)
			if err != nil {
				t.Fatalf("EvaluateSemester() unexpected error = %v", err)
			}
			if res.GPA != tt.wantGPA {
				t.Errorf("EvaluateSemester() gpa = %v, want %v", res.GPA, tt.wantGPA)
			}
			if res.Status != tt.wantStatus {
				t.Errorf("EvaluateSemester() status = %q, want %q", res.Status, tt.wantStatus)
			}
			if tt.wantMessage != "" && res.Message() != tt.wantMessage {
				t.Errorf("Message() = %q, want %q", res.Message(), tt.wantMessage)
			}
			if len(res.Details) != len(tt.modules) {
				t.Errorf("EvaluateSemester() len(details) = %d, want %d", len(res.Details), len(tt.modules))
			}
			if tt.wantDetails != nil && !reflect.DeepEqual(res.Details, tt.wantDetails) {
				t.Errorf("EvaluateSemester() details = %+v, want %+v", res.Details, tt.wantDetails)
			}
		})
	}
}

func TestEvaluateSemester_gate(t *testing.T) {
	tests := []struct {
		name    string
		modules []ModuleEntry
	}{
		{name: "single E", modules: []ModuleEntry{{Grade: GradeE}}},
		{name: "single F", modules: []ModuleEntry{{Grade: GradeF}}},
		{name: "E among passing grades", modules: []ModuleEntry{{Grade: GradeA}, {Grade: GradeE}, {Grade: GradeB}}},
		{name: "F last", modules: []ModuleEntry{{Grade: GradeA}, {Grade: GradeF}}},
		// the gate inspects the pre-adjustment grade; the reference flag never
		// escalates an E away from the gate
		{name: "reference E still gated", modules: []ModuleEntry{{Grade: GradeE, Reference: true}}},
		{name: "reference F still gated", modules: []ModuleEntry{{Grade: GradeF, Reference: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := EvaluateSemester(tt.modules)
			if err == nil {
				t.Fatal("EvaluateSemester() expected a blocked outcome, got none")
			}
			var blocked *Blocked
			if !errors.As(err, &blocked) {
				t.Fatalf("EvaluateSemester() error = %v, want *Blocked", err)
			}
			if blocked.Reason != BlockReasonEF {
				t.Errorf("Blocked.Reason = %q, want %q", blocked.Reason, BlockReasonEF)
			}
			if blocked.Message != "Calculation disabled: E or F present. Please contact your faculty." {
				t.Errorf("Blocked.Message = %q", blocked.Message)
			}
			if res.Details != nil || res.GPA != 0 || res.Status != "" {
				t.Errorf("EvaluateSemester() blocked result not empty: %+v", res)
			}
		})
	}
}

// a reference D escalates to E but the gate never re-checks post-adjustment
// grades; the semester still computes
func TestEvaluateSemester_gateIgnoresPostAdjustmentGrades(t *testing.T) {
	res, err := EvaluateSemester([]ModuleEntry{{Grade: GradeD, Reference: true}})
	if err != nil {
		t.Fatalf("EvaluateSemester() unexpected error = %v", err)
	}
	if res.Details[0].GradeAfter != GradeE {
		t.Errorf("GradeAfter = %v, want %v", res.Details[0].GradeAfter, GradeE)
	}
	if res.GPA != 1.0 {
		t.Errorf("gpa = %v, want 1.0", res.GPA)
	}
}

func TestEvaluateSemester_unknownGrade(t *testing.T) {
	_, err := EvaluateSemester([]ModuleEntry{{Grade: GradeA}, {Grade: "X"}})
	if errors.Cause(err) != ErrUnknownGrade {
		t.Errorf("EvaluateSemester() error = %v, want %v", err, ErrUnknownGrade)
	}
	_, err = EvaluateSemester([]ModuleEntry{{Label: "No grade"}})
	if errors.Cause(err) != ErrUnknownGrade {
		t.Errorf("EvaluateSemester() error = %v, want %v", err, ErrUnknownGrade)
	}
}

// every module carries the same fixed credit weight, so a uniform grade set
// yields exactly that grade's point value
func TestEvaluateSemester_uniformGrades(t *testing.T) {
	for grade, points := range GradePoints {
		if grade == GradeE || grade == GradeF {
			continue // gated
		}
		for _, n := range []int{1, 2, 7} {
			modules := make([]ModuleEntry, n)
			for i := range modules {
				modules[i] = ModuleEntry{Grade: grade}
			}
			res, err := EvaluateSemester(modules)
			if err != nil {
				t.Fatalf("EvaluateSemester() unexpected error = %v", err)
			}
			if res.GPA != points {
				t.Errorf("EvaluateSemester() %d x %s: gpa = %v, want %v", n, grade, res.GPA, points)
			}
		}
	}
}

func TestEvaluateSemester_deterministic(t *testing.T) {
	modules := []ModuleEntry{
		{Label: "Calculus", Code: "MTH101", Grade: GradeB},
		{Label: "Physics", Code: "PHY101", Grade: GradeC, Reference: true},
		{Grade: GradeA},
	}
	first, err := EvaluateSemester(modules)
	if err != nil {
		t.Fatalf("EvaluateSemester() unexpected error = %v", err)
	}
	second, err := EvaluateSemester(modules)
	if err != nil {
		t.Fatalf("EvaluateSemester() unexpected error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("EvaluateSemester() not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		gpa  float64
		want string
	}{
		{5.0, StatusExcellentPass},
		{4.0, StatusExcellentPass}, // inclusive lower bound
		{3.99, StatusPass},
		{3.0, StatusPass},
		{2.99, StatusFail},
		{2.7, StatusFail},
		{2.69, StatusWithdrew},
		{2.0, StatusWithdrew},
		{0.0, StatusWithdrew},
	}
	for _, tt := range tests {
		if got := Classify(tt.gpa); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.gpa, got, tt.want)
		}
	}
}
