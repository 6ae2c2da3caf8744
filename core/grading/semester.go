package grading

import "fmt"

// Status classification labels, displayed verbatim to students.
const (
	StatusExcellentPass = "Excellent Pass"
	StatusPass          = "Pass"
	StatusFail          = "Fail"
	StatusWithdrew      = "Withdrew"
)

const (
	// BlockReasonEF identifies the E/F policy gate in blocked outcomes.
	BlockReasonEF = "E_or_F_present"

	blockedEFMessage = "Calculation disabled: E or F present. Please contact your faculty."
)

type (
	// ModuleEntry is one graded course submitted for a semester.
	ModuleEntry struct {
		Label     string `json:"label,omitempty"`
		Code      string `json:"code,omitempty"`
		Grade     Grade  `json:"grade" validate:"required"`
		Reference bool   `json:"reference,omitempty"`
	}

	// ModuleResult is the per-module breakdown, one per ModuleEntry in input order.
	ModuleResult struct {
		Label       string  `json:"label"`
		Code        string  `json:"code"`
		GradeBefore Grade   `json:"grade_before"`
		GradeAfter  Grade   `json:"grade_after"`
		Points      float64 `json:"points"`
		Reference   bool    `json:"reference"`
	}

	// SemesterResult is the outcome of evaluating one semester's modules.
	SemesterResult struct {
		GPA     float64        `json:"gpa"`
		Status  string         `json:"status"`
		Details []ModuleResult `json:"details"`
	}
)

// Blocked is the deliberate refusal to compute a GPA when any module's
// original grade is E or F; those require manual faculty handling and must
// never be auto-scored. It is distinct from a computation error.
type Blocked struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (b *Blocked) Error() string { return b.Message }

// Message is the display sentence consumed verbatim by callers.
func (r SemesterResult) Message() string {
	return fmt.Sprintf("Your semester GPA is %s --- %s.", formatGPA(r.GPA), r.Status)
}

// EvaluateSemester turns an ordered module list into a SemesterResult.
//
// The E/F gate runs first, over the original submitted grades, before any
// reference adjustment; when it trips, a *Blocked error is returned and
// nothing is computed. An unknown grade is a computation error. An empty
// module list is valid and yields GPA 0.0.
func EvaluateSemester(modules []ModuleEntry) (SemesterResult, error) {
	for _, m := range modules {
		if m.Grade == GradeE || m.Grade == GradeF {
			return SemesterResult{}, &Blocked{Reason: BlockReasonEF, Message: blockedEFMessage}
		}
	}

	var pointsTotal float64
	var creditsTotal int
	details := make([]ModuleResult, 0, len(modules))

	for _, m := range modules {
		after, points, err := Resolve(m.Grade, m.Reference)
		if err != nil {
			return SemesterResult{}, err
		}
		pointsTotal += points * Credit
		creditsTotal += Credit

		details = append(details, ModuleResult{
			Label:       m.Label,
			Code:        m.Code,
			GradeBefore: m.Grade,
			GradeAfter:  after,
			Points:      points,
			Reference:   m.Reference,
		})
	}

	var gpa float64
	if creditsTotal > 0 {
		gpa = round2(pointsTotal / float64(creditsTotal))
	}

	return SemesterResult{
		GPA:     gpa,
		Status:  Classify(gpa),
		Details: details,
	}, nil
}

// Classify maps a rounded GPA to its status band, highest threshold first,
// inclusive lower bounds.
func Classify(gpa float64) string {
	switch {
	case gpa >= 4.0:
		return StatusExcellentPass
	case gpa >= 3.0:
		return StatusPass
	case gpa >= 2.7:
		return StatusFail
	default:
		return StatusWithdrew
	}
}
