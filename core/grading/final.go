package grading

import "fmt"

// FinalResult combines two previously computed semester GPA values.
type FinalResult struct {
	FirstGPA  float64 `json:"first_gpa"`
	SecondGPA float64 `json:"second_gpa"`
	FinalGPA  float64 `json:"final_gpa"`
	Status    string  `json:"status"`
}

// AggregateFinal averages two semester GPA values and reclassifies the result.
// No gate applies here; by the time two GPA values exist they have each
// already passed the E/F gate once. Total over numeric input.
func AggregateFinal(first, second float64) FinalResult {
	final := round2((first + second) / 2)
	return FinalResult{
		FirstGPA:  first,
		SecondGPA: second,
		FinalGPA:  final,
		Status:    Classify(final),
	}
}

// Message is the display sentence consumed verbatim by callers.
func (r FinalResult) Message() string {
	return fmt.Sprintf("Final GPA: %s - %s", formatGPA(r.FinalGPA), r.Status)
}
