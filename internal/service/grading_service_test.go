package service

import "testing"

func TestScoreAnswers(t *testing.T) {
	key := map[string]int{"q1": 0, "q2": 2, "q3": 1}

	tests := []struct {
		name    string
		answers map[string]int
		want    float64
	}{
		{"all correct", map[string]int{"q1": 0, "q2": 2, "q3": 1}, 100},
		{"none answered", map[string]int{}, 0},
		{"partially correct", map[string]int{"q1": 0, "q2": 1, "q3": 1}, 66.67},
		{"wrong answers score nothing", map[string]int{"q1": 3, "q2": 3, "q3": 3}, 0},
		{"unknown question ignored", map[string]int{"q1": 0, "ghost": 0}, 33.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreAnswers(key, tt.answers); got != tt.want {
				t.Fatalf("scoreAnswers = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreAnswersEmptyKey(t *testing.T) {
	if got := scoreAnswers(map[string]int{}, map[string]int{"q1": 0}); got != 0 {
		t.Fatalf("scoreAnswers with empty key = %v, want 0", got)
	}
}
