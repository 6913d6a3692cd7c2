package domain

// Achievement is a badge earned by a finished session.
type Achievement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

const speedDemonSeconds = 300

// PerformanceLevel maps a percentage onto the tier shown on the results page.
func PerformanceLevel(percentage int) string {
	switch {
	case percentage >= 90:
		return "Exceptional"
	case percentage >= 80:
		return "Excellent"
	case percentage >= 70:
		return "Good"
	case percentage >= 60:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

// Achievements lists the badges a result earns.
func Achievements(r Result) []Achievement {
	var earned []Achievement
	if r.MaxScore > 0 && r.Score == r.MaxScore {
		earned = append(earned, Achievement{Title: "Perfect Score!", Description: "Scored 100% on a quiz"})
	}
	if r.Reason == FinishCompleted && r.ElapsedSeconds < speedDemonSeconds {
		earned = append(earned, Achievement{Title: "Speed Demon", Description: "Completed quiz in under 5 minutes"})
	}
	return earned
}

// ResultSummary is the results-page breakdown of a result.
type ResultSummary struct {
	Result
	Percentage   int           `json:"percentage"`
	Performance  string        `json:"performance"`
	Elapsed      string        `json:"elapsed"`
	Achievements []Achievement `json:"achievements"`
}

// Summarize derives the results-page view for a result.
func Summarize(r Result) ResultSummary {
	pct := r.Percentage()
	return ResultSummary{
		Result:       r,
		Percentage:   pct,
		Performance:  PerformanceLevel(pct),
		Elapsed:      FormatClock(r.ElapsedSeconds),
		Achievements: Achievements(r),
	}
}
