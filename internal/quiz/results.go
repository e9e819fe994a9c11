package quiz

type PerformanceLevel string

const (
	LevelBeginner     PerformanceLevel = "beginner"
	LevelIntermediate PerformanceLevel = "intermediate"
	LevelAdvanced     PerformanceLevel = "advanced"
)

// SessionScore is the one place a session score is computed. correct is capped
// at total so repeated answers cannot push the score past 100.
func SessionScore(correct, total int) (int, float64) {
	if total <= 0 {
		return correct, 0
	}
	if correct > total {
		correct = total
	}
	return correct, float64(correct) * 100 / float64(total)
}

func PerformanceFor(score float64) PerformanceLevel {
	switch {
	case score >= 80:
		return LevelAdvanced
	case score >= 60:
		return LevelIntermediate
	default:
		return LevelBeginner
	}
}

type Breakdown struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

type Results struct {
	Session             Session              `json:"session"`
	PerformanceLevel    PerformanceLevel     `json:"performanceLevel"`
	AverageTime         float64              `json:"averageTime"`
	CategoryBreakdown   map[string]Breakdown `json:"categoryBreakdown"`
	DifficultyBreakdown map[string]Breakdown `json:"difficultyBreakdown"`
}

const unknownBucket = "Unknown"

// BuildResults derives the analytics for a session from its joined answers.
func BuildResults(s Session) Results {
	byCategory := map[string]*Breakdown{}
	byDifficulty := map[string]*Breakdown{}
	tally := func(m map[string]*Breakdown, key string, correct bool) {
		b, ok := m[key]
		if !ok {
			b = &Breakdown{}
			m[key] = b
		}
		b.Total++
		if correct {
			b.Correct++
		}
	}

	totalTime := 0
	for _, a := range s.Answers {
		category, difficulty := unknownBucket, unknownBucket
		if a.Question.Category != nil {
			category = a.Question.Category.Name
		}
		if a.Question.Difficulty != nil {
			difficulty = a.Question.Difficulty.Name
		}
		tally(byCategory, category, a.IsCorrect)
		tally(byDifficulty, difficulty, a.IsCorrect)
		if a.TimeSpent != nil {
			totalTime += *a.TimeSpent
		}
	}

	avg := 0.0
	if len(s.Answers) > 0 {
		avg = float64(totalTime) / float64(len(s.Answers))
	}
	return Results{
		Session:             s,
		PerformanceLevel:    PerformanceFor(s.Score),
		AverageTime:         avg,
		CategoryBreakdown:   finish(byCategory),
		DifficultyBreakdown: finish(byDifficulty),
	}
}

func finish(m map[string]*Breakdown) map[string]Breakdown {
	out := make(map[string]Breakdown, len(m))
	for k, b := range m {
		b.Percentage = float64(b.Correct) * 100 / float64(b.Total)
		out[k] = *b
	}
	return out
}
