package scoring

import "time"

// Config holds the scoring constants.
type Config struct {
	BasePoints         int     // per correct answer, default 100
	MaxTimeBonus       int     // awarded for an instant answer, decays to 0
	StreakBonusPercent float64 // of base per consecutive correct answer
	MaxStreakBonus     float64 // cap on the streak multiplier
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BasePoints:         100,
		MaxTimeBonus:       50,
		StreakBonusPercent: 0.05,
		MaxStreakBonus:     0.50,
	}
}

// Engine computes server-side scores. Client-reported scores are never
// trusted; the engine recomputes from the per-question outcomes.
type Engine struct {
	config Config
}

func NewEngine(config Config) *Engine {
	if config.BasePoints == 0 {
		config = DefaultConfig()
	}
	return &Engine{config: config}
}

// Outcome is one answered question as the engine sees it.
type Outcome struct {
	Correct bool
	Elapsed time.Duration
}

// Score computes points for a single answer: base + time bonus + streak
// bonus. Time bonus decays linearly from max at instant answer to 0 at the
// per-question limit.
func (e *Engine) Score(correct bool, elapsed, perQuestionLimit time.Duration, streak int) int {
	if !correct {
		return 0
	}

	score := e.config.BasePoints

	if perQuestionLimit > 0 {
		remaining := perQuestionLimit - elapsed
		ratio := float64(remaining) / float64(perQuestionLimit)
		if ratio > 1.0 {
			ratio = 1.0
		}
		if ratio < 0.0 {
			ratio = 0.0
		}
		score += int(float64(e.config.MaxTimeBonus) * ratio)
	}

	if streak > 0 {
		multiplier := float64(streak) * e.config.StreakBonusPercent
		if multiplier > e.config.MaxStreakBonus {
			multiplier = e.config.MaxStreakBonus
		}
		score += int(float64(e.config.BasePoints) * multiplier)
	}

	return score
}

// Total aggregates a full submission in answer order, tracking the running
// correct-streak. Also reports accuracy in [0,1].
func (e *Engine) Total(outcomes []Outcome, perQuestionLimit time.Duration) (total int, accuracy float64) {
	if len(outcomes) == 0 {
		return 0, 0
	}

	correct := 0
	streak := 0
	for _, o := range outcomes {
		if o.Correct {
			streak++
			correct++
		} else {
			streak = 0
		}
		total += e.Score(o.Correct, o.Elapsed, perQuestionLimit, streak)
	}

	return total, float64(correct) / float64(len(outcomes))
}
