package insight

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/ashureev/mood-reflect/internal/domain"
)

const placeholderRange = 0.8

// DailyHistory is one averaged score per UTC day, oldest first. A nil score
// marks a day without entries.
type DailyHistory struct {
	Labels      []string   `json:"labels"`
	Scores      []*float64 `json:"scores"`
	HasRealData bool       `json:"has_real_data"`
}

// DayRange returns the start of the first UTC day and the end of the last
// one for a window of days ending on end's date.
func DayRange(end time.Time, days int) (from, to time.Time) {
	y, m, d := end.UTC().Date()
	last := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	from = last.AddDate(0, 0, -(days - 1))
	to = last.Add(24*time.Hour - time.Nanosecond)
	return from, to
}

// DailyAverages buckets entries by UTC day over the days ending on end's
// date. When entries is empty every day gets a placeholder score drawn
// uniformly from [-0.8, 0.8] so a chart has something to draw.
func DailyAverages(entries []domain.MoodLogEntry, end time.Time, days int, rng *rand.Rand) DailyHistory {
	if days < 1 {
		days = 1
	}

	sums := make(map[string]float64, days)
	counts := make(map[string]int, days)
	for _, e := range entries {
		day := e.Day()
		sums[day] += e.Score
		counts[day]++
	}

	h := DailyHistory{
		Labels:      make([]string, 0, days),
		Scores:      make([]*float64, 0, days),
		HasRealData: len(entries) > 0,
	}

	from, _ := DayRange(end, days)
	for i := 0; i < days; i++ {
		day := from.AddDate(0, 0, i).Format(time.DateOnly)
		h.Labels = append(h.Labels, day)

		switch {
		case counts[day] > 0:
			avg := round2(sums[day] / float64(counts[day]))
			h.Scores = append(h.Scores, &avg)
		case !h.HasRealData:
			v := round2(rng.Float64()*2*placeholderRange - placeholderRange)
			h.Scores = append(h.Scores, &v)
		default:
			h.Scores = append(h.Scores, nil)
		}
	}
	return h
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
