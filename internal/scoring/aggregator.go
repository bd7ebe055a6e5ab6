package scoring

import (
	"iter"
	"sort"

	"edututor-service/internal/domain"
)

// Aggregate derives an analytics snapshot from a user's (or a class's)
// scored attempts. Overall accuracy is attempt-weighted, sum(correct) over
// sum(total), so short quizzes do not skew the result. An empty input yields
// a snapshot with nil Overall and empty rankings rather than an error: a
// first-time user has no data, which is not a failure.
func Aggregate(attempts []domain.ScoredAttempt) domain.AnalyticsSnapshot {
	snapshot := domain.AnalyticsSnapshot{
		Attempts:     len(attempts),
		Trend:        []domain.TrendPoint{},
		Topics:       []domain.RankEntry{},
		Difficulties: []domain.RankEntry{},
	}
	if len(attempts) == 0 {
		return snapshot
	}

	overall := domain.Tally{}
	byTopic := make(map[string]domain.Tally)
	byDifficulty := make(map[domain.Difficulty]domain.Tally)
	for _, attempt := range attempts {
		overall.Correct += attempt.Correct
		overall.Total += attempt.Total
		for topic, tally := range attempt.ByTopic {
			acc := byTopic[topic]
			acc.Correct += tally.Correct
			acc.Total += tally.Total
			byTopic[topic] = acc
		}
		for diff, tally := range attempt.ByDifficulty {
			acc := byDifficulty[diff]
			acc.Correct += tally.Correct
			acc.Total += tally.Total
			byDifficulty[diff] = acc
		}
	}
	if overall.Total > 0 {
		snapshot.Overall = &overall
	}

	for point := range Trend(attempts) {
		snapshot.Trend = append(snapshot.Trend, point)
	}

	for topic, tally := range byTopic {
		snapshot.Topics = append(snapshot.Topics, domain.RankEntry{Key: topic, Tally: tally})
	}
	rankEntries(snapshot.Topics)

	for diff, tally := range byDifficulty {
		snapshot.Difficulties = append(snapshot.Difficulties, domain.RankEntry{Key: string(diff), Tally: tally})
	}
	rankEntries(snapshot.Difficulties)

	return snapshot
}

// Trend returns a lazy, restartable sequence of (timestamp, cumulative
// accuracy) points in timestamp order. It is a pure function of its input;
// ranging over the result twice yields identical points.
func Trend(attempts []domain.ScoredAttempt) iter.Seq[domain.TrendPoint] {
	return func(yield func(domain.TrendPoint) bool) {
		ordered := make([]domain.ScoredAttempt, len(attempts))
		copy(ordered, attempts)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].CompletedAt.Before(ordered[j].CompletedAt)
		})

		correct, total := 0, 0
		for _, attempt := range ordered {
			correct += attempt.Correct
			total += attempt.Total
			if total == 0 {
				continue
			}
			point := domain.TrendPoint{
				At:       attempt.CompletedAt,
				Accuracy: float64(correct) / float64(total),
			}
			if !yield(point) {
				return
			}
		}
	}
}

// rankEntries sorts accuracy descending; at equal accuracy the entry backed
// by more questions ranks first, and remaining ties fall back to the key so
// the order is deterministic.
func rankEntries(entries []domain.RankEntry) {
	sort.Slice(entries, func(i, j int) bool {
		ri, rj := entries[i].Ratio(), entries[j].Ratio()
		if ri != rj {
			return ri > rj
		}
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].Key < entries[j].Key
	})
}
