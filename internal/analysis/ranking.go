package analysis

import (
	"math"
	"sort"

	"helioscope/domain/table"
	"helioscope/internal/errors"
)

// GroupSummary holds the per-group aggregates and ranks for one metric.
// Stability is the inverse of the sample standard deviation; a group with
// zero deviation has infinite stability and ranks first on that axis.
type GroupSummary struct {
	Group         string `json:"group"`
	Average       Float  `json:"average"`
	Median        Float  `json:"median"`
	StdDev        Float  `json:"std"`
	Stability     Float  `json:"stability"`
	Records       int    `json:"records"`
	PotentialRank int    `json:"potential_rank"`
	StabilityRank int    `json:"stability_rank"`
	OverallScore  Float  `json:"overall_score"`
}

// Ranking is the ranked comparison of all groups for one metric. Groups are
// listed in first-appearance order of the group key in the dataset, which is
// also the declared tie-break order for BestOverall.
type Ranking struct {
	Groups        []GroupSummary `json:"groups"`
	BestOverall   string         `json:"best_overall"`
	BestPotential string         `json:"best_potential"`
	MostStable    string         `json:"most_stable"`
}

// RankGroups groups the table by the named label column, summarizes the
// metric column per group, and assigns dense ranks:
//
//   - PotentialRank: dense rank of the group average, descending (1 = highest)
//   - StabilityRank: dense rank of 1/std, descending (1 = most stable)
//   - OverallScore: mean of the two ranks, lower is better
//
// BestOverall is the arg-min of OverallScore; ties go to the group that
// appears first in row order.
func RankGroups(t *table.Table, groupKey, metric string) (*Ranking, error) {
	if t.NumRows() == 0 {
		return nil, errors.InvalidInput("cannot rank an empty dataset")
	}
	if err := requireColumn(t, metric); err != nil {
		return nil, err
	}
	labels, err := t.Strings(groupKey)
	if err != nil {
		return nil, err
	}

	// Groups in first-appearance order.
	var order []string
	seen := make(map[string]bool)
	for _, label := range labels {
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		order = append(order, label)
	}
	if len(order) == 0 {
		return nil, errors.InvalidInput("group column has no values to rank")
	}

	summaries := make([]GroupSummary, 0, len(order))
	for _, group := range order {
		sub, err := t.FilterRows(groupKey, group)
		if err != nil {
			return nil, err
		}
		m, err := CalculateMetrics(sub, metric)
		if err != nil {
			return nil, errors.Wrapf(err, "summarizing group %q", group)
		}
		summaries = append(summaries, GroupSummary{
			Group:     group,
			Average:   m.Mean,
			Median:    m.Median,
			StdDev:    m.StdDev,
			Stability: Float(stability(float64(m.StdDev))),
			Records:   m.Count,
		})
	}

	averages := make([]float64, len(summaries))
	stabilities := make([]float64, len(summaries))
	for i, s := range summaries {
		averages[i] = float64(s.Average)
		stabilities[i] = float64(s.Stability)
	}
	potentialRanks := denseRanksDescending(averages)
	stabilityRanks := denseRanksDescending(stabilities)

	ranking := &Ranking{Groups: summaries}
	bestScore := math.Inf(1)
	bestPotential, mostStable := 0, 0
	for i := range summaries {
		summaries[i].PotentialRank = potentialRanks[i]
		summaries[i].StabilityRank = stabilityRanks[i]
		score := float64(potentialRanks[i]+stabilityRanks[i]) / 2
		summaries[i].OverallScore = Float(score)

		// Strict comparisons keep the first-appearance tie-break.
		if score < bestScore {
			bestScore = score
			ranking.BestOverall = summaries[i].Group
		}
		if potentialRanks[i] < potentialRanks[bestPotential] {
			bestPotential = i
		}
		if stabilityRanks[i] < stabilityRanks[mostStable] {
			mostStable = i
		}
	}
	ranking.BestPotential = summaries[bestPotential].Group
	ranking.MostStable = summaries[mostStable].Group
	return ranking, nil
}

// stability converts a standard deviation into a stability score. Zero
// deviation means perfectly constant measurements, which we surface as the
// +Inf sentinel rather than an error; an undefined deviation stays NaN.
func stability(stdDev float64) float64 {
	if math.IsNaN(stdDev) {
		return math.NaN()
	}
	if stdDev == 0 {
		return math.Inf(1)
	}
	return 1 / stdDev
}

// denseRanksDescending assigns dense ranks (1 = highest value, ties share a
// rank, no gaps). NaN values rank below every real value and share the last
// rank among themselves.
func denseRanksDescending(values []float64) []int {
	distinct := make([]float64, 0, len(values))
	seen := make(map[float64]bool)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if !seen[v] {
			seen[v] = true
			distinct = append(distinct, v)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(distinct)))

	rankOf := make(map[float64]int, len(distinct))
	for i, v := range distinct {
		rankOf[v] = i + 1
	}
	nanRank := len(distinct) + 1

	ranks := make([]int, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			ranks[i] = nanRank
			continue
		}
		ranks[i] = rankOf[v]
	}
	return ranks
}
