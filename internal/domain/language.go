package domain

import (
	"sort"

	"github.com/montanaflynn/stats"
)

// DefaultLanguageLimit is the number of languages kept when no limit is given.
const DefaultLanguageLimit = 8

// ExcludeForks reports whether a usage record belongs to a forked repository.
func ExcludeForks(u RepositoryLanguageUsage) bool {
	return u.Fork
}

type languageTotal struct {
	name  string
	bytes int
}

// RankLanguages sums the bytes of every language across the usage records
// that are not excluded, and returns the top `limit` languages ordered by
// size. Languages with the same size keep the order in which they were
// first seen. Percentages are relative to the returned languages only and
// are rounded to one decimal place.
func RankLanguages(usages []RepositoryLanguageUsage, exclude func(RepositoryLanguageUsage) bool, limit int) []LanguageStat {
	if limit <= 0 {
		limit = DefaultLanguageLimit
	}

	totals := make([]languageTotal, 0)
	index := make(map[string]int)
	for _, usage := range usages {
		if exclude != nil && exclude(usage) {
			continue
		}
		for _, lang := range usage.Languages {
			i, ok := index[lang.Name]
			if !ok {
				i = len(totals)
				index[lang.Name] = i
				totals = append(totals, languageTotal{name: lang.Name})
			}
			totals[i].bytes += lang.Bytes
		}
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].bytes > totals[j].bytes
	})
	if len(totals) > limit {
		totals = totals[:limit]
	}

	retained := 0
	for _, t := range totals {
		retained += t.bytes
	}

	ranking := make([]LanguageStat, 0, len(totals))
	if retained == 0 {
		return ranking
	}
	for i, t := range totals {
		// Round only fails on NaN, which a positive denominator rules out.
		pct, _ := stats.Round(100*float64(t.bytes)/float64(retained), 1)
		ranking = append(ranking, LanguageStat{
			Name:       t.name,
			Percentage: pct,
			Rank:       i + 1,
		})
	}
	return ranking
}
