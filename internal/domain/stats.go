// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// LanguageBytes is the number of bytes a single language occupies in a repository.
type LanguageBytes struct {
	Name  string `json:"name"`
	Bytes int    `json:"bytes"`
}

// RepositoryLanguageUsage holds the language breakdown of one repository.
// Languages keeps the order reported by the data source.
type RepositoryLanguageUsage struct {
	Repository string          `json:"repository"`
	Fork       bool            `json:"fork"`
	Languages  []LanguageBytes `json:"languages"`
}

// LanguageStat is a single entry of the language ranking.
type LanguageStat struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Rank       int     `json:"rank"`
}

// ContributionDay is the activity count of one calendar day.
type ContributionDay struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// StreakResult holds the streak figures derived from a contribution calendar.
type StreakResult struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
	ActiveDays    int `json:"active_days"`
}

// ActivitySummary describes the volume of a contribution calendar.
type ActivitySummary struct {
	TotalContributions int     `json:"total_contributions"`
	DailyAverage       float64 `json:"daily_average"`
}

// ActivityCounts holds the aggregate counters of a user.
type ActivityCounts struct {
	Stars         int `json:"stars"`
	Commits       int `json:"commits"`
	PullRequests  int `json:"pull_requests"`
	Issues        int `json:"issues"`
	ContributedTo int `json:"contributed_to"`
	Followers     int `json:"followers"`
}

// ProfileStats is everything the renderer needs to describe a user.
// It is the core domain entity of this application.
type ProfileStats struct {
	User        string          `json:"user"`
	Counts      ActivityCounts  `json:"counts"`
	Languages   []LanguageStat  `json:"languages"`
	Streak      StreakResult    `json:"streak"`
	Activity    ActivitySummary `json:"activity"`
	GeneratedAt time.Time       `json:"generated_at"`
}
