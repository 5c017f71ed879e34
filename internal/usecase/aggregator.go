// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"log"
	"time"

	"github.com/naka-gawa/profile-stats/internal/domain"
	"github.com/naka-gawa/profile-stats/internal/gateway"
	"golang.org/x/sync/errgroup"
)

// Options tunes a single aggregation run.
type Options struct {
	// LanguageLimit is the number of languages kept in the ranking.
	LanguageLimit int
	// IncludeForks keeps forked repositories in the language ranking.
	IncludeForks bool
}

// Aggregator is the use case for building a user's profile stats.
// It orchestrates the fetching of raw data and the computation of derived figures.
type Aggregator struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
	now     func() time.Time
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger *log.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// Aggregate performs the main business logic.
// It fetches all required data concurrently from the gateway, ranks the
// languages and computes the streaks. A missing or invalid contribution
// calendar does not fail the run: the streaks are reported as zero instead.
func (a *Aggregator) Aggregate(ctx context.Context, user string, opts Options) (*domain.ProfileStats, error) {
	a.logger.Println("Usecase: Starting data aggregation...")

	var (
		usages  []domain.RepositoryLanguageUsage
		counts  domain.ActivityCounts
		commits int
		days    []domain.ContributionDay
	)

	// Use an errgroup to fetch all data concurrently.
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var err error
		usages, err = a.fetcher.FetchRepositoryLanguages(egCtx, user)
		return err
	})

	eg.Go(func() error {
		var err error
		counts, err = a.fetcher.FetchActivityCounts(egCtx, user)
		return err
	})

	eg.Go(func() error {
		var err error
		commits, err = a.fetcher.FetchCommitCount(egCtx, user)
		return err
	})

	eg.Go(func() error {
		calendar, err := a.fetcher.FetchContributionCalendar(egCtx, user)
		if err != nil {
			a.logger.Printf("Usecase: contribution calendar unavailable, streaks set to zero: %v\n", err)
			return nil
		}
		if err := domain.ValidateCalendar(calendar); err != nil {
			a.logger.Printf("Usecase: contribution calendar rejected, streaks set to zero: %v\n", err)
			return nil
		}
		days = calendar
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	a.logger.Println("Usecase: All data fetched successfully.")

	exclude := domain.ExcludeForks
	if opts.IncludeForks {
		exclude = nil
	}

	now := a.now()
	counts.Commits = commits
	stats := &domain.ProfileStats{
		User:        user,
		Counts:      counts,
		Languages:   domain.RankLanguages(usages, exclude, opts.LanguageLimit),
		Streak:      domain.ComputeStreaks(days, now),
		Activity:    domain.SummarizeCalendar(days),
		GeneratedAt: now.UTC(),
	}

	a.logger.Println("Usecase: Aggregation complete.")
	return stats, nil
}
