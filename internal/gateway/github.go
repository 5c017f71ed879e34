// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/naka-gawa/profile-stats/internal/domain"
)

// DefaultConcurrency is the number of repositories whose languages are fetched in parallel.
const DefaultConcurrency = 8

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchRepositoryLanguages(ctx context.Context, user string) ([]domain.RepositoryLanguageUsage, error)
	FetchActivityCounts(ctx context.Context, user string) (domain.ActivityCounts, error)
	FetchCommitCount(ctx context.Context, user string) (int, error)
	FetchContributionCalendar(ctx context.Context, user string) ([]domain.ContributionDay, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
	concurrency   int
}

// userCountsQuery fetches the aggregate counters of a user. Stars are summed
// over owned, non-fork repositories, which are paged.
type userCountsQuery struct {
	User struct {
		PullRequests struct {
			TotalCount int
		}
		Issues struct {
			TotalCount int
		}
		RepositoriesContributedTo struct {
			TotalCount int
		} `graphql:"repositoriesContributedTo(contributionTypes: [COMMIT, PULL_REQUEST, ISSUE, REPOSITORY])"`
		Followers struct {
			TotalCount int
		}
		Repositories struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				StargazerCount int
			}
		} `graphql:"repositories(ownerAffiliations: OWNER, isFork: false, first: 100, after: $cursor)"`
	} `graphql:"user(login: $login)"`
}

// contributionCalendarQuery fetches the contribution calendar of the last year.
type contributionCalendarQuery struct {
	User struct {
		ContributionsCollection struct {
			ContributionCalendar struct {
				Weeks []struct {
					ContributionDays []struct {
						Date              string
						ContributionCount int
					}
				}
			}
		}
	} `graphql:"user(login: $login)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, concurrency int, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
		concurrency:   concurrency,
	}, nil
}

// FetchRepositoryLanguages lists the repositories owned by the user and
// fetches the language breakdown of each one, forks included. Whether forks
// count is decided by the ranking. The result keeps the listing order.
func (g *GitHubGateway) FetchRepositoryLanguages(ctx context.Context, user string) ([]domain.RepositoryLanguageUsage, error) {
	g.logger.Println("[1/4] Fetching repository languages using REST API...")
	opts := &github.RepositoryListByUserOptions{
		Type:        "owner",
		Sort:        "pushed",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var repos []*github.Repository
	for {
		page, resp, err := g.restClient.Repositories.ListByUser(ctx, user, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories with REST API: %w", err)
		}
		repos = append(repos, page...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Println("  Fetching next page of repositories...")
	}

	usages := make([]domain.RepositoryLanguageUsage, len(repos))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for i, repo := range repos {
		usages[i] = domain.RepositoryLanguageUsage{
			Repository: repo.GetFullName(),
			Fork:       repo.GetFork(),
		}
		i, repo := i, repo
		eg.Go(func() error {
			langs, err := g.fetchLanguages(egCtx, repo.GetOwner().GetLogin(), repo.GetName())
			if err != nil {
				return err
			}
			usages[i].Languages = langs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	g.logger.Printf("Completed fetching languages of %d repositories.\n", len(usages))
	return usages, nil
}

// fetchLanguages returns the languages of a repository ordered by size, as
// the REST API encodes them in a JSON object whose order is lost on decoding.
func (g *GitHubGateway) fetchLanguages(ctx context.Context, owner, repo string) ([]domain.LanguageBytes, error) {
	langs, _, err := g.restClient.Repositories.ListLanguages(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to list languages of %s/%s: %w", owner, repo, err)
	}
	result := make([]domain.LanguageBytes, 0, len(langs))
	for name, bytes := range langs {
		result = append(result, domain.LanguageBytes{Name: name, Bytes: bytes})
	}
	sortLanguageBytes(result)
	return result, nil
}

func sortLanguageBytes(langs []domain.LanguageBytes) {
	sort.Slice(langs, func(i, j int) bool {
		if langs[i].Bytes != langs[j].Bytes {
			return langs[i].Bytes > langs[j].Bytes
		}
		return langs[i].Name < langs[j].Name
	})
}

// FetchActivityCounts fetches stars, pull requests, issues, contributed-to
// repositories and followers in one paged GraphQL query.
func (g *GitHubGateway) FetchActivityCounts(ctx context.Context, user string) (domain.ActivityCounts, error) {
	g.logger.Println("[2/4] Fetching activity counts...")
	variables := map[string]interface{}{
		"login":  githubv4.String(user),
		"cursor": (*githubv4.String)(nil),
	}
	var counts domain.ActivityCounts
	for {
		var q userCountsQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return domain.ActivityCounts{}, fmt.Errorf("failed to execute GraphQL query for counts: %w", err)
		}
		counts.PullRequests = q.User.PullRequests.TotalCount
		counts.Issues = q.User.Issues.TotalCount
		counts.ContributedTo = q.User.RepositoriesContributedTo.TotalCount
		counts.Followers = q.User.Followers.TotalCount
		for _, repo := range q.User.Repositories.Nodes {
			counts.Stars += repo.StargazerCount
		}
		if !q.User.Repositories.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.User.Repositories.PageInfo.EndCursor)
		g.logger.Println("  Fetching next page of repositories for star counts...")
	}
	g.logger.Println("Completed fetching activity counts.")
	return counts, nil
}

// FetchCommitCount returns the number of commits authored by the user, as
// reported by the commit search. Only the total is read, so one page is enough.
func (g *GitHubGateway) FetchCommitCount(ctx context.Context, user string) (int, error) {
	g.logger.Println("[3/4] Fetching commit count using REST API...")
	query := fmt.Sprintf("author:%s", user)
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}}
	result, _, err := g.restClient.Search.Commits(ctx, query, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to search commits with REST API: %w", err)
	}
	g.logger.Println("Completed fetching commit count.")
	return result.GetTotal(), nil
}

// FetchContributionCalendar returns the daily contribution counts of the
// last year in ascending date order.
func (g *GitHubGateway) FetchContributionCalendar(ctx context.Context, user string) ([]domain.ContributionDay, error) {
	g.logger.Println("[4/4] Fetching contribution calendar...")
	variables := map[string]interface{}{
		"login": githubv4.String(user),
	}
	var q contributionCalendarQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for contribution calendar: %w", err)
	}
	var days []domain.ContributionDay
	for _, week := range q.User.ContributionsCollection.ContributionCalendar.Weeks {
		for _, d := range week.ContributionDays {
			day, err := domain.ParseContributionDay(d.Date, d.ContributionCount)
			if err != nil {
				return nil, err
			}
			days = append(days, day)
		}
	}
	g.logger.Printf("Completed fetching %d contribution days.\n", len(days))
	return days, nil
}
