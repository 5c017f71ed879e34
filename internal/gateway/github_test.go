package gateway

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/profile-stats/internal/domain"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	server := httptest.NewServer(handler)

	// Setup REST client to point to the mock server.
	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL

	// Use NewEnterpriseClient to point the GraphQL client to our mock server's URL.
	graphqlClient := githubv4.NewEnterpriseClient(server.URL+"/graphql", server.Client())
	logger := log.New(io.Discard, "", 0)

	gateway := &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		logger:        logger,
		concurrency:   2,
	}

	return gateway, server
}

func TestGitHubGateway_FetchRepositoryLanguages(t *testing.T) {
	testCases := []struct {
		name           string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expected       []domain.RepositoryLanguageUsage
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "happy path - keeps listing order and fetches fork languages",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/users/octo/repos":
					assert.Equal(t, "owner", r.URL.Query().Get("type"))
					fmt.Fprint(w, `[
						{"name": "alpha", "full_name": "octo/alpha", "fork": false, "owner": {"login": "octo"}},
						{"name": "forked", "full_name": "octo/forked", "fork": true, "owner": {"login": "octo"}},
						{"name": "beta", "full_name": "octo/beta", "fork": false, "owner": {"login": "octo"}}
					]`)
				case "/repos/octo/alpha/languages":
					fmt.Fprint(w, `{"Rust": 100, "Go": 300}`)
				case "/repos/octo/forked/languages":
					fmt.Fprint(w, `{"Rust": 900}`)
				case "/repos/octo/beta/languages":
					fmt.Fprint(w, `{"Shell": 5, "C": 5}`)
				default:
					t.Errorf("unexpected request to %s", r.URL.Path)
					w.WriteHeader(http.StatusNotFound)
				}
			},
			expected: []domain.RepositoryLanguageUsage{
				{Repository: "octo/alpha", Languages: []domain.LanguageBytes{{Name: "Go", Bytes: 300}, {Name: "Rust", Bytes: 100}}},
				{Repository: "octo/forked", Fork: true, Languages: []domain.LanguageBytes{{Name: "Rust", Bytes: 900}}},
				{Repository: "octo/beta", Languages: []domain.LanguageBytes{{Name: "C", Bytes: 5}, {Name: "Shell", Bytes: 5}}},
			},
		},
		{
			name: "error case - listing repositories fails",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message": "Internal Server Error"}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to list repositories with REST API",
		},
		{
			name: "error case - languages of one repository fail",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/users/octo/repos" {
					fmt.Fprint(w, `[{"name": "alpha", "full_name": "octo/alpha", "owner": {"login": "octo"}}]`)
					return
				}
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message": "Not Found"}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to list languages of octo/alpha",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := setupTestGateway(t, http.HandlerFunc(tc.handlerFunc))
			defer server.Close()
			result, err := gateway.FetchRepositoryLanguages(context.Background(), "octo")
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, result)
			}
		})
	}
}

func TestGitHubGateway_FetchCommitCount(t *testing.T) {
	testCases := []struct {
		name           string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expected       int
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "happy path - reads the total count",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.URL.String(), "/search/commits")
				assert.Equal(t, "author:octo", r.URL.Query().Get("q"))
				fmt.Fprint(w, `{"total_count": 42, "items": [{"repository": {"full_name": "octo/alpha"}}]}`)
			},
			expected: 42,
		},
		{
			name: "error case - GitHub API returns an error",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message": "Internal Server Error"}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to search commits with REST API",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := setupTestGateway(t, http.HandlerFunc(tc.handlerFunc))
			defer server.Close()
			count, err := gateway.FetchCommitCount(context.Background(), "octo")
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, count)
			}
		})
	}
}

func TestGitHubGateway_FetchActivityCounts(t *testing.T) {
	pages := []string{
		`{"data":{"user":{
			"pullRequests":{"totalCount":7},
			"issues":{"totalCount":3},
			"repositoriesContributedTo":{"totalCount":5},
			"followers":{"totalCount":11},
			"repositories":{"pageInfo":{"hasNextPage":true,"endCursor":"c1"},"nodes":[{"stargazerCount":10},{"stargazerCount":2}]}
		}}}`,
		`{"data":{"user":{
			"pullRequests":{"totalCount":7},
			"issues":{"totalCount":3},
			"repositoriesContributedTo":{"totalCount":5},
			"followers":{"totalCount":11},
			"repositories":{"pageInfo":{"hasNextPage":false,"endCursor":"c2"},"nodes":[{"stargazerCount":30}]}
		}}}`,
	}
	var requests atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "octo")
		n := requests.Add(1) - 1
		if n > 0 {
			assert.Contains(t, string(body), "c1")
		}
		fmt.Fprint(w, pages[n])
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
	defer server.Close()

	counts, err := gateway.FetchActivityCounts(context.Background(), "octo")
	require.NoError(t, err)
	assert.Equal(t, int32(2), requests.Load())
	assert.Equal(t, domain.ActivityCounts{
		Stars:         42,
		PullRequests:  7,
		Issues:        3,
		ContributedTo: 5,
		Followers:     11,
	}, counts)
}

func TestGitHubGateway_FetchContributionCalendar(t *testing.T) {
	testCases := []struct {
		name           string
		responseBody   string
		expected       []domain.ContributionDay
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "happy path - flattens weeks in order",
			responseBody: `{"data":{"user":{"contributionsCollection":{"contributionCalendar":{"weeks":[
				{"contributionDays":[{"date":"2024-03-08","contributionCount":1},{"date":"2024-03-09","contributionCount":0}]},
				{"contributionDays":[{"date":"2024-03-10","contributionCount":4}]}
			]}}}}}`,
			expected: []domain.ContributionDay{
				{Date: time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC), Count: 1},
				{Date: time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC), Count: 0},
				{Date: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), Count: 4},
			},
		},
		{
			name:           "error case - GraphQL error",
			responseBody:   `{"errors":[{"message":"Something went wrong"}]}`,
			expectError:    true,
			expectedErrMsg: "failed to execute GraphQL query for contribution calendar",
		},
		{
			name: "error case - malformed date",
			responseBody: `{"data":{"user":{"contributionsCollection":{"contributionCalendar":{"weeks":[
				{"contributionDays":[{"date":"yesterday","contributionCount":1}]}
			]}}}}}`,
			expectError:    true,
			expectedErrMsg: "invalid contribution date",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Contains(t, string(body), "contributionCalendar")
				fmt.Fprint(w, tc.responseBody)
			}
			gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
			defer server.Close()

			days, err := gateway.FetchContributionCalendar(context.Background(), "octo")
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, days)
			}
		})
	}
}

func TestGitHubGateway_FetchRepositoryLanguages_ForkBytesReachRanking(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/octo/repos":
			fmt.Fprint(w, `[
				{"name": "own", "full_name": "octo/own", "fork": false, "owner": {"login": "octo"}},
				{"name": "forked", "full_name": "octo/forked", "fork": true, "owner": {"login": "octo"}}
			]`)
		case "/repos/octo/own/languages":
			fmt.Fprint(w, `{"Go": 100}`)
		case "/repos/octo/forked/languages":
			fmt.Fprint(w, `{"Rust": 900}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
	defer server.Close()

	usages, err := gateway.FetchRepositoryLanguages(context.Background(), "octo")
	require.NoError(t, err)

	assert.Equal(t, []domain.LanguageStat{
		{Name: "Rust", Percentage: 90.0, Rank: 1},
		{Name: "Go", Percentage: 10.0, Rank: 2},
	}, domain.RankLanguages(usages, nil, 8))
	assert.Equal(t, []domain.LanguageStat{
		{Name: "Go", Percentage: 100.0, Rank: 1},
	}, domain.RankLanguages(usages, domain.ExcludeForks, 8))
}
