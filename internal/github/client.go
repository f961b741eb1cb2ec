// Package github fetches contribution calendars from the GitHub GraphQL API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/artcc/contribdeck/internal/contrib"
)

// DefaultEndpoint is the public GraphQL endpoint.
const DefaultEndpoint = "https://api.github.com/graphql"

var (
	ErrNotConfigured = errors.New("github: username and token are required")
	ErrUserNotFound  = errors.New("github: user not found")
)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("github: unexpected status %d", e.Code)
	}
	return fmt.Sprintf("github: unexpected status %d: %s", e.Code, e.Body)
}

// QueryError carries the messages of a GraphQL errors array.
type QueryError struct {
	Messages []string
}

func (e *QueryError) Error() string {
	return "github: query failed: " + strings.Join(e.Messages, "; ")
}

const contributionsQuery = `query($username: String!) {
  user(login: $username) {
    contributionsCollection {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            date
            contributionCount
            color
          }
        }
      }
    }
  }
}`

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type response struct {
	Data struct {
		User *struct {
			ContributionsCollection struct {
				ContributionCalendar calendar `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"errors"`
}

type calendar struct {
	TotalContributions int `json:"totalContributions"`
	Weeks              []struct {
		ContributionDays []struct {
			Date              string `json:"date"`
			ContributionCount int    `json:"contributionCount"`
			Color             string `json:"color"`
		} `json:"contributionDays"`
	} `json:"weeks"`
}

func (c calendar) toContrib() *contrib.Calendar {
	out := &contrib.Calendar{Total: c.TotalContributions, Weeks: make([]contrib.Week, 0, len(c.Weeks))}
	for _, w := range c.Weeks {
		week := contrib.Week{Days: make([]contrib.Day, 0, len(w.ContributionDays))}
		for _, d := range w.ContributionDays {
			week.Days = append(week.Days, contrib.Day{Date: d.Date, Count: d.ContributionCount, Color: d.Color})
		}
		out.Weeks = append(out.Weeks, week)
	}
	return out
}

// Client queries one GraphQL endpoint with a fixed token.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient returns a client that authenticates every request with token.
// An empty endpoint means DefaultEndpoint.
func NewClient(ctx context.Context, endpoint, token string) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNotConfigured
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return &Client{endpoint: endpoint, http: oauth2.NewClient(ctx, src)}, nil
}

// Contributions fetches the last year of contributions for username.
func (c *Client) Contributions(ctx context.Context, username string) (*contrib.Calendar, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(request{Query: contributionsQuery, Variables: map[string]any{"username": username}})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch contributions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Errors) > 0 {
		qe := &QueryError{}
		for _, e := range out.Errors {
			if e.Type == "NOT_FOUND" {
				return nil, ErrUserNotFound
			}
			qe.Messages = append(qe.Messages, e.Message)
		}
		return nil, qe
	}
	if out.Data.User == nil {
		return nil, ErrUserNotFound
	}
	return out.Data.User.ContributionsCollection.ContributionCalendar.toContrib(), nil
}
