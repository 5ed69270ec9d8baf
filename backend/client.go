// Package backend is the HTTP client for the tournament platform API the
// portal fronts. All durable data (tournaments, categories, players,
// registrations, matches, groups) lives behind this collaborator; the portal
// passes the caller's bearer token through untouched.
//
// Rate limiting is handled via a token bucket limiter so that bursts of
// partner searches and bracket refreshes cannot flood the platform.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/beachpoint/portal/models"
)

// Error is a non-2xx platform response. Message carries the backend's own
// message verbatim when the body had one, so callers can surface it as-is.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// Client is the shared HTTP client for all platform endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a platform HTTP client with rate limiting.
func NewClient(baseURL string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), requestsPerMinute/4+1),
		logger:     logger,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, token string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("backend call failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode))
		return &Error{StatusCode: resp.StatusCode, Message: extractMessage(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response %s: %w", path, err)
		}
	}
	return nil
}

// extractMessage pulls the platform's error message out of a failure body.
func extractMessage(body []byte) string {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	return truncate(body, 200)
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}

// GetTournament fetches one tournament record.
func (c *Client) GetTournament(ctx context.Context, token string, tournamentID int) (*models.Tournament, error) {
	var tournament models.Tournament
	path := fmt.Sprintf("/tournaments/%d", tournamentID)
	if err := c.do(ctx, http.MethodGet, path, nil, &tournament, token); err != nil {
		return nil, err
	}
	return &tournament, nil
}

// ListCategories fetches all categories of a tournament.
func (c *Client) ListCategories(ctx context.Context, token string, tournamentID int) ([]models.Category, error) {
	var categories []models.Category
	path := fmt.Sprintf("/tournaments/%d/categories", tournamentID)
	if err := c.do(ctx, http.MethodGet, path, nil, &categories, token); err != nil {
		return nil, err
	}
	return categories, nil
}

// ListPlayers fetches the full partner candidate pool.
func (c *Client) ListPlayers(ctx context.Context, token string) ([]models.Player, error) {
	var players []models.Player
	if err := c.do(ctx, http.MethodGet, "/users", nil, &players, token); err != nil {
		return nil, err
	}
	return players, nil
}

// CreateTournamentRegistration submits the tournament-level registration (step 1).
func (c *Client) CreateTournamentRegistration(ctx context.Context, token string, in models.TournamentRegistrationInput) error {
	return c.do(ctx, http.MethodPost, "/beach-tennis/tournament-registrations", in, nil, token)
}

// CreateCategoryRegistration submits one category registration (step 2).
func (c *Client) CreateCategoryRegistration(ctx context.Context, token string, in models.CategoryRegistrationInput) error {
	return c.do(ctx, http.MethodPost, "/beach-tennis/category-registrations", in, nil, token)
}

// ListGroups fetches the round-robin groups of a category.
func (c *Client) ListGroups(ctx context.Context, token string, tournamentID, categoryID int) ([]models.Group, error) {
	var groups []models.Group
	path := fmt.Sprintf("/tournaments/%d/categories/%d/groups", tournamentID, categoryID)
	if err := c.do(ctx, http.MethodGet, path, nil, &groups, token); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListMatches fetches the matches of a category.
func (c *Client) ListMatches(ctx context.Context, token string, tournamentID, categoryID int) ([]models.Match, error) {
	var matches []models.Match
	path := fmt.Sprintf("/tournaments/%d/categories/%d/matches", tournamentID, categoryID)
	if err := c.do(ctx, http.MethodGet, path, nil, &matches, token); err != nil {
		return nil, err
	}
	return matches, nil
}

// ListCategoryRegistrations fetches the registrations of a category.
func (c *Client) ListCategoryRegistrations(ctx context.Context, token string, categoryID, tournamentID int) ([]models.CategoryRegistration, error) {
	var regs []models.CategoryRegistration
	path := fmt.Sprintf("/beach-tennis/category-registrations/%d/%d", categoryID, tournamentID)
	if err := c.do(ctx, http.MethodGet, path, nil, &regs, token); err != nil {
		return nil, err
	}
	return regs, nil
}
