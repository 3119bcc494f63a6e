// Package client is a typed HTTP client for the FitJourney API, plus small
// list wrappers that show edits before the server confirms them.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to one API server as one user.
type Client struct {
	baseURL    string
	token      string
	language   string
	httpClient *http.Client
}

// New returns a client for baseURL authenticated with token. An empty token
// is allowed for Login.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SetLanguage sends lang as Accept-Language, which picks the display language
// for users without saved preferences.
func (c *Client) SetLanguage(lang string) {
	c.language = lang
}

// APIError is a non-2xx response. Message is the server's {"error": ...} text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0 if err is not an *APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsConflict reports a 409, e.g. a second weight or habit log for the same date.
func IsConflict(err error) bool { return StatusOf(err) == http.StatusConflict }

// IsNotFound reports a 404.
func IsNotFound(err error) bool { return StatusOf(err) == http.StatusNotFound }

// do sends one request. in is encoded as the JSON body when non-nil; out is
// decoded from a 2xx body when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func idPath(prefix string, id int) string {
	return prefix + "/" + strconv.Itoa(id)
}

/* ─── Endpoints ──────────────────────────────────────────────────────── */

// Login exchanges credentials for a token and stores it on the client.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/login", nil,
		map[string]string{"username": username, "password": password}, &resp)
	if err != nil {
		return "", err
	}
	c.token = resp.Token
	return resp.Token, nil
}

// Meals returns one day's meals with totals. An empty date means today.
func (c *Client) Meals(ctx context.Context, date string) (MealDay, error) {
	var q url.Values
	if date != "" {
		q = url.Values{"date": {date}}
	}
	var day MealDay
	err := c.do(ctx, http.MethodGet, "/api/meals", q, nil, &day)
	return day, err
}

func (c *Client) CreateMeal(ctx context.Context, in MealInput) (Meal, error) {
	var m Meal
	err := c.do(ctx, http.MethodPost, "/api/meals", nil, in, &m)
	return m, err
}

// UpdateMeal sends a partial update; nil fields in patch are left unchanged.
func (c *Client) UpdateMeal(ctx context.Context, id int, patch MealPatch) (Meal, error) {
	var m Meal
	err := c.do(ctx, http.MethodPut, idPath("/api/meals", id), nil, patch, &m)
	return m, err
}

func (c *Client) DeleteMeal(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/meals", id), nil, nil, nil)
}

// Habits lists habits with their stats.
func (c *Client) Habits(ctx context.Context, activeOnly bool) ([]Habit, error) {
	var q url.Values
	if activeOnly {
		q = url.Values{"active": {"true"}}
	}
	var habits []Habit
	err := c.do(ctx, http.MethodGet, "/api/habits", q, nil, &habits)
	return habits, err
}

// HabitLogs returns one habit's logs in [start, end]. Empty bounds use the
// server's default window.
func (c *Client) HabitLogs(ctx context.Context, habitID int, start, end string) ([]HabitLog, error) {
	q := url.Values{}
	if start != "" && end != "" {
		q.Set("start", start)
		q.Set("end", end)
	}
	var logs []HabitLog
	err := c.do(ctx, http.MethodGet, idPath("/api/habits", habitID)+"/logs", q, nil, &logs)
	return logs, err
}

// LogHabit records value for habitID on date (empty means today).
func (c *Client) LogHabit(ctx context.Context, habitID int, date string, value float64) (HabitLog, error) {
	var l HabitLog
	body := struct {
		Date  string  `json:"date,omitempty"`
		Value float64 `json:"value"`
	}{date, value}
	err := c.do(ctx, http.MethodPost, idPath("/api/habits", habitID)+"/logs", nil, body, &l)
	return l, err
}

func (c *Client) UpdateHabitLog(ctx context.Context, id int, value float64) (HabitLog, error) {
	var l HabitLog
	err := c.do(ctx, http.MethodPut, idPath("/api/habit-logs", id), nil, map[string]float64{"value": value}, &l)
	return l, err
}

func (c *Client) DeleteHabitLog(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/habit-logs", id), nil, nil, nil)
}

// Dashboard returns the day's summary. An empty date means today.
func (c *Client) Dashboard(ctx context.Context, date string) (Dashboard, error) {
	var q url.Values
	if date != "" {
		q = url.Values{"date": {date}}
	}
	var d Dashboard
	err := c.do(ctx, http.MethodGet, "/api/dashboard", q, nil, &d)
	return d, err
}
