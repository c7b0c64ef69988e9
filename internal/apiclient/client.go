package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brk3/habitcal/pkg/habit"
)

// Remote store actions. Every request is a POST to the same endpoint with the
// action in the body.
const (
	ActionGetData  = "GET_DATA"
	ActionAddHabit = "ADD_HABIT"
	ActionBatchAdd = "BATCH_ADD"
	ActionLogHabit = "LOG_HABIT"
)

var ErrRemote = errors.New("remote store error")

type Client struct {
	Endpoint string
	UserID   string
	HTTP     *http.Client
}

// New returns a client for endpoint. A zero timeout means requests never
// time out.
func New(endpoint, userID string, timeout time.Duration) *Client {
	return &Client{
		Endpoint: endpoint,
		UserID:   userID,
		HTTP:     &http.Client{Timeout: timeout},
	}
}

type getDataRequest struct {
	Action string `json:"action"`
	UserID string `json:"userId,omitempty"`
}

type addHabitRequest struct {
	Action     string          `json:"action"`
	UserID     string          `json:"userId,omitempty"`
	ID         string          `json:"id,omitempty"`
	Name       string          `json:"name"`
	Frequency  habit.Frequency `json:"frequency"`
	TargetDate habit.Date      `json:"targetDate"`
}

type BatchItem struct {
	ID         string     `json:"id,omitempty"`
	Name       string     `json:"name"`
	TargetDate habit.Date `json:"targetDate"`
}

type batchAddRequest struct {
	Action string      `json:"action"`
	UserID string      `json:"userId,omitempty"`
	Items  []BatchItem `json:"items"`
}

type logHabitRequest struct {
	Action  string     `json:"action"`
	UserID  string     `json:"userId,omitempty"`
	HabitID string     `json:"habitId"`
	Date    habit.Date `json:"date"`
}

// envelope catches the error shapes the endpoint uses on a 200 response.
type envelope struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) GetData(ctx context.Context) (habit.Snapshot, error) {
	body, err := c.post(ctx, getDataRequest{Action: ActionGetData, UserID: c.UserID})
	if err != nil {
		return habit.Snapshot{}, err
	}
	if err := checkEnvelope(ActionGetData, body); err != nil {
		return habit.Snapshot{}, err
	}
	var resp struct {
		Habits *[]habit.Habit `json:"habits"`
		Logs   *[]habit.Log   `json:"logs"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return habit.Snapshot{}, fmt.Errorf("%s: decode response: %w", ActionGetData, err)
	}
	if resp.Habits == nil || resp.Logs == nil {
		return habit.Snapshot{}, fmt.Errorf("%s: response missing habits or logs", ActionGetData)
	}
	return habit.Snapshot{Habits: *resp.Habits, Logs: *resp.Logs}, nil
}

// AddHabit creates one habit. An empty ID asks the remote store to assign one.
func (c *Client) AddHabit(ctx context.Context, h habit.Habit) error {
	return c.write(ctx, ActionAddHabit, addHabitRequest{
		Action:     ActionAddHabit,
		UserID:     c.UserID,
		ID:         h.ID,
		Name:       h.Name,
		Frequency:  h.Freq,
		TargetDate: h.TargetDate,
	})
}

func (c *Client) BatchAdd(ctx context.Context, habits []habit.Habit) error {
	items := make([]BatchItem, 0, len(habits))
	for _, h := range habits {
		items = append(items, BatchItem{ID: h.ID, Name: h.Name, TargetDate: h.TargetDate})
	}
	return c.write(ctx, ActionBatchAdd, batchAddRequest{
		Action: ActionBatchAdd,
		UserID: c.UserID,
		Items:  items,
	})
}

func (c *Client) LogHabit(ctx context.Context, l habit.Log) error {
	return c.write(ctx, ActionLogHabit, logHabitRequest{
		Action:  ActionLogHabit,
		UserID:  c.UserID,
		HabitID: l.HabitID,
		Date:    l.Date,
	})
}

func (c *Client) write(ctx context.Context, action string, payload any) error {
	body, err := c.post(ctx, payload)
	if err != nil {
		return err
	}
	return checkEnvelope(action, body)
}

func (c *Client) post(ctx context.Context, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	// Apps Script web apps read the raw body; text/plain is what a browser
	// fetch with a string body sends.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrRemote, res.Status)
	}
	return body, nil
}

// checkEnvelope reports an error for bodies like {"status":"error"}. Bodies
// that are not JSON objects are accepted as success.
func checkEnvelope(action string, body []byte) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	if env.Status == "error" || env.Error != "" {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return fmt.Errorf("%w: %s: %s", ErrRemote, action, msg)
	}
	return nil
}
