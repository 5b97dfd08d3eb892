package mock

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/prompt-relay/internal/llm"
)

type Client struct {
	Response string
	Error    error
	Delay    time.Duration

	mu        sync.Mutex
	callCount int
	calls     []Call
}

// Call - один записанный вызов Chat
type Call struct {
	Request llm.ChatRequest
	At      time.Time
}

func New() *Client {
	return &Client{
		Response: "This is a mock response.",
	}
}

func (c *Client) WithResponse(response string) *Client {
	c.Response = response
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	c.mu.Lock()
	c.callCount++
	c.calls = append(c.calls, Call{Request: req, At: time.Now()})
	c.mu.Unlock()

	if c.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.Delay):
		}
	}

	if c.Error != nil {
		return "", c.Error
	}

	return c.Response, nil
}

func (c *Client) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.callCount
}

func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

func (c *Client) LastRequest() (llm.ChatRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.calls) == 0 {
		return llm.ChatRequest{}, false
	}
	return c.calls[len(c.calls)-1].Request, true
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callCount = 0
	c.calls = nil
}

var _ llm.Client = (*Client)(nil)
