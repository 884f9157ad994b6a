package headline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	v1 "github.com/emrgen/headline/apis/v1"
)

// Client talks to a headline server over its REST surface.
type Client interface {
	ListCategories(ctx context.Context) ([]string, error)
	ListHeadlines(ctx context.Context, categories ...string) ([]*v1.Headline, error)
	GetHeadline(ctx context.Context, id uint) (*v1.Headline, error)
	CreateHeadline(ctx context.Context, req *v1.CreateHeadlineRequest) (*v1.Headline, error)
	UpdateHeadline(ctx context.Context, req *v1.UpdateHeadlineRequest) (*v1.Headline, error)
	DeleteHeadline(ctx context.Context, id uint) error
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("headline api: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("headline api: %d: %s %v", e.StatusCode, e.Message, e.Fields)
}

type client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the server at addr, e.g.
// "http://localhost:4021" or "http://localhost:4021/api".
func NewClient(addr string) Client {
	return NewClientWithHTTP(addr, &http.Client{Timeout: 10 * time.Second})
}

func NewClientWithHTTP(addr string, httpClient *http.Client) Client {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}

	return &client{
		baseURL: strings.TrimRight(addr, "/"),
		http:    httpClient,
	}
}

func (c *client) ListCategories(ctx context.Context) ([]string, error) {
	res := &v1.ListCategoriesResponse{}
	if err := c.do(ctx, http.MethodGet, "/categories", nil, res); err != nil {
		return nil, err
	}

	return res.Categories, nil
}

func (c *client) ListHeadlines(ctx context.Context, categories ...string) ([]*v1.Headline, error) {
	path := "/headlines"
	if len(categories) > 0 {
		path += "?" + url.Values{"categories": {strings.Join(categories, ",")}}.Encode()
	}

	res := &v1.ListHeadlinesResponse{}
	if err := c.do(ctx, http.MethodGet, path, nil, res); err != nil {
		return nil, err
	}

	return res.Headlines, nil
}

func (c *client) GetHeadline(ctx context.Context, id uint) (*v1.Headline, error) {
	res := &v1.GetHeadlineResponse{}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/headlines/%d", id), nil, res); err != nil {
		return nil, err
	}

	return res.Headline, nil
}

func (c *client) CreateHeadline(ctx context.Context, req *v1.CreateHeadlineRequest) (*v1.Headline, error) {
	res := &v1.CreateHeadlineResponse{}
	if err := c.do(ctx, http.MethodPost, "/headlines", headlineBody(req.Title, req.Category, req.Description, req.ForwardRefs, req.BackwardRefs), res); err != nil {
		return nil, err
	}

	return res.Headline, nil
}

// UpdateHeadline sends only the keys that are set on req, so unset
// optional fields keep their stored value.
func (c *client) UpdateHeadline(ctx context.Context, req *v1.UpdateHeadlineRequest) (*v1.Headline, error) {
	res := &v1.UpdateHeadlineResponse{}
	body := headlineBody(req.Title, req.Category, req.Description, req.ForwardRefs, req.BackwardRefs)
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/headlines/%d", req.Id), body, res); err != nil {
		return nil, err
	}

	return res.Headline, nil
}

func (c *client) DeleteHeadline(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/headlines/%d", id), nil, nil)
}

func headlineBody(title *string, category, description v1.OptionalString, forward, backward *[]uint) map[string]any {
	body := map[string]any{"title": title}
	if category.Set {
		body["category"] = category.Value
	}
	if description.Set {
		body["description"] = description.Value
	}
	if forward != nil {
		body["forwardRefs"] = *forward
	}
	if backward != nil {
		body["backwardRefs"] = *backward
	}

	return body
}

func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeAPIError(res.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	return json.Unmarshal(data, out)
}

// decodeAPIError reads the three error shapes the server writes:
// {message}, {message, errors} and the bare {field: [messages]} of a conflict.
func decodeAPIError(code int, data []byte) error {
	apiErr := &APIError{StatusCode: code, Message: http.StatusText(code)}

	var body struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
		apiErr.Fields = body.Errors
		return apiErr
	}

	var fields map[string][]string
	if err := json.Unmarshal(data, &fields); err == nil && len(fields) > 0 {
		apiErr.Fields = fields
	}

	return apiErr
}
