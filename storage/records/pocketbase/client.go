package pbclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core"
	"github.com/skiddy/skiddy/core/record"
)

// Client speaks the hosted record service's REST API. The service owns all
// persistence; this client only shuttles JSON and maps HTTP failures onto
// the record error taxonomy.
type Client struct {
	baseURL string
	http    *http.Client
	auth    *record.AuthStore
}

var _ record.Client = (*Client)(nil) // interface compliance check

func New(conf *core.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.Backend.URL, "/"),
		http:    &http.Client{Timeout: conf.Backend.Timeout},
		auth:    record.NewAuthStore(),
	}
}

func (c *Client) AuthStore() *record.AuthStore { return c.auth }

func (c *Client) AuthWithPassword(ctx context.Context, identity, password string) (record.AuthData, error) {
	body := map[string]string{"identity": identity, "password": password}
	var data record.AuthData
	err := c.do(ctx, http.MethodPost, "/api/collections/"+record.CollectionUsers+"/auth-with-password", nil, body, &data)
	if err != nil {
		return record.AuthData{}, err
	}
	c.auth.Save(data.Token, &data.User)
	return data, nil
}

func (c *Client) GetRecord(ctx context.Context, collection, id string, q record.Query, dst interface{}) error {
	path := "/api/collections/" + url.PathEscape(collection) + "/records/" + url.PathEscape(id)
	return c.do(ctx, http.MethodGet, path, queryValues(q), nil, dst)
}

// listEnvelope is the paginated response wrapper around record lists.
type listEnvelope struct {
	Page       int             `json:"page"`
	PerPage    int             `json:"perPage"`
	TotalItems int             `json:"totalItems"`
	Items      json.RawMessage `json:"items"`
}

func (c *Client) ListRecords(ctx context.Context, collection string, q record.Query, dst interface{}) error {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = 200
	}
	path := "/api/collections/" + url.PathEscape(collection) + "/records"

	var env listEnvelope
	if err := c.do(ctx, http.MethodGet, path, queryValues(q), nil, &env); err != nil {
		return err
	}
	return errors.Wrap(json.Unmarshal(env.Items, dst), "decoding record list")
}

func (c *Client) CreateRecord(ctx context.Context, collection string, body, dst interface{}) error {
	path := "/api/collections/" + url.PathEscape(collection) + "/records"
	return c.do(ctx, http.MethodPost, path, nil, body, dst)
}

func (c *Client) UpdateRecord(ctx context.Context, collection, id string, body, dst interface{}) error {
	path := "/api/collections/" + url.PathEscape(collection) + "/records/" + url.PathEscape(id)
	return c.do(ctx, http.MethodPatch, path, nil, body, dst)
}

func (c *Client) DeleteRecord(ctx context.Context, collection, id string) error {
	path := "/api/collections/" + url.PathEscape(collection) + "/records/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) FileURL(collection, recordID, filename, thumb string) string {
	u := c.baseURL + "/api/files/" +
		url.PathEscape(collection) + "/" + url.PathEscape(recordID) + "/" + url.PathEscape(filename)
	if thumb != "" {
		u += "?thumb=" + url.QueryEscape(thumb)
	}
	return u
}

func queryValues(q record.Query) url.Values {
	v := make(url.Values)
	if q.Filter != "" {
		v.Set("filter", q.Filter)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Expand != "" {
		v.Set("expand", q.Expand)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("perPage", strconv.Itoa(q.PerPage))
	}
	return v
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dst interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.auth.Token(); token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WithMessage(record.ErrBackendUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return classifyStatus(resp.StatusCode, resp.Body)
	}
	if dst == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(dst), "decoding response")
}

// apiError is the backend's error payload.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func classifyStatus(status int, body io.Reader) error {
	var payload apiError
	_ = json.NewDecoder(body).Decode(&payload)
	msg := payload.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	msg = fmt.Sprintf("%s (status %d)", msg, status)

	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized:
		return errors.WithMessage(record.ErrAuthenticationFailed, msg)
	case http.StatusForbidden:
		return errors.WithMessage(record.ErrAccessDenied, msg)
	case http.StatusNotFound:
		return errors.WithMessage(record.ErrNotFound, msg)
	case http.StatusTooManyRequests:
		return errors.WithMessage(record.ErrThrottled, msg)
	default:
		return errors.WithMessage(record.ErrBackendUnavailable, msg)
	}
}
