package dummyclient

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core/record"
)

// Client is an in-memory record.Client used by tests. Records are kept as
// JSON-shaped maps; filtering supports the subset of the backend's filter
// language this module emits (see filter.go).
type Client struct {
	mu          sync.RWMutex
	auth        *record.AuthStore
	collections map[string][]map[string]interface{}
	passwords   map[string]string // identity -> password
	tokenTTL    time.Duration
	failErr     error
}

var _ record.Client = (*Client)(nil) // interface compliance check

func Open() *Client {
	return &Client{
		auth:        record.NewAuthStore(),
		collections: make(map[string][]map[string]interface{}),
		passwords:   make(map[string]string),
		tokenTTL:    time.Hour,
	}
}

// FailWith makes every subsequent record operation return err; nil resets.
func (c *Client) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failErr = err
}

// Seed inserts rec into collection, assigning an id and timestamps when
// absent, and returns the record id.
func (c *Client) Seed(collection string, rec interface{}) string {
	m := toMap(rec)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insert(collection, m)
}

// AddUser seeds a user with login credentials (email and username both work
// as the identity).
func (c *Client) AddUser(usr record.User, password string) record.User {
	m := toMap(usr)
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.insert(record.CollectionUsers, m)
	usr.ID = id
	if usr.Email != "" {
		c.passwords[strings.ToLower(usr.Email)] = password
	}
	if usr.Username != "" {
		c.passwords[strings.ToLower(usr.Username)] = password
	}
	return usr
}

func (c *Client) insert(collection string, m map[string]interface{}) string {
	id, _ := m["id"].(string)
	if id == "" {
		id = uuid.NewString()
		m["id"] = id
	}
	now := time.Now().UTC().Format("2006-01-02 15:04:05.000Z")
	if m["created"] == nil || m["created"] == "" {
		m["created"] = now
	}
	m["updated"] = now
	if m["collectionName"] == nil || m["collectionName"] == "" {
		m["collectionName"] = collection
	}
	c.collections[collection] = append(c.collections[collection], m)
	return id
}

func (c *Client) AuthStore() *record.AuthStore { return c.auth }

func (c *Client) AuthWithPassword(ctx context.Context, identity, password string) (record.AuthData, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.failErr != nil {
		return record.AuthData{}, c.failErr
	}

	identity = strings.ToLower(identity)
	pwd, ok := c.passwords[identity]
	if !ok || pwd != password {
		return record.AuthData{}, errors.WithMessage(record.ErrAuthenticationFailed, "failed to authenticate")
	}

	var usr record.User
	for _, m := range c.collections[record.CollectionUsers] {
		email, _ := m["email"].(string)
		uname, _ := m["username"].(string)
		if strings.ToLower(email) == identity || strings.ToLower(uname) == identity {
			fromMap(m, &usr)
			break
		}
	}
	if usr.ID == "" {
		return record.AuthData{}, errors.WithMessage(record.ErrAuthenticationFailed, "failed to authenticate")
	}

	token, err := c.mintToken(usr.ID)
	if err != nil {
		return record.AuthData{}, errors.Wrap(err, "minting token")
	}
	c.auth.Save(token, &usr)
	return record.AuthData{Token: token, User: usr}, nil
}

func (c *Client) mintToken(sub string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  sub,
		"type": "authRecord",
		"exp":  time.Now().Add(c.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("dummy"))
}

func (c *Client) GetRecord(ctx context.Context, collection, id string, q record.Query, dst interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.failErr != nil {
		return c.failErr
	}

	for _, m := range c.collections[collection] {
		if m["id"] == id {
			fromMap(c.expanded(m, q.Expand), dst)
			return nil
		}
	}
	return record.ErrNotFound
}

func (c *Client) ListRecords(ctx context.Context, collection string, q record.Query, dst interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.failErr != nil {
		return c.failErr
	}

	var items []map[string]interface{}
	for _, m := range c.collections[collection] {
		if matchFilter(m, q.Filter) {
			items = append(items, c.expanded(m, q.Expand))
		}
	}
	sortRecords(items, q.Sort)

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = 200
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * perPage
	if start > len(items) {
		start = len(items)
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	fromMap(items[start:end], dst)
	return nil
}

func (c *Client) CreateRecord(ctx context.Context, collection string, body, dst interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failErr != nil {
		return c.failErr
	}

	m := toMap(body)
	c.insert(collection, m)
	if dst != nil {
		fromMap(m, dst)
	}
	return nil
}

func (c *Client) UpdateRecord(ctx context.Context, collection, id string, body, dst interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failErr != nil {
		return c.failErr
	}

	for _, m := range c.collections[collection] {
		if m["id"] == id {
			for k, v := range toMap(body) {
				m[k] = v
			}
			m["updated"] = time.Now().UTC().Format("2006-01-02 15:04:05.000Z")
			if dst != nil {
				fromMap(m, dst)
			}
			return nil
		}
	}
	return record.ErrNotFound
}

func (c *Client) DeleteRecord(ctx context.Context, collection, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failErr != nil {
		return c.failErr
	}

	recs := c.collections[collection]
	for i, m := range recs {
		if m["id"] == id {
			c.collections[collection] = append(recs[:i], recs[i+1:]...)
			return nil
		}
	}
	return record.ErrNotFound
}

func (c *Client) FileURL(collection, recordID, filename, thumb string) string {
	u := "http://dummy.local/api/files/" + collection + "/" + recordID + "/" + filename
	if thumb != "" {
		u += "?thumb=" + thumb
	}
	return u
}

// expanded resolves single-relation expands (instructor, user, course,
// lesson) against the corresponding collections.
func (c *Client) expanded(m map[string]interface{}, expand string) map[string]interface{} {
	if expand == "" {
		return m
	}
	out := make(map[string]interface{}, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	exp := make(map[string]interface{})
	for _, field := range strings.Split(expand, ",") {
		field = strings.TrimSpace(field)
		relID, _ := m[field].(string)
		if relID == "" {
			continue
		}
		var relColl string
		switch field {
		case "instructor", "user":
			relColl = record.CollectionUsers
		case "course":
			relColl = record.CollectionCourses
		case "lesson":
			relColl = record.CollectionLessons
		default:
			continue
		}
		for _, rel := range c.collections[relColl] {
			if rel["id"] == relID {
				exp[field] = rel
				break
			}
		}
	}
	if len(exp) > 0 {
		out["expand"] = exp
	}
	return out
}

func sortRecords(items []map[string]interface{}, sortExpr string) {
	sortExpr = strings.TrimSpace(sortExpr)
	if sortExpr == "" {
		return
	}
	field := sortExpr
	descending := strings.HasPrefix(field, "-")
	if descending {
		field = field[1:]
	}
	sort.SliceStable(items, func(i, j int) bool {
		less := lessValue(items[i][field], items[j][field])
		if descending {
			return !less && !equalValue(items[i][field], items[j][field])
		}
		return less
	})
}

func lessValue(a, b interface{}) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af < bf
	}
	as, _ := a.(string)
	bs, _ := b.(string)
	return as < bs
}

func equalValue(a, b interface{}) bool {
	return !lessValue(a, b) && !lessValue(b, a)
}

// toMap / fromMap shuttle typed records through their JSON shape.
func toMap(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		cp := make(map[string]interface{}, len(m))
		for k, val := range m {
			cp[k] = val
		}
		return cp
	}
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	m := make(map[string]interface{})
	if err = json.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	return m
}

func fromMap(src, dst interface{}) {
	raw, err := json.Marshal(src)
	if err != nil {
		panic(err)
	}
	if err = json.Unmarshal(raw, dst); err != nil {
		panic(err)
	}
}
