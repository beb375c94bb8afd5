// Package odoo is a thin XML-RPC client for the Odoo external API.
// It exposes the search_read/search_count primitives the dashboard
// fetchers are built on; all record decoding lives in record.go.
package odoo

import (
	"fmt"
	"strings"

	"github.com/kolo/xmlrpc"
	"go.uber.org/zap"
)

// Config holds Odoo connection configuration
type Config struct {
	URL      string
	Database string
	Username string
	Password string
}

// Client wraps the two XML-RPC endpoints Odoo exposes: /xmlrpc/2/common
// for authentication and /xmlrpc/2/object for model calls.
type Client struct {
	common   *xmlrpc.Client
	object   *xmlrpc.Client
	database string
	username string
	password string
	uid      int64
	logger   *zap.Logger
}

// Domain is an ordered list of [field, operator, value] conditions,
// implicitly AND-ed by the server.
type Domain []Condition

// Condition is a single [field, operator, value] triple.
type Condition []interface{}

// Cond builds one domain condition.
func Cond(field, operator string, value interface{}) Condition {
	return Condition{field, operator, value}
}

// Options are the keyword arguments accepted by search_read.
type Options struct {
	Fields []string
	Limit  int
	Order  string
}

// QueryClient is the read surface the fetchers depend on. *Client
// implements it against a live server; tests substitute a fake.
type QueryClient interface {
	SearchRead(model string, domain Domain, opts Options) ([]Record, error)
	SearchCount(model string, domain Domain) (int, error)
}

// NewClient creates a client for the given server. No network traffic
// happens until Authenticate is called.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	base := strings.TrimRight(cfg.URL, "/")

	common, err := xmlrpc.NewClient(base+"/xmlrpc/2/common", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create common endpoint client: %w", err)
	}
	object, err := xmlrpc.NewClient(base+"/xmlrpc/2/object", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create object endpoint client: %w", err)
	}

	return &Client{
		common:   common,
		object:   object,
		database: cfg.Database,
		username: cfg.Username,
		password: cfg.Password,
		logger:   logger,
	}, nil
}

// Authenticate logs in and stores the session uid. Odoo returns false
// instead of an id on bad credentials, so the reply is decoded loosely.
func (c *Client) Authenticate() error {
	var reply interface{}
	err := c.common.Call("authenticate", []interface{}{
		c.database, c.username, c.password, map[string]interface{}{},
	}, &reply)
	if err != nil {
		return fmt.Errorf("authenticate call failed: %w", err)
	}

	uid, ok := asInt64(reply)
	if !ok || uid <= 0 {
		return fmt.Errorf("authentication rejected for user %q on database %q", c.username, c.database)
	}

	c.uid = uid
	c.logger.Debug("Authenticated against Odoo",
		zap.String("database", c.database),
		zap.Int64("uid", uid))
	return nil
}

// executeKw issues a model method call through the object endpoint.
func (c *Client) executeKw(model, method string, args []interface{}, kwargs map[string]interface{}, reply interface{}) error {
	if c.uid == 0 {
		return fmt.Errorf("client is not authenticated")
	}
	params := []interface{}{c.database, c.uid, c.password, model, method, args}
	if kwargs != nil {
		params = append(params, kwargs)
	}
	if err := c.object.Call("execute_kw", params, reply); err != nil {
		return fmt.Errorf("%s.%s failed: %w", model, method, err)
	}
	return nil
}

// SearchRead returns matching records as attribute maps, in server order.
func (c *Client) SearchRead(model string, domain Domain, opts Options) ([]Record, error) {
	kwargs := map[string]interface{}{}
	if len(opts.Fields) > 0 {
		kwargs["fields"] = opts.Fields
	}
	if opts.Limit > 0 {
		kwargs["limit"] = opts.Limit
	}
	if opts.Order != "" {
		kwargs["order"] = opts.Order
	}

	var reply []interface{}
	if err := c.executeKw(model, "search_read", []interface{}{domainParam(domain)}, kwargs, &reply); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(reply))
	for _, item := range reply {
		if m, ok := item.(map[string]interface{}); ok {
			records = append(records, Record(m))
		}
	}
	return records, nil
}

// SearchCount returns the number of records matching the domain.
func (c *Client) SearchCount(model string, domain Domain) (int, error) {
	var reply interface{}
	if err := c.executeKw(model, "search_count", []interface{}{domainParam(domain)}, nil, &reply); err != nil {
		return 0, err
	}
	n, ok := asInt64(reply)
	if !ok {
		return 0, fmt.Errorf("%s.search_count returned non-numeric reply %T", model, reply)
	}
	return int(n), nil
}

// domainParam converts a Domain to the plain nested slices the XML-RPC
// encoder expects.
func domainParam(domain Domain) []interface{} {
	out := make([]interface{}, 0, len(domain))
	for _, cond := range domain {
		out = append(out, []interface{}(cond))
	}
	return out
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
