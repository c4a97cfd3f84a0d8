// Package luxtronik talks to an Alpha Innotec heatpump over its login-gated
// Lux_WS websocket protocol. Commands are plain text frames ("LOGIN;<code>",
// "GET;<id>", "SET;<id>;<value>", "SAVE;1"); responses are XML documents.
package luxtronik

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"nhooyr.io/websocket"

	"github.com/hweijer/tapplan/core/logger"
	infralogger "github.com/hweijer/tapplan/infra/logger"
)

// Config holds the connection parameters of the heatpump.
type Config struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	LoginCode string `json:"login_code"`
	// TimeoutSeconds bounds every single request/response exchange.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// SetDefaults applies the device's factory defaults.
func (c *Config) SetDefaults() {
	if c.Port == 0 {
		c.Port = 8214
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 30
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("heatpump host is required")
	}
	if c.LoginCode == "" {
		return fmt.Errorf("heatpump login code is required")
	}
	return nil
}

// Client is a connected Lux_WS session.
type Client struct {
	conn    *websocket.Conn
	timeout time.Duration
	log     logger.Logger
}

// Dial connects and logs in, returning the client and the navigation tree.
func Dial(ctx context.Context, cfg Config) (*Client, *Navigation, error) {
	url := fmt.Sprintf("ws://%s:%d", cfg.Host, cfg.Port)
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		Subprotocols: []string{"Lux_WS"},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{
		conn:    conn,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		log:     infralogger.New("luxtronik"),
	}
	nav, err := c.login(ctx, cfg.LoginCode)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return c, nav, nil
}

// Close closes the websocket connection.
func (c *Client) Close() {
	_ = c.conn.Close(websocket.StatusNormalClosure, "")
}

// roundTrip sends one text command and waits for the next text response.
func (c *Client) roundTrip(ctx context.Context, command string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.conn.Write(ctx, websocket.MessageText, []byte(command)); err != nil {
		return nil, fmt.Errorf("send %q: %w", command, err)
	}
	for {
		kind, data, err := c.conn.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("await response to %q: %w", command, err)
		}
		if kind == websocket.MessageText {
			return data, nil
		}
	}
}

func (c *Client) login(ctx context.Context, code string) (*Navigation, error) {
	resp, err := c.roundTrip(ctx, fmt.Sprintf("LOGIN;%s", code))
	if err != nil {
		return nil, err
	}
	var nav Navigation
	if err := xml.Unmarshal(resp, &nav); err != nil {
		return nil, fmt.Errorf("parse navigation: %w", err)
	}
	c.log.Debugf("logged in, %d navigation items", len(nav.Items))
	return &nav, nil
}

// Get fetches the content of a menu page.
func (c *Client) Get(ctx context.Context, pageID string) (*Content, error) {
	resp, err := c.roundTrip(ctx, fmt.Sprintf("GET;%s", pageID))
	if err != nil {
		return nil, err
	}
	var content Content
	if err := xml.Unmarshal(resp, &content); err != nil {
		return nil, fmt.Errorf("parse content of page %s: %w", pageID, err)
	}
	return &content, nil
}

// Set writes a raw value to an item. The device answers with the refreshed
// page content.
func (c *Client) Set(ctx context.Context, itemID string, raw int) error {
	_, err := c.roundTrip(ctx, fmt.Sprintf("SET;%s;%d", itemID, raw))
	return err
}

// Save persists the pending changes on the device.
func (c *Client) Save(ctx context.Context) error {
	_, err := c.roundTrip(ctx, "SAVE;1")
	return err
}
