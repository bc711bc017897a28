// Package eapi implements a read-only client for the EOS command API
// (eAPI): JSON-RPC 2.0 over HTTP(S) against /command-api. One Client per
// device; the underlying HTTP transport is reused across poll cycles and
// discarded after any failure so a broken session is never silently reused.
package eapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Options holds connection settings shared by every call of a Client.
type Options struct {
	Transport string // "http" or "https"
	Port      int
	Username  string
	Password  string
	Insecure  bool // skip TLS verification (self-signed lab certs)
}

// Client talks eAPI to a single device. Safe for use by one poller
// goroutine; the session guard is for the Fetch/reset interplay.
type Client struct {
	host string
	opts Options
	url  string

	mu   sync.Mutex
	http *http.Client

	seq atomic.Uint64
}

// NewClient creates a client for the device at host. No connection is made
// until the first call.
func NewClient(host string, opts Options) *Client {
	if opts.Transport == "" {
		opts.Transport = "https"
	}
	if opts.Port == 0 {
		opts.Port = 443
	}
	return &Client{
		host: host,
		opts: opts,
		url:  fmt.Sprintf("%s://%s/command-api", opts.Transport, net.JoinHostPort(host, fmt.Sprint(opts.Port))),
	}
}

// Host returns the device management address this client targets.
func (c *Client) Host() string {
	return c.host
}

// Fetch runs one poll cycle: queries the device's operational state and
// assembles a DeviceState. `show version` is authoritative — if it fails the
// cycle fails with a typed error. The remaining queries degrade gracefully:
// a device without BGP or MLAG configured still produces a healthy state
// with those fields marked n/a, matching how operators read partial fabrics.
//
// Fetch never mutates device state; only `show` commands are issued.
func (c *Client) Fetch(ctx context.Context) (*DeviceState, error) {
	var ver showVersion
	if err := c.call(ctx, "show version", &ver); err != nil {
		return nil, err
	}

	state := &DeviceState{
		Model:       ver.ModelName,
		Version:     ver.Version,
		Uptime:      ver.uptimeDuration(),
		CPUPercent:  -1,
		Temperature: -1,
		MLAG:        "n/a",
	}

	var ifaces showInterfacesStatus
	if err := c.call(ctx, "show interfaces status", &ifaces); err == nil {
		state.Interfaces = summarizeInterfaces(ifaces)
	}

	var bgp showBGPSummary
	if err := c.call(ctx, "show ip bgp summary", &bgp); err == nil {
		state.BGP = summarizeBGP(bgp)
	}

	var mlag showMLAG
	if err := c.call(ctx, "show mlag", &mlag); err == nil {
		state.MLAG = mlagState(mlag)
	}

	var temp showTemperature
	if err := c.call(ctx, "show system environment temperature", &temp); err == nil {
		state.Temperature, state.TempAlarms = summarizeTemperature(temp)
	}

	if raw, err := c.run(ctx, "show processes top once"); err == nil {
		state.CPUPercent = parseCPU(raw)
	}

	return state, nil
}

// jsonrpc wire types for the eAPI runCmds method.

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      string    `json:"id"`
}

type rpcParams struct {
	Version int      `json:"version"`
	Cmds    []string `json:"cmds"`
	Format  string   `json:"format"`
}

type rpcResponse struct {
	Result []json.RawMessage `json:"result"`
	Error  *rpcError         `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// call runs a single command and decodes its result into out.
func (c *Client) call(ctx context.Context, command string, out interface{}) error {
	raw, err := c.run(ctx, command)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindProtocolError, Message: "unexpected result shape for " + command, Cause: err}
	}
	return nil
}

// run issues one runCmds request with a single command and returns the raw
// result. Any failure discards the cached transport so the next cycle
// rebuilds the session from scratch.
func (c *Client) run(ctx context.Context, command string) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "runCmds",
		Params:  rpcParams{Version: 1, Cmds: []string{command}, Format: "json"},
		ID:      fmt.Sprintf("fabric-pulse-%d", c.seq.Add(1)),
	})
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Message: "cannot encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Message: "cannot build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.opts.Username, c.opts.Password)

	resp, err := c.session().Do(req)
	if err != nil {
		c.discardSession()
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.discardSession()
		return nil, &Error{Kind: KindAuthFailed, Message: fmt.Sprintf("eAPI rejected credentials (HTTP %d)", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		c.discardSession()
		return nil, &Error{Kind: KindProtocolError, Message: fmt.Sprintf("unexpected HTTP status %d", resp.StatusCode)}
	}

	var rpc rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpc); err != nil {
		c.discardSession()
		return nil, &Error{Kind: KindProtocolError, Message: "malformed eAPI response", Cause: err}
	}
	if rpc.Error != nil {
		// Command-level failure: the transport is fine, the device just
		// refused the command. No session discard needed.
		return nil, &Error{Kind: KindProtocolError, Message: fmt.Sprintf("eAPI error %d: %s", rpc.Error.Code, rpc.Error.Message)}
	}
	if len(rpc.Result) != 1 {
		c.discardSession()
		return nil, &Error{Kind: KindProtocolError, Message: fmt.Sprintf("expected 1 result, got %d", len(rpc.Result))}
	}

	return rpc.Result[0], nil
}

// session returns the cached HTTP client, creating it on first use or after
// a discard.
func (c *Client) session() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.http == nil {
		c.http = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig:     &tls.Config{InsecureSkipVerify: c.opts.Insecure}, //nolint:gosec // operator-controlled lab setting
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return c.http
}

// discardSession drops the cached transport. A session that has errored is
// rebuilt on the next call rather than reused in a possibly broken state.
func (c *Client) discardSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.http != nil {
		c.http.CloseIdleConnections()
		c.http = nil
	}
}
