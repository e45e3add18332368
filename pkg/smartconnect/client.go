// Package smartconnect implements the subset of the Angel One SmartAPI that
// the simulator needs: session generation and LTP quotes. Request headers
// and routes follow the official SmartConnect client.
package smartconnect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const defaultRoot = "https://apiconnect.angelone.in"

var routes = map[string]string{
	"api.login":    "/rest/auth/angelbroking/user/v1/loginByPassword",
	"api.logout":   "/rest/secure/angelbroking/user/v1/logout",
	"api.ltp.data": "/rest/secure/angelbroking/order/v1/getLtpData",
}

// Config configures a Client. Only APIKey is required.
type Config struct {
	APIKey  string
	RootURL string        // default: https://apiconnect.angelone.in
	Timeout time.Duration // default: 7s

	ClientLocalIP  string // resolved from interfaces when empty
	ClientPublicIP string
	ClientMAC      string
}

// Client is an authenticated SmartAPI HTTP client. Safe for concurrent use
// after GenerateSession has completed.
type Client struct {
	apiKey     string
	rootURL    string
	httpClient *http.Client

	accessToken  string
	refreshToken string
	feedToken    string

	clientLocalIP  string
	clientPublicIP string
	clientMAC      string
}

// New creates a client. Header identity fields fall back to values resolved
// from the local interfaces.
func New(cfg Config) *Client {
	if cfg.RootURL == "" {
		cfg.RootURL = defaultRoot
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 7 * time.Second
	}
	if cfg.ClientLocalIP == "" {
		cfg.ClientLocalIP = localIPFallback()
	}
	if cfg.ClientPublicIP == "" {
		cfg.ClientPublicIP = cfg.ClientLocalIP
	}
	if cfg.ClientMAC == "" {
		cfg.ClientMAC = macFallback()
	}
	return &Client{
		apiKey:         cfg.APIKey,
		rootURL:        strings.TrimRight(cfg.RootURL, "/"),
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		clientLocalIP:  cfg.ClientLocalIP,
		clientPublicIP: cfg.ClientPublicIP,
		clientMAC:      cfg.ClientMAC,
	}
}

// FeedToken returns the feed token from the current session.
func (c *Client) FeedToken() string { return c.feedToken }

// GenerateSession logs in with client code, password/MPIN, and a TOTP code,
// storing the session tokens on the client.
func (c *Client) GenerateSession(ctx context.Context, clientCode, password, totp string) error {
	var out struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			JWTToken     string `json:"jwtToken"`
			RefreshToken string `json:"refreshToken"`
			FeedToken    string `json:"feedToken"`
		} `json:"data"`
	}
	params := map[string]any{"clientcode": clientCode, "password": password, "totp": totp}
	if err := c.post(ctx, "api.login", params, &out); err != nil {
		return fmt.Errorf("smartconnect login: %w", err)
	}
	if !out.Status {
		return fmt.Errorf("smartconnect login failed: %s", out.Message)
	}
	c.accessToken = out.Data.JWTToken
	c.refreshToken = out.Data.RefreshToken
	c.feedToken = out.Data.FeedToken
	return nil
}

// TerminateSession logs out and clears the stored tokens.
func (c *Client) TerminateSession(ctx context.Context, clientCode string) error {
	var out struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
	}
	if err := c.post(ctx, "api.logout", map[string]any{"clientcode": clientCode}, &out); err != nil {
		return err
	}
	c.accessToken, c.refreshToken, c.feedToken = "", "", ""
	return nil
}

// LTPData fetches the last traded price for an instrument, in rupees.
func (c *Client) LTPData(ctx context.Context, exchange, tradingSymbol, symbolToken string) (float64, error) {
	var out struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			LTP float64 `json:"ltp"`
		} `json:"data"`
	}
	params := map[string]any{
		"exchange":      exchange,
		"tradingsymbol": tradingSymbol,
		"symboltoken":   symbolToken,
	}
	if err := c.post(ctx, "api.ltp.data", params, &out); err != nil {
		return 0, fmt.Errorf("smartconnect ltp: %w", err)
	}
	if !out.Status {
		return 0, fmt.Errorf("smartconnect ltp failed: %s", out.Message)
	}
	return out.Data.LTP, nil
}

func (c *Client) post(ctx context.Context, route string, params map[string]any, out any) error {
	uri, ok := routes[route]
	if !ok {
		return fmt.Errorf("unknown route: %s", route)
	}
	body, err := json.Marshal(params)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rootURL+uri, bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d: %s", resp.StatusCode, truncate(raw, 200))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("couldn't parse response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(h http.Header) {
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("X-ClientLocalIP", c.clientLocalIP)
	h.Set("X-ClientPublicIP", c.clientPublicIP)
	h.Set("X-MACAddress", c.clientMAC)
	h.Set("X-PrivateKey", c.apiKey)
	h.Set("X-UserType", "USER")
	h.Set("X-SourceID", "WEB")
	if c.accessToken != "" {
		h.Set("Authorization", "Bearer "+c.accessToken)
	}
}

func localIPFallback() string {
	addrs, err := net.InterfaceAddrs()
	if err == nil {
		for _, addr := range addrs {
			if ipNet, ok := addr.(*net.IPNet); ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
				return ipNet.IP.String()
			}
		}
	}
	return "127.0.0.1"
}

func macFallback() string {
	ifs, _ := net.Interfaces()
	for _, ifc := range ifs {
		if len(ifc.HardwareAddr) > 0 {
			return ifc.HardwareAddr.String()
		}
	}
	return "00:11:22:33:44:55"
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
