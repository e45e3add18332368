package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Scrip is one tradable NSE equity from the instrument master.
type Scrip struct {
	Symbol string `json:"symbol"`
	Token  string `json:"token"`
}

// loadScrips returns the NSE scrip list, preferring the local cache file and
// falling back to a fresh download. The master is refreshed daily upstream
// but symbols/tokens are stable enough that a stale cache is acceptable.
func loadScrips(ctx context.Context, client *http.Client, url, cachePath string) ([]Scrip, error) {
	if raw, err := os.ReadFile(cachePath); err == nil {
		var cached []Scrip
		if err := json.Unmarshal(raw, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	scrips, err := downloadScrips(ctx, client, url)
	if err != nil {
		return nil, err
	}
	saveScripCache(cachePath, scrips)
	return scrips, nil
}

func downloadScrips(ctx context.Context, client *http.Client, url string) ([]Scrip, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrip master download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrip master download: http %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseScrips(raw)
}

// parseScrips extracts NSE equities from the instrument master. The feed's
// field names have drifted over time, so each field is read from a list of
// candidate keys.
func parseScrips(raw []byte) ([]Scrip, error) {
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		// Some mirrors wrap the list in {"data": [...]}.
		var wrapped struct {
			Data []map[string]any `json:"data"`
		}
		if err2 := json.Unmarshal(raw, &wrapped); err2 != nil || wrapped.Data == nil {
			return nil, fmt.Errorf("scrip master parse: %w", err)
		}
		items = wrapped.Data
	}

	var out []Scrip
	for _, item := range items {
		exch := firstString(item, "exch_seg", "exchange", "exch")
		if !strings.HasPrefix(strings.ToUpper(exch), "N") {
			continue
		}
		symbol := firstString(item, "symbol", "tradingsymbol", "name")
		token := firstString(item, "token", "symboltoken", "instrument_token")
		if symbol == "" || token == "" {
			continue
		}
		out = append(out, Scrip{Symbol: strings.ToUpper(symbol), Token: token})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("scrip master parse: no NSE scrips found")
	}
	return out, nil
}

// firstString returns the first non-empty string value among the keys.
// Numeric tokens are formatted without a decimal point.
func firstString(item map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := item[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

// saveScripCache writes the cache best-effort; a failed write only means the
// next start downloads again.
func saveScripCache(path string, scrips []Scrip) {
	raw, err := json.Marshal(scrips)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(path, raw, 0o644)
}

// findScrip resolves a user-supplied stock name against the scrip list.
// Matching order: exact trading symbol, the "-EQ" equity series variant,
// then the first prefix match.
func findScrip(scrips []Scrip, name string) (Scrip, bool) {
	q := strings.ToUpper(strings.TrimSpace(name))
	if q == "" {
		return Scrip{}, false
	}

	for _, s := range scrips {
		if s.Symbol == q {
			return s, true
		}
	}
	if !strings.HasSuffix(q, "-EQ") {
		withEQ := q + "-EQ"
		for _, s := range scrips {
			if s.Symbol == withEQ {
				return s, true
			}
		}
	}
	for _, s := range scrips {
		if strings.HasPrefix(s.Symbol, q) {
			return s, true
		}
	}
	return Scrip{}, false
}
