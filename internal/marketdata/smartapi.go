package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"

	"tradesimv1/internal/model"
	"tradesimv1/pkg/smartconnect"
)

const defaultScripMasterURL = "https://margincalculator.angelbroking.com/OpenAPI_File/files/OpenAPIScripMaster.json"

// SmartAPIConfig configures the Angel One market data provider.
type SmartAPIConfig struct {
	APIKey     string
	ClientCode string
	Password   string // MPIN
	TOTPSecret string

	Exchange       string // default: NSE
	ScripMasterURL string
	ScripCachePath string
	Timeout        time.Duration
}

// SmartAPI resolves symbols via the Angel One instrument master and quotes
// prices via SmartConnect. The session is established lazily on first use so
// construction never blocks on network I/O.
type SmartAPI struct {
	cfg    SmartAPIConfig
	client *smartconnect.Client
	http   *http.Client
	log    *slog.Logger

	mu       sync.Mutex
	loggedIn bool
	scrips   []Scrip
}

// NewSmartAPI creates the provider. No network calls happen here.
func NewSmartAPI(cfg SmartAPIConfig, log *slog.Logger) *SmartAPI {
	if cfg.Exchange == "" {
		cfg.Exchange = "NSE"
	}
	if cfg.ScripMasterURL == "" {
		cfg.ScripMasterURL = defaultScripMasterURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &SmartAPI{
		cfg:    cfg,
		client: smartconnect.New(smartconnect.Config{APIKey: cfg.APIKey, Timeout: cfg.Timeout}),
		http:   &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

// ensureReady lazily logs in and loads the scrip master. Serialized so
// concurrent first requests produce a single login.
func (s *SmartAPI) ensureReady(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loggedIn {
		code, err := totp.GenerateCode(s.cfg.TOTPSecret, time.Now())
		if err != nil {
			return fmt.Errorf("totp: %w", err)
		}
		if err := s.client.GenerateSession(ctx, s.cfg.ClientCode, s.cfg.Password, code); err != nil {
			return err
		}
		s.loggedIn = true
		s.log.Info("smartapi session established", slog.String("client", s.cfg.ClientCode))
	}

	if s.scrips == nil {
		scrips, err := loadScrips(ctx, s.http, s.cfg.ScripMasterURL, s.cfg.ScripCachePath)
		if err != nil {
			return err
		}
		s.scrips = scrips
		s.log.Info("scrip master loaded", slog.Int("scrips", len(scrips)))
	}
	return nil
}

// Resolve maps a stock name to an instrument.
func (s *SmartAPI) Resolve(ctx context.Context, name string) (model.Instrument, error) {
	if err := s.ensureReady(ctx); err != nil {
		return model.Instrument{}, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	s.mu.Lock()
	scrip, ok := findScrip(s.scrips, name)
	s.mu.Unlock()
	if !ok {
		return model.Instrument{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return model.Instrument{
		Symbol:   scrip.Symbol,
		Token:    scrip.Token,
		Exchange: s.cfg.Exchange,
	}, nil
}

// LTP fetches the last traded price for an instrument.
func (s *SmartAPI) LTP(ctx context.Context, inst model.Instrument) (float64, error) {
	if err := s.ensureReady(ctx); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	price, err := s.client.LTPData(ctx, inst.Exchange, inst.Symbol, inst.Token)
	if err != nil {
		// Sessions expire server-side; force a fresh login on the next call.
		s.mu.Lock()
		s.loggedIn = false
		s.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("%w: non-positive ltp for %s", ErrUnavailable, inst.Symbol)
	}
	return price, nil
}
