package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"tradesimv1/internal/execution"
	"tradesimv1/internal/strategy"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeTradeError maps an engine error to a status code and JSON body. Lookup
// failures use dedicated codes; trade rejections are 400 with the failure
// kind so clients can branch without parsing messages.
func writeTradeError(w http.ResponseWriter, err error) {
	kind := execution.KindOf(err)
	switch kind {
	case execution.KindSymbolNotFound:
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
	case execution.KindPriceUnavailable:
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to fetch price"})
	case "":
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Internal error"})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success":    false,
			"error":      err.Error(),
			"error_kind": string(kind),
		})
	}
}

type orderRequest struct {
	Stock     string      `json:"stock"`
	Qty       json.Number `json:"qty"`
	AutoTrade bool        `json:"auto_trade"`
}

// quantity parses the optional qty field; absent means 1 share.
func (r orderRequest) quantity() (int64, bool) {
	if r.Qty == "" {
		return 1, true
	}
	n, err := r.Qty.Int64()
	if err != nil {
		return 0, false
	}
	return n, true
}

// RegisterRoutes registers all simulator HTTP routes on the mux.
func RegisterRoutes(mux *http.ServeMux, eng *execution.Engine, params *strategy.ParamStore, journal *execution.Journal, hub *Hub, processStart time.Time) {
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.HandleConn(conn)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "ok",
			"uptime_sec": int(time.Since(processStart).Seconds()),
			"ws_clients": hub.ClientCount(),
		})
	})

	mux.HandleFunc("/api/ltp", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		stock := r.URL.Query().Get("stock")
		if stock == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Stock name required"})
			return
		}
		res, err := eng.LTP(r.Context(), stock)
		if err != nil {
			writeTradeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})

	mux.HandleFunc("/api/buy", tradeHandler(eng.Buy))
	mux.HandleFunc("/api/sell", tradeHandler(eng.Sell))

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		writeJSON(w, http.StatusOK, eng.Status(r.Context()))
	})

	mux.HandleFunc("/api/strategy/params", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			writeJSON(w, http.StatusOK, params.Get())
		case http.MethodPost:
			var patch map[string]any
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid JSON"})
				return
			}
			if err := params.Update(patch); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"success":    false,
					"error":      err.Error(),
					"error_kind": string(execution.KindInvalidParameter),
				})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"params":  params.Get(),
			})
		default:
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "Method not allowed"})
		}
	})

	mux.HandleFunc("/api/reset", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "Method not allowed"})
			return
		}
		balance := eng.Reset()
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Simulator reset successfully",
			"balance": balance,
		})
	})

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		limit := 100
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		if journal == nil {
			writeJSON(w, http.StatusOK, map[string]any{"transactions": []any{}})
			return
		}
		records, err := journal.Recent(limit)
		if err != nil {
			slog.Warn("journal read failed", slog.String("err", err.Error()))
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to read transactions"})
			return
		}
		if records == nil {
			records = []execution.JournalRecord{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": records})
	})
}

// tradeHandler adapts Buy/Sell to an HTTP handler; both share the same
// request and response shapes.
func tradeHandler(exec func(ctx context.Context, stock string, qty int64, autoTrade bool) (*execution.TradeResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "Method not allowed"})
			return
		}

		var req orderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid JSON"})
			return
		}
		if req.Stock == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Stock name required"})
			return
		}
		qty, ok := req.quantity()
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid quantity"})
			return
		}

		res, err := exec(r.Context(), req.Stock, qty, req.AutoTrade)
		if err != nil {
			writeTradeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"message":   res.Message,
			"balance":   res.Balance,
			"portfolio": res.Portfolio,
			"signal":    res.Signal,
		})
	}
}
