package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"masroofy/internal/core"
	"masroofy/internal/notify"
	"masroofy/internal/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]any{
		"store": map[string]any{
			"transactions": len(s.snapshot()),
			"status":       "ok",
		},
		"report_cache": map[string]any{
			"entries": s.reportCache.Len(),
			"status":  "ok",
		},
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ready",
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	txs := core.ApplyFilter(s.snapshot(), filter)
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": txs,
		"count":        len(txs),
	})
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.toInput()
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tx, err := s.store.Add(r.Context(), in)
	if err != nil {
		s.persistenceFailure(w, r, "add", err)
		return
	}

	s.logger.InfoContext(r.Context(), "Transaction added",
		"transaction_id", tx.ID, "type", tx.Type, "amount", tx.Amount, "category", tx.Category)
	writeJSON(w, http.StatusCreated, mutationResponse{
		Transaction:  &tx,
		Notification: currentNotification(s.notifier),
	})
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDPath(r.URL.Path)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		s.editTransaction(w, r, id)
	case http.MethodDelete:
		s.deleteTransaction(w, r, id)
	default:
		methodNotAllowed(w, "PUT, PATCH, DELETE")
	}
}

func (s *Server) editTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	var req transactionPatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		errorJSON(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.Edit(r.Context(), id, patch); err != nil {
		if errors.Is(err, core.ErrTransactionNotFound) {
			errorJSON(w, http.StatusNotFound, "transaction not found")
			return
		}
		s.persistenceFailure(w, r, "edit", err)
		return
	}

	s.logger.InfoContext(r.Context(), "Transaction updated", "transaction_id", id)
	writeJSON(w, http.StatusOK, mutationResponse{
		Notification: currentNotification(s.notifier),
	})
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.persistenceFailure(w, r, "delete", err)
		return
	}

	s.logger.InfoContext(r.Context(), "Transaction deleted", "transaction_id", id)
	writeJSON(w, http.StatusOK, mutationResponse{
		Notification: currentNotification(s.notifier),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, core.Summarize(s.snapshot()))
}

type reportResponse struct {
	Window      core.Window          `json:"window"`
	Income      float64              `json:"income"`
	Expenses    float64              `json:"expenses"`
	Categories  []core.CategoryTotal `json:"categories"`
	SavingsRate *float64             `json:"savings_rate"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	raw := r.URL.Query().Get("range")
	if raw == "" {
		raw = string(core.WindowThisMonth)
	}
	window, err := core.ParseWindow(raw)
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid range: must be one of month, year, all")
		return
	}

	if cached, ok := s.reportCache.Get(string(window)); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	gen := s.reportGen.Load()
	txs := s.snapshot()
	now := core.Date{Time: time.Now()}
	windowed := core.FilterByWindow(txs, window, now)
	totals := core.Summarize(windowed)

	report := reportResponse{
		Window:     window,
		Income:     totals.Income,
		Expenses:   totals.Expenses,
		Categories: core.ExpensesByCategory(windowed),
	}

	// The savings rate deliberately spans the entire history, not the
	// selected window. A non-finite rate (no income yet) is sent as
	// null so clients render "N/A" instead of a bogus number.
	rate := core.Summarize(txs).SavingsRate()
	if !math.IsNaN(rate) && !math.IsInf(rate, 0) {
		report.SavingsRate = &rate
	}

	s.cacheReport(gen, string(window), report)
	writeJSON(w, http.StatusOK, report)
}

// cacheReport stores a computed report unless a mutation committed
// since the snapshot was taken; caching then would serve the
// pre-mutation report until the TTL expires.
func (s *Server) cacheReport(gen uint64, key string, report reportResponse) {
	if s.reportGen.Load() != gen {
		return
	}
	s.reportCache.Set(key, report)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	var suggested []string
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		txType, err := core.ParseType(raw)
		if err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid type: must be income or expense")
			return
		}
		suggested = core.SuggestedCategories(txType)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"suggested": suggested,
		"used":      core.Categories(s.snapshot()),
	})
}

func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	if n, visible := s.notifier.Current(); visible {
		writeJSON(w, http.StatusOK, map[string]any{
			"visible": true,
			"message": n.Message,
			"kind":    n.Kind,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"visible": false})
}

// persistenceFailure reports a mutation that did not reach durable
// storage. The banner flips to an error so the user knows the change
// was not saved.
func (s *Server) persistenceFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logger.ErrorContext(r.Context(), "Mutation not durably saved",
		"operation", op, "error", err)
	if errors.Is(err, storage.ErrPersistence) {
		s.notifier.Publish(notify.Error, "Your change could not be saved!")
	}
	errorJSON(w, http.StatusInternalServerError, "change not saved")
}

func currentNotification(n *notify.Notifier) *notify.Notification {
	if current, visible := n.Current(); visible {
		return &current
	}
	return nil
}
