package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"jarras/internal/backup"
	"jarras/internal/core"
	"jarras/internal/services"
)

// HandlerProvider wraps the LedgerService and exposes HTTP handlers.
type HandlerProvider struct {
	svc *services.LedgerService
}

// NewHandler returns a new handler provider.
func NewHandler(svc *services.LedgerService) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}

// ledgerResponse is the read model rendered to the UI.
type ledgerResponse struct {
	Saldos      map[core.Jar]core.Money `json:"saldos"`
	Historial   []core.Transaction      `json:"historial_transacciones"`
	HistorialLF []core.GrowthPoint      `json:"historial_lf"`
	Total       core.Money              `json:"total"`
	PlantStage  core.Stage              `json:"plant_stage"`
	Theme       core.Theme              `json:"theme"`
}

func toLedgerResponse(s core.State) ledgerResponse {
	return ledgerResponse{
		Saldos:      s.Balances,
		Historial:   s.History,
		HistorialLF: s.Growth,
		Total:       s.TotalBalance(),
		PlantStage:  s.GrowthStage(),
		Theme:       s.Theme,
	}
}

type incomeRequest struct {
	Monto       json.Number `json:"monto"`
	Descripcion string      `json:"descripcion"`
}

type jarRequest struct {
	Monto       json.Number `json:"monto"`
	Descripcion string      `json:"descripcion"`
	Jarra       string      `json:"jarra"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

// GetLedgerHandler handles GET /api/ledger.
func (h *HandlerProvider) GetLedgerHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toLedgerResponse(h.svc.State()))
}

// AddIncomeHandler handles POST /api/incomes: a distributed income.
func (h *HandlerProvider) AddIncomeHandler(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	amount, err := parseAmount(req.Monto)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	state, err := h.svc.AddIncome(r.Context(), amount, req.Descripcion)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLedgerResponse(state))
}

// AddDirectIncomeHandler handles POST /api/incomes/direct.
func (h *HandlerProvider) AddDirectIncomeHandler(w http.ResponseWriter, r *http.Request) {
	req, jar, amount, ok := h.decodeJarRequest(w, r)
	if !ok {
		return
	}

	state, err := h.svc.AddDirectIncome(r.Context(), amount, req.Descripcion, jar)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLedgerResponse(state))
}

// WithdrawHandler handles POST /api/withdrawals.
func (h *HandlerProvider) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	req, jar, amount, ok := h.decodeJarRequest(w, r)
	if !ok {
		return
	}

	state, err := h.svc.Withdraw(r.Context(), amount, req.Descripcion, jar)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLedgerResponse(state))
}

func (h *HandlerProvider) decodeJarRequest(w http.ResponseWriter, r *http.Request) (jarRequest, core.Jar, core.Money, bool) {
	var req jarRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return req, "", core.Money{}, false
	}
	jar, err := core.ParseJar(req.Jarra)
	if err != nil {
		writeDomainError(w, err)
		return req, "", core.Money{}, false
	}
	amount, err := parseAmount(req.Monto)
	if err != nil {
		writeDomainError(w, err)
		return req, "", core.Money{}, false
	}
	return req, jar, amount, true
}

// DeleteTransactionHandler handles DELETE /api/transactions/{id}. Deleting
// an unknown id succeeds: reversal is idempotent.
func (h *HandlerProvider) DeleteTransactionHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction id")
		return
	}

	if _, err := h.svc.DeleteTransaction(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetThemeHandler handles PUT /api/theme.
func (h *HandlerProvider) SetThemeHandler(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	state, err := h.svc.SetTheme(r.Context(), core.Theme(req.Theme))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerResponse(state))
}

// ExportBackupHandler handles GET /api/backup: the snapshot download.
func (h *HandlerProvider) ExportBackupHandler(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.ExportBackup()
	body, err := snap.Encode()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", backup.Filename(snap.ExportDate)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ImportBackupHandler handles POST /api/backup: restore from a snapshot
// file sent as the request body.
func (h *HandlerProvider) ImportBackupHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 8<<20) // 8MB cap for backup files
	defer r.Body.Close()

	raw, err := readAll(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable backup file")
		return
	}

	snap, err := backup.Parse(raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	state, err := h.svc.ImportBackup(r.Context(), snap)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerResponse(state))
}
