package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"jarras/internal/core"
)

var errEmptyBody = errors.New("empty body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a capped request body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

// writeDomainError maps core errors onto HTTP statuses. Validation failures
// are client errors; only an insufficient balance conflicts with state.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "invalid amount")
	case errors.Is(err, core.ErrDescriptionTooLong):
		writeError(w, http.StatusBadRequest, "description too long")
	case errors.Is(err, core.ErrUnknownJar):
		writeError(w, http.StatusBadRequest, "unknown jar")
	case errors.Is(err, core.ErrUnknownTheme):
		writeError(w, http.StatusBadRequest, "unknown theme")
	case errors.Is(err, core.ErrInvalidBackupFormat):
		writeError(w, http.StatusBadRequest, "invalid backup format")
	case errors.Is(err, core.ErrUnknownKind):
		writeError(w, http.StatusBadRequest, "unknown transaction kind")
	case errors.Is(err, core.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, "insufficient balance")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseAmount converts the monto field (JSON number or quoted decimal) into
// cents.
func parseAmount(raw json.Number) (core.Money, error) {
	if raw == "" {
		return core.Money{}, core.ErrInvalidAmount
	}
	return core.ParseMoney(raw.String())
}

// readAll drains the (already capped) request body.
func readAll(r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
