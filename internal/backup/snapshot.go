// Package backup defines the portable snapshot envelope: a versioned JSON
// export of balances, transaction history and freedom-growth history. The
// theme preference is deliberately not part of a backup.
package backup

import (
	"encoding/json"
	"fmt"
	"time"

	"jarras/internal/core"
)

// Version is the schema version written into every export.
const Version = "1.0"

// Data carries the three core collections using the persisted field names.
type Data struct {
	Balances map[core.Jar]core.Money `json:"saldos"`
	History  []core.Transaction      `json:"historial_transacciones"`
	Growth   []core.GrowthPoint      `json:"historial_lf"`
}

// Snapshot is the backup file envelope.
type Snapshot struct {
	Version    string    `json:"version"`
	ExportDate time.Time `json:"exportDate"`
	Data       Data      `json:"data"`
}

// Export wraps the current ledger state into a snapshot stamped with the
// given export time.
func Export(s core.State, exportedAt time.Time) Snapshot {
	balances := make(map[core.Jar]core.Money, len(s.Balances))
	for jar, b := range s.Balances {
		balances[jar] = b
	}
	history := make([]core.Transaction, len(s.History))
	copy(history, s.History)
	growth := make([]core.GrowthPoint, len(s.Growth))
	copy(growth, s.Growth)

	return Snapshot{
		Version:    Version,
		ExportDate: exportedAt,
		Data: Data{
			Balances: balances,
			History:  history,
			Growth:   growth,
		},
	}
}

// Encode renders the snapshot as indented JSON, the format written to
// backup files.
func (s Snapshot) Encode() ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// Parse decodes and validates raw backup bytes. The balances mapping is the
// one required field; missing history or growth default to empty.
func Parse(raw []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", core.ErrInvalidBackupFormat, err)
	}
	if snap.Data.Balances == nil {
		return Snapshot{}, fmt.Errorf("%w: missing saldos", core.ErrInvalidBackupFormat)
	}
	return snap, nil
}

// Action converts the snapshot into the reducer's wholesale-replace action.
// Theme is left empty so importing never overrides the current preference.
func (s Snapshot) Action() core.LoadState {
	return core.LoadState{
		Balances: s.Data.Balances,
		History:  s.Data.History,
		Growth:   s.Data.Growth,
	}
}

// Filename returns the conventional download name for an export made at t,
// e.g. "backup_6jarros_2025-06-15.json".
func Filename(t time.Time) string {
	return fmt.Sprintf("backup_6jarros_%s.json", t.Format("2006-01-02"))
}
