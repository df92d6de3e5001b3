package core

import (
	"errors"
	"strings"
	"time"
)

// The six jars of the budgeting method. Codes and weights are fixed.
const (
	NEC  Jar = "NEC"  // Necesidades - 55%
	LF   Jar = "LF"   // Libertad Financiera - 10%
	ALP  Jar = "ALP"  // Ahorro Largo Plazo - 10%
	EDU  Jar = "EDU"  // Educación - 10%
	PLAY Jar = "PLAY" // Ocio - 10%
	DAR  Jar = "DAR"  // Dar - 5%
)

const (
	KindDistributedIncome TxKind = "ingreso"
	KindDirectIncome      TxKind = "ingreso_directo"
	KindWithdrawal        TxKind = "retiro"
)

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// MaxDescriptionLen bounds free-text transaction descriptions.
const MaxDescriptionLen = 200

type (
	Jar    string
	TxKind string
	Theme  string

	// Transaction is an immutable ledger record. Distribution is set only
	// for distributed incomes; Jar only for direct incomes and withdrawals.
	Transaction struct {
		ID           string        `json:"id"`
		Kind         TxKind        `json:"type"`
		Date         time.Time     `json:"fecha"`
		Amount       Money         `json:"monto"`
		Description  string        `json:"descripcion"`
		Distribution map[Jar]Money `json:"distribution,omitempty"`
		Jar          Jar           `json:"jar,omitempty"`
	}

	// GrowthPoint is one sample of the freedom-growth time series: the LF
	// jar balance at a given moment.
	GrowthPoint struct {
		Date    time.Time `json:"fecha"`
		Balance Money     `json:"saldo"`
	}

	// State is the aggregate ledger: jar balances, transaction history
	// (newest first), freedom-growth history (chronological) and the UI
	// theme preference. It is only ever transformed by Reducer.Apply.
	State struct {
		Balances map[Jar]Money `json:"saldos"`
		History  []Transaction `json:"historial_transacciones"`
		Growth   []GrowthPoint `json:"historial_lf"`
		Theme    Theme         `json:"theme"`
	}
)

// Jars lists all jars in canonical display order.
var Jars = [6]Jar{NEC, LF, ALP, EDU, PLAY, DAR}

// jarWeights maps each jar to its percentage of a distributed income.
var jarWeights = map[Jar]int64{
	NEC:  55,
	LF:   10,
	ALP:  10,
	EDU:  10,
	PLAY: 10,
	DAR:  5,
}

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidBackupFormat = errors.New("invalid backup format")
	ErrUnknownJar          = errors.New("unknown jar")
	ErrDescriptionTooLong  = errors.New("description too long")
	ErrUnknownTheme        = errors.New("unknown theme")
	ErrUnknownKind         = errors.New("unknown transaction kind")
)

// Weight returns the jar's percentage weight (0 for unknown jars).
func (j Jar) Weight() int64 {
	return jarWeights[j]
}

func (j Jar) Validate() error {
	if _, ok := jarWeights[j]; !ok {
		return ErrUnknownJar
	}
	return nil
}

// ParseJar converts a wire code like "NEC" into a Jar.
func ParseJar(s string) (Jar, error) {
	j := Jar(strings.ToUpper(strings.TrimSpace(s)))
	if err := j.Validate(); err != nil {
		return "", err
	}
	return j, nil
}

func (t Theme) Validate() error {
	switch t {
	case ThemeLight, ThemeDark:
		return nil
	}
	return ErrUnknownTheme
}

func validateDescription(desc string) error {
	if len(desc) > MaxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

// NewState returns the empty first-run ledger: all six jars at zero, no
// history, light theme.
func NewState() State {
	balances := make(map[Jar]Money, len(Jars))
	for _, j := range Jars {
		balances[j] = Money{}
	}
	return State{
		Balances: balances,
		History:  []Transaction{},
		Growth:   []GrowthPoint{},
		Theme:    ThemeLight,
	}
}

// Clone returns a deep copy; reducer transitions never alias prior state.
func (s State) Clone() State {
	next := State{
		Balances: make(map[Jar]Money, len(s.Balances)),
		History:  make([]Transaction, len(s.History)),
		Growth:   make([]GrowthPoint, len(s.Growth)),
		Theme:    s.Theme,
	}
	for j, b := range s.Balances {
		next.Balances[j] = b
	}
	copy(next.History, s.History)
	copy(next.Growth, s.Growth)
	return next
}

// FindTransaction looks up a transaction by id.
func (s State) FindTransaction(id string) (Transaction, bool) {
	for _, tx := range s.History {
		if tx.ID == id {
			return tx, true
		}
	}
	return Transaction{}, false
}
