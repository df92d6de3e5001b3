package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action is the closed set of ledger mutations. Every reducer transition is
// total: it either returns a fully applied new state or the input state
// unchanged alongside an error.
type Action interface {
	isAction()
}

type (
	// DistributedIncome splits Amount across all six jars by weight.
	DistributedIncome struct {
		Amount      Money
		Description string
	}

	// DirectIncome credits Amount entirely to one jar.
	DirectIncome struct {
		Amount      Money
		Description string
		Jar         Jar
	}

	// Withdrawal debits Amount from one jar, bounded by its balance.
	Withdrawal struct {
		Amount      Money
		Description string
		Jar         Jar
	}

	// ReverseTransaction undoes a transaction by id and removes it from
	// history. Unknown ids are a no-op, not an error.
	ReverseTransaction struct {
		ID string
	}

	// SetTheme switches the UI preference.
	SetTheme struct {
		Theme Theme
	}

	// LoadState replaces balances, history and growth history wholesale
	// from an external payload (storage load or backup import). An empty
	// Theme keeps the current one, which is how backup import preserves
	// the preference backups never carry.
	LoadState struct {
		Balances map[Jar]Money
		History  []Transaction
		Growth   []GrowthPoint
		Theme    Theme
	}
)

func (DistributedIncome) isAction()  {}
func (DirectIncome) isAction()       {}
func (Withdrawal) isAction()         {}
func (ReverseTransaction) isAction() {}
func (SetTheme) isAction()           {}
func (LoadState) isAction()          {}

// Reducer applies actions to ledger states. Now and NewID are injectable so
// tests get deterministic timestamps and ids.
type Reducer struct {
	Now   func() time.Time
	NewID func() string
}

// NewReducer returns a reducer with wall-clock timestamps and UUID ids.
func NewReducer() *Reducer {
	return &Reducer{
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// Apply computes the next state for an action. The input state is never
// mutated; on error it is returned as-is.
func (r *Reducer) Apply(s State, a Action) (State, error) {
	switch act := a.(type) {
	case DistributedIncome:
		return r.applyDistributedIncome(s, act)
	case DirectIncome:
		return r.applyDirectIncome(s, act)
	case Withdrawal:
		return r.applyWithdrawal(s, act)
	case ReverseTransaction:
		return r.reverseTransaction(s, act)
	case SetTheme:
		return r.setTheme(s, act)
	case LoadState:
		return r.loadState(s, act)
	default:
		return s, fmt.Errorf("unhandled action type %T", a)
	}
}

func (r *Reducer) applyDistributedIncome(s State, act DistributedIncome) (State, error) {
	if err := act.Amount.Validate(); err != nil {
		return s, err
	}
	if err := validateDescription(act.Description); err != nil {
		return s, err
	}

	now := r.Now()
	deltas := Distribute(act.Amount)

	next := s.Clone()
	for jar, delta := range deltas {
		next.Balances[jar] = next.Balances[jar].Add(delta)
	}
	next.History = prepend(next.History, Transaction{
		ID:           r.NewID(),
		Kind:         KindDistributedIncome,
		Date:         now,
		Amount:       act.Amount,
		Description:  act.Description,
		Distribution: deltas,
	})
	// LF always receives a share, so every distributed income grows the series
	next.Growth = append(next.Growth, GrowthPoint{Date: now, Balance: next.Balances[LF]})
	return next, nil
}

func (r *Reducer) applyDirectIncome(s State, act DirectIncome) (State, error) {
	if err := act.Amount.Validate(); err != nil {
		return s, err
	}
	if err := act.Jar.Validate(); err != nil {
		return s, err
	}
	if err := validateDescription(act.Description); err != nil {
		return s, err
	}

	now := r.Now()
	next := s.Clone()
	next.Balances[act.Jar] = next.Balances[act.Jar].Add(act.Amount)
	next.History = prepend(next.History, Transaction{
		ID:          r.NewID(),
		Kind:        KindDirectIncome,
		Date:        now,
		Amount:      act.Amount,
		Description: act.Description,
		Jar:         act.Jar,
	})
	if act.Jar == LF {
		next.Growth = append(next.Growth, GrowthPoint{Date: now, Balance: next.Balances[LF]})
	}
	return next, nil
}

func (r *Reducer) applyWithdrawal(s State, act Withdrawal) (State, error) {
	if err := act.Amount.Validate(); err != nil {
		return s, err
	}
	if err := act.Jar.Validate(); err != nil {
		return s, err
	}
	if err := validateDescription(act.Description); err != nil {
		return s, err
	}
	if s.Balances[act.Jar].LessThan(act.Amount) {
		return s, ErrInsufficientBalance
	}

	now := r.Now()
	next := s.Clone()
	next.Balances[act.Jar] = next.Balances[act.Jar].Sub(act.Amount)
	next.History = prepend(next.History, Transaction{
		ID:          r.NewID(),
		Kind:        KindWithdrawal,
		Date:        now,
		Amount:      act.Amount,
		Description: act.Description,
		Jar:         act.Jar,
	})
	if act.Jar == LF {
		next.Growth = append(next.Growth, GrowthPoint{Date: now, Balance: next.Balances[LF]})
	}
	return next, nil
}

// reverseTransaction undoes by kind: income reversals subtract floored at
// zero (best effort — later withdrawals may already have drained the jar),
// withdrawal reversals credit the full amount back since the debit was
// balance-checked when applied. A growth point is stamped unconditionally,
// whichever jar was touched.
func (r *Reducer) reverseTransaction(s State, act ReverseTransaction) (State, error) {
	tx, ok := s.FindTransaction(act.ID)
	if !ok {
		return s, nil
	}

	next := s.Clone()
	switch tx.Kind {
	case KindDistributedIncome:
		for jar, delta := range tx.Distribution {
			next.Balances[jar] = next.Balances[jar].SubFloored(delta)
		}
	case KindDirectIncome:
		next.Balances[tx.Jar] = next.Balances[tx.Jar].SubFloored(tx.Amount)
	case KindWithdrawal:
		next.Balances[tx.Jar] = next.Balances[tx.Jar].Add(tx.Amount)
	default:
		// Imported records may carry a mistyped or missing kind; a
		// distribution map still identifies a distributed income. Anything
		// else is rejected rather than dropped from history with no
		// balance adjustment.
		if tx.Distribution == nil {
			return s, fmt.Errorf("reverse transaction %s: %w", tx.ID, ErrUnknownKind)
		}
		for jar, delta := range tx.Distribution {
			next.Balances[jar] = next.Balances[jar].SubFloored(delta)
		}
	}

	history := next.History[:0]
	for _, t := range next.History {
		if t.ID != act.ID {
			history = append(history, t)
		}
	}
	next.History = history
	next.Growth = append(next.Growth, GrowthPoint{Date: r.Now(), Balance: next.Balances[LF]})
	return next, nil
}

func (r *Reducer) setTheme(s State, act SetTheme) (State, error) {
	if err := act.Theme.Validate(); err != nil {
		return s, err
	}
	next := s.Clone()
	next.Theme = act.Theme
	return next, nil
}

// loadState rebuilds the ledger from an external payload. A missing balances
// mapping is the one fatal shape error; absent history or growth default to
// empty, and jars missing from the payload default to zero.
func (r *Reducer) loadState(s State, act LoadState) (State, error) {
	if act.Balances == nil {
		return s, ErrInvalidBackupFormat
	}

	next := NewState()
	for _, jar := range Jars {
		if b, ok := act.Balances[jar]; ok {
			next.Balances[jar] = b
		}
	}
	next.History = append(next.History, act.History...)
	next.Growth = append(next.Growth, act.Growth...)

	next.Theme = s.Theme
	if act.Theme != "" {
		if err := act.Theme.Validate(); err != nil {
			return s, err
		}
		next.Theme = act.Theme
	}
	return next, nil
}

func prepend(history []Transaction, tx Transaction) []Transaction {
	out := make([]Transaction, 0, len(history)+1)
	out = append(out, tx)
	return append(out, history...)
}
