package core

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func testReducer() *Reducer {
	n := 0
	return &Reducer{
		Now: func() time.Time {
			return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		},
		NewID: func() string {
			n++
			return fmt.Sprintf("tx-%d", n)
		},
	}
}

func mustApply(t *testing.T, r *Reducer, s State, a Action) State {
	t.Helper()
	next, err := r.Apply(s, a)
	if err != nil {
		t.Fatalf("apply %T: %v", a, err)
	}
	return next
}

func TestDistributedIncomeSalaryScenario(t *testing.T) {
	r := testReducer()
	s := mustApply(t, r, NewState(), DistributedIncome{Amount: Money{Cents: 100000}, Description: "Salary"})

	want := map[Jar]int64{NEC: 55000, LF: 10000, ALP: 10000, EDU: 10000, PLAY: 10000, DAR: 5000}
	for jar, cents := range want {
		if s.Balances[jar].Cents != cents {
			t.Fatalf("%s expected %d, got %d", jar, cents, s.Balances[jar].Cents)
		}
	}
	if s.TotalBalance().Cents != 100000 {
		t.Fatalf("total expected 100000, got %d", s.TotalBalance().Cents)
	}
	// LF == 100.00 sits on the inclusive seed boundary
	if got := s.GrowthStage(); got != StageSeed {
		t.Fatalf("expected seed stage at LF=100.00, got %s", got)
	}
	if len(s.History) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(s.History))
	}
	tx := s.History[0]
	if tx.Kind != KindDistributedIncome || tx.Description != "Salary" {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	if len(s.Growth) != 1 || s.Growth[0].Balance.Cents != 10000 {
		t.Fatalf("expected one growth point at 10000, got %+v", s.Growth)
	}
}

func TestDistributedIncomeRejectsInvalidAmount(t *testing.T) {
	r := testReducer()
	initial := NewState()
	// Beyond-cap amounts must be rejected before distribution: cents×weight
	// would wrap around int64 and corrupt the per-jar deltas.
	for _, cents := range []int64{0, -100, MaxAmountCents + 1, 1<<63 - 1} {
		next, err := r.Apply(initial, DistributedIncome{Amount: Money{Cents: cents}})
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", cents, err)
		}
		if len(next.History) != 0 || next.TotalBalance().Cents != 0 {
			t.Fatalf("amount %d: state mutated on rejection", cents)
		}
	}
}

func TestDistributedIncomeIncreasesTotalByAmount(t *testing.T) {
	r := testReducer()
	s := NewState()
	for _, cents := range []int64{999, 1234, 55555} {
		before := s.TotalBalance().Cents
		s = mustApply(t, r, s, DistributedIncome{Amount: Money{Cents: cents}, Description: "pay"})
		if got := s.TotalBalance().Cents; got != before+cents {
			t.Fatalf("total expected %d, got %d", before+cents, got)
		}
	}
}

func TestDirectIncomeAndWithdrawalScenario(t *testing.T) {
	r := testReducer()
	s := NewState()
	s = mustApply(t, r, s, DirectIncome{Amount: Money{Cents: 5000}, Description: "gift", Jar: DAR})
	s = mustApply(t, r, s, Withdrawal{Amount: Money{Cents: 2000}, Description: "donation", Jar: DAR})

	if s.Balances[DAR].Cents != 3000 {
		t.Fatalf("DAR expected 3000, got %d", s.Balances[DAR].Cents)
	}
	if len(s.History) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(s.History))
	}
	// newest first
	if s.History[0].Kind != KindWithdrawal || s.History[1].Kind != KindDirectIncome {
		t.Fatalf("history out of order: %+v", s.History)
	}
	// DAR is not LF, the growth series stays empty
	if len(s.Growth) != 0 {
		t.Fatalf("expected no growth points, got %+v", s.Growth)
	}
}

func TestDirectIncomeToLFAppendsGrowthPoint(t *testing.T) {
	r := testReducer()
	s := mustApply(t, r, NewState(), DirectIncome{Amount: Money{Cents: 7500}, Jar: LF})
	if len(s.Growth) != 1 || s.Growth[0].Balance.Cents != 7500 {
		t.Fatalf("expected growth point at 7500, got %+v", s.Growth)
	}
}

func TestDirectIncomeRejectsUnknownJar(t *testing.T) {
	r := testReducer()
	_, err := r.Apply(NewState(), DirectIncome{Amount: Money{Cents: 100}, Jar: "XYZ"})
	if !errors.Is(err, ErrUnknownJar) {
		t.Fatalf("expected ErrUnknownJar, got %v", err)
	}
}

func TestWithdrawalInsufficientBalance(t *testing.T) {
	r := testReducer()
	s := mustApply(t, r, NewState(), DirectIncome{Amount: Money{Cents: 1000}, Jar: PLAY})

	next, err := r.Apply(s, Withdrawal{Amount: Money{Cents: 1001}, Jar: PLAY})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if next.Balances[PLAY].Cents != 1000 || len(next.History) != 1 {
		t.Fatalf("state mutated on rejected withdrawal")
	}

	// exact balance is withdrawable
	s = mustApply(t, r, s, Withdrawal{Amount: Money{Cents: 1000}, Jar: PLAY})
	if s.Balances[PLAY].Cents != 0 {
		t.Fatalf("PLAY expected 0, got %d", s.Balances[PLAY].Cents)
	}
}

func TestReverseDistributedIncomeRoundTrip(t *testing.T) {
	r := testReducer()
	s := mustApply(t, r, NewState(), DistributedIncome{Amount: Money{Cents: 123457}, Description: "pay"})
	id := s.History[0].ID

	s = mustApply(t, r, s, ReverseTransaction{ID: id})
	for _, jar := range Jars {
		if s.Balances[jar].Cents != 0 {
			t.Fatalf("%s expected 0 after reversal, got %d", jar, s.Balances[jar].Cents)
		}
	}
	if len(s.History) != 0 {
		t.Fatalf("expected empty history, got %d", len(s.History))
	}
	// reversal always stamps a growth point
	if len(s.Growth) != 2 || s.Growth[1].Balance.Cents != 0 {
		t.Fatalf("expected reversal growth point at 0, got %+v", s.Growth)
	}
}

func TestReverseUnknownIDIsNoOp(t *testing.T) {
	r := testReducer()
	s := mustApply(t, r, NewState(), DistributedIncome{Amount: Money{Cents: 1000}, Description: "pay"})

	next, err := r.Apply(s, ReverseTransaction{ID: "missing"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(next.History) != 1 || len(next.Growth) != 1 {
		t.Fatalf("state changed for unknown id")
	}

	// reversing twice: the second call sees a removed id and does nothing
	id := s.History[0].ID
	once := mustApply(t, r, s, ReverseTransaction{ID: id})
	twice := mustApply(t, r, once, ReverseTransaction{ID: id})
	if len(twice.Growth) != len(once.Growth) {
		t.Fatalf("second reversal of same id mutated state")
	}
}

func TestReverseIncomeFloorsAtZero(t *testing.T) {
	r := testReducer()
	s := mustApply(t, r, NewState(), DistributedIncome{Amount: Money{Cents: 10000}, Description: "pay"})
	id := s.History[0].ID
	// drain NEC below its original 5500 contribution
	s = mustApply(t, r, s, Withdrawal{Amount: Money{Cents: 5000}, Jar: NEC})

	s = mustApply(t, r, s, ReverseTransaction{ID: id})
	if s.Balances[NEC].Cents != 0 {
		t.Fatalf("NEC expected floor at 0, got %d", s.Balances[NEC].Cents)
	}
}

func TestReverseWithdrawalRestoresBalance(t *testing.T) {
	r := testReducer()
	s := mustApply(t, r, NewState(), DirectIncome{Amount: Money{Cents: 8000}, Jar: EDU})
	s = mustApply(t, r, s, Withdrawal{Amount: Money{Cents: 3000}, Jar: EDU})
	id := s.History[0].ID

	s = mustApply(t, r, s, ReverseTransaction{ID: id})
	if s.Balances[EDU].Cents != 8000 {
		t.Fatalf("EDU expected 8000 after reversing withdrawal, got %d", s.Balances[EDU].Cents)
	}
}

func TestReverseNonLFTransactionStillStampsGrowth(t *testing.T) {
	r := testReducer()
	s := mustApply(t, r, NewState(), DirectIncome{Amount: Money{Cents: 100}, Jar: DAR})
	id := s.History[0].ID

	s = mustApply(t, r, s, ReverseTransaction{ID: id})
	if len(s.Growth) != 1 {
		t.Fatalf("expected one growth point from reversal, got %d", len(s.Growth))
	}
}

func TestReverseMissingKindFallsBackToDistribution(t *testing.T) {
	r := testReducer()
	s := mustApply(t, r, NewState(), LoadState{
		Balances: map[Jar]Money{NEC: {Cents: 550}, LF: {Cents: 100}},
		History: []Transaction{{
			ID:           "tx-import",
			Amount:       Money{Cents: 1000},
			Distribution: map[Jar]Money{NEC: {Cents: 550}, LF: {Cents: 100}},
		}},
	})

	s = mustApply(t, r, s, ReverseTransaction{ID: "tx-import"})
	if s.Balances[NEC].Cents != 0 || s.Balances[LF].Cents != 0 {
		t.Fatalf("expected distribution reversed, got NEC=%d LF=%d",
			s.Balances[NEC].Cents, s.Balances[LF].Cents)
	}
	if len(s.History) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(s.History))
	}
}

func TestReverseUnknownKindRejected(t *testing.T) {
	r := testReducer()
	s := mustApply(t, r, NewState(), LoadState{
		Balances: map[Jar]Money{NEC: {Cents: 3000}},
		History: []Transaction{{
			ID:     "tx-import",
			Kind:   TxKind("transferencia"),
			Amount: Money{Cents: 3000},
			Jar:    NEC,
		}},
	})

	next, err := r.Apply(s, ReverseTransaction{ID: "tx-import"})
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if len(next.History) != 1 || next.Balances[NEC].Cents != 3000 {
		t.Fatalf("state mutated on rejected reversal: %+v", next)
	}
	if len(next.Growth) != 0 {
		t.Fatalf("expected no growth point on rejected reversal, got %d", len(next.Growth))
	}
}

func TestSetTheme(t *testing.T) {
	r := testReducer()
	s := mustApply(t, r, NewState(), SetTheme{Theme: ThemeDark})
	if s.Theme != ThemeDark {
		t.Fatalf("expected dark theme, got %s", s.Theme)
	}
	if _, err := r.Apply(s, SetTheme{Theme: "sepia"}); !errors.Is(err, ErrUnknownTheme) {
		t.Fatalf("expected ErrUnknownTheme, got %v", err)
	}
}

func TestLoadStateReplacesWholesale(t *testing.T) {
	r := testReducer()
	s := mustApply(t, r, NewState(), SetTheme{Theme: ThemeDark})

	next := mustApply(t, r, s, LoadState{
		Balances: map[Jar]Money{NEC: {Cents: 500}, LF: {Cents: 20000}},
		History: []Transaction{{
			ID:     "ext-1",
			Kind:   KindDirectIncome,
			Amount: Money{Cents: 500},
			Jar:    NEC,
		}},
	})
	if next.Balances[NEC].Cents != 500 || next.Balances[LF].Cents != 20000 {
		t.Fatalf("balances not replaced: %+v", next.Balances)
	}
	// jars absent from the payload default to zero
	if next.Balances[DAR].Cents != 0 {
		t.Fatalf("DAR expected 0, got %d", next.Balances[DAR].Cents)
	}
	if len(next.History) != 1 || next.History[0].ID != "ext-1" {
		t.Fatalf("history not replaced: %+v", next.History)
	}
	// empty theme in payload keeps the current preference
	if next.Theme != ThemeDark {
		t.Fatalf("theme not preserved, got %s", next.Theme)
	}
}

func TestLoadStateRequiresBalances(t *testing.T) {
	r := testReducer()
	s := mustApply(t, r, NewState(), DistributedIncome{Amount: Money{Cents: 1000}, Description: "pay"})

	next, err := r.Apply(s, LoadState{History: []Transaction{}})
	if !errors.Is(err, ErrInvalidBackupFormat) {
		t.Fatalf("expected ErrInvalidBackupFormat, got %v", err)
	}
	if len(next.History) != 1 {
		t.Fatalf("state changed on rejected load")
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	r := testReducer()
	s := mustApply(t, r, NewState(), DistributedIncome{Amount: Money{Cents: 10000}, Description: "pay"})
	before := s.Clone()

	_ = mustApply(t, r, s, Withdrawal{Amount: Money{Cents: 100}, Jar: NEC})
	if s.Balances[NEC] != before.Balances[NEC] || len(s.History) != len(before.History) {
		t.Fatalf("input state mutated by Apply")
	}
}

func TestGrowthStageBoundaries(t *testing.T) {
	cases := []struct {
		lfCents int64
		want    Stage
	}{
		{0, StageSeed},
		{10000, StageSeed},    // 100.00
		{10001, StageSprout},  // 100.01
		{100000, StageSprout}, // 1000.00
		{100001, StageTree},   // 1000.01
	}
	for _, tc := range cases {
		s := NewState()
		s.Balances[LF] = Money{Cents: tc.lfCents}
		if got := s.GrowthStage(); got != tc.want {
			t.Fatalf("LF=%d expected %s, got %s", tc.lfCents, tc.want, got)
		}
	}
}
