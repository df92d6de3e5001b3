package core

import "testing"

func TestDistributeExactSplit(t *testing.T) {
	deltas := Distribute(Money{Cents: 100000}) // 1000.00

	want := map[Jar]int64{
		NEC:  55000,
		LF:   10000,
		ALP:  10000,
		EDU:  10000,
		PLAY: 10000,
		DAR:  5000,
	}
	for jar, cents := range want {
		if deltas[jar].Cents != cents {
			t.Fatalf("%s expected %d cents, got %d", jar, cents, deltas[jar].Cents)
		}
	}
}

func TestDistributeSumsToAmount(t *testing.T) {
	amounts := []int64{1, 2, 3, 99, 101, 999, 1234, 99999, 100001, 7777777, MaxAmountCents - 1, MaxAmountCents}
	for _, cents := range amounts {
		deltas := Distribute(Money{Cents: cents})
		if len(deltas) != len(Jars) {
			t.Fatalf("amount %d: expected %d deltas, got %d", cents, len(Jars), len(deltas))
		}
		var sum int64
		for _, d := range deltas {
			if d.Cents < 0 {
				t.Fatalf("amount %d: negative delta %d", cents, d.Cents)
			}
			sum += d.Cents
		}
		if sum != cents {
			t.Fatalf("amount %d: deltas sum to %d", cents, sum)
		}
	}
}

func TestDistributeLeftoverFavorsLargestRemainder(t *testing.T) {
	// 999 cents: NEC raw 549.45, others 99.90/99.90/99.90/99.90/49.95.
	// DAR has the largest remainder (95), then the four 90s, then NEC (45).
	deltas := Distribute(Money{Cents: 999})
	if deltas[DAR].Cents != 50 {
		t.Fatalf("DAR expected 50 cents, got %d", deltas[DAR].Cents)
	}
	if deltas[NEC].Cents != 549 {
		t.Fatalf("NEC expected 549 cents, got %d", deltas[NEC].Cents)
	}
}
