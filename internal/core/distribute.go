package core

import "sort"

// Distribute splits an income amount across the six jars by weight.
//
// Each jar first gets the floor of amount×weight/100 in cents. Cents lost to
// integer division are then handed out one by one to the jars with the
// largest fractional remainders (canonical jar order breaks ties), so the
// deltas always sum to the amount exactly. With the fixed weights there are
// at most five leftover cents per call.
func Distribute(amount Money) map[Jar]Money {
	type share struct {
		jar       Jar
		cents     int64
		remainder int64
	}

	shares := make([]share, 0, len(Jars))
	var assigned int64
	for _, j := range Jars {
		raw := amount.Cents * j.Weight()
		shares = append(shares, share{
			jar:       j,
			cents:     raw / 100,
			remainder: raw % 100,
		})
		assigned += raw / 100
	}

	leftover := amount.Cents - assigned
	sort.SliceStable(shares, func(i, k int) bool {
		return shares[i].remainder > shares[k].remainder
	})
	for i := int64(0); i < leftover; i++ {
		shares[i].cents++
	}

	deltas := make(map[Jar]Money, len(shares))
	for _, sh := range shares {
		deltas[sh.jar] = Money{Cents: sh.cents}
	}
	return deltas
}
