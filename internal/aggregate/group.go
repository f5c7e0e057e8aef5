package aggregate

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"moneymanager/internal/core"
)

// Mode selects the bucket granularity of Group.
type Mode string

const (
	ModeDay   Mode = "day"
	ModeMonth Mode = "month"
)

// ParseMode accepts "day"/"daily" and "month"/"monthly".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "day", "daily":
		return ModeDay, nil
	case "month", "monthly":
		return ModeMonth, nil
	default:
		return "", fmt.Errorf("unknown grouping mode %q", s)
	}
}

// Bucket is one group of transactions.
type Bucket struct {
	// Key is midnight of the bucket's day, or of the first of its month.
	Key time.Time `json:"key"`
	// Label is the ISO date for day buckets and "January 2026" for months.
	Label        string             `json:"label"`
	Transactions []core.Transaction `json:"transactions"`
	// Subtotal is signed: income positive, expense negative.
	Subtotal decimal.Decimal `json:"subtotal"`
	// Days partitions a month bucket by day. Nil for day buckets.
	Days []Bucket `json:"days,omitempty"`
}

// Group partitions txs into buckets, most recent first. Transactions keep
// their input order inside a bucket. An unknown mode groups by day.
func Group(txs []core.Transaction, mode Mode) []Bucket {
	if mode == ModeMonth {
		months := partition(txs, monthKey, monthLabel)
		for i := range months {
			months[i].Days = partition(months[i].Transactions, dayKey, dayLabel)
		}
		return months
	}
	return partition(txs, dayKey, dayLabel)
}

func dayKey(t time.Time) time.Time   { return core.StartOfDay(t) }
func monthKey(t time.Time) time.Time { return core.StartOfMonth(t) }

func dayLabel(k time.Time) string   { return k.Format(core.DateLayout) }
func monthLabel(k time.Time) string { return k.Format("January 2006") }

func partition(txs []core.Transaction, key func(time.Time) time.Time, label func(time.Time) string) []Bucket {
	index := make(map[string]int)
	var buckets []Bucket
	for _, tx := range txs {
		k := key(tx.Date)
		l := label(k)
		i, ok := index[l]
		if !ok {
			i = len(buckets)
			index[l] = i
			buckets = append(buckets, Bucket{Key: k, Label: l, Subtotal: decimal.Zero})
		}
		buckets[i].Transactions = append(buckets[i].Transactions, tx)
		buckets[i].Subtotal = buckets[i].Subtotal.Add(tx.Signed())
	}

	slices.SortStableFunc(buckets, func(a, b Bucket) int {
		return compareCivil(b.Key, a.Key)
	})
	return buckets
}

// compareCivil orders by calendar date, ignoring location and clock time.
func compareCivil(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	switch {
	case ay != by:
		return ay - by
	case am != bm:
		return int(am) - int(bm)
	default:
		return ad - bd
	}
}
