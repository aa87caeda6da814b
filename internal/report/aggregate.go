package report

import (
	"cmp"
	"math"
	"slices"
	"time"

	"ecommerce-analytics/internal/data"
)

const day = 24 * time.Hour

// Dayparts in reporting order.
var dayparts = []string{"Dawn", "Morning", "Afternoon", "Night"}

// Daypart buckets an hour of day: Dawn 0-6, Morning 7-12, Afternoon 13-18,
// Night 19-23.
func Daypart(hour int) string {
	switch {
	case hour <= 6:
		return "Dawn"
	case hour <= 12:
		return "Morning"
	case hour <= 18:
		return "Afternoon"
	default:
		return "Night"
	}
}

// wholeDays counts complete days from a to b, truncated toward zero like
// MySQL's TIMESTAMPDIFF(DAY, a, b). DATETIME columns carry no zone, so the
// difference is taken between wall clocks and a DST shift cannot eat an hour.
func wholeDays(from, to time.Time) int64 {
	return int64(wallClock(to).Sub(wallClock(from)) / day)
}

// wallClock re-reads t's calendar fields as UTC.
func wallClock(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)
}

// EarlyDays is estimated minus delivered: positive when the order arrived
// before its estimate.
func EarlyDays(delivered, estimated time.Time) int64 {
	return wholeDays(delivered, estimated)
}

// DiffVsEstimateDays is delivered minus estimated: positive when late.
func DiffVsEstimateDays(delivered, estimated time.Time) int64 {
	return wholeDays(estimated, delivered)
}

// DeliveryDays is the purchase-to-delivery duration in whole days.
func DeliveryDays(purchased, delivered time.Time) int64 {
	return wholeDays(purchased, delivered)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// percent returns 100*num/den rounded to two places, or nil when den is zero.
func percent(num, den float64) any {
	if den == 0 {
		return nil
	}
	return round2(100 * num / den)
}

// growth returns the percentage change from prev to cur, or nil when prev is
// zero.
func growth(cur, prev float64) any {
	return percent(cur-prev, prev)
}

type mean struct {
	sum float64
	n   int64
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

type ranked struct {
	key   string
	value float64
}

// rankTop orders by value (descending when desc) with key ascending on ties
// and keeps at most n entries.
func rankTop(items []ranked, n int, desc bool) []ranked {
	out := slices.Clone(items)
	slices.SortFunc(out, func(a, b ranked) int {
		c := cmp.Compare(a.value, b.value)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func stateMeans(means map[string]*mean) []ranked {
	out := make([]ranked, 0, len(means))
	for state, m := range means {
		out = append(out, ranked{key: state, value: m.value()})
	}
	return out
}

// index holds the per-order pre-aggregations every dimension join starts
// from.
type index struct {
	customers    map[string]data.Customer
	orderPayment map[string]float64
	orderFreight map[string]float64
	category     map[string]string
}

func newIndex(ds *data.Dataset) *index {
	ix := &index{
		customers:    make(map[string]data.Customer, len(ds.Customers)),
		orderPayment: make(map[string]float64),
		orderFreight: make(map[string]float64),
		category:     make(map[string]string, len(ds.Products)),
	}
	for _, c := range ds.Customers {
		ix.customers[c.CustomerID] = c
	}
	for _, p := range ds.Payments {
		ix.orderPayment[p.OrderID] += p.Value
	}
	for _, it := range ds.Items {
		ix.orderFreight[it.OrderID] += it.FreightValue
	}
	for _, p := range ds.Products {
		if p.CategoryName != nil {
			ix.category[p.ProductID] = *p.CategoryName
		}
	}
	return ix
}

func (ix *index) categoryOf(productID string) string {
	if c, ok := ix.category[productID]; ok {
		return c
	}
	return unknownCategory
}

const unknownCategory = "unknown"

// customerKey identifies a person across orders, falling back to the
// per-order customer id when the dataset carries no unique id.
func customerKey(c data.Customer) string {
	if c.UniqueID != "" {
		return c.UniqueID
	}
	return c.CustomerID
}

type monthKey struct {
	year  int
	month time.Month
}

func monthOf(t time.Time) monthKey {
	return monthKey{year: t.Year(), month: t.Month()}
}

// date is the bucket's first day of month, as the driver returns a DATE.
func (k monthKey) date() time.Time {
	return time.Date(k.year, k.month, 1, 0, 0, 0, 0, time.UTC)
}

func compareMonth(a, b monthKey) int {
	if c := cmp.Compare(a.year, b.year); c != 0 {
		return c
	}
	return cmp.Compare(a.month, b.month)
}
