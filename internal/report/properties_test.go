package report

import (
	"testing"
	"time"

	"ecommerce-analytics/internal/data"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func synthetic(t *testing.T) *data.Dataset {
	t.Helper()
	return data.BuildSyntheticDataset(2000, 99)
}

func TestStateMonthVolumeAddsUpToMonthlyVolume(t *testing.T) {
	ds := synthetic(t)
	byMonth := run(t, ds, VolumeByMonth, DefaultParams())
	byStateMonth := run(t, ds, VolumeByStateMonth, DefaultParams())

	sums := map[time.Time]int64{}
	for _, row := range byStateMonth.Rows {
		sums[row[0].(time.Time)] += row[2].(int64)
	}
	require.Len(t, sums, len(byMonth.Rows))
	for _, row := range byMonth.Rows {
		assert.Equal(t, row[1], sums[row[0].(time.Time)], "month %v", row[0])
	}
}

func TestDeliveryDiffIsNegatedEarlyDays(t *testing.T) {
	ds := synthetic(t)
	orders := map[string]data.Order{}
	for _, o := range ds.Orders {
		orders[o.OrderID] = o
	}
	got := run(t, ds, DeliveryVsEstimatePerOrder, DefaultParams())
	require.NotEmpty(t, got.Rows)
	for _, row := range got.Rows {
		o := orders[row[0].(string)]
		early := EarlyDays(*o.DeliveredCustomerDate, *o.EstimatedDeliveryDate)
		assert.Equal(t, -early, row[3].(int64), "order %s", o.OrderID)
	}
}

func TestTopBottomListsAreSortedWithoutDuplicates(t *testing.T) {
	ds := synthetic(t)
	for _, name := range []Name{TopBottomStatesByFreight, TopBottomStatesByDeliveryDay} {
		got := run(t, ds, name, DefaultParams())
		sides := map[string][][]any{}
		for _, row := range got.Rows {
			sides[row[0].(string)] = append(sides[row[0].(string)], row)
		}
		for side, rows := range sides {
			assert.LessOrEqual(t, len(rows), 5)
			seen := map[string]bool{}
			for i, row := range rows {
				state := row[2].(string)
				assert.False(t, seen[state], "%s %s lists %s twice", name, side, state)
				seen[state] = true
				assert.Equal(t, int64(i+1), row[1])
				if i == 0 {
					continue
				}
				prev, cur := rows[i-1][3].(float64), row[3].(float64)
				if side == "top" {
					assert.GreaterOrEqual(t, prev, cur)
				} else {
					assert.LessOrEqual(t, prev, cur)
				}
			}
		}
	}
}

func TestCategoryRevenueEqualsItemRevenue(t *testing.T) {
	ds := synthetic(t)
	p := DefaultParams()
	p.Limit = 1000
	got := run(t, ds, TopCategoriesByRevenue, p)

	var items float64
	for _, it := range ds.Items {
		items += it.Price + it.FreightValue
	}
	var categories float64
	for _, v := range got.Column("revenue") {
		categories += v.(float64)
	}
	assert.InDelta(t, items, categories, 0.01*float64(len(got.Rows)))
}

func TestRepeatCustomersNeverExceedTotal(t *testing.T) {
	got := run(t, synthetic(t), RepeatPurchaseRate, DefaultParams())
	require.Len(t, got.Rows, 1)
	total, repeat := got.Rows[0][0].(int64), got.Rows[0][1].(int64)
	assert.LessOrEqual(t, repeat, total)
	assert.Positive(t, repeat)
	assert.InDelta(t, 100*float64(repeat)/float64(total), got.Rows[0][2].(float64), 0.005)
}

// Purchases span 2016-09 through 2018-08, so a Jan..Aug window only sees
// 2017 and 2018.
func TestYoYJanuaryThroughAugust(t *testing.T) {
	ds := synthetic(t)
	got := run(t, ds, YoYPartialPeriodGrowth, DefaultParams())
	require.Len(t, got.Rows, 2)
	assert.Equal(t, int64(2017), got.Rows[0][0])
	assert.Equal(t, int64(2018), got.Rows[1][0])

	var n2017, n2018 float64
	for _, o := range ds.Orders {
		if o.PurchaseTimestamp == nil || o.PurchaseTimestamp.Month() > time.August {
			continue
		}
		switch o.PurchaseTimestamp.Year() {
		case 2017:
			n2017++
		case 2018:
			n2018++
		}
	}
	assert.Equal(t, int64(n2017), got.Rows[0][1])
	assert.Equal(t, int64(n2018), got.Rows[1][1])
	assert.Equal(t, round2(100*(n2018-n2017)/n2017), got.Rows[1][3])
}
