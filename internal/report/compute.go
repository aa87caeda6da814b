package report

import (
	"cmp"
	"slices"
	"sort"
	"time"

	"ecommerce-analytics/internal/data"
)

// In-memory renditions of the catalog. Each mirrors the SQL text in
// queries.go: same filters, same pre-aggregation, same ordering.

func computeVolumeByYear(ds *data.Dataset, _ Params) Table {
	counts := map[int]int64{}
	for _, o := range ds.Orders {
		if o.PurchaseTimestamp == nil {
			continue
		}
		counts[o.PurchaseTimestamp.Year()]++
	}
	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)

	var t Table
	for _, y := range years {
		t.add(int64(y), counts[y])
	}
	return t
}

func computeVolumeByMonth(ds *data.Dataset, _ Params) Table {
	counts := map[monthKey]int64{}
	for _, o := range ds.Orders {
		if o.PurchaseTimestamp == nil {
			continue
		}
		counts[monthOf(*o.PurchaseTimestamp)]++
	}
	months := make([]monthKey, 0, len(counts))
	for k := range counts {
		months = append(months, k)
	}
	slices.SortFunc(months, compareMonth)

	var t Table
	for _, k := range months {
		t.add(k.date(), counts[k])
	}
	return t
}

func computeDaypartMix(ds *data.Dataset, _ Params) Table {
	counts := map[string]int64{}
	var total int64
	for _, o := range ds.Orders {
		if o.PurchaseTimestamp == nil {
			continue
		}
		counts[Daypart(o.PurchaseTimestamp.Hour())]++
		total++
	}

	var t Table
	for _, part := range dayparts {
		n, ok := counts[part]
		if !ok {
			continue
		}
		t.add(part, n, percent(float64(n), float64(total)))
	}
	return t
}

func computeVolumeByStateMonth(ds *data.Dataset, _ Params) Table {
	type key struct {
		month monthKey
		state string
	}
	ix := newIndex(ds)
	counts := map[key]int64{}
	for _, o := range ds.Orders {
		if o.PurchaseTimestamp == nil {
			continue
		}
		c, ok := ix.customers[o.CustomerID]
		if !ok {
			continue
		}
		counts[key{monthOf(*o.PurchaseTimestamp), c.State}]++
	}
	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b key) int {
		if c := compareMonth(a.month, b.month); c != 0 {
			return c
		}
		return cmp.Compare(a.state, b.state)
	})

	var t Table
	for _, k := range keys {
		t.add(k.month.date(), k.state, counts[k])
	}
	return t
}

func computeCustomersByState(ds *data.Dataset, _ Params) Table {
	perState := map[string]map[string]struct{}{}
	for _, c := range ds.Customers {
		if perState[c.State] == nil {
			perState[c.State] = map[string]struct{}{}
		}
		perState[c.State][c.CustomerID] = struct{}{}
	}
	items := make([]ranked, 0, len(perState))
	for state, ids := range perState {
		items = append(items, ranked{key: state, value: float64(len(ids))})
	}

	var t Table
	for _, r := range rankTop(items, -1, true) {
		t.add(r.key, int64(r.value))
	}
	return t
}

func computeYoYPartialPeriodGrowth(ds *data.Dataset, p Params) Table {
	ix := newIndex(ds)
	type yearly struct {
		orders  int64
		payment float64
	}
	byYear := map[int]*yearly{}
	for _, o := range ds.Orders {
		if o.PurchaseTimestamp == nil {
			continue
		}
		m := int(o.PurchaseTimestamp.Month())
		if m < p.PeriodFromMonth || m > p.PeriodToMonth {
			continue
		}
		y := o.PurchaseTimestamp.Year()
		if byYear[y] == nil {
			byYear[y] = &yearly{}
		}
		byYear[y].orders++
		byYear[y].payment += ix.orderPayment[o.OrderID]
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	var t Table
	var prev *yearly
	for _, y := range years {
		cur := byYear[y]
		var ordersGrowth, paymentGrowth any
		if prev != nil {
			ordersGrowth = growth(float64(cur.orders), float64(prev.orders))
			paymentGrowth = growth(cur.payment, prev.payment)
		}
		t.add(int64(y), cur.orders, round2(cur.payment), ordersGrowth, paymentGrowth)
		prev = cur
	}
	return t
}

type stateTotals struct {
	orders int64
	sum    float64
}

// perOrderByState joins per-order totals to the ordering customer's state.
func perOrderByState(ix *index, ds *data.Dataset, perOrder map[string]float64) map[string]*stateTotals {
	orders := make(map[string]data.Order, len(ds.Orders))
	for _, o := range ds.Orders {
		orders[o.OrderID] = o
	}
	out := map[string]*stateTotals{}
	for orderID, v := range perOrder {
		o, ok := orders[orderID]
		if !ok {
			continue
		}
		c, ok := ix.customers[o.CustomerID]
		if !ok {
			continue
		}
		st := out[c.State]
		if st == nil {
			st = &stateTotals{}
			out[c.State] = st
		}
		st.orders++
		st.sum += v
	}
	return out
}

func stateTotalsTable(totals map[string]*stateTotals) Table {
	items := make([]ranked, 0, len(totals))
	for state, st := range totals {
		items = append(items, ranked{key: state, value: st.sum})
	}
	var t Table
	for _, r := range rankTop(items, -1, true) {
		st := totals[r.key]
		t.add(r.key, st.orders, round2(st.sum), round2(st.sum/float64(st.orders)))
	}
	return t
}

func computeRevenueByState(ds *data.Dataset, _ Params) Table {
	ix := newIndex(ds)
	return stateTotalsTable(perOrderByState(ix, ds, ix.orderPayment))
}

func computeFreightByState(ds *data.Dataset, _ Params) Table {
	ix := newIndex(ds)
	return stateTotalsTable(perOrderByState(ix, ds, ix.orderFreight))
}

func computeDeliveryVsEstimatePerOrder(ds *data.Dataset, _ Params) Table {
	ix := newIndex(ds)
	orders := make([]data.Order, 0, len(ds.Orders))
	for _, o := range ds.Orders {
		if o.PurchaseTimestamp == nil || o.DeliveredCustomerDate == nil || o.EstimatedDeliveryDate == nil {
			continue
		}
		if _, ok := ix.customers[o.CustomerID]; !ok {
			continue
		}
		orders = append(orders, o)
	}
	slices.SortFunc(orders, func(a, b data.Order) int { return cmp.Compare(a.OrderID, b.OrderID) })

	var t Table
	for _, o := range orders {
		t.add(
			o.OrderID,
			ix.customers[o.CustomerID].State,
			DeliveryDays(*o.PurchaseTimestamp, *o.DeliveredCustomerDate),
			DiffVsEstimateDays(*o.DeliveredCustomerDate, *o.EstimatedDeliveryDate),
		)
	}
	return t
}

// topBottomTable emits the top n (highest first) then the bottom n (lowest
// first); a state may appear on both sides when there are fewer than 2n.
func topBottomTable(items []ranked, n int) Table {
	var t Table
	for i, r := range rankTop(items, n, true) {
		t.add("top", int64(i+1), r.key, round2(r.value))
	}
	for i, r := range rankTop(items, n, false) {
		t.add("bottom", int64(i+1), r.key, round2(r.value))
	}
	return t
}

func computeTopBottomStatesByFreight(ds *data.Dataset, p Params) Table {
	ix := newIndex(ds)
	totals := perOrderByState(ix, ds, ix.orderFreight)
	items := make([]ranked, 0, len(totals))
	for state, st := range totals {
		items = append(items, ranked{key: state, value: st.sum / float64(st.orders)})
	}
	return topBottomTable(items, p.TopN)
}

func computeTopBottomStatesByDeliveryTime(ds *data.Dataset, p Params) Table {
	ix := newIndex(ds)
	means := map[string]*mean{}
	for _, o := range ds.Orders {
		if o.PurchaseTimestamp == nil || o.DeliveredCustomerDate == nil {
			continue
		}
		c, ok := ix.customers[o.CustomerID]
		if !ok {
			continue
		}
		if means[c.State] == nil {
			means[c.State] = &mean{}
		}
		means[c.State].add(float64(DeliveryDays(*o.PurchaseTimestamp, *o.DeliveredCustomerDate)))
	}
	return topBottomTable(stateMeans(means), p.TopN)
}

func computeTopStatesByEarlyDelivery(ds *data.Dataset, p Params) Table {
	ix := newIndex(ds)
	means := map[string]*mean{}
	for _, o := range ds.Orders {
		if o.DeliveredCustomerDate == nil || o.EstimatedDeliveryDate == nil {
			continue
		}
		c, ok := ix.customers[o.CustomerID]
		if !ok {
			continue
		}
		if means[c.State] == nil {
			means[c.State] = &mean{}
		}
		means[c.State].add(float64(EarlyDays(*o.DeliveredCustomerDate, *o.EstimatedDeliveryDate)))
	}

	var t Table
	for i, r := range rankTop(stateMeans(means), p.TopN, true) {
		t.add(int64(i+1), r.key, round2(r.value))
	}
	return t
}

func computeVolumeByPaymentTypeMonth(ds *data.Dataset, _ Params) Table {
	type key struct {
		month monthKey
		kind  string
	}
	purchased := make(map[string]time.Time, len(ds.Orders))
	for _, o := range ds.Orders {
		if o.PurchaseTimestamp != nil {
			purchased[o.OrderID] = *o.PurchaseTimestamp
		}
	}
	orders := map[key]map[string]struct{}{}
	for _, p := range ds.Payments {
		ts, ok := purchased[p.OrderID]
		if !ok {
			continue
		}
		k := key{monthOf(ts), p.Type}
		if orders[k] == nil {
			orders[k] = map[string]struct{}{}
		}
		orders[k][p.OrderID] = struct{}{}
	}
	keys := make([]key, 0, len(orders))
	for k := range orders {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b key) int {
		if c := compareMonth(a.month, b.month); c != 0 {
			return c
		}
		return cmp.Compare(a.kind, b.kind)
	})

	var t Table
	for _, k := range keys {
		t.add(k.month.date(), k.kind, int64(len(orders[k])))
	}
	return t
}

func computeVolumeByInstallments(ds *data.Dataset, _ Params) Table {
	orders := map[int]map[string]struct{}{}
	for _, p := range ds.Payments {
		if orders[p.Installments] == nil {
			orders[p.Installments] = map[string]struct{}{}
		}
		orders[p.Installments][p.OrderID] = struct{}{}
	}
	counts := make([]int, 0, len(orders))
	for n := range orders {
		counts = append(counts, n)
	}
	sort.Ints(counts)

	var t Table
	for _, n := range counts {
		t.add(int64(n), int64(len(orders[n])))
	}
	return t
}

// computeTopCategoriesByRevenue attributes each item's price + freight to its
// own product's category, so an order spanning two categories contributes
// each item exactly once.
func computeTopCategoriesByRevenue(ds *data.Dataset, p Params) Table {
	ix := newIndex(ds)
	revenue := map[string]float64{}
	items := map[string]int64{}
	var total float64
	for _, it := range ds.Items {
		cat := ix.categoryOf(it.ProductID)
		v := it.Price + it.FreightValue
		revenue[cat] += v
		items[cat]++
		total += v
	}
	list := make([]ranked, 0, len(revenue))
	for cat, v := range revenue {
		list = append(list, ranked{key: cat, value: v})
	}

	var t Table
	for i, r := range rankTop(list, p.Limit, true) {
		t.add(int64(i+1), r.key, items[r.key], round2(r.value), percent(r.value, total))
	}
	return t
}

func computeRepeatPurchaseRate(ds *data.Dataset, _ Params) Table {
	ix := newIndex(ds)
	perCustomer := map[string]map[string]struct{}{}
	for _, o := range ds.Orders {
		c, ok := ix.customers[o.CustomerID]
		if !ok {
			continue
		}
		k := customerKey(c)
		if perCustomer[k] == nil {
			perCustomer[k] = map[string]struct{}{}
		}
		perCustomer[k][o.OrderID] = struct{}{}
	}
	var repeat int64
	for _, orders := range perCustomer {
		if len(orders) > 1 {
			repeat++
		}
	}
	total := int64(len(perCustomer))

	var t Table
	t.add(total, repeat, percent(float64(repeat), float64(total)))
	return t
}

func computeTopCitiesByVolume(ds *data.Dataset, p Params) Table {
	type city struct{ name, state string }
	ix := newIndex(ds)
	counts := map[city]int64{}
	var total int64
	for _, o := range ds.Orders {
		c, ok := ix.customers[o.CustomerID]
		if !ok {
			continue
		}
		counts[city{c.City, c.State}]++
		total++
	}
	cities := make([]city, 0, len(counts))
	for c := range counts {
		cities = append(cities, c)
	}
	slices.SortFunc(cities, func(a, b city) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		if c := cmp.Compare(a.name, b.name); c != 0 {
			return c
		}
		return cmp.Compare(a.state, b.state)
	})
	if len(cities) > p.Limit {
		cities = cities[:p.Limit]
	}

	var t Table
	for i, c := range cities {
		n := counts[c]
		t.add(int64(i+1), c.name, c.state, n, percent(float64(n), float64(total)))
	}
	return t
}

func computeDatasetOverview(ds *data.Dataset, _ Params) Table {
	var first, last *time.Time
	for _, o := range ds.Orders {
		ts := o.PurchaseTimestamp
		if ts == nil {
			continue
		}
		if first == nil || ts.Before(*first) {
			first = ts
		}
		if last == nil || ts.After(*last) {
			last = ts
		}
	}
	cities := map[string]struct{}{}
	states := map[string]struct{}{}
	for _, c := range ds.Customers {
		cities[c.City] = struct{}{}
		states[c.State] = struct{}{}
	}

	var t Table
	t.add(timeOrNil(first), timeOrNil(last), int64(len(cities)), int64(len(states)))
	return t
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
