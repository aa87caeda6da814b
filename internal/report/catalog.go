package report

import (
	"fmt"
	"strings"

	"ecommerce-analytics/internal/data"

	"github.com/go-playground/validator/v10"
)

// Name identifies a metric in the catalog.
type Name string

const (
	VolumeByYear                 Name = "volume-by-year"
	VolumeByMonth                Name = "volume-by-month"
	DaypartMix                   Name = "daypart-mix"
	VolumeByStateMonth           Name = "volume-by-state-month"
	CustomersByState             Name = "customers-by-state"
	YoYPartialPeriodGrowth       Name = "yoy-partial-period-growth"
	RevenueByState               Name = "revenue-by-state"
	FreightByState               Name = "freight-by-state"
	DeliveryVsEstimatePerOrder   Name = "delivery-vs-estimate-per-order"
	TopBottomStatesByFreight     Name = "top-bottom-states-by-freight"
	TopBottomStatesByDeliveryDay Name = "top-bottom-states-by-delivery-time"
	TopStatesByEarlyDelivery     Name = "top-states-by-early-delivery"
	VolumeByPaymentTypeMonth     Name = "volume-by-payment-type-month"
	VolumeByInstallments         Name = "volume-by-installments"
	TopCategoriesByRevenue       Name = "top-categories-by-revenue"
	RepeatPurchaseRate           Name = "repeat-purchase-rate"
	TopCitiesByVolume            Name = "top-cities-by-volume"
	DatasetOverview              Name = "dataset-overview"
)

// Params tune the metrics that take arguments.
type Params struct {
	// Inclusive month range compared year over year.
	PeriodFromMonth int `validate:"min=1,max=12"`
	PeriodToMonth   int `validate:"min=1,max=12,gtefield=PeriodFromMonth"`
	// States per side in the top/bottom rankings.
	TopN int `validate:"min=1,max=50"`
	// Rows in the category and city leaderboards.
	Limit int `validate:"min=1,max=1000"`
}

// DefaultParams compares January through August and ranks five states per side.
func DefaultParams() Params {
	return Params{PeriodFromMonth: 1, PeriodToMonth: 8, TopN: 5, Limit: 10}
}

var validate = validator.New()

func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

// Metric is one named aggregation with both its SQL text and its in-memory
// rendition.
type Metric struct {
	Name        Name
	Description string
	Columns     []string
	Query       string
	Args        func(Params) []any
	Compute     func(*data.Dataset, Params) Table
}

func noArgs(Params) []any { return nil }

func topNArgs(p Params) []any { return []any{p.TopN, p.TopN} }

var catalog = []Metric{
	{
		Name:        VolumeByYear,
		Description: "Orders per purchase year.",
		Columns:     []string{"year", "orders_count"},
		Query:       queryVolumeByYear,
		Args:        noArgs,
		Compute:     computeVolumeByYear,
	},
	{
		Name:        VolumeByMonth,
		Description: "Orders per purchase month.",
		Columns:     []string{"month", "orders_count"},
		Query:       queryVolumeByMonth,
		Args:        noArgs,
		Compute:     computeVolumeByMonth,
	},
	{
		Name:        DaypartMix,
		Description: "Orders by time of day of purchase (Dawn, Morning, Afternoon, Night).",
		Columns:     []string{"daypart", "orders_count", "share_pct"},
		Query:       queryDaypartMix,
		Args:        noArgs,
		Compute:     computeDaypartMix,
	},
	{
		Name:        VolumeByStateMonth,
		Description: "Orders per month and customer state.",
		Columns:     []string{"month", "state", "orders_count"},
		Query:       queryVolumeByStateMonth,
		Args:        noArgs,
		Compute:     computeVolumeByStateMonth,
	},
	{
		Name:        CustomersByState,
		Description: "Customers per state.",
		Columns:     []string{"state", "customers_count"},
		Query:       queryCustomersByState,
		Args:        noArgs,
		Compute:     computeCustomersByState,
	},
	{
		Name:        YoYPartialPeriodGrowth,
		Description: "Orders and payment value per year within a month window, with growth over the previous year.",
		Columns:     []string{"year", "orders_count", "payment_total", "orders_growth_pct", "payment_growth_pct"},
		Query:       queryYoYPartialPeriodGrowth,
		Args:        func(p Params) []any { return []any{p.PeriodFromMonth, p.PeriodToMonth} },
		Compute:     computeYoYPartialPeriodGrowth,
	},
	{
		Name:        RevenueByState,
		Description: "Total and average order value per customer state.",
		Columns:     []string{"state", "orders_count", "total_revenue", "avg_order_value"},
		Query:       queryRevenueByState,
		Args:        noArgs,
		Compute:     computeRevenueByState,
	},
	{
		Name:        FreightByState,
		Description: "Total and average per-order freight per customer state.",
		Columns:     []string{"state", "orders_count", "total_freight", "avg_freight"},
		Query:       queryFreightByState,
		Args:        noArgs,
		Compute:     computeFreightByState,
	},
	{
		Name:        DeliveryVsEstimatePerOrder,
		Description: "Days to deliver each order and days past its estimate (negative when early).",
		Columns:     []string{"order_id", "state", "time_to_deliver_days", "diff_estimated_delivery_days"},
		Query:       queryDeliveryVsEstimatePerOrder,
		Args:        noArgs,
		Compute:     computeDeliveryVsEstimatePerOrder,
	},
	{
		Name:        TopBottomStatesByFreight,
		Description: "States with the highest and lowest average per-order freight.",
		Columns:     []string{"side", "rank_no", "state", "avg_freight"},
		Query:       queryTopBottomStatesByFreight,
		Args:        topNArgs,
		Compute:     computeTopBottomStatesByFreight,
	},
	{
		Name:        TopBottomStatesByDeliveryDay,
		Description: "States with the longest and shortest average delivery time.",
		Columns:     []string{"side", "rank_no", "state", "avg_delivery_days"},
		Query:       queryTopBottomStatesByDeliveryTime,
		Args:        topNArgs,
		Compute:     computeTopBottomStatesByDeliveryTime,
	},
	{
		Name:        TopStatesByEarlyDelivery,
		Description: "States where orders arrive furthest ahead of the estimate.",
		Columns:     []string{"rank_no", "state", "avg_early_days"},
		Query:       queryTopStatesByEarlyDelivery,
		Args:        func(p Params) []any { return []any{p.TopN} },
		Compute:     computeTopStatesByEarlyDelivery,
	},
	{
		Name:        VolumeByPaymentTypeMonth,
		Description: "Orders per month and payment type.",
		Columns:     []string{"month", "payment_type", "orders_count"},
		Query:       queryVolumeByPaymentTypeMonth,
		Args:        noArgs,
		Compute:     computeVolumeByPaymentTypeMonth,
	},
	{
		Name:        VolumeByInstallments,
		Description: "Orders per installment count.",
		Columns:     []string{"installments", "orders_count"},
		Query:       queryVolumeByInstallments,
		Args:        noArgs,
		Compute:     computeVolumeByInstallments,
	},
	{
		Name:        TopCategoriesByRevenue,
		Description: "Product categories by item revenue (price + freight per item).",
		Columns:     []string{"rank_no", "category", "items_count", "revenue", "share_pct"},
		Query:       queryTopCategoriesByRevenue,
		Args:        func(p Params) []any { return []any{p.Limit} },
		Compute:     computeTopCategoriesByRevenue,
	},
	{
		Name:        RepeatPurchaseRate,
		Description: "Share of ordering customers with more than one order.",
		Columns:     []string{"total_customers", "repeat_customers", "repeat_rate_pct"},
		Query:       queryRepeatPurchaseRate,
		Args:        noArgs,
		Compute:     computeRepeatPurchaseRate,
	},
	{
		Name:        TopCitiesByVolume,
		Description: "Customer cities by order count.",
		Columns:     []string{"rank_no", "city", "state", "orders_count", "share_pct"},
		Query:       queryTopCitiesByVolume,
		Args:        func(p Params) []any { return []any{p.Limit} },
		Compute:     computeTopCitiesByVolume,
	},
	{
		Name:        DatasetOverview,
		Description: "Purchase time range and customer geography coverage.",
		Columns:     []string{"first_purchase", "last_purchase", "cities_count", "states_count"},
		Query:       queryDatasetOverview,
		Args:        noArgs,
		Compute:     computeDatasetOverview,
	},
}

// Catalog returns every metric in reporting order.
func Catalog() []Metric {
	out := make([]Metric, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a metric by name.
func Lookup(name Name) (Metric, bool) {
	for _, m := range catalog {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Select resolves a comma separated list of names; "all" or an empty string
// selects the whole catalog.
func Select(spec string) ([]Metric, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == "all" {
		return Catalog(), nil
	}
	var out []Metric
	seen := map[Name]bool{}
	for _, part := range strings.Split(spec, ",") {
		name := Name(strings.TrimSpace(part))
		if name == "" || seen[name] {
			continue
		}
		m, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown metric %q", name)
		}
		seen[name] = true
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no metric names in %q", spec)
	}
	return out, nil
}
