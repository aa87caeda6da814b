package report

import (
	"context"
	"testing"
	"time"

	"ecommerce-analytics/internal/data"

	"github.com/stretchr/testify/require"
)

func ts(s string) *time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return &t
}

func strPtr(s string) *string { return &s }

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// fixture is small enough to verify every metric by hand:
//
//	o1 c1/SP 2017-01-10 05:30  items A 100+10, B 50+5   paid 120 cc + 45 voucher
//	o2 c2/SP 2018-03-15 09:00  item  A 200+20           paid 220 boleto
//	o3 c3/RJ 2018-02-20 14:00  item  ? 30+3  (not yet delivered)
//	o4 c5/PR no purchase timestamp, no items, no payments
//	o5 c3/RJ 2017-08-31 22:00  item  B 40+8
//	o6 c4/MG 2018-08-01 13:00  item  B 60+12
//
// c1 and c2 are the same person (unique id u1).
func fixture() *data.Dataset {
	return &data.Dataset{
		Customers: []data.Customer{
			{CustomerID: "c1", UniqueID: "u1", City: "sao paulo", State: "SP"},
			{CustomerID: "c2", UniqueID: "u1", City: "sao paulo", State: "SP"},
			{CustomerID: "c3", UniqueID: "u3", City: "rio de janeiro", State: "RJ"},
			{CustomerID: "c4", UniqueID: "u4", City: "belo horizonte", State: "MG"},
			{CustomerID: "c5", UniqueID: "u5", City: "curitiba", State: "PR"},
		},
		Orders: []data.Order{
			{OrderID: "o1", CustomerID: "c1", PurchaseTimestamp: ts("2017-01-10 05:30"), DeliveredCustomerDate: ts("2017-01-20 10:00"), EstimatedDeliveryDate: ts("2017-01-25 00:00")},
			{OrderID: "o2", CustomerID: "c2", PurchaseTimestamp: ts("2018-03-15 09:00"), DeliveredCustomerDate: ts("2018-04-01 09:00"), EstimatedDeliveryDate: ts("2018-03-30 00:00")},
			{OrderID: "o3", CustomerID: "c3", PurchaseTimestamp: ts("2018-02-20 14:00"), EstimatedDeliveryDate: ts("2018-03-10 00:00")},
			{OrderID: "o4", CustomerID: "c5"},
			{OrderID: "o5", CustomerID: "c3", PurchaseTimestamp: ts("2017-08-31 22:00"), DeliveredCustomerDate: ts("2017-09-05 22:00"), EstimatedDeliveryDate: ts("2017-09-20 00:00")},
			{OrderID: "o6", CustomerID: "c4", PurchaseTimestamp: ts("2018-08-01 13:00"), DeliveredCustomerDate: ts("2018-08-11 13:00"), EstimatedDeliveryDate: ts("2018-08-10 00:00")},
		},
		Products: []data.Product{
			{ProductID: "pA", CategoryName: strPtr("A")},
			{ProductID: "pB", CategoryName: strPtr("B")},
			{ProductID: "pX"},
		},
		Items: []data.OrderItem{
			{OrderID: "o1", OrderItemID: 1, ProductID: "pA", Price: 100, FreightValue: 10},
			{OrderID: "o1", OrderItemID: 2, ProductID: "pB", Price: 50, FreightValue: 5},
			{OrderID: "o2", OrderItemID: 1, ProductID: "pA", Price: 200, FreightValue: 20},
			{OrderID: "o3", OrderItemID: 1, ProductID: "pX", Price: 30, FreightValue: 3},
			{OrderID: "o5", OrderItemID: 1, ProductID: "pB", Price: 40, FreightValue: 8},
			{OrderID: "o6", OrderItemID: 1, ProductID: "pB", Price: 60, FreightValue: 12},
		},
		Payments: []data.Payment{
			{OrderID: "o1", Sequential: 1, Type: "credit_card", Installments: 2, Value: 120},
			{OrderID: "o1", Sequential: 2, Type: "voucher", Installments: 1, Value: 45},
			{OrderID: "o2", Sequential: 1, Type: "boleto", Installments: 1, Value: 220},
			{OrderID: "o3", Sequential: 1, Type: "credit_card", Installments: 3, Value: 33},
			{OrderID: "o5", Sequential: 1, Type: "credit_card", Installments: 2, Value: 48},
			{OrderID: "o6", Sequential: 1, Type: "debit_card", Installments: 1, Value: 72},
		},
	}
}

func run(t *testing.T, ds *data.Dataset, name Name, p Params) Table {
	t.Helper()
	m, ok := Lookup(name)
	require.True(t, ok, "metric %s not in catalog", name)
	table, err := NewMemoryExecutor(ds).Run(context.Background(), m, p)
	require.NoError(t, err)
	require.Equal(t, m.Columns, table.Columns)
	for i, row := range table.Rows {
		require.Len(t, row, len(m.Columns), "row %d", i)
	}
	return table
}
