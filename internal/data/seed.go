package data

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeedConfig controls how many synthetic orders are generated.
type SeedConfig struct {
	Orders    int
	BatchSize int
	Seed      int64
}

var (
	seedRangeStart = time.Date(2016, time.September, 4, 0, 0, 0, 0, time.UTC)
	seedRangeDays  = 727 // through 2018-08-31
)

// SeedDataset tops the database up to cfg.Orders synthetic orders with their
// customers, items, payments and reviews. Existing rows are kept.
func SeedDataset(ctx context.Context, db *gorm.DB, cfg SeedConfig) error {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}

	var existing int64
	if err := db.WithContext(ctx).Model(&Order{}).Count(&existing).Error; err != nil {
		return err
	}
	if int(existing) >= cfg.Orders {
		return nil
	}

	ds := BuildSyntheticDataset(cfg.Orders-int(existing), cfg.Seed+existing)
	steps := []func() error{
		func() error { return insertBatches(ctx, db, ds.Customers, cfg.BatchSize) },
		func() error { return insertBatches(ctx, db, ds.Sellers, cfg.BatchSize) },
		func() error { return insertBatches(ctx, db, ds.Products, cfg.BatchSize) },
		func() error { return insertBatches(ctx, db, ds.Orders, cfg.BatchSize) },
		func() error { return insertBatches(ctx, db, ds.Items, cfg.BatchSize) },
		func() error { return insertBatches(ctx, db, ds.Payments, cfg.BatchSize) },
		func() error { return insertBatches(ctx, db, ds.Reviews, cfg.BatchSize) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// BuildSyntheticDataset generates a referentially complete dataset of the
// given number of orders. The same seed always yields the same rows.
func BuildSyntheticDataset(orders int, seed int64) *Dataset {
	rnd := rand.New(rand.NewSource(seed))
	ds := &Dataset{}

	for i := 0; i < 40; i++ {
		loc := randomChoice(locations, rnd)
		ds.Sellers = append(ds.Sellers, Seller{
			SellerID:      newID(rnd),
			ZipCodePrefix: fmt.Sprintf("%05d", rnd.Intn(99999)),
			City:          loc.city,
			State:         loc.state,
		})
	}
	for i := 0; i < 150; i++ {
		p := Product{ProductID: newID(rnd)}
		if rnd.Float64() > 0.02 {
			cat := randomChoice(categories, rnd)
			p.CategoryName = &cat
		}
		photos := rnd.Intn(6) + 1
		weight := float64(100 + rnd.Intn(5000))
		p.PhotosQty = &photos
		p.WeightG = &weight
		ds.Products = append(ds.Products, p)
	}

	var previous []Customer
	for i := 0; i < orders; i++ {
		cust := buildSyntheticCustomer(rnd, previous)
		previous = append(previous, cust)
		ds.Customers = append(ds.Customers, cust)

		order := buildSyntheticOrder(rnd, cust.CustomerID)
		ds.Orders = append(ds.Orders, order)

		var total float64
		itemCount := rnd.Intn(3) + 1
		for n := 1; n <= itemCount; n++ {
			item := OrderItem{
				OrderID:      order.OrderID,
				OrderItemID:  n,
				ProductID:    ds.Products[rnd.Intn(len(ds.Products))].ProductID,
				SellerID:     ds.Sellers[rnd.Intn(len(ds.Sellers))].SellerID,
				Price:        money(10 + rnd.Float64()*490),
				FreightValue: money(5 + rnd.Float64()*45),
			}
			if order.PurchaseTimestamp != nil {
				limit := order.PurchaseTimestamp.Add(72 * time.Hour)
				item.ShippingLimitDate = &limit
			}
			total += item.Price + item.FreightValue
			ds.Items = append(ds.Items, item)
		}
		ds.Payments = append(ds.Payments, buildSyntheticPayments(rnd, order.OrderID, money(total))...)

		review := OrderReview{
			ReviewID: newID(rnd),
			OrderID:  order.OrderID,
			Score:    randomScore(rnd),
		}
		if order.DeliveredCustomerDate != nil {
			created := order.DeliveredCustomerDate.Add(24 * time.Hour)
			review.CreationDate = &created
		}
		ds.Reviews = append(ds.Reviews, review)
	}
	return ds
}

func buildSyntheticCustomer(rnd *rand.Rand, previous []Customer) Customer {
	cust := Customer{
		CustomerID:    newID(rnd),
		ZipCodePrefix: fmt.Sprintf("%05d", rnd.Intn(99999)),
	}
	// roughly one order in ten comes from a returning person
	if len(previous) > 0 && rnd.Float64() < 0.1 {
		prior := previous[rnd.Intn(len(previous))]
		cust.UniqueID = prior.UniqueID
		cust.City = prior.City
		cust.State = prior.State
		return cust
	}
	loc := randomChoiceWeighted(locations, rnd)
	cust.UniqueID = newID(rnd)
	cust.City = loc.city
	cust.State = loc.state
	return cust
}

func buildSyntheticOrder(rnd *rand.Rand, customerID string) Order {
	purchased := seedRangeStart.
		AddDate(0, 0, rnd.Intn(seedRangeDays)).
		Add(time.Duration(rnd.Intn(24*60*60)) * time.Second)
	approved := purchased.Add(time.Duration(rnd.Intn(48)+1) * time.Hour)
	estimated := time.Date(purchased.Year(), purchased.Month(), purchased.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, 15+rnd.Intn(26))

	order := Order{
		OrderID:               newID(rnd),
		CustomerID:            customerID,
		Status:                randomStatus(rnd),
		PurchaseTimestamp:     &purchased,
		ApprovedAt:            &approved,
		EstimatedDeliveryDate: &estimated,
	}
	switch order.Status {
	case "delivered":
		carrier := approved.Add(time.Duration(rnd.Intn(96)+1) * time.Hour)
		delivered := carrier.Add(time.Duration(rnd.Intn(30*24)+12) * time.Hour)
		order.DeliveredCarrierDate = &carrier
		order.DeliveredCustomerDate = &delivered
	case "shipped":
		carrier := approved.Add(time.Duration(rnd.Intn(96)+1) * time.Hour)
		order.DeliveredCarrierDate = &carrier
	case "canceled":
		order.ApprovedAt = nil
	}
	return order
}

// buildSyntheticPayments splits total across one or more payment rows.
func buildSyntheticPayments(rnd *rand.Rand, orderID string, total float64) []Payment {
	if rnd.Float64() < 0.1 && total > 20 {
		voucher := money(total * (0.1 + rnd.Float64()*0.4))
		return []Payment{
			{OrderID: orderID, Sequential: 1, Type: "voucher", Installments: 1, Value: voucher},
			{OrderID: orderID, Sequential: 2, Type: "credit_card", Installments: rnd.Intn(10) + 1, Value: money(total - voucher)},
		}
	}
	kind := randomChoice(paymentTypes, rnd)
	installments := 1
	if kind == "credit_card" {
		installments = rnd.Intn(10) + 1
	}
	return []Payment{{OrderID: orderID, Sequential: 1, Type: kind, Installments: installments, Value: total}}
}

type location struct {
	city   string
	state  string
	weight int
}

var (
	locations = []location{
		{"sao paulo", "SP", 30},
		{"campinas", "SP", 8},
		{"rio de janeiro", "RJ", 14},
		{"niteroi", "RJ", 3},
		{"belo horizonte", "MG", 10},
		{"porto alegre", "RS", 6},
		{"curitiba", "PR", 5},
		{"florianopolis", "SC", 4},
		{"salvador", "BA", 4},
		{"brasilia", "DF", 3},
		{"goiania", "GO", 2},
		{"vitoria", "ES", 2},
		{"recife", "PE", 2},
		{"fortaleza", "CE", 2},
		{"manaus", "AM", 1},
		{"belem", "PA", 1},
	}
	categories = []string{
		"cama_mesa_banho", "beleza_saude", "esporte_lazer", "informatica_acessorios",
		"moveis_decoracao", "utilidades_domesticas", "relogios_presentes", "telefonia",
		"automotivo", "brinquedos",
	}
	paymentTypes = []string{"credit_card", "credit_card", "credit_card", "boleto", "debit_card"}
	statuses     = map[string]int{
		"delivered":  90,
		"shipped":    5,
		"canceled":   3,
		"processing": 2,
	}
	statusOrder = []string{"delivered", "shipped", "canceled", "processing"}
)

func newID(rnd *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(rnd)
	if err != nil {
		// math/rand readers never fail
		panic(err)
	}
	return strings.ReplaceAll(id.String(), "-", "")
}

func money(v float64) float64 {
	return math.Round(v*100) / 100
}

func randomChoice[T any](items []T, rnd *rand.Rand) T {
	return items[rnd.Intn(len(items))]
}

func randomChoiceWeighted(items []location, rnd *rand.Rand) location {
	total := 0
	for _, item := range items {
		total += item.weight
	}
	n := rnd.Intn(total)
	for _, item := range items {
		n -= item.weight
		if n < 0 {
			return item
		}
	}
	return items[0]
}

func randomStatus(rnd *rand.Rand) string {
	n := rnd.Intn(100)
	for _, s := range statusOrder {
		n -= statuses[s]
		if n < 0 {
			return s
		}
	}
	return statusOrder[0]
}

func randomScore(rnd *rand.Rand) int {
	if rnd.Float64() < 0.6 {
		return 5
	}
	return rnd.Intn(5) + 1
}
