package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

// Olist public dataset file names, in foreign-key load order.
const (
	CustomersFile = "olist_customers_dataset.csv"
	SellersFile   = "olist_sellers_dataset.csv"
	ProductsFile  = "olist_products_dataset.csv"
	OrdersFile    = "olist_orders_dataset.csv"
	ItemsFile     = "olist_order_items_dataset.csv"
	PaymentsFile  = "olist_order_payments_dataset.csv"
	ReviewsFile   = "olist_order_reviews_dataset.csv"
)

// ImportDir loads the seven dataset CSVs found in dir. Rows whose primary key
// already exists are skipped so the import can be re-run. A child row whose
// parent is missing fails the import with ErrOrphanRow once constraints are
// applied.
func ImportDir(ctx context.Context, db *gorm.DB, dir string, batchSize int) ([]TableCount, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}
	steps := []struct {
		table string
		file  string
		load  func(io.Reader) (func(context.Context, *gorm.DB, int) (int, error), error)
	}{
		{"customers", CustomersFile, loader(ParseCustomers)},
		{"sellers", SellersFile, loader(ParseSellers)},
		{"products", ProductsFile, loader(ParseProducts)},
		{"orders", OrdersFile, loader(ParseOrders)},
		{"order_items", ItemsFile, loader(ParseOrderItems)},
		{"payments", PaymentsFile, loader(ParsePayments)},
		{"order_reviews", ReviewsFile, loader(ParseReviews)},
	}

	counts := make([]TableCount, 0, len(steps))
	for _, step := range steps {
		n, err := importFile(ctx, db, filepath.Join(dir, step.file), step.table, batchSize, step.load)
		if err != nil {
			return counts, err
		}
		log.Printf("imported %s: %d rows from %s", step.table, n, step.file)
		counts = append(counts, TableCount{Table: step.table, Rows: int64(n)})
	}
	return counts, nil
}

func importFile(
	ctx context.Context,
	db *gorm.DB,
	path, table string,
	batchSize int,
	load func(io.Reader) (func(context.Context, *gorm.DB, int) (int, error), error),
) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", table, err)
	}
	defer f.Close()

	insert, err := load(f)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return insert(ctx, db, batchSize)
}

func loader[T any](parse func(io.Reader) ([]T, error)) func(io.Reader) (func(context.Context, *gorm.DB, int) (int, error), error) {
	return func(r io.Reader) (func(context.Context, *gorm.DB, int) (int, error), error) {
		rows, err := parse(r)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, db *gorm.DB, batchSize int) (int, error) {
			return len(rows), insertBatches(ctx, db, rows, batchSize)
		}, nil
	}
}

func insertBatches[T any](ctx context.Context, db *gorm.DB, rows []T, batchSize int) error {
	if len(rows) == 0 {
		return nil
	}
	var zero T
	table := tableName(zero)
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, batchSize).Error
	return classifyWriteError(table, err)
}

func tableName(model interface{}) string {
	if t, ok := model.(interface{ TableName() string }); ok {
		return t.TableName()
	}
	return fmt.Sprintf("%T", model)
}

// ParseCustomers reads olist_customers_dataset.csv.
func ParseCustomers(r io.Reader) ([]Customer, error) {
	return parseTable(r, []string{"customer_id", "customer_city", "customer_state"}, func(row *csvRow) Customer {
		return Customer{
			CustomerID:    row.str("customer_id"),
			UniqueID:      row.str("customer_unique_id"),
			ZipCodePrefix: row.str("customer_zip_code_prefix"),
			City:          row.str("customer_city"),
			State:         row.str("customer_state"),
		}
	})
}

func ParseSellers(r io.Reader) ([]Seller, error) {
	return parseTable(r, []string{"seller_id"}, func(row *csvRow) Seller {
		return Seller{
			SellerID:      row.str("seller_id"),
			ZipCodePrefix: row.str("seller_zip_code_prefix"),
			City:          row.str("seller_city"),
			State:         row.str("seller_state"),
		}
	})
}

// ParseProducts reads olist_products_dataset.csv. The misspelled "lenght"
// headers are the dataset's own.
func ParseProducts(r io.Reader) ([]Product, error) {
	return parseTable(r, []string{"product_id"}, func(row *csvRow) Product {
		return Product{
			ProductID:         row.str("product_id"),
			CategoryName:      row.optStr("product_category_name"),
			NameLength:        row.optInt("product_name_lenght"),
			DescriptionLength: row.optInt("product_description_lenght"),
			PhotosQty:         row.optInt("product_photos_qty"),
			WeightG:           row.optFloat("product_weight_g"),
			LengthCm:          row.optFloat("product_length_cm"),
			HeightCm:          row.optFloat("product_height_cm"),
			WidthCm:           row.optFloat("product_width_cm"),
		}
	})
}

func ParseOrders(r io.Reader) ([]Order, error) {
	return parseTable(r, []string{"order_id", "customer_id"}, func(row *csvRow) Order {
		return Order{
			OrderID:               row.str("order_id"),
			CustomerID:            row.str("customer_id"),
			Status:                row.str("order_status"),
			PurchaseTimestamp:     row.optTime("order_purchase_timestamp"),
			ApprovedAt:            row.optTime("order_approved_at"),
			DeliveredCarrierDate:  row.optTime("order_delivered_carrier_date"),
			DeliveredCustomerDate: row.optTime("order_delivered_customer_date"),
			EstimatedDeliveryDate: row.optTime("order_estimated_delivery_date"),
		}
	})
}

func ParseOrderItems(r io.Reader) ([]OrderItem, error) {
	required := []string{"order_id", "order_item_id", "product_id", "seller_id", "price", "freight_value"}
	return parseTable(r, required, func(row *csvRow) OrderItem {
		return OrderItem{
			OrderID:           row.str("order_id"),
			OrderItemID:       row.integer("order_item_id"),
			ProductID:         row.str("product_id"),
			SellerID:          row.str("seller_id"),
			ShippingLimitDate: row.optTime("shipping_limit_date"),
			Price:             row.number("price"),
			FreightValue:      row.number("freight_value"),
		}
	})
}

func ParsePayments(r io.Reader) ([]Payment, error) {
	required := []string{"order_id", "payment_sequential", "payment_type", "payment_installments", "payment_value"}
	return parseTable(r, required, func(row *csvRow) Payment {
		return Payment{
			OrderID:      row.str("order_id"),
			Sequential:   row.integer("payment_sequential"),
			Type:         row.str("payment_type"),
			Installments: row.integer("payment_installments"),
			Value:        row.number("payment_value"),
		}
	})
}

func ParseReviews(r io.Reader) ([]OrderReview, error) {
	return parseTable(r, []string{"review_id", "order_id"}, func(row *csvRow) OrderReview {
		return OrderReview{
			ReviewID:        row.str("review_id"),
			OrderID:         row.str("order_id"),
			Score:           row.integer("review_score"),
			CommentTitle:    row.optStr("review_comment_title"),
			CommentMessage:  row.optStr("review_comment_message"),
			CreationDate:    row.optTime("review_creation_date"),
			AnswerTimestamp: row.optTime("review_answer_timestamp"),
		}
	})
}

func parseTable[T any](r io.Reader, required []string, build func(*csvRow) T) ([]T, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var out []T
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := &csvRow{idx: idx, rec: rec}
		v := build(row)
		if row.err != nil {
			return nil, fmt.Errorf("line %d: %w", line, row.err)
		}
		out = append(out, v)
	}
}

// csvRow reads typed cells by header name. The first conversion failure is
// kept in err; empty cells are NULL for the optional getters.
type csvRow struct {
	idx map[string]int
	rec []string
	err error
}

func (r *csvRow) str(col string) string {
	i, ok := r.idx[col]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

func (r *csvRow) fail(col, raw string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("column %s value %q: %w", col, raw, err)
	}
}

func (r *csvRow) optStr(col string) *string {
	s := r.str(col)
	if s == "" {
		return nil
	}
	return &s
}

func (r *csvRow) integer(col string) int {
	s := r.str(col)
	n, err := strconv.Atoi(s)
	if err != nil {
		r.fail(col, s, err)
	}
	return n
}

func (r *csvRow) optInt(col string) *int {
	s := r.str(col)
	if s == "" {
		return nil
	}
	// some exports write integral columns as "12.0"
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(col, s, err)
		return nil
	}
	n := int(f)
	return &n
}

func (r *csvRow) number(col string) float64 {
	s := r.str(col)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(col, s, err)
	}
	return f
}

func (r *csvRow) optFloat(col string) *float64 {
	s := r.str(col)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(col, s, err)
		return nil
	}
	return &f
}

// optTime reads a zone-less DATETIME as UTC wall-clock time, which is also how
// the driver hands the column back.
func (r *csvRow) optTime(col string) *time.Time {
	s := r.str(col)
	if s == "" {
		return nil
	}
	for _, layout := range []string{dateTimeLayout, dateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	r.fail(col, s, errors.New("not a timestamp"))
	return nil
}
