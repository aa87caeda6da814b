package data

import "time"

// Customer is one purchasing identity per order; UniqueID groups the same
// person across orders.
type Customer struct {
	CustomerID    string `gorm:"column:customer_id;primaryKey;size:32"`
	UniqueID      string `gorm:"column:customer_unique_id;size:32;index"`
	ZipCodePrefix string `gorm:"column:customer_zip_code_prefix;size:8"`
	City          string `gorm:"column:customer_city;size:64;index"`
	State         string `gorm:"column:customer_state;size:2;index"`
}

func (Customer) TableName() string { return "customers" }

// Order carries the lifecycle timestamps the delivery metrics read. Any of
// them may be missing.
type Order struct {
	OrderID               string     `gorm:"column:order_id;primaryKey;size:32"`
	CustomerID            string     `gorm:"column:customer_id;size:32;index"`
	Status                string     `gorm:"column:order_status;size:16;index"`
	PurchaseTimestamp     *time.Time `gorm:"column:order_purchase_timestamp;index"`
	ApprovedAt            *time.Time `gorm:"column:order_approved_at"`
	DeliveredCarrierDate  *time.Time `gorm:"column:order_delivered_carrier_date"`
	DeliveredCustomerDate *time.Time `gorm:"column:order_delivered_customer_date"`
	EstimatedDeliveryDate *time.Time `gorm:"column:order_estimated_delivery_date"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	OrderID           string     `gorm:"column:order_id;primaryKey;size:32"`
	OrderItemID       int        `gorm:"column:order_item_id;primaryKey;autoIncrement:false"`
	ProductID         string     `gorm:"column:product_id;size:32;index"`
	SellerID          string     `gorm:"column:seller_id;size:32;index"`
	ShippingLimitDate *time.Time `gorm:"column:shipping_limit_date"`
	Price             float64    `gorm:"column:price"`
	FreightValue      float64    `gorm:"column:freight_value"`
}

func (OrderItem) TableName() string { return "order_items" }

// Payment is one row of a possibly split payment; an order may have several.
type Payment struct {
	OrderID      string  `gorm:"column:order_id;primaryKey;size:32"`
	Sequential   int     `gorm:"column:payment_sequential;primaryKey;autoIncrement:false"`
	Type         string  `gorm:"column:payment_type;size:20;index"`
	Installments int     `gorm:"column:payment_installments"`
	Value        float64 `gorm:"column:payment_value"`
}

func (Payment) TableName() string { return "payments" }

type Product struct {
	ProductID         string   `gorm:"column:product_id;primaryKey;size:32"`
	CategoryName      *string  `gorm:"column:product_category_name;size:64;index"`
	NameLength        *int     `gorm:"column:product_name_lenght"`
	DescriptionLength *int     `gorm:"column:product_description_lenght"`
	PhotosQty         *int     `gorm:"column:product_photos_qty"`
	WeightG           *float64 `gorm:"column:product_weight_g"`
	LengthCm          *float64 `gorm:"column:product_length_cm"`
	HeightCm          *float64 `gorm:"column:product_height_cm"`
	WidthCm           *float64 `gorm:"column:product_width_cm"`
}

func (Product) TableName() string { return "products" }

type Seller struct {
	SellerID      string `gorm:"column:seller_id;primaryKey;size:32"`
	ZipCodePrefix string `gorm:"column:seller_zip_code_prefix;size:8"`
	City          string `gorm:"column:seller_city;size:64"`
	State         string `gorm:"column:seller_state;size:2"`
}

func (Seller) TableName() string { return "sellers" }

// OrderReview is loaded for referential completeness; no metric reads it.
type OrderReview struct {
	ReviewID        string     `gorm:"column:review_id;primaryKey;size:32"`
	OrderID         string     `gorm:"column:order_id;primaryKey;size:32"`
	Score           int        `gorm:"column:review_score"`
	CommentTitle    *string    `gorm:"column:review_comment_title;size:255"`
	CommentMessage  *string    `gorm:"column:review_comment_message;type:text"`
	CreationDate    *time.Time `gorm:"column:review_creation_date"`
	AnswerTimestamp *time.Time `gorm:"column:review_answer_timestamp"`
}

func (OrderReview) TableName() string { return "order_reviews" }

// Dataset is a read-only snapshot of every table, used by the in-memory
// executor.
type Dataset struct {
	Customers []Customer
	Orders    []Order
	Items     []OrderItem
	Payments  []Payment
	Products  []Product
	Sellers   []Seller
	Reviews   []OrderReview
}
