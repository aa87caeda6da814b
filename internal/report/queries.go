package report

// MySQL 8 renditions of the catalog. Monetary totals are always summed per
// order_id in a CTE before the join to customers so that split payments and
// multi-item orders are not multiplied by the dimension join.

const queryVolumeByYear = `
SELECT
  YEAR(o.order_purchase_timestamp) AS year,
  COUNT(*) AS orders_count
FROM orders o
WHERE o.order_purchase_timestamp IS NOT NULL
GROUP BY year
ORDER BY year`

const queryVolumeByMonth = `
SELECT
  CAST(DATE_FORMAT(o.order_purchase_timestamp, '%Y-%m-01') AS DATE) AS month,
  COUNT(*) AS orders_count
FROM orders o
WHERE o.order_purchase_timestamp IS NOT NULL
GROUP BY month
ORDER BY month`

const queryDaypartMix = `
WITH bucketed AS (
  SELECT
    CASE
      WHEN HOUR(o.order_purchase_timestamp) BETWEEN 0 AND 6 THEN 1
      WHEN HOUR(o.order_purchase_timestamp) BETWEEN 7 AND 12 THEN 2
      WHEN HOUR(o.order_purchase_timestamp) BETWEEN 13 AND 18 THEN 3
      ELSE 4
    END AS slot
  FROM orders o
  WHERE o.order_purchase_timestamp IS NOT NULL
),
counted AS (
  SELECT slot, COUNT(*) AS orders_count
  FROM bucketed
  GROUP BY slot
)
SELECT
  ELT(slot, 'Dawn', 'Morning', 'Afternoon', 'Night') AS daypart,
  orders_count AS orders_count,
  ROUND(100 * orders_count / NULLIF(SUM(orders_count) OVER (), 0), 2) AS share_pct
FROM counted
ORDER BY slot`

const queryVolumeByStateMonth = `
SELECT
  CAST(DATE_FORMAT(o.order_purchase_timestamp, '%Y-%m-01') AS DATE) AS month,
  c.customer_state AS state,
  COUNT(*) AS orders_count
FROM orders o
JOIN customers c ON c.customer_id = o.customer_id
WHERE o.order_purchase_timestamp IS NOT NULL
GROUP BY month, state
ORDER BY month, state`

const queryCustomersByState = `
SELECT
  c.customer_state AS state,
  COUNT(DISTINCT c.customer_id) AS customers_count
FROM customers c
GROUP BY state
ORDER BY customers_count DESC, state`

const queryYoYPartialPeriodGrowth = `
WITH order_payments AS (
  SELECT order_id, SUM(payment_value) AS order_value
  FROM payments
  GROUP BY order_id
),
period_orders AS (
  SELECT o.order_id, YEAR(o.order_purchase_timestamp) AS year
  FROM orders o
  WHERE o.order_purchase_timestamp IS NOT NULL
    AND MONTH(o.order_purchase_timestamp) BETWEEN ? AND ?
),
yearly AS (
  SELECT
    po.year,
    COUNT(*) AS orders_count,
    COALESCE(SUM(op.order_value), 0) AS payment_total
  FROM period_orders po
  LEFT JOIN order_payments op ON op.order_id = po.order_id
  GROUP BY po.year
)
SELECT
  year AS year,
  orders_count AS orders_count,
  ROUND(payment_total, 2) AS payment_total,
  ROUND(100 * (orders_count - LAG(orders_count) OVER w) / NULLIF(LAG(orders_count) OVER w, 0), 2) AS orders_growth_pct,
  ROUND(100 * (payment_total - LAG(payment_total) OVER w) / NULLIF(LAG(payment_total) OVER w, 0), 2) AS payment_growth_pct
FROM yearly
WINDOW w AS (ORDER BY year)
ORDER BY year`

const queryRevenueByState = `
WITH order_payments AS (
  SELECT order_id, SUM(payment_value) AS order_value
  FROM payments
  GROUP BY order_id
)
SELECT
  c.customer_state AS state,
  COUNT(*) AS orders_count,
  ROUND(SUM(op.order_value), 2) AS total_revenue,
  ROUND(AVG(op.order_value), 2) AS avg_order_value
FROM order_payments op
JOIN orders o ON o.order_id = op.order_id
JOIN customers c ON c.customer_id = o.customer_id
GROUP BY state
ORDER BY SUM(op.order_value) DESC, state`

const queryFreightByState = `
WITH order_freight AS (
  SELECT order_id, SUM(freight_value) AS freight
  FROM order_items
  GROUP BY order_id
)
SELECT
  c.customer_state AS state,
  COUNT(*) AS orders_count,
  ROUND(SUM(ofr.freight), 2) AS total_freight,
  ROUND(AVG(ofr.freight), 2) AS avg_freight
FROM order_freight ofr
JOIN orders o ON o.order_id = ofr.order_id
JOIN customers c ON c.customer_id = o.customer_id
GROUP BY state
ORDER BY SUM(ofr.freight) DESC, state`

const queryDeliveryVsEstimatePerOrder = `
SELECT
  o.order_id AS order_id,
  c.customer_state AS state,
  TIMESTAMPDIFF(DAY, o.order_purchase_timestamp, o.order_delivered_customer_date) AS time_to_deliver_days,
  TIMESTAMPDIFF(DAY, o.order_estimated_delivery_date, o.order_delivered_customer_date) AS diff_estimated_delivery_days
FROM orders o
JOIN customers c ON c.customer_id = o.customer_id
WHERE o.order_purchase_timestamp IS NOT NULL
  AND o.order_delivered_customer_date IS NOT NULL
  AND o.order_estimated_delivery_date IS NOT NULL
ORDER BY o.order_id`

const queryTopBottomStatesByFreight = `
WITH order_freight AS (
  SELECT order_id, SUM(freight_value) AS freight
  FROM order_items
  GROUP BY order_id
),
state_freight AS (
  SELECT c.customer_state AS state, AVG(ofr.freight) AS avg_value
  FROM order_freight ofr
  JOIN orders o ON o.order_id = ofr.order_id
  JOIN customers c ON c.customer_id = o.customer_id
  GROUP BY c.customer_state
),
ranked AS (
  SELECT
    state,
    avg_value,
    ROW_NUMBER() OVER (ORDER BY avg_value DESC, state) AS top_rank,
    ROW_NUMBER() OVER (ORDER BY avg_value ASC, state) AS bottom_rank
  FROM state_freight
)
SELECT side AS side, rank_no AS rank_no, state AS state, avg_freight AS avg_freight
FROM (
  SELECT 'top' AS side, top_rank AS rank_no, state, ROUND(avg_value, 2) AS avg_freight
  FROM ranked WHERE top_rank <= ?
  UNION ALL
  SELECT 'bottom' AS side, bottom_rank AS rank_no, state, ROUND(avg_value, 2) AS avg_freight
  FROM ranked WHERE bottom_rank <= ?
) sides
ORDER BY side DESC, rank_no`

const queryTopBottomStatesByDeliveryTime = `
WITH state_delivery AS (
  SELECT
    c.customer_state AS state,
    AVG(TIMESTAMPDIFF(DAY, o.order_purchase_timestamp, o.order_delivered_customer_date)) AS avg_value
  FROM orders o
  JOIN customers c ON c.customer_id = o.customer_id
  WHERE o.order_purchase_timestamp IS NOT NULL
    AND o.order_delivered_customer_date IS NOT NULL
  GROUP BY c.customer_state
),
ranked AS (
  SELECT
    state,
    avg_value,
    ROW_NUMBER() OVER (ORDER BY avg_value DESC, state) AS top_rank,
    ROW_NUMBER() OVER (ORDER BY avg_value ASC, state) AS bottom_rank
  FROM state_delivery
)
SELECT side AS side, rank_no AS rank_no, state AS state, avg_delivery_days AS avg_delivery_days
FROM (
  SELECT 'top' AS side, top_rank AS rank_no, state, ROUND(avg_value, 2) AS avg_delivery_days
  FROM ranked WHERE top_rank <= ?
  UNION ALL
  SELECT 'bottom' AS side, bottom_rank AS rank_no, state, ROUND(avg_value, 2) AS avg_delivery_days
  FROM ranked WHERE bottom_rank <= ?
) sides
ORDER BY side DESC, rank_no`

const queryTopStatesByEarlyDelivery = `
WITH state_early AS (
  SELECT
    c.customer_state AS state,
    AVG(TIMESTAMPDIFF(DAY, o.order_delivered_customer_date, o.order_estimated_delivery_date)) AS avg_value
  FROM orders o
  JOIN customers c ON c.customer_id = o.customer_id
  WHERE o.order_delivered_customer_date IS NOT NULL
    AND o.order_estimated_delivery_date IS NOT NULL
  GROUP BY c.customer_state
)
SELECT
  ROW_NUMBER() OVER (ORDER BY avg_value DESC, state) AS rank_no,
  state AS state,
  ROUND(avg_value, 2) AS avg_early_days
FROM state_early
ORDER BY rank_no
LIMIT ?`

const queryVolumeByPaymentTypeMonth = `
SELECT
  CAST(DATE_FORMAT(o.order_purchase_timestamp, '%Y-%m-01') AS DATE) AS month,
  p.payment_type AS payment_type,
  COUNT(DISTINCT o.order_id) AS orders_count
FROM orders o
JOIN payments p ON p.order_id = o.order_id
WHERE o.order_purchase_timestamp IS NOT NULL
GROUP BY month, payment_type
ORDER BY month, payment_type`

const queryVolumeByInstallments = `
SELECT
  p.payment_installments AS installments,
  COUNT(DISTINCT p.order_id) AS orders_count
FROM payments p
GROUP BY installments
ORDER BY installments`

// Revenue is attributed per item row (price + freight_value), never by
// spreading an order's payment total over every category it touches.
const queryTopCategoriesByRevenue = `
WITH item_revenue AS (
  SELECT
    COALESCE(pr.product_category_name, 'unknown') AS category,
    oi.price + oi.freight_value AS revenue
  FROM order_items oi
  LEFT JOIN products pr ON pr.product_id = oi.product_id
),
category_revenue AS (
  SELECT category, COUNT(*) AS items_count, SUM(revenue) AS revenue
  FROM item_revenue
  GROUP BY category
)
SELECT
  ROW_NUMBER() OVER (ORDER BY revenue DESC, category) AS rank_no,
  category AS category,
  items_count AS items_count,
  ROUND(revenue, 2) AS revenue,
  ROUND(100 * revenue / NULLIF(SUM(revenue) OVER (), 0), 2) AS share_pct
FROM category_revenue
ORDER BY rank_no
LIMIT ?`

const queryRepeatPurchaseRate = `
WITH customer_orders AS (
  SELECT
    COALESCE(NULLIF(c.customer_unique_id, ''), c.customer_id) AS customer_key,
    COUNT(DISTINCT o.order_id) AS orders_count
  FROM orders o
  JOIN customers c ON c.customer_id = o.customer_id
  GROUP BY customer_key
)
SELECT
  COUNT(*) AS total_customers,
  CAST(COALESCE(SUM(orders_count > 1), 0) AS SIGNED) AS repeat_customers,
  ROUND(100 * SUM(orders_count > 1) / NULLIF(COUNT(*), 0), 2) AS repeat_rate_pct
FROM customer_orders`

const queryTopCitiesByVolume = `
WITH city_orders AS (
  SELECT c.customer_city AS city, c.customer_state AS state, COUNT(*) AS orders_count
  FROM orders o
  JOIN customers c ON c.customer_id = o.customer_id
  GROUP BY c.customer_city, c.customer_state
)
SELECT
  ROW_NUMBER() OVER (ORDER BY orders_count DESC, city, state) AS rank_no,
  city AS city,
  state AS state,
  orders_count AS orders_count,
  ROUND(100 * orders_count / NULLIF(SUM(orders_count) OVER (), 0), 2) AS share_pct
FROM city_orders
ORDER BY rank_no
LIMIT ?`

const queryDatasetOverview = `
SELECT
  (SELECT MIN(order_purchase_timestamp) FROM orders) AS first_purchase,
  (SELECT MAX(order_purchase_timestamp) FROM orders) AS last_purchase,
  COUNT(DISTINCT c.customer_city) AS cities_count,
  COUNT(DISTINCT c.customer_state) AS states_count
FROM customers c`
