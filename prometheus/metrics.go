package prometheus

import (
	"time"

	"github.com/crockshine/backend-erp/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   *prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Sale metrics
	SalesCounter        *prometheus.CounterVec
	SalesRevenueCounter prometheus.Counter
	UnitsSoldCounter    prometheus.Counter

	// Supplier order metrics
	SupplierOrdersCounter *prometheus.CounterVec
	UnitsReceivedCounter  prometheus.Counter

	// Catalog and discount metrics
	CatalogOperationsCounter  *prometheus.CounterVec
	DiscountOperationsCounter *prometheus.CounterVec

	// Inventory metrics
	ProductInventoryGauge *prometheus.GaugeVec

	// Outbox metrics
	OutboxPublishedCounter *prometheus.CounterVec
	OutboxFailuresCounter  *prometheus.CounterVec
)

// Collectors start out registered on a private registry so packages can
// record before InitMetrics is called, as tests do.
func init() {
	build("erp", prometheus.NewRegistry())
}

// InitMetrics initializes Prometheus metrics with configuration and
// registers them with reg.
func InitMetrics(config *config.Config, reg prometheus.Registerer) {
	build(config.Metrics.Prefix, reg)
}

func build(prefix string, reg prometheus.Registerer) {
	factory := promauto.With(reg)

	AuthAttemptsCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"reason"},
	)

	DbOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	SalesCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_sales_total",
			Help: "Total number of sale attempts by result",
		},
		[]string{"result"},
	)

	SalesRevenueCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_sales_revenue_total",
			Help: "Sum of committed sale totals",
		},
	)

	UnitsSoldCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_units_sold_total",
			Help: "Total number of product units sold",
		},
	)

	SupplierOrdersCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_supplier_orders_total",
			Help: "Total number of supplier order submissions by result",
		},
		[]string{"result"},
	)

	UnitsReceivedCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_units_received_total",
			Help: "Total number of product units received from suppliers",
		},
	)

	CatalogOperationsCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_catalog_operations_total",
			Help: "Total number of catalog operations",
		},
		[]string{"entity", "operation"},
	)

	DiscountOperationsCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_discount_operations_total",
			Help: "Total number of discount rule operations",
		},
		[]string{"operation"},
	)

	ProductInventoryGauge = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_product_inventory",
			Help: "Current inventory level for products",
		},
		[]string{"product_id", "product_name", "category"},
	)

	OutboxPublishedCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_outbox_published_total",
			Help: "Total number of outbox events published",
		},
		[]string{"topic"},
	)

	OutboxFailuresCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_outbox_failures_total",
			Help: "Total number of outbox publish failures",
		},
		[]string{"topic"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordAuthError counts a failed authentication by reason
func RecordAuthError(reason string) {
	AuthErrorsCounter.WithLabelValues(reason).Inc()
}

// RecordSale counts a sale attempt. Committed sales also add to revenue and units.
func RecordSale(result string, revenue float64, units int) {
	SalesCounter.WithLabelValues(result).Inc()
	if result == "created" {
		SalesRevenueCounter.Add(revenue)
		UnitsSoldCounter.Add(float64(units))
	}
}

// RecordSupplierOrder counts a supplier order submission
func RecordSupplierOrder(result string, units int) {
	SupplierOrdersCounter.WithLabelValues(result).Inc()
	if result == "created" {
		UnitsReceivedCounter.Add(float64(units))
	}
}

// RecordCatalogOperation increments the counter for catalog operations
func RecordCatalogOperation(entity, operation string) {
	CatalogOperationsCounter.WithLabelValues(entity, operation).Inc()
}

// RecordDiscountOperation increments the counter for discount rule operations
func RecordDiscountOperation(operation string) {
	DiscountOperationsCounter.WithLabelValues(operation).Inc()
}

// UpdateProductInventory updates the gauge for product inventory
func UpdateProductInventory(productID string, productName string, category string, count float64) {
	ProductInventoryGauge.WithLabelValues(productID, productName, category).Set(count)
}

// RecordOutboxPublish counts a publish attempt for topic
func RecordOutboxPublish(topic string, err error) {
	if err != nil {
		OutboxFailuresCounter.WithLabelValues(topic).Inc()
		return
	}
	OutboxPublishedCounter.WithLabelValues(topic).Inc()
}
