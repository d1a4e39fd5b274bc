package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"

	"github.com/revendazap/backend/internal/auth"
	"github.com/revendazap/backend/internal/catalog"
	"github.com/revendazap/backend/internal/config"
	"github.com/revendazap/backend/internal/customers"
	"github.com/revendazap/backend/internal/notification"
	"github.com/revendazap/backend/internal/payment"
	"github.com/revendazap/backend/internal/pkg/logging"
	"github.com/revendazap/backend/internal/sales"
	"github.com/revendazap/backend/internal/snapshot"
)

const serviceName = "revendazap-api"

func main() {
	config.Load()

	logger := logging.MustNewLogger(serviceName, config.GetEnv("ENV", "development"))
	defer logger.Sync()

	// Initialize OpenTelemetry
	tp, err := initTracer()
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("error shutting down tracer", zap.Error(err))
		}
	}()

	mp, err := initMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			logger.Warn("error shutting down meter", zap.Error(err))
		}
	}()

	// Initialize database
	dbPool, err := initDB(logger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbPool.Close()

	// Repositories
	sellerRepository := auth.NewSellerRepository(dbPool)
	customerRepository := customers.NewCustomerRepository(dbPool)
	catalogRepository := catalog.NewCatalogRepository(dbPool)
	saleRepository := sales.NewSaleRepository(dbPool)

	// Outbound adapters
	whatsapp := notification.NewWhatsAppClient(
		config.GetEnv("WHATSAPP_API_URL", "https://envia.recargasmax.com.br/api/send/whatsapp"),
		sellerRepository,
		logger,
	)
	mercadopago := payment.NewClient(
		config.GetEnv("MERCADOPAGO_API_URL", "https://api.mercadopago.com"),
		logger,
	)

	// Snapshot cache, patched by the use cases below
	stateStore := snapshot.NewStore(customerRepository, catalogRepository, catalogRepository, saleRepository, logger)

	// Use cases
	authUseCase := auth.NewUseCase(sellerRepository, logger)
	customerUseCase := customers.NewUseCase(customerRepository, stateStore, logger)
	catalogUseCase := catalog.NewUseCase(catalogRepository, stateStore, logger)
	saleUseCase := sales.NewUseCase(saleRepository, customerRepository, catalogRepository, whatsapp, stateStore, logger)
	paymentUseCase := payment.NewUseCase(mercadopago, sellerRepository, saleRepository, logger)

	// Handlers
	tracer := tp.Tracer(serviceName)
	authHandler := auth.NewHandler(authUseCase)
	customerHandler := customers.NewHandler(customerUseCase)
	catalogHandler := catalog.NewHandler(catalogUseCase)
	saleHandler := sales.NewHandler(saleUseCase, tracer)
	paymentHandler := payment.NewHandler(paymentUseCase)
	snapshotHandler := snapshot.NewHandler(stateStore)

	// Setup Gin router
	r := gin.Default()
	r.Use(otelgin.Middleware(config.GetEnv("SERVICE_NAME", serviceName)))
	r.Use(auth.Middleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
	})

	// Gateway webhook: o vendedor vem da URL cadastrada no provedor.
	r.POST("/webhooks/mercadopago/:sellerID", paymentHandler.Webhook)

	api := r.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.GET("/auth/me", authHandler.Me)
		api.PUT("/auth/integrations", authHandler.UpdateIntegrations)

		api.GET("/customers", customerHandler.List)
		api.POST("/customers", customerHandler.Create)
		api.PUT("/customers/:id", customerHandler.Update)
		api.DELETE("/customers/:id", customerHandler.Delete)

		api.GET("/apps", catalogHandler.ListApps)
		api.POST("/apps", catalogHandler.CreateApp)
		api.PUT("/apps/:id", catalogHandler.UpdateApp)
		api.DELETE("/apps/:id", catalogHandler.DeleteApp)
		api.POST("/apps/:id/codes", catalogHandler.AddCodes)

		api.GET("/sales", saleHandler.List)
		api.POST("/sales", saleHandler.Create)
		api.POST("/sales/:id/confirm", saleHandler.Confirm)
		api.PUT("/sales/:id", saleHandler.Update)
		api.DELETE("/sales/:id", saleHandler.Delete)
		api.POST("/sales/:id/resend", saleHandler.Resend)

		api.POST("/payments/pix", paymentHandler.CreatePix)

		api.GET("/state", snapshotHandler.Get)
	}

	port := config.GetEnv("PORT", "8080")
	logger.Info("server listening", zap.String("port", port))

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func initDB(logger *zap.Logger) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		config.GetEnv("DATABASE_USER", "root"),
		config.GetEnv("DATABASE_PASSWORD", "pass"),
		config.GetEnv("DATABASE_HOST", "localhost"),
		config.GetEnv("DATABASE_PORT", "5432"),
		config.GetEnv("DATABASE_NAME", "revendazap_db"),
	)

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = 1 * time.Minute

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Wait for database to be ready
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			logger.Info("connected to database")
			return pool, nil
		}
		logger.Info("waiting for database", zap.Int("attempt", i+1))
		time.Sleep(1 * time.Second)
	}

	pool.Close()
	return nil, fmt.Errorf("failed to connect to database after 30 attempts")
}

func initTracer() (*sdktrace.TracerProvider, error) {
	ctx := context.Background()

	otlpEndpoint := config.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(otlpEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.GetEnv("SERVICE_NAME", serviceName)),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	otel.SetTracerProvider(tp)

	return tp, nil
}

func initMetrics() (*sdkmetric.MeterProvider, error) {
	ctx := context.Background()

	otlpEndpoint := config.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")

	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(otlpEndpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.GetEnv("SERVICE_NAME", serviceName)),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}
