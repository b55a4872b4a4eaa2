// main.go

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-backend/config"
	"storefront-backend/internal/auth"
	"storefront-backend/internal/cart"
	carthandler "storefront-backend/internal/cart/handler"
	cartusecase "storefront-backend/internal/cart/usecase"
	"storefront-backend/internal/checkout"
	checkouthandler "storefront-backend/internal/checkout/handler"
	checkoutusecase "storefront-backend/internal/checkout/usecase"
	"storefront-backend/internal/events"
	"storefront-backend/internal/logger"
	"storefront-backend/internal/order"
	orderhandler "storefront-backend/internal/order/handler"
	orderusecase "storefront-backend/internal/order/usecase"
	"storefront-backend/internal/product"
	producthandler "storefront-backend/internal/product/handler"
	productusecase "storefront-backend/internal/product/usecase"
	"storefront-backend/internal/server"
	"storefront-backend/internal/store/memstore"
	"storefront-backend/internal/store/mongostore"
)

type repositories struct {
	products  product.Repository
	carts     cart.Repository
	orders    order.Repository
	checkouts checkout.Repository
	health    server.HealthChecker
	close     func(ctx context.Context) error
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	zl, err := logger.New(logger.Config{
		Development: cfg.IsDevelopment(),
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
	})
	if err != nil {
		log.Fatalf("cannot build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	// Prices go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openStore(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := repos.close(closeCtx); err != nil {
			zl.Warn("failed to close store", zap.Error(err))
		}
	}()

	publisher, err := openPublisher(cfg, zl)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			zl.Warn("failed to close event publisher", zap.Error(err))
		}
	}()

	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.AdminRole)

	productUC := productusecase.NewProductUseCase(repos.products, zl)
	cartUC := cartusecase.NewCartUseCase(repos.carts, repos.products, zl)
	orderUC := orderusecase.NewOrderUseCase(repos.orders, repos.products, repos.carts, publisher, zl)
	checkoutUC := checkoutusecase.NewCheckoutUseCase(repos.checkouts, repos.carts, orderUC, zl)

	router := server.NewRouter(server.Deps{
		Logger:         zl,
		Verifier:       verifier,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Health:         repos.health,
		Products:       producthandler.NewProductHandler(productUC, zl),
		Carts:          carthandler.NewCartHandler(cartUC, zl),
		Orders:         orderhandler.NewOrderHandler(orderUC, verifier, zl),
		Checkouts:      checkouthandler.NewCheckoutHandler(checkoutUC, verifier, zl),
	})

	srv := newHTTPServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		zl.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newHTTPServer(cfg config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: cfg.HTTPReadHeaderTimeout,
	}
}

func openStore(ctx context.Context, cfg config.Config, zl *zap.Logger) (*repositories, error) {
	if cfg.StoreDriver == config.DriverMemory {
		zl.Warn("using in-memory store; data is lost on restart")
		return &repositories{
			products:  memstore.NewProductRepository(),
			carts:     memstore.NewCartRepository(),
			orders:    memstore.NewOrderRepository(),
			checkouts: memstore.NewCheckoutRepository(),
			close:     func(context.Context) error { return nil },
		}, nil
	}

	st, err := mongostore.Open(ctx, mongostore.Options{
		URI:            cfg.MongoURI,
		Database:       cfg.MongoDatabase,
		ConnectTimeout: cfg.MongoConnectTimeout,
		Transactions:   cfg.MongoTransactions,
	})
	if err != nil {
		return nil, err
	}
	if err := st.EnsureIndexes(ctx); err != nil {
		_ = st.Close(context.Background())
		return nil, err
	}
	zl.Info("connected to mongo", zap.String("database", cfg.MongoDatabase))

	return &repositories{
		products:  st.Products,
		carts:     st.Carts,
		orders:    st.Orders,
		checkouts: st.Checkouts,
		health:    st,
		close:     st.Close,
	}, nil
}

func openPublisher(cfg config.Config, zl *zap.Logger) (events.Publisher, error) {
	if cfg.RabbitMQURL == "" {
		zl.Info("no RABBITMQ_URL set; order events are discarded")
		return events.NopPublisher{}, nil
	}
	p, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.OrderExchange)
	if err != nil {
		return nil, err
	}
	zl.Info("publishing order events", zap.String("exchange", cfg.OrderExchange))
	return p, nil
}
