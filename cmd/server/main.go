package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parsshop-be/internal/address"
	"parsshop-be/internal/brand"
	"parsshop-be/internal/category"
	"parsshop-be/internal/config"
	"parsshop-be/internal/db"
	"parsshop-be/internal/discount"
	"parsshop-be/internal/handlers"
	"parsshop-be/internal/logger"
	"parsshop-be/internal/order"
	"parsshop-be/internal/payment"
	"parsshop-be/internal/product"
	"parsshop-be/internal/sms"
	"parsshop-be/internal/sweeper"
	"parsshop-be/internal/user"
	"parsshop-be/internal/variable"
	"parsshop-be/internal/verification"

	"go.uber.org/zap"
)

// discounts glues the code validator and the in-transaction usage bump
// into the single dependency the order service takes.
type discounts struct {
	svc  discount.Service
	repo discount.Repository
}

func (d discounts) Validate(ctx context.Context, code string, orderCostBasis, userID int64) (int64, error) {
	return d.svc.Validate(ctx, code, orderCostBasis, userID)
}

func (d discounts) IncrementUsageTx(ctx context.Context, tx *sql.Tx, code string) error {
	return d.repo.IncrementUsageTx(ctx, tx, code)
}

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database, err := db.InitDB(cfg)
	if err != nil {
		logger.L().Fatal("database init failed", zap.Error(err))
	}
	defer database.Close()

	smsSender := sms.NewHTTPSender(cfg.SMSAPIKey, cfg.SMSBaseURL, cfg.SMSSender)
	gateway := payment.NewZarinpalGateway(cfg.ZarinpalMerchantID)
	issuer := user.NewTokenIssuer(cfg.JWTSecret)

	productRepo := product.NewRepository(database)
	variableRepo := variable.NewRepository(database)
	productSvc := product.NewService(productRepo, variableRepo)
	variableSvc := variable.NewService(database, variableRepo, productRepo)

	categorySvc := category.NewService(category.NewRepository(database))
	brandSvc := brand.NewService(brand.NewRepository(database))

	verificationRepo := verification.NewRepository(database)
	verificationSvc := verification.NewService(verificationRepo, smsSender)
	userSvc := user.NewService(user.NewRepository(database), verificationSvc, issuer)

	addressSvc := address.NewService(address.NewRepository(database))

	discountRepo := discount.NewRepository(database)
	discountSvc := discount.NewService(discountRepo)

	orderSvc := order.NewService(
		order.NewRepository(database),
		productRepo,
		discounts{svc: discountSvc, repo: discountRepo},
		variableRepo,
		gateway,
		smsSender,
		addressSvc,
		order.Settings{
			ServicePct:        cfg.ServicePct,
			GuaranteePct:      cfg.GuaranteePct,
			BusinessProfitPct: cfg.BusinessProfitPct,
			ShippingPct:       cfg.ShippingPct,
			GatewayCeilingIRR: cfg.GatewayCeilingIRR,
			CallbackURL:       cfg.PaymentCallbackURL,
			DashboardURL:      cfg.DashboardURL,
		},
	)

	sweep := sweeper.New(orderSvc, verificationRepo)
	if err := sweep.Start(cfg.SweeperSchedule); err != nil {
		logger.L().Fatal("sweeper start failed", zap.Error(err))
	}

	router := handlers.NewRouter(handlers.Deps{
		Issuer:    issuer,
		Users:     handlers.NewUserHandler(userSvc, verificationSvc),
		Orders:    handlers.NewOrderHandler(orderSvc),
		Catalog:   handlers.NewCatalogHandler(productSvc),
		Taxonomy:  handlers.NewTaxonomyHandler(categorySvc, brandSvc),
		Discounts: handlers.NewDiscountHandler(discountSvc),
		Addresses: handlers.NewAddressHandler(addressSvc),
		Variables: handlers.NewVariableHandler(variableSvc),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.L().Info("server listening", zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.L().Info("shutting down")
	<-sweep.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.L().Error("shutdown failed", zap.Error(err))
	}
}
