// Command fakeapi serves the in-memory debt API locally, for developing the
// CLI without a real backend.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/and161185/debtdesk/internal/apitest"
	"github.com/and161185/debtdesk/internal/model"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	addr := flag.String("addr", ":3000", "listen address")
	seed := flag.Bool("seed", false, "seed demo data (user demo/demodemo1)")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", *addr),
	)

	srv := apitest.New(logger)
	if *seed {
		seedDemo(srv)
	}

	hs := &http.Server{Addr: *addr, Handler: srv.Router()}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", *addr))
		errCh <- hs.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

func seedDemo(srv *apitest.Server) {
	u := srv.AddUser("demo", "demodemo1")
	c := srv.AddCustomer(model.Customer{
		UserID:               u.ID,
		FullName:             "Petar Petrović",
		Company:              "Petrović doo",
		JMBG:                 "0101990123456",
		PhoneNumber:          "+381601234567",
		NumberOfInstallments: 12,
		InstallmentAmount:    decimal.NewFromInt(5000),
		TotalDebt:            decimal.NewFromInt(60000),
		StartDate:            time.Now().AddDate(0, -2, 0),
	})
	srv.AddPayment(model.Payment{
		CustomerID:  c.ID,
		AmountPaid:  decimal.NewFromInt(5000),
		PaymentDate: time.Now().AddDate(0, -1, 0),
	})
}
