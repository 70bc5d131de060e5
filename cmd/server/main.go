package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/jcabrera/feeledger"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"
	"gopkg.in/yaml.v3"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	var cfg feeledger.Config
	cfp := flag.String("config", "config.yml", "path to configuration file")
	flag.Parse()
	cfgfl, err := os.Open(*cfp)
	if err != nil {
		logger.Fatal().Err(err).Msg("error opening config file")
	}
	if err = yaml.NewDecoder(cfgfl).Decode(&cfg); err != nil {
		logger.Fatal().Err(err).Msg("error decoding config file")
	}

	loc, err := time.LoadLocation(cfg.Fees.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Fees.Timezone).Msg("error loading fee timezone")
	}

	pgendpt, err := feeledger.NewPostgresEndpoint(cfg.Database.ConnectionString, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("error starting database")
	}

	fees := feeledger.NewFeePolicy(pgendpt, loc)
	svc, err := feeledger.NewService(pgendpt, fees, feeledger.SystemClock(), &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("error starting service")
	}

	limits := &feeledger.ServiceLimits{
		AcquireTimeout: time.Duration(orDefault(cfg.Limits.AcquireTimeoutMS, 1000)) * time.Millisecond,
		Deposit:        semaphore.NewWeighted(orDefault(cfg.Limits.Deposit, 64)),
		Withdraw:       semaphore.NewWeighted(orDefault(cfg.Limits.Withdraw, 64)),
		History:        semaphore.NewWeighted(orDefault(cfg.Limits.History, 128)),
		Statement:      semaphore.NewWeighted(orDefault(cfg.Limits.Statement, 16)),
	}
	brkrs := &feeledger.ServiceBreaker{
		Deposit:   gobreaker.NewTwoStepCircuitBreaker[*feeledger.Charge](gobreaker.Settings{Name: "deposit"}),
		Withdraw:  gobreaker.NewTwoStepCircuitBreaker[*feeledger.Charge](gobreaker.Settings{Name: "withdraw"}),
		History:   gobreaker.NewTwoStepCircuitBreaker[*feeledger.AccountHistory](gobreaker.Settings{Name: "history"}),
		Charges:   gobreaker.NewTwoStepCircuitBreaker[[]feeledger.Charge](gobreaker.Settings{Name: "charges"}),
		Statement: gobreaker.NewTwoStepCircuitBreaker[interface{}](gobreaker.Settings{Name: "statement"}),
	}

	var wrapped feeledger.Service = svc
	for _, mw := range []feeledger.Middleware{
		feeledger.NewCircuitBreakMiddleware(brkrs),
		feeledger.NewLimitMiddleware(limits),
		feeledger.NewValidationMiddleware(pgendpt),
	} {
		wrapped = mw(wrapped)
	}

	hndlr := feeledger.NewHTTPHandler(wrapped, &logger)

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":3000"
	}
	logger.Info().Str("addr", addr).Msg("listening")
	if err := http.ListenAndServe(addr, hndlr); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

func orDefault(v, d int64) int64 {
	if v <= 0 {
		return d
	}
	return v
}
