package main

import (
	"context"
	"flag"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/config"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/engine"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/logger"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/portfolio"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/repository"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a config file")
		netCSV     = flag.String("net-csv", "net_positions.csv", "where to write the net positions CSV; empty skips it")
		txCSV      = flag.String("transactions-csv", "", "where to write the transactions CSV; empty skips it")
		capital    = flag.String("capital", "", "initial capital (default from config)")
	)
	flag.Parse()

	log := logger.New(logger.Config{Level: "warn", Pretty: true, Output: os.Stderr})
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initialCapital := cfg.Report.Capital()
	if *capital != "" {
		if initialCapital, err = decimal.NewFromString(*capital); err != nil {
			log.Fatal().Err(err).Str("capital", *capital).Msg("invalid capital")
		}
	}

	ctx := context.Background()
	db, err := repository.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer db.Close()

	registry := engine.DefaultRegistry()
	if len(cfg.Contracts) > 0 {
		if registry, err = engine.NewRegistry(cfg.Contracts...); err != nil {
			log.Fatal().Err(err).Msg("invalid contract registry")
		}
	}
	svc := portfolio.NewService(db, registry, nil, log)

	bar := initProgressBar(4)

	nets, err := svc.NetPositions(ctx, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to net positions")
	}
	_ = bar.Add(1)

	report, err := svc.Performance(ctx, initialCapital, cfg.Report.RiskFree())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to compute performance")
	}
	_ = bar.Add(1)

	if *netCSV != "" {
		if err := engine.WriteNetPositionsCSVFile(*netCSV, nets); err != nil {
			log.Fatal().Err(err).Msg("failed to write net positions")
		}
	}
	_ = bar.Add(1)

	if *txCSV != "" {
		if err := writeTransactions(ctx, svc, *txCSV); err != nil {
			log.Fatal().Err(err).Msg("failed to write transactions")
		}
	}
	_ = bar.Add(1)
	_ = bar.Finish()

	if err := engine.WriteReport(os.Stdout, report); err != nil {
		log.Fatal().Err(err).Msg("failed to write report")
	}
}

func writeTransactions(ctx context.Context, svc *portfolio.Service, path string) error {
	txs, err := svc.Transactions(ctx, types.TransactionFilter{})
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := engine.WriteTransactionsCSV(f, txs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func initProgressBar(steps int) *progressbar.ProgressBar {
	return progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Building report..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
