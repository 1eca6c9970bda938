package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	scanner "github.com/sockerless/vnet-scanner"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	configPath := flag.String("config", "", "optional TOML config file")
	once := flag.Bool("once", false, "run a single scan and exit instead of serving HTTP")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Str("component", "vnet-scanner").Logger()

	cfg, err := scanner.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	clients, err := scanner.NewAzureClients(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Azure clients")
	}

	lister := scanner.NewARMNetworkLister(clients)
	store := scanner.NewAzureTableStore(clients.Tables, cfg.TableName, logger)
	sc := scanner.NewScanner(lister, store, logger)

	if *once {
		report, err := sc.Run(context.Background())
		if err != nil {
			logger.Fatal().Err(err).Msg("scan failed")
		}
		fmt.Println(report.Summary())
		return
	}

	srv := scanner.NewServer(sc, logger)
	logger.Info().Str("addr", *addr).Str("table", cfg.TableName).Msg("starting vnet scanner")
	if err := srv.ListenAndServe(*addr); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
