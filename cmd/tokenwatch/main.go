package main

import (
	"context"

	"github.com/gabapcia/tokenwatch/internal/balancesync"
	"github.com/gabapcia/tokenwatch/internal/config"
	"github.com/gabapcia/tokenwatch/internal/handlers/cli"
	"github.com/gabapcia/tokenwatch/internal/infra/blockchain/ethereum"
	"github.com/gabapcia/tokenwatch/internal/infra/storage/redis"
	"github.com/gabapcia/tokenwatch/internal/pkg/logger"
	"github.com/gabapcia/tokenwatch/internal/pkg/telemetry"
	"github.com/gabapcia/tokenwatch/internal/pkg/transport/http"
	"github.com/gabapcia/tokenwatch/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/tokenwatch/internal/pkg/types"
	"github.com/gabapcia/tokenwatch/internal/tokenregistry"
	"github.com/gabapcia/tokenwatch/internal/tokensync"
	"github.com/gabapcia/tokenwatch/internal/tokenwallet"
	"github.com/gabapcia/tokenwatch/internal/txhistory"
)

const serviceName = "tokenwatch"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	telemetryShutdown, err := telemetry.Init(ctx, serviceName)
	if err != nil {
		panic(err)
	}
	defer telemetryShutdown(ctx)

	if err := logger.Init(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Sync()

	account, err := types.AddressFromHex(cfg.Account)
	if err != nil {
		logger.Fatal(ctx, "invalid account address", "error", err)
	}

	storage, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal(ctx, "failed to connect to redis", "error", err)
	}
	defer storage.Close()

	chain := ethereum.NewClient(
		jsonrpc.NewClient(http.NewClient().StandardClient(), cfg.EthereumEndpoint),
		account,
	)

	var (
		registry = tokenregistry.New()
		history  = txhistory.New(chain, storage)
		balances = balancesync.New(chain, storage)

		coordinator = tokensync.New(registry, chain, history, balances)
		wallet      = tokenwallet.New(registry, storage, history, balances, chain)
	)

	if err := cli.Run(ctx, wallet, coordinator); err != nil {
		logger.Fatal(ctx, "tokenwatch exited with an error", "error", err)
	}
}
