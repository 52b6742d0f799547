package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/Profay/Intercom-bounty/core/bounty"
	"github.com/Profay/Intercom-bounty/ledger"
	bountymcp "github.com/Profay/Intercom-bounty/mcp"
	"github.com/Profay/Intercom-bounty/metrics"
	"github.com/Profay/Intercom-bounty/oracle"
	"github.com/Profay/Intercom-bounty/sim"
	bountystore "github.com/Profay/Intercom-bounty/storage/bounty"
	"github.com/Profay/Intercom-bounty/wallet"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type config struct {
	StoreDriver        string
	PGDSN              string
	NetworkID          string
	BootstrapHex       string
	SubnetBootstrapHex string
	TxVersion          string
	WalletSeedHex      string
	WriterKey          string
	TxPoolMax          int
	Validators         int
	TimerInterval      time.Duration
	MetricsAddr        string
}

func loadConfig() config {
	poolMax := 1000
	if raw := os.Getenv("BOUNTY_TX_POOL_MAX"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			poolMax = v
		}
	}

	validators := 1
	if raw := os.Getenv("BOUNTY_VALIDATORS"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			validators = v
		}
	}

	timerInterval := 10 * time.Second
	if raw := os.Getenv("BOUNTY_TIMER_INTERVAL_SEC"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			timerInterval = time.Duration(v) * time.Second
		}
	}

	return config{
		StoreDriver:        envDefault("BOUNTY_STORE_DRIVER", "memory"),
		PGDSN:              os.Getenv("BOUNTY_PG_DSN"),
		NetworkID:          envDefault("BOUNTY_NETWORK_ID", "intercom-bounty-dev"),
		BootstrapHex:       envDefault("BOUNTY_BOOTSTRAP_HEX", "00"),
		SubnetBootstrapHex: envDefault("BOUNTY_SUBNET_BOOTSTRAP_HEX", "00"),
		TxVersion:          envDefault("BOUNTY_TX_VERSION", "01"),
		WalletSeedHex:      os.Getenv("BOUNTY_WALLET_SEED"),
		WriterKey:          os.Getenv("BOUNTY_WRITER_KEY"),
		TxPoolMax:          poolMax,
		Validators:         validators,
		TimerInterval:      timerInterval,
		MetricsAddr:        os.Getenv("BOUNTY_METRICS_ADDR"),
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	var view interface {
		bounty.View
		Close()
	}
	switch cfg.StoreDriver {
	case "postgres":
		if cfg.PGDSN == "" {
			log.Fatal("BOUNTY_PG_DSN required when BOUNTY_STORE_DRIVER=postgres")
		}
		store, err := bountystore.NewPGStore(ctx, cfg.PGDSN)
		if err != nil {
			log.Fatalf("failed to init store: %v", err)
		}
		view = store
	default:
		view = bountystore.NewMemoryStore()
	}
	defer view.Close()

	var w *wallet.KeyWallet
	var err error
	if cfg.WalletSeedHex != "" {
		w, err = wallet.FromSeedHex(cfg.WalletSeedHex)
	} else {
		w, err = wallet.Generate()
	}
	if err != nil {
		log.Fatalf("failed to init wallet: %v", err)
	}
	selfAddress, err := wallet.AddressFromPubKeyHex(w.PublicKeyHex())
	if err != nil {
		log.Fatalf("failed to derive address: %v", err)
	}

	writerKey := cfg.WriterKey
	if writerKey == "" {
		writerKey = w.PublicKeyHex()
	}

	engine := bounty.NewEngine(view)
	driver := bounty.NewDriver(engine, view)
	driver.AddFeature(oracle.Timer{})
	driver.AddMessageHandler(bounty.ChatRecorder{})
	driver.OnApplied(func(op string, err error) {
		if err != nil {
			metrics.OpsRejected.WithLabelValues(op).Inc()
			return
		}
		metrics.OpsApplied.WithLabelValues(op).Inc()
	})

	gateway := ledger.NewLoopbackGateway(cfg.NetworkID, cfg.BootstrapHex, cfg.TxVersion)
	gateway.SetValidators(cfg.Validators)

	pool := ledger.NewTxPool(cfg.TxPoolMax)
	runner := sim.NewRunner(engine, view, func() string { return selfAddress })
	pipeline := ledger.NewPipeline(gateway, w, view, pool, runner, writerKey, cfg.SubnetBootstrapHex)

	// Dev timer feed standing in for the external oracle peer.
	if cfg.TimerInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.TimerInterval)
			defer ticker.Stop()
			for range ticker.C {
				value, _ := json.Marshal(time.Now().UnixMilli())
				entry := bounty.Entry{Key: bounty.KeyCurrentTime, Value: value}
				if err := driver.Process(context.Background(), entry); err != nil {
					log.Printf("timer feed: %v", err)
				}
			}
		}()
	}

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			log.Printf("metrics listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	srv := bountymcp.NewServer(pipeline, driver, gateway, view, w, func() string { return selfAddress })

	log.Printf("Intercom Bounty MCP server starting (driver=%s, address=%s)", cfg.StoreDriver, selfAddress)

	if err := server.ServeStdio(srv.MCPServer()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
