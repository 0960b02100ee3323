// Command store-cli runs the interactive store menu on stdin/stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xenking/store-inventory/internal/catalog"
	"github.com/xenking/store-inventory/internal/cli"
	"github.com/xenking/store-inventory/internal/domain/order"
	"github.com/xenking/store-inventory/internal/domain/store"
)

func main() {
	var (
		catalogFile string
		storeName   string
		logLevel    string
	)
	flag.StringVar(&catalogFile, "catalog", "", "path to a YAML catalog (.yaml or .yaml.gz); built-in catalog when empty")
	flag.StringVar(&storeName, "name", "Best Buy", "store name shown in the menu")
	flag.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	lg, err := newLogger(logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = lg.Sync() }()

	// Interrupt keeps its default behaviour: the menu blocks on stdin and
	// cannot observe cancellation.
	if err := run(context.Background(), lg, catalogFile, storeName); err != nil {
		lg.Error("Store failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, lg *zap.Logger, catalogFile, storeName string) error {
	c, err := catalog.Load(catalogFile)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}
	s := store.New(c.Products...)
	lg.Debug("Catalog loaded", zap.Int("products", len(c.Products)))

	orders, err := order.NewService(s, tracenoop.NewTracerProvider(), noop.NewMeterProvider())
	if err != nil {
		return errors.Wrap(err, "create order service")
	}

	menu := cli.New(cli.Config{StoreName: storeName}, s, orders, c.Promotions, lg, os.Stdin, os.Stdout)
	return menu.Run(ctx)
}

// newLogger builds a development logger on stderr so log lines never mix
// with the menu on stdout.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "parse log level")
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	lg, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return lg, nil
}
