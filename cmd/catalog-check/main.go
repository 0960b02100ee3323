// Command catalog-check validates catalog files, reports products declared in
// more than one of them and optionally writes gzip copies.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/store-inventory/internal/catalog"
	"github.com/xenking/store-inventory/internal/domain/store"
)

func main() {
	var (
		workers  int
		compress bool
	)
	flag.IntVar(&workers, "workers", 4, "catalog files loaded in parallel")
	flag.BoolVar(&compress, "compress", false, "write <file>.gz next to every valid plain catalog")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] catalog.yaml...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	lg, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, os.Stdout, flag.Args(), workers, compress); err != nil {
		lg.Error("Check failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, lg *zap.Logger, out io.Writer, paths []string, workers int, compress bool) error {
	loaded, err := catalog.LoadAll(ctx, paths, workers)
	if err != nil {
		return errors.Wrap(err, "load catalogs")
	}

	for _, l := range loaded {
		s := store.New(l.Catalog.Products...)
		_, _ = fmt.Fprintf(out, "%s: %d products (%d active), %d promotions, total quantity %d\n",
			l.Path, len(l.Catalog.Products), len(s.Products()), len(l.Catalog.Promotions), s.TotalQuantity())
	}

	shared, err := catalog.SharedNames(loaded)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(shared))
	for name := range shared {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(out, "shared product %q: %v\n", name, shared[name])
	}

	if !compress {
		return nil
	}
	for _, l := range loaded {
		if strings.HasSuffix(l.Path, ".gz") {
			continue
		}
		if err := catalog.Compress(l.Path, l.Path+".gz"); err != nil {
			return err
		}
		lg.Info("Compressed", zap.String("path", l.Path+".gz"))
	}
	return nil
}
