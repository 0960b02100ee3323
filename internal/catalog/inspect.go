package catalog

import (
	"context"
	"io"
	"math/bits"
	"os"
	"slices"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/store-inventory/internal/domain/product"
)

const nameFilterFPR = 0.001

// Loaded is a catalog together with the file it came from.
type Loaded struct {
	Path    string
	Catalog *Catalog
}

// LoadAll loads every path concurrently, at most workers at a time.
// Results keep the order of paths.
func LoadAll(ctx context.Context, paths []string, workers int) ([]Loaded, error) {
	out := make([]Loaded, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := Load(path)
			if err != nil {
				return err
			}
			out[i] = Loaded{Path: path, Catalog: c}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// SharedNames returns product names (case-insensitive) declared in two or
// more catalogs, mapped to the paths declaring them.
//
// Each catalog gets a bloom filter of its names; a name is a candidate when
// another catalog's filter reports it, and candidates are then confirmed
// exactly. Supports up to 64 catalogs.
func SharedNames(catalogs []Loaded) (map[string][]string, error) {
	if len(catalogs) > bits.UintSize {
		return nil, errors.Errorf("at most %d catalogs can be compared, got %d", bits.UintSize, len(catalogs))
	}

	filters := make([]*bloom.BloomFilter, len(catalogs))
	for i, l := range catalogs {
		f := bloom.NewWithEstimates(uint(max(len(l.Catalog.Products), 1)), nameFilterFPR)
		for _, p := range l.Catalog.Products {
			f.AddString(nameKey(p.Name()))
		}
		filters[i] = f
	}

	// Bitmask of catalogs whose filters claim the name.
	candidates := make(map[string]uint)
	for i, l := range catalogs {
		for _, p := range l.Catalog.Products {
			key := nameKey(p.Name())
			for j, f := range filters {
				if j != i && f.TestString(key) {
					candidates[key] |= 1<<uint(i) | 1<<uint(j)
				}
			}
		}
	}

	shared := make(map[string][]string)
	for key, mask := range candidates {
		var paths []string
		for i, l := range catalogs {
			if mask&(1<<uint(i)) != 0 && declares(l.Catalog, key) {
				paths = append(paths, l.Path)
			}
		}
		if len(paths) >= 2 {
			shared[key] = paths
		}
	}
	return shared, nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func declares(c *Catalog, key string) bool {
	return slices.ContainsFunc(c.Products, func(p product.Product) bool {
		return nameKey(p.Name()) == key
	})
}

// Compress writes a gzip copy of src to dst, compressing blocks in parallel.
func Compress(src, dst string) (rerr error) {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "open %s", src)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "create %s", dst)
	}
	defer func() {
		if err := out.Close(); err != nil && rerr == nil {
			rerr = errors.Wrapf(err, "close %s", dst)
		}
	}()

	gz := pgzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		_ = gz.Close()
		return errors.Wrapf(err, "compress %s", src)
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, "flush gzip")
	}
	return nil
}
