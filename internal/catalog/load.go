package catalog

import (
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the catalog used when none is configured.
var DefaultFile = File{
	Promotions: []PromotionSpec{
		{ID: "second-half", Kind: "second_half_price", Name: "Second Half price!"},
		{ID: "third-free", Kind: "third_one_free", Name: "Third One Free!"},
		{ID: "thirty-off", Kind: "percent_discount", Name: "30% off!", Percent: "30"},
	},
	Products: []ProductSpec{
		{Name: "MacBook Air M2", Price: "1450", Quantity: 100, Promotion: "second-half"},
		{Name: "Bose QuietComfort Earbuds", Price: "250", Quantity: 500, Promotion: "third-free"},
		{Name: "Google Pixel 7", Price: "500", Quantity: 250},
		{Name: "Windows License", Type: "non_stocked", Price: "125", Promotion: "thirty-off"},
		{Name: "Shipping", Type: "limited", Price: "10", Quantity: 250, MaxPerOrder: 1},
	},
}

// Default builds DefaultFile.
func Default() (*Catalog, error) {
	return Build(DefaultFile)
}

// Load reads a catalog from path. Files ending in .gz are decompressed.
// An empty path yields the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	c, err := Decode(r)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return c, nil
}

// Decode parses a YAML catalog definition and builds it.
func Decode(r io.Reader) (*Catalog, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty")
		}
		return nil, errors.Wrap(err, "decode yaml")
	}
	return Build(f)
}
