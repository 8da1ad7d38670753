package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/shashiranjanraj/pricebook/app/models"
	"github.com/shashiranjanraj/pricebook/app/repositories"
	"github.com/shashiranjanraj/pricebook/pkg/logger"
	"github.com/shashiranjanraj/pricebook/pkg/storage"
	"github.com/shashiranjanraj/pricebook/pkg/validate"
)

// CatalogFormat is the encoding of a catalog file.
type CatalogFormat string

const (
	FormatJSON CatalogFormat = "json"
	FormatYAML CatalogFormat = "yaml"
)

// FormatFromPath picks the format from the file extension; JSON by default.
func FormatFromPath(p string) CatalogFormat {
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// catalogPrice accepts 19.99, "19.99" and YAML scalars alike.
type catalogPrice struct{ decimal.Decimal }

func (p *catalogPrice) UnmarshalYAML(node *yaml.Node) error {
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: price %q: %w", node.Line, node.Value, err)
	}
	p.Decimal = d
	return nil
}

type catalogEntry struct {
	SKU         string       `json:"sku"         yaml:"sku"         validate:"required,max=100"`
	Name        string       `json:"name"        yaml:"name"        validate:"required,max=255"`
	Description string       `json:"description" yaml:"description" validate:"max=2000"`
	Price       catalogPrice `json:"price"       yaml:"price"       validate:"gt=0"`
}

// CatalogImporter loads product lists into the catalog, upserting by SKU.
type CatalogImporter struct {
	products repositories.ProductStore
}

func NewCatalogImporter(products repositories.ProductStore) *CatalogImporter {
	return &CatalogImporter{products: products}
}

// Import reads file from disk and upserts every product in it.
func (i *CatalogImporter) Import(ctx context.Context, disk storage.Disk, file string) (int, error) {
	data, err := disk.Get(ctx, file)
	if err != nil {
		return 0, fmt.Errorf("%w: read catalog: %v", ErrPersistence, err)
	}
	return i.ImportBytes(ctx, data, FormatFromPath(file))
}

// ImportDir imports every .json, .yaml and .yml file directly inside dir,
// in name order. Each file is validated and written on its own; the first
// failing file stops the run.
func (i *CatalogImporter) ImportDir(ctx context.Context, disk storage.Disk, dir string) (int, error) {
	files, err := disk.Files(ctx, dir)
	if err != nil {
		return 0, fmt.Errorf("%w: list %s: %v", ErrPersistence, dir, err)
	}
	sort.Strings(files)

	total := 0
	for _, f := range files {
		switch strings.ToLower(path.Ext(f)) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		n, err := i.Import(ctx, disk, f)
		if err != nil {
			return total, fmt.Errorf("%s: %w", f, err)
		}
		total += n
	}
	return total, nil
}

// ImportBytes decodes data as format, validates every entry and upserts
// them in one call. Nothing is written if any entry is invalid.
func (i *CatalogImporter) ImportBytes(ctx context.Context, data []byte, format CatalogFormat) (int, error) {
	var entries []catalogEntry
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &entries)
	default:
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: decode %s catalog: %v", ErrValidation, format, err)
	}

	products, err := toProducts(entries)
	if err != nil {
		return 0, err
	}
	if len(products) == 0 {
		return 0, nil
	}

	n, err := i.products.UpsertProducts(ctx, products)
	if err != nil {
		return 0, fmt.Errorf("%w: upsert products: %v", ErrPersistence, err)
	}

	logger.WithCtx(ctx).Info("catalog imported", "products", n, "format", string(format))
	return n, nil
}

func toProducts(entries []catalogEntry) ([]models.Product, error) {
	seen := make(map[string]int, len(entries))
	var problems []string

	products := make([]models.Product, 0, len(entries))
	for idx, e := range entries {
		e.SKU = strings.TrimSpace(e.SKU)
		e.Name = strings.TrimSpace(e.Name)

		if errs := validate.Struct(e); validate.HasErrors(errs) {
			problems = append(problems, fmt.Sprintf("entry %d: %s", idx, joinFieldErrors(errs)))
			continue
		}
		if !models.FitsPriceScale(e.Price.Decimal) {
			problems = append(problems, fmt.Sprintf("entry %d: price %s has more than %d decimal places", idx, e.Price.String(), models.PriceScale))
			continue
		}
		if first, dup := seen[e.SKU]; dup {
			problems = append(problems, fmt.Sprintf("entry %d: sku %q already used by entry %d", idx, e.SKU, first))
			continue
		}
		seen[e.SKU] = idx

		products = append(products, models.Product{
			SKU:         e.SKU,
			Name:        e.Name,
			Description: e.Description,
			Price:       e.Price.Decimal,
		})
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return products, nil
}

func joinFieldErrors(errs map[string]string) string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, errs[k])
	}
	return strings.Join(parts, " ")
}
