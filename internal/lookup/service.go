package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
)

// Names of the lists the service can serve.
const (
	Banks           = "banks"
	Lenders         = "lenders"
	MajorGroups     = "major_groups"
	ItemCategories  = "item_categories"
	AssetCategories = "asset_categories"
)

// Option is one dropdown entry.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Source fetches raw master data from the backend.
type Source interface {
	Banks(ctx context.Context) ([]apiclient.Record, error)
	Lenders(ctx context.Context) ([]apiclient.Record, error)
	MajorGroups(ctx context.Context) ([]apiclient.Record, error)
	ItemCategories(ctx context.Context) ([]apiclient.Record, error)
	AssetCategories(ctx context.Context) ([]apiclient.Record, error)
}

type list struct {
	fetch  func(Source, context.Context) ([]apiclient.Record, error)
	value  []string
	labels []string
}

var lists = map[string]list{
	Banks:           {fetch: Source.Banks, value: []string{"BankId", "BankID", "Id"}, labels: []string{"BankName", "Name"}},
	Lenders:         {fetch: Source.Lenders, value: []string{"LenderId", "LenderCode", "Id"}, labels: []string{"LenderName", "Name"}},
	MajorGroups:     {fetch: Source.MajorGroups, value: []string{"MajorGroupCode", "mgc", "Code"}, labels: []string{"MajorGroupName", "Description", "Name"}},
	ItemCategories:  {fetch: Source.ItemCategories, value: []string{"CategoryCode", "CategoryId", "Code"}, labels: []string{"CategoryName", "Description", "Name"}},
	AssetCategories: {fetch: Source.AssetCategories, value: []string{"CategoryId", "CategoryCode", "Id"}, labels: []string{"CategoryName", "Name"}},
}

// Names returns every list the service knows, sorted.
func Names() []string {
	out := make([]string, 0, len(lists))
	for name := range lists {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Service resolves dropdown options.
type Service struct {
	source Source
	cache  *Cache
	logger *slog.Logger
}

// NewService constructs a lookup service.
func NewService(source Source, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, cache: cache, logger: logger}
}

// Options returns the dropdown entries of the named list.
func (s *Service) Options(ctx context.Context, name string) ([]Option, error) {
	def, ok := lists[name]
	if !ok {
		return nil, fmt.Errorf("lookup: unknown list %q", name)
	}
	key, err := s.cache.BuildKey(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup: build key: %w", err)
	}
	var out []Option
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		rows, err := def.fetch(s.source, ctx)
		if err != nil {
			return nil, err
		}
		return toOptions(rows, def.value, def.labels), nil
	})
	if err != nil {
		return nil, fmt.Errorf("lookup: %s: %w", name, err)
	}
	return out, nil
}

// Many resolves several lists concurrently.
func (s *Service) Many(ctx context.Context, names ...string) (map[string][]Option, error) {
	results := make([][]Option, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			opts, err := s.Options(gctx, name)
			if err != nil {
				return err
			}
			results[i] = opts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[string][]Option, len(names))
	for i, name := range names {
		out[name] = results[i]
	}
	return out, nil
}

// Warm loads every list into the cache and reports how many were refreshed.
func (s *Service) Warm(ctx context.Context) (int, error) {
	names := Names()
	if _, err := s.Many(ctx, names...); err != nil {
		return 0, err
	}
	s.logger.Info("lookup cache warmed", slog.Int("lists", len(names)))
	return len(names), nil
}

// Invalidate drops every cached list.
func (s *Service) Invalidate(ctx context.Context) error {
	ver, err := s.cache.Bump(ctx)
	if err != nil {
		return fmt.Errorf("lookup: bump: %w", err)
	}
	s.logger.Info("lookup cache invalidated", slog.Int64("version", ver))
	return nil
}

func toOptions(rows []apiclient.Record, valueKeys, labelKeys []string) []Option {
	out := make([]Option, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		value := strings.TrimSpace(row.String(valueKeys...))
		label := strings.TrimSpace(row.String(labelKeys...))
		if value == "" {
			value = label
		}
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		if label == "" {
			label = value
		}
		out = append(out, Option{Value: value, Label: label})
	}
	return out
}
