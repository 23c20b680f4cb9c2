package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

// Entry is one registered product use: a product labeled for a pest on a site.
type Entry struct {
	Product string `yaml:"product"`
	Pest    string `yaml:"pest"`
	Site    string `yaml:"site"`
}

type catalogFile struct {
	Entries []Entry `yaml:"entries"`
}

// Service answers product lookup queries over the label catalog. The catalog
// is loaded once at startup; lookups are read-only afterwards.
type Service struct {
	entries []Entry
	logger  arbor.ILogger
}

// NewService loads the catalog from a YAML file. An empty path yields an
// empty catalog, which still serves the ALL option.
func NewService(path string, logger arbor.ILogger) (*Service, error) {
	service := &Service{logger: logger}

	if path == "" {
		logger.Debug().Msg("No product catalog configured")
		return service, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}

	service.entries = file.Entries

	logger.Info().
		Str("path", path).
		Int("entries", len(file.Entries)).
		Msg("Product catalog loaded")

	return service, nil
}

// Products returns the distinct product names matching the pest and site
// filters, sorted, with the ALL option first. An empty or ALL filter value
// matches everything.
func (s *Service) Products(pest, site string) []string {
	seen := make(map[string]struct{})
	for _, entry := range s.entries {
		if !matches(pest, entry.Pest) || !matches(site, entry.Site) {
			continue
		}
		if entry.Product == "" {
			continue
		}
		seen[entry.Product] = struct{}{}
	}

	products := make([]string, 0, len(seen)+1)
	for product := range seen {
		products = append(products, product)
	}
	sort.Strings(products)

	return append([]string{models.FilterAll}, products...)
}

// Pests returns the distinct pest names in the catalog, sorted, with the ALL
// option first.
func (s *Service) Pests() []string {
	return s.distinct(func(e Entry) string { return e.Pest })
}

// Sites returns the distinct application sites in the catalog, sorted, with
// the ALL option first.
func (s *Service) Sites() []string {
	return s.distinct(func(e Entry) string { return e.Site })
}

func (s *Service) distinct(field func(Entry) string) []string {
	seen := make(map[string]struct{})
	for _, entry := range s.entries {
		if v := field(entry); v != "" {
			seen[v] = struct{}{}
		}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)

	return append([]string{models.FilterAll}, values...)
}

func matches(filter, value string) bool {
	if filter == "" || filter == models.FilterAll {
		return true
	}
	return strings.EqualFold(filter, value)
}
