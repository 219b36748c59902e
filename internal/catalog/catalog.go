/**
 * @description
 * This package provides the read-only subscription plan catalog. Plan data is
 * embedded at build time from plans.yaml; changing the offered plans is a data
 * edit, not a code change.
 *
 * @dependencies
 * - gopkg.in/yaml.v3: Parses the embedded plan data.
 * - github.com/shopspring/decimal: Exact decimal prices.
 */
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/sohamda/fantasy-football/internal/domain"
)

//go:embed plans.yaml
var embeddedPlans []byte

var (
	ErrNoPlans     = errors.New("catalog must contain at least one plan")
	ErrInvalidPlan = errors.New("invalid plan")
)

// Catalog is an ordered, immutable set of subscription plans.
type Catalog struct {
	plans []domain.SubscriptionPlan
	byID  map[string]int
}

type planFile struct {
	Plans []planRecord `yaml:"plans"`
}

type planRecord struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Price           string   `yaml:"price"`
	Description     string   `yaml:"description"`
	Features        []string `yaml:"features"`
	TeamGenerations struct {
		Weekly  int `yaml:"weekly"`
		Monthly int `yaml:"monthly"`
	} `yaml:"team_generations"`
	HistoricalStats bool   `yaml:"historical_stats"`
	ManagerInsights bool   `yaml:"manager_insights"`
	NewsAccess      bool   `yaml:"news_access"`
	Priority        string `yaml:"priority"`
	Color           string `yaml:"color"`
	Popular         bool   `yaml:"popular"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the embedded plan data.
// The embedded file is part of the binary, so a parse failure is a build defect and panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(embeddedPlans)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded plans.yaml is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse builds a catalog from YAML plan data.
func Parse(data []byte) (*Catalog, error) {
	var file planFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode plan data: %w", err)
	}

	plans := make([]domain.SubscriptionPlan, 0, len(file.Plans))
	for i, rec := range file.Plans {
		price, err := decimal.NewFromString(strings.TrimSpace(rec.Price))
		if err != nil {
			return nil, fmt.Errorf("%w at index %d (%s): price %q: %v", ErrInvalidPlan, i, rec.ID, rec.Price, err)
		}
		plans = append(plans, domain.SubscriptionPlan{
			ID:          strings.TrimSpace(rec.ID),
			Name:        rec.Name,
			Price:       price,
			Description: rec.Description,
			Features:    rec.Features,
			TeamGenerations: domain.Quota{
				Weekly:  rec.TeamGenerations.Weekly,
				Monthly: rec.TeamGenerations.Monthly,
			},
			HistoricalStats: rec.HistoricalStats,
			ManagerInsights: rec.ManagerInsights,
			NewsAccess:      rec.NewsAccess,
			Priority:        domain.PriorityTier(rec.Priority),
			Color:           rec.Color,
			Popular:         rec.Popular,
		})
	}
	return New(plans)
}

// New builds a catalog from plans in display order.
func New(plans []domain.SubscriptionPlan) (*Catalog, error) {
	if len(plans) == 0 {
		return nil, ErrNoPlans
	}

	c := &Catalog{
		plans: make([]domain.SubscriptionPlan, 0, len(plans)),
		byID:  make(map[string]int, len(plans)),
	}
	for i, p := range plans {
		if err := checkPlan(p); err != nil {
			return nil, fmt.Errorf("%w at index %d: %v", ErrInvalidPlan, i, err)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w at index %d: duplicate id %q", ErrInvalidPlan, i, p.ID)
		}
		c.byID[p.ID] = len(c.plans)
		c.plans = append(c.plans, p.Clone())
	}
	return c, nil
}

func checkPlan(p domain.SubscriptionPlan) error {
	switch {
	case p.ID == "":
		return errors.New("empty id")
	case p.Name == "":
		return fmt.Errorf("plan %q has no name", p.ID)
	case p.Price.IsNegative():
		return fmt.Errorf("plan %q has a negative price", p.ID)
	case p.TeamGenerations.Weekly < domain.Unlimited || p.TeamGenerations.Monthly < domain.Unlimited:
		return fmt.Errorf("plan %q has a quota below %d", p.ID, domain.Unlimited)
	case !p.Priority.Valid():
		return fmt.Errorf("plan %q has unknown priority %q", p.ID, p.Priority)
	}
	return nil
}

// ListPlans returns every plan in display order.
func (c *Catalog) ListPlans() []domain.SubscriptionPlan {
	out := make([]domain.SubscriptionPlan, len(c.plans))
	for i, p := range c.plans {
		out[i] = p.Clone()
	}
	return out
}

// FindPlan resolves a plan identifier.
func (c *Catalog) FindPlan(id string) (domain.SubscriptionPlan, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.SubscriptionPlan{}, false
	}
	return c.plans[i].Clone(), true
}

// Contains reports whether id names a plan in the catalog.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Len returns the number of plans.
func (c *Catalog) Len() int {
	return len(c.plans)
}
