package finalizers

import (
	"context"
	"sort"
	"time"

	"dfchat/internal/config"
)

// HideRule is a user-defined CEL expression; a message it matches is
// cancelled.
type HideRule struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Expression string    `json:"expression"`
	Priority   int       `json:"priority"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RuleRepository lists the enabled rules, highest priority first.
type RuleRepository interface {
	GetActiveRules(ctx context.Context) ([]HideRule, error)
}

// RuleStore is implemented by repositories that accept writes.
type RuleStore interface {
	RuleRepository
	List(ctx context.Context) ([]HideRule, error)
	Get(ctx context.Context, id string) (HideRule, error)
	Upsert(ctx context.Context, rule HideRule) (HideRule, error)
	Delete(ctx context.Context, id string) error
}

// StaticRepository serves rules from the configuration file.
type StaticRepository struct {
	rules []HideRule
}

func NewStaticRepository(cfg []config.HideRuleConfig) *StaticRepository {
	rules := make([]HideRule, 0, len(cfg))
	for _, r := range cfg {
		rules = append(rules, HideRule{
			ID:         r.ID,
			Name:       r.Name,
			Expression: r.Expression,
			Priority:   r.Priority,
			Enabled:    r.Enabled,
		})
	}
	return &StaticRepository{rules: rules}
}

func (r *StaticRepository) GetActiveRules(context.Context) ([]HideRule, error) {
	active := make([]HideRule, 0, len(r.rules))
	for _, rule := range r.rules {
		if rule.Enabled {
			active = append(active, rule)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority > active[j].Priority
	})
	return active, nil
}
