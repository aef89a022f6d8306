package finalizers

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	celgo "github.com/google/cel-go/cel"

	"dfchat/internal/checks"
	"dfchat/internal/config"
	"dfchat/internal/constants"
	"dfchat/internal/logger"
	"dfchat/internal/message"
	"dfchat/pkg/cel"
	"dfchat/pkg/metrics"
	"dfchat/pkg/tracing"
)

type compiledRule struct {
	HideRule
	program celgo.Program
}

// CustomRules cancels messages matched by user-defined CEL hide rules.
// Rules are evaluated in priority order and the first match wins.
type CustomRules struct {
	repo      RuleRepository
	cfg       config.RulesConfig
	evaluator *cel.Evaluator
	logger    logger.Logger

	rulesMu sync.RWMutex
	rules   []compiledRule
}

func NewCustomRules(repo RuleRepository, cfg config.RulesConfig, log logger.Logger) (*CustomRules, error) {
	evaluator, err := cel.NewEvaluator()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL evaluator: %w", err)
	}

	return &CustomRules{
		repo:      repo,
		cfg:       cfg,
		evaluator: evaluator,
		logger:    log,
	}, nil
}

func (f *CustomRules) Name() string { return constants.SourceCustomRules }

// Evaluator exposes the compiler so callers can validate expressions before
// storing them.
func (f *CustomRules) Evaluator() *cel.Evaluator { return f.evaluator }

func (f *CustomRules) Receive(ctx context.Context, msg *message.Message) error {
	if msg.IsCancelled() {
		return nil
	}

	rules := f.activeRules()
	if len(rules) == 0 {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "finalizers.custom_rules")
	defer span.End()

	in := InputFor(msg)
	for _, rule := range rules {
		matched, err := cel.EvaluateProgram(ctx, rule.program, in)
		if err != nil {
			if f.handleEvaluationError(ctx, rule.HideRule, err) {
				return f.cancel(ctx, msg)
			}
			continue
		}

		if !matched {
			metrics.IncHideRuleEvaluation(rule.ID, "miss")
			continue
		}

		metrics.IncHideRuleEvaluation(rule.ID, "hit")
		f.logger.DebugwCtx(ctx, "Hide rule matched message",
			"rule_id", rule.ID,
			"rule_name", rule.Name,
			"type", msg.Type().String(),
		)
		return f.cancel(ctx, msg)
	}

	return nil
}

func (f *CustomRules) cancel(ctx context.Context, msg *message.Message) error {
	metrics.IncCancellation(msg.Type().String(), constants.SourceCustomRules)
	return msg.Cancel(ctx)
}

// handleEvaluationError reports whether the message should be cancelled.
func (f *CustomRules) handleEvaluationError(ctx context.Context, rule HideRule, err error) bool {
	metrics.IncHideRuleEvaluation(rule.ID, "error")
	f.logger.ErrorwCtx(ctx, "Hide rule evaluation error",
		"rule_id", rule.ID,
		"rule_name", rule.Name,
		"error", err,
	)

	if f.cfg.Fallback.OnError == constants.FallbackDeny {
		metrics.IncFallbackUsage(constants.SourceCustomRules, "deny_on_error")
		f.logger.WarnwCtx(ctx, "Evaluation error, hiding message (fallback: deny)",
			"rule_id", rule.ID,
		)
		return true
	}

	metrics.IncFallbackUsage(constants.SourceCustomRules, "allow_on_error")
	return false
}

// InputFor builds the CEL variables for a classified message. Sender is
// only set for direct messages.
func InputFor(msg *message.Message) cel.Input {
	var sender string
	if msg.TypeIs(message.DirectMessage) {
		sender, _ = checks.DirectMessageSender(msg.Stripped())
	}
	return cel.Input{
		Type:        msg.Type().String(),
		Stripped:    msg.Stripped(),
		Sender:      sender,
		Source:      msg.Event().Source,
		ClickAction: string(msg.ClickAction()),
		HasSound:    msg.Type().HasSound(),
		LineCount:   msg.Type().LineCount(),
		Cancelled:   msg.IsCancelled(),
	}
}

func (f *CustomRules) activeRules() []compiledRule {
	f.rulesMu.RLock()
	defer f.rulesMu.RUnlock()
	return f.rules
}

// Rules returns the currently compiled rules.
func (f *CustomRules) Rules() []HideRule {
	rules := f.activeRules()
	out := make([]HideRule, len(rules))
	for i, r := range rules {
		out[i] = r.HideRule
	}
	return out
}

func (f *CustomRules) ReloadRules(ctx context.Context, skipJitter ...bool) error {
	shouldSkipJitter := len(skipJitter) > 0 && skipJitter[0]

	if err := f.applyJitter(ctx, shouldSkipJitter); err != nil {
		return err
	}

	rules, err := f.repo.GetActiveRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load hide rules: %w", err)
	}

	f.updateRules(ctx, f.compile(ctx, rules))
	return nil
}

func (f *CustomRules) applyJitter(ctx context.Context, skipJitter bool) error {
	if skipJitter || f.cfg.Reload.JitterMaxMilliseconds <= 0 {
		return nil
	}

	jitter := time.Duration(rand.Intn(f.cfg.Reload.JitterMaxMilliseconds)) * time.Millisecond
	f.logger.DebugwCtx(ctx, "Reload scheduled with jitter",
		"jitter_ms", jitter.Milliseconds(),
	)

	select {
	case <-time.After(jitter):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// compile drops rules whose expression does not compile; one bad rule must
// not disable the rest.
func (f *CustomRules) compile(ctx context.Context, rules []HideRule) []compiledRule {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		program, err := f.evaluator.Compile(rule.Expression)
		if err != nil {
			f.logger.WarnwCtx(ctx, "Skipping invalid hide rule",
				"rule_id", rule.ID,
				"rule_name", rule.Name,
				"error", err,
			)
			continue
		}
		compiled = append(compiled, compiledRule{HideRule: rule, program: program})
	}
	return compiled
}

func (f *CustomRules) updateRules(ctx context.Context, rules []compiledRule) {
	f.rulesMu.Lock()
	f.rules = rules
	f.rulesMu.Unlock()

	metrics.SetHideRulesActive(len(rules))
	f.logger.InfowCtx(ctx, "Successfully reloaded hide rules",
		"rules_count", len(rules),
	)
}

// StartReloader reloads rules immediately and then on every interval tick
// until ctx is done.
func (f *CustomRules) StartReloader(ctx context.Context) error {
	if err := f.ReloadRules(ctx, true); err != nil {
		f.logger.ErrorwCtx(ctx, "Failed to reload hide rules",
			"error", err,
		)
	}

	if f.cfg.Reload.IntervalSeconds <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(time.Duration(f.cfg.Reload.IntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := f.ReloadRules(ctx); err != nil {
				f.logger.ErrorwCtx(ctx, "Failed to reload hide rules",
					"error", err,
				)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
