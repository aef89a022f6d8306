package message

import (
	"context"
	"errors"
	"fmt"

	"dfchat/internal/logger"
	apperrors "dfchat/pkg/errors"
	"dfchat/pkg/metrics"
)

// Classifier runs an ordered list of checks against a message. The first
// check whose predicate holds decides the type.
type Classifier struct {
	log    logger.Logger
	checks []Check
}

// NewClassifier keeps checks in the given order. Every type may be claimed
// by at most one check, and no check may claim Other.
func NewClassifier(log logger.Logger, checks ...Check) (*Classifier, error) {
	seen := make(map[Type]struct{}, len(checks))
	for i, c := range checks {
		if c == nil {
			return nil, fmt.Errorf("check %d is nil", i)
		}
		t := c.Type()
		if t == Other {
			return nil, fmt.Errorf("check %d claims the default type %s", i, Other)
		}
		if !t.valid() {
			return nil, fmt.Errorf("check %d claims unknown type %s", i, t)
		}
		if _, dup := seen[t]; dup {
			return nil, fmt.Errorf("type %s is claimed by more than one check", t)
		}
		if !c.HideCategory().Valid() {
			return nil, fmt.Errorf("check for %s has unknown hide category %q", t, c.HideCategory())
		}
		seen[t] = struct{}{}
	}

	return &Classifier{
		log:    log,
		checks: append([]Check(nil), checks...),
	}, nil
}

func (c *Classifier) Checks() []Check {
	return append([]Check(nil), c.checks...)
}

// Classify resolves msg to the type of the first matching check and runs
// that check's action. A predicate that panics counts as no match. An
// action failing for any reason other than ErrUnavailable also counts as no
// match and the next check is tried.
func (c *Classifier) Classify(ctx context.Context, msg *Message) (Type, Check) {
	for _, chk := range c.checks {
		if !c.matches(ctx, chk, msg) {
			continue
		}

		err := apperrors.Safely(func() error {
			return chk.OnReceive(ctx, msg)
		})
		switch {
		case err == nil:
		case errors.Is(err, ErrUnavailable):
			c.log.WarnwCtx(ctx, "Check action skipped, collaborator unavailable",
				"type", chk.Type().String(),
				"error", err,
			)
		default:
			metrics.IncCheckError(chk.Type().String(), "action")
			c.log.ErrorwCtx(ctx, "Check action failed, treating as no match",
				"type", chk.Type().String(),
				"error", err,
			)
			continue
		}

		msg.resolve(chk.Type(), chk)
		return chk.Type(), chk
	}

	msg.resolve(Other, nil)
	return Other, nil
}

func (c *Classifier) matches(ctx context.Context, chk Check, msg *Message) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			metrics.IncCheckError(chk.Type().String(), "predicate")
			c.log.ErrorwCtx(ctx, "Check predicate panicked, treating as no match",
				"type", chk.Type().String(),
				"error", apperrors.RecoverPanic(r),
			)
			ok = false
		}
	}()
	return chk.Check(msg)
}
