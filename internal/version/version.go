package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"dfchat/internal/config"
	"dfchat/internal/logger"
	"dfchat/pkg/circuitbreaker"
	"dfchat/pkg/retry"
)

// releasePrefix is the length of the tag that precedes the number in a
// release name, e.g. "recode2712".
const releasePrefix = 6

const userAgent = "dfchat-version-check"

// Info compares the running build with the newest published release. A
// zero Latest means the lookup failed.
type Info struct {
	Current         int       `json:"current"`
	Latest          int       `json:"latest"`
	UpdateAvailable bool      `json:"update_available"`
	CheckedAt       time.Time `json:"checked_at"`
}

type release struct {
	Name string `json:"name"`
}

type Checker struct {
	url     string
	current string
	client  *http.Client
	breaker *circuitbreaker.Wrapper
	policy  retry.Policy
	logger  logger.Logger
}

func NewChecker(cfg config.VersionConfig, cbCfg config.CircuitBreakerConfig, log logger.Logger) *Checker {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Checker{
		url:     cfg.ReleasesURL,
		current: cfg.Current,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.NewWrapper(circuitbreaker.FromConfig("version-check", cbCfg)),
		policy:  retry.DefaultPolicy(),
		logger:  log,
	}
}

// Current parses the running version. Development builds that are not a
// plain number report -1.
func Current(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return -1
	}
	return n
}

// ParseReleaseName extracts the release number from a name like
// "recode2712".
func ParseReleaseName(name string) (int, error) {
	if len(name) <= releasePrefix {
		return 0, fmt.Errorf("release name %q too short", name)
	}
	n, err := strconv.Atoi(name[releasePrefix:])
	if err != nil {
		return 0, fmt.Errorf("release name %q: %w", name, err)
	}
	return n, nil
}

// Latest returns the newest release number, or 0 when it cannot be
// determined.
func (c *Checker) Latest(ctx context.Context) int {
	var latest int
	err := retry.Do(ctx, c.policy, func() error {
		n, err := circuitbreaker.Execute(ctx, c.breaker, c.fetch)
		if err != nil {
			return err
		}
		latest = n
		return nil
	})
	if err != nil {
		c.logger.WarnwCtx(ctx, "Failed to look up latest release",
			"url", c.url,
			"error", err,
		)
		return 0
	}
	return latest
}

func (c *Checker) Check(ctx context.Context) Info {
	info := Info{
		Current:   Current(c.current),
		Latest:    c.Latest(ctx),
		CheckedAt: time.Now().UTC(),
	}
	info.UpdateAvailable = info.Latest > 0 && info.Current >= 0 && info.Latest > info.Current
	return info
}

func (c *Checker) fetch(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, retry.NewFatalError(fmt.Errorf("build release request: %w", err))
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("release request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return 0, fmt.Errorf("release lookup returned %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, retry.NewFatalError(fmt.Errorf("release lookup returned %s", resp.Status))
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return 0, retry.NewFatalError(fmt.Errorf("decode release response: %w", err))
	}

	n, err := ParseReleaseName(rel.Name)
	if err != nil {
		return 0, retry.NewFatalError(err)
	}
	return n, nil
}
