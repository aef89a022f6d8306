package api

import (
	"context"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"dfchat/internal/constants"
	"dfchat/internal/diagnostics"
	"dfchat/internal/finalizers"
	"dfchat/internal/logger"
	"dfchat/internal/message"
	"dfchat/internal/state"
	"dfchat/internal/streamer"
	"dfchat/internal/version"
	"dfchat/pkg/cel"
	"dfchat/pkg/errors"
)

type StateReader interface {
	Snapshot() state.State
}

type StreamerSettings interface {
	Snapshot() streamer.Settings
	Update(s streamer.Settings) error
}

type RuleEngine interface {
	Rules() []finalizers.HideRule
	ReloadRules(ctx context.Context, skipJitter ...bool) error
	Evaluator() *cel.Evaluator
}

type DebugSwitch interface {
	DebugMode() bool
	SetDebugMode(enabled bool)
}

type VersionChecker interface {
	Check(ctx context.Context) version.Info
}

type Option func(*Handler)

// WithRuleStore enables rule editing. Without it the rule set is read-only.
func WithRuleStore(store finalizers.RuleStore) Option {
	return func(h *Handler) { h.store = store }
}

func WithArchive(archive diagnostics.Archive) Option {
	return func(h *Handler) { h.archive = archive }
}

func WithVersionChecker(checker VersionChecker) Option {
	return func(h *Handler) { h.version = checker }
}

func WithConfigEvents(events *ConfigEventProducer) Option {
	return func(h *Handler) { h.events = events }
}

type Handler struct {
	checks   []message.Check
	state    StateReader
	streamer StreamerSettings
	rules    RuleEngine
	debug    DebugSwitch
	store    finalizers.RuleStore
	archive  diagnostics.Archive
	version  VersionChecker
	events   *ConfigEventProducer
	logger   logger.Logger
}

func NewHandler(
	checks []message.Check,
	st StateReader,
	settings StreamerSettings,
	rules RuleEngine,
	debug DebugSwitch,
	log logger.Logger,
	opts ...Option,
) *Handler {
	h := &Handler{
		checks:   checks,
		state:    st,
		streamer: settings,
		rules:    rules,
		debug:    debug,
		logger:   log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/message-types", h.ListMessageTypes)
		v1.GET("/state", h.GetState)

		v1.GET("/streamer", h.GetStreamerSettings)
		v1.PUT("/streamer", h.UpdateStreamerSettings)

		v1.GET("/debug", h.GetDebugMode)
		v1.PUT("/debug", h.SetDebugMode)

		rules := v1.Group("/rules")
		{
			rules.GET("", h.ListActiveRules)
			rules.POST("/reload", h.ReloadRules)
			rules.POST("/validate", h.ValidateExpression)
			rules.GET("/examples", h.ListExamples)
			if h.store != nil {
				rules.GET("/stored", h.ListStoredRules)
				rules.GET("/stored/:id", h.GetStoredRule)
				rules.PUT("/stored/:id", h.PutStoredRule)
				rules.DELETE("/stored/:id", h.DeleteStoredRule)
			}
		}

		if h.archive != nil {
			v1.GET("/diagnostics/cancelled", h.ListCancelled)
		}
		if h.version != nil {
			v1.GET("/version", h.GetVersion)
		}
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
}

type MessageTypeResponse struct {
	Name         string `json:"name"`
	HasSound     bool   `json:"has_sound"`
	LineCount    int    `json:"line_count"`
	HideCategory string `json:"hide_category,omitempty"`
	Position     int    `json:"position"`
}

// ListMessageTypes godoc
// @Summary      List message types
// @Description  Registry in classification order. OTHER, which no check declares, comes last.
// @Tags         message-types
// @Produce      json
// @Success      200  {array}  MessageTypeResponse
// @Router       /message-types [get]
func (h *Handler) ListMessageTypes(c *gin.Context) {
	out := make([]MessageTypeResponse, 0, len(h.checks)+1)
	for i, chk := range h.checks {
		t := chk.Type()
		out = append(out, MessageTypeResponse{
			Name:         t.String(),
			HasSound:     t.HasSound(),
			LineCount:    t.LineCount(),
			HideCategory: string(chk.HideCategory()),
			Position:     i,
		})
	}
	out = append(out, MessageTypeResponse{
		Name:      message.Other.String(),
		HasSound:  message.Other.HasSound(),
		LineCount: message.Other.LineCount(),
		Position:  len(h.checks),
	})
	c.JSON(http.StatusOK, out)
}

// GetState godoc
// @Summary      Current game state
// @Tags         state
// @Produce      json
// @Success      200  {object}  state.State
// @Router       /state [get]
func (h *Handler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.state.Snapshot())
}

// GetStreamerSettings godoc
// @Summary      Get streamer mode settings
// @Tags         streamer
// @Produce      json
// @Success      200  {object}  streamer.Settings
// @Router       /streamer [get]
func (h *Handler) GetStreamerSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.streamer.Snapshot())
}

// UpdateStreamerSettings godoc
// @Summary      Replace streamer mode settings
// @Description  Applies locally and publishes a streamer_settings_updated event to the other instances.
// @Tags         streamer
// @Accept       json
// @Produce      json
// @Param        settings  body      streamer.Settings  true  "Streamer settings"
// @Success      200       {object}  streamer.Settings
// @Failure      400       {object}  map[string]interface{}
// @Router       /streamer [put]
func (h *Handler) UpdateStreamerSettings(c *gin.Context) {
	var req streamer.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.streamer.Update(req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.events.PublishStreamerSettings(c.Request.Context(), req); err != nil {
		h.logger.WarnwCtx(c.Request.Context(), "Failed to publish streamer settings event", "error", err)
	}

	c.JSON(http.StatusOK, h.streamer.Snapshot())
}

type debugModeRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// GetDebugMode godoc
// @Summary      Get debug mode
// @Tags         debug
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Router       /debug [get]
func (h *Handler) GetDebugMode(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"enabled": h.debug.DebugMode()})
}

// SetDebugMode godoc
// @Summary      Toggle debug mode
// @Tags         debug
// @Accept       json
// @Produce      json
// @Param        request  body      debugModeRequest  true  "Debug mode"
// @Success      200      {object}  map[string]bool
// @Failure      400      {object}  map[string]interface{}
// @Router       /debug [put]
func (h *Handler) SetDebugMode(c *gin.Context) {
	var req debugModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.debug.SetDebugMode(*req.Enabled)
	h.logger.InfowCtx(c.Request.Context(), "Debug mode changed", "enabled", *req.Enabled)
	c.JSON(http.StatusOK, gin.H{"enabled": h.debug.DebugMode()})
}

// ListActiveRules godoc
// @Summary      List active hide rules
// @Tags         hide-rules
// @Produce      json
// @Success      200  {array}  finalizers.HideRule
// @Router       /rules [get]
func (h *Handler) ListActiveRules(c *gin.Context) {
	c.JSON(http.StatusOK, h.rules.Rules())
}

// ReloadRules godoc
// @Summary      Reload hide rules from their source
// @Tags         hide-rules
// @Produce      json
// @Success      200  {object}  map[string]int
// @Failure      503  {object}  map[string]interface{}
// @Router       /rules/reload [post]
func (h *Handler) ReloadRules(c *gin.Context) {
	if err := h.rules.ReloadRules(c.Request.Context(), true); err != nil {
		h.handleError(c, errors.ErrUnavailable.WithCause(err).WithMessage("failed to reload hide rules"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules_count": len(h.rules.Rules())})
}

type validateRequest struct {
	Expression string `json:"expression" binding:"required"`
}

// ValidateExpression godoc
// @Summary      Validate a CEL hide expression
// @Tags         hide-rules
// @Accept       json
// @Produce      json
// @Param        request  body      validateRequest  true  "Expression"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Router       /rules/validate [post]
func (h *Handler) ValidateExpression(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := h.rules.Evaluator().Validate(req.Expression); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

type exampleResponse struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// ListExamples godoc
// @Summary      Example hide expressions
// @Tags         hide-rules
// @Produce      json
// @Success      200  {array}  exampleResponse
// @Router       /rules/examples [get]
func (h *Handler) ListExamples(c *gin.Context) {
	out := make([]exampleResponse, 0, len(cel.HideExpressionExamples))
	for name, expr := range cel.HideExpressionExamples {
		out = append(out, exampleResponse{Name: name, Expression: expr})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	c.JSON(http.StatusOK, out)
}

// ListStoredRules godoc
// @Summary      List stored hide rules
// @Description  Only registered when rules are stored in PostgreSQL.
// @Tags         hide-rules
// @Produce      json
// @Success      200  {array}   finalizers.HideRule
// @Failure      500  {object}  map[string]interface{}
// @Router       /rules/stored [get]
func (h *Handler) ListStoredRules(c *gin.Context) {
	rules, err := h.store.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

// GetStoredRule godoc
// @Summary      Get a stored hide rule
// @Tags         hide-rules
// @Produce      json
// @Param        id   path      string  true  "Rule ID"
// @Success      200  {object}  finalizers.HideRule
// @Failure      404  {object}  map[string]interface{}
// @Router       /rules/stored/{id} [get]
func (h *Handler) GetStoredRule(c *gin.Context) {
	rule, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

type putRuleRequest struct {
	Name       string `json:"name" binding:"required"`
	Expression string `json:"expression" binding:"required"`
	Priority   int    `json:"priority"`
	Enabled    *bool  `json:"enabled"`
}

// PutStoredRule godoc
// @Summary      Create or replace a stored hide rule
// @Description  The expression is compiled before storing. Enabled defaults to true.
// @Tags         hide-rules
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Rule ID"
// @Param        rule  body      putRuleRequest  true  "Hide rule"
// @Success      200   {object}  finalizers.HideRule
// @Failure      400   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]interface{}
// @Router       /rules/stored/{id} [put]
func (h *Handler) PutStoredRule(c *gin.Context) {
	var req putRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := h.rules.Evaluator().Validate(req.Expression); err != nil {
		h.badRequest(c, err)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	ctx := c.Request.Context()
	rule, err := h.store.Upsert(ctx, finalizers.HideRule{
		ID:         c.Param("id"),
		Name:       req.Name,
		Expression: req.Expression,
		Priority:   req.Priority,
		Enabled:    enabled,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.afterRuleChange(ctx, "upsert", rule.ID)
	c.JSON(http.StatusOK, rule)
}

// DeleteStoredRule godoc
// @Summary      Delete a stored hide rule
// @Tags         hide-rules
// @Param        id   path  string  true  "Rule ID"
// @Success      204
// @Failure      404  {object}  map[string]interface{}
// @Router       /rules/stored/{id} [delete]
func (h *Handler) DeleteStoredRule(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.store.Delete(ctx, id); err != nil {
		h.handleError(c, err)
		return
	}

	h.afterRuleChange(ctx, "delete", id)
	c.Status(http.StatusNoContent)
}

// afterRuleChange reloads locally right away and tells the other
// instances. Neither failure undoes the stored change.
func (h *Handler) afterRuleChange(ctx context.Context, action, id string) {
	if err := h.rules.ReloadRules(ctx, true); err != nil {
		h.logger.WarnwCtx(ctx, "Failed to reload rules after change", "rule_id", id, "error", err)
	}
	if err := h.events.PublishHideRuleEvent(ctx, action, id); err != nil {
		h.logger.WarnwCtx(ctx, "Failed to publish hide rule event", "rule_id", id, "error", err)
	}
}

// ListCancelled godoc
// @Summary      Recently cancelled messages
// @Description  Only registered when the diagnostics archive is enabled.
// @Tags         diagnostics
// @Produce      json
// @Param        limit  query     int  false  "Maximum records (default 100, capped at 1000)"
// @Success      200    {array}   diagnostics.Record
// @Failure      400    {object}  map[string]interface{}
// @Failure      503    {object}  map[string]interface{}
// @Router       /diagnostics/cancelled [get]
func (h *Handler) ListCancelled(c *gin.Context) {
	limit := constants.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.badRequest(c, errors.ErrValidation.WithMessage("limit must be a positive integer"))
			return
		}
		limit = n
	}
	if limit > constants.MaxLimit {
		limit = constants.MaxLimit
	}

	records, err := h.archive.Recent(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, errors.ErrUnavailable.WithCause(err))
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetVersion godoc
// @Summary      Running and latest released version
// @Tags         version
// @Produce      json
// @Success      200  {object}  version.Info
// @Router       /version [get]
func (h *Handler) GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, h.version.Check(c.Request.Context()))
}
