package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"

	"github.com/sefran12/the-garden-of-forking-paths/internal/engine"
	"github.com/sefran12/the-garden-of-forking-paths/internal/llm"
	"github.com/sefran12/the-garden-of-forking-paths/internal/story"
)

// Defaults are the workflow settings used when a request leaves them out.
type Defaults struct {
	Provider  string
	Model     string
	Workflow  string
	Timeout   time.Duration
	MaxScenes int
}

// Handler exposes the story session over HTTP.
type Handler struct {
	adapter  *story.Adapter
	defaults Defaults
	logger   *zap.Logger
}

// NewHandler creates an API handler.
func NewHandler(adapter *story.Adapter, defaults Defaults, logger *zap.Logger) *Handler {
	if adapter == nil {
		log.Fatal().Msg("story.Adapter is nil for api.Handler")
	}
	if logger == nil {
		log.Fatal().Msg("Logger is nil for api.Handler")
	}
	return &Handler{
		adapter:  adapter,
		defaults: defaults,
		logger:   logger.Named("api"),
	}
}

// RegisterRoutes attaches the session endpoints to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.health)

	api := router.Group("/api")
	{
		api.POST("/session", h.createSession)
		api.GET("/session", h.currentSession)
		api.POST("/session/action", h.applyAction)
		api.POST("/session/regenerate", h.regenerate)
		api.POST("/session/save", h.save)
		api.POST("/session/load/:id", h.load)
		api.GET("/saves", h.listSaves)
	}
}

type workflowOptions struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Workflow string `json:"workflow"`
}

// resolveConfig merges request options over the server defaults.
func (h *Handler) resolveConfig(opts workflowOptions) (engine.Config, error) {
	providerName := opts.Provider
	if providerName == "" {
		providerName = h.defaults.Provider
	}
	provider, err := llm.ParseProvider(providerName)
	if err != nil {
		return engine.Config{}, err
	}

	model := opts.Model
	if model == "" {
		model = h.defaults.Model
	}

	workflowName := opts.Workflow
	if workflowName == "" {
		workflowName = h.defaults.Workflow
	}
	workflowType, err := engine.ParseType(workflowName)
	if err != nil {
		return engine.Config{}, err
	}

	return engine.Config{
		Provider: provider,
		Model:    model,
		Type:     workflowType,
		Timeout:  h.defaults.Timeout,
	}, nil
}

type createSessionRequest struct {
	Plot         string `json:"plot" binding:"required"`
	CurrentScene string `json:"current_scene" binding:"required"`
}

func (h *Handler) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	messages := []story.Message{
		{Role: "assistant", Content: story.WelcomeMessage},
	}
	state := h.adapter.CreateInitialState(req.Plot, req.CurrentScene, messages)
	c.JSON(http.StatusCreated, stateResponse(state))
}

func (h *Handler) currentSession(c *gin.Context) {
	state := h.adapter.Current()
	if state == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
		return
	}
	c.JSON(http.StatusOK, stateResponse(state))
}

type actionRequest struct {
	UserAction   string          `json:"user_action" binding:"required"`
	ChatMessages []story.Message `json:"chat_messages" binding:"required"`
	workflowOptions
}

func (h *Handler) applyAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.resolveConfig(req.workflowOptions)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.adapter.GenerateNextState(c.Request.Context(), req.UserAction, req.ChatMessages, h.defaults.MaxScenes, cfg)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateResponse(state))
}

type regenerateRequest struct {
	ChatMessages []story.Message `json:"chat_messages" binding:"required"`
	workflowOptions
}

func (h *Handler) regenerate(c *gin.Context) {
	var req regenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.resolveConfig(req.workflowOptions)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.adapter.RegenerateCurrentState(c.Request.Context(), req.ChatMessages, h.defaults.MaxScenes, cfg)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateResponse(state))
}

type saveRequest struct {
	workflowOptions
}

func (h *Handler) save(c *gin.Context) {
	var req saveRequest
	// The body is optional for saves.
	if err := c.ShouldBindJSON(&req); err != nil {
		req = saveRequest{}
	}

	cfg, err := h.resolveConfig(req.workflowOptions)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saveID, err := h.adapter.SaveCurrent(c.Request.Context(), cfg)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"save_id": saveID})
}

func (h *Handler) load(c *gin.Context) {
	state, err := h.adapter.LoadState(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateResponse(state))
}

func (h *Handler) listSaves(c *gin.Context) {
	saves, err := h.adapter.ListSaves(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saves": saves})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps domain errors onto HTTP statuses.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, story.ErrIncompleteStory):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, llm.ErrUnsupportedProvider),
		errors.Is(err, engine.ErrUnknownWorkflowType),
		errors.Is(err, llm.ErrMissingAPIKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrRunTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case errors.Is(err, story.ErrSaveNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, story.ErrNoCurrentState),
		errors.Is(err, story.ErrNoActionToRegenerate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

type stateDTO struct {
	Plot         string          `json:"plot"`
	CurrentScene string          `json:"current_scene"`
	SceneHistory []string        `json:"scene_history"`
	ChatMessages []story.Message `json:"chat_messages"`
	Timestamp    time.Time       `json:"timestamp"`
	Vision       string          `json:"original_vision,omitempty"`
	Regenerated  bool            `json:"regenerated,omitempty"`
}

func stateResponse(state *story.StoryState) stateDTO {
	return stateDTO{
		Plot:         state.Plot,
		CurrentScene: state.CurrentScene,
		SceneHistory: state.SceneHistory,
		ChatMessages: state.ChatMessages,
		Timestamp:    state.Timestamp,
		Vision:       state.Meta.Vision,
		Regenerated:  state.Meta.Regenerated,
	}
}
