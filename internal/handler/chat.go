// Package handler exposes the chat service over HTTP. Handlers translate
// between JSON request bodies and the usecase layer; service error codes map
// to HTTP statuses here and upstream error details never reach the client.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe-genie/internal/domain"
	"recipe-genie/internal/integrations/mealdb"
	"recipe-genie/internal/usecase"
)

// ChatService is the conversation surface the handlers drive.
type ChatService interface {
	SendMessage(ctx context.Context, in usecase.SendInput) (usecase.SendOutput, error)
	NewChat(ctx context.Context, userID string) (domain.Conversation, error)
	ListChats(ctx context.Context, userID string) ([]domain.Conversation, error)
	ListMessages(ctx context.Context, userID, chatID string) ([]domain.Message, error)
	Rename(ctx context.Context, userID, chatID, title string) error
	Delete(ctx context.Context, userID, chatID string) error
	GetPreferences(ctx context.Context, userID string) (json.RawMessage, error)
	SavePreferences(ctx context.Context, userID string, prefs json.RawMessage) error
}

// RecipeService serves the recipe discovery endpoints.
type RecipeService interface {
	ListPopular(ctx context.Context) ([]usecase.RecipeSuggestion, error)
	SearchByIngredient(ctx context.Context, ingredient string) ([]mealdb.Meal, error)
}

type ChatHandler struct {
	chats   ChatService
	recipes RecipeService
	log     *slog.Logger
}

func NewChatHandler(chats ChatService, recipes RecipeService, log *slog.Logger) (*ChatHandler, error) {
	if chats == nil {
		return nil, errors.New("handler: chat service must not be nil")
	}
	if recipes == nil {
		return nil, errors.New("handler: recipe service must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &ChatHandler{chats: chats, recipes: recipes, log: log}, nil
}

type sendMessageRequest struct {
	UserID  string `json:"user_id"`
	ChatID  string `json:"chat_id"`
	Message string `json:"message"`
}

type newChatRequest struct {
	UserID string `json:"user_id"`
}

type renameRequest struct {
	UserID string `json:"user_id"`
	ChatID string `json:"chat_id"`
	Title  string `json:"title"`
}

// SendMessage handles POST /chat/message. An empty chat_id starts a new
// conversation; the id in the response tells the client where the exchange
// landed.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, usecase.ErrorInvalidInput, "invalid request body")
		return
	}

	out, err := h.chats.SendMessage(c.Request.Context(), usecase.SendInput{
		UserID:  req.UserID,
		ChatID:  req.ChatID,
		Message: req.Message,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": out.Reply, "chat_id": out.ChatID})
}

// NewChat handles POST /chat/new.
func (h *ChatHandler) NewChat(c *gin.Context) {
	var req newChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, usecase.ErrorInvalidInput, "invalid request body")
		return
	}

	conv, err := h.chats.NewChat(c.Request.Context(), req.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chat_id": conv.ID, "title": conv.Title})
}

// ListChats handles GET /chat/chats/:user_id.
func (h *ChatHandler) ListChats(c *gin.Context) {
	chats, err := h.chats.ListChats(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if chats == nil {
		chats = []domain.Conversation{}
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// ListMessages handles GET /chat/messages/:user_id/:chat_id.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	msgs, err := h.chats.ListMessages(c.Request.Context(), c.Param("user_id"), c.Param("chat_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// Rename handles PUT /chat/title.
func (h *ChatHandler) Rename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, usecase.ErrorInvalidInput, "invalid request body")
		return
	}

	if err := h.chats.Rename(c.Request.Context(), req.UserID, req.ChatID, req.Title); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Delete handles DELETE /chat/:user_id/:chat_id.
func (h *ChatHandler) Delete(c *gin.Context) {
	if err := h.chats.Delete(c.Request.Context(), c.Param("user_id"), c.Param("chat_id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// GetPreferences handles GET /chat/preferences/:user_id.
func (h *ChatHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.chats.GetPreferences(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", prefs)
}

// SavePreferences handles PUT /chat/preferences/:user_id. The body is stored
// as-is, so any JSON document the frontend sends round-trips unchanged.
func (h *ChatHandler) SavePreferences(c *gin.Context) {
	var prefs json.RawMessage
	if err := c.ShouldBindJSON(&prefs); err != nil {
		h.respondError(c, usecase.ErrorInvalidInput, "invalid request body")
		return
	}

	if err := h.chats.SavePreferences(c.Request.Context(), c.Param("user_id"), prefs); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Preferences saved"})
}

// PopularRecipes handles GET /recipes.
func (h *ChatHandler) PopularRecipes(c *gin.Context) {
	recipes, err := h.recipes.ListPopular(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// SearchRecipes handles GET /recipes/search?ingredient=.
func (h *ChatHandler) SearchRecipes(c *gin.Context) {
	meals, err := h.recipes.SearchByIngredient(c.Request.Context(), c.Query("ingredient"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

// Health handles GET /health.
func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Banner handles GET /.
func (h *ChatHandler) Banner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Recipe Genie API is running"})
}

// fail logs the failure and writes the status mapped from the service error
// code. Only the code and a fixed message reach the client.
func (h *ChatHandler) fail(c *gin.Context, err error) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		h.log.Error("unexpected handler error", "path", c.FullPath(), "err", err)
		h.respondError(c, usecase.ErrorInternal, "internal error")
		return
	}
	h.log.Warn("request failed", "path", c.FullPath(), "code", ucErr.Code, "reason", ucErr.Reason, "err", err)
	h.respondError(c, ucErr.Code, clientMessage(ucErr.Code))
}

func (h *ChatHandler) respondError(c *gin.Context, code usecase.ErrorCode, message string) {
	c.AbortWithStatusJSON(statusForCode(code), gin.H{"error": string(code), "message": message})
}

func statusForCode(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	case usecase.ErrorNotFound:
		return http.StatusNotFound
	case usecase.ErrorUpstream:
		return http.StatusBadGateway
	case usecase.ErrorPersistence:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func clientMessage(code usecase.ErrorCode) string {
	switch code {
	case usecase.ErrorInvalidInput:
		return "invalid request"
	case usecase.ErrorNotFound:
		return "conversation not found"
	case usecase.ErrorUpstream:
		return "upstream service unavailable"
	case usecase.ErrorPersistence:
		return "storage error"
	default:
		return "internal error"
	}
}
