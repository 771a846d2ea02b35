package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"recipe-genie/internal/domain"
	"recipe-genie/internal/handler"
	"recipe-genie/internal/integrations/mealdb"
	"recipe-genie/internal/usecase"
)

type stubChatService struct{}

func (stubChatService) SendMessage(context.Context, usecase.SendInput) (usecase.SendOutput, error) {
	return usecase.SendOutput{Reply: "ok", ChatID: "c"}, nil
}
func (stubChatService) NewChat(context.Context, string) (domain.Conversation, error) {
	return domain.Conversation{ID: "c"}, nil
}
func (stubChatService) ListChats(context.Context, string) ([]domain.Conversation, error) {
	return nil, nil
}
func (stubChatService) ListMessages(context.Context, string, string) ([]domain.Message, error) {
	return nil, nil
}
func (stubChatService) Rename(context.Context, string, string, string) error { return nil }
func (stubChatService) Delete(context.Context, string, string) error         { return nil }
func (stubChatService) GetPreferences(context.Context, string) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}
func (stubChatService) SavePreferences(context.Context, string, json.RawMessage) error { return nil }

type stubRecipeService struct{}

func (stubRecipeService) ListPopular(context.Context) ([]usecase.RecipeSuggestion, error) {
	return nil, nil
}
func (stubRecipeService) SearchByIngredient(context.Context, string) ([]mealdb.Meal, error) {
	return nil, nil
}

func newRouter(t *testing.T, staticDir string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h, err := handler.NewChatHandler(stubChatService{}, stubRecipeService{}, nil)
	require.NoError(t, err)
	return NewRouter(RouterConfig{ChatHandler: h, StaticDir: staticDir})
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_RegistersAPIRoutes(t *testing.T) {
	router := newRouter(t, "")

	for _, path := range []string{"/health", "/", "/chat/chats/u1", "/chat/messages/u1/c1", "/chat/preferences/u1", "/recipes", "/recipes/search?ingredient=rice"} {
		rec := get(router, path)
		require.Equal(t, http.StatusOK, rec.Code, "GET %s", path)
	}
}

func TestRouter_SPAFallback(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(index, []byte("<html>genie</html>"), 0o644))

	router := newRouter(t, dir)

	rec := get(router, "/some/client/route")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "genie")
}

func TestRouter_SPAFallbackSkipsAPIPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("x"), 0o644))

	router := newRouter(t, dir)

	rec := get(router, "/chat/unknown")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestRouter_NoStaticDirDisablesFallback(t *testing.T) {
	router := newRouter(t, "")
	rec := get(router, "/some/client/route")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
