package mealdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Timeout: 2 * time.Second}),
	)
}

func TestSearchByIngredient_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/filter.php", r.URL.Path)
		require.Equal(t, "urad dal", r.URL.Query().Get("i"))
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"meals":[{"idMeal":"52765","strMeal":"Dosa","strMealThumb":"https://example.com/dosa.jpg"}]}`))
	}))
	defer srv.Close()

	meals, err := newTestClient(srv).SearchByIngredient(context.Background(), "urad dal")
	require.NoError(t, err)
	require.Len(t, meals, 1)
	require.Equal(t, "Dosa", meals[0].Name)
	require.Equal(t, "52765", meals[0].ID)
}

func TestSearchByIngredient_NullMeals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"meals":null}`))
	}))
	defer srv.Close()

	meals, err := newTestClient(srv).SearchByIngredient(context.Background(), "unobtainium")
	require.NoError(t, err)
	require.Empty(t, meals)
	require.NotNil(t, meals)
}

func TestSearchByIngredient_EmptyIngredient(t *testing.T) {
	_, err := NewClient().SearchByIngredient(context.Background(), "  ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "ingredient")
}

func TestSearchByIngredient_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(503)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SearchByIngredient(context.Background(), "rice")
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
}

func TestSearchByIngredient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`not-json`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SearchByIngredient(context.Background(), "rice")
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode")
}

func TestLookup_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/lookup.php", r.URL.Path)
		require.Equal(t, "52765", r.URL.Query().Get("i"))
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"meals":[{"idMeal":"52765","strMeal":"Dosa","strCategory":"Vegetarian","strArea":"Indian"}]}`))
	}))
	defer srv.Close()

	meal, err := newTestClient(srv).Lookup(context.Background(), "52765")
	require.NoError(t, err)
	require.NotNil(t, meal)
	require.Equal(t, "Vegetarian", meal.Category)
}

func TestLookup_UnknownID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"meals":null}`))
	}))
	defer srv.Close()

	meal, err := newTestClient(srv).Lookup(context.Background(), "0")
	require.NoError(t, err)
	require.Nil(t, meal)
}

func TestLookup_EmptyID(t *testing.T) {
	_, err := NewClient().Lookup(context.Background(), "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "meal id")
}
