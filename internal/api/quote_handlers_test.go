package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"serwer-cytatow/internal/auth"
	"serwer-cytatow/internal/models"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// doQuoteRequest runs a handler with injected claims and a {quoteId} route
// parameter, the way the chi router would.
func doQuoteRequest(t *testing.T, handler http.HandlerFunc, req *http.Request, claims *auth.AppClaims, quoteID string) *httptest.ResponseRecorder {
	t.Helper()

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("quoteId", quoteID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, userContextKey, claims)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func createQuoteViaAPI(t *testing.T, claims *auth.AppClaims, text, author string) *models.Quote {
	t.Helper()

	body, _ := json.Marshal(CreateQuoteRequest{Text: text, Author: author})
	req := httptest.NewRequest("POST", "/api/v1/quotes", bytes.NewReader(body))
	rr := doAuthedRequest(t, testServer.CreateQuoteHandler, req, claims)
	require.Equal(t, http.StatusCreated, rr.Code)

	var quote models.Quote
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &quote))
	return &quote
}

func TestAPI_CreateQuote_Success(t *testing.T) {
	_, claims := createTestUserAPI(t)

	quote := createQuoteViaAPI(t, claims, "To be or not to be", "Shakespeare")

	require.Len(t, quote.ID, 21)
	require.Equal(t, claims.UserID, quote.OwnerID)
	require.Equal(t, "To be or not to be", quote.Text)
	require.Equal(t, "Shakespeare", quote.Author)
	require.False(t, quote.Favorite)
}

func TestAPI_CreateQuote_EmptyText(t *testing.T) {
	_, claims := createTestUserAPI(t)

	body, _ := json.Marshal(CreateQuoteRequest{Text: "   ", Author: "Somebody"})
	req := httptest.NewRequest("POST", "/api/v1/quotes", bytes.NewReader(body))
	rr := doAuthedRequest(t, testServer.CreateQuoteHandler, req, claims)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_CreateQuote_EmptyAuthor(t *testing.T) {
	_, claims := createTestUserAPI(t)

	body, _ := json.Marshal(CreateQuoteRequest{Text: "Something", Author: ""})
	req := httptest.NewRequest("POST", "/api/v1/quotes", bytes.NewReader(body))
	rr := doAuthedRequest(t, testServer.CreateQuoteHandler, req, claims)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_ListMyQuotes_RoundTrip(t *testing.T) {
	_, claims := createTestUserAPI(t)
	createQuoteViaAPI(t, claims, "T", "A")

	req := httptest.NewRequest("GET", "/api/v1/quotes/my-quotes", nil)
	rr := doAuthedRequest(t, testServer.ListMyQuotesHandler, req, claims)

	require.Equal(t, http.StatusOK, rr.Code)
	var quotes []models.Quote
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &quotes))
	require.Len(t, quotes, 1)
	require.Equal(t, "T", quotes[0].Text)
	require.Equal(t, "A", quotes[0].Author)
	require.False(t, quotes[0].Favorite)
}

func TestAPI_ListQuotes_PublicSpansOwners(t *testing.T) {
	_, aliceClaims := createTestUserAPI(t)
	_, bobClaims := createTestUserAPI(t)

	aliceQuote := createQuoteViaAPI(t, aliceClaims, "Alice public quote", "Alice")
	bobQuote := createQuoteViaAPI(t, bobClaims, "Bob public quote", "Bob")

	// No auth context at all: the feed is public.
	req := httptest.NewRequest("GET", "/api/v1/quotes", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(testServer.ListQuotesHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var quotes []models.PublicQuote
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &quotes))

	seen := map[string]bool{}
	for _, q := range quotes {
		seen[q.ID] = true
		require.NotEmpty(t, q.OwnerUsername)
	}
	require.True(t, seen[aliceQuote.ID])
	require.True(t, seen[bobQuote.ID])
}

func TestAPI_UpdateQuote_Success(t *testing.T) {
	_, claims := createTestUserAPI(t)
	quote := createQuoteViaAPI(t, claims, "before", "someone")

	newText := "after"
	body, _ := json.Marshal(UpdateQuoteRequest{Text: &newText})
	req := httptest.NewRequest("PUT", "/api/v1/quotes/"+quote.ID, bytes.NewReader(body))
	rr := doQuoteRequest(t, testServer.UpdateQuoteHandler, req, claims, quote.ID)

	require.Equal(t, http.StatusOK, rr.Code)
	var updated models.Quote
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	require.Equal(t, "after", updated.Text)
	require.Equal(t, "someone", updated.Author)
}

func TestAPI_UpdateQuote_EmptyText(t *testing.T) {
	_, claims := createTestUserAPI(t)
	quote := createQuoteViaAPI(t, claims, "keep me", "someone")

	empty := " "
	body, _ := json.Marshal(UpdateQuoteRequest{Text: &empty})
	req := httptest.NewRequest("PUT", "/api/v1/quotes/"+quote.ID, bytes.NewReader(body))
	rr := doQuoteRequest(t, testServer.UpdateQuoteHandler, req, claims, quote.ID)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_UpdateQuote_OtherUsersQuote(t *testing.T) {
	_, ownerClaims := createTestUserAPI(t)
	_, intruderClaims := createTestUserAPI(t)
	quote := createQuoteViaAPI(t, ownerClaims, "private property", "owner")

	newText := "hijacked"
	body, _ := json.Marshal(UpdateQuoteRequest{Text: &newText})
	req := httptest.NewRequest("PUT", "/api/v1/quotes/"+quote.ID, bytes.NewReader(body))
	rr := doQuoteRequest(t, testServer.UpdateQuoteHandler, req, intruderClaims, quote.ID)

	// Not 403: someone else's quote is indistinguishable from a missing one.
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_DeleteQuote_Twice(t *testing.T) {
	_, claims := createTestUserAPI(t)
	quote := createQuoteViaAPI(t, claims, "delete me", "someone")

	req := httptest.NewRequest("DELETE", "/api/v1/quotes/"+quote.ID, nil)
	rr := doQuoteRequest(t, testServer.DeleteQuoteHandler, req, claims, quote.ID)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest("DELETE", "/api/v1/quotes/"+quote.ID, nil)
	rr = doQuoteRequest(t, testServer.DeleteQuoteHandler, req, claims, quote.ID)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_DeleteQuote_OtherUsersQuote(t *testing.T) {
	_, ownerClaims := createTestUserAPI(t)
	_, intruderClaims := createTestUserAPI(t)
	quote := createQuoteViaAPI(t, ownerClaims, "not yours", "owner")

	req := httptest.NewRequest("DELETE", "/api/v1/quotes/"+quote.ID, nil)
	rr := doQuoteRequest(t, testServer.DeleteQuoteHandler, req, intruderClaims, quote.ID)
	require.Equal(t, http.StatusNotFound, rr.Code)

	// The owner still sees the quote.
	listReq := httptest.NewRequest("GET", "/api/v1/quotes/my-quotes", nil)
	listRR := doAuthedRequest(t, testServer.ListMyQuotesHandler, listReq, ownerClaims)
	require.Equal(t, http.StatusOK, listRR.Code)
	var quotes []models.Quote
	require.NoError(t, json.Unmarshal(listRR.Body.Bytes(), &quotes))
	require.Len(t, quotes, 1)
}

func TestAPI_ToggleFavorite_TwiceRestores(t *testing.T) {
	_, claims := createTestUserAPI(t)
	quote := createQuoteViaAPI(t, claims, "favorite me", "someone")

	req := httptest.NewRequest("PATCH", "/api/v1/quotes/"+quote.ID+"/favorite", nil)
	rr := doQuoteRequest(t, testServer.ToggleFavoriteHandler, req, claims, quote.ID)
	require.Equal(t, http.StatusOK, rr.Code)
	var toggled models.Quote
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &toggled))
	require.True(t, toggled.Favorite)

	req = httptest.NewRequest("PATCH", "/api/v1/quotes/"+quote.ID+"/favorite", nil)
	rr = doQuoteRequest(t, testServer.ToggleFavoriteHandler, req, claims, quote.ID)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &toggled))
	require.False(t, toggled.Favorite)
}

func TestAPI_ToggleFavorite_OtherUsersQuote(t *testing.T) {
	_, ownerClaims := createTestUserAPI(t)
	_, intruderClaims := createTestUserAPI(t)
	quote := createQuoteViaAPI(t, ownerClaims, "not toggleable by you", "owner")

	req := httptest.NewRequest("PATCH", "/api/v1/quotes/"+quote.ID+"/favorite", nil)
	rr := doQuoteRequest(t, testServer.ToggleFavoriteHandler, req, intruderClaims, quote.ID)
	require.Equal(t, http.StatusNotFound, rr.Code)
}
