package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"serwer-cytatow/internal/database"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
)

type CreateQuoteRequest struct {
	Text   string `json:"text" example:"Simplicity is the ultimate sophistication."`
	Author string `json:"author" example:"Leonardo da Vinci"`
}

type UpdateQuoteRequest struct {
	Text     *string `json:"text,omitempty"`
	Author   *string `json:"author,omitempty"`
	Favorite *bool   `json:"favorite,omitempty"`
}

func (s *Server) generateUniqueQuoteID(ctx context.Context) (string, error) {
	maxRetries := 10

	generateID, err := nanoid.Standard(21)
	if err != nil {
		return "", fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}

	for i := 0; i < maxRetries; i++ {
		id := generateID()
		exists, err := s.store.QuoteExists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to check for quote existence: %w", err)
		}
		if !exists {
			return id, nil
		}
	}

	return "", fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}

// @Summary      List all quotes
// @Description  Public feed of every quote from every user, with the owner's username attached. No authentication required.
// @Tags         quotes
// @Produce      json
// @Success      200  {array}   models.PublicQuote
// @Failure      500  {object}  MessageResponse
// @Router       /quotes [get]
func (s *Server) ListQuotesHandler(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.store.ListAllQuotes(r.Context())
	if err != nil {
		log.Printf("ERROR: failed to list quotes: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondWithJSON(w, http.StatusOK, quotes)
}

// @Summary      List own quotes
// @Description  Quotes owned by the authenticated user.
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Quote
// @Failure      401  {object}  MessageResponse
// @Failure      500  {object}  MessageResponse
// @Router       /quotes/my-quotes [get]
func (s *Server) ListMyQuotesHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	quotes, err := s.store.ListQuotesByOwner(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: failed to list quotes for user %d: %v", claims.UserID, err)
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondWithJSON(w, http.StatusOK, quotes)
}

// @Summary      Create a quote
// @Description  Adds a quote owned by the authenticated user. Favorite starts out false.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        createQuoteRequest  body      CreateQuoteRequest  true  "Quote text and author"
// @Success      201                 {object}  models.Quote
// @Failure      400                 {object}  MessageResponse "Empty text or author"
// @Failure      401                 {object}  MessageResponse
// @Failure      500                 {object}  MessageResponse
// @Router       /quotes [post]
func (s *Server) CreateQuoteHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var req CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	req.Author = strings.TrimSpace(req.Author)
	if req.Text == "" || req.Author == "" {
		respondWithError(w, http.StatusBadRequest, "Text and author are required")
		return
	}

	quoteID, err := s.generateUniqueQuoteID(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	quote, err := s.store.CreateQuote(r.Context(), database.CreateQuoteParams{
		ID:      quoteID,
		OwnerID: claims.UserID,
		Text:    req.Text,
		Author:  req.Author,
	})
	if err != nil {
		log.Printf("ERROR: failed to create quote for user %d: %v", claims.UserID, err)
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	s.store.PublishQuoteEvent(claims.UserID, "quote_created", quote)

	respondWithJSON(w, http.StatusCreated, quote)
}

// @Summary      Update a quote
// @Description  Partially updates text, author or favorite of an owned quote. A quote that does not exist and a quote owned by someone else both return 404.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        quoteId             path      string              true  "Quote ID"
// @Param        updateQuoteRequest  body      UpdateQuoteRequest  true  "Fields to change"
// @Success      200                 {object}  models.Quote
// @Failure      400                 {object}  MessageResponse
// @Failure      401                 {object}  MessageResponse
// @Failure      404                 {object}  MessageResponse "Quote not found"
// @Failure      500                 {object}  MessageResponse
// @Router       /quotes/{quoteId} [put]
func (s *Server) UpdateQuoteHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	quoteID := chi.URLParam(r, "quoteId")

	var req UpdateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Text != nil && strings.TrimSpace(*req.Text) == "" {
		respondWithError(w, http.StatusBadRequest, "Text cannot be empty")
		return
	}
	if req.Author != nil && strings.TrimSpace(*req.Author) == "" {
		respondWithError(w, http.StatusBadRequest, "Author cannot be empty")
		return
	}

	quote, err := s.store.UpdateQuote(r.Context(), quoteID, claims.UserID, database.UpdateQuoteParams{
		Text:     req.Text,
		Author:   req.Author,
		Favorite: req.Favorite,
	})
	if err != nil {
		log.Printf("ERROR: failed to update quote %s: %v", quoteID, err)
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if quote == nil {
		respondWithError(w, http.StatusNotFound, "Quote not found")
		return
	}

	s.store.PublishQuoteEvent(claims.UserID, "quote_updated", quote)

	respondWithJSON(w, http.StatusOK, quote)
}

// @Summary      Delete a quote
// @Description  Deletes an owned quote. Same 404 rule as update.
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        quoteId  path      string  true  "Quote ID"
// @Success      200      {object}  MessageResponse
// @Failure      401      {object}  MessageResponse
// @Failure      404      {object}  MessageResponse "Quote not found"
// @Failure      500      {object}  MessageResponse
// @Router       /quotes/{quoteId} [delete]
func (s *Server) DeleteQuoteHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	quoteID := chi.URLParam(r, "quoteId")

	deleted, err := s.store.DeleteQuote(r.Context(), quoteID, claims.UserID)
	if err != nil {
		log.Printf("ERROR: failed to delete quote %s: %v", quoteID, err)
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if !deleted {
		respondWithError(w, http.StatusNotFound, "Quote not found")
		return
	}

	s.store.PublishQuoteEvent(claims.UserID, "quote_deleted", map[string]string{"id": quoteID})

	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Quote deleted"})
}

// @Summary      Toggle favorite
// @Description  Flips the favorite flag of an owned quote.
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        quoteId  path      string  true  "Quote ID"
// @Success      200      {object}  models.Quote
// @Failure      401      {object}  MessageResponse
// @Failure      404      {object}  MessageResponse "Quote not found"
// @Failure      500      {object}  MessageResponse
// @Router       /quotes/{quoteId}/favorite [patch]
func (s *Server) ToggleFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	quoteID := chi.URLParam(r, "quoteId")

	quote, err := s.store.ToggleFavorite(r.Context(), quoteID, claims.UserID)
	if err != nil {
		log.Printf("ERROR: failed to toggle favorite on quote %s: %v", quoteID, err)
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if quote == nil {
		respondWithError(w, http.StatusNotFound, "Quote not found")
		return
	}

	s.store.PublishQuoteEvent(claims.UserID, "quote_updated", quote)

	respondWithJSON(w, http.StatusOK, quote)
}
