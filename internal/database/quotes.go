package database

import (
	"context"
	"errors"
	"serwer-cytatow/internal/models"
	"time"

	"github.com/jackc/pgx/v5"
)

type CreateQuoteParams struct {
	ID      string
	OwnerID int64
	Text    string
	Author  string
}

func (q *Queries) CreateQuote(ctx context.Context, arg CreateQuoteParams) (*models.Quote, error) {
	query := `
		INSERT INTO quotes (id, owner_id, text, author, favorite, created_at, modified_at)
		VALUES ($1, $2, $3, $4, false, $5, $5)
		RETURNING id, owner_id, text, author, favorite, created_at, modified_at
	`
	now := time.Now()

	var quote models.Quote
	err := q.db.QueryRow(ctx, query, arg.ID, arg.OwnerID, arg.Text, arg.Author, now).Scan(
		&quote.ID,
		&quote.OwnerID,
		&quote.Text,
		&quote.Author,
		&quote.Favorite,
		&quote.CreatedAt,
		&quote.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	return &quote, nil
}

// ListAllQuotes is the public feed: every quote of every user, in insertion
// order, with the owner's username attached.
func (q *Queries) ListAllQuotes(ctx context.Context) ([]models.PublicQuote, error) {
	query := `
		SELECT
			q.id, q.owner_id, q.text, q.author, q.favorite, q.created_at, q.modified_at,
			u.username AS owner_username
		FROM quotes q
		JOIN users u ON q.owner_id = u.id
		ORDER BY q.created_at
	`
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []models.PublicQuote
	for rows.Next() {
		var quote models.PublicQuote
		err := rows.Scan(
			&quote.ID, &quote.OwnerID, &quote.Text, &quote.Author, &quote.Favorite,
			&quote.CreatedAt, &quote.ModifiedAt, &quote.OwnerUsername,
		)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if quotes == nil {
		return []models.PublicQuote{}, nil
	}

	return quotes, nil
}

func (q *Queries) ListQuotesByOwner(ctx context.Context, ownerID int64) ([]models.Quote, error) {
	query := `
		SELECT id, owner_id, text, author, favorite, created_at, modified_at
		FROM quotes
		WHERE owner_id = $1
		ORDER BY created_at
	`
	rows, err := q.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []models.Quote
	for rows.Next() {
		var quote models.Quote
		err := rows.Scan(
			&quote.ID, &quote.OwnerID, &quote.Text, &quote.Author, &quote.Favorite,
			&quote.CreatedAt, &quote.ModifiedAt,
		)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if quotes == nil {
		return []models.Quote{}, nil
	}

	return quotes, nil
}

type UpdateQuoteParams struct {
	Text     *string
	Author   *string
	Favorite *bool
}

// UpdateQuote applies a partial update scoped to the owner. A quote that
// does not exist and a quote owned by someone else both come back as
// (nil, nil) — callers cannot tell the two apart.
func (q *Queries) UpdateQuote(ctx context.Context, id string, ownerID int64, arg UpdateQuoteParams) (*models.Quote, error) {
	query := `
		UPDATE quotes
		SET
			text = COALESCE($1, text),
			author = COALESCE($2, author),
			favorite = COALESCE($3, favorite),
			modified_at = $4
		WHERE id = $5 AND owner_id = $6
		RETURNING id, owner_id, text, author, favorite, created_at, modified_at
	`
	now := time.Now()

	var quote models.Quote
	err := q.db.QueryRow(ctx, query, arg.Text, arg.Author, arg.Favorite, now, id, ownerID).Scan(
		&quote.ID,
		&quote.OwnerID,
		&quote.Text,
		&quote.Author,
		&quote.Favorite,
		&quote.CreatedAt,
		&quote.ModifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &quote, nil
}

func (q *Queries) DeleteQuote(ctx context.Context, id string, ownerID int64) (bool, error) {
	query := `DELETE FROM quotes WHERE id = $1 AND owner_id = $2`
	res, err := q.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// ToggleFavorite flips the flag in a single statement, so two concurrent
// toggles still end up as an even number of flips.
func (q *Queries) ToggleFavorite(ctx context.Context, id string, ownerID int64) (*models.Quote, error) {
	query := `
		UPDATE quotes
		SET favorite = NOT favorite, modified_at = $1
		WHERE id = $2 AND owner_id = $3
		RETURNING id, owner_id, text, author, favorite, created_at, modified_at
	`
	now := time.Now()

	var quote models.Quote
	err := q.db.QueryRow(ctx, query, now, id, ownerID).Scan(
		&quote.ID,
		&quote.OwnerID,
		&quote.Text,
		&quote.Author,
		&quote.Favorite,
		&quote.CreatedAt,
		&quote.ModifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &quote, nil
}

func (q *Queries) QuoteExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM quotes WHERE id = $1)"
	err := q.db.QueryRow(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
