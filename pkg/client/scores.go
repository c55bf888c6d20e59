package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/partscout/partscout/pkg/types/listing"
)

// ScoreRequest is the body for POST /api/v1/listings/score.
type ScoreRequest struct {
	Title              *string  `json:"title,omitempty"`
	Category           string   `json:"category,omitempty"`
	Condition          string   `json:"condition,omitempty"`
	Price              *float64 `json:"price,omitempty"`
	PartYear           *int     `json:"part_year,omitempty"`
	EngineMiles        *float64 `json:"engine_miles,omitempty"`
	ListingURL         string   `json:"listing_url,omitempty"`
	BuyerZip           string   `json:"buyer_zip,omitempty"`
	DistanceMiles      *float64 `json:"distance_miles,omitempty"`
	SellerTenureMonths *float64 `json:"seller_tenure_months,omitempty"`
	MarketplaceSource  bool     `json:"marketplace_source,omitempty"`
}

// AnalyzeRequest is the body for POST /api/v1/listings/analyze.
type AnalyzeRequest struct {
	URL         string   `json:"url"`
	Category    string   `json:"category,omitempty"`
	Condition   string   `json:"condition,omitempty"`
	PartYear    *int     `json:"part_year,omitempty"`
	EngineMiles *float64 `json:"engine_miles,omitempty"`
	BuyerZip    string   `json:"buyer_zip,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

// ScoreOutcome is the response payload of both scoring endpoints.
type ScoreOutcome struct {
	Record       *listing.ScoreRecord `json:"record,omitempty"`
	Result       listing.ScoreResult  `json:"result"`
	SellerRating float64              `json:"seller_rating,omitempty"`
}

// ScoreListing scores a listing from structured fields.
func (c *Client) ScoreListing(ctx context.Context, req ScoreRequest) (*ScoreOutcome, error) {
	var out ScoreOutcome
	if err := c.do(ctx, http.MethodPost, "/api/v1/listings/score", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeListing scores a listing straight from its URL.
func (c *Client) AnalyzeListing(ctx context.Context, req AnalyzeRequest) (*ScoreOutcome, error) {
	var out ScoreOutcome
	if err := c.do(ctx, http.MethodPost, "/api/v1/listings/analyze", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetScore fetches one persisted score record.
func (c *Client) GetScore(ctx context.Context, id string) (*listing.ScoreRecord, error) {
	var rec listing.ScoreRecord
	path := "/api/v1/scores/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListScores fetches the most recent score records.
func (c *Client) ListScores(ctx context.Context, limit int) ([]*listing.ScoreRecord, error) {
	path := "/api/v1/scores"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var records []*listing.ScoreRecord
	if err := c.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// LatestScoreForURL fetches the most recent score recorded for a listing
// URL.  A listing that has never been scored is an APIError with
// IsNotFound() true.
func (c *Client) LatestScoreForURL(ctx context.Context, listingURL string) (*listing.ScoreRecord, error) {
	path := "/api/v1/scores?url=" + url.QueryEscape(listingURL)
	var records []*listing.ScoreRecord
	if err := c.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "listing has not been scored"}
	}
	return records[0], nil
}
