package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/listings/score", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req ScoreRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Suspension", req.Category)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"data": {
				"record": {"id": "score_1", "category": "Suspension", "condition": "New",
					"fmv_low": 348, "fmv_mid": 396, "fmv_high": 467,
					"price_signal": "At market", "score10": 9.0,
					"risk_flags": [], "created_at": "2026-06-01T00:00:00Z"},
				"result": {
					"valuation": {"base_anchor": 360, "age_band": "new_0_1",
						"age_factor": 1, "condition_factor": 1,
						"availability_factor": 1.1, "demand_factor": 1,
						"market_range": {"low": 348, "mid": 396, "high": 467},
						"fair_market_value": 396, "price_signal": "At market"},
					"intelligence": {"score10": 9.0, "risk_flags": [],
						"inputs": {}}
				}
			},
			"request_id": "req-1"
		}`))
	}))
	t.Cleanup(srv.Close)

	out, err := New(srv.URL).ScoreListing(context.Background(), ScoreRequest{
		Category:  "Suspension",
		Condition: "New",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Record)
	assert.Equal(t, "score_1", string(out.Record.ID))
	assert.Equal(t, 9.0, out.Record.Score10)
	assert.Equal(t, 396, out.Result.Valuation.MarketRange.Mid)
}

func TestGetScore_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success": false, "error": {"code": "LST_005", "message": "score not found"}}`))
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL).GetScore(context.Background(), "score_missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "LST_005", apiErr.Code)
}

func TestListScores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"success": true, "data": [
			{"id": "score_1", "score10": 9.0},
			{"id": "score_2", "score10": 4.8}
		]}`))
	}))
	t.Cleanup(srv.Close)

	records, err := New(srv.URL).ListScores(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 4.8, records[1].Score10)
}

func TestDefaultBaseURL(t *testing.T) {
	c := New("")
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}

func TestLatestScoreForURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/scores", r.URL.Path)
		assert.Equal(t, "https://www.ebay.com/itm/88", r.URL.Query().Get("url"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"data": [{"id": "score_9", "listing_url": "https://www.ebay.com/itm/88",
				"category": "Engine", "condition": "Used",
				"fmv_low": 528, "fmv_mid": 600, "fmv_high": 708,
				"price_signal": "At market", "score10": 6.8,
				"risk_flags": [], "created_at": "2026-06-01T00:00:00Z"}]
		}`))
	}))
	t.Cleanup(srv.Close)

	rec, err := New(srv.URL).LatestScoreForURL(context.Background(), "https://www.ebay.com/itm/88")
	require.NoError(t, err)
	assert.Equal(t, "score_9", string(rec.ID))
	assert.Equal(t, 6.8, rec.Score10)
}

func TestLatestScoreForURL_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "data": []}`))
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL).LatestScoreForURL(context.Background(), "https://www.ebay.com/itm/never")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
}
