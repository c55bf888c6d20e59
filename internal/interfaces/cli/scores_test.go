package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partscout/partscout/pkg/types/listing"
)

func scoresFixture() []*listing.ScoreRecord {
	created := time.Date(2026, 5, 20, 15, 4, 0, 0, time.UTC)
	return []*listing.ScoreRecord{
		{
			ID:          "score_b2",
			Title:       "Brembo GT big brake kit",
			Category:    listing.CategoryBrakes,
			Condition:   listing.ConditionNew,
			FMVLow:      1930,
			FMVMid:      2194,
			FMVHigh:     2589,
			PriceSignal: listing.PriceUnderMarket,
			Score10:     7.1,
			RiskFlags:   []string{"Priced under market: verify authenticity and condition before paying."},
			CreatedAt:   created,
		},
		{
			ID:          "score_a1",
			Title:       "Bilstein B8 front shocks",
			Category:    listing.CategorySuspension,
			Condition:   listing.ConditionNew,
			FMVLow:      317,
			FMVMid:      360,
			FMVHigh:     425,
			PriceSignal: listing.PriceAtMarket,
			Score10:     8.7,
			CreatedAt:   created.Add(-time.Hour),
		},
	}
}

func TestScoresGet_Remote(t *testing.T) {
	rec := scoresFixture()[1]

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": rec})
	}))
	defer srv.Close()

	out, err := runCLI(t, "scores", "get", "score_a1", "--server", srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/scores/score_a1", gotPath)
	assert.Contains(t, out, "score_a1")
	assert.Contains(t, out, "Bilstein B8 front shocks")
	assert.Contains(t, out, "Price signal: At market")
}

func TestScoresGet_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   map[string]string{"code": "LST_005", "message": "score not found"},
		})
	}))
	defer srv.Close()

	_, err := runCLI(t, "scores", "get", "score_missing", "--server", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "score not found")
}

func TestScoresList_Remote(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": scoresFixture()})
	}))
	defer srv.Close()

	out, err := runCLI(t, "scores", "list", "--limit", "5", "--server", srv.URL)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "limit=5")
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "score_b2")
	assert.Contains(t, out, "score_a1")
	assert.Contains(t, out, "Under market")
	assert.Contains(t, out, "$2194")
}

func TestScoresList_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": []interface{}{}})
	}))
	defer srv.Close()

	out, err := runCLI(t, "scores", "list", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "No scores recorded.")
}

func TestScores_RequireServer(t *testing.T) {
	_, err := runCLI(t, "scores", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--server")

	_, err = runCLI(t, "scores", "get", "score_a1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--server")
}
