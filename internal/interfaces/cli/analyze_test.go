package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partscout/partscout/pkg/types/listing"
)

const analyzeTestPage = `<!DOCTYPE html>
<html>
<head>
<title>Bilstein B8 front shocks</title>
<meta property="og:title" content="Bilstein B8 front shocks" />
<meta property="og:price:amount" content="360" />
</head>
<body><p>Local pickup in Round Rock, TX 78664.</p></body>
</html>`

func TestAnalyzeCommand_RequiresURL(t *testing.T) {
	_, err := runCLI(t, "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url")
}

func TestAnalyzeCommand_LocalFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(analyzeTestPage))
	}))
	defer srv.Close()

	out, err := runCLI(t,
		"analyze",
		"--url", srv.URL+"/itm/9",
		"--category", "suspension",
		"--condition", "new",
		"-o", "json",
	)
	require.NoError(t, err)

	var view outcomeView
	require.NoError(t, json.Unmarshal([]byte(out), &view))

	// The ask price comes from the page markup, so the signal tracks it.
	assert.Equal(t, listing.PriceAtMarket, view.Result.Valuation.PriceSignal)
	require.NotNil(t, view.Record)
	assert.Equal(t, "Bilstein B8 front shocks", view.Record.Title)

	// The test server is not a recognized marketplace, but the fetch itself
	// succeeded.
	flags := view.Result.Intelligence.RiskFlags
	require.NotEmpty(t, flags)
	assert.Contains(t, flags[0], "Unrecognized platform")
	for _, f := range flags {
		assert.NotContains(t, f, "could not be fetched")
	}
}

func TestAnalyzeCommand_RemoteMode(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"result": map[string]interface{}{
					"valuation": map[string]interface{}{
						"market_range": map[string]int{"low": 1100, "mid": 1250, "high": 1475},
						"price_signal": "Under market",
					},
					"intelligence": map[string]interface{}{
						"score10":    6.4,
						"risk_flags": []string{"Priced under market: verify authenticity and condition before paying."},
					},
				},
			},
		})
	}))
	defer srv.Close()

	out, err := runCLI(t,
		"analyze",
		"--server", srv.URL,
		"--url", "https://www.ebay.com/itm/77",
		"--category", "engine",
		"--buyer-zip", "78701",
	)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/listings/analyze", gotPath)
	assert.Equal(t, "https://www.ebay.com/itm/77", gotBody["url"])
	assert.Equal(t, "Engine", gotBody["category"])
	assert.Equal(t, "78701", gotBody["buyer_zip"])

	assert.Contains(t, out, "Price signal: Under market")
	assert.Contains(t, out, "Priced under market")
}
