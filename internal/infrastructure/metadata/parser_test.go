package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFixture(t *testing.T, page string) (title, location *string, price *float64) {
	t.Helper()
	title, location, price, err := parsePage(strings.NewReader(page))
	require.NoError(t, err)
	return title, location, price
}

func TestParsePage_StructuredMarkupWins(t *testing.T) {
	page := `<html><head>
		<title>ACME Parts | item 42</title>
		<meta property="og:title" content="Brembo GT brake kit">
		<meta property="og:price:amount" content="1249.99">
		<meta property="og:locality" content="Denver">
	</head><body>Only $99 shipping! Pickup in Boulder, CO 80302</body></html>`

	title, location, price := parseFixture(t, page)
	require.NotNil(t, title)
	assert.Equal(t, "Brembo GT brake kit", *title)
	require.NotNil(t, price)
	assert.Equal(t, 1249.99, *price)
	require.NotNil(t, location)
	assert.Equal(t, "Denver", *location)
}

func TestParsePage_TitleTagFallback(t *testing.T) {
	title, _, _ := parseFixture(t, `<html><head><title> Used OEM alternator </title></head><body></body></html>`)
	require.NotNil(t, title)
	assert.Equal(t, "Used OEM alternator", *title)
}

func TestParsePage_ItempropPrice(t *testing.T) {
	_, _, price := parseFixture(t, `<html><body><span itemprop="price" content="450.00">450</span></body></html>`)
	require.NotNil(t, price)
	assert.Equal(t, 450.0, *price)
}

func TestParsePage_TextPriceFallback(t *testing.T) {
	_, _, price := parseFixture(t, `<html><body><p>Asking $1,250 obo, cash only.</p></body></html>`)
	require.NotNil(t, price)
	assert.Equal(t, 1250.0, *price)
}

func TestParsePage_LocationFromText(t *testing.T) {
	_, location, _ := parseFixture(t, `<html><body><div>Pickup near Round Rock, TX 78664.</div></body></html>`)
	require.NotNil(t, location)
	assert.Equal(t, "Round Rock, TX 78664", *location)
}

func TestParsePage_NothingFound(t *testing.T) {
	title, location, price := parseFixture(t, `<html><body><p>no structured data here</p></body></html>`)
	assert.Nil(t, title)
	assert.Nil(t, location)
	assert.Nil(t, price)
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"1249.99", 1249.99, true},
		{"$1,250", 1250, true},
		{" 85 ", 85, true},
		{"", 0, false},
		{"free", 0, false},
		{"-20", 0, false},
		{"0", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseAmount(tc.raw)
		assert.Equal(t, tc.ok, ok, "raw %q", tc.raw)
		if tc.ok {
			assert.Equal(t, tc.want, got, "raw %q", tc.raw)
		}
	}
}

func TestKnownMarketplace(t *testing.T) {
	known := []string{
		"ebay.com", "www.ebay.com", "austin.craigslist.org",
		"facebook.com:443", "WWW.OFFERUP.COM",
	}
	for _, host := range known {
		assert.True(t, KnownMarketplace(host), host)
	}

	unknown := []string{"example.com", "ebay.com.evil.example", "localhost:8080", ""}
	for _, host := range unknown {
		assert.False(t, KnownMarketplace(host), host)
	}
}
