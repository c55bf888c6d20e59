package signals

import (
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash32_MatchesReferenceFNV1a(t *testing.T) {
	for _, key := range []string{
		"",
		"a",
		"https://www.ebay.com/itm/1234567890",
		"Brembo GT brake kit, brand new in box",
	} {
		ref := fnv.New32a()
		_, err := ref.Write([]byte(key))
		require.NoError(t, err)
		assert.Equal(t, ref.Sum32(), hash32(key), "key %q", key)
	}
}

func TestDerive_Deterministic(t *testing.T) {
	sim := NewSimulator()
	key := "https://craigslist.org/parts/7712345678.html"

	first := sim.Derive(key)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, sim.Derive(key))
	}

	// A different simulator instance must agree too.
	assert.Equal(t, first, NewSimulator().Derive(key))
}

func TestDerive_ValuesStayInRange(t *testing.T) {
	sim := NewSimulator()
	keys := []string{
		"", "x", "oem alternator", "used turbo 80k miles",
		"https://www.facebook.com/marketplace/item/1",
		"https://www.facebook.com/marketplace/item/2",
		"https://www.facebook.com/marketplace/item/3",
	}
	for _, key := range keys {
		sig := sim.Derive(key)
		assert.GreaterOrEqual(t, sig.DistanceMiles, 20.0, "key %q", key)
		assert.LessOrEqual(t, sig.DistanceMiles, 199.0, "key %q", key)
		assert.GreaterOrEqual(t, sig.TenureMonths, 3.0, "key %q", key)
		assert.LessOrEqual(t, sig.TenureMonths, 86.0, "key %q", key)
		assert.GreaterOrEqual(t, sig.SellerRating, 3.5, "key %q", key)
		assert.LessOrEqual(t, sig.SellerRating, 4.9, "key %q", key)
	}
}

func TestDerive_DifferentKeysSpread(t *testing.T) {
	sim := NewSimulator()
	a := sim.Derive("https://example.com/listing/a")
	b := sim.Derive("https://example.com/listing/b")
	assert.NotEqual(t, a, b)
}
