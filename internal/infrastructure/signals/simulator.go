// Package signals derives stable fallback telemetry for listings whose
// live seller data is unavailable.  Values come from a 32-bit FNV-1a hash
// of the listing key, so the same listing always simulates the same
// distance, tenure, and rating across processes and restarts.
package signals

import (
	"github.com/partscout/partscout/internal/application/scoring"
)

const (
	fnvOffset32 uint32 = 2166136261
	fnvPrime32  uint32 = 16777619
)

// Simulator is a stateless scoring.SignalProvider backed by FNV-1a.
type Simulator struct{}

// NewSimulator returns a ready-to-use Simulator.
func NewSimulator() *Simulator {
	return &Simulator{}
}

// Derive maps a listing key onto plausible telemetry ranges: pickup
// distance 20-199 miles, seller tenure 3-86 months, seller rating
// 3.5-4.9 stars.
func (s *Simulator) Derive(key string) scoring.Signals {
	h := hash32(key)
	return scoring.Signals{
		DistanceMiles: float64(20 + h%180),
		TenureMonths:  float64(3 + h%84),
		SellerRating:  3.5 + float64(h%15)/10,
	}
}

// hash32 is 32-bit FNV-1a: XOR each byte into the hash, then multiply by
// the FNV prime with natural uint32 wraparound.
func hash32(key string) uint32 {
	h := fnvOffset32
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= fnvPrime32
	}
	return h
}
