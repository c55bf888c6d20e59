// Package brand resolves free-text listing titles to known part brands and
// their reputation records.  Resolution is a pure table scan: lowercase the
// title, walk the table in declaration order, first substring match wins.
// Unmatched (or absent) titles resolve to the default OEM record, so
// resolution can never fail and every category/part-type combination always
// has a reputation.
package brand

import (
	"strings"

	"github.com/partscout/partscout/pkg/types/listing"
)

// Entry pairs a lowercase brand key with its static reputation record.
// Table order is significant: earlier entries shadow later ones when both
// appear in a title (e.g. "oem brembo replacement" matches brembo first
// only if brembo is declared first).
type Entry struct {
	Key        string
	Reputation listing.BrandReputationRecord
}

// DefaultOEM is the fallback reputation returned for unmatched titles.
var DefaultOEM = listing.BrandReputationRecord{
	BrandKey:        "oem",
	Score5:          4.8,
	VerifiedSignals: 3200,
}

// DefaultTable returns the built-in brand reputation table.  Keys are
// lowercase substrings matched against the lowercased title.
func DefaultTable() []Entry {
	return []Entry{
		{"brembo", listing.BrandReputationRecord{BrandKey: "brembo", Score5: 4.9, VerifiedSignals: 5400}},
		{"bilstein", listing.BrandReputationRecord{BrandKey: "bilstein", Score5: 4.8, VerifiedSignals: 4100}},
		{"ohlins", listing.BrandReputationRecord{BrandKey: "ohlins", Score5: 4.9, VerifiedSignals: 1900}},
		{"kw suspension", listing.BrandReputationRecord{BrandKey: "kw", Score5: 4.7, VerifiedSignals: 1450}},
		{"eibach", listing.BrandReputationRecord{BrandKey: "eibach", Score5: 4.6, VerifiedSignals: 2800}},
		{"garrett", listing.BrandReputationRecord{BrandKey: "garrett", Score5: 4.7, VerifiedSignals: 2300}},
		{"hks", listing.BrandReputationRecord{BrandKey: "hks", Score5: 4.5, VerifiedSignals: 1700}},
		{"greddy", listing.BrandReputationRecord{BrandKey: "greddy", Score5: 4.4, VerifiedSignals: 1300}},
		{"akrapovic", listing.BrandReputationRecord{BrandKey: "akrapovic", Score5: 4.9, VerifiedSignals: 2100}},
		{"borla", listing.BrandReputationRecord{BrandKey: "borla", Score5: 4.6, VerifiedSignals: 2600}},
		{"magnaflow", listing.BrandReputationRecord{BrandKey: "magnaflow", Score5: 4.5, VerifiedSignals: 2900}},
		{"bosch", listing.BrandReputationRecord{BrandKey: "bosch", Score5: 4.7, VerifiedSignals: 8900}},
		{"denso", listing.BrandReputationRecord{BrandKey: "denso", Score5: 4.7, VerifiedSignals: 6100}},
		{"ngk", listing.BrandReputationRecord{BrandKey: "ngk", Score5: 4.8, VerifiedSignals: 7400}},
		{"kyb", listing.BrandReputationRecord{BrandKey: "kyb", Score5: 4.4, VerifiedSignals: 3300}},
		{"monroe", listing.BrandReputationRecord{BrandKey: "monroe", Score5: 4.3, VerifiedSignals: 3100}},
		{"moog", listing.BrandReputationRecord{BrandKey: "moog", Score5: 4.5, VerifiedSignals: 4000}},
		{"skf", listing.BrandReputationRecord{BrandKey: "skf", Score5: 4.6, VerifiedSignals: 2500}},
		{"bbs", listing.BrandReputationRecord{BrandKey: "bbs", Score5: 4.8, VerifiedSignals: 1800}},
		{"enkei", listing.BrandReputationRecord{BrandKey: "enkei", Score5: 4.6, VerifiedSignals: 1600}},
		{"rays", listing.BrandReputationRecord{BrandKey: "rays", Score5: 4.7, VerifiedSignals: 950}},
		{"oz racing", listing.BrandReputationRecord{BrandKey: "oz racing", Score5: 4.7, VerifiedSignals: 1100}},
		{"michelin", listing.BrandReputationRecord{BrandKey: "michelin", Score5: 4.8, VerifiedSignals: 9800}},
		{"bridgestone", listing.BrandReputationRecord{BrandKey: "bridgestone", Score5: 4.6, VerifiedSignals: 8200}},
		{"pirelli", listing.BrandReputationRecord{BrandKey: "pirelli", Score5: 4.6, VerifiedSignals: 5600}},
		{"continental", listing.BrandReputationRecord{BrandKey: "continental", Score5: 4.5, VerifiedSignals: 6700}},
		{"alpine", listing.BrandReputationRecord{BrandKey: "alpine", Score5: 4.5, VerifiedSignals: 2200}},
		{"pioneer", listing.BrandReputationRecord{BrandKey: "pioneer", Score5: 4.4, VerifiedSignals: 3500}},
		{"kenwood", listing.BrandReputationRecord{BrandKey: "kenwood", Score5: 4.3, VerifiedSignals: 2700}},
		{"jl audio", listing.BrandReputationRecord{BrandKey: "jl audio", Score5: 4.7, VerifiedSignals: 1500}},
		{"mishimoto", listing.BrandReputationRecord{BrandKey: "mishimoto", Score5: 4.5, VerifiedSignals: 1950}},
		{"aem", listing.BrandReputationRecord{BrandKey: "aem", Score5: 4.4, VerifiedSignals: 1250}},
		{"k&n", listing.BrandReputationRecord{BrandKey: "k&n", Score5: 4.5, VerifiedSignals: 4300}},
		{"tein", listing.BrandReputationRecord{BrandKey: "tein", Score5: 4.4, VerifiedSignals: 980}},
		{"stoptech", listing.BrandReputationRecord{BrandKey: "stoptech", Score5: 4.6, VerifiedSignals: 1350}},
		{"hawk", listing.BrandReputationRecord{BrandKey: "hawk", Score5: 4.5, VerifiedSignals: 1700}},
		{"ebc", listing.BrandReputationRecord{BrandKey: "ebc", Score5: 4.3, VerifiedSignals: 2100}},
		{"walker", listing.BrandReputationRecord{BrandKey: "walker", Score5: 4.2, VerifiedSignals: 1850}},
		{"flowmaster", listing.BrandReputationRecord{BrandKey: "flowmaster", Score5: 4.4, VerifiedSignals: 2400}},
		{"unbranded", listing.BrandReputationRecord{BrandKey: "unbranded", Score5: 3.6, VerifiedSignals: 120}},
	}
}

// Resolver maps titles to reputation records.  The table is fixed at
// construction; Resolver is safe for concurrent use.
type Resolver struct {
	entries  []Entry
	fallback listing.BrandReputationRecord
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTable replaces the built-in table.  Order is preserved.
func WithTable(entries []Entry) Option {
	return func(r *Resolver) { r.entries = entries }
}

// WithFallback replaces the default OEM fallback record.
func WithFallback(rec listing.BrandReputationRecord) Option {
	return func(r *Resolver) { r.fallback = rec }
}

// NewResolver constructs a Resolver with the built-in table and OEM
// fallback unless overridden.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		entries:  DefaultTable(),
		fallback: DefaultOEM,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the reputation record for the first brand key contained
// in title, or the fallback when no key matches or the title is empty.
// Resolve never returns a zero record.
func (r *Resolver) Resolve(title string) listing.BrandReputationRecord {
	if title == "" {
		return r.fallback
	}
	lowered := strings.ToLower(title)
	for _, e := range r.entries {
		if strings.Contains(lowered, e.Key) {
			return e.Reputation
		}
	}
	return r.fallback
}
