package metadata

import "strings"

// marketplaceHosts are the secondhand platforms whose listing pages this
// fetcher understands.  A listing hosted anywhere else still gets fetched
// and parsed, but scores without the marketplace availability uplift and
// carries the unrecognized-platform caution.
var marketplaceHosts = map[string]struct{}{
	"ebay.com":         {},
	"craigslist.org":   {},
	"facebook.com":     {},
	"offerup.com":      {},
	"mercari.com":      {},
	"carparts.com":     {},
	"car-part.com":     {},
	"partsgeek.com":    {},
	"rockauto.com":     {},
	"summitracing.com": {},
}

// KnownMarketplace reports whether host belongs to a recognized
// marketplace, matching the registrable domain so regional subdomains
// such as austin.craigslist.org qualify.
func KnownMarketplace(host string) bool {
	host = strings.ToLower(host)
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	for candidate := host; candidate != ""; {
		if _, ok := marketplaceHosts[candidate]; ok {
			return true
		}
		i := strings.IndexByte(candidate, '.')
		if i < 0 {
			break
		}
		candidate = candidate[i+1:]
	}
	return false
}
