package metadata

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/partscout/partscout/pkg/types/listing"
)

// Price and location patterns used when structured markup is absent.
var (
	priceTextRe = regexp.MustCompile(`(?:US\s?)?\$\s?([0-9]{1,3}(?:,[0-9]{3})*(?:\.[0-9]{2})?)`)
	locationRe  = regexp.MustCompile(`([A-Z][a-z]+(?:[ '-][A-Z][a-z]+)*,\s?[A-Z]{2}(?:\s+\d{5})?)`)
)

// parsePage extracts listing metadata from an HTML document.  Structured
// markup wins over free text: OpenGraph and microdata attributes are
// preferred, then the title tag, then regex scans over the page text.
func parsePage(r io.Reader) (title, location *string, price *float64, err error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, nil, nil, err
	}

	var (
		titleTag    string
		metaTitle   string
		metaPrice   string
		metaPlace   string
		itemPrice   string
		textBuilder strings.Builder
	)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.ElementNode && n.Data == "title":
			if n.FirstChild != nil && titleTag == "" {
				titleTag = n.FirstChild.Data
			}
		case n.Type == html.ElementNode && n.Data == "meta":
			name, content := attr(n, "property"), attr(n, "content")
			if name == "" {
				name = attr(n, "name")
			}
			switch name {
			case "og:title":
				metaTitle = content
			case "og:price:amount", "product:price:amount":
				metaPrice = content
			case "og:locality", "og:region", "geo.placename":
				if metaPlace == "" {
					metaPlace = content
				}
			}
		case n.Type == html.ElementNode && attr(n, "itemprop") == "price":
			if v := attr(n, "content"); v != "" {
				itemPrice = v
			} else if n.FirstChild != nil {
				itemPrice = n.FirstChild.Data
			}
		case n.Type == html.TextNode:
			textBuilder.WriteString(n.Data)
			textBuilder.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	pageText := textBuilder.String()

	title = firstNonEmpty(metaTitle, strings.TrimSpace(titleTag))
	price = parsePrice(metaPrice, itemPrice, pageText)
	location = parseLocation(metaPlace, pageText)
	return title, location, price, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func firstNonEmpty(values ...string) *string {
	for _, v := range values {
		if v != "" {
			return &v
		}
	}
	return nil
}

// parsePrice tries structured price values first, then scans the page
// text for the first dollar amount.
func parsePrice(metaPrice, itemPrice, pageText string) *float64 {
	for _, raw := range []string{metaPrice, itemPrice} {
		if v, ok := parseAmount(raw); ok {
			return &v
		}
	}
	if m := priceTextRe.FindStringSubmatch(pageText); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			return &v
		}
	}
	return nil
}

func parseAmount(raw string) (float64, bool) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	raw = strings.TrimPrefix(raw, "$")
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// parseLocation prefers structured place metadata, falling back to the
// first "City, ST 12345" shaped fragment in the page text.
func parseLocation(metaPlace, pageText string) *string {
	if metaPlace != "" {
		return &metaPlace
	}
	if m := locationRe.FindStringSubmatch(pageText); m != nil {
		loc := strings.TrimSpace(m[1])
		return &loc
	}
	return nil
}

// metadataFrom assembles the final Metadata value.
func metadataFrom(title, location *string, price *float64, platformKnown, fetched bool) listing.Metadata {
	return listing.Metadata{
		Title:         title,
		Price:         price,
		LocationText:  location,
		PlatformKnown: platformKnown,
		Fetched:       fetched,
	}
}
