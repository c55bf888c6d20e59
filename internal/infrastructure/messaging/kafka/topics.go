// Package kafka carries scoring events between the API server and the
// background re-scoring worker.
package kafka

// Topic names.
const (
	// TopicListingScored carries one event per completed scoring run.
	TopicListingScored = "partscout.listing.scored"

	// TopicRescoreRequests carries requests to re-score a listing URL,
	// consumed by the background worker.
	TopicRescoreRequests = "partscout.listing.rescore"
)

// RescoreRequest asks the worker to re-run scoring for a listing URL.
type RescoreRequest struct {
	URL       string `json:"url"`
	Category  string `json:"category"`
	Condition string `json:"condition"`
	BuyerZip  string `json:"buyer_zip,omitempty"`
}
