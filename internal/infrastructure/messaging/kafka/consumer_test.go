package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partscout/partscout/internal/infrastructure/monitoring/logging"
)

func TestHandle_DispatchesValidRequest(t *testing.T) {
	var got RescoreRequest
	c := &Consumer{
		handler: func(_ context.Context, req RescoreRequest) error {
			got = req
			return nil
		},
		logger: logging.NewNopLogger(),
	}

	c.handle(context.Background(), kafka.Message{
		Value: []byte(`{"url":"https://www.ebay.com/itm/9","category":"Brakes","condition":"Used","buyer_zip":"78701"}`),
	})

	require.Equal(t, "https://www.ebay.com/itm/9", got.URL)
	assert.Equal(t, "Brakes", got.Category)
	assert.Equal(t, "Used", got.Condition)
	assert.Equal(t, "78701", got.BuyerZip)
}

func TestHandle_DiscardsBadMessages(t *testing.T) {
	calls := 0
	c := &Consumer{
		handler: func(_ context.Context, _ RescoreRequest) error {
			calls++
			return nil
		},
		logger: logging.NewNopLogger(),
	}

	c.handle(context.Background(), kafka.Message{Value: []byte(`not json`)})
	c.handle(context.Background(), kafka.Message{Value: []byte(`{"category":"Brakes"}`)})

	assert.Zero(t, calls)
}
