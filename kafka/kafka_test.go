package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/retail-ledger/internal/ledger/domain"
)

func testSale() domain.SaleRecord {
	return domain.SaleRecord{
		TransactionID:  "TXN-1",
		ReceiptNumber:  "RCP-1",
		ItemCode:       "IP13",
		Location:       "downtown",
		Quantity:       2,
		FinalSalePrice: decimal.NewFromInt(1800),
		PaymentMethod:  "cash",
		Customer:       domain.Customer{Name: "Ama"},
		ActorName:      "Kofi",
	}
}

func TestPublisherSaleCompleted(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event SaleCompletedEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.EventType != EventTypeSaleCompleted || event.ReceiptNumber != "RCP-1" {
			return errors.New("unexpected event payload")
		}
		if !event.FinalSalePrice.Equal(decimal.NewFromInt(1800)) {
			return errors.New("unexpected price")
		}
		return nil
	})

	pub := NewPublisherWithProducer(producer, "")
	require.NoError(t, pub.SaleCompleted(context.Background(), testSale()))
	require.NoError(t, pub.Close())
}

func TestPublisherReportsSendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewPublisherWithProducer(producer, TopicSaleCompleted)
	err := pub.SaleCompleted(context.Background(), testSale())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

func TestConsumerDispatchesByEventType(t *testing.T) {
	c := &Consumer{handlers: make(map[string]EventHandler)}

	var got []SaleCompletedEvent
	c.RegisterHandler(EventTypeSaleCompleted, func(ctx context.Context, event SaleCompletedEvent) error {
		got = append(got, event)
		return nil
	})

	payload, err := json.Marshal(NewSaleCompletedEvent(testSale()))
	require.NoError(t, err)

	c.HandleMessage(context.Background(), &sarama.ConsumerMessage{
		Topic: TopicSaleCompleted,
		Value: payload,
		Headers: []*sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventTypeSaleCompleted)},
		},
	})
	// no event type, skipped
	c.HandleMessage(context.Background(), &sarama.ConsumerMessage{Topic: TopicSaleCompleted, Value: payload})
	// garbage body, skipped
	c.HandleMessage(context.Background(), &sarama.ConsumerMessage{
		Topic: TopicSaleCompleted,
		Value: []byte("{"),
		Headers: []*sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventTypeSaleCompleted)},
		},
	})

	require.Len(t, got, 1)
	assert.Equal(t, "TXN-1", got[0].TransactionID)
	assert.Equal(t, "Ama", got[0].CustomerName)
}
