package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tair/retail-ledger/internal/ledger/domain"
)

func TestTracedStore_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	store := NewTracedStore(seededMemoryStore(1))
	ctx := context.Background()

	require.NoError(t, store.InTx(ctx, func(tx domain.Tx) error { return setQuantity(ctx, tx, 0) }))
	_, err := store.FindStockItem(ctx, "SPARK", "mombasa")
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "repository.InTx", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, "repository.FindStockItem", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
