package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetsync/internal/order"
)

type fakeAppender struct {
	batches [][]order.Row
	err     error
}

func (f *fakeAppender) AppendAll(ctx context.Context, rows []order.Row) error {
	f.batches = append(f.batches, rows)
	return f.err
}

type fakeLedger struct {
	appended map[string]int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{appended: map[string]int{}}
}

func (f *fakeLedger) Appended(ctx context.Context, id string) (bool, error) {
	_, ok := f.appended[id]
	return ok, nil
}

func (f *fakeLedger) MarkAppended(ctx context.Context, id string, rows int) error {
	f.appended[id] = rows
	return nil
}

func testOrder() order.Order {
	return order.Order{
		People: []order.Person{
			{First: "A", Last: "B", Index: 0},
			{First: "C", Last: "D", Index: 1},
		},
		Total:     100,
		Deposit:   40,
		Timestamp: time.Now().UnixMilli(),
	}
}

func TestProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("splits, appends and records the order", func(t *testing.T) {
		appender := &fakeAppender{}
		ledger := newFakeLedger()
		p := New(appender, ledger)

		require.NoError(t, p.Process(ctx, "order-1", testOrder()))

		require.Len(t, appender.batches, 1)
		assert.Len(t, appender.batches[0], 2)
		assert.Equal(t, 2, ledger.appended["order-1"])
	})

	t.Run("already appended orders are skipped", func(t *testing.T) {
		appender := &fakeAppender{}
		ledger := newFakeLedger()
		ledger.appended["order-1"] = 2
		p := New(appender, ledger)

		require.NoError(t, p.Process(ctx, "order-1", testOrder()))
		assert.Empty(t, appender.batches)
	})

	t.Run("malformed order is rejected before any append", func(t *testing.T) {
		appender := &fakeAppender{}
		ledger := newFakeLedger()
		p := New(appender, ledger)

		o := testOrder()
		o.People[0].Index = 5

		err := p.Process(ctx, "order-1", o)
		assert.ErrorIs(t, err, order.ErrNoPurchaser)
		assert.Empty(t, appender.batches)
		assert.NotContains(t, ledger.appended, "order-1")
	})

	t.Run("append failure leaves the order unrecorded", func(t *testing.T) {
		appendErr := errors.New("backend error")
		appender := &fakeAppender{err: appendErr}
		ledger := newFakeLedger()
		p := New(appender, ledger)

		err := p.Process(ctx, "order-1", testOrder())
		assert.ErrorIs(t, err, appendErr)
		assert.NotContains(t, ledger.appended, "order-1")
	})
}
