package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRestore(t *testing.T) {
	o := newOpenOrder(t)
	require.NoError(t, o.AddItem(p1, 2, price("45.50")))
	require.NoError(t, o.AddItem(p2, 1, price("20.00")))
	require.NoError(t, o.Finalize())

	snap := o.Snapshot()
	assert.Equal(t, "111.00", Money(snap.Total()))

	back, err := Restore(snap)
	require.NoError(t, err)
	assert.Equal(t, o.ID(), back.ID())
	assert.Equal(t, o.Status(), back.Status())
	assert.Equal(t, o.Items(), back.Items())
	assert.True(t, o.TotalValue().Equal(back.TotalValue()))
	assert.Equal(t, snap, back.Snapshot())
}

func TestSnapshot_SubCentPricesSurviveTextRoundTrip(t *testing.T) {
	o := newOpenOrder(t)
	require.NoError(t, o.AddItem(p1, 3, price("10.555")))
	require.NoError(t, o.AddItem(p2, 1, price("0.004")))

	snap := o.Snapshot()
	for i, it := range snap.Items {
		// the pgx store writes money as text and reads it back the same way
		var err error
		snap.Items[i].SalePrice, err = decimal.NewFromString(it.SalePrice.String())
		require.NoError(t, err)
	}
	back, err := Restore(snap)
	require.NoError(t, err)
	assert.Equal(t, "31.669", back.TotalValue().String())
	assert.True(t, o.TotalValue().Equal(back.TotalValue()))
}

func TestRestore_RejectsBrokenSnapshots(t *testing.T) {
	valid := func() Snapshot {
		o := newOpenOrder(t)
		require.NoError(t, o.AddItem(p1, 1, price("50.00")))
		return o.Snapshot()
	}

	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"missing id", func(s *Snapshot) { s.ID = "" }},
		{"bad pair", func(s *Snapshot) { s.PaymentStatus = PaymentApproved }},
		{"unknown status", func(s *Snapshot) { s.Status = "SHIPPED" }},
		{"zero quantity", func(s *Snapshot) { s.Items[0].Quantity = 0 }},
		{"duplicate product", func(s *Snapshot) { s.Items = append(s.Items, s.Items[0]) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			_, err := Restore(s)
			assert.ErrorIs(t, err, ErrInvalidOrderData)
		})
	}
}

func TestStatusChangedPayload(t *testing.T) {
	o := newOpenOrder(t)
	require.NoError(t, o.AddItem(p1, 3, price("50")))
	require.NoError(t, o.Finalize())

	p := StatusChanged(o.Snapshot(), StatusOpen)
	assert.Equal(t, StatusOpen, p.PreviousStatus)
	assert.Equal(t, StatusWaitingPayment, p.Status)
	assert.Equal(t, "150.00", p.TotalValue)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "50.00", p.Items[0].SalePrice)
	assert.Equal(t, "150.00", p.Items[0].Subtotal)
}
