package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"confirmed", StatusConfirmed},
		{"  SHIPPED ", StatusShipped},
		{"out for delivery", StatusOutForDelivery},
		{"Return-Requested", StatusReturnRequested},
		{"refunded", StatusRefunded},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseStatus("PAID")
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)
	_, err = ParseStatus("")
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)
}

func TestNewOrder(t *testing.T) {
	o, err := NewOrder("BR1", 7, []Item{
		{BookID: 1, Price: 1250, Quantity: 2},
		{BookID: 2, Price: 999, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.Status)
	assert.Equal(t, int64(3499), o.Total)
	assert.True(t, o.IsOwnedBy(7))
	assert.False(t, o.IsOwnedBy(8))

	_, err = NewOrder("BR2", 7, nil)
	assert.ErrorIs(t, err, ErrInvalidOrderItems)

	_, err = NewOrder("BR3", 7, []Item{{BookID: 1, Price: 100, Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestOrder_TransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr error
	}{
		{"确认后取消", StatusConfirmed, StatusCancelled, nil},
		{"确认到发货", StatusConfirmed, StatusShipped, nil},
		{"管理员回退", StatusDelivered, StatusProcessing, nil},
		{"发货后不能取消", StatusShipped, StatusCancelled, ErrOrderNotCancellable},
		{"待处理不能取消", StatusPending, StatusCancelled, ErrOrderNotCancellable},
		{"重复取消", StatusCancelled, StatusCancelled, ErrOrderNotCancellable},
		{"取消是终态", StatusCancelled, StatusConfirmed, ErrInvalidStatusTransition},
		{"相同状态", StatusShipped, StatusShipped, ErrInvalidStatusTransition},
		{"未知状态", StatusConfirmed, Status("PAID"), ErrInvalidOrderStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.from}
			prev, err := o.TransitionTo(tt.to)
			assert.Equal(t, tt.from, prev)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, o.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, o.Status)
		})
	}
}

func TestRestoresStock(t *testing.T) {
	assert.True(t, RestoresStock(StatusConfirmed, StatusCancelled))
	assert.False(t, RestoresStock(StatusShipped, StatusCancelled))
	assert.False(t, RestoresStock(StatusConfirmed, StatusShipped))
}

func TestGenerateOrderNo(t *testing.T) {
	no := GenerateOrderNo()
	assert.Len(t, no, 2+14+6)
	assert.Equal(t, "BR", no[:2])
}
