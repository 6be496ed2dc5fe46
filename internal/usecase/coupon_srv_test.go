package usecase

import (
	"context"
	"testing"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/internal/dto/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponDiscount(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	maxDiscount := 150.0
	limit := 2

	base := func() *entity.Coupon {
		return &entity.Coupon{
			Code:          "SPRING",
			DiscountType:  entity.DiscountPercentage,
			DiscountValue: 20,
			ValidFrom:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			ValidUntil:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			IsActive:      true,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *entity.Coupon)
		amount  float64
		want    float64
		wantErr string
	}{
		{name: "percentage", amount: 500, want: 100},
		{name: "last valid day counts", amount: 100, want: 20},
		{name: "capped by max discount", mutate: func(c *entity.Coupon) { c.MaxDiscount = &maxDiscount }, amount: 1000, want: 150},
		{name: "flat never exceeds amount", mutate: func(c *entity.Coupon) {
			c.DiscountType = entity.DiscountFlat
			c.DiscountValue = 300
		}, amount: 200, want: 200},
		{name: "inactive", mutate: func(c *entity.Coupon) { c.IsActive = false }, amount: 500, wantErr: "inactive"},
		{name: "not started", mutate: func(c *entity.Coupon) { c.ValidFrom = today.AddDate(0, 0, 1) }, amount: 500, wantErr: "not valid until"},
		{name: "expired", mutate: func(c *entity.Coupon) { c.ValidUntil = today.AddDate(0, 0, -1) }, amount: 500, wantErr: "expired"},
		{name: "exhausted", mutate: func(c *entity.Coupon) {
			c.UsageLimit = &limit
			c.UsedCount = 2
		}, amount: 500, wantErr: "usage limit"},
		{name: "below minimum", mutate: func(c *entity.Coupon) { c.MinAmount = 1000 }, amount: 500, wantErr: "below minimum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			if tt.mutate != nil {
				tt.mutate(c)
			}

			got, err := couponDiscount(c, tt.amount, today)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid coupon")
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateCoupon(t *testing.T) {
	f := newFixture()
	f.addCoupon(&entity.Coupon{
		Code:          "FLAT100",
		DiscountType:  entity.DiscountFlat,
		DiscountValue: 100,
		ValidFrom:     time.Now().AddDate(0, 0, -1),
		ValidUntil:    time.Now().AddDate(0, 0, 1),
		IsActive:      true,
	})
	svc := NewCouponService(f.coupons, f.auditService(), f.log)

	resp, err := svc.Validate(context.Background(), &request.ValidateCouponRequest{Code: " flat100 ", Amount: 1000})
	require.NoError(t, err)
	assert.Equal(t, "FLAT100", resp.Code)
	assert.Equal(t, 100.0, resp.Discount)
	assert.Equal(t, 900.0, resp.FinalAmount)

	_, err = svc.Validate(context.Background(), &request.ValidateCouponRequest{Code: "NOPE", Amount: 1000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
