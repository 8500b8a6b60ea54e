package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/younegotiate/negotiate-api/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestOfferService_Terms(t *testing.T) {
	service := NewOfferService(nil)

	consumer := &models.Consumer{
		ID:             1,
		CurrentBalance: 100.00,
		Company: models.Company{
			ID:                      1,
			PifDiscountPercent:      30,
			PaySetupDiscountPercent: 20,
			MinMonthlyPayPercent:    4,
			MaxDaysFirstPay:         30,
		},
	}

	terms := service.Terms(consumer)

	assert.Equal(t, 70.00, terms.SettlementBalance)
	assert.Equal(t, 30.00, terms.SettlementDiscount)
	assert.Equal(t, 80.00, terms.PayableNegotiatedAmount)
	assert.Equal(t, 20.00, terms.PlanDiscount)
	// MinMonthlyPayPercent acts as a divisor: 80 / 4
	assert.Equal(t, 20.00, terms.MinMonthlyAmount)
}

func TestOfferService_Terms_ConsumerOverridesWin(t *testing.T) {
	service := NewOfferService(nil)

	consumer := &models.Consumer{
		ID:                 2,
		CurrentBalance:     200.00,
		PifDiscountPercent: floatPtr(50),
		Subclient: &models.Subclient{
			PifDiscountPercent: floatPtr(10),
		},
		Company: models.Company{
			PifDiscountPercent: 30,
		},
	}

	terms := service.Terms(consumer)
	assert.Equal(t, 100.00, terms.SettlementBalance)
}

func TestOfferService_Terms_SubclientFallback(t *testing.T) {
	service := NewOfferService(nil)

	consumer := &models.Consumer{
		ID:             3,
		CurrentBalance: 200.00,
		Subclient: &models.Subclient{
			PifDiscountPercent: floatPtr(10),
		},
		Company: models.Company{
			PifDiscountPercent: 30,
		},
	}

	terms := service.Terms(consumer)
	assert.Equal(t, 180.00, terms.SettlementBalance)
}

func TestOfferService_Terms_RoundsToCents(t *testing.T) {
	service := NewOfferService(nil)

	consumer := &models.Consumer{
		ID:             4,
		CurrentBalance: 99.99,
		Company: models.Company{
			PifDiscountPercent: 33.33,
		},
	}

	terms := service.Terms(consumer)
	// 99.99 * 0.3333 = 33.326667 -> 33.33 discount
	assert.Equal(t, 33.33, terms.SettlementDiscount)
	assert.Equal(t, 66.66, terms.SettlementBalance)
}

func TestOfferService_Terms_ZeroMinMonthlyDivisor(t *testing.T) {
	service := NewOfferService(nil)

	consumer := &models.Consumer{
		ID:             5,
		CurrentBalance: 100.00,
		Company: models.Company{
			PaySetupDiscountPercent: 20,
			MinMonthlyPayPercent:    0,
		},
	}

	// Without a divisor the whole negotiated amount is due at once
	terms := service.Terms(consumer)
	assert.Equal(t, 80.00, terms.MinMonthlyAmount)
}

func TestOfferService_MeetsSettlementThreshold(t *testing.T) {
	service := NewOfferService(nil)

	consumer := &models.Consumer{
		CurrentBalance: 100.00,
		Company:        models.Company{PifDiscountPercent: 30},
	}

	assert.True(t, service.MeetsSettlementThreshold(consumer, 70.00), "exact threshold auto-approves")
	assert.True(t, service.MeetsSettlementThreshold(consumer, 85.00))
	assert.False(t, service.MeetsSettlementThreshold(consumer, 69.99))
}

func TestOfferService_MeetsMonthlyThreshold(t *testing.T) {
	service := NewOfferService(nil)

	consumer := &models.Consumer{
		CurrentBalance: 100.00,
		Company: models.Company{
			PaySetupDiscountPercent: 20,
			MinMonthlyPayPercent:    4,
		},
	}

	assert.True(t, service.MeetsMonthlyThreshold(consumer, 20.00), "exact threshold auto-approves")
	assert.False(t, service.MeetsMonthlyThreshold(consumer, 19.99))
}
