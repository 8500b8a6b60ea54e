package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/younegotiate/negotiate-api/internal/models"
	"github.com/younegotiate/negotiate-api/internal/repository"
)

// OfferTerms are the creditor's standing terms computed for one account
type OfferTerms struct {
	ConsumerID              uint      `json:"consumer_id"`
	CurrentBalance          float64   `json:"current_balance"`
	SettlementBalance       float64   `json:"settlement_balance"`
	SettlementDiscount      float64   `json:"settlement_discount"`
	PayableNegotiatedAmount float64   `json:"payable_negotiated_amount"`
	PlanDiscount            float64   `json:"plan_discount"`
	MinMonthlyAmount        float64   `json:"min_monthly_amount"`
	MaxFirstPayDate         time.Time `json:"max_first_pay_date"`
}

// OfferService computes standing offer terms from an account's balance and
// its effective discount percentages.
type OfferService struct {
	consumerRepo repository.ConsumerRepository
}

func NewOfferService(consumerRepo repository.ConsumerRepository) *OfferService {
	return &OfferService{consumerRepo: consumerRepo}
}

// TermsForConsumer loads the account with its term hierarchy and computes
// the standing offer.
func (s *OfferService) TermsForConsumer(ctx context.Context, consumerID uint) (*OfferTerms, error) {
	consumer, err := s.consumerRepo.FindByIDWithDetails(ctx, consumerID)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.Terms(consumer), nil
}

// Terms computes the standing offer for an already loaded account. All money
// math runs on decimals and rounds half-up to cents only at the edges.
func (s *OfferService) Terms(consumer *models.Consumer) *OfferTerms {
	balance := decimal.NewFromFloat(consumer.CurrentBalance)
	hundred := decimal.NewFromInt(100)

	pifPct := decimal.NewFromFloat(consumer.EffectivePifDiscountPercent())
	planPct := decimal.NewFromFloat(consumer.EffectivePaySetupDiscountPercent())
	minMonthlyDivisor := decimal.NewFromFloat(consumer.EffectiveMinMonthlyPayPercent())

	settlementDiscount := balance.Mul(pifPct).Div(hundred).Round(2)
	settlement := balance.Sub(settlementDiscount)

	planDiscount := balance.Mul(planPct).Div(hundred).Round(2)
	negotiated := balance.Sub(planDiscount)

	// The minimum monthly percent acts as a divisor: a value of 10 means the
	// negotiated amount may be spread across at most 10 installments.
	minMonthly := negotiated
	if minMonthlyDivisor.IsPositive() {
		minMonthly = negotiated.Div(minMonthlyDivisor).Round(2)
	}

	maxFirstPay := time.Now().AddDate(0, 0, consumer.EffectiveMaxDaysFirstPay())

	sf, _ := settlement.Float64()
	sd, _ := settlementDiscount.Float64()
	nf, _ := negotiated.Float64()
	pd, _ := planDiscount.Float64()
	mm, _ := minMonthly.Float64()

	return &OfferTerms{
		ConsumerID:              consumer.ID,
		CurrentBalance:          consumer.CurrentBalance,
		SettlementBalance:       sf,
		SettlementDiscount:      sd,
		PayableNegotiatedAmount: nf,
		PlanDiscount:            pd,
		MinMonthlyAmount:        mm,
		MaxFirstPayDate:         maxFirstPay,
	}
}

// MeetsSettlementThreshold reports whether a lump-sum offer clears the
// creditor's settlement floor and auto-approves.
func (s *OfferService) MeetsSettlementThreshold(consumer *models.Consumer, offered float64) bool {
	terms := s.Terms(consumer)
	return decimal.NewFromFloat(offered).
		GreaterThanOrEqual(decimal.NewFromFloat(terms.SettlementBalance))
}

// MeetsMonthlyThreshold reports whether a proposed installment amount clears
// the creditor's minimum monthly floor and auto-approves.
func (s *OfferService) MeetsMonthlyThreshold(consumer *models.Consumer, monthly float64) bool {
	terms := s.Terms(consumer)
	return decimal.NewFromFloat(monthly).
		GreaterThanOrEqual(decimal.NewFromFloat(terms.MinMonthlyAmount))
}
