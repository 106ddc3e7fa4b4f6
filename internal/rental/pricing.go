package rental

import "time"

// Tier identifies which price point a quote was computed from.
type Tier string

const (
	Tier4h  Tier = "4h"
	Tier8h  Tier = "8h"
	TierDay Tier = "day"
)

// PriceTable holds a car's six price points.
type PriceTable struct {
	Price4h               float64
	Price8h               float64
	PricePerDay           float64
	Price4hWithDriver     float64
	Price8hWithDriver     float64
	PricePerDayWithDriver float64
}

type Quote struct {
	Hours      float64 `json:"hours"`
	Tier       Tier    `json:"tier"`
	WithDriver bool    `json:"with_driver"`
	Fee        float64 `json:"fee"`
	Deposit    float64 `json:"deposit"`
}

func (p PriceTable) rates(withDriver bool) (h4, h8, day float64) {
	if withDriver {
		return p.Price4hWithDriver, p.Price8hWithDriver, p.PricePerDayWithDriver
	}
	return p.Price4h, p.Price8h, p.PricePerDay
}

// RentalFee returns the fee for the given range. Hours are not rounded; past
// eight hours the daily rate is prorated per hour. A non-positive duration
// yields 0 and ErrInvalidRange.
func RentalFee(prices PriceTable, pickup, ret time.Time, withDriver bool) (float64, Tier, error) {
	hours := ret.Sub(pickup).Hours()
	if hours <= 0 {
		return 0, "", ErrInvalidRange
	}

	h4, h8, day := prices.rates(withDriver)
	switch {
	case hours <= 4:
		return h4, Tier4h, nil
	case hours <= 8:
		return h8, Tier8h, nil
	default:
		return day / 24 * hours, TierDay, nil
	}
}

// Calculator adds the deposit rule on top of RentalFee.
type Calculator struct {
	DepositPercent float64
}

func (c Calculator) Quote(prices PriceTable, pickup, ret time.Time, withDriver bool) (Quote, error) {
	fee, tier, err := RentalFee(prices, pickup, ret, withDriver)
	q := Quote{
		Hours:      ret.Sub(pickup).Hours(),
		Tier:       tier,
		WithDriver: withDriver,
		Fee:        fee,
	}
	if err != nil {
		q.Hours = 0
		return q, err
	}
	q.Deposit = c.Deposit(fee)
	return q, nil
}

func (c Calculator) Deposit(fee float64) float64 {
	if c.DepositPercent <= 0 || fee <= 0 {
		return 0
	}
	return fee * c.DepositPercent / 100
}

// Total is the amount owed once fees are known.
func Total(subTotal, discount, extraFee, damageFee float64) float64 {
	t := subTotal - discount + extraFee + damageFee
	if t < 0 {
		return 0
	}
	return t
}
