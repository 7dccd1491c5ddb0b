package finance

import (
	"errors"
	"fmt"
	"math"
)

// DefaultAnnualRate is the fixed product rate for marketplace financing.
const DefaultAnnualRate = 0.10

// AllowedTerms lists the financing terms offered, in years, ascending.
var AllowedTerms = []int{3, 4, 5, 6}

// ErrInvalidInput reports numeric input outside the product contract.
var ErrInvalidInput = errors.New("invalid financing input")

// Quote is the result of one financing computation. Monetary fields are
// rounded to cents; the underlying math runs at full float precision.
type Quote struct {
	Price          float64 `json:"price"`
	DownPayment    float64 `json:"down_payment"`
	TermYears      int     `json:"term_years"`
	AnnualRate     float64 `json:"annual_rate"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPaid      float64 `json:"total_paid"`
	TotalInterest  float64 `json:"total_interest"`
}

// Engine computes amortized financing quotes at a fixed nominal annual rate.
type Engine struct {
	annualRate float64
}

func NewEngine(annualRate float64) *Engine {
	if annualRate <= 0 {
		annualRate = DefaultAnnualRate
	}
	return &Engine{annualRate: annualRate}
}

func (e *Engine) AnnualRate() float64 { return e.annualRate }

func termAllowed(years int) bool {
	for _, t := range AllowedTerms {
		if t == years {
			return true
		}
	}
	return false
}

// MonthlyPayment computes a fixed-rate amortization quote.
func (e *Engine) MonthlyPayment(price, downPayment float64, termYears int) (Quote, error) {
	switch {
	case price <= 0:
		return Quote{}, fmt.Errorf("%w: price must be greater than zero, got %.2f", ErrInvalidInput, price)
	case downPayment < 0:
		return Quote{}, fmt.Errorf("%w: down payment must not be negative, got %.2f", ErrInvalidInput, downPayment)
	case downPayment > price:
		return Quote{}, fmt.Errorf("%w: down payment %.2f exceeds price %.2f", ErrInvalidInput, downPayment, price)
	case !termAllowed(termYears):
		return Quote{}, fmt.Errorf("%w: term %d years not offered, allowed terms are %v", ErrInvalidInput, termYears, AllowedTerms)
	}

	principal := price - downPayment
	months := termYears * 12
	monthlyRate := e.annualRate / 12

	var monthly float64
	if principal > 0 {
		monthly = principal * monthlyRate / (1 - math.Pow(1+monthlyRate, -float64(months)))
	}
	total := monthly * float64(months)

	return Quote{
		Price:          price,
		DownPayment:    downPayment,
		TermYears:      termYears,
		AnnualRate:     e.annualRate,
		MonthlyPayment: roundCents(monthly),
		TotalPaid:      roundCents(total),
		TotalInterest:  roundCents(total - principal),
	}, nil
}

// CompareTerms quotes every offered term for the same price and down
// payment, ascending by term length.
func (e *Engine) CompareTerms(price, downPayment float64) ([]Quote, error) {
	quotes := make([]Quote, 0, len(AllowedTerms))
	for _, years := range AllowedTerms {
		q, err := e.MonthlyPayment(price, downPayment, years)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// MaxPriceForBudget inverts the amortization formula: given the monthly
// payment a buyer can afford and the fraction they put down, it returns the
// highest vehicle price they can finance. Feeding the result back through
// MonthlyPayment reproduces the input payment within rounding tolerance.
func (e *Engine) MaxPriceForBudget(monthlyPayment, downPaymentPct float64, termYears int) (float64, error) {
	switch {
	case monthlyPayment <= 0:
		return 0, fmt.Errorf("%w: monthly payment must be greater than zero, got %.2f", ErrInvalidInput, monthlyPayment)
	case downPaymentPct < 0 || downPaymentPct >= 1:
		return 0, fmt.Errorf("%w: down payment fraction must be in [0,1), got %.2f", ErrInvalidInput, downPaymentPct)
	case !termAllowed(termYears):
		return 0, fmt.Errorf("%w: term %d years not offered, allowed terms are %v", ErrInvalidInput, termYears, AllowedTerms)
	}

	months := termYears * 12
	monthlyRate := e.annualRate / 12
	principal := monthlyPayment * (1 - math.Pow(1+monthlyRate, -float64(months))) / monthlyRate
	return principal / (1 - downPaymentPct), nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
