package finance

import (
	"errors"
	"math"
	"testing"
)

func TestMonthlyPaymentKnownValues(t *testing.T) {
	e := NewEngine(DefaultAnnualRate)

	tests := []struct {
		name        string
		price       float64
		downPayment float64
		termYears   int
		wantMonthly float64
	}{
		{"200k principal over 4 years", 250000, 50000, 4, 5072.52},
		{"224k principal over 5 years", 280000, 56000, 5, 4759.34},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := e.MonthlyPayment(tt.price, tt.downPayment, tt.termYears)
			if err != nil {
				t.Fatalf("MonthlyPayment() error = %v", err)
			}
			if math.Abs(q.MonthlyPayment-tt.wantMonthly) > 5.0 {
				t.Fatalf("MonthlyPayment = %.2f, want ~%.2f", q.MonthlyPayment, tt.wantMonthly)
			}
			if q.MonthlyPayment <= 0 {
				t.Fatalf("MonthlyPayment should be positive, got %.2f", q.MonthlyPayment)
			}
			if q.TotalPaid < tt.price-tt.downPayment {
				t.Fatalf("TotalPaid %.2f below financed principal", q.TotalPaid)
			}

			months := float64(tt.termYears * 12)
			if math.Abs(q.MonthlyPayment*months-q.TotalPaid) > 0.01*months {
				t.Fatalf("TotalPaid %.2f inconsistent with monthly %.2f x %d", q.TotalPaid, q.MonthlyPayment, int(months))
			}
			principal := tt.price - tt.downPayment
			if math.Abs(q.TotalInterest-(q.TotalPaid-principal)) > 0.01 {
				t.Fatalf("TotalInterest %.2f != TotalPaid - principal", q.TotalInterest)
			}
		})
	}
}

func TestMonthlyPaymentFullDownPayment(t *testing.T) {
	e := NewEngine(DefaultAnnualRate)
	q, err := e.MonthlyPayment(150000, 150000, 4)
	if err != nil {
		t.Fatalf("MonthlyPayment() error = %v", err)
	}
	if q.MonthlyPayment != 0 || q.TotalPaid != 0 || q.TotalInterest != 0 {
		t.Fatalf("fully paid vehicle should need no financing: %+v", q)
	}
}

func TestMonthlyPaymentInvalidInput(t *testing.T) {
	e := NewEngine(DefaultAnnualRate)

	tests := []struct {
		name        string
		price       float64
		downPayment float64
		termYears   int
	}{
		{"down payment above price", 50000, 60000, 4},
		{"negative down payment", 250000, -1, 4},
		{"zero price", 0, 0, 4},
		{"term too short", 250000, 50000, 2},
		{"term too long", 250000, 50000, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.MonthlyPayment(tt.price, tt.downPayment, tt.termYears); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCompareTermsOrderingAndInterest(t *testing.T) {
	e := NewEngine(DefaultAnnualRate)
	quotes, err := e.CompareTerms(300000, 60000)
	if err != nil {
		t.Fatalf("CompareTerms() error = %v", err)
	}
	if len(quotes) != len(AllowedTerms) {
		t.Fatalf("got %d quotes, want %d", len(quotes), len(AllowedTerms))
	}
	for i, q := range quotes {
		if q.TermYears != AllowedTerms[i] {
			t.Fatalf("quote %d term = %d, want %d", i, q.TermYears, AllowedTerms[i])
		}
		if i > 0 {
			if q.TotalInterest <= quotes[i-1].TotalInterest {
				t.Fatalf("total interest should grow with term: %d years %.2f vs %d years %.2f",
					q.TermYears, q.TotalInterest, quotes[i-1].TermYears, quotes[i-1].TotalInterest)
			}
			if q.MonthlyPayment >= quotes[i-1].MonthlyPayment {
				t.Fatalf("monthly payment should shrink with term")
			}
		}
	}
}

func TestMaxPriceForBudgetRoundTrip(t *testing.T) {
	e := NewEngine(DefaultAnnualRate)

	tests := []struct {
		monthly   float64
		pct       float64
		termYears int
	}{
		{5000, 0.20, 4},
		{8000, 0.10, 3},
		{3500, 0.30, 6},
		{12000, 0, 5},
	}

	for _, tt := range tests {
		price, err := e.MaxPriceForBudget(tt.monthly, tt.pct, tt.termYears)
		if err != nil {
			t.Fatalf("MaxPriceForBudget(%.2f) error = %v", tt.monthly, err)
		}
		q, err := e.MonthlyPayment(price, price*tt.pct, tt.termYears)
		if err != nil {
			t.Fatalf("round trip MonthlyPayment error = %v", err)
		}
		if math.Abs(q.MonthlyPayment-tt.monthly) > 0.01 {
			t.Fatalf("round trip monthly = %.4f, want %.4f within one cent", q.MonthlyPayment, tt.monthly)
		}
	}
}

func TestMaxPriceForBudgetInvalidInput(t *testing.T) {
	e := NewEngine(DefaultAnnualRate)

	tests := []struct {
		name      string
		monthly   float64
		pct       float64
		termYears int
	}{
		{"zero payment", 0, 0.20, 4},
		{"negative payment", -100, 0.20, 4},
		{"full down payment fraction", 5000, 1.0, 4},
		{"negative fraction", 5000, -0.1, 4},
		{"bad term", 5000, 0.20, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.MaxPriceForBudget(tt.monthly, tt.pct, tt.termYears); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}
