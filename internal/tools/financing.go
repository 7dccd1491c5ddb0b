package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/davmoreno/lucia/internal/finance"
)

// FinancingTools builds the financing calculator entries of the catalog.
// Invalid amounts never surface as errors; the model receives a short
// correction it can relay to the user.
func FinancingTools(engine *finance.Engine) []Descriptor {
	return []Descriptor{
		{
			Name: "calculate_financing",
			Description: "Calcula la mensualidad de un auto con enganche y plazo en años. " +
				"Tasa fija anual del 10%.",
			Params: []Param{
				{Name: "car_price", Type: "number", Description: "Precio del auto en MXN", Required: true},
				{Name: "down_payment", Type: "number", Description: "Enganche en MXN", Required: true},
				{Name: "years", Type: "integer", Description: "Plazo en años (3 a 6), por defecto 4"},
			},
			Run: func(_ context.Context, args map[string]any) (string, error) {
				price := Float(args, "car_price", 0)
				down := Float(args, "down_payment", 0)
				years := Int(args, "years", 4)
				return calculateFinancing(engine, price, down, years), nil
			},
		},
		{
			Name: "compare_financing_terms",
			Description: "Compara la mensualidad y el costo total de todos los plazos disponibles " +
				"para un mismo auto y enganche.",
			Params: []Param{
				{Name: "car_price", Type: "number", Description: "Precio del auto en MXN", Required: true},
				{Name: "down_payment", Type: "number", Description: "Enganche en MXN", Required: true},
			},
			Run: func(_ context.Context, args map[string]any) (string, error) {
				price := Float(args, "car_price", 0)
				down := Float(args, "down_payment", 0)
				return compareTerms(engine, price, down), nil
			},
		},
		{
			Name: "budget_from_monthly_payment",
			Description: "Calcula el precio máximo de auto alcanzable con una mensualidad objetivo, " +
				"asumiendo un porcentaje de enganche.",
			Params: []Param{
				{Name: "monthly_payment", Type: "number", Description: "Mensualidad objetivo en MXN", Required: true},
				{Name: "years", Type: "integer", Description: "Plazo en años (3 a 6), por defecto 4"},
				{Name: "down_payment_percentage", Type: "number", Description: "Fracción de enganche entre 0 y 1, por defecto 0.20"},
			},
			Run: func(_ context.Context, args map[string]any) (string, error) {
				monthly := Float(args, "monthly_payment", 0)
				years := Int(args, "years", 4)
				pct := Float(args, "down_payment_percentage", 0.20)
				return budgetFromMonthly(engine, monthly, pct, years), nil
			},
		},
	}
}

func calculateFinancing(engine *finance.Engine, price, down float64, years int) string {
	q, err := engine.MonthlyPayment(price, down, years)
	if err != nil {
		return financingInputHelp(err, price, down, years)
	}
	if q.MonthlyPayment == 0 {
		return fmt.Sprintf(
			"🎉 ¡Con un enganche de %s cubres el precio completo del auto! No necesitas financiamiento.",
			money(down))
	}

	var b strings.Builder
	b.WriteString("💰 Plan de financiamiento:\n\n")
	fmt.Fprintf(&b, "🚗 Precio del auto: %s\n", money(q.Price))
	fmt.Fprintf(&b, "💵 Enganche: %s\n", money(q.DownPayment))
	fmt.Fprintf(&b, "📊 Monto a financiar: %s\n", money(q.Price-q.DownPayment))
	fmt.Fprintf(&b, "📅 Plazo: %d años (%d mensualidades)\n", q.TermYears, q.TermYears*12)
	fmt.Fprintf(&b, "📈 Tasa anual: %.0f%%\n\n", q.AnnualRate*100)
	fmt.Fprintf(&b, "✨ Mensualidad: %s\n", money(q.MonthlyPayment))
	fmt.Fprintf(&b, "💳 Total a pagar: %s (intereses: %s)\n", money(q.TotalPaid), money(q.TotalInterest))
	b.WriteString("\n¿Quieres comparar otros plazos? 😊")
	return b.String()
}

func compareTerms(engine *finance.Engine, price, down float64) string {
	quotes, err := engine.CompareTerms(price, down)
	if err != nil {
		return financingInputHelp(err, price, down, finance.AllowedTerms[0])
	}
	if len(quotes) == 0 || quotes[0].MonthlyPayment == 0 {
		return fmt.Sprintf(
			"🎉 ¡Con un enganche de %s cubres el precio completo del auto! No necesitas financiamiento.",
			money(down))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Comparación de plazos para un auto de %s con enganche de %s:\n",
		wholeMoney(price), wholeMoney(down))
	for _, q := range quotes {
		fmt.Fprintf(&b, "\n📅 %d años: %s al mes\n   Total a pagar: %s (intereses: %s)\n",
			q.TermYears, money(q.MonthlyPayment), money(q.TotalPaid), money(q.TotalInterest))
	}
	b.WriteString("\n💡 A menor plazo, menos intereses. ¿Cuál se acomoda mejor a tu presupuesto? 😊")
	return b.String()
}

func budgetFromMonthly(engine *finance.Engine, monthly, pct float64, years int) string {
	maxPrice, err := engine.MaxPriceForBudget(monthly, pct, years)
	if err != nil {
		if errors.Is(err, finance.ErrInvalidInput) {
			return fmt.Sprintf(
				"❌ No pude calcular con esos datos. Verifica que la mensualidad sea mayor a $0, "+
					"el enganche esté entre 0%% y 99%% y el plazo sea de %s años.",
				termList())
		}
		return "❌ No pude completar el cálculo. ¿Intentamos de nuevo?"
	}

	down := maxPrice * pct
	return fmt.Sprintf(
		"💰 Con una mensualidad de %s a %d años y %.0f%% de enganche:\n\n"+
			"🚗 Precio máximo de auto: %s\n💵 Enganche necesario: %s\n\n"+
			"¿Quieres que busque autos hasta ese precio? 😊",
		money(monthly), years, pct*100, wholeMoney(maxPrice), wholeMoney(down))
}

func financingInputHelp(err error, price, down float64, years int) string {
	if !errors.Is(err, finance.ErrInvalidInput) {
		return "❌ No pude completar el cálculo. ¿Intentamos de nuevo?"
	}
	switch {
	case price <= 0:
		return "❌ El precio del auto debe ser mayor a $0. ¿Me confirmas el precio?"
	case down < 0:
		return "❌ El enganche no puede ser negativo. ¿Me confirmas el monto?"
	case down > price:
		return fmt.Sprintf(
			"❌ El enganche (%s) no puede ser mayor al precio del auto (%s). ¿Revisamos los montos?",
			money(down), money(price))
	default:
		return fmt.Sprintf("❌ El plazo debe ser de %s años. ¿Cuál prefieres?", termList())
	}
}

func termList() string {
	parts := make([]string, len(finance.AllowedTerms))
	for i, t := range finance.AllowedTerms {
		parts[i] = fmt.Sprintf("%d", t)
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " o " + parts[len(parts)-1]
}
