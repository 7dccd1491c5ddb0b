package tools

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/davmoreno/lucia/internal/catalog"
)

const maxListedCars = 5

// CarTools builds the inventory search entries of the catalog.
func CarTools(inventory *catalog.Catalog) []Descriptor {
	return []Descriptor{
		{
			Name: "search_cars_by_budget",
			Description: "Busca autos seminuevos disponibles dentro de un presupuesto máximo en pesos " +
				"mexicanos, opcionalmente filtrando por marca.",
			Params: []Param{
				{Name: "max_price", Type: "number", Description: "Presupuesto máximo en MXN", Required: true},
				{Name: "brand", Type: "string", Description: "Marca específica, por ejemplo Toyota o Nissan"},
			},
			Run: func(_ context.Context, args map[string]any) (string, error) {
				maxPrice := Float(args, "max_price", 0)
				brand := String(args, "brand", "")
				return searchByBudget(inventory, maxPrice, brand), nil
			},
		},
		{
			Name: "search_specific_car",
			Description: "Busca un auto específico por marca y modelo y muestra todas las versiones " +
				"disponibles con precio y kilometraje.",
			Params: []Param{
				{Name: "brand", Type: "string", Description: "Marca del auto", Required: true},
				{Name: "model", Type: "string", Description: "Modelo del auto", Required: true},
			},
			Run: func(_ context.Context, args map[string]any) (string, error) {
				brand := String(args, "brand", "")
				model := String(args, "model", "")
				return searchSpecific(inventory, brand, model), nil
			},
		},
		{
			Name:        "get_popular_cars",
			Description: "Muestra las marcas con más autos disponibles en el catálogo y su opción más accesible.",
			Run: func(_ context.Context, _ map[string]any) (string, error) {
				return popularCars(inventory), nil
			},
		},
	}
}

func searchByBudget(inventory *catalog.Catalog, maxPrice float64, brand string) string {
	if inventory.Size() == 0 {
		return "❌ No pude acceder al catálogo. ¿Intentamos de nuevo en un momento?"
	}
	if maxPrice <= 0 {
		return "❌ El presupuesto debe ser mayor a $0. ¿Me lo puedes confirmar?"
	}

	cars := inventory.SearchByBudget(maxPrice, brand)
	if len(cars) == 0 {
		return fmt.Sprintf(
			"🔍 No encontré autos con esos criterios.\n\nAlgunas opciones:\n• Aumentar el presupuesto a %s\n• Considerar otras marcas\n\n¿Te ayudo con otras opciones? 😊",
			wholeMoney(maxPrice+50000))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🚗 Encontré %d autos en tu presupuesto de %s:\n", len(cars), wholeMoney(maxPrice))
	for i, car := range cars {
		if i == maxListedCars {
			break
		}
		b.WriteString("\n")
		b.WriteString(carSummary(car))
	}
	if len(cars) > maxListedCars {
		fmt.Fprintf(&b, "\n¡Y %d opciones más!\n", len(cars)-maxListedCars)
	}
	b.WriteString("\n¿Te interesa alguno en particular? ¿Quieres más detalles? 😊")
	return b.String()
}

func searchSpecific(inventory *catalog.Catalog, brand, model string) string {
	if inventory.Size() == 0 {
		return "❌ No pude acceder al catálogo. ¿Intentamos de nuevo?"
	}

	cars := inventory.SearchMakeModel(brand, model)
	if len(cars) == 0 {
		return fmt.Sprintf(
			"🔍 No encontré \"%s %s\" en nuestro catálogo.\n\nMarcas disponibles: %s\n\n¿Puedes verificar el nombre? 🤔",
			brand, model, strings.Join(firstN(inventory.Brands(), 5), ", "))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🚗 Encontré %s %s disponible:\n", titleCase(brand), titleCase(model))
	for _, car := range cars {
		b.WriteString("\n")
		b.WriteString(carDetail(car))
	}
	b.WriteString("\n¿Te interesa alguna versión? ¿Quieres calcular financiamiento? 💰")
	return b.String()
}

func popularCars(inventory *catalog.Catalog) string {
	if inventory.Size() == 0 {
		return "❌ No pude acceder al catálogo."
	}

	var b strings.Builder
	b.WriteString("🚗 Autos más populares del catálogo:\n")
	for _, s := range inventory.PopularBrands(5) {
		fmt.Fprintf(&b, "\n%s (%d disponibles)\nDesde %s\nEjemplo: %s %d\n",
			s.Brand, s.Count, wholeMoney(s.Cheapest.Price), s.Cheapest.Model, s.Cheapest.Year)
	}
	b.WriteString("\n¿Te interesa alguna marca en particular? 😊")
	return b.String()
}

func carSummary(car catalog.Car) string {
	bluetooth := "❌ Sin Bluetooth"
	if car.Bluetooth {
		bluetooth = "✅ Bluetooth"
	}
	carplay := ""
	if car.CarPlay {
		carplay = " • ✅ CarPlay"
	}
	return fmt.Sprintf("%s %s %d\n💰 %s\n📍 %s km\n%s%s\n",
		car.Make, car.Model, car.Year, wholeMoney(car.Price), groupInt(car.KM), bluetooth, carplay)
}

func carDetail(car catalog.Car) string {
	mark := func(ok bool) string {
		if ok {
			return "✅"
		}
		return "❌"
	}
	return fmt.Sprintf("%s %s %d\n%s\n💰 %s\n📍 %s km\n%s Bluetooth • %s CarPlay\nStock ID: %s\n",
		car.Make, car.Model, car.Year, car.Version, wholeMoney(car.Price), groupInt(car.KM),
		mark(car.Bluetooth), mark(car.CarPlay), car.StockID)
}

func groupInt(n int) string {
	return strings.TrimSuffix(strings.TrimPrefix(money(float64(n)), "$"), ".00")
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
