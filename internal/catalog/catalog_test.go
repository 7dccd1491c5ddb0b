package catalog

import (
	"strings"
	"testing"
)

const sampleCSV = `stock_id,make,model,year,version,price,km,bluetooth,car_play,largo,ancho,altura
1001,Nissan,Versa,2019,Advance,215000,42000,Sí,No,4495,1695,1510
1002,Nissan,March,2020,Sense,185000,30000,Sí,Sí,3825,1665,1528
1003,Toyota,Corolla,2020,LE,310000,25000,Sí,Sí,4630,1780,1455
1004,Chevrolet,Aveo,2018,LT,155000,60000,No,No,4400,1735,1516
1005,Volkswagen,Jetta,2021,Comfortline,345000,18000,Sí,Sí,4702,1799,1459
1006,Nissan,Sentra,2019,Exclusive,265000,35000,Sí,No,4640,1760,1450
`

func mustParse(t *testing.T) *Catalog {
	t.Helper()
	c, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return c
}

func TestParse(t *testing.T) {
	c := mustParse(t)
	if c.Size() != 6 {
		t.Fatalf("Size() = %d, want 6", c.Size())
	}

	cars := c.SearchMakeModel("Nissan", "Versa")
	if len(cars) != 1 {
		t.Fatalf("expected one Versa, got %d", len(cars))
	}
	v := cars[0]
	if v.Price != 215000 || v.KM != 42000 || !v.Bluetooth || v.CarPlay {
		t.Fatalf("unexpected Versa fields: %+v", v)
	}
	if v.LengthMM != 4495 || v.WidthMM != 1695 || v.HeightMM != 1510 {
		t.Fatalf("unexpected dimensions: %+v", v)
	}
}

func TestParseMissingColumn(t *testing.T) {
	if _, err := Parse(strings.NewReader("stock_id,make,model\n1,a,b\n")); err == nil {
		t.Fatalf("expected error for missing columns")
	}
}

func TestSearchByBudget(t *testing.T) {
	c := mustParse(t)

	cars := c.SearchByBudget(220000, "")
	if len(cars) != 3 {
		t.Fatalf("got %d cars under 220k, want 3", len(cars))
	}
	for i := 1; i < len(cars); i++ {
		if cars[i].Price < cars[i-1].Price {
			t.Fatalf("results not sorted by price: %+v", cars)
		}
	}

	nissan := c.SearchByBudget(300000, "nissan")
	for _, car := range nissan {
		if car.Make != "Nissan" {
			t.Fatalf("brand filter leaked %q", car.Make)
		}
	}
	if len(nissan) != 3 {
		t.Fatalf("got %d Nissan under 300k, want 3", len(nissan))
	}
}

func TestSearchMakeModelTypos(t *testing.T) {
	c := mustParse(t)

	tests := []struct {
		brand, model string
		wantModel    string
	}{
		{"nisan", "sentra", "Sentra"},
		{"chevy", "aveo", "Aveo"},
		{"Toyota", "corola", "Corolla"},
		{"vw", "jetta", "Jetta"},
	}
	for _, tt := range tests {
		cars := c.SearchMakeModel(tt.brand, tt.model)
		if len(cars) == 0 {
			t.Fatalf("SearchMakeModel(%q, %q) found nothing", tt.brand, tt.model)
		}
		if cars[0].Model != tt.wantModel {
			t.Fatalf("SearchMakeModel(%q, %q) = %q, want %q", tt.brand, tt.model, cars[0].Model, tt.wantModel)
		}
	}

	if cars := c.SearchMakeModel("Ferrari", "488"); len(cars) != 0 {
		t.Fatalf("expected no match for unknown brand, got %+v", cars)
	}
}

func TestPopularBrands(t *testing.T) {
	c := mustParse(t)
	top := c.PopularBrands(2)
	if len(top) != 2 {
		t.Fatalf("got %d summaries, want 2", len(top))
	}
	if top[0].Brand != "Nissan" || top[0].Count != 3 {
		t.Fatalf("top brand = %+v, want Nissan x3", top[0])
	}
	if top[0].Cheapest.Model != "March" {
		t.Fatalf("cheapest Nissan = %q, want March", top[0].Cheapest.Model)
	}
}
