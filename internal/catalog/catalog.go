// Package catalog loads the vehicle inventory from the marketplace CSV
// export and answers budget and make/model searches for the agent tools.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Car is one inventory row.
type Car struct {
	StockID   string  `json:"stock_id"`
	Make      string  `json:"make"`
	Model     string  `json:"model"`
	Year      int     `json:"year"`
	Version   string  `json:"version"`
	Price     float64 `json:"price"`
	KM        int     `json:"km"`
	Bluetooth bool    `json:"bluetooth"`
	CarPlay   bool    `json:"car_play"`
	LengthMM  int     `json:"largo"`
	WidthMM   int     `json:"ancho"`
	HeightMM  int     `json:"altura"`
}

// Catalog is an immutable in-memory inventory snapshot.
type Catalog struct {
	cars []Car
}

// Empty returns a catalog with no inventory. Searches answer empty
// instead of failing when the CSV export is missing.
func Empty() *Catalog { return &Catalog{} }

// Load reads the inventory CSV from disk.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads inventory rows from a CSV stream. Columns are matched by
// header name so exports with reordered columns still load.
func Parse(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"make", "model", "year", "price"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("catalog header missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var cars []Car
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog row: %w", err)
		}

		year, _ := strconv.Atoi(field(row, "year"))
		price, _ := strconv.ParseFloat(field(row, "price"), 64)
		km, _ := strconv.Atoi(field(row, "km"))
		length, _ := strconv.Atoi(field(row, "largo"))
		width, _ := strconv.Atoi(field(row, "ancho"))
		height, _ := strconv.Atoi(field(row, "altura"))

		cars = append(cars, Car{
			StockID:   field(row, "stock_id"),
			Make:      field(row, "make"),
			Model:     field(row, "model"),
			Year:      year,
			Version:   field(row, "version"),
			Price:     price,
			KM:        km,
			Bluetooth: yes(field(row, "bluetooth")),
			CarPlay:   yes(field(row, "car_play")),
			LengthMM:  length,
			WidthMM:   width,
			HeightMM:  height,
		})
	}
	return &Catalog{cars: cars}, nil
}

func yes(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "sí", "si", "yes", "true", "1":
		return true
	}
	return false
}

func (c *Catalog) Size() int { return len(c.cars) }

// SearchByBudget returns cars at or below maxPrice, cheapest first,
// optionally restricted to one brand.
func (c *Catalog) SearchByBudget(maxPrice float64, brand string) []Car {
	var out []Car
	brand = normalize(brand)
	for _, car := range c.cars {
		if car.Price > maxPrice {
			continue
		}
		if brand != "" && !strings.Contains(normalize(car.Make), brand) {
			continue
		}
		out = append(out, car)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}

// SearchMakeModel finds every version of a brand/model pair. The lookup is
// case-insensitive and forgiving of common typos ("nisan", "chevy", ...).
func (c *Catalog) SearchMakeModel(brand, model string) []Car {
	out := c.filter(normalize(brand), normalize(model), strings.Contains)
	if len(out) == 0 {
		out = c.fuzzyFilter(brand, model)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}

func (c *Catalog) filter(brand, model string, match func(s, sub string) bool) []Car {
	var out []Car
	for _, car := range c.cars {
		if brand != "" && !match(normalize(car.Make), brand) {
			continue
		}
		if model != "" && !match(normalize(car.Model), model) {
			continue
		}
		out = append(out, car)
	}
	return out
}

func (c *Catalog) fuzzyFilter(brand, model string) []Car {
	brand = correctTypo(normalize(brand))
	model = correctTypo(normalize(model))

	if brand != "" {
		if best := bestMatch(brand, c.Brands()); best != "" {
			brand = normalize(best)
		} else {
			return nil
		}
	}
	if model != "" {
		models := c.modelsForBrand(brand)
		if best := bestMatch(model, models); best != "" {
			model = normalize(best)
		} else {
			return nil
		}
	}
	return c.filter(brand, model, func(s, sub string) bool { return s == sub })
}

// Brands lists the distinct makes in inventory order.
func (c *Catalog) Brands() []string {
	return c.distinct(func(car Car) string { return car.Make })
}

// Models lists the distinct models in inventory order.
func (c *Catalog) Models() []string {
	return c.distinct(func(car Car) string { return car.Model })
}

func (c *Catalog) modelsForBrand(brand string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, car := range c.cars {
		if brand != "" && normalize(car.Make) != brand {
			continue
		}
		if !seen[car.Model] {
			seen[car.Model] = true
			out = append(out, car.Model)
		}
	}
	return out
}

func (c *Catalog) distinct(key func(Car) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, car := range c.cars {
		k := key(car)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// BrandSummary describes one popular brand for the overview tool.
type BrandSummary struct {
	Brand    string
	Count    int
	Cheapest Car
}

// PopularBrands returns the n brands with the most inventory, largest first.
func (c *Catalog) PopularBrands(n int) []BrandSummary {
	byBrand := make(map[string]*BrandSummary)
	var order []string
	for _, car := range c.cars {
		s, ok := byBrand[car.Make]
		if !ok {
			s = &BrandSummary{Brand: car.Make, Cheapest: car}
			byBrand[car.Make] = s
			order = append(order, car.Make)
		}
		s.Count++
		if car.Price < s.Cheapest.Price {
			s.Cheapest = car
		}
	}

	out := make([]BrandSummary, 0, len(order))
	for _, b := range order {
		out = append(out, *byBrand[b])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9 ]+`)

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnum.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// typoFixes maps frequent misspellings seen in WhatsApp traffic to the
// canonical brand name.
var typoFixes = map[string]string{
	"nisan":       "nissan",
	"toyoya":      "toyota",
	"vw":          "volkswagen",
	"volks":       "volkswagen",
	"chevy":       "chevrolet",
	"cheverolet":  "chevrolet",
	"mazada":      "mazda",
	"mitsubitshi": "mitsubishi",
	"mercedez":    "mercedes",
}

func correctTypo(s string) string {
	if fix, ok := typoFixes[s]; ok {
		return fix
	}
	return s
}

// bestMatch picks the candidate with the smallest edit distance, accepting
// only close matches (distance <= 2).
func bestMatch(query string, candidates []string) string {
	best := ""
	bestDist := 3
	for _, cand := range candidates {
		d := editDistance(query, normalize(cand))
		if d < bestDist {
			bestDist = d
			best = cand
		}
	}
	return best
}

func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
