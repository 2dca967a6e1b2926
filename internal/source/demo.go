package source

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/budgetplanner/backend/internal/models"
	"github.com/budgetplanner/backend/internal/types"
)

// Demo serves deterministic data for the Müller family demo household.
// Accounts and categories are fixed; transactions are generated per
// month from a seeded PRNG so repeated fetches of the same window give
// identical results.
type Demo struct{}

// NewDemo creates the demo data source.
func NewDemo() *Demo {
	return &Demo{}
}

// DemoIncomeGroupID is the id of the top-level income group, used as
// the income category setting of the demo budget.
const DemoIncomeGroupID = "demo-cat-001"

const (
	maxGiro   = "demo-acc-001"
	lisaGiro  = "demo-acc-002"
	gemeinsam = "demo-acc-003"
	tagesgeld = "demo-acc-004"
	depot     = "demo-acc-005"
)

func (d *Demo) Accounts(_ context.Context) ([]models.Account, error) {
	return []models.Account{
		{ID: maxGiro, Name: "Girokonto Max", AccountNumber: "DE89370400440532013000", BankCode: "37040044", Currency: "EUR", BalanceAmount: dec("3240"), BalanceCurrency: "EUR", Owner: "Max Müller", AccountType: "Giro"},
		{ID: lisaGiro, Name: "Girokonto Lisa", AccountNumber: "DE27100777770209299700", BankCode: "10077777", Currency: "EUR", BalanceAmount: dec("1870"), BalanceCurrency: "EUR", Owner: "Lisa Müller", AccountType: "Giro"},
		{ID: gemeinsam, Name: "Gemeinsames Konto", AccountNumber: "DE91100000000123456789", BankCode: "10000000", Currency: "EUR", BalanceAmount: dec("2150"), BalanceCurrency: "EUR", Owner: "Max & Lisa Müller", AccountType: "Giro"},
		{ID: tagesgeld, Name: "Tagesgeldkonto", AccountNumber: "DE75512108001245126199", BankCode: "51210800", Currency: "EUR", BalanceAmount: dec("15400"), BalanceCurrency: "EUR", Owner: "Max & Lisa Müller", AccountType: "Savings"},
		{ID: depot, Name: "Depot", AccountNumber: "DE123456789", BankCode: "00000000", Currency: "EUR", BalanceAmount: dec("42300"), BalanceCurrency: "EUR", Owner: "Max Müller", AccountType: "Investment", Portfolio: true},
	}, nil
}

func (d *Demo) Categories(_ context.Context) ([]models.Category, error) {
	return []models.Category{
		demoCat("demo-cat-001", "Einnahmen", true, 0),
		demoCat("demo-cat-002", "Gehalt & Lohn", true, 1),
		demoCat("demo-cat-003", "Gehalt Max", false, 2),
		demoCat("demo-cat-004", "Gehalt Lisa", false, 2),
		demoCat("demo-cat-005", "Staatliche Leistungen", true, 1),
		demoCat("demo-cat-006", "Kindergeld", false, 2),
		demoCat("demo-cat-007", "Elterngeld", false, 2),
		demoCat("demo-cat-008", "Sonstige Einnahmen", true, 1),
		demoCat("demo-cat-009", "Freelance-Projekte", false, 2),
		demoCat("demo-cat-010", "Zinsen & Dividenden", false, 2),

		demoCat("demo-cat-100", "Ausgaben", true, 0),
		demoCat("demo-cat-110", "Wohnen", true, 1),
		demoCat("demo-cat-111", "Miete", false, 2),
		demoCat("demo-cat-112", "Nebenkosten", false, 2),
		demoCat("demo-cat-113", "Strom", false, 2),
		demoCat("demo-cat-114", "Internet & Telefon", false, 2),
		demoCat("demo-cat-115", "GEZ Rundfunkbeitrag", false, 2),
		demoCat("demo-cat-120", "Lebensmittel", true, 1),
		demoCat("demo-cat-121", "Supermarkt", false, 2),
		demoCat("demo-cat-122", "Wochenmarkt", false, 2),
		demoCat("demo-cat-123", "Bäckerei", false, 2),
		demoCat("demo-cat-130", "Mobilität", true, 1),
		demoCat("demo-cat-131", "Benzin & Tanken", false, 2),
		demoCat("demo-cat-132", "KFZ-Versicherung", false, 2),
		demoCat("demo-cat-133", "Wartung & TÜV", false, 2),
		demoCat("demo-cat-134", "ÖPNV", false, 2),
		demoCat("demo-cat-140", "Versicherungen", true, 1),
		demoCat("demo-cat-141", "Krankenversicherung", false, 2),
		demoCat("demo-cat-142", "Haftpflichtversicherung", false, 2),
		demoCat("demo-cat-143", "Hausratversicherung", false, 2),
		demoCat("demo-cat-144", "Berufsunfähigkeit", false, 2),
		demoCat("demo-cat-150", "Kinder", true, 1),
		demoCat("demo-cat-151", "Kita-Gebühren", false, 2),
		demoCat("demo-cat-152", "Schulbedarf", false, 2),
		demoCat("demo-cat-153", "Kleidung Kinder", false, 2),
		demoCat("demo-cat-154", "Freizeit Kinder", false, 2),
		demoCat("demo-cat-160", "Freizeit & Kultur", true, 1),
		demoCat("demo-cat-161", "Restaurant & Café", false, 2),
		demoCat("demo-cat-162", "Sport & Fitness", false, 2),
		demoCat("demo-cat-163", "Streaming & Abos", false, 2),
		demoCat("demo-cat-164", "Urlaub & Reisen", false, 2),
		demoCat("demo-cat-170", "Gesundheit", true, 1),
		demoCat("demo-cat-171", "Arzt & Medikamente", false, 2),
		demoCat("demo-cat-172", "Zahnarzt", false, 2),
		demoCat("demo-cat-180", "Kleidung & Pflege", true, 1),
		demoCat("demo-cat-181", "Kleidung Erwachsene", false, 2),
		demoCat("demo-cat-182", "Friseur & Körperpflege", false, 2),
		demoCat("demo-cat-190", "Sparen & Vorsorge", true, 1),
		demoCat("demo-cat-191", "ETF-Sparplan", false, 2),
		demoCat("demo-cat-192", "Tagesgeld-Rücklage", false, 2),
		demoCat("demo-cat-193", "Altersvorsorge", false, 2),
		demoCat("demo-cat-200", "Sonstiges", true, 1),
		demoCat("demo-cat-201", "Geschenke", false, 2),
		demoCat("demo-cat-202", "Haushaltswaren", false, 2),
		demoCat("demo-cat-203", "Bildung & Bücher", false, 2),
	}, nil
}

func demoCat(id, name string, group bool, indentation int) models.Category {
	return models.Category{ID: id, Name: name, Currency: "EUR", Group: group, Indentation: indentation}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DemoTemplate is the pre-built budget for the demo household, with
// planned amounts chosen to produce visible planned-vs-actual gaps.
func DemoTemplate() models.BudgetTemplate {
	template := models.BudgetTemplate{
		Name:    "Demo Familie",
		Version: "1.0.0",
		Settings: models.BudgetSettings{
			Currency:         "EUR",
			Accounts:         []string{maxGiro, lisaGiro, gemeinsam, tagesgeld, depot},
			IncomeCategories: []string{DemoIncomeGroupID},
			StartMonth:       "2025-01",
		},
		Template: map[string]models.TemplateEntry{
			"demo-cat-003": {Amount: dec("4200"), Note: "Netto nach Steuer"},
			"demo-cat-004": {Amount: dec("1850")},
			"demo-cat-006": {Amount: dec("500")},
			"demo-cat-007": {Amount: dec("0")},
			"demo-cat-009": {Amount: dec("400"), Note: "Schwankt monatlich, Durchschnitt"},
			"demo-cat-010": {Amount: dec("30")},

			"demo-cat-111": {Amount: dec("1450")},
			"demo-cat-112": {Amount: dec("95"), Note: "~280 EUR pro Quartal"},
			"demo-cat-113": {Amount: dec("95")},
			"demo-cat-114": {Amount: dec("60")},
			"demo-cat-115": {Amount: dec("18.36")},

			"demo-cat-121": {Amount: dec("600"), Note: "Budget für 4 Personen"},
			"demo-cat-122": {Amount: dec("70")},
			"demo-cat-123": {Amount: dec("30")},

			"demo-cat-131": {Amount: dec("130")},
			"demo-cat-132": {Amount: dec("68.50")},
			"demo-cat-133": {Amount: dec("40"), Note: "Rückstellung für TÜV/Inspektion"},
			"demo-cat-134": {Amount: dec("49")},

			"demo-cat-141": {Amount: dec("45.80")},
			"demo-cat-142": {Amount: dec("12.90")},
			"demo-cat-143": {Amount: dec("18.50")},
			"demo-cat-144": {Amount: dec("89")},

			"demo-cat-151": {Amount: dec("285")},
			"demo-cat-152": {Amount: dec("20")},
			"demo-cat-153": {Amount: dec("40")},
			"demo-cat-154": {Amount: dec("35")},

			"demo-cat-161": {Amount: dec("120"), Note: "Max 3x essen gehen/Monat"},
			"demo-cat-162": {Amount: dec("39.90")},
			"demo-cat-163": {Amount: dec("30.98"), LineItems: []models.LineItem{
				{ID: "li-netflix", Name: "Netflix Standard", Amount: dec("13.99")},
				{ID: "li-spotify", Name: "Spotify Family", Amount: dec("16.99")},
			}},
			"demo-cat-164": {Amount: dec("200"), Note: "Rücklage für Sommerurlaub"},

			"demo-cat-171": {Amount: dec("25")},
			"demo-cat-172": {Amount: dec("15"), Note: "Rückstellung PZR"},

			"demo-cat-181": {Amount: dec("60")},
			"demo-cat-182": {Amount: dec("35")},

			"demo-cat-191": {Amount: dec("400")},
			"demo-cat-192": {Amount: dec("200")},
			"demo-cat-193": {Amount: dec("162.17"), Note: "Riester Max - staatlich gefördert"},

			"demo-cat-201": {Amount: dec("40")},
			"demo-cat-202": {Amount: dec("30")},
			"demo-cat-203": {Amount: dec("25")},
		},
		Comments: map[types.Month]map[string]string{
			types.NewMonth(2026, 1): {
				"demo-cat-121": "Feiertage: mehr ausgegeben als geplant",
				"demo-cat-164": "Skiurlaub-Anzahlung überwiesen",
			},
			types.NewMonth(2026, 2): {
				"demo-cat-133": "TÜV fällig im März - Termin vereinbart",
			},
		},
		Unplanned: map[types.Month]map[string][]models.UnplannedTransaction{
			types.NewMonth(2026, 1): {
				"demo-cat-202": {
					{ID: 9001, Name: "Elektro Huber", Amount: dec("-320"), BookingDate: "2026-01-14", Purpose: "Waschmaschine Reparatur - Notfall"},
				},
				"demo-cat-172": {
					{ID: 9002, Name: "Dr. Weber Zahnarzt", Amount: dec("-245"), BookingDate: "2026-01-22", Purpose: "Zahnfüllung - nicht geplant"},
				},
			},
			types.NewMonth(2026, 2): {
				"demo-cat-133": {
					{ID: 9003, Name: "Werkstatt Huber", Amount: dec("-485"), BookingDate: "2026-02-11", Purpose: "Bremsen vorne erneuern - ungeplant"},
				},
			},
		},
		Scenarios: []models.Scenario{
			{
				ID:          "demo-scenario-001",
				Name:        "Urlaub Kroatien",
				Description: "Sommerurlaub in Kroatien - 2 Wochen Split/Dubrovnik",
				Notes:       "Ferienwohnung bereits angefragt. Fähre vs. Flug noch klären.",
				CreatedAt:   time.Date(2025, 11, 15, 10, 0, 0, 0, time.UTC),
				Overrides: map[string]models.ScenarioOverride{
					"demo-cat-164": {Amount: dec("1200")},
					"demo-cat-131": {Amount: dec("200")},
					"demo-cat-161": {Amount: dec("250")},
				},
				VirtualItems: []models.VirtualItem{
					{ID: "vi-maut", Name: "Autobahnmaut Österreich/Kroatien", Amount: dec("85")},
					{ID: "vi-ferienwohnung", Name: "Ferienwohnung Split", Amount: dec("980")},
				},
			},
		},
	}
	template.Normalize()
	return template
}

// prng is a mulberry32 generator. One instance is seeded per month so
// every month's transactions are stable in isolation.
type prng struct {
	state uint32
}

func (p *prng) next() float64 {
	p.state += 0x6d2b79f5
	t := p.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296
}

// monthSeed hashes a "YYYY-MM" string into a 32-bit seed.
func monthSeed(month string) uint32 {
	var hash int32
	for _, c := range month {
		hash = hash<<5 - hash + int32(c)
	}
	return uint32(hash)
}

func round2(n float64) float64 {
	return math.Round(n*100) / 100
}

type txSpec struct {
	day        int
	name       string
	purpose    string
	amount     decimal.Decimal
	categoryID string
	accountID  string
	stableID   int64 // 0 for sequentially numbered transactions
}

// Transactions generates the demo transactions for the window, roughly
// 40-60 per month. Fixed income and contracts land on fixed days;
// variable spending is placed and sized by the month's PRNG.
func (d *Demo) Transactions(_ context.Context, from, to string, accountIDs []string) ([]models.Transaction, error) {
	fromMonth, err := types.ParseDateToMonth(from)
	if err != nil {
		return nil, fmt.Errorf("invalid from date: %w", err)
	}
	toMonth, err := types.ParseDateToMonth(to)
	if err != nil {
		return nil, fmt.Errorf("invalid to date: %w", err)
	}

	accountSet := make(map[string]struct{}, len(accountIDs))
	for _, id := range accountIDs {
		accountSet[id] = struct{}{}
	}

	var transactions []models.Transaction
	var idCounter int64 = 1

	for cursor := fromMonth; !cursor.After(toMonth); cursor = cursor.AddDate(0, 1) {
		for _, spec := range monthSpecs(cursor) {
			date := fmt.Sprintf("%s-%02d", cursor.String(), spec.day)
			if date < from || date > to {
				continue
			}
			if _, ok := accountSet[spec.accountID]; !ok {
				continue
			}

			id := spec.stableID
			if id == 0 {
				id = idCounter
				idCounter++
			}

			transactions = append(transactions, models.Transaction{
				ID:          id,
				Amount:      spec.amount,
				Currency:    "EUR",
				BookingDate: date,
				ValueDate:   date,
				Name:        spec.name,
				Purpose:     spec.purpose,
				CategoryID:  spec.categoryID,
				AccountID:   spec.accountID,
				Booked:      true,
			})
		}
	}

	slices.SortStableFunc(transactions, func(a, b models.Transaction) int {
		return strings.Compare(a.BookingDate, b.BookingDate)
	})

	return transactions, nil
}

func monthSpecs(month types.Month) []txSpec {
	monthStr := month.String()
	t := time.Time(month)
	year, mon := t.Year(), int(t.Month())
	maxDay := time.Date(year, time.Month(mon)+1, 0, 0, 0, 0, 0, time.UTC).Day()

	rng := &prng{state: monthSeed(monthStr)}

	vary := func(base, pct float64) decimal.Decimal {
		return decimal.NewFromFloat(round2(base * (1 + (rng.next()*2-1)*pct)))
	}
	randInt := func(min, max int) int {
		return min + int(rng.next()*float64(max-min+1))
	}
	clampDay := func(d int) int {
		if d > maxDay {
			return maxDay
		}
		return d
	}

	var specs []txSpec
	add := func(day int, name, purpose string, amount decimal.Decimal, categoryID, accountID string) {
		specs = append(specs, txSpec{day: clampDay(day), name: name, purpose: purpose, amount: amount, categoryID: categoryID, accountID: accountID})
	}

	// Fixed monthly income
	add(28, "TechCorp GmbH", "Gehalt Max Müller", dec("4200"), "demo-cat-003", maxGiro)
	add(28, "Freistaat Bayern", "Gehalt Lisa Müller", dec("1850"), "demo-cat-004", lisaGiro)
	add(5, "Familienkasse", "Kindergeld 2 Kinder", dec("500"), "demo-cat-006", gemeinsam)

	// Freelance income lands in some months only
	if rng.next() > 0.5 {
		add(randInt(10, 20), "Webprojekt Kunde", "Freelance Webentwicklung", vary(800, 0.3), "demo-cat-009", maxGiro)
	}

	// Interest, quarterly
	if mon%3 == 0 {
		add(15, "ING DiBa", "Zinsgutschrift Tagesgeld", decimal.NewFromFloat(round2(15400*0.03/4)), "demo-cat-010", tagesgeld)
	}

	// Fixed monthly expenses
	add(1, "Hausverwaltung München", "Miete Wohnung Schwabing", dec("-1450"), "demo-cat-111", gemeinsam)
	if mon%3 == 1 {
		add(1, "Hausverwaltung München", fmt.Sprintf("Nebenkosten Q%d", (mon+2)/3), vary(-280, 0.05), "demo-cat-112", gemeinsam)
	}
	add(3, "Stadtwerke München", "Strom Abschlag", vary(-95, 0.03), "demo-cat-113", gemeinsam)
	add(5, "Telekom", "Internet + Mobilfunk", dec("-59.95"), "demo-cat-114", gemeinsam)
	add(1, "ARD ZDF", "Rundfunkbeitrag", dec("-18.36"), "demo-cat-115", gemeinsam)

	// Groceries: 8-12 supermarket trips
	supermarkets := []string{"REWE", "EDEKA", "Aldi Süd", "Lidl"}
	for i, n := 0, randInt(8, 12); i < n; i++ {
		store := supermarkets[randInt(0, len(supermarkets)-1)]
		add(randInt(1, maxDay), store, "Lebensmittel", vary(-65, 0.5), "demo-cat-121", gemeinsam)
	}
	for i := 0; i < 2; i++ {
		add(6+i*14, "Viktualienmarkt", "Obst, Gemüse, Käse", vary(-35, 0.3), "demo-cat-122", gemeinsam)
	}
	for i, n := 0, randInt(2, 4); i < n; i++ {
		add(randInt(1, maxDay), "Bäckerei Müller", "Brot & Brötchen", vary(-8, 0.3), "demo-cat-123", gemeinsam)
	}

	// Mobility
	add(randInt(5, 15), "Shell Tankstelle", "Super E10", vary(-75, 0.2), "demo-cat-131", maxGiro)
	if rng.next() > 0.4 {
		add(randInt(16, 28), "Aral Tankstelle", "Super E10", vary(-65, 0.2), "demo-cat-131", maxGiro)
	}
	add(1, "HUK-Coburg", "KFZ-Versicherung VW Golf", dec("-68.50"), "demo-cat-132", maxGiro)
	if rng.next() > 0.85 {
		add(randInt(10, 25), "ATU München", "Inspektion & Ölwechsel", vary(-380, 0.15), "demo-cat-133", maxGiro)
	}
	add(1, "MVV München", "Deutschlandticket Lisa", dec("-49"), "demo-cat-134", lisaGiro)

	// Insurance
	add(1, "TK Krankenkasse", "Zusatzbeitrag", dec("-45.80"), "demo-cat-141", gemeinsam)
	add(1, "Allianz", "Haftpflichtversicherung", dec("-12.90"), "demo-cat-142", gemeinsam)
	add(1, "Allianz", "Hausratversicherung", dec("-18.50"), "demo-cat-143", gemeinsam)
	add(1, "Ergo", "Berufsunfähigkeit Max", dec("-89"), "demo-cat-144", maxGiro)

	// Children
	add(5, "Stadt München", "Kita-Gebühren Emil", dec("-285"), "demo-cat-151", gemeinsam)
	if rng.next() > 0.6 {
		add(randInt(5, 25), "Müller Drogerie", "Schulhefte, Stifte", vary(-25, 0.4), "demo-cat-152", gemeinsam)
	}
	if rng.next() > 0.5 {
		add(randInt(5, 25), "H&M Kids", "Kinderkleidung", vary(-55, 0.3), "demo-cat-153", gemeinsam)
	}
	add(randInt(10, 20), "Schwimmverein München", "Schwimmkurs Mia", dec("-35"), "demo-cat-154", gemeinsam)

	// Leisure & culture
	restaurants := []string{"Restaurant Augustiner", "Café Luitpold", "Pizza Hut", "Wirtshaus zum Isartal"}
	for i, n := 0, randInt(2, 4); i < n; i++ {
		place := restaurants[randInt(0, len(restaurants)-1)]
		add(randInt(1, maxDay), place, "Essen gehen", vary(-42, 0.4), "demo-cat-161", gemeinsam)
	}
	add(1, "FitStar München", "Fitnessstudio Max", dec("-39.90"), "demo-cat-162", maxGiro)
	add(3, "Netflix", "Standard-Abo", dec("-13.99"), "demo-cat-163", gemeinsam)
	add(5, "Spotify", "Family Premium", dec("-16.99"), "demo-cat-163", gemeinsam)
	if rng.next() > 0.8 {
		add(randInt(10, 20), "Booking.com", "Hotelreservierung", vary(-450, 0.3), "demo-cat-164", gemeinsam)
	}

	// Health
	if rng.next() > 0.6 {
		add(randInt(5, 25), "Apotheke am Marienplatz", "Medikamente", vary(-28, 0.4), "demo-cat-171", gemeinsam)
	}
	if rng.next() > 0.85 {
		add(randInt(8, 22), "Dr. Weber Zahnarzt", "Kontrolluntersuchung + PZR", vary(-180, 0.2), "demo-cat-172", gemeinsam)
	}

	// Clothing & care
	if rng.next() > 0.5 {
		account := maxGiro
		if rng.next() > 0.5 {
			account = lisaGiro
		}
		add(randInt(5, 25), "Zalando", "Kleidung", vary(-75, 0.4), "demo-cat-181", account)
	}
	add(randInt(10, 25), "Friseur Schick", "Haarschnitt", vary(-35, 0.2), "demo-cat-182", lisaGiro)

	// Savings
	add(1, "Trade Republic", "ETF-Sparplan MSCI World", dec("-400"), "demo-cat-191", depot)
	add(1, "ING DiBa", "Dauerauftrag Tagesgeld", dec("-200"), "demo-cat-192", tagesgeld)
	add(1, "Allianz", "Riester-Rente Max", dec("-162.17"), "demo-cat-193", maxGiro)

	// Miscellaneous
	if rng.next() > 0.6 {
		add(randInt(5, 25), "Amazon", "Geschenk Geburtstag", vary(-45, 0.4), "demo-cat-201", gemeinsam)
	}
	if rng.next() > 0.5 {
		add(randInt(5, 25), "IKEA München", "Haushaltswaren", vary(-55, 0.4), "demo-cat-202", gemeinsam)
	}
	if rng.next() > 0.7 {
		add(randInt(5, 25), "Thalia", "Bücher", vary(-25, 0.3), "demo-cat-203", gemeinsam)
	}

	// Surprise transactions for specific months. Stable ids keep them
	// addressable from the pre-built unplanned bookkeeping no matter how
	// the conditional transactions above shift the counter.
	switch monthStr {
	case "2026-01":
		specs = append(specs,
			txSpec{stableID: 9001, day: 14, name: "Elektro Huber", purpose: "Waschmaschine Reparatur - Notfall", amount: dec("-320"), categoryID: "demo-cat-202", accountID: gemeinsam},
			txSpec{stableID: 9002, day: 22, name: "Dr. Weber Zahnarzt", purpose: "Zahnfüllung - nicht geplant", amount: dec("-245"), categoryID: "demo-cat-172", accountID: gemeinsam},
		)
	case "2026-02":
		specs = append(specs,
			txSpec{stableID: 9003, day: 11, name: "Werkstatt Huber", purpose: "Bremsen vorne erneuern - ungeplant", amount: dec("-485"), categoryID: "demo-cat-133", accountID: maxGiro},
		)
	}

	return specs
}
