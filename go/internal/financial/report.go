package financial

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/storeconfig"
)

// Totals is revenue and profit over some slice of sales.
type Totals struct {
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

// DayTotals are the totals of one day of the month.
type DayTotals struct {
	Day int `json:"day"`
	Totals
}

// CategoryTotals are the auction sales of one card category.
type CategoryTotals struct {
	Category string `json:"category"`
	Totals
}

// MonthlyReport holds the KPIs of one calendar month.
type MonthlyReport struct {
	Year           int              `json:"year"`
	Month          time.Month       `json:"month"`
	Revenue        float64          `json:"revenue"`
	Profit         float64          `json:"profit"`
	AvgTicket      float64          `json:"avg_ticket"`
	ConversionRate int              `json:"conversion_rate"`
	UniqueClients  int              `json:"unique_clients"`
	Daily          []DayTotals      `json:"daily"`
	Categories     []CategoryTotals `json:"categories"`
}

// CalculateMonthlyReport computes the KPIs of the month containing month, in month's location.
//
// Revenue and profit come from payments marked paid in the month. Conversion and
// the category split come from auctions finished with a date in the month.
func CalculateMonthlyReport(payments []models.Payment, auctions []models.Auction, cards []models.Card, month time.Time) *MonthlyReport {
	loc := month.Location()
	year, mon := month.Year(), month.Month()
	inMonth := func(t time.Time) bool {
		t = t.In(loc)
		return t.Year() == year && t.Month() == mon
	}

	r := &MonthlyReport{
		Year:       year,
		Month:      mon,
		Daily:      []DayTotals{},
		Categories: []CategoryTotals{},
	}

	var totalCost float64
	clients := make(map[uuid.UUID]struct{})
	daily := make(map[int]*DayTotals)
	for _, p := range payments {
		if p.Status != models.PaymentStatusPaid || p.PaymentDate == nil || !inMonth(*p.PaymentDate) {
			continue
		}
		r.Revenue += p.Amount
		totalCost += p.TotalCost
		if p.ClientID != uuid.Nil {
			clients[p.ClientID] = struct{}{}
		}

		day := p.PaymentDate.In(loc).Day()
		d, ok := daily[day]
		if !ok {
			d = &DayTotals{Day: day}
			daily[day] = d
		}
		d.Revenue += p.Amount
		d.Profit += p.Amount - p.TotalCost
	}
	r.Profit = r.Revenue - totalCost
	r.UniqueClients = len(clients)
	if r.UniqueClients > 0 {
		r.AvgTicket = r.Revenue / float64(r.UniqueClients)
	}
	for _, d := range daily {
		r.Daily = append(r.Daily, *d)
	}
	sort.Slice(r.Daily, func(i, j int) bool { return r.Daily[i].Day < r.Daily[j].Day })

	cardsByID := make(map[uuid.UUID]models.Card, len(cards))
	for _, c := range cards {
		cardsByID[c.ID] = c
	}
	var sold, offered int
	categories := make(map[string]*CategoryTotals)
	for _, a := range auctions {
		if a.Status != models.AuctionStatusFinished || !inMonth(a.Date) {
			continue
		}
		sold += len(a.WinningBids)
		offered += len(a.CardIDs)

		for _, wb := range a.WinningBids {
			card, ok := cardsByID[wb.CardID]
			if !ok {
				continue
			}
			category := card.Category
			if category == "" {
				category = storeconfig.DefaultCategory
			}
			c, ok := categories[category]
			if !ok {
				c = &CategoryTotals{Category: category}
				categories[category] = c
			}
			c.Revenue += wb.FinalValue
			c.Profit += wb.FinalValue - card.Cost
		}
	}
	if offered > 0 {
		r.ConversionRate = int(math.Round(float64(sold) / float64(offered) * 100))
	}
	for _, c := range categories {
		r.Categories = append(r.Categories, *c)
	}
	sort.Slice(r.Categories, func(i, j int) bool { return r.Categories[i].Category < r.Categories[j].Category })

	return r
}
