package financial

import (
	"sort"

	"github.com/google/uuid"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/payments"
)

// Dashboard is the headline numbers of the console's home page.
type Dashboard struct {
	TotalClients   int     `json:"total_clients"`
	ActiveAuctions int     `json:"active_auctions"`
	TotalItems     int     `json:"total_items"`
	Revenue        float64 `json:"revenue"`
}

// ClientBalance is what one client owes and has paid.
type ClientBalance struct {
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
	Pending  float64   `json:"pending"`
	Paid     float64   `json:"paid"`
	LTV      float64   `json:"ltv"`
}

// PaymentLine is a payment as listed in the pending and history tables.
type PaymentLine struct {
	payments.PaymentView
	AuctionName string  `json:"auction_name"`
	Profit      float64 `json:"profit"`
}

// BuildDashboard counts clients, live auctions and cards, and sums paid revenue.
func BuildDashboard(clients []models.Client, auctions []models.Auction, cards []models.Card, pays []models.Payment) *Dashboard {
	d := &Dashboard{
		TotalClients: len(clients),
		TotalItems:   len(cards),
	}
	for _, a := range auctions {
		if a.Status == models.AuctionStatusLive {
			d.ActiveAuctions++
		}
	}
	for _, p := range pays {
		if p.Status == models.PaymentStatusPaid {
			d.Revenue += p.Amount
		}
	}
	return d
}

// ClientBalances sums pending and paid amounts per client, highest LTV first.
// Clients without payments are listed with zero balances.
func ClientBalances(clients []models.Client, pays []models.Payment) []ClientBalance {
	byID := make(map[uuid.UUID]*ClientBalance, len(clients))
	out := make([]*ClientBalance, 0, len(clients))
	for _, c := range clients {
		b := &ClientBalance{ClientID: c.ID, Name: c.Name}
		byID[c.ID] = b
		out = append(out, b)
	}
	for _, p := range pays {
		b, ok := byID[p.ClientID]
		if !ok {
			b = &ClientBalance{ClientID: p.ClientID, Name: payments.UnknownClient}
			byID[p.ClientID] = b
			out = append(out, b)
		}
		switch p.Status {
		case models.PaymentStatusPending:
			b.Pending += p.Amount
		case models.PaymentStatusPaid:
			b.Paid += p.Amount
		}
	}

	balances := make([]ClientBalance, len(out))
	for i, b := range out {
		b.LTV = b.Pending + b.Paid
		balances[i] = *b
	}
	sort.SliceStable(balances, func(i, j int) bool {
		if balances[i].LTV != balances[j].LTV {
			return balances[i].LTV > balances[j].LTV
		}
		return balances[i].Name < balances[j].Name
	})
	return balances
}

// PaymentLines filters views by status and names their auction.
func PaymentLines(views []payments.PaymentView, auctions []models.Auction, status models.PaymentStatus) []PaymentLine {
	names := make(map[uuid.UUID]string, len(auctions))
	for _, a := range auctions {
		names[a.ID] = a.Name
	}
	out := []PaymentLine{}
	for _, v := range views {
		if v.Status != status {
			continue
		}
		line := PaymentLine{PaymentView: v, Profit: v.Amount - v.TotalCost}
		if v.AuctionID != nil {
			line.AuctionName = names[*v.AuctionID]
		}
		out = append(out, line)
	}
	return out
}
