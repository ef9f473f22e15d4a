// Package report derives the sales dashboard from ledger history.
package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/noah-isme/ngepos/internal/ledger"
	"github.com/noah-isme/ngepos/internal/money"
)

const (
	trendDays       = 7
	topProductLimit = 5
	recentLimit     = 3
)

var weekdayLabels = [...]string{"Min", "Sen", "Sel", "Rab", "Kam", "Jum", "Sab"}

// DaySummary aggregates one calendar day.
type DaySummary struct {
	Date    string      `json:"date"`
	Label   string      `json:"label"`
	Count   int         `json:"count"`
	Revenue money.Money `json:"revenue"`
}

// ProductSales aggregates one product across all transactions.
type ProductSales struct {
	ProductID int64       `json:"productId"`
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	Revenue   money.Money `json:"revenue"`
}

// Dashboard is the till's summary view.
type Dashboard struct {
	TotalRevenue       money.Money          `json:"totalRevenue"`
	TodayRevenue       money.Money          `json:"todayRevenue"`
	TotalTransactions  int                  `json:"totalTransactions"`
	TodayTransactions  int                  `json:"todayTransactions"`
	AverageTransaction money.Money          `json:"averageTransaction"`
	Last7Days          []DaySummary         `json:"last7Days"`
	TopProducts        []ProductSales       `json:"topProducts"`
	RecentTransactions []ledger.Transaction `json:"recentTransactions"`
}

// Build summarizes txs, which must be newest first. Calendar days are taken in
// loc; a nil loc means UTC.
func Build(txs []ledger.Transaction, now time.Time, loc *time.Location) Dashboard {
	if loc == nil {
		loc = time.UTC
	}
	today := dayStart(now, loc)

	byDay := make(map[time.Time]*DaySummary, trendDays)
	days := make([]DaySummary, trendDays)
	for i := range days {
		d := today.AddDate(0, 0, i-(trendDays-1))
		days[i] = DaySummary{Date: d.Format(time.DateOnly), Label: weekdayLabels[d.Weekday()]}
		byDay[d] = &days[i]
	}

	var dash Dashboard
	sales := make(map[int64]*ProductSales)
	order := make([]int64, 0)
	for _, tx := range txs {
		dash.TotalRevenue += tx.TotalAmount
		day := dayStart(tx.CreatedAt, loc)
		if day.Equal(today) {
			dash.TodayRevenue += tx.TotalAmount
			dash.TodayTransactions++
		}
		if s, ok := byDay[day]; ok {
			s.Count++
			s.Revenue += tx.TotalAmount
		}
		for _, line := range tx.Items {
			ps, ok := sales[line.Product.ID]
			if !ok {
				ps = &ProductSales{ProductID: line.Product.ID, Name: line.Product.Name}
				sales[line.Product.ID] = ps
				order = append(order, line.Product.ID)
			}
			ps.Quantity += line.Quantity
			ps.Revenue += line.Subtotal()
		}
	}
	dash.TotalTransactions = len(txs)
	if len(txs) > 0 {
		dash.AverageTransaction = dash.TotalRevenue / money.Money(len(txs))
	}
	dash.Last7Days = days

	top := make([]ProductSales, 0, len(order))
	for _, id := range order {
		top = append(top, *sales[id])
	}
	slices.SortStableFunc(top, func(a, b ProductSales) int {
		return cmp.Or(
			cmp.Compare(b.Quantity, a.Quantity),
			cmp.Compare(b.Revenue, a.Revenue),
			cmp.Compare(a.Name, b.Name),
		)
	})
	if len(top) > topProductLimit {
		top = top[:topProductLimit]
	}
	dash.TopProducts = top

	recent := txs
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	dash.RecentTransactions = slices.Clone(recent)
	if dash.RecentTransactions == nil {
		dash.RecentTransactions = []ledger.Transaction{}
	}
	return dash
}

func dayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
