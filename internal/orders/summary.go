package orders

import (
	"sort"

	"github.com/batcom-app/batcom-backend/pkg/db/models"
)

// UserDebt is one user's outstanding balance across unpaid orders, with the
// order dates it covers.
type UserDebt struct {
	UserID     string   `json:"userId"`
	UserName   string   `json:"userName"`
	Total      int64    `json:"total"`
	OrderCount int      `json:"orderCount"`
	Dates      []string `json:"dates"`
}

// BuildUnpaidSummary groups unpaid orders per user and ranks them by
// outstanding total, largest first. Aggregation happens here rather than in
// SQL so the grouping works identically on every driver.
func BuildUnpaidSummary(unpaid []models.Order) []UserDebt {
	byUser := make(map[string]*UserDebt)
	order := make([]string, 0)

	for _, row := range unpaid {
		debt, ok := byUser[row.UserID]
		if !ok {
			debt = &UserDebt{UserID: row.UserID, UserName: row.UserName}
			byUser[row.UserID] = debt
			order = append(order, row.UserID)
		}
		debt.Total += row.Amount
		debt.OrderCount++
		if len(debt.Dates) == 0 || debt.Dates[len(debt.Dates)-1] != row.OrderDate {
			debt.Dates = append(debt.Dates, row.OrderDate)
		}
	}

	summary := make([]UserDebt, 0, len(order))
	for _, userID := range order {
		summary = append(summary, *byUser[userID])
	}
	sort.SliceStable(summary, func(i, j int) bool {
		return summary[i].Total > summary[j].Total
	})
	return summary
}
