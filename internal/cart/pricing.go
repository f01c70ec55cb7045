package cart

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemView is one priced cart line.
type ItemView struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// View is a priced snapshot of a cart. Items are ordered by product ID so the
// same cart always renders identically.
type View struct {
	Items      []ItemView      `json:"items"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// Price computes line totals and the grand total for a cart. It is a pure
// function of its input: no storage, clock, or catalog access.
func Price(c Cart) View {
	items := make([]ItemView, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, ItemView{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].ProductID.String() < items[j].ProductID.String()
	})

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}

	return View{Items: items, GrandTotal: total.Round(2)}
}
