package service

import (
	"github.com/GTDGit/gtd_giftcards/internal/models"
	"github.com/GTDGit/gtd_giftcards/pkg/bitrefill"
)

// ResolveStock checks the catalog label first and the detail flag second; the
// first signal that says out of stock wins. Anything else is in stock.
func ResolveStock(card bitrefill.GiftCard, detail *bitrefill.ProductDetails) models.StockStatus {
	if card.Label == bitrefill.LabelOutOfStock {
		return models.StockOutOfStock
	}
	if detail != nil && detail.OutOfStock {
		return models.StockOutOfStock
	}
	return models.StockInStock
}
