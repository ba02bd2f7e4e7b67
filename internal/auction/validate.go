package auction

import (
	"strings"
	"time"

	"auctions/models"

	"github.com/shopspring/decimal"
)

// MinAcceptable минимальная сумма следующей ставки
func MinAcceptable(a *models.Auction) decimal.Decimal {
	if a.CurrentHighBid.Valid {
		return a.CurrentHighBid.Decimal.Add(a.BidIncrement)
	}
	return a.StartingBid
}

// ValidateBid проверяет ставку против статуса и правила минимального шага.
// Резервная цена на приём ставки не влияет.
func ValidateBid(a *models.Auction, amount decimal.Decimal, now time.Time) error {
	if status := StatusAt(a, now); status != models.StatusActive {
		return &NotActiveError{Status: status}
	}
	if minAmount := MinAcceptable(a); amount.LessThan(minAmount) {
		return &BidTooLowError{Amount: amount, MinAcceptable: minAmount}
	}
	return nil
}

// ValidateNew проверяет инварианты записи, передаваемой движку
func ValidateNew(a *models.Auction) error {
	if strings.TrimSpace(a.Title) == "" || len(a.Title) > 100 {
		return invalid("title is required and max length 100")
	}
	if len(a.Description) > 1000 {
		return invalid("description max length 1000")
	}
	if a.StartingBid.IsNegative() {
		return invalid("startingBid must be >= 0")
	}
	if !a.BidIncrement.IsPositive() {
		return invalid("bidIncrement must be > 0")
	}
	if a.ReservePrice.Valid && a.ReservePrice.Decimal.LessThan(a.StartingBid) {
		return invalid("reservePrice must be >= startingBid")
	}
	if a.StartTime.IsZero() || a.EndTime.IsZero() {
		return invalid("startTime and endTime are required")
	}
	if !a.EndTime.After(a.StartTime) {
		return invalid("endTime must be after startTime")
	}
	if a.MaxExtensions < 0 {
		return invalid("maxExtensions must be >= 0")
	}
	if a.ExtensionWindow < 0 || a.ExtensionDelta < 0 {
		return invalid("extension durations must be >= 0")
	}
	if a.AutoExtend && (a.ExtensionWindow <= 0 || a.ExtensionDelta <= 0) {
		return invalid("extensionWindow and extensionDelta are required when autoExtend is set")
	}
	if a.CurrentHighBid.Valid || a.CurrentHighBidder != nil || a.BidCount != 0 ||
		a.ExtensionsApplied != 0 || a.Resolved || a.WinnerID != nil {
		return invalid("engine-owned fields must be empty on creation")
	}
	return nil
}
