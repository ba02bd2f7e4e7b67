package auction

import (
	"time"

	"auctions/models"

	"github.com/shopspring/decimal"
)

// Resolve естественное завершение: победитель это лидер, если резерв не задан или достигнут,
// иначе аукцион не продан. Запись меняется на месте.
func Resolve(a *models.Auction, now time.Time) (models.ResolutionResult, error) {
	if a.Resolved {
		return ResultOf(a), ErrAlreadyResolved
	}
	if status := StatusAt(a, now); status != models.StatusEnded {
		return models.ResolutionResult{}, &NotActiveError{Status: status}
	}

	winner, outcome := naturalOutcome(a)
	a.Resolved = true
	a.WinnerID = winner
	a.Outcome = outcome
	a.ResolvedAt = &now
	return ResultOf(a), nil
}

func naturalOutcome(a *models.Auction) (*int64, models.Outcome) {
	if !a.CurrentHighBid.Valid || a.CurrentHighBidder == nil {
		return nil, models.OutcomeUnsold
	}
	if a.ReservePrice.Valid && a.CurrentHighBid.Decimal.LessThan(a.ReservePrice.Decimal) {
		return nil, models.OutcomeUnsold
	}
	winner := *a.CurrentHighBidder
	return &winner, models.OutcomeSold
}

// Declare ручное назначение победителя администратором. Резерв не проверяется.
// bidderHigh максимальная ставка участника; невалидное значение значит, что ставок не было.
func Declare(a *models.Auction, bidderID int64, bidderHigh decimal.NullDecimal, now time.Time) (models.ResolutionResult, error) {
	if a.Resolved {
		return ResultOf(a), ErrAlreadyResolved
	}
	if !bidderHigh.Valid {
		return models.ResolutionResult{}, ErrNotABidder
	}

	winner := bidderID
	a.Resolved = true
	a.WinnerID = &winner
	a.Outcome = models.OutcomeDeclared
	a.ResolvedAt = &now

	res := ResultOf(a)
	res.WinningBid = bidderHigh
	return res, nil
}

// ResultOf итог уже завершённого аукциона
func ResultOf(a *models.Auction) models.ResolutionResult {
	res := models.ResolutionResult{
		AuctionID: a.ID,
		Outcome:   a.Outcome,
		WinnerID:  a.WinnerID,
	}
	if a.ResolvedAt != nil {
		res.ResolvedAt = *a.ResolvedAt
	}
	if a.WinnerID != nil && a.CurrentHighBidder != nil && *a.WinnerID == *a.CurrentHighBidder {
		res.WinningBid = a.CurrentHighBid
	}
	return res
}
