package auction

import (
	"errors"
	"fmt"

	"auctions/models"

	"github.com/shopspring/decimal"
)

var (
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrAuctionNotActive = errors.New("auction is not active")
	ErrAlreadyResolved  = errors.New("auction already resolved")
	ErrBidTooLow        = errors.New("bid too low")
	ErrNotABidder       = errors.New("bidder has no bids on this auction")
	ErrInvalidAuction   = errors.New("invalid auction")
)

// BidTooLowError несёт минимально допустимую сумму, чтобы клиент мог повторить ставку
type BidTooLowError struct {
	Amount        decimal.Decimal
	MinAcceptable decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid %s is below minimum acceptable %s", e.Amount, e.MinAcceptable)
}

func (e *BidTooLowError) Unwrap() error { return ErrBidTooLow }

// NotActiveError аукцион не принимает ставки в текущем статусе
type NotActiveError struct {
	Status models.Status
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("auction is not active: status %s", e.Status)
}

func (e *NotActiveError) Unwrap() error { return ErrAuctionNotActive }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidAuction, fmt.Sprintf(format, args...))
}
