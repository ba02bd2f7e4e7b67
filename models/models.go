package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Статус аукциона, всегда вычисляется из времени и флага resolved
type Status string

const (
	StatusUpcoming   Status = "upcoming"
	StatusActive     Status = "active"
	StatusEndingSoon Status = "ending_soon"
	StatusEnded      Status = "ended"
	StatusFinalized  Status = "finalized"
)

// Итог завершения аукциона
type Outcome string

const (
	OutcomeNone     Outcome = ""
	OutcomeSold     Outcome = "sold"
	OutcomeUnsold   Outcome = "unsold"
	OutcomeDeclared Outcome = "declared"
)

// Сущность Аукциона
type Auction struct {
	ID                int64               `db:"id" json:"id"`
	Title             string              `db:"title" json:"title"`
	Description       string              `db:"description" json:"description"`
	StartingBid       decimal.Decimal     `db:"starting_bid" json:"startingBid"`
	ReservePrice      decimal.NullDecimal `db:"reserve_price" json:"reservePrice"`
	BidIncrement      decimal.Decimal     `db:"bid_increment" json:"bidIncrement"`
	StartTime         time.Time           `db:"start_time" json:"startTime"`
	EndTime           time.Time           `db:"end_time" json:"endTime"`
	AutoExtend        bool                `db:"auto_extend" json:"autoExtend"`
	MaxExtensions     int                 `db:"max_extensions" json:"maxExtensions"`
	ExtensionWindow   Duration            `db:"extension_window_ms" json:"extensionWindow"`
	ExtensionDelta    Duration            `db:"extension_delta_ms" json:"extensionDelta"`
	CurrentHighBid    decimal.NullDecimal `db:"current_high_bid" json:"currentHighBid"`
	CurrentHighBidder *int64              `db:"current_high_bidder" json:"currentHighBidder"`
	BidCount          int64               `db:"bid_count" json:"bidCount"`
	ExtensionsApplied int                 `db:"extensions_applied" json:"extensionsApplied"`
	Resolved          bool                `db:"resolved" json:"resolved"`
	WinnerID          *int64              `db:"winner_id" json:"winnerId"`
	Outcome           Outcome             `db:"outcome" json:"outcome,omitempty"`
	ResolvedAt        *time.Time          `db:"resolved_at" json:"resolvedAt,omitempty"`
	CreatedAt         time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time           `db:"updated_at" json:"-"`
}

// AuctionView то, что видят UI и клиенты: запись плюс производный статус
type AuctionView struct {
	Auction
	Status       Status `json:"status"`
	EndingSoon   bool   `json:"endingSoon"`
	WatcherCount int    `json:"watcherCount"`
}

// Сущность Ставки, запись append-only журнала
type Bid struct {
	ID             int64           `db:"id" json:"id"`
	AuctionID      int64           `db:"auction_id" json:"auctionId"`
	BidderID       int64           `db:"bidder_id" json:"bidderId"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	PlacedAt       time.Time       `db:"placed_at" json:"placedAt"`
	SequenceNumber int64           `db:"sequence_number" json:"sequenceNumber"`
	IsAuto         bool            `db:"is_auto" json:"isAuto"`
}

// Сущность Участника торгов
type Bidder struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// BidderSummary сводка по участнику в рамках одного аукциона (только чтение)
type BidderSummary struct {
	BidderID           int64           `db:"bidder_id" json:"bidderId"`
	UserID             int64           `db:"user_id" json:"userId"`
	Name               string          `db:"name" json:"name"`
	Email              string          `db:"email" json:"email"`
	HighestBidByBidder decimal.Decimal `db:"highest_bid" json:"highestBidByBidder"`
	TotalBids          int             `db:"total_bids" json:"totalBids"`
}

type BidOutcome string

const (
	BidAccepted BidOutcome = "accepted"
	BidRejected BidOutcome = "rejected"
)

// BidResult ответ на попытку сделать ставку
type BidResult struct {
	Outcome        BidOutcome          `json:"outcome"`
	Reason         string              `json:"reason,omitempty"`
	MinAcceptable  decimal.NullDecimal `json:"minAcceptable"`
	SequenceNumber int64               `json:"sequenceNumber,omitempty"`
	Bid            *Bid                `json:"bid,omitempty"`
	EndTime        time.Time           `json:"endTime"`
	Extended       bool                `json:"extended"`
}

// ResolutionResult итог определения победителя
type ResolutionResult struct {
	AuctionID  int64               `json:"auctionId"`
	Outcome    Outcome             `json:"outcome"`
	WinnerID   *int64              `json:"winnerId"`
	WinningBid decimal.NullDecimal `json:"winningBid"`
	ResolvedAt time.Time           `json:"resolvedAt"`
}

// Extension данные о продлении аукциона
type Extension struct {
	PreviousEndTime   time.Time `json:"previousEndTime"`
	EndTime           time.Time `json:"endTime"`
	ExtensionsApplied int       `json:"extensionsApplied"`
	MaxExtensions     int       `json:"maxExtensions"`
}

type EventType string

const (
	EventBidPlaced       EventType = "bid_placed"
	EventAuctionExtended EventType = "auction_extended"
	EventAuctionResolved EventType = "auction_resolved"
)

// Event событие для UI и сервисов уведомлений; заполнено ровно одно из Bid, Extension, Resolution
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Seq        uint64            `json:"seq"`
	Type       EventType         `json:"type"`
	AuctionID  int64             `json:"auctionId"`
	Timestamp  time.Time         `json:"timestamp"`
	Bid        *Bid              `json:"bid,omitempty"`
	Extension  *Extension        `json:"extension,omitempty"`
	Resolution *ResolutionResult `json:"resolution,omitempty"`
}
