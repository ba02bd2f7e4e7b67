package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"auctions/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("not found")
	// ErrConflict запись изменилась с момента чтения, операцию нужно пересчитать
	ErrConflict = errors.New("concurrent modification")
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Auction (Аукцион)

func (s *Storage) CreateAuction(ctx context.Context, a *models.Auction) error {
	query := `
        INSERT INTO auction
            (title, description, starting_bid, reserve_price, bid_increment, start_time, end_time,
             auto_extend, max_extensions, extension_window_ms, extension_delta_ms)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, created_at, updated_at`
	return s.db.QueryRowContext(ctx, query,
		a.Title, a.Description, a.StartingBid, a.ReservePrice, a.BidIncrement, a.StartTime, a.EndTime,
		a.AutoExtend, a.MaxExtensions, a.ExtensionWindow, a.ExtensionDelta).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (s *Storage) GetAuction(ctx context.Context, id int64) (*models.Auction, error) {
	a := &models.Auction{}
	query := `SELECT * FROM auction WHERE id=$1`
	err := s.db.GetContext(ctx, a, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Storage) ListAuctions(ctx context.Context, limit, offset int) ([]models.Auction, error) {
	query := `
        SELECT * FROM auction
        ORDER BY end_time ASC, id ASC
        LIMIT $1 OFFSET $2`
	auctions := []models.Auction{}
	err := s.db.SelectContext(ctx, &auctions, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return auctions, nil
}

// ListDueAuctions id незавершённых аукционов, у которых вышло время
func (s *Storage) ListDueAuctions(ctx context.Context, now time.Time) ([]int64, error) {
	query := `SELECT id FROM auction WHERE NOT resolved AND end_time <= $1 ORDER BY end_time ASC`
	ids := []int64{}
	err := s.db.SelectContext(ctx, &ids, query, now)
	return ids, err
}

// AppendBid атомарно дописывает ставку в журнал и обновляет лидера, end_time и число продлений.
// Запись аукциона обновляется только если с момента чтения не было других ставок и итога.
func (s *Storage) AppendBid(ctx context.Context, a *models.Auction, b *models.Bid) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	query := `
        UPDATE auction
        SET current_high_bid=$1, current_high_bidder=$2, bid_count=$3,
            end_time=$4, extensions_applied=$5, updated_at=NOW()
        WHERE id=$6 AND bid_count=$7 AND NOT resolved AND end_time <= $4`
	res, err := tx.ExecContext(ctx, query,
		a.CurrentHighBid, a.CurrentHighBidder, a.BidCount,
		a.EndTime, a.ExtensionsApplied, a.ID, b.SequenceNumber-1)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}

	insert := `
        INSERT INTO bid (auction_id, bidder_id, amount, placed_at, sequence_number, is_auto)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`
	err = tx.QueryRowContext(ctx, insert,
		b.AuctionID, b.BidderID, b.Amount, b.PlacedAt, b.SequenceNumber, b.IsAuto).
		Scan(&b.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}

	return tx.Commit()
}

// SaveResolution фиксирует итог. Возвращает false, если аукцион уже был завершён кем-то другим.
func (s *Storage) SaveResolution(ctx context.Context, a *models.Auction) (bool, error) {
	query := `
        UPDATE auction
        SET resolved=TRUE, winner_id=$1, outcome=$2, resolved_at=$3, updated_at=NOW()
        WHERE id=$4 AND NOT resolved`
	res, err := s.db.ExecContext(ctx, query, a.WinnerID, a.Outcome, a.ResolvedAt, a.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Bid (Ставка)

func (s *Storage) ListBids(ctx context.Context, auctionID int64) ([]models.Bid, error) {
	query := `SELECT * FROM bid WHERE auction_id=$1 ORDER BY sequence_number ASC`
	bids := []models.Bid{}
	err := s.db.SelectContext(ctx, &bids, query, auctionID)
	return bids, err
}

func (s *Storage) BidderHighBid(ctx context.Context, auctionID, bidderID int64) (decimal.NullDecimal, error) {
	var high decimal.NullDecimal
	query := `SELECT MAX(amount) FROM bid WHERE auction_id=$1 AND bidder_id=$2`
	err := s.db.GetContext(ctx, &high, query, auctionID, bidderID)
	return high, err
}

func (s *Storage) ListBidderSummaries(ctx context.Context, auctionID int64) ([]models.BidderSummary, error) {
	query := `
        SELECT b.bidder_id,
               COALESCE(p.user_id, 0) AS user_id,
               COALESCE(p.name, '')   AS name,
               COALESCE(p.email, '')  AS email,
               MAX(b.amount)          AS highest_bid,
               COUNT(*)               AS total_bids
        FROM bid b
        LEFT JOIN bidder p ON p.id = b.bidder_id
        WHERE b.auction_id = $1
        GROUP BY b.bidder_id, p.user_id, p.name, p.email
        ORDER BY highest_bid DESC, b.bidder_id ASC`
	summaries := []models.BidderSummary{}
	err := s.db.SelectContext(ctx, &summaries, query, auctionID)
	return summaries, err
}

// Bidder (Участник)

func (s *Storage) CreateBidder(ctx context.Context, b *models.Bidder) error {
	query := `
        INSERT INTO bidder (user_id, name, email)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	return s.db.QueryRowContext(ctx, query, b.UserID, b.Name, b.Email).Scan(&b.ID, &b.CreatedAt)
}

func (s *Storage) GetBidder(ctx context.Context, id int64) (*models.Bidder, error) {
	b := &models.Bidder{}
	query := `SELECT * FROM bidder WHERE id=$1`
	err := s.db.GetContext(ctx, b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// Watchers (Наблюдатели)

func (s *Storage) Watch(ctx context.Context, auctionID, bidderID int64) (int, error) {
	query := `
        INSERT INTO auction_watcher (auction_id, bidder_id)
        VALUES ($1, $2)
        ON CONFLICT (auction_id, bidder_id) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, query, auctionID, bidderID); err != nil {
		return 0, fmt.Errorf("watch: %w", err)
	}
	return s.WatcherCount(ctx, auctionID)
}

func (s *Storage) Unwatch(ctx context.Context, auctionID, bidderID int64) (int, error) {
	query := `DELETE FROM auction_watcher WHERE auction_id=$1 AND bidder_id=$2`
	if _, err := s.db.ExecContext(ctx, query, auctionID, bidderID); err != nil {
		return 0, fmt.Errorf("unwatch: %w", err)
	}
	return s.WatcherCount(ctx, auctionID)
}

func (s *Storage) WatcherCount(ctx context.Context, auctionID int64) (int, error) {
	var count int
	query := `SELECT COUNT(1) FROM auction_watcher WHERE auction_id=$1`
	err := s.db.GetContext(ctx, &count, query, auctionID)
	return count, err
}
