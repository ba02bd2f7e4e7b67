// Package auction содержит чистые правила жизненного цикла аукциона:
// статус, проверку ставок, автопродление и определение победителя.
// Функции не делают ввода-вывода и не захватывают блокировок.
package auction

import (
	"time"

	"auctions/models"
)

// Phase результат вычисления статуса. EndingSoon уточняет active и нигде не хранится.
type Phase struct {
	Status     models.Status
	EndingSoon bool
}

// Display статус для показа: ending_soon вместо active, если до конца меньше окна продления
func (p Phase) Display() models.Status {
	if p.Status == models.StatusActive && p.EndingSoon {
		return models.StatusEndingSoon
	}
	return p.Status
}

// Evaluate вычисляет статус аукциона на момент now
func Evaluate(a *models.Auction, now time.Time) Phase {
	switch {
	case a.Resolved:
		return Phase{Status: models.StatusFinalized}
	case now.Before(a.StartTime):
		return Phase{Status: models.StatusUpcoming}
	case now.Before(a.EndTime):
		window := a.ExtensionWindow.Std()
		return Phase{
			Status:     models.StatusActive,
			EndingSoon: window > 0 && a.EndTime.Sub(now) < window,
		}
	default:
		return Phase{Status: models.StatusEnded}
	}
}

func StatusAt(a *models.Auction, now time.Time) models.Status {
	return Evaluate(a, now).Status
}

// NeedsResolution true, когда время вышло, а победитель ещё не определён
func NeedsResolution(a *models.Auction, now time.Time) bool {
	return StatusAt(a, now) == models.StatusEnded
}

// View собирает представление аукциона для клиентов
func View(a *models.Auction, now time.Time, watchers int) models.AuctionView {
	phase := Evaluate(a, now)
	return models.AuctionView{
		Auction:      *a,
		Status:       phase.Display(),
		EndingSoon:   phase.EndingSoon,
		WatcherCount: watchers,
	}
}
