package auction

import (
	"time"

	"auctions/models"
)

// ApplyExtension продлевает аукцион, если принятая ставка пришла в окне перед концом.
// Число продлений ограничено MaxExtensions, end_time только растёт.
func ApplyExtension(a *models.Auction, placedAt time.Time) (*models.Extension, bool) {
	if !a.AutoExtend || a.ExtensionsApplied >= a.MaxExtensions {
		return nil, false
	}
	if a.EndTime.Sub(placedAt) >= a.ExtensionWindow.Std() {
		return nil, false
	}

	prev := a.EndTime
	a.EndTime = a.EndTime.Add(a.ExtensionDelta.Std())
	a.ExtensionsApplied++

	return &models.Extension{
		PreviousEndTime:   prev,
		EndTime:           a.EndTime,
		ExtensionsApplied: a.ExtensionsApplied,
		MaxExtensions:     a.MaxExtensions,
	}, true
}
