package wishlist

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Deal is one discounted wishlist item in a digest.
type Deal struct {
	AppID           int64
	Name            string
	DiscountPercent int
	FinalPrice      string
	OriginalPrice   string
}

// Digest assembles the channel's sale digest: a current price snapshot per
// watched item, filtered to live discounts, ranked steepest discount first
// then by name, capped at MaxDigestItems. An empty slice means the channel
// gets no message today.
//
// A single item's snapshot failure is logged and skipped; it never aborts
// the rest of the channel.
func (s *Service) Digest(ctx context.Context, guildID, channelID int64) ([]Deal, error) {
	entries, err := s.entries.ListForChannel(ctx, guildID, channelID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	deals := make([]Deal, 0, len(entries))
	for _, e := range entries {
		price, err := s.catalog.PriceSnapshot(ctx, e.AppID)
		if err != nil {
			s.log.WarnContext(ctx, "price snapshot failed",
				slog.Int64("guild_id", guildID),
				slog.Int64("app_id", e.AppID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !price.OnSale() {
			continue
		}
		deals = append(deals, Deal{
			AppID:           e.AppID,
			Name:            e.Name,
			DiscountPercent: price.DiscountPercent,
			FinalPrice:      price.FinalFormatted,
			OriginalPrice:   price.InitialFormatted,
		})
	}

	sort.Slice(deals, func(i, j int) bool {
		if deals[i].DiscountPercent != deals[j].DiscountPercent {
			return deals[i].DiscountPercent > deals[j].DiscountPercent
		}
		return deals[i].Name < deals[j].Name
	})
	if len(deals) > MaxDigestItems {
		deals = deals[:MaxDigestItems]
	}
	return deals, nil
}
