package trading

// ItemResolver looks up a resolved item record by its config id. Consumers
// inject a concrete resolver (see internal/catalog); a nil resolver is valid
// and simply means item names are never attached.
type ItemResolver func(itemID int64) (name string, icon string, ok bool)

// ConsolidatedEntry is one deduplicated trading-house listing, shaped for
// direct JSON serialization as the trade-decode command's output array.
type ConsolidatedEntry struct {
	PriceLuno int64                  `json:"price_luno"`
	Quantity  int64                  `json:"quantity"`
	ItemID    *int64                 `json:"item_id,omitempty"`
	ItemName  string                 `json:"item_name,omitempty"`
	Metadata  ConsolidatedMetadata   `json:"metadata"`
}

// ConsolidatedMetadata carries provenance for audit/round-trip, plus the
// resolved icon (if any) rather than the top-level entry: spec §4.6 attaches
// item_name at the top level and item_icon under metadata.
type ConsolidatedMetadata struct {
	FrameOffset    int                    `json:"frame_offset"`
	ServerSequence uint32                 `json:"server_sequence"`
	RawEntry       map[string]interface{} `json:"raw_entry"`
	ItemIcon       string                 `json:"item_icon,omitempty"`
}

type dedupKey struct {
	itemID   int64
	hasItem  bool
	price    int64
	quantity int64
}

// Consolidate deduplicates listings by (item_config_id, price_luno,
// quantity), keeping the first occurrence and preserving insertion order of
// first-seen keys. When resolve is non-nil, a match attaches the item's name
// (and icon, under metadata) to the consolidated entry.
func Consolidate(listings []Listing, resolve ItemResolver) []ConsolidatedEntry {
	seen := make(map[dedupKey]bool)
	out := make([]ConsolidatedEntry, 0, len(listings))

	for _, l := range listings {
		key := dedupKey{price: l.PriceLuno, quantity: l.Quantity}
		if l.ItemConfigID != nil {
			key.itemID = *l.ItemConfigID
			key.hasItem = true
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		entry := ConsolidatedEntry{
			PriceLuno: l.PriceLuno,
			Quantity:  l.Quantity,
			ItemID:    l.ItemConfigID,
			Metadata: ConsolidatedMetadata{
				FrameOffset:    l.FrameOffset,
				ServerSequence: l.ServerSequence,
				RawEntry:       l.RawEntry,
			},
		}

		if resolve != nil && l.ItemConfigID != nil {
			if name, icon, ok := resolve(*l.ItemConfigID); ok {
				entry.ItemName = name
				entry.Metadata.ItemIcon = icon
			}
		}

		out = append(out, entry)
	}
	return out
}
