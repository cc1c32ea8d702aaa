package memory

import "sort"

// prune keeps the top limit records ordered by (importance desc,
// updatedAt desc). The on-disk record count never exceeds the bound.
func prune(records []Record, limit int) []Record {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Importance != records[j].Importance {
			return records[i].Importance > records[j].Importance
		}
		return records[i].UpdatedAt > records[j].UpdatedAt
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records
}
