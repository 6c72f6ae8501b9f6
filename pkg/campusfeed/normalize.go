package campusfeed

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
)

// Layouts accepted for owner-submitted effective dates.
var effectiveDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Normalize projects one record into its public feed shape. Every record
// variant has exactly one normalization path; the switch below must stay
// exhaustive over the Record implementations.
func Normalize(rec Record) FeedItem {
	m := rec.Meta()
	item := FeedItem{
		ID:            fmt.Sprintf("%s:%s", rec.Source(), m.ID),
		Title:         m.Title,
		Description:   m.Details,
		ImageURL:      m.AttachmentURL,
		Category:      rec.Source(),
		EffectiveDate: effectiveTime(m),
	}

	switch r := rec.(type) {
	case *InstituteEvent:
		item.SourceLabel = "Institute Desk"
	case *RecruiterNews:
		item.SourceLabel = r.Company
		if item.SourceLabel == "" {
			item.SourceLabel = "Recruiter"
		}
	case *StaffPost:
		item.SourceLabel = "Staff Desk"
		item.Verified = true
	}

	return item
}

// effectiveTime parses the submitted effective date, falling back to the
// creation timestamp. Returns nil when neither is usable; such items sort
// after every dated item.
func effectiveTime(m *RecordMeta) *time.Time {
	for _, layout := range effectiveDateLayouts {
		if t, err := time.Parse(layout, m.EffectiveDate); err == nil {
			return &t
		}
	}
	if !m.CreatedAt.IsZero() {
		t := m.CreatedAt
		return &t
	}
	return nil
}

// normalizeVisible drops hidden records and maps the rest to feed items.
func normalizeVisible(recs []Record) []FeedItem {
	return lo.FilterMap(recs, func(rec Record, _ int) (FeedItem, bool) {
		if !rec.Meta().Visible {
			return FeedItem{}, false
		}
		return Normalize(rec), true
	})
}

// sortFeed orders items by effective date descending; dateless items sort
// last; ties break by id ascending for deterministic output.
func sortFeed(items []FeedItem) {
	sort.Slice(items, func(i, j int) bool {
		di, dj := items[i].EffectiveDate, items[j].EffectiveDate
		switch {
		case di == nil && dj == nil:
			return items[i].ID < items[j].ID
		case di == nil:
			return false
		case dj == nil:
			return true
		}
		if !di.Equal(*dj) {
			return di.After(*dj)
		}
		return items[i].ID < items[j].ID
	})
}
