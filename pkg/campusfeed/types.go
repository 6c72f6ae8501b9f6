package campusfeed

import (
	"time"
)

// SourceType identifies one of the three content streams.
type SourceType string

// Source type constants (typed).
const (
	SourceInstitute SourceType = "institute"
	SourceRecruiter SourceType = "recruiter"
	SourceStaff     SourceType = "staff"
)

// SourceTypes lists every known source type.
var SourceTypes = []SourceType{SourceInstitute, SourceRecruiter, SourceStaff}

// IsValid returns true if the source type is one of the known streams.
func (t SourceType) IsValid() bool {
	switch t {
	case SourceInstitute, SourceRecruiter, SourceStaff:
		return true
	}
	return false
}

// RecordMeta holds the fields shared by every source record. EffectiveDate
// is kept as the raw string the owner submitted; parsing happens only when
// building the feed so that a bad date never blocks a write.
type RecordMeta struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id,omitempty"`
	Title         string    `json:"title"`
	EffectiveDate string    `json:"effective_date,omitempty"`
	Details       string    `json:"details,omitempty"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	Visible       bool      `json:"visible"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Record is the common view over the three record variants. Meta returns a
// pointer into the record so adapters can stamp ids and timestamps in place.
type Record interface {
	Meta() *RecordMeta
	Source() SourceType
}

// InstituteEvent is an institution-authored event or announcement.
type InstituteEvent struct {
	RecordMeta
	Company              string `json:"company,omitempty"`
	Venue                string `json:"venue,omitempty"`
	ExpectedParticipants int    `json:"expected_participants,omitempty"`
}

func (e *InstituteEvent) Meta() *RecordMeta  { return &e.RecordMeta }
func (e *InstituteEvent) Source() SourceType { return SourceInstitute }

// RecruiterNews is a recruiter-authored news item, typically a hiring
// drive or company update.
type RecruiterNews struct {
	RecordMeta
	Company              string `json:"company,omitempty"`
	Venue                string `json:"venue,omitempty"`
	ExpectedParticipants int    `json:"expected_participants,omitempty"`
}

func (n *RecruiterNews) Meta() *RecordMeta  { return &n.RecordMeta }
func (n *RecruiterNews) Source() SourceType { return SourceRecruiter }

// StaffPost is a centrally-curated post with no owner and no extra fields.
type StaffPost struct {
	RecordMeta
}

func (p *StaffPost) Meta() *RecordMeta  { return &p.RecordMeta }
func (p *StaffPost) Source() SourceType { return SourceStaff }

// FeedItem is the normalized, read-only projection of a record used for
// the public aggregated view. It is never persisted; every aggregation
// call recomputes it. A nil EffectiveDate means the record had neither a
// parseable effective date nor a creation timestamp; such items sort last.
type FeedItem struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	Category      SourceType `json:"category"`
	EffectiveDate *time.Time `json:"effective_date,omitempty"`
	SourceLabel   string     `json:"source_label,omitempty"`
	Verified      bool       `json:"verified"`
}
