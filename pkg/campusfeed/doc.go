// Package campusfeed provides a multi-source content aggregation,
// moderation, and asset-lifecycle library.
//
// Three independently-owned content streams (institute events, recruiter
// news, centrally-curated staff posts) are merged into one ranked public
// feed. A single moderation gateway gives administrators uniform
// visibility toggling and deletion across all three streams, broadcasting
// every mutation to connected admin sessions through a fanout hub. Binary
// attachments referenced by records are managed by an asset lifecycle
// manager over a pluggable blob store.
//
// Basic usage:
//
//	store := memstore.New()
//	institute := campusfeed.NewInstituteAdapter(store)
//	recruiter := campusfeed.NewRecruiterAdapter(store)
//	staff := campusfeed.NewStaffAdapter(store)
//
//	gw, err := campusfeed.NewGateway(
//	    campusfeed.WithSource(institute.AsSource()),
//	    campusfeed.WithSource(recruiter.AsSource()),
//	    campusfeed.WithSource(staff.AsSource()),
//	)
package campusfeed
