package campusfeed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/campus-feed/pkg/campusfeed"
	memstore "github.com/campushub/campus-feed/pkg/campusfeed/store/memory"
)

func setupInstituteAdapter(t *testing.T) *campusfeed.Adapter[campusfeed.InstituteEvent, *campusfeed.InstituteEvent] {
	t.Helper()
	return campusfeed.NewInstituteAdapter(memstore.New())
}

func setupStaffAdapter(t *testing.T) *campusfeed.Adapter[campusfeed.StaffPost, *campusfeed.StaffPost] {
	t.Helper()
	return campusfeed.NewStaffAdapter(memstore.New())
}

func TestAdapterCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id, visibility and timestamps", func(t *testing.T) {
		adapter := setupInstituteAdapter(t)

		rec, err := adapter.Create(ctx, &campusfeed.InstituteEvent{
			RecordMeta: campusfeed.RecordMeta{OwnerID: "tpo-1", Title: "Tech Fest"},
			Venue:      "Main Auditorium",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, rec.ID)
		assert.True(t, rec.Visible)
		assert.False(t, rec.CreatedAt.IsZero())
		assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
	})

	t.Run("rejects missing title", func(t *testing.T) {
		adapter := setupInstituteAdapter(t)

		_, err := adapter.Create(ctx, &campusfeed.InstituteEvent{
			RecordMeta: campusfeed.RecordMeta{OwnerID: "tpo-1"},
		})

		var verr *campusfeed.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "title", verr.Field)
	})

	t.Run("composite adapter rejects missing owner", func(t *testing.T) {
		adapter := setupInstituteAdapter(t)

		_, err := adapter.Create(ctx, &campusfeed.InstituteEvent{
			RecordMeta: campusfeed.RecordMeta{Title: "Tech Fest"},
		})

		var verr *campusfeed.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "owner_id", verr.Field)
	})

	t.Run("ownerless source accepts missing owner", func(t *testing.T) {
		adapter := setupStaffAdapter(t)

		rec, err := adapter.Create(ctx, &campusfeed.StaffPost{
			RecordMeta: campusfeed.RecordMeta{Title: "Holiday Notice"},
		})
		require.NoError(t, err)
		assert.Empty(t, rec.OwnerID)
	})
}

func TestAdapterGet(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves by logical id despite composite physical key", func(t *testing.T) {
		adapter := setupInstituteAdapter(t)

		created, err := adapter.Create(ctx, &campusfeed.InstituteEvent{
			RecordMeta: campusfeed.RecordMeta{OwnerID: "tpo-1", Title: "Tech Fest"},
		})
		require.NoError(t, err)

		got, err := adapter.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "tpo-1", got.OwnerID)
		assert.Equal(t, "Tech Fest", got.Title)
	})

	t.Run("unknown id yields ErrRecordNotFound", func(t *testing.T) {
		adapter := setupInstituteAdapter(t)

		_, err := adapter.Get(ctx, "no-such-id")
		assert.ErrorIs(t, err, campusfeed.ErrRecordNotFound)
	})

	t.Run("wraps the source and op", func(t *testing.T) {
		adapter := setupStaffAdapter(t)

		_, err := adapter.Get(ctx, "missing")

		var rerr *campusfeed.RecordError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, campusfeed.SourceStaff, rerr.Source)
		assert.Equal(t, "missing", rerr.ID)
	})
}

func TestAdapterListByOwner(t *testing.T) {
	ctx := context.Background()
	adapter := setupInstituteAdapter(t)

	for _, title := range []string{"Tech Fest", "Orientation"} {
		_, err := adapter.Create(ctx, &campusfeed.InstituteEvent{
			RecordMeta: campusfeed.RecordMeta{OwnerID: "tpo-1", Title: title},
		})
		require.NoError(t, err)
	}
	_, err := adapter.Create(ctx, &campusfeed.InstituteEvent{
		RecordMeta: campusfeed.RecordMeta{OwnerID: "tpo-2", Title: "Convocation"},
	})
	require.NoError(t, err)

	recs, err := adapter.ListByOwner(ctx, "tpo-1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.Equal(t, "tpo-1", rec.OwnerID)
	}

	recs, err = adapter.ListByOwner(ctx, "tpo-3")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestAdapterUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update leaves untouched fields intact", func(t *testing.T) {
		adapter := setupInstituteAdapter(t)

		created, err := adapter.Create(ctx, &campusfeed.InstituteEvent{
			RecordMeta: campusfeed.RecordMeta{OwnerID: "tpo-1", Title: "Tech Fest", Details: "annual fest"},
			Venue:      "Main Auditorium",
		})
		require.NoError(t, err)

		updated, err := adapter.Update(ctx, created.ID, func(rec *campusfeed.InstituteEvent) error {
			rec.Venue = "Open Grounds"
			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, "Open Grounds", updated.Venue)
		assert.Equal(t, "Tech Fest", updated.Title)
		assert.Equal(t, "annual fest", updated.Details)
	})

	t.Run("identity fields survive a hostile mutator", func(t *testing.T) {
		adapter := setupInstituteAdapter(t)

		created, err := adapter.Create(ctx, &campusfeed.InstituteEvent{
			RecordMeta: campusfeed.RecordMeta{OwnerID: "tpo-1", Title: "Tech Fest"},
		})
		require.NoError(t, err)

		updated, err := adapter.Update(ctx, created.ID, func(rec *campusfeed.InstituteEvent) error {
			rec.ID = "forged"
			rec.OwnerID = "someone-else"
			rec.CreatedAt = time.Time{}
			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "tpo-1", updated.OwnerID)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	})

	t.Run("restamps UpdatedAt", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		adapter := campusfeed.NewStaffAdapter(memstore.New(),
			campusfeed.WithClock(func() time.Time { return now }))

		created, err := adapter.Create(ctx, &campusfeed.StaffPost{
			RecordMeta: campusfeed.RecordMeta{Title: "Notice"},
		})
		require.NoError(t, err)

		now = now.Add(time.Hour)
		updated, err := adapter.Update(ctx, created.ID, func(rec *campusfeed.StaffPost) error {
			rec.Details = "revised"
			return nil
		})
		require.NoError(t, err)
		assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
	})

	t.Run("mutator error aborts the write", func(t *testing.T) {
		adapter := setupStaffAdapter(t)

		created, err := adapter.Create(ctx, &campusfeed.StaffPost{
			RecordMeta: campusfeed.RecordMeta{Title: "Notice"},
		})
		require.NoError(t, err)

		boom := errors.New("boom")
		_, err = adapter.Update(ctx, created.ID, func(rec *campusfeed.StaffPost) error {
			rec.Title = "changed"
			return boom
		})
		require.ErrorIs(t, err, boom)

		got, err := adapter.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Notice", got.Title)
	})
}

func TestAdapterVisibility(t *testing.T) {
	ctx := context.Background()
	adapter := setupStaffAdapter(t)

	created, err := adapter.Create(ctx, &campusfeed.StaffPost{
		RecordMeta: campusfeed.RecordMeta{Title: "Notice"},
	})
	require.NoError(t, err)
	require.True(t, created.Visible)

	t.Run("toggle flips the flag", func(t *testing.T) {
		rec, err := adapter.ToggleVisibility(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, rec.Visible)

		rec, err = adapter.ToggleVisibility(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, rec.Visible)
	})

	t.Run("set writes an explicit end state", func(t *testing.T) {
		rec, err := adapter.SetVisibility(ctx, created.ID, false)
		require.NoError(t, err)
		assert.False(t, rec.Visible)

		// Setting the same state again is a no-op on the end state.
		rec, err = adapter.SetVisibility(ctx, created.ID, false)
		require.NoError(t, err)
		assert.False(t, rec.Visible)
	})
}

func TestAdapterDelete(t *testing.T) {
	ctx := context.Background()
	adapter := setupInstituteAdapter(t)

	created, err := adapter.Create(ctx, &campusfeed.InstituteEvent{
		RecordMeta: campusfeed.RecordMeta{OwnerID: "tpo-1", Title: "Tech Fest"},
	})
	require.NoError(t, err)

	require.NoError(t, adapter.Delete(ctx, created.ID))

	_, err = adapter.Get(ctx, created.ID)
	assert.ErrorIs(t, err, campusfeed.ErrRecordNotFound)

	err = adapter.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, campusfeed.ErrRecordNotFound)
}

func TestSourceViewCreateRejectsWrongVariant(t *testing.T) {
	ctx := context.Background()
	src := setupStaffAdapter(t).AsSource()

	_, err := src.Create(ctx, &campusfeed.RecruiterNews{
		RecordMeta: campusfeed.RecordMeta{OwnerID: "rec-1", Title: "Hiring Drive"},
	})
	assert.ErrorIs(t, err, campusfeed.ErrUnknownSource)
}
