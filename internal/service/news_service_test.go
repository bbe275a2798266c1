package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/events"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func TestNewsLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", "admin@example.com", true)
	reader := f.user(t, "reader", "reader@example.com", false)

	_, err := f.news.Create(ctx, reader, NewsInput{Title: "t", Content: "c"})
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.news.Create(ctx, admin, NewsInput{Title: "", Content: "c"})
	requireCode(t, err, apperrors.CodeValidationFailed)

	post, err := f.news.Create(ctx, admin, NewsInput{
		Title:   "Maintenance",
		Content: "Saturday",
		Images:  []string{"a.png", " ", "b.png", "a.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png"}, post.Images)
	assert.Equal(t, "admin", post.AuthorName)

	got, err := f.news.Get(ctx, reader, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maintenance", got.Title)

	updated, err := f.news.Update(ctx, admin, post.ID, NewsUpdateInput{Images: &[]string{"b.png", "c.png"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.png", "c.png"}, updated.Images)
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, []string{"a.png"}, f.images.deleted)

	require.NoError(t, f.news.Delete(ctx, admin, post.ID))
	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, f.images.deleted)

	_, err = f.news.Get(ctx, reader, post.ID)
	requireCode(t, err, apperrors.CodeNotFound)

	assert.Equal(t, []events.EventType{events.EventNewsCreated, events.EventNewsUpdated, events.EventNewsDeleted}, f.events.types())
}

func TestNewsDelete_ImageFailureStillDeletes(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.images.err = errInjected
	ctx := context.Background()
	admin := f.user(t, "admin", "admin@example.com", true)
	post, err := f.news.Create(ctx, admin, NewsInput{Title: "t", Content: "c", Images: []string{"x.png"}})
	require.NoError(t, err)

	require.NoError(t, f.news.Delete(ctx, admin, post.ID))
	_, err = f.news.Get(ctx, admin, post.ID)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestNewsList(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", "admin@example.com", true)
	for _, title := range []string{"one", "two", "three"} {
		_, err := f.news.Create(ctx, admin, NewsInput{Title: title, Content: "c"})
		require.NoError(t, err)
	}

	page, err := f.news.List(ctx, admin, PageRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "three", page.Items[0].Title)
}

func TestNewsDelete_KeepsImagesUsedByTickets(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin", "admin@example.com", true)
	owner := f.user(t, "owner", "owner@example.com", false)
	_, err := f.tickets.Create(ctx, owner, TicketCreateInput{Title: "t", Content: "c", Image: ptr("uploads/shot.png")})
	require.NoError(t, err)

	post, err := f.news.Create(ctx, admin, NewsInput{Title: "t", Content: "c", Images: []string{"uploads/shot.png", "uploads/own.png"}})
	require.NoError(t, err)
	require.NoError(t, f.news.Delete(ctx, admin, post.ID))
	assert.Equal(t, []string{"uploads/own.png"}, f.images.deleted)

	_, err = f.news.Create(ctx, admin, NewsInput{Title: "t", Content: "c", Images: []string{"../escape.png"}})
	requireCode(t, err, apperrors.CodeValidationFailed)
}
