package feed

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tuitter/internal/dbsql"
	"tuitter/internal/notif"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, dbsql.Migrate(db))
	return db
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fixture struct {
	db     *gorm.DB
	repo   *FeedRepository
	svc    *FeedService
	notifs *notif.NotifService
	alice  *dbsql.User
	bob    *dbsql.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	repo := NewFeedRepository(db)
	notifSvc := notif.NewNotifService(notif.NewNotificationRepository(db), testLogger())
	svc := NewFeedService(repo, repo, repo, notifSvc)

	alice := &dbsql.User{Handle: "alice", DisplayName: "Alice"}
	bob := &dbsql.User{Handle: "bob", DisplayName: "Bob"}
	require.NoError(t, db.Create(alice).Error)
	require.NoError(t, db.Create(bob).Error)

	return &fixture{db: db, repo: repo, svc: svc, notifs: notifSvc, alice: alice, bob: bob}
}

func TestToggleLikeRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreatePost(ctx, f.alice, "hello", nil, nil)
	require.NoError(t, err)

	liked, active, err := f.svc.ToggleLike(ctx, post.ID, f.bob)
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, 1, liked.LikesCount)

	// toggling again returns the counter to its original value
	unliked, active, err := f.svc.ToggleLike(ctx, post.ID, f.bob)
	require.NoError(t, err)
	assert.False(t, active)
	assert.Equal(t, 0, unliked.LikesCount)

	// unique constraint: only one live interaction row is ever counted
	_, _, err = f.svc.ToggleLike(ctx, post.ID, f.bob)
	require.NoError(t, err)
	var count int64
	require.NoError(t, f.db.Model(&dbsql.PostInteraction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestToggleLikeNotifiesAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreatePost(ctx, f.alice, "hello", nil, nil)
	require.NoError(t, err)

	_, _, err = f.svc.ToggleLike(ctx, post.ID, f.bob)
	require.NoError(t, err)

	rows, err := f.notifs.List(ctx, f.alice.ID, false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, dbsql.NotifLike, rows[0].Type)
	assert.Equal(t, f.bob.ID, rows[0].ActorID)
	require.NotNil(t, rows[0].RelatedPostID)
	assert.Equal(t, post.ID, *rows[0].RelatedPostID)

	// liking your own post stays silent
	own, err := f.svc.CreatePost(ctx, f.alice, "again", nil, nil)
	require.NoError(t, err)
	_, _, err = f.svc.ToggleLike(ctx, own.ID, f.alice)
	require.NoError(t, err)
	rows, err = f.notifs.List(ctx, f.alice.ID, false)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestToggleRepostRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreatePost(ctx, f.alice, "hello", nil, nil)
	require.NoError(t, err)

	reposted, active, err := f.svc.ToggleRepost(ctx, post.ID, f.bob)
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, 1, reposted.RepostsCount)
	assert.Equal(t, 0, reposted.LikesCount)

	back, active, err := f.svc.ToggleRepost(ctx, post.ID, f.bob)
	require.NoError(t, err)
	assert.False(t, active)
	assert.Equal(t, 0, back.RepostsCount)
}

func TestToggleLikeMissingPost(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.ToggleLike(context.Background(), "nope", f.bob)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReplyLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent, err := f.svc.CreatePost(ctx, f.alice, "parent", nil, nil)
	require.NoError(t, err)

	reply, err := f.svc.CreatePost(ctx, f.bob, "reply", &parent.ID, nil)
	require.NoError(t, err)

	got, err := f.svc.GetPost(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentsCount)

	// reply notifies the parent's author
	rows, err := f.notifs.List(ctx, f.alice.ID, false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, dbsql.NotifReply, rows[0].Type)

	// deleting the reply decrements the parent, never below zero
	require.NoError(t, f.svc.DeletePost(ctx, reply.ID))
	got, err = f.svc.GetPost(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CommentsCount)

	reply2, err := f.svc.CreatePost(ctx, f.bob, "reply2", &parent.ID, nil)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&dbsql.Post{}).Where("id = ?", parent.ID).Update("comments_count", 0).Error)
	require.NoError(t, f.svc.DeletePost(ctx, reply2.ID))
	got, err = f.svc.GetPost(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CommentsCount)
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreatePost(ctx, f.alice, "bye", nil, nil)
	require.NoError(t, err)
	_, _, err = f.svc.ToggleLike(ctx, post.ID, f.bob)
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, post.ID, f.bob, "nice")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeletePost(ctx, post.ID))

	_, err = f.svc.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// owned rows are removed with the post
	var interactions, comments int64
	require.NoError(t, f.db.Model(&dbsql.PostInteraction{}).Where("post_id = ?", post.ID).Count(&interactions).Error)
	require.NoError(t, f.db.Model(&dbsql.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error)
	assert.Zero(t, interactions)
	assert.Zero(t, comments)

	assert.ErrorIs(t, f.svc.DeletePost(ctx, post.ID), gorm.ErrRecordNotFound)
}

func TestCommentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreatePost(ctx, f.alice, "hello", nil, nil)
	require.NoError(t, err)

	comment, err := f.svc.AddComment(ctx, post.ID, f.bob, "first!")
	require.NoError(t, err)
	assert.Equal(t, "bob", comment.Username)

	got, err := f.svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentsCount)

	comments, err := f.svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "first!", comments[0].Text)

	t.Run("missing post", func(t *testing.T) {
		_, err := f.svc.AddComment(ctx, "nope", f.bob, "text")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		_, err = f.svc.ListComments(ctx, "nope")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("empty text", func(t *testing.T) {
		_, err := f.svc.AddComment(ctx, post.ID, f.bob, "")
		assert.Error(t, err)
	})
}

func TestTimelineOrderingAndLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		post := &dbsql.Post{
			AuthorID:  f.alice.ID,
			Content:   strings.Repeat("x", i+1),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, f.db.Create(post).Error)
	}

	posts, err := f.svc.Timeline(ctx, 3)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].CreatedAt.After(posts[i-1].CreatedAt))
	}
	assert.Equal(t, "xxxxx", posts[0].Content)
}

func TestDiscoverOrdersByEngagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	quiet, err := f.svc.CreatePost(ctx, f.alice, "quiet", nil, nil)
	require.NoError(t, err)
	popular, err := f.svc.CreatePost(ctx, f.alice, "popular", nil, nil)
	require.NoError(t, err)

	_, _, err = f.svc.ToggleLike(ctx, popular.ID, f.bob)
	require.NoError(t, err)
	_, _, err = f.svc.ToggleRepost(ctx, popular.ID, f.bob)
	require.NoError(t, err)

	posts, err := f.svc.Discover(ctx, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, popular.ID, posts[0].ID)
	assert.Equal(t, quiet.ID, posts[1].ID)
}

func TestCreatePostAttachments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("small attachment accepted", func(t *testing.T) {
		post, err := f.svc.CreatePost(ctx, f.alice, "with file", nil, []map[string]any{
			{"name": "pic.txt", "data": "ascii art"},
		})
		require.NoError(t, err)
		assert.Contains(t, post.Attachments, "pic.txt")
	})

	t.Run("oversized attachment rejected before write", func(t *testing.T) {
		var before int64
		require.NoError(t, f.db.Model(&dbsql.Post{}).Count(&before).Error)

		_, err := f.svc.CreatePost(ctx, f.alice, "too big", nil, []map[string]any{
			{"data": strings.Repeat("a", dbsql.AttachmentsMaxLen)},
		})
		assert.ErrorIs(t, err, ErrAttachmentsTooLarge)

		var after int64
		require.NoError(t, f.db.Model(&dbsql.Post{}).Count(&after).Error)
		assert.Equal(t, before, after)
	})
}

func TestViewerState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreatePost(ctx, f.alice, "hello", nil, nil)
	require.NoError(t, err)
	_, _, err = f.svc.ToggleLike(ctx, post.ID, f.bob)
	require.NoError(t, err)

	liked, reposted, err := f.svc.ViewerState(ctx, post.ID, f.bob.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.False(t, reposted)

	liked, _, err = f.svc.ViewerState(ctx, post.ID, f.alice.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}
