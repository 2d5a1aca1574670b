package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tuitter/internal/chat"
	"tuitter/internal/config"
	"tuitter/internal/dbsql"
	"tuitter/internal/feed"
	"tuitter/internal/notif"
	"tuitter/internal/settings"
	"tuitter/internal/user"
	"tuitter/internal/webhook"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, dbsql.Migrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	notifSvc := notif.NewNotifService(notif.NewNotificationRepository(db), log)
	userRepo := user.NewUserRepository(db)
	userSvc := user.NewUserService(userRepo, user.NewFollowRepository(db), notifSvc)
	feedRepo := feed.NewFeedRepository(db)
	feedSvc := feed.NewFeedService(feedRepo, feedRepo, feedRepo, notifSvc)
	chatSvc := chat.NewChatService(chat.NewChatRepository(db), userRepo)
	settingsSvc := settings.NewSettingsService(settings.NewSettingsRepository(db))
	webhookHandler := webhook.NewHandler(config.WebhookConfig{
		Secret:    "test-secret",
		DeployRef: "refs/heads/main",
	}, log)
	metrics := NewMetrics(prometheus.NewRegistry())

	return NewServer(userSvc, feedSvc, chatSvc, notifSvc, settingsSvc, userRepo, webhookHandler, db, log, metrics)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestPostLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/posts", map[string]any{
		"content":       "my first post",
		"author_handle": "alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[PostOut](t, rec)
	assert.Equal(t, "alice", created.Author)
	assert.Equal(t, "my first post", created.Content)
	assert.NotEmpty(t, created.ID)

	rec = do(t, s, http.MethodGet, "/timeline", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	timeline := decode[[]PostOut](t, rec)
	require.Len(t, timeline, 1)
	assert.Equal(t, created.ID, timeline[0].ID)

	rec = do(t, s, http.MethodPost, "/posts/"+created.ID+"/like?handle=bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	liked := decode[PostOut](t, rec)
	assert.Equal(t, 1, liked.Likes)
	assert.True(t, liked.LikedByUser)

	// viewer flags are per user
	rec = do(t, s, http.MethodGet, "/posts/"+created.ID+"?viewer=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[PostOut](t, rec).LikedByUser)

	rec = do(t, s, http.MethodPost, "/posts/"+created.ID+"/comments", map[string]any{
		"text": "nice one",
		"user": "bob",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/posts/"+created.ID+"/comments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	comments := decode[[]CommentOut](t, rec)
	require.Len(t, comments, 1)
	assert.Equal(t, "bob", comments[0].User)
	assert.Equal(t, "nice one", comments[0].Text)

	rec = do(t, s, http.MethodDelete, "/posts/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/posts/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "detail")
}

func TestCreatePostErrors(t *testing.T) {
	s := newTestServer(t)

	t.Run("missing parent", func(t *testing.T) {
		parent := "does-not-exist"
		rec := do(t, s, http.MethodPost, "/posts", map[string]any{
			"content":       "orphan reply",
			"author_handle": "alice",
			"parent_id":     parent,
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("oversized attachments", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/posts", map[string]any{
			"content":       "heavy",
			"author_handle": "alice",
			"attachments": []map[string]any{
				{"data": strings.Repeat("a", dbsql.AttachmentsMaxLen)},
			},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader("{nope"))
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFeedLimitValidation(t *testing.T) {
	s := newTestServer(t)

	for _, limit := range []string{"0", "201", "-5", "abc"} {
		t.Run("limit "+limit, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/timeline?limit="+limit, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "limit")
		})
	}

	rec := do(t, s, http.MethodGet, "/timeline?limit=200", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDirectMessageFlow(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/dm", map[string]any{
		"user_a_handle": "alice",
		"user_b_handle": "bob",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	conv := decode[ConversationOut](t, rec)
	require.NotEmpty(t, conv.ID)
	assert.Equal(t, "bob", conv.Username)

	// opening the same pair again returns the same conversation
	rec = do(t, s, http.MethodPost, "/dm", map[string]any{
		"user_a_handle": "bob",
		"user_b_handle": "alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, conv.ID, decode[ConversationOut](t, rec).ID)

	rec = do(t, s, http.MethodPost, "/conversations/"+conv.ID+"/messages", map[string]any{
		"sender_handle": "bob",
		"content":       "hey alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	msg := decode[MessageOut](t, rec)
	assert.Equal(t, "bob", msg.Sender)

	rec = do(t, s, http.MethodGet, "/conversations/"+conv.ID+"/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	msgs := decode[[]MessageOut](t, rec)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hey alice", msgs[0].Content)

	rec = do(t, s, http.MethodGet, "/conversations?handle=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	convs := decode[[]ConversationOut](t, rec)
	require.Len(t, convs, 1)
	assert.Equal(t, "bob", convs[0].Username)
	require.NotNil(t, convs[0].LastMessage)
	assert.Equal(t, "hey alice", *convs[0].LastMessage)
	assert.True(t, convs[0].Unread)

	rec = do(t, s, http.MethodPost, "/conversations/"+conv.ID+"/read?handle=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/conversations?handle=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	convs = decode[[]ConversationOut](t, rec)
	require.Len(t, convs, 1)
	assert.False(t, convs[0].Unread)

	t.Run("outsider cannot send", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/conversations/"+conv.ID+"/messages", map[string]any{
			"sender_handle": "carol",
			"content":       "hello?",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("message limit validated", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/conversations/"+conv.ID+"/messages?limit=501", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestNotificationEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/posts", map[string]any{
		"content":       "notify me",
		"author_handle": "alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	post := decode[PostOut](t, rec)

	rec = do(t, s, http.MethodPost, "/posts/"+post.ID+"/like?handle=bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/notifications?handle=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]NotificationOut](t, rec)
	require.Len(t, rows, 1)
	assert.Equal(t, dbsql.NotifLike, rows[0].Type)
	assert.Equal(t, "bob", rows[0].Actor)
	assert.False(t, rows[0].Read)

	rec = do(t, s, http.MethodPost, "/notifications/"+rows[0].ID+"/read", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/notifications?handle=alice&unread=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]NotificationOut](t, rec))

	t.Run("unknown notification", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/notifications/nope/read", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestProfileAndFollow(t *testing.T) {
	s := newTestServer(t)

	// first contact creates the user
	rec := do(t, s, http.MethodGet, "/me?handle=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[UserOut](t, rec)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "Alice", me.DisplayName)
	assert.Zero(t, me.Followers)

	rec = do(t, s, http.MethodPost, "/users/alice/follow", map[string]any{"follower": "bob"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[map[string]bool](t, rec)["following"])

	rec = do(t, s, http.MethodGet, "/me?handle=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[UserOut](t, rec).Followers)

	// toggle back off
	rec = do(t, s, http.MethodPost, "/users/alice/follow", map[string]any{"follower": "bob"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[map[string]bool](t, rec)["following"])

	t.Run("missing follower", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/users/alice/follow", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSettingsRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/settings?handle=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	initial := decode[SettingsOut](t, rec)
	assert.Equal(t, "alice", initial.Username)
	assert.True(t, initial.EmailNotifications)
	assert.False(t, initial.PrivateAccount)

	displayName := "Alice Lidell"
	private := true
	rec = do(t, s, http.MethodPut, "/settings?handle=alice", SettingsPayload{
		DisplayName:    &displayName,
		PrivateAccount: &private,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[SettingsOut](t, rec)
	assert.Equal(t, "Alice Lidell", updated.DisplayName)
	assert.True(t, updated.PrivateAccount)
	assert.True(t, updated.EmailNotifications)

	rec = do(t, s, http.MethodGet, "/settings?handle=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stored := decode[SettingsOut](t, rec)
	assert.Equal(t, "Alice Lidell", stored.DisplayName)
	assert.True(t, stored.PrivateAccount)
}

func TestHealthAndDiag(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "tuitter-backend", health["service"])
	assert.NotContains(t, health, "database")

	rec = do(t, s, http.MethodGet, "/health?db_test=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health = decode[map[string]any](t, rec)
	assert.Equal(t, "connected", health["database"])

	rec = do(t, s, http.MethodGet, "/diag/db", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	diag := decode[map[string]any](t, rec)
	assert.Equal(t, "operational", diag["status"])
	counts, ok := diag["table_counts"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, counts, "users")
	assert.Contains(t, counts, "user_settings")
}

func TestDiscoverEndpoint(t *testing.T) {
	s := newTestServer(t)

	var ids []string
	for i := 0; i < 2; i++ {
		rec := do(t, s, http.MethodPost, "/posts", map[string]any{
			"content":       fmt.Sprintf("post %d", i),
			"author_handle": "alice",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		ids = append(ids, decode[PostOut](t, rec).ID)
	}

	rec := do(t, s, http.MethodPost, "/posts/"+ids[0]+"/repost?handle=bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/discover", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	posts := decode[[]PostOut](t, rec)
	require.Len(t, posts, 2)
	assert.Equal(t, ids[0], posts[0].ID)
	assert.Equal(t, 1, posts[0].Reposts)
}
