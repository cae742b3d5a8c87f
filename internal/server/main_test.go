package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"campus/internal/config"
	"campus/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db := testutil.NewSQLiteDB(t)
	cfg := &config.Config{Env: "test", JWTSecret: testSecret}
	return NewServer(cfg, db, nil).App(), db
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details string          `json:"details"`
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers ...string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v), string(env.Data))
	return v
}

func bearer(t *testing.T, userID uint) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

type postBody struct {
	ID           uint        `json:"id"`
	Content      string      `json:"content"`
	CreatedBy    uint        `json:"createdby"`
	UserID       uint        `json:"user_id"`
	ParentPostID *uint       `json:"parent_post_id"`
	ReplyToID    *uint       `json:"reply_to_id"`
	CommentDepth int         `json:"comment_depth"`
	CommentCount int         `json:"comment_count"`
	ReplyCount   int         `json:"reply_count"`
	LikeCount    int         `json:"like_count"`
	Replies      []*postBody `json:"replies"`
}

func createPost(t *testing.T, app *fiber.App, author uint, content string) postBody {
	t.Helper()
	status, env := doJSON(t, app, http.MethodPost, "/api/posts", fiber.Map{
		"content": content,
		"user_id": author,
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	return decode[postBody](t, env)
}

func createComment(t *testing.T, app *fiber.App, author, postID uint, parentID uint, content string) postBody {
	t.Helper()
	body := fiber.Map{"postId": postID, "content": content, "user_id": author}
	if parentID != 0 {
		body["parentCommentId"] = parentID
	}
	status, env := doJSON(t, app, http.MethodPost, "/api/comment", body)
	require.Equal(t, http.StatusCreated, status, env.Error)
	return decode[postBody](t, env)
}
