package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"campus/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc := NewThreadService(noopPostRepo(), nil)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreatePostInput
	}{
		{"missing author", CreatePostInput{Content: "hi"}},
		{"blank content without media", CreatePostInput{AuthorID: 1, Content: "   "}},
		{"media entries that are blank", CreatePostInput{AuthorID: 1, Media: []string{" ", ""}}},
		{"content too long", CreatePostInput{AuthorID: 1, Content: strings.Repeat("é", maxContentLen+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreatePost(ctx, tt.in)
			assertValidationError(t, err)
		})
	}
}

func TestThreadService_CreatePost_Success(t *testing.T) {
	t.Parallel()

	posts := noopPostRepo()
	var saved *models.Post
	posts.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 5
		saved = p
		return nil
	}
	users := &userRepoStub{getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Handle: "ada"}, nil
	}}

	svc := NewThreadService(posts, users)
	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		AuthorID: 3,
		Media:    []string{" img/1.png ", ""},
		ClubID:   4,
	})
	require.NoError(t, err)
	assert.Same(t, saved, post)
	assert.Equal(t, 0, post.CommentDepth)
	assert.Nil(t, post.ParentPostID)
	assert.Equal(t, uint(3), post.CreatedBy)
	assert.Equal(t, uint(3), post.UserID)
	assert.Equal(t, "ada", post.AuthorHandle)
	assert.Equal(t, []string{"img/1.png"}, []string(post.Media))
	assert.Equal(t, uint(4), post.ClubID)
}

func TestThreadService_CreatePost_HandleLookupFailureIsIgnored(t *testing.T) {
	t.Parallel()

	users := &userRepoStub{getByIDFn: func(_ context.Context, _ uint) (*models.User, error) {
		return nil, models.NewStoreError(errors.New("down"))
	}}
	svc := NewThreadService(noopPostRepo(), users)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{AuthorID: 3, Content: "hi"})
	require.NoError(t, err)
	assert.Empty(t, post.AuthorHandle)
}

func TestThreadService_CreateComment(t *testing.T) {
	t.Parallel()

	root := &models.Post{ID: 10, CreatedBy: 1, ClubID: 2}
	c1 := &models.Post{ID: 11, ParentPostID: uintPtr(10), CommentDepth: 1}
	r1 := &models.Post{ID: 12, ParentPostID: uintPtr(10), ReplyToID: uintPtr(11), CommentDepth: 2}
	foreign := &models.Post{ID: 21, ParentPostID: uintPtr(20), CommentDepth: 1}
	rows := map[uint]*models.Post{10: root, 11: c1, 12: r1, 21: foreign}

	newRepo := func() *postRepoStub {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			if p, ok := rows[id]; ok {
				return p, nil
			}
			return nil, models.NewNotFoundError("Post", id)
		}
		return repo
	}

	tests := []struct {
		name          string
		in            CreateCommentInput
		expectedCode  string
		expectedDepth int
		expectedReply *uint
	}{
		{
			name:          "top-level comment",
			in:            CreateCommentInput{PostID: 10, AuthorID: 2, Content: "first"},
			expectedDepth: 1,
		},
		{
			name:          "reply to depth-1 comment",
			in:            CreateCommentInput{PostID: 10, ParentCommentID: uintPtr(11), AuthorID: 2, Content: "re"},
			expectedDepth: 2,
			expectedReply: uintPtr(11),
		},
		{
			name:          "reply to reply",
			in:            CreateCommentInput{PostID: 10, ParentCommentID: uintPtr(12), AuthorID: 2, Content: "re re"},
			expectedDepth: 3,
			expectedReply: uintPtr(12),
		},
		{
			name:          "parent equal to root is a top-level comment",
			in:            CreateCommentInput{PostID: 10, ParentCommentID: uintPtr(10), AuthorID: 2, Content: "x"},
			expectedDepth: 1,
		},
		{
			name:         "missing root",
			in:           CreateCommentInput{PostID: 99, AuthorID: 2, Content: "x"},
			expectedCode: models.CodeNotFound,
		},
		{
			name:         "missing parent",
			in:           CreateCommentInput{PostID: 10, ParentCommentID: uintPtr(98), AuthorID: 2, Content: "x"},
			expectedCode: models.CodeNotFound,
		},
		{
			name:         "parent from another thread",
			in:           CreateCommentInput{PostID: 10, ParentCommentID: uintPtr(21), AuthorID: 2, Content: "x"},
			expectedCode: models.CodeValidation,
		},
		{
			name:         "comment id passed as post id",
			in:           CreateCommentInput{PostID: 11, AuthorID: 2, Content: "x"},
			expectedCode: models.CodeValidation,
		},
		{
			name:         "empty body",
			in:           CreateCommentInput{PostID: 10, AuthorID: 2},
			expectedCode: models.CodeValidation,
		},
		{
			name:         "missing author",
			in:           CreateCommentInput{PostID: 10, Content: "x"},
			expectedCode: models.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := newRepo()
			var created *models.Post
			repo.createCommentFn = func(_ context.Context, c *models.Post) error {
				created = c
				return nil
			}

			comment, err := NewThreadService(repo, nil).CreateComment(context.Background(), tt.in)
			if tt.expectedCode != "" {
				assertCode(t, err, tt.expectedCode)
				assert.Nil(t, created)
				return
			}

			require.NoError(t, err)
			assert.Same(t, created, comment)
			assert.Equal(t, tt.expectedDepth, comment.CommentDepth)
			require.NotNil(t, comment.ParentPostID)
			assert.Equal(t, uint(10), *comment.ParentPostID)
			assert.Equal(t, tt.expectedReply, comment.ReplyToID)
			assert.Equal(t, uint(2), comment.ClubID)
		})
	}
}

func TestThreadService_GetComments_AssemblesTree(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(m int) time.Time { return base.Add(time.Duration(m) * time.Minute) }

	c1 := &models.Post{ID: 11, ParentPostID: uintPtr(10), CommentDepth: 1, CreatedAt: at(1)}
	c2 := &models.Post{ID: 12, ParentPostID: uintPtr(10), CommentDepth: 1, CreatedAt: at(2)}
	levels := map[uint][]*models.Post{
		11: {
			{ID: 14, ParentPostID: uintPtr(10), ReplyToID: uintPtr(11), CommentDepth: 2, CreatedAt: at(5)},
			{ID: 13, ParentPostID: uintPtr(10), ReplyToID: uintPtr(11), CommentDepth: 2, CreatedAt: at(3)},
		},
		13: {
			{ID: 15, ParentPostID: uintPtr(10), ReplyToID: uintPtr(13), CommentDepth: 3, CreatedAt: at(6)},
		},
	}

	repo := noopPostRepo()
	var gotLimit, gotOffset int
	repo.listTopLevelFn = func(_ context.Context, postID uint, limit, offset int) ([]*models.Post, int64, error) {
		gotLimit, gotOffset = limit, offset
		return []*models.Post{c1, c2}, 45, nil
	}
	calls := 0
	repo.listRepliesFn = func(_ context.Context, ids []uint) ([]*models.Post, error) {
		calls++
		var out []*models.Post
		for _, id := range ids {
			out = append(out, levels[id]...)
		}
		return out, nil
	}

	svc := NewThreadService(repo, nil)
	page, err := svc.GetComments(context.Background(), GetCommentsInput{PostID: 10, Page: 2, Limit: 20, IncludeReplies: true})
	require.NoError(t, err)

	assert.Equal(t, 20, gotLimit)
	assert.Equal(t, 20, gotOffset)
	assert.Equal(t, Pagination{Page: 2, Limit: 20, Total: 45, TotalPages: 3}, page.Pagination)
	assert.Equal(t, 3, calls)

	require.Len(t, page.Comments, 2)
	first := page.Comments[0]
	require.Len(t, first.Replies, 2)
	assert.Equal(t, uint(13), first.Replies[0].ID)
	assert.Equal(t, uint(14), first.Replies[1].ID)
	require.Len(t, first.Replies[0].Replies, 1)
	assert.Equal(t, uint(15), first.Replies[0].Replies[0].ID)
	assert.Empty(t, page.Comments[1].Replies)
}

func TestThreadService_GetComments_WithoutReplies(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.listTopLevelFn = func(_ context.Context, _ uint, limit, offset int) ([]*models.Post, int64, error) {
		assert.Equal(t, maxLimit, limit)
		assert.Equal(t, 0, offset)
		return []*models.Post{{ID: 11, CommentDepth: 1}}, 1, nil
	}
	repo.listRepliesFn = func(_ context.Context, _ []uint) ([]*models.Post, error) {
		t.Error("replies must not be loaded")
		return nil, nil
	}

	page, err := NewThreadService(repo, nil).GetComments(context.Background(), GetCommentsInput{PostID: 10, Page: 0, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 1, page.Pagination.TotalPages)
	assert.Nil(t, page.Comments[0].Replies)
}

func TestThreadService_GetComments_CycleTerminates(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.listTopLevelFn = func(_ context.Context, _ uint, _, _ int) ([]*models.Post, int64, error) {
		return []*models.Post{{ID: 1, CommentDepth: 1}}, 1, nil
	}
	// 2 answers 1, 3 answers 2, and the store also reports 1 as answering 3
	repo.listRepliesFn = func(_ context.Context, ids []uint) ([]*models.Post, error) {
		var out []*models.Post
		for _, id := range ids {
			switch id {
			case 1:
				out = append(out, &models.Post{ID: 2, ReplyToID: uintPtr(1)})
			case 2:
				out = append(out, &models.Post{ID: 3, ReplyToID: uintPtr(2)})
			case 3:
				out = append(out, &models.Post{ID: 1, ReplyToID: uintPtr(3)})
			}
		}
		return out, nil
	}

	page, err := NewThreadService(repo, nil).GetComments(context.Background(), GetCommentsInput{PostID: 10, IncludeReplies: true})
	require.NoError(t, err)
	require.Len(t, page.Comments[0].Replies, 1)
	require.Len(t, page.Comments[0].Replies[0].Replies, 1)
	assert.Empty(t, page.Comments[0].Replies[0].Replies[0].Replies)
}

func TestThreadService_GetComments_MissingPost(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	_, err := NewThreadService(repo, nil).GetComments(context.Background(), GetCommentsInput{PostID: 404})
	assertCode(t, err, models.CodeNotFound)
}

func TestThreadService_UpdatePost(t *testing.T) {
	t.Parallel()

	owned := func() *postRepoStub {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, CreatedBy: 7, UserID: 7, Content: "old"}, nil
		}
		return repo
	}

	t.Run("non-owner is forbidden and nothing is written", func(t *testing.T) {
		t.Parallel()
		repo := owned()
		repo.updateContentFn = func(_ context.Context, _ *models.Post, _ string) error {
			t.Error("update must not run")
			return nil
		}
		_, err := NewThreadService(repo, nil).UpdatePost(context.Background(), UpdatePostInput{PostID: 1, RequesterID: 8, Content: "new"})
		assertCode(t, err, models.CodeForbidden)
	})

	t.Run("blank content without media", func(t *testing.T) {
		t.Parallel()
		_, err := NewThreadService(owned(), nil).UpdatePost(context.Background(), UpdatePostInput{PostID: 1, RequesterID: 7, Content: " "})
		assertValidationError(t, err)
	})

	t.Run("missing requester", func(t *testing.T) {
		t.Parallel()
		_, err := NewThreadService(owned(), nil).UpdatePost(context.Background(), UpdatePostInput{PostID: 1, Content: "x"})
		assertValidationError(t, err)
	})

	t.Run("owner edits", func(t *testing.T) {
		t.Parallel()
		repo := owned()
		repo.updateContentFn = func(_ context.Context, p *models.Post, content string) error {
			p.Content = content
			return nil
		}
		post, err := NewThreadService(repo, nil).UpdatePost(context.Background(), UpdatePostInput{PostID: 1, RequesterID: 7, Content: "new"})
		require.NoError(t, err)
		assert.Equal(t, "new", post.Content)
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		}
		_, err := NewThreadService(repo, nil).UpdatePost(context.Background(), UpdatePostInput{PostID: 1, RequesterID: 7, Content: "x"})
		assertCode(t, err, models.CodeNotFound)
	})
}

func TestThreadService_DeletePost(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, CreatedBy: 0, UserID: 7}, nil
	}
	var deleted uint
	repo.deleteFn = func(_ context.Context, p *models.Post) error {
		deleted = p.ID
		return nil
	}
	svc := NewThreadService(repo, nil)

	_, err := svc.DeletePost(context.Background(), DeletePostInput{PostID: 3, RequesterID: 8})
	assertCode(t, err, models.CodeForbidden)
	assert.Zero(t, deleted)

	post, err := svc.DeletePost(context.Background(), DeletePostInput{PostID: 3, RequesterID: 7})
	require.NoError(t, err)
	assert.Equal(t, uint(3), post.ID)
	assert.Equal(t, uint(3), deleted)
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 20},
		{-3, -1, 1, 20},
		{2, 50, 2, 50},
		{1, 101, 1, 100},
		{1e17, 100, maxPage, 100},
	}
	for _, tt := range tests {
		page, limit := normalizePage(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantLimit, limit)
	}
	page, limit := normalizePage(int(1e17), 100)
	assert.Positive(t, offsetOf(page, limit))

	assert.Equal(t, 0, newPagination(1, 20, 0).TotalPages)
	assert.Equal(t, 1, newPagination(1, 20, 20).TotalPages)
	assert.Equal(t, 2, newPagination(1, 20, 21).TotalPages)
}
