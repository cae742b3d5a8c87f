package repository

import (
	"context"
	"testing"

	"campus/internal/models"
	"campus/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters_DriftedAndRepair(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	posts := NewPostRepository(db, nil)
	likes := NewLikeRepository(db, nil)
	counters := NewCounterRepository(db, nil)
	ctx := context.Background()

	p := createRoot(t, posts, 1, "root")
	c1 := createReply(t, posts, p, nil, 2, "c1")
	createReply(t, posts, p, c1, 3, "r1")
	_, _, err := likes.Toggle(ctx, 8, p.ID)
	require.NoError(t, err)

	drifts, err := counters.Drifted(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)

	// simulate writes that bypassed the counters
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", p.ID).
		UpdateColumns(map[string]interface{}{"comment_count": 7, "like_count": 0}).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", c1.ID).
		UpdateColumn("reply_count", 3).Error)

	drifts, err = counters.Drifted(ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 2)
	assert.Equal(t, CounterDrift{
		ID: p.ID, CommentCount: 7, ReplyCount: 0, LikeCount: 0,
		TrueComments: 2, TrueReplies: 0, TrueLikes: 1,
	}, drifts[0])
	assert.Equal(t, c1.ID, drifts[1].ID)
	assert.Equal(t, 1, drifts[1].TrueReplies)

	for _, d := range drifts {
		require.NoError(t, counters.Repair(ctx, d.ID))
	}

	root := reload(t, db, p.ID)
	assert.Equal(t, 2, root.CommentCount)
	assert.Equal(t, 1, root.LikeCount)
	assert.Equal(t, 1, reload(t, db, c1.ID).ReplyCount)

	drifts, err = counters.Drifted(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}
