package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepliesJSON(t *testing.T) {
	tests := []struct {
		name    string
		replies []*Post
		wantKey bool
		want    string
	}{
		{"not assembled", nil, false, ""},
		{"leaf in assembled thread", []*Post{}, true, "[]"},
		{"with replies", []*Post{{ID: 2}}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(&Post{ID: 1, Replies: tt.replies})
			require.NoError(t, err)

			var fields map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(b, &fields))
			raw, ok := fields["replies"]
			assert.Equal(t, tt.wantKey, ok)
			if tt.want != "" {
				assert.JSONEq(t, tt.want, string(raw))
			}
		})
	}
}
