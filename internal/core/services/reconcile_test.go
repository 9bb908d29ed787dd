package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

func users(nodeIDs ...string) []domain.User {
	out := make([]domain.User, len(nodeIDs))
	for i, id := range nodeIDs {
		out[i] = domain.User{NodeID: id, UserName: "user-" + id}
	}
	return out
}

func TestUnsaved(t *testing.T) {
	tests := []struct {
		name     string
		saved    []domain.User
		provider []domain.User
		want     []string
	}{
		{"nothing saved", nil, users("a", "b"), []string{"a", "b"}},
		{"one saved", users("a"), users("a", "b"), []string{"b"}},
		{"all saved", users("a", "b"), users("b", "a"), []string{}},
		{"saved not on provider", users("x"), users("a"), []string{"a"}},
		{"empty provider", users("a"), nil, []string{}},
		{"empty provider key stays unsaved", users("a", ""), users("", "a"), []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Unsaved(tt.saved, tt.provider, userKey)

			ids := make([]string, len(got))
			for i, u := range got {
				ids[i] = u.NodeID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestUnsaved_Properties(t *testing.T) {
	for seed := 0; seed < 20; seed++ {
		var saved, provider []domain.User
		for i := 0; i < 30; i++ {
			id := fmt.Sprintf("n%d", i)
			if (i+seed)%3 == 0 {
				saved = append(saved, domain.User{NodeID: id})
			}
			if (i*seed)%4 != 1 {
				provider = append(provider, domain.User{NodeID: id})
			}
		}

		unsaved := Unsaved(saved, provider, userKey)

		savedSet := map[string]bool{}
		for _, s := range saved {
			savedSet[s.NodeID] = true
		}
		intersection := 0
		for _, p := range provider {
			if savedSet[p.NodeID] {
				intersection++
			}
		}
		for _, u := range unsaved {
			assert.False(t, savedSet[u.NodeID], "unsaved entity %s is saved", u.NodeID)
		}
		assert.Equal(t, len(provider), len(unsaved)+intersection)
	}
}

func TestUnsaved_DoesNotMutateInputs(t *testing.T) {
	saved := users("a")
	provider := users("a", "b")

	_ = Unsaved(saved, provider, userKey)

	assert.Equal(t, users("a"), saved)
	assert.Equal(t, users("a", "b"), provider)
}

func TestSnapshot_NilSavedBecomesEmpty(t *testing.T) {
	snap := Snapshot(nil, users("a"), userKey)

	assert.NotNil(t, snap.Saved)
	assert.Len(t, snap.Unsaved, 1)
}

func prAt(id string, created time.Time) domain.PullRequest {
	return domain.PullRequest{NodeID: id, CreatedAt: created}
}

func TestWindow(t *testing.T) {
	cursor := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	prs := []domain.PullRequest{
		prAt("before", cursor.Add(-time.Hour)),
		prAt("equal", cursor),
		prAt("after", cursor.Add(time.Second)),
		prAt("later", cursor.Add(48*time.Hour)),
	}

	t.Run("strictly after cursor", func(t *testing.T) {
		got := Window(prs, &cursor)
		require.Len(t, got, 2)
		assert.Equal(t, "after", got[0].NodeID)
		assert.Equal(t, "later", got[1].NodeID)
		for _, pr := range got {
			assert.True(t, pr.CreatedAt.After(cursor))
		}
	})

	t.Run("nil cursor keeps everything", func(t *testing.T) {
		assert.Len(t, Window(prs, nil), len(prs))
	})

	t.Run("nil cursor equals minus infinity", func(t *testing.T) {
		minusInf := time.Time{}
		assert.Equal(t, Window(prs, nil), Window(prs, &minusInf))
	})

	t.Run("drops repeated node ids", func(t *testing.T) {
		dup := append([]domain.PullRequest{}, prs...)
		dup = append(dup, prAt("later", cursor.Add(48*time.Hour)))
		assert.Len(t, Window(dup, nil), len(prs))
	})
}

func TestResolveAuthors(t *testing.T) {
	saved := []domain.User{
		{UserID: "u-1", NodeID: domain.NormalizeID("MDQ6VXNlcjE=")},
		{UserID: "", NodeID: domain.NormalizeID("unsaved")},
	}
	prs := []domain.PullRequest{
		{NodeID: "1", AuthorNodeID: domain.NormalizeID("MDQ6VXNlcjE=")},
		{NodeID: "2", AuthorNodeID: domain.NormalizeID("ghost")},
		{NodeID: "3", AuthorNodeID: ""},
		{NodeID: "4", AuthorNodeID: domain.NormalizeID("unsaved")},
	}

	unresolved := ResolveAuthors(prs, saved)

	assert.Equal(t, 3, unresolved)
	require.Len(t, prs, 4)
	require.NotNil(t, prs[0].UserID)
	assert.Equal(t, "u-1", *prs[0].UserID)
	assert.Nil(t, prs[1].UserID)
	assert.Nil(t, prs[2].UserID)
	assert.Nil(t, prs[3].UserID)
}

func TestEligibleMembers(t *testing.T) {
	saved := users("a", "b", "c", "d")
	members := users("a")

	t.Run("provider team", func(t *testing.T) {
		onProvider := []domain.TeamMember{{NodeID: "a"}, {NodeID: "c"}, {NodeID: "z"}}
		got := EligibleMembers(saved, members, onProvider)
		require.Len(t, got, 1)
		assert.Equal(t, "c", got[0].NodeID)
	})

	t.Run("provider team with no members", func(t *testing.T) {
		assert.Empty(t, EligibleMembers(saved, members, []domain.TeamMember{}))
	})

	t.Run("custom team", func(t *testing.T) {
		got := EligibleMembers(saved, members, nil)
		assert.Len(t, got, 3)
	})
}

func TestLatestCreatedAt(t *testing.T) {
	assert.Nil(t, LatestCreatedAt(nil))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got := LatestCreatedAt([]domain.PullRequest{prAt("1", base), prAt("2", base.Add(time.Hour)), prAt("3", base)})
	require.NotNil(t, got)
	assert.Equal(t, base.Add(time.Hour), *got)
}
