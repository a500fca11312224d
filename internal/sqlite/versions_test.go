package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/landing/pkg/types"
)

const sampleContent = `{"composition":[{"section":{"type":"sections","id":"hero"}}],"sections":[{"id":"hero","title":"Hi"}]}`

func TestPublish_AssignsIncreasingVersions(t *testing.T) {
	b, _ := attachTemp(t)

	v1, err := b.Publish(501, sampleContent)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v1.Version)
	assert.NotEmpty(t, v1.VersionID)
	assert.Equal(t, sampleContent, v1.Content)

	v2, err := b.Publish(501, `{"composition":[]}`)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v2.Version)

	other, err := b.Publish(11, `{"composition":[]}`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), other.Version, "versions are numbered per community")

	versions, err := b.ListVersions(501)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, int64(2), versions[0].Version)
	assert.Equal(t, int64(1), versions[1].Version)
}

func TestPublish_RejectsInvalidContent(t *testing.T) {
	b, _ := attachTemp(t)

	tests := []struct {
		name    string
		content string
	}{
		{"blank", "  "},
		{"not json", "composition"},
		{"array", `[{"type":"sections"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Publish(501, tt.content)
			assert.ErrorIs(t, err, types.ErrInvalidContent)
		})
	}

	_, err := b.Publish(0, sampleContent)
	assert.ErrorIs(t, err, types.ErrInvalidCommunity)
}

func TestReleasedVersion(t *testing.T) {
	b, _ := attachTemp(t)

	_, err := b.ReleasedVersion(501)
	assert.ErrorIs(t, err, types.ErrNotEnabled, "missing page counts as not enabled")
	assert.ErrorIs(t, err, types.ErrConfiguration)

	require.NoError(t, b.SetLandingPage(&types.LandingPage{CommunityID: 501}))
	_, err = b.ReleasedVersion(501)
	assert.ErrorIs(t, err, types.ErrNotEnabled)

	require.NoError(t, b.SetLandingPage(&types.LandingPage{CommunityID: 501, Enabled: true}))
	_, err = b.ReleasedVersion(501)
	assert.ErrorIs(t, err, types.ErrVersionUnset)
	assert.ErrorIs(t, err, types.ErrConfiguration)

	_, err = b.Publish(501, sampleContent)
	require.NoError(t, err)
	require.NoError(t, b.Release(501, 1))

	v, err := b.ReleasedVersion(501)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestRelease(t *testing.T) {
	b, _ := attachTemp(t)

	assert.ErrorIs(t, b.Release(501, 1), types.ErrContentNotFound)
	assert.ErrorIs(t, b.Release(501, 0), types.ErrInvalidVersion)

	_, err := b.Publish(501, sampleContent)
	require.NoError(t, err)
	require.NoError(t, b.Release(501, 1))

	page, err := b.GetLandingPage(501)
	require.NoError(t, err)
	assert.True(t, page.Enabled)
	require.NotNil(t, page.ReleasedVersion)
	assert.Equal(t, int64(1), *page.ReleasedVersion)
}

func TestLoadContent(t *testing.T) {
	b, _ := attachTemp(t)

	_, err := b.Publish(501, sampleContent)
	require.NoError(t, err)

	content, err := b.LoadContent(501, 1)
	require.NoError(t, err)
	assert.Equal(t, sampleContent, content)

	_, err = b.LoadContent(501, 2)
	assert.ErrorIs(t, err, types.ErrContentNotFound)

	_, err = b.LoadContent(11, 1)
	assert.ErrorIs(t, err, types.ErrContentNotFound)
}

func TestPersistence_SurvivesReattach(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend()
	require.NoError(t, b.Attach(cfg))
	_, err := b.Publish(501, sampleContent)
	require.NoError(t, err)
	_, err = b.Publish(501, `{"composition":[]}`)
	require.NoError(t, err)
	require.NoError(t, b.Release(501, 2))
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(cfg))
	defer b2.Detach()

	v, err := b2.ReleasedVersion(501)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	content, err := b2.LoadContent(501, 1)
	require.NoError(t, err)
	assert.Equal(t, sampleContent, content)

	next, err := b2.Publish(501, sampleContent)
	require.NoError(t, err)
	assert.Equal(t, int64(3), next.Version)
}
