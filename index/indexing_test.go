package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Flaque/filet"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foss4g-video/talkmeta/metadata"
)

var records = []metadata.Record{
	{
		VideoFile:   "/videos/2024-07-03/Omicum/ABCDEF.mp4",
		Persons:     "Ann, Bo",
		PretalxID:   "ABCDEF",
		Title:       "FOSS4GE 2024 | Mapping the world",
		Description: "An abstract about maps",
	},
	{
		VideoFile:   metadata.MissingVideoFile,
		Persons:     "Cy",
		PretalxID:   "GHIJKL",
		Title:       "FOSS4GE 2024 | Point clouds",
		Description: "Lidar everywhere",
	},
}

func fill(t *testing.T, c *Catalog) {
	t.Helper()
	for _, record := range records {
		require.NoError(t, c.Emit(record))
	}
}

func TestCatalogSearch(t *testing.T) {
	c, err := NewMemOnly()
	require.NoError(t, err)
	defer c.Close()
	fill(t, c)

	res, err := c.Search("maps")
	require.NoError(t, err)
	require.Equal(t, uint64(1), res.Total)
	assert.Equal(t, "ABCDEF", res.Talks[0].PretalxID)
	assert.Equal(t, "Ann, Bo", res.Talks[0].Persons)

	res, err = c.Search("lidar")
	require.NoError(t, err)
	require.Len(t, res.Talks, 1)
	assert.Equal(t, "GHIJKL", res.Talks[0].PretalxID)
}

func TestCatalogMissing(t *testing.T) {
	c, err := NewMemOnly()
	require.NoError(t, err)
	defer c.Close()
	fill(t, c)

	res, err := c.Missing()
	require.NoError(t, err)
	require.Len(t, res.Talks, 1)
	assert.Equal(t, "GHIJKL", res.Talks[0].PretalxID)
	assert.True(t, res.Talks[0].Missing)
	assert.Equal(t, metadata.MissingVideoFile, res.Talks[0].VideoFile)
}

func TestCatalogTalk(t *testing.T) {
	c, err := NewMemOnly()
	require.NoError(t, err)
	defer c.Close()
	fill(t, c)

	talk, err := c.Talk("ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, newIndexedTalk(records[0]), *talk)

	_, err = c.Talk("ZZZZZZ")
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func TestCatalogBySpeaker(t *testing.T) {
	c, err := NewMemOnly()
	require.NoError(t, err)
	defer c.Close()
	fill(t, c)

	res, err := c.BySpeaker("bo")
	require.NoError(t, err)
	require.Len(t, res.Talks, 1)
	assert.Equal(t, "ABCDEF", res.Talks[0].PretalxID)
	assert.Equal(t, []Speaker{{Name: "Ann", Slug: "ann"}, {Name: "Bo", Slug: "bo"}}, res.Talks[0].Speakers)

	res, err = c.BySpeaker("nobody")
	require.NoError(t, err)
	assert.Empty(t, res.Talks)
}

func TestCatalogReplacesRecords(t *testing.T) {
	c, err := NewMemOnly()
	require.NoError(t, err)
	defer c.Close()
	fill(t, c)

	updated := records[1]
	updated.VideoFile = "/videos/2024-07-03/Omicum/GHIJKL.mp4"
	require.NoError(t, c.Emit(updated))

	count, err := c.Index.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	res, err := c.Missing()
	require.NoError(t, err)
	assert.Empty(t, res.Talks)
}

func TestOpen(t *testing.T) {
	defer filet.CleanUp(t)
	root := filepath.Join(filet.TmpDir(t, ""), "catalog")

	c, err := Open(root, false)
	require.NoError(t, err)
	fill(t, c)
	first := c.Path
	require.NoError(t, c.Close())

	state, err := getIndexState(root)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, first, filepath.Join(root, state.Index))

	c, err = Open(root, false)
	require.NoError(t, err)
	assert.Equal(t, first, c.Path)
	count, err := c.Index.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
	require.NoError(t, c.Close())

	c, err = Open(root, true)
	require.NoError(t, err)
	defer c.Close()
	assert.NotEqual(t, first, c.Path)
	count, err = c.Index.DocCount()
	require.NoError(t, err)
	assert.Zero(t, count)
	_, err = os.Stat(first)
	assert.True(t, os.IsNotExist(err), "previous index folder is removed")
}

func TestGetIndexStateWithoutFile(t *testing.T) {
	defer filet.CleanUp(t)
	state, err := getIndexState(filet.TmpDir(t, ""))
	require.NoError(t, err)
	assert.Nil(t, state)
}
