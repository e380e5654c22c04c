package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foss4g-video/talkmeta/index"
	"github.com/foss4g-video/talkmeta/metadata"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	cat, err := index.NewMemOnly()
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })

	require.NoError(t, cat.Emit(metadata.Record{
		VideoFile:   "/videos/2024-07-03/Omicum/ABCDEF.mp4",
		Persons:     "Ann, Bo",
		PretalxID:   "ABCDEF",
		Title:       "FOSS4GE 2024 | Mapping the world",
		Description: "An abstract about maps",
	}))
	require.NoError(t, cat.Emit(metadata.Record{
		VideoFile:   metadata.MissingVideoFile,
		Persons:     "Cy",
		PretalxID:   "GHIJKL",
		Title:       "FOSS4GE 2024 | Point clouds",
		Description: "Lidar everywhere",
	}))

	srv := httptest.NewServer(Handler(cat, []string{"http://localhost:8000"}))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		assert.Equal(t, "application/json", resp.Header.Get("Content-type"))
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestSearch(t *testing.T) {
	srv := newServer(t)

	var res index.Result
	resp := getJSON(t, srv.URL+"/api/v1/search?q=maps", &res)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, res.Talks, 1)
	assert.Equal(t, "ABCDEF", res.Talks[0].PretalxID)

	resp = getJSON(t, srv.URL+"/api/v1/search", &res)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMissing(t *testing.T) {
	srv := newServer(t)

	var res index.Result
	resp := getJSON(t, srv.URL+"/api/v1/missing", &res)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, res.Talks, 1)
	assert.Equal(t, "GHIJKL", res.Talks[0].PretalxID)
}

func TestSpeaker(t *testing.T) {
	srv := newServer(t)

	var res index.Result
	resp := getJSON(t, srv.URL+"/api/v1/speakers/cy", &res)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, res.Talks, 1)
	assert.Equal(t, "GHIJKL", res.Talks[0].PretalxID)
	assert.Equal(t, []index.Speaker{{Name: "Cy", Slug: "cy"}}, res.Talks[0].Speakers)
}

func TestTalk(t *testing.T) {
	srv := newServer(t)

	var talk index.IndexedTalk
	resp := getJSON(t, srv.URL+"/api/v1/talks/ABCDEF", &talk)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ann, Bo", talk.Persons)
	assert.False(t, talk.Missing)

	resp = getJSON(t, srv.URL+"/api/v1/talks/ZZZZZZ", &talk)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	srv := newServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/missing", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:8000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost:8000", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
