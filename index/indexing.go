// Package index keeps a searchable catalog of the emitted metadata records
// so they can be reviewed before uploading.
package index

import (
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	uuid "github.com/satori/go.uuid"

	"github.com/foss4g-video/talkmeta/metadata"
)

const stateFile = ".state"

const defaultPageSize = 100

// ErrNotFound is returned for talk ids that are not part of the catalog.
var ErrNotFound = errors.New("talk not found")

var storedFields = []string{"pretalx_id", "video_file", "persons", "speakers.name", "speakers.slug", "title", "description", "missing"}

type Catalog struct {
	Index bleve.Index
	Path  string
}

func (c *Catalog) Close() error {
	return c.Index.Close()
}

func (c *Catalog) Destroy() error {
	if c.Path != "" {
		return os.RemoveAll(c.Path)
	}
	return nil
}

func newMapping() mapping.IndexMapping {
	keyword := bleve.NewKeywordFieldMapping()

	speakerMapping := bleve.NewDocumentMapping()
	speakerMapping.AddFieldMappingsAt("name", bleve.NewTextFieldMapping())
	speakerMapping.AddFieldMappingsAt("slug", keyword)

	talkMapping := bleve.NewDocumentMapping()
	talkMapping.AddFieldMappingsAt("pretalx_id", keyword)
	talkMapping.AddFieldMappingsAt("video_file", keyword)
	talkMapping.AddFieldMappingsAt("persons", bleve.NewTextFieldMapping())
	talkMapping.AddSubDocumentMapping("speakers", speakerMapping)
	talkMapping.AddFieldMappingsAt("title", bleve.NewTextFieldMapping())
	talkMapping.AddFieldMappingsAt("description", bleve.NewTextFieldMapping())
	talkMapping.AddFieldMappingsAt("missing", bleve.NewBooleanFieldMapping())

	m := bleve.NewIndexMapping()
	m.AddDocumentMapping(talkType, talkMapping)
	return m
}

// NewMemOnly creates a catalog that lives in memory only.
func NewMemOnly() (*Catalog, error) {
	idx, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create in-memory index")
	}
	return &Catalog{Index: idx}, nil
}

// Open loads the current catalog below root or creates a new one if there
// is none yet. With rebuild set a fresh index folder is created and the
// previous one removed.
func Open(root string, rebuild bool) (*Catalog, error) {
	state, err := getIndexState(root)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to get index state of %s", root)
	}

	if state != nil && !rebuild {
		idxPath := filepath.Join(root, state.Index)
		log.Info().Str("path", idxPath).Msg("Loading existing index")
		idx, err := bleve.Open(idxPath)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to open index %s", idxPath)
		}
		return &Catalog{Index: idx, Path: idxPath}, nil
	}

	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, errors.Wrapf(err, "Failed to create index root folder in %s", root)
	}
	idxName := newIndexName()
	idxPath := filepath.Join(root, idxName)
	log.Info().Str("path", idxPath).Msg("Creating a new index")
	idx, err := bleve.New(idxPath, newMapping())
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create new index in %s", idxPath)
	}
	if err := setIndexState(root, &State{Index: idxName}); err != nil {
		idx.Close()
		return nil, errors.Wrapf(err, "Failed to write index state of %s", root)
	}
	if state != nil {
		old := filepath.Join(root, state.Index)
		if err := os.RemoveAll(old); err != nil {
			log.Warn().Err(err).Str("path", old).Msg("Failed to remove old index")
		}
	}
	return &Catalog{Index: idx, Path: idxPath}, nil
}

func newIndexName() string {
	return uuid.NewV4().String()
}

// Emit indexes a record. Records with the same pretalx id replace each
// other.
func (c *Catalog) Emit(record metadata.Record) error {
	if err := c.Index.Index(record.PretalxID, newIndexedTalk(record)); err != nil {
		return errors.Wrapf(err, "Failed to index talk %s", record.PretalxID)
	}
	return nil
}

// Search runs a query string query against the catalog.
func (c *Catalog) Search(qs string) (*Result, error) {
	return c.search(bleve.NewQueryStringQuery(qs))
}

// Missing lists all talks that were emitted without a video file.
func (c *Catalog) Missing() (*Result, error) {
	q := bleve.NewBoolFieldQuery(true)
	q.SetField("missing")
	return c.search(q)
}

// BySpeaker lists the talks of the speaker with the given slug.
func (c *Catalog) BySpeaker(slug string) (*Result, error) {
	q := bleve.NewTermQuery(slug)
	q.SetField("speakers.slug")
	return c.search(q)
}

// Talk returns the talk with the given pretalx id.
func (c *Catalog) Talk(id string) (*IndexedTalk, error) {
	res, err := c.search(bleve.NewDocIDQuery([]string{id}))
	if err != nil {
		return nil, err
	}
	if len(res.Talks) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "talk %s", id)
	}
	return &res.Talks[0], nil
}

func (c *Catalog) search(q query.Query) (*Result, error) {
	req := bleve.NewSearchRequestOptions(q, defaultPageSize, 0, false)
	req.Fields = storedFields
	req.SortBy([]string{"pretalx_id"})
	res, err := c.Index.Search(req)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to search the catalog")
	}
	result := &Result{
		Total: res.Total,
		Talks: make([]IndexedTalk, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		result.Talks = append(result.Talks, talkFromFields(hit.Fields))
	}
	return result, nil
}

func getIndexState(root string) (*State, error) {
	data, err := os.ReadFile(filepath.Join(root, stateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	state := State{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Index == "" {
		return nil, nil
	}
	return &state, nil
}

func setIndexState(root string, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, stateFile), data, 0600)
}
