package index

import (
	"strings"

	"github.com/foss4g-video/talkmeta/metadata"
	"github.com/foss4g-video/talkmeta/textfmt"
)

const talkType = "talk"

type Speaker struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// IndexedTalk is the catalog document of one emitted metadata record.
type IndexedTalk struct {
	PretalxID   string    `json:"pretalx_id"`
	VideoFile   string    `json:"video_file"`
	Persons     string    `json:"persons"`
	Speakers    []Speaker `json:"speakers"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Missing     bool      `json:"missing"`
}

func (t IndexedTalk) Type() string {
	return talkType
}

func newIndexedTalk(record metadata.Record) IndexedTalk {
	return IndexedTalk{
		PretalxID:   record.PretalxID,
		VideoFile:   record.VideoFile,
		Persons:     record.Persons,
		Speakers:    newSpeakers(record.Persons),
		Title:       record.Title,
		Description: record.Description,
		Missing:     record.Missing(),
	}
}

// newSpeakers splits the joined persons of a record.
func newSpeakers(persons string) []Speaker {
	if persons == "" {
		return nil
	}
	names := strings.Split(persons, ", ")
	speakers := make([]Speaker, 0, len(names))
	for _, name := range names {
		speakers = append(speakers, Speaker{
			Name: name,
			Slug: textfmt.Slugify(name),
		})
	}
	return speakers
}

// talkFromFields rebuilds a talk from the stored fields of a search hit.
func talkFromFields(fields map[string]interface{}) IndexedTalk {
	str := func(name string) string {
		s, _ := fields[name].(string)
		return s
	}
	missing, _ := fields["missing"].(bool)
	names := strs(fields["speakers.name"])
	slugs := strs(fields["speakers.slug"])
	var speakers []Speaker
	for i, name := range names {
		speaker := Speaker{Name: name}
		if i < len(slugs) {
			speaker.Slug = slugs[i]
		}
		speakers = append(speakers, speaker)
	}
	return IndexedTalk{
		PretalxID:   str("pretalx_id"),
		VideoFile:   str("video_file"),
		Persons:     str("persons"),
		Speakers:    speakers,
		Title:       str("title"),
		Description: str("description"),
		Missing:     missing,
	}
}

// strs normalizes a stored field that holds one or several values.
func strs(v interface{}) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []interface{}:
		res := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}
	return nil
}

// Result is a page of catalog hits.
type Result struct {
	Total uint64        `json:"total"`
	Talks []IndexedTalk `json:"talks"`
}

// State is persisted next to the index folders and names the current one.
type State struct {
	Index string `json:"index"`
}
