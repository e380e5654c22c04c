// Package metadata turns a pretalx schedule and a video file index into one
// publication record per recorded talk.
package metadata

import "strings"

// MissingVideoFile is used as video file of talks without a recording.
const MissingVideoFile = "ERROR: no video file found"

const (
	maxTitleLength       = 100
	maxDescriptionLength = 5000
)

// Record is the metadata of one talk video as consumed by the upload
// tooling.
type Record struct {
	VideoFile   string `json:"video_file"`
	Persons     string `json:"persons"`
	PretalxID   string `json:"pretalx_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Missing reports whether no recording was found for the talk.
func (r Record) Missing() bool {
	return r.VideoFile == MissingVideoFile
}

// Draft holds the already shortened fields of a record.
type Draft struct {
	VideoFile   string
	Persons     []string
	PretalxID   string
	Title       string
	Description string
}

var quoteEscaper = strings.NewReplacer("'", "&apos;")

// Assemble builds the final record. Single quotes in title and description
// are replaced by their HTML entity so the record can be embedded in
// single-quoted shell arguments.
func Assemble(d Draft) Record {
	return Record{
		VideoFile:   d.VideoFile,
		Persons:     strings.Join(d.Persons, ", "),
		PretalxID:   d.PretalxID,
		Title:       quoteEscaper.Replace(d.Title),
		Description: quoteEscaper.Replace(d.Description),
	}
}
