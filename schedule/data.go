package schedule

import (
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Document is the part of a pretalx schedule export the pipeline needs.
type Document struct {
	Schedule struct {
		Conference Conference `json:"conference"`
	} `json:"schedule"`
}

// Conference returns the conference the document describes.
func (d *Document) Conference() *Conference {
	return &d.Schedule.Conference
}

type Conference struct {
	Acronym string `json:"acronym"`
	Days    []Day  `json:"days"`
}

// Day keeps its rooms in the order of the schedule document.
type Day struct {
	Date  string                                 `json:"date"`
	Rooms *orderedmap.OrderedMap[string, []Talk] `json:"rooms"`
}

// Room is a schedule room label with its talks.
type Room struct {
	Label string
	Talks []Talk
}

// EachRoom returns the rooms of a day in document order.
func (d Day) EachRoom() []Room {
	if d.Rooms == nil {
		return nil
	}
	rooms := make([]Room, 0, d.Rooms.Len())
	for pair := d.Rooms.Oldest(); pair != nil; pair = pair.Next() {
		rooms = append(rooms, Room{Label: pair.Key, Talks: pair.Value})
	}
	return rooms
}

type Person struct {
	PublicName string `json:"public_name"`
}

type Talk struct {
	URL         string   `json:"url"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Abstract    string   `json:"abstract"`
	Persons     []Person `json:"persons"`
	Track       *string  `json:"track"`
	DoNotRecord bool     `json:"do_not_record"`
	Date        string   `json:"date"`
}

// ID is the pretalx code of the talk, the last-but-one segment of its URL
// (the URL ends with a slash).
func (t Talk) ID() (string, error) {
	parts := strings.Split(t.URL, "/")
	if len(parts) < 2 {
		return "", errors.Errorf("Talk URL %q has no talk id", t.URL)
	}
	return parts[len(parts)-2], nil
}

// PublicNames lists the speakers in schedule order.
func (t Talk) PublicNames() []string {
	names := make([]string, 0, len(t.Persons))
	for _, p := range t.Persons {
		names = append(names, p.PublicName)
	}
	return names
}

var startLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05-0700",
}

// Start parses the scheduled start. The offset of the schedule is kept.
func (t Talk) Start() (time.Time, error) {
	var err error
	for _, layout := range startLayouts {
		var start time.Time
		start, err = time.Parse(layout, t.Date)
		if err == nil {
			return start, nil
		}
	}
	return time.Time{}, errors.Wrapf(err, "Failed to parse talk start %q", t.Date)
}

// Decode parses a schedule document.
func Decode(r io.Reader) (*Document, error) {
	doc := &Document{}
	if err := json.NewDecoder(r).Decode(doc); err != nil {
		return nil, errors.Wrap(err, "Failed to decode schedule")
	}
	return doc, nil
}
