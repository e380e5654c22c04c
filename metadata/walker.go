package metadata

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/foss4g-video/talkmeta/config"
	"github.com/foss4g-video/talkmeta/markdown"
	"github.com/foss4g-video/talkmeta/schedule"
	"github.com/foss4g-video/talkmeta/textfmt"
)

const displayTimeFormat = "02.01.2006 15:04:05"

// escapedNewline keeps line breaks intact within single-line JSON strings.
const escapedNewline = `\n`

var (
	// ErrUnknownRoom is returned for schedule rooms missing from the room
	// mapping of the profile.
	ErrUnknownRoom = errors.New("room has no folder mapping")
	// ErrUnknownAcronym is returned when a non-academic talk is found for a
	// conference without type hashtag.
	ErrUnknownAcronym = errors.New("conference acronym has no type hashtag")
)

var abstractEscaper = strings.NewReplacer(
	"\t", "    ",
	"\r\n", escapedNewline,
	"\n", escapedNewline,
)

// VideoLookup finds the recording of a talk.
type VideoLookup interface {
	Lookup(day, room, talkID string) (string, bool)
}

// Stats summarizes one walk over a schedule.
type Stats struct {
	Emitted int
	Skipped int
	Missing int
}

// Walker walks a schedule and emits a record for every recorded talk.
type Walker struct {
	profile  config.Profile
	videos   VideoLookup
	renderer markdown.Renderer
	sink     Sink
	days     map[string]struct{}
	rooms    map[string]struct{}
}

type Option func(*Walker)

// OnlyDays restricts the walk to the given schedule dates.
func OnlyDays(days []string) Option {
	return func(w *Walker) {
		w.days = toSet(days)
	}
}

// OnlyRooms restricts the walk to the given room folder names.
func OnlyRooms(rooms []string) Option {
	return func(w *Walker) {
		w.rooms = toSet(rooms)
	}
}

func toSet(items []string) map[string]struct{} {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func allowed(set map[string]struct{}, item string) bool {
	if set == nil {
		return true
	}
	_, ok := set[item]
	return ok
}

func NewWalker(profile config.Profile, videos VideoLookup, renderer markdown.Renderer, sink Sink, opts ...Option) *Walker {
	w := &Walker{
		profile:  profile,
		videos:   videos,
		renderer: renderer,
		sink:     sink,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk emits the records of all talks of doc. It stops at the first fatal
// error; records emitted up to that point stay emitted.
func (w *Walker) Walk(doc *schedule.Document) (Stats, error) {
	var stats Stats
	conf := doc.Conference()
	for _, day := range conf.Days {
		if !allowed(w.days, day.Date) {
			continue
		}
		if err := w.walkDay(conf.Acronym, day, &stats); err != nil {
			return stats, errors.Wrapf(err, "Failed to process %s", conf.Acronym)
		}
	}
	log.Info().
		Str("conference", conf.Acronym).
		Int("emitted", stats.Emitted).
		Int("skipped", stats.Skipped).
		Int("missing", stats.Missing).
		Msg("Processed schedule")
	return stats, nil
}

func (w *Walker) walkDay(acronym string, day schedule.Day, stats *Stats) error {
	for _, room := range day.EachRoom() {
		if w.profile.IsExcludedRoom(room.Label) {
			continue
		}
		folder, ok := w.profile.RoomMapping[room.Label]
		if !ok {
			return errors.Wrapf(ErrUnknownRoom, "day %s, room %q", day.Date, room.Label)
		}
		if !allowed(w.rooms, folder) {
			continue
		}
		for _, talk := range room.Talks {
			record, ok, err := w.buildRecord(acronym, day.Date, room.Label, folder, talk)
			if err != nil {
				return errors.Wrapf(err, "day %s, room %q", day.Date, room.Label)
			}
			if !ok {
				stats.Skipped++
				continue
			}
			if err := w.sink.Emit(record); err != nil {
				return err
			}
			stats.Emitted++
			if record.Missing() {
				stats.Missing++
			}
		}
	}
	return nil
}

func (w *Walker) buildRecord(acronym, date, roomLabel, roomFolder string, talk schedule.Talk) (Record, bool, error) {
	talkID, err := talk.ID()
	if err != nil {
		return Record{}, false, err
	}
	logger := log.With().Str("date", date).Str("room", roomLabel).Str("talk", talkID).Logger()
	logger.Debug().Str("slug", strings.TrimPrefix(talk.Slug, acronym+"-")).Msg("Processing talk")

	if talk.DoNotRecord {
		logger.Debug().Msg("Skipping talk that was not recorded")
		return Record{}, false, nil
	}

	videoFile, ok := w.videos.Lookup(date, roomFolder, talkID)
	if !ok {
		logger.Warn().Msg("No video file found")
		videoFile = MissingVideoFile
	}

	title := textfmt.TextToLength(fmt.Sprintf("%s | %s", w.profile.TitlePrefix, talk.Title), maxTitleLength, 0)

	persons := textfmt.Unique(talk.PublicNames())
	if speaker, ok := w.profile.AdditionalPersons[talkID]; ok {
		persons = append([]string{speaker}, persons...)
	}

	typeHashtag, err := w.typeHashtag(acronym, talk.Track)
	if err != nil {
		return Record{}, false, errors.Wrapf(err, "talk %s", talkID)
	}
	hashtags := strings.Join([]string{w.profile.ConferenceHashtag, typeHashtag, textfmt.ToHashtag(talk.Track)}, escapedNewline)

	start, err := talk.Start()
	if err != nil {
		return Record{}, false, errors.Wrapf(err, "talk %s", talkID)
	}

	suffix := fmt.Sprintf(`\n\n%s\n\n%s\n\nRoom: %s @ %s\n\n%s`,
		strings.Join(persons, escapedNewline),
		textfmt.EnsureHTTPS(talk.URL),
		roomLabel,
		start.Format(displayTimeFormat),
		hashtags,
	)

	abstract := abstractEscaper.Replace(talk.Abstract)
	abstract = textfmt.TextToLength(abstract, maxDescriptionLength, utf8.RuneCountInString(suffix))
	rendered, err := w.renderer.Render(abstract)
	if err != nil {
		return Record{}, false, errors.Wrapf(err, "talk %s", talkID)
	}

	return Assemble(Draft{
		VideoFile:   videoFile,
		Persons:     persons,
		PretalxID:   talkID,
		Title:       title,
		Description: strings.TrimSpace(rendered) + suffix,
	}), true, nil
}

func (w *Walker) typeHashtag(acronym string, track *string) (string, error) {
	if track != nil && *track == w.profile.AcademicTrack {
		return "", nil
	}
	hashtag, ok := w.profile.TypeHashtags[acronym]
	if !ok {
		return "", errors.Wrapf(ErrUnknownAcronym, "acronym %q", acronym)
	}
	return hashtag, nil
}
