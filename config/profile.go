// Package config holds the conference profile, the per-conference tables
// used to derive video metadata, and the environment based settings.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Profile describes how talks of one conference are published.
type Profile struct {
	// TitlePrefix is put in front of every talk title.
	TitlePrefix string `yaml:"title_prefix"`
	// ConferenceHashtag is the first hashtag of every description.
	ConferenceHashtag string `yaml:"conference_hashtag"`
	// AcademicTrack is the track label of talks without a type hashtag.
	AcademicTrack string `yaml:"academic_track"`
	// ExcludedRooms are schedule room labels that never have recordings.
	ExcludedRooms []string `yaml:"excluded_rooms"`
	// TypeHashtags maps schedule conference acronyms to a hashtag.
	TypeHashtags map[string]string `yaml:"type_hashtags"`
	// RoomMapping maps schedule room labels to the folder names used for
	// the recordings.
	RoomMapping map[string]string `yaml:"room_mapping"`
	// AdditionalPersons names the actual speaker of talks where pretalx
	// lists someone else, keyed by talk id.
	AdditionalPersons map[string]string `yaml:"additional_persons"`
}

// DefaultProfile is the FOSS4G Europe 2024 profile.
func DefaultProfile() Profile {
	return Profile{
		TitlePrefix:       "FOSS4GE 2024",
		ConferenceHashtag: "#foss4ge2024",
		AcademicTrack:     "Academic track",
		ExcludedRooms:     []string{"General online", "Academic online"},
		TypeHashtags: map[string]string{
			"foss4g-europe-2024": "#GeneralTrack",
		},
		RoomMapping: map[string]string{
			"Destination Earth (Van46 ring)": "Destination_Earth",
			"GEOCAT (301)":                   "GEOCAT",
			"LAStools (327)":                 "LAStools",
			"QFieldCloud (246)":              "QFieldCloud",
			"Omicum":                         "Omicum",
		},
		AdditionalPersons: map[string]string{},
	}
}

// LoadProfile reads a YAML profile. Keys missing from the file keep the
// values of DefaultProfile; tables given in the file replace the default
// tables as a whole.
func LoadProfile(p string) (Profile, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return Profile{}, errors.Wrapf(err, "Failed to read profile %s", p)
	}
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return Profile{}, errors.Wrapf(err, "Failed to parse profile %s", p)
	}
	profile = profile.withDefaults(DefaultProfile())
	if err := profile.Validate(); err != nil {
		return Profile{}, errors.Wrapf(err, "Invalid profile %s", p)
	}
	return profile, nil
}

func (p Profile) withDefaults(d Profile) Profile {
	if p.TitlePrefix == "" {
		p.TitlePrefix = d.TitlePrefix
	}
	if p.ConferenceHashtag == "" {
		p.ConferenceHashtag = d.ConferenceHashtag
	}
	if p.AcademicTrack == "" {
		p.AcademicTrack = d.AcademicTrack
	}
	if p.ExcludedRooms == nil {
		p.ExcludedRooms = d.ExcludedRooms
	}
	if p.TypeHashtags == nil {
		p.TypeHashtags = d.TypeHashtags
	}
	if p.RoomMapping == nil {
		p.RoomMapping = d.RoomMapping
	}
	if p.AdditionalPersons == nil {
		p.AdditionalPersons = d.AdditionalPersons
	}
	return p
}

func (p Profile) Validate() error {
	if p.TitlePrefix == "" {
		return errors.New("title_prefix must not be empty")
	}
	if p.ConferenceHashtag == "" {
		return errors.New("conference_hashtag must not be empty")
	}
	if len(p.RoomMapping) == 0 {
		return errors.New("room_mapping must not be empty")
	}
	for label, folder := range p.RoomMapping {
		if folder == "" {
			return errors.Errorf("room_mapping for %q must not be empty", label)
		}
	}
	return nil
}

// IsExcludedRoom reports whether a schedule room never has recordings.
func (p Profile) IsExcludedRoom(label string) bool {
	for _, excluded := range p.ExcludedRooms {
		if excluded == label {
			return true
		}
	}
	return false
}
