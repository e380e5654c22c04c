package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfile(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")

	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, p Profile)
		wantErr bool
	}{
		{
			name: "full profile",
			content: `
title_prefix: FOSS4G 2025
conference_hashtag: "#foss4g2025"
academic_track: Academic
excluded_rooms: [Online]
type_hashtags:
  foss4g-2025: "#FOSS4G"
room_mapping:
  Main hall: Main_Hall
additional_persons:
  ABCDEF: Jane Doe
`,
			check: func(t *testing.T, p Profile) {
				assert.Equal(t, "FOSS4G 2025", p.TitlePrefix)
				assert.Equal(t, "#foss4g2025", p.ConferenceHashtag)
				assert.Equal(t, "Academic", p.AcademicTrack)
				assert.Equal(t, []string{"Online"}, p.ExcludedRooms)
				assert.Equal(t, map[string]string{"foss4g-2025": "#FOSS4G"}, p.TypeHashtags)
				assert.Equal(t, map[string]string{"Main hall": "Main_Hall"}, p.RoomMapping)
				assert.Equal(t, map[string]string{"ABCDEF": "Jane Doe"}, p.AdditionalPersons)
			},
		},
		{
			name: "partial profile keeps defaults",
			content: `
title_prefix: FOSS4GE 2025
room_mapping:
  Omicum: Omicum_2025
`,
			check: func(t *testing.T, p Profile) {
				assert.Equal(t, "FOSS4GE 2025", p.TitlePrefix)
				assert.Equal(t, "#foss4ge2024", p.ConferenceHashtag)
				assert.Equal(t, []string{"General online", "Academic online"}, p.ExcludedRooms)
				assert.Equal(t, map[string]string{"Omicum": "Omicum_2025"}, p.RoomMapping)
			},
		},
		{
			name:    "invalid yaml",
			content: "title_prefix: [",
			wantErr: true,
		},
		{
			name: "empty room folder",
			content: `
room_mapping:
  Omicum: ""
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(dir, filepath.Base(t.Name())+".yaml")
			filet.File(t, p, tt.content)

			profile, err := LoadProfile(p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, profile)
		})
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join("does", "not", "exist.yaml"))
	assert.Error(t, err)
}

func TestShippedProfileMatchesDefault(t *testing.T) {
	profile, err := LoadProfile(filepath.Join("..", "profiles", "foss4ge-2024.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile(), profile)
}

func TestIsExcludedRoom(t *testing.T) {
	p := DefaultProfile()
	assert.True(t, p.IsExcludedRoom("General online"))
	assert.True(t, p.IsExcludedRoom("Academic online"))
	assert.False(t, p.IsExcludedRoom("Omicum"))
}

func TestLoadSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s, err := LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, "info", s.LogLevel)
		assert.Equal(t, 30*time.Second, s.FetchTimeout)
		assert.Equal(t, "talkmeta/1.0", s.UserAgent)
		assert.Equal(t, ".", s.CacheDir)
		assert.Equal(t, "", s.Profile)
	})

	t.Run("custom values", func(t *testing.T) {
		t.Setenv("TALKMETA_LOG_LEVEL", "debug")
		t.Setenv("TALKMETA_FETCH_TIMEOUT", "5s")
		t.Setenv("TALKMETA_CACHE_DIR", "/tmp/schedules")
		t.Setenv("TALKMETA_PROFILE", "profiles/foss4ge-2024.yaml")

		s, err := LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, "debug", s.LogLevel)
		assert.Equal(t, 5*time.Second, s.FetchTimeout)
		assert.Equal(t, "/tmp/schedules", s.CacheDir)
		assert.Equal(t, "profiles/foss4ge-2024.yaml", s.Profile)
	})

	t.Run("invalid duration", func(t *testing.T) {
		t.Setenv("TALKMETA_FETCH_TIMEOUT", "soon")

		s, err := LoadSettings()
		assert.Error(t, err)
		assert.Nil(t, s)
	})
}
