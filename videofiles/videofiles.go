// Package videofiles maps recorded video files to the talks they belong to.
//
// The listing is a text file with one `<pretalx-link>;<video-file-path>`
// entry per line. The video files are expected to live in
// `.../<day>/<room>/<file>` folders, so day and room are taken from the
// path while the talk is identified by the last segment of the link.
package videofiles

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const separator = ";"

// ErrMalformedLine is returned for listing lines that cannot be mapped to a
// day, room and talk.
var ErrMalformedLine = errors.New("malformed video file listing line")

// Index is a day -> room -> talk id -> file path lookup.
type Index struct {
	files map[string]map[string]map[string]string
	size  int
}

// Load builds the index from the listing file at p.
func Load(p string) (*Index, error) {
	fp, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open video file listing %s", p)
	}
	defer fp.Close()
	idx, err := Build(fp)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read video file listing %s", p)
	}
	return idx, nil
}

// Build reads a listing line by line. Later lines overwrite earlier ones
// for the same day, room and talk.
func Build(r io.Reader) (*Index, error) {
	idx := &Index{files: make(map[string]map[string]map[string]string)}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		day, room, talkID, file, err := parseLine(scanner.Text())
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		idx.add(day, room, talkID, file)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "Failed to scan listing")
	}
	return idx, nil
}

func parseLine(line string) (day, room, talkID, file string, err error) {
	fields := strings.Split(line, separator)
	if len(fields) != 2 {
		return "", "", "", "", errors.Wrapf(ErrMalformedLine, "expected 2 fields separated by %q, got %d", separator, len(fields))
	}
	link := segments(fields[0])
	if len(link) == 0 {
		return "", "", "", "", errors.Wrapf(ErrMalformedLine, "no talk id in link %q", fields[0])
	}
	file = strings.TrimSpace(fields[1])
	parts := segments(file)
	if len(parts) < 3 {
		return "", "", "", "", errors.Wrapf(ErrMalformedLine, "no day and room folder in path %q", file)
	}
	return parts[len(parts)-3], parts[len(parts)-2], link[len(link)-1], file, nil
}

// segments splits a slash separated path or link into its non-empty parts.
func segments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s == "" || s == "." {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (i *Index) add(day, room, talkID, file string) {
	rooms, ok := i.files[day]
	if !ok {
		rooms = make(map[string]map[string]string)
		i.files[day] = rooms
	}
	talks, ok := rooms[room]
	if !ok {
		talks = make(map[string]string)
		rooms[room] = talks
	}
	if _, exists := talks[talkID]; !exists {
		i.size++
	}
	talks[talkID] = file
}

// Lookup returns the video file recorded for a talk.
func (i *Index) Lookup(day, room, talkID string) (string, bool) {
	file, ok := i.files[day][room][talkID]
	return file, ok
}

// Len is the number of distinct talks in the index.
func (i *Index) Len() int {
	return i.size
}
