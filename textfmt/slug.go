package textfmt

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

var (
	tagPattern       = regexp.MustCompile(`<[^>]*>`)
	specialPattern   = regexp.MustCompile(`[^\w\s-]`)
	separatorPattern = regexp.MustCompile(`[-\s]+`)
)

// Slugify transliterates data to ASCII and reduces it to lower-case words
// joined by dashes. It follows pelican.utils.slugify.
//
// https://github.com/getpelican/pelican/blob/b27153fe9b9362a3f7f87b90225c26975ba18f1d/pelican/utils.py#L266
func Slugify(data string) string {
	output := unidecode.Unidecode(data)
	output = tagPattern.ReplaceAllString(output, "")
	output = strings.ToLower(norm.NFKD.String(output))
	output = specialPattern.ReplaceAllString(output, "")
	output = separatorPattern.ReplaceAllString(output, "-")
	return strings.TrimSuffix(output, "-")
}
