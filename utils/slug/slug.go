package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reHyphens  = regexp.MustCompile(`-+`)
)

// Make turns free text into a URL-safe slug: lowercased, diacritics
// stripped, anything outside [a-z0-9] collapsed to single hyphens.
func Make(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// Strip combining marks so "universitéti" -> "universiteti".
	var buf []rune
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		buf = append(buf, r)
	}
	s = string(buf)

	s = reNonAlnum.ReplaceAllString(s, "-")
	s = reHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// EnsureUnique returns base unchanged when no row in table already uses it
// in column, otherwise appends -1, -2, ... until the slug is free.
// excludeID (when non-zero) skips the row being updated.
func EnsureUnique(tx *gorm.DB, table, column, base string, excludeID uint) (string, error) {
	candidate := base
	for counter := 1; ; counter++ {
		q := tx.Table(table).Where(fmt.Sprintf("%s = ?", column), candidate)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}

		var count int64
		if err := q.Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}
