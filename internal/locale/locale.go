// Package locale holds the viewer-language conventions used when rendering
// display fields: date-time layout, status markers and the upstream lang hint.
package locale

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/i474232898/map-point-info/internal/enrich"
)

// hourToken stands for the unpadded 24-hour clock hour in a TimeLayout.
// time.Format has no verb for it.
const hourToken = "{H}"

// Locale is one supported display convention.
type Locale struct {
	Tag        language.Tag
	TimeLayout string
	Pending    string
	Failed     string
	Unset      string
}

var (
	Japanese = Locale{
		Tag:        language.Japanese,
		TimeLayout: "2006/1/2 " + hourToken + ":04:05",
		Pending:    "取得中...",
		Failed:     "取得失敗",
		Unset:      "-",
	}
	English = Locale{
		Tag:        language.English,
		TimeLayout: "1/2/2006, 3:04:05 PM",
		Pending:    "Loading...",
		Failed:     "Failed",
		Unset:      "-",
	}
)

// supported is ordered to match matcher; the first entry is the fallback.
var supported = []Locale{Japanese, English}

var matcher = language.NewMatcher([]language.Tag{language.Japanese, language.English})

// Parse resolves a BCP 47 tag such as "ja", "ja-JP" or "en-GB" to the closest
// supported Locale. Unsupported languages fall back to Japanese.
func Parse(s string) (Locale, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Japanese, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return Locale{}, fmt.Errorf("invalid locale %q: %w", s, err)
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Japanese, nil
	}
	return supported[idx], nil
}

// FormatTime renders a wall-clock time with the locale's TimeLayout.
func (l Locale) FormatTime(t time.Time) string {
	s := t.Format(l.TimeLayout)
	return strings.Replace(s, hourToken, strconv.Itoa(t.Hour()), 1)
}

// Lang returns the two-letter language code, e.g. for the weather API's lang parameter.
func (l Locale) Lang() string {
	base, _ := l.Tag.Base()
	return base.String()
}

// Text renders a field state as display text.
func (l Locale) Text(st enrich.FieldState) string {
	switch st.Status {
	case enrich.StatusPending:
		return l.Pending
	case enrich.StatusFailed:
		return l.Failed
	case enrich.StatusResolved:
		return st.Value
	default:
		return l.Unset
	}
}
