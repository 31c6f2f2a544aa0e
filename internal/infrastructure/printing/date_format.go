package printing

import (
	"fmt"
	"time"
	_ "time/tzdata" // zoneinfo for hosts without /usr/share/zoneinfo

	"golang.org/x/text/language"
)

// supportedLocales are the locales with a known label date layout; the first
// one is the default.
var supportedLocales = []language.Tag{
	language.French,
	language.English,
	language.German,
}

var dateLayouts = map[language.Tag]string{
	language.French:  "02/01/2006 03:04 PM",
	language.English: "01/02/2006, 03:04 PM",
	language.German:  "02.01.2006, 03:04 PM",
}

var localeMatcher = language.NewMatcher(supportedLocales)

// DateFormatter formats timestamps with a fixed locale layout in a fixed zone
type DateFormatter struct {
	tag      language.Tag
	layout   string
	location *time.Location
}

// NewDateFormatter resolves locale (a BCP 47 tag such as "fr" or "en-GB")
// to one of the supported layouts. An empty timezone means UTC.
func NewDateFormatter(locale, timezone string) (*DateFormatter, error) {
	tag, err := MatchLocale(locale)
	if err != nil {
		return nil, err
	}

	loc := time.UTC
	if timezone != "" {
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, NewRenderError(ErrCodeUnsupportedLocale, "unknown time zone "+timezone, err)
		}
	}

	return &DateFormatter{tag: tag, layout: dateLayouts[tag], location: loc}, nil
}

// MatchLocale returns the supported locale closest to locale. An empty
// locale resolves to French.
func MatchLocale(locale string) (language.Tag, error) {
	if locale == "" {
		return supportedLocales[0], nil
	}
	requested, err := language.Parse(locale)
	if err != nil {
		return language.Und, NewRenderError(ErrCodeUnsupportedLocale, "invalid locale "+locale, err)
	}
	_, idx, confidence := localeMatcher.Match(requested)
	if confidence == language.No {
		return language.Und, NewRenderError(ErrCodeUnsupportedLocale,
			fmt.Sprintf("no label date layout for locale %s", locale), nil)
	}
	return supportedLocales[idx], nil
}

// Format returns t in the formatter's zone and layout; the zero time formats as ""
func (f *DateFormatter) Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(f.location).Format(f.layout)
}

// Locale returns the resolved locale
func (f *DateFormatter) Locale() language.Tag {
	return f.tag
}
