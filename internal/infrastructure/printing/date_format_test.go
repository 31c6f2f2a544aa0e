package printing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestMatchLocale(t *testing.T) {
	tests := []struct {
		locale string
		want   language.Tag
	}{
		{"", language.French},
		{"fr", language.French},
		{"fr-CA", language.French},
		{"en", language.English},
		{"en-US", language.English},
		{"de-AT", language.German},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			got, err := MatchLocale(tt.locale)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchLocale_Unsupported(t *testing.T) {
	_, err := MatchLocale("ja")
	assert.True(t, HasErrorCode(err, ErrCodeUnsupportedLocale))

	_, err = MatchLocale("not a locale")
	assert.True(t, HasErrorCode(err, ErrCodeUnsupportedLocale))
}

func TestDateFormatter_Format(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		locale   string
		timezone string
		want     string
	}{
		{"fr", "", "05/03/2024 02:30 PM"},
		{"en", "", "03/05/2024, 02:30 PM"},
		{"de", "", "05.03.2024, 02:30 PM"},
		{"fr", "Europe/Paris", "05/03/2024 03:30 PM"},
		{"en", "America/New_York", "03/05/2024, 09:30 AM"},
	}

	for _, tt := range tests {
		t.Run(tt.locale+"/"+tt.timezone, func(t *testing.T) {
			f, err := NewDateFormatter(tt.locale, tt.timezone)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Format(at))
		})
	}
}

func TestDateFormatter_ZeroTime(t *testing.T) {
	f, err := NewDateFormatter("fr", "")
	require.NoError(t, err)
	assert.Equal(t, "", f.Format(time.Time{}))
	assert.Equal(t, language.French, f.Locale())
}
