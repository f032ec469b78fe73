package i18n_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-manse/internal/almanac"
	"github.com/tartampluch/go-manse/internal/config"
	"github.com/tartampluch/go-manse/internal/i18n"
	"github.com/tartampluch/go-manse/internal/sexagenary"
)

// TestI18nIntegrity ensures that every translation key defined in config.go
// exists in every locale file, and that no locale carries unknown keys.
func TestI18nIntegrity(t *testing.T) {
	keys := []string{
		config.TKeyErrInvalidFormat,
		config.TKeyErrInvalidDate,
		config.TKeyErrInvalidTime,
		config.TKeyErrNotFound,
		config.TKeyErrInternal,
		config.TKeyErrInvalidOption,
		config.TKeyLblBirthDate,
		config.TKeyLblAge,
		config.TKeyLblBlood,
		config.TKeyLblZodiac,
		config.TKeyLblSolarTime,
		config.TKeyLblLunarDate,
		config.TKeyLblSolarDate,
		config.TKeyPillarYear,
		config.TKeyPillarMonth,
		config.TKeyPillarDay,
		config.TKeyPillarHour,
		config.TKeyCalSolar,
		config.TKeyCalLunarCommon,
		config.TKeyCalLunarLeap,
		config.TKeyAgeSuffix,
		config.TKeyEvtSummary,
		config.TKeyFeedbackThanks,
		config.TKeyFeedbackEmpty,
		config.TKeyFeedbackNone,
		config.TKeyFeedbackMiss,
	}
	for b := sexagenary.Branch(0); b < sexagenary.BranchCount; b++ {
		keys = append(keys, config.TKeyZodiacPrefix+b.Zodiac().String())
	}

	defined := make(map[string]bool, len(keys))
	for _, k := range keys {
		defined[k] = true
	}

	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			content, err := os.ReadFile(filepath.Join("locales", "active."+lang+".json"))
			require.NoError(t, err)

			var messages map[string]string
			require.NoError(t, json.Unmarshal(content, &messages), "JSON must be valid")

			for k := range defined {
				assert.NotEmptyf(t, messages[k], "key %q missing in active.%s.json", k, lang)
			}
			for k := range messages {
				assert.Truef(t, defined[k], "key %q in active.%s.json is not used", k, lang)
			}
		})
	}
}

func TestTranslator_Languages(t *testing.T) {
	tr := i18n.New()
	assert.ElementsMatch(t, config.SupportedLanguages, tr.Languages())
}

func TestTranslator_Match(t *testing.T) {
	tr := i18n.New()

	tests := []struct {
		prefs []string
		want  string
	}{
		{nil, config.DefaultLanguage},
		{[]string{""}, config.DefaultLanguage},
		{[]string{"en"}, "en"},
		{[]string{"en-US,en;q=0.9"}, "en"},
		{[]string{"ko-KR,ko;q=0.9,en;q=0.8"}, "ko"},
		{[]string{"", "en-GB"}, "en"},
		{[]string{"not a language!!"}, config.DefaultLanguage},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.prefs, "|"), func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Match(tt.prefs...))
		})
	}
}

func TestLocalizer_Messages(t *testing.T) {
	tr := i18n.New()
	ko := tr.Localizer("ko")
	en := tr.Localizer("en")

	assert.Equal(t, "ko", ko.Lang())
	assert.Contains(t, ko.Msg(config.TKeyErrNotFound), "1900")
	assert.Contains(t, en.Msg(config.TKeyErrNotFound), "2050")

	assert.Equal(t, "54세", ko.Age(54))
	assert.Equal(t, "소띠", ko.Zodiac(sexagenary.BranchChou.Zodiac()))
	assert.Equal(t, "Ox", en.Zodiac(sexagenary.BranchChou.Zodiac()))

	assert.Equal(t, "음력(윤달)", ko.Calendar(almanac.LunarLeap))
	assert.Equal(t, "Solar", en.Calendar(almanac.Solar))

	assert.Equal(t, "김 음력 생일 (54세)", ko.EventSummary("김", 54))
}

func TestLocalizer_MissingKeyFallsBack(t *testing.T) {
	l := i18n.New().Localizer("en")
	assert.Equal(t, "no_such_key", l.Msg("no_such_key"))

	var nilLoc *i18n.Localizer
	assert.Equal(t, "anything", nilLoc.Msg("anything"))
}
