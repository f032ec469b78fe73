// Package i18n loads the embedded locale files and renders user-facing text.
package i18n

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/tartampluch/go-manse/internal/almanac"
	"github.com/tartampluch/go-manse/internal/config"
	"github.com/tartampluch/go-manse/internal/sexagenary"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeSuffix = ".json"
)

// Translator holds the message bundle for every embedded language.
type Translator struct {
	bundle    *goi18n.Bundle
	languages []string
	matcher   language.Matcher
}

// New loads every locales/active.<lang>.json file. Files that fail to load are
// logged and skipped, so a broken locale never prevents startup.
func New() *Translator {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	t := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		t.matcher = language.NewMatcher([]language.Tag{language.English})
		return t
	}

	var tags []language.Tag
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeSuffix)
		tag, err := language.Parse(langCode)
		if langCode == "" || err != nil {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localeDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
		t.languages = append(t.languages, langCode)
		tags = append(tags, tag)
	}

	if len(tags) == 0 {
		tags = []language.Tag{language.English}
	}
	t.matcher = language.NewMatcher(tags)
	return t
}

// Languages returns the codes of the loaded locales.
func (t *Translator) Languages() []string { return t.languages }

// Match picks the best loaded language for the given preferences, which may be
// plain codes ("ko") or Accept-Language values ("ko-KR,ko;q=0.9,en;q=0.8").
// It falls back to the default language when nothing matches.
func (t *Translator) Match(prefs ...string) string {
	var tags []language.Tag
	for _, p := range prefs {
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return config.DefaultLanguage
	}

	_, idx, confidence := t.matcher.Match(tags...)
	if confidence == language.No || idx >= len(t.languages) {
		return config.DefaultLanguage
	}
	return t.languages[idx]
}

// Localizer returns a message renderer for the best match of prefs.
func (t *Translator) Localizer(prefs ...string) *Localizer {
	lang := t.Match(prefs...)
	return &Localizer{
		lang: lang,
		loc:  goi18n.NewLocalizer(t.bundle, lang),
	}
}

// Localizer renders messages in one language.
type Localizer struct {
	lang string
	loc  *goi18n.Localizer
}

// Lang returns the language code in use.
func (l *Localizer) Lang() string { return l.lang }

// Msg translates key, returning the key itself when it is missing.
func (l *Localizer) Msg(key string) string {
	return l.MsgData(key, nil)
}

// MsgData translates key with template data.
func (l *Localizer) MsgData(key string, data map[string]any) string {
	if l == nil || l.loc == nil {
		return key
	}
	msg, err := l.loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// Zodiac names the animal sign.
func (l *Localizer) Zodiac(z sexagenary.Zodiac) string {
	return l.Msg(config.TKeyZodiacPrefix + z.String())
}

// Calendar names the calendar kind.
func (l *Localizer) Calendar(k almanac.Kind) string {
	switch k {
	case almanac.LunarCommon:
		return l.Msg(config.TKeyCalLunarCommon)
	case almanac.LunarLeap:
		return l.Msg(config.TKeyCalLunarLeap)
	default:
		return l.Msg(config.TKeyCalSolar)
	}
}

// Age renders a Korean age.
func (l *Localizer) Age(age int) string {
	return l.MsgData(config.TKeyAgeSuffix, map[string]any{"Age": age})
}

// EventSummary renders the title of a lunar birthday event.
func (l *Localizer) EventSummary(name string, age int) string {
	return l.MsgData(config.TKeyEvtSummary, map[string]any{"Name": name, "Age": age})
}
