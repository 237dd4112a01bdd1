// Package i18n resolves message ids to user-facing text from the
// embedded per-language toml catalogs. A miss at any level falls back
// to the id itself so an untranslated error never blanks a response.
package i18n

import (
	"embed"
	"log/slog"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed *.toml
var catalogs embed.FS

type Localizer struct {
	registry map[string]*i18n.Localizer
}

func NewLocalizer(languages ...string) Localizer {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	l := Localizer{registry: make(map[string]*i18n.Localizer)}
	for _, lang := range languages {
		if _, err := bundle.LoadMessageFileFS(catalogs, lang+".toml"); err != nil {
			slog.Error("load message catalog", slog.String("lang", lang), slog.Any("error", err))
			continue
		}
		l.registry[lang] = i18n.NewLocalizer(bundle, lang)
	}
	return l
}

func (l Localizer) Get(lang, id string) string {
	return l.localize(lang, id, nil)
}

func (l Localizer) GetWithData(lang, id string, data map[string]interface{}) string {
	return l.localize(lang, id, data)
}

func (l Localizer) localize(lang, id string, data map[string]interface{}) string {
	localizer := l.registry[lang]
	if localizer == nil {
		return id
	}

	str, err := localizer.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{ID: id, Other: id},
		TemplateData:   data,
	})
	if err != nil {
		slog.Info("localize message", slog.String("id", id), slog.String("lang", lang), slog.Any("error", err))
		return id
	}
	return str
}
