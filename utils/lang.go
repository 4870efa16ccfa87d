package utils

import (
	"path"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

var bundle *i18n.Bundle = i18n.NewBundle(language.English)

func InitI18NBundle() {
	LoadI18NBundle(viper.GetString("i18n.dir"))
}

// LoadI18NBundle loads the message files under dir
func LoadI18NBundle(dir string) {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	bundle.MustLoadMessageFile(path.Join(dir, "en.yaml"))
	bundle.MustLoadMessageFile(path.Join(dir, "ru.yaml"))
}

func NewLocalizer(langs ...string) *i18n.Localizer {
	return i18n.NewLocalizer(bundle, langs...)
}

// Localize returns the message of id in the preferred languages. The
// fallback is used when no translation is loaded.
func Localize(localizer *i18n.Localizer, id, fallback string) string {
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{
			ID:    id,
			Other: fallback,
		},
	})
	if err != nil {
		return fallback
	}
	return msg
}
