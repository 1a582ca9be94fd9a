package translation

import (
	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
	"strings"
)

// Configure loads the locale for lang from localesPath. Unknown languages fall back to English.
func Configure(localesPath, lang string) {
	gotext.Configure(localesPath, Normalize(lang), "default")
}

// Normalize turns values such as "en_US.UTF-8" or "pt-BR" into a base language code
func Normalize(lang string) string {
	lang = strings.TrimSpace(lang)
	if i := strings.IndexAny(lang, ".@"); i >= 0 {
		lang = lang[:i]
	}
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return "en"
	}
	base, _ := tag.Base()
	if base.String() == "und" {
		return "en"
	}
	return base.String()
}

func GetLanguage() string {
	lang := gotext.GetLanguage()

	if lang == "und" || lang == "" {
		return "en"
	}

	return lang
}

func Translate(msgID string, vars ...interface{}) string {
	return gotext.Get(msgID, vars...)
}
