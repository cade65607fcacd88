package handlers

import (
	"net/http"

	"golang.org/x/text/language"

	"rpsarena/internal/game"
)

var (
	supportedTags = []language.Tag{language.Chinese, language.English}
	localeMatcher = language.NewMatcher(supportedTags)
)

// requestLocale picks the comment locale: an explicit value first, then Accept-Language, then zh
func requestLocale(r *http.Request, explicit string) string {
	if explicit != "" {
		return game.NormalizeLocale(explicit)
	}

	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return game.LocaleZh
	}

	_, index, confidence := localeMatcher.Match(tags...)
	if confidence == language.No {
		return game.LocaleZh
	}
	if supportedTags[index] == language.English {
		return game.LocaleEn
	}
	return game.LocaleZh
}
