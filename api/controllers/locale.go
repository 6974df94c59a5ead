package controllers

import (
	"net/http"
	"strings"
)

const (
	localeEnglish = "en"
	localeChinese = "zh"
)

// resolveLocale picks the storefront locale: an explicit ?locale= wins,
// otherwise the first supported Accept-Language entry, defaulting to en.
func resolveLocale(r *http.Request) string {
	if l := normalizeLocale(r.URL.Query().Get("locale")); l != "" {
		return l
	}
	for _, part := range strings.Split(r.Header.Get("Accept-Language"), ",") {
		lang := strings.TrimSpace(part)
		if idx := strings.IndexByte(lang, ';'); idx >= 0 {
			lang = lang[:idx]
		}
		if l := normalizeLocale(lang); l != "" {
			return l
		}
	}
	return localeEnglish
}

func normalizeLocale(raw string) string {
	lang := strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.IndexByte(lang, '-'); idx >= 0 {
		lang = lang[:idx]
	}
	switch lang {
	case localeEnglish, localeChinese:
		return lang
	}
	return ""
}
