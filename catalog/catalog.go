// Package catalog provides the keyed message catalog used for default
// response and error messages, with per-language tables and English
// fallback for missing entries.
package catalog

// Message keys understood by the catalog.
const (
	KeySuccess      = "success"
	KeyUnauthorized = "unauthorized"
	KeyForbidden    = "forbidden"
	KeyValidation   = "validation"
	KeyNotFound     = "not_found"
	KeyInternal     = "internal"
	KeyTimeout      = "timeout"
	KeyUnknown      = "unknown"
)

// Supported languages.
const (
	LangEN = "en"
	LangKR = "kr"
)

var tables = map[string]map[string]string{
	LangEN: {
		KeySuccess:      "success",
		KeyUnauthorized: "Unauthorized",
		KeyForbidden:    "Forbidden",
		KeyValidation:   "Validation failed",
		KeyNotFound:     "Resource not found",
		KeyInternal:     "Internal server error",
		KeyTimeout:      "Request timeout",
		KeyUnknown:      "Unknown error",
	},
	LangKR: {
		KeySuccess:      "성공",
		KeyUnauthorized: "인증이 필요합니다",
		KeyForbidden:    "권한이 없습니다",
		KeyValidation:   "잘못된 요청입니다",
		KeyNotFound:     "리소스를 찾을 수 없습니다",
		KeyInternal:     "서버 내부 오류가 발생했습니다",
		KeyTimeout:      "요청 시간이 초과되었습니다",
		KeyUnknown:      "알 수 없는 오류가 발생했습니다",
	},
}

// T returns the message for key in the given language.
// Unknown languages and missing entries fall back to English;
// a key missing from every table is returned as-is.
func T(lang, key string) string {
	if table, ok := tables[lang]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := tables[LangEN][key]; ok {
		return msg
	}
	return key
}

// Languages returns the languages the catalog has tables for.
func Languages() []string {
	langs := make([]string, 0, len(tables))
	for lang := range tables {
		langs = append(langs, lang)
	}
	return langs
}
