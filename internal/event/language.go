package event

// Languages maps the supported translation language codes to display names.
var Languages = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
	"ru": "Russian",
	"ar": "Arabic",
	"hi": "Hindi",
}

func ValidLanguage(code string) bool {
	_, ok := Languages[code]
	return ok
}
