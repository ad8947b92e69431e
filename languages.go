package currency

// languageCountries is the fallback for tags without a usable region subtag.
var languageCountries = map[string]string{
	"ar":  "SA",
	"cs":  "CZ",
	"da":  "DK",
	"de":  "DE",
	"el":  "GR",
	"en":  "US",
	"es":  "ES",
	"fi":  "FI",
	"fil": "PH",
	"fr":  "FR",
	"he":  "IL",
	"hi":  "IN",
	"hu":  "HU",
	"id":  "ID",
	"it":  "IT",
	"ja":  "JP",
	"ko":  "KR",
	"ms":  "MY",
	"nb":  "NO",
	"nl":  "NL",
	"nn":  "NO",
	"no":  "NO",
	"pl":  "PL",
	"pt":  "BR",
	"ru":  "RU",
	"sv":  "SE",
	"th":  "TH",
	"tr":  "TR",
	"uk":  "UA",
	"ur":  "PK",
	"vi":  "VN",
	"zh":  "CN",
}
