package currency

// timezoneCountries maps IANA zones for major population centers to their
// country. It is not exhaustive; unmapped zones fall through to the language.
var timezoneCountries = map[string]string{
	// Americas
	"America/New_York":               "US",
	"America/Chicago":                "US",
	"America/Denver":                 "US",
	"America/Phoenix":                "US",
	"America/Los_Angeles":            "US",
	"America/Anchorage":              "US",
	"America/Detroit":                "US",
	"Pacific/Honolulu":               "US",
	"US/Eastern":                     "US",
	"US/Central":                     "US",
	"US/Mountain":                    "US",
	"US/Pacific":                     "US",
	"America/Puerto_Rico":            "PR",
	"America/Toronto":                "CA",
	"America/Vancouver":              "CA",
	"America/Edmonton":               "CA",
	"America/Winnipeg":               "CA",
	"America/Halifax":                "CA",
	"America/Mexico_City":            "MX",
	"America/Monterrey":              "MX",
	"America/Tijuana":                "MX",
	"America/Sao_Paulo":              "BR",
	"America/Manaus":                 "BR",
	"America/Fortaleza":              "BR",
	"America/Argentina/Buenos_Aires": "AR",
	"America/Buenos_Aires":           "AR",
	"America/Santiago":               "CL",
	"America/Bogota":                 "CO",
	"America/Lima":                   "PE",
	"America/Guayaquil":              "EC",
	"America/El_Salvador":            "SV",

	// Europe
	"Europe/London":     "GB",
	"Europe/Dublin":     "IE",
	"Europe/Lisbon":     "PT",
	"Europe/Madrid":     "ES",
	"Atlantic/Canary":   "ES",
	"Europe/Paris":      "FR",
	"Europe/Brussels":   "BE",
	"Europe/Amsterdam":  "NL",
	"Europe/Luxembourg": "LU",
	"Europe/Berlin":     "DE",
	"Europe/Zurich":     "CH",
	"Europe/Vienna":     "AT",
	"Europe/Rome":       "IT",
	"Europe/Malta":      "MT",
	"Europe/Copenhagen": "DK",
	"Europe/Oslo":       "NO",
	"Europe/Stockholm":  "SE",
	"Europe/Helsinki":   "FI",
	"Europe/Tallinn":    "EE",
	"Europe/Riga":       "LV",
	"Europe/Vilnius":    "LT",
	"Europe/Warsaw":     "PL",
	"Europe/Prague":     "CZ",
	"Europe/Bratislava": "SK",
	"Europe/Budapest":   "HU",
	"Europe/Ljubljana":  "SI",
	"Europe/Zagreb":     "HR",
	"Europe/Athens":     "GR",
	"Asia/Nicosia":      "CY",
	"Europe/Istanbul":   "TR",
	"Europe/Kiev":       "UA",
	"Europe/Kyiv":       "UA",
	"Europe/Moscow":     "RU",

	// Middle East and Africa
	"Asia/Dubai":          "AE",
	"Asia/Riyadh":         "SA",
	"Asia/Kuwait":         "KW",
	"Asia/Bahrain":        "BH",
	"Asia/Jerusalem":      "IL",
	"Asia/Tel_Aviv":       "IL",
	"Africa/Cairo":        "EG",
	"Africa/Lagos":        "NG",
	"Africa/Nairobi":      "KE",
	"Africa/Johannesburg": "ZA",

	// Asia and Oceania
	"Asia/Kolkata":        "IN",
	"Asia/Calcutta":       "IN",
	"Asia/Karachi":        "PK",
	"Asia/Bangkok":        "TH",
	"Asia/Ho_Chi_Minh":    "VN",
	"Asia/Saigon":         "VN",
	"Asia/Jakarta":        "ID",
	"Asia/Kuala_Lumpur":   "MY",
	"Asia/Singapore":      "SG",
	"Asia/Manila":         "PH",
	"Asia/Hong_Kong":      "HK",
	"Asia/Shanghai":       "CN",
	"Asia/Chongqing":      "CN",
	"Asia/Taipei":         "TW",
	"Asia/Seoul":          "KR",
	"Asia/Tokyo":          "JP",
	"Australia/Sydney":    "AU",
	"Australia/Melbourne": "AU",
	"Australia/Brisbane":  "AU",
	"Australia/Perth":     "AU",
	"Australia/Adelaide":  "AU",
	"Pacific/Auckland":    "NZ",
}
