package comgate

// Country codes accepted by the create endpoint.
var countryCodes = map[string]struct{}{
	"ALL": {}, "AT": {}, "BE": {}, "CY": {}, "CZ": {}, "DE": {}, "EE": {}, "EL": {}, "ES": {}, "FI": {},
	"FR": {}, "GB": {}, "HR": {}, "HU": {}, "IE": {}, "IT": {}, "LT": {}, "LU": {}, "LV": {}, "MT": {},
	"NL": {}, "NO": {}, "PL": {}, "PT": {}, "RO": {}, "SL": {}, "SK": {}, "SV": {}, "US": {},
}

var currencyCodes = map[string]struct{}{
	"CZK": {}, "EUR": {}, "PLN": {}, "HUF": {}, "USD": {}, "GBP": {}, "RON": {}, "HRK": {}, "NOK": {}, "SEK": {},
}

var langCodes = map[string]struct{}{
	"cs": {}, "sk": {}, "en": {}, "pl": {}, "fr": {}, "ro": {}, "de": {}, "hu": {}, "si": {}, "hr": {},
}

const unknownRejectionMessage = "neznámý kód chyby"

var createErrorMessages = map[int]string{
	1100: "neznámá chyba",
	1102: "zadaný jazyk není podporován",
	1103: "nesprávně zadaná metoda",
	1104: "nelze načíst platbu",
	1107: "cena platby není podporovaná",
	1200: "databázová chyba",
	1301: "neznámý e-shop",
	1303: "propojení nebo jazyk chybí",
	1304: "neplatná kategorie",
	1305: "chybí popis produktu",
	1306: "vyberte správnou metodu",
	1308: "vybraný způsob platby není povolen",
	1309: "nesprávná částka",
	1310: "neznámá měna",
	1311: "neplatný identifikátor bankovního účtu Klienta",
	1316: "e-shop nemá povolené opakované platby",
	1317: "neplatná metoda – nepodporuje opakované platby",
	1319: "nelze založit platbu, problém na straně banky",
	1399: "neočekávaný výsledek z databáze",
	1400: "chybný dotaz",
	1500: "neočekávaná chyba",
}

// IsSupportedCountry reports whether code is a country the gateway accepts.
func IsSupportedCountry(code string) bool {
	_, ok := countryCodes[code]
	return ok
}

// IsSupportedCurrency reports whether code is a currency the gateway accepts.
func IsSupportedCurrency(code string) bool {
	_, ok := currencyCodes[code]
	return ok
}

func IsSupportedLang(code string) bool {
	_, ok := langCodes[code]
	return ok
}

// RejectionMessage returns the human readable message for a create error code.
func RejectionMessage(code int) string {
	if message, ok := createErrorMessages[code]; ok {
		return message
	}
	return unknownRejectionMessage
}
