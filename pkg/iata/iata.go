// Package iata validates and labels 3-letter IATA airport/city codes, the
// unit of origin/destination selection.
package iata

import "strings"

// airports maps codes to display labels. Subset of the backend's selectable
// directory, centered on the routes the product serves.
var airports = map[string]string{
	"AKL": "Auckland - New Zealand",
	"AMS": "Amsterdam - Netherlands",
	"AQP": "Arequipa - Peru",
	"ATH": "Athens - Greece",
	"ATL": "Atlanta - United States",
	"AUH": "Abu Dhabi - United Arab Emirates",
	"BCN": "Barcelona - Spain",
	"BER": "Berlin - Germany",
	"BKK": "Bangkok - Thailand",
	"BOG": "Bogota - Colombia",
	"BOS": "Boston - United States",
	"BRU": "Brussels - Belgium",
	"BUE": "Buenos Aires - Argentina",
	"CCS": "Caracas - Venezuela",
	"CDG": "Paris Charles de Gaulle - France",
	"CUN": "Cancun - Mexico",
	"CUZ": "Cusco - Peru",
	"DEL": "Delhi - India",
	"DXB": "Dubai - United Arab Emirates",
	"EZE": "Buenos Aires Ezeiza - Argentina",
	"FCO": "Rome Fiumicino - Italy",
	"FRA": "Frankfurt - Germany",
	"GIG": "Rio de Janeiro - Brazil",
	"GRU": "Sao Paulo Guarulhos - Brazil",
	"HAV": "Havana - Cuba",
	"HKG": "Hong Kong - China",
	"IST": "Istanbul - Turkey",
	"JFK": "New York JFK - United States",
	"LAX": "Los Angeles - United States",
	"LHR": "London Heathrow - United Kingdom",
	"LIM": "Lima - Peru",
	"LIS": "Lisbon - Portugal",
	"MAD": "Madrid - Spain",
	"MEX": "Mexico City - Mexico",
	"MIA": "Miami - United States",
	"MUC": "Munich - Germany",
	"NRT": "Tokyo Narita - Japan",
	"ORY": "Paris Orly - France",
	"PTY": "Panama City - Panama",
	"SCL": "Santiago - Chile",
	"SFO": "San Francisco - United States",
	"SIN": "Singapore - Singapore",
	"SYD": "Sydney - Australia",
	"UIO": "Quito - Ecuador",
	"YYZ": "Toronto - Canada",
	"ZRH": "Zurich - Switzerland",
}

// Normalize uppercases and trims a code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether code (after normalization) is 3 ASCII letters.
func Valid(code string) bool {
	code = Normalize(code)
	if len(code) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// Lookup returns the display label for a code and whether it is in the
// directory. A code can be valid without being listed.
func Lookup(code string) (string, bool) {
	label, ok := airports[Normalize(code)]
	return label, ok
}

// Label renders "LIM (Lima - Peru)" when the code is listed, else the bare
// code.
func Label(code string) string {
	code = Normalize(code)
	if label, ok := airports[code]; ok {
		return code + " (" + label + ")"
	}
	return code
}
