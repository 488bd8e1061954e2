package enrich

import (
	"strconv"
)

// FormatDegrees renders a latitude or longitude with four decimals.
func FormatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// FormatCurrency renders "{name}({symbol})". Unknown codes are shown raw and a
// missing symbol leaves the parentheses empty. Countries without any currency
// render as the empty string.
func FormatCurrency(tbl Localizer, code, symbol string) string {
	if code == "" {
		return ""
	}
	return lookup(tbl, code) + "(" + symbol + ")"
}

// FormatLanguage renders the localized language name, or the raw code.
func FormatLanguage(tbl Localizer, code string) string {
	return lookup(tbl, code)
}

// FormatWeather renders "{description}({temp}°C)" using the shortest
// decimal form of the temperature.
func FormatWeather(w WeatherReport) string {
	return w.Description + "(" + strconv.FormatFloat(w.TemperatureC, 'f', -1, 64) + "°C)"
}

func lookup(tbl Localizer, code string) string {
	if tbl == nil {
		return code
	}
	return tbl.Lookup(code)
}
