package main

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// The console mirrors the de-DE formats of the original dashboards:
// thousands separated with dots, decimal comma, fixed unit suffix.
var localePrinter = message.NewPrinter(language.German)

type fieldFormat struct {
	suffix string
}

var (
	iskFormat  = fieldFormat{suffix: "ISK"}
	daysFormat = fieldFormat{suffix: "days"}
)

// display renders a raw value for showing. A raw value that does not
// parse is shown as-is rather than dropped.
func (f fieldFormat) display(raw string) string {
	value, err := parseRawNumber(raw)
	if err != nil {
		return raw
	}
	return formatLocaleNumber(value) + " " + f.suffix
}

// raw recovers the editable representation from a displayed one.
// Round-trip invariant: f.raw(f.display(r)) == r for numeric r.
func (f fieldFormat) raw(display string) string {
	value := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(display), " "+f.suffix))
	value = strings.ReplaceAll(value, ".", "")
	value = strings.ReplaceAll(value, ",", ".")
	return value
}

func parseRawNumber(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(trimmed, 64)
}

func formatLocaleNumber(value float64) string {
	return localePrinter.Sprintf("%v", number.Decimal(value))
}

func formatISK(value float64) string {
	return formatLocaleNumber(value) + " ISK"
}

func formatDays(value float64) string {
	return formatLocaleNumber(value) + " days"
}

func formatBoolMark(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
