package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayUsesLocaleSeparatorsAndSuffix(t *testing.T) {
	assert.Equal(t, "1.234,5 ISK", iskFormat.display("1234.5"))
	assert.Equal(t, "150.000.000 ISK", iskFormat.display("150000000"))
	assert.Equal(t, "30 days", daysFormat.display("30"))
}

func TestRawRoundTrip(t *testing.T) {
	raws := []string{"30", "1234.5", "150000000", "0", "550.25"}
	for _, raw := range raws {
		assert.Equal(t, raw, daysFormat.raw(daysFormat.display(raw)), "days round trip for %s", raw)
		assert.Equal(t, raw, iskFormat.raw(iskFormat.display(raw)), "isk round trip for %s", raw)
	}
}

func TestRawStripsOnlyMatchingSuffix(t *testing.T) {
	assert.Equal(t, "30", daysFormat.raw("30 days"))
	assert.Equal(t, "30 ISK", daysFormat.raw("30 ISK"))
}

func TestDisplayPassesThroughUnparseableValues(t *testing.T) {
	assert.Equal(t, "n/a", iskFormat.display("n/a"))
	assert.Equal(t, "", iskFormat.display(""))
}

func TestParseRawNumber(t *testing.T) {
	value, err := parseRawNumber(" 42.5 ")
	assert.NoError(t, err)
	assert.Equal(t, 42.5, value)

	_, err = parseRawNumber("")
	assert.Error(t, err)
	_, err = parseRawNumber("abc")
	assert.Error(t, err)
}

func TestFormatBoolMark(t *testing.T) {
	assert.Equal(t, "yes", formatBoolMark(true))
	assert.Equal(t, "no", formatBoolMark(false))
}
