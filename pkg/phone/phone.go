package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used to parse numbers written without a country prefix.
const DefaultRegion = "US"

// Normalize returns the E.164 form of raw when it parses as a valid number
// for region. Anything else is returned trimmed and unchanged: the number is
// only shown to a human, so a bad value is never an error.
func Normalize(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	parsed, ok := parse(raw, region)
	if !ok {
		return raw
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

// Region reports the ISO region of a valid number, or "" when unknown.
func Region(raw, region string) string {
	parsed, ok := parse(strings.TrimSpace(raw), region)
	if !ok {
		return ""
	}
	code := phonenumbers.GetRegionCodeForNumber(parsed)
	if code == "ZZ" {
		return ""
	}
	return code
}

// IsSupportedRegion reports whether region is a region phonenumbers knows.
func IsSupportedRegion(region string) bool {
	_, ok := phonenumbers.GetSupportedRegions()[strings.ToUpper(region)]
	return ok
}

func parse(raw, region string) (*phonenumbers.PhoneNumber, bool) {
	if raw == "" {
		return nil, false
	}
	if region == "" {
		region = DefaultRegion
	}

	parsed, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return nil, false
	}
	return parsed, true
}
