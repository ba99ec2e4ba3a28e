package model

// Timezone is one entry of the fixed common-zone list offered for progressed
// chart overrides. Value is the IANA identifier sent on the wire.
type Timezone struct {
	Value string
	Label string
}

// CommonTimezones is the fixed set offered in pickers. An absent override
// means "use the event's natal timezone".
var CommonTimezones = []Timezone{
	{Value: "America/New_York", Label: "ET (New York)"},
	{Value: "America/Chicago", Label: "CT (Chicago)"},
	{Value: "America/Denver", Label: "MT (Denver)"},
	{Value: "America/Los_Angeles", Label: "PT (Los Angeles)"},
	{Value: "Europe/London", Label: "GMT (London)"},
	{Value: "Europe/Paris", Label: "CET (Paris)"},
	{Value: "Asia/Tokyo", Label: "JST (Tokyo)"},
	{Value: "Australia/Sydney", Label: "AEST (Sydney)"},
}

// TimezoneLabel returns the display label for an IANA id, or the id itself
// when it is not in the common list.
func TimezoneLabel(value string) string {
	for _, tz := range CommonTimezones {
		if tz.Value == value {
			return tz.Label
		}
	}
	return value
}
