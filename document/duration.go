package document

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Duration is an ISO-8601 period such as P3D or PT1H30M. Components are
// kept as written so the value can be rendered back without loss; calendar
// components (years, months) are not normalized into days.
type Duration struct {
	Negative bool
	Years    int
	Months   int
	Weeks    int
	Days     int
	Hours    int
	Minutes  int
	Seconds  float64
}

var ErrInvalidDuration = errors.New("invalid ISO-8601 duration")

// Date components, then an optional time part. Fractions are only accepted
// in the seconds component.
var durationRE = regexp.MustCompile(
	`^(-)?P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)W)?(?:(\d+)D)?` +
		`(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseDuration parses an ISO-8601 period string. A bare "P" or a trailing
// "T" with no time components is rejected, as is anything without at least
// one component. Plain numbers never parse, so digit-only strings cannot be
// mistaken for durations.
func ParseDuration(s string) (Duration, error) {
	m := durationRE.FindStringSubmatch(s)
	if m == nil {
		return Duration{}, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	hasTimePart := strings.Contains(s, "T")
	if m[6] == "" && m[7] == "" && m[8] == "" && hasTimePart {
		return Duration{}, fmt.Errorf("%w: %q has an empty time part", ErrInvalidDuration, s)
	}

	if m[2] == "" && m[3] == "" && m[4] == "" && m[5] == "" && !hasTimePart {
		return Duration{}, fmt.Errorf("%w: %q has no components", ErrInvalidDuration, s)
	}

	var d Duration
	d.Negative = m[1] == "-"
	d.Years = atoiDefault(m[2])
	d.Months = atoiDefault(m[3])
	d.Weeks = atoiDefault(m[4])
	d.Days = atoiDefault(m[5])
	d.Hours = atoiDefault(m[6])
	d.Minutes = atoiDefault(m[7])

	if m[8] != "" {
		sec, err := strconv.ParseFloat(m[8], 64)
		if err != nil {
			return Duration{}, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}

		d.Seconds = sec
	}

	return d, nil
}

func atoiDefault(s string) int {
	if s == "" {
		return 0
	}

	n, _ := strconv.Atoi(s)

	return n
}

// String renders the duration back to ISO-8601 form. The zero duration
// renders as PT0S.
func (d Duration) String() string {
	var b strings.Builder

	if d.Negative {
		b.WriteByte('-')
	}

	b.WriteByte('P')

	if d.Years > 0 {
		fmt.Fprintf(&b, "%dY", d.Years)
	}

	if d.Months > 0 {
		fmt.Fprintf(&b, "%dM", d.Months)
	}

	if d.Weeks > 0 {
		fmt.Fprintf(&b, "%dW", d.Weeks)
	}

	if d.Days > 0 {
		fmt.Fprintf(&b, "%dD", d.Days)
	}

	if d.Hours > 0 || d.Minutes > 0 || d.Seconds != 0 {
		b.WriteByte('T')

		if d.Hours > 0 {
			fmt.Fprintf(&b, "%dH", d.Hours)
		}

		if d.Minutes > 0 {
			fmt.Fprintf(&b, "%dM", d.Minutes)
		}

		if d.Seconds != 0 {
			b.WriteString(formatSeconds(d.Seconds))
			b.WriteByte('S')
		}
	}

	if b.String() == "P" || b.String() == "-P" {
		return "PT0S"
	}

	return b.String()
}

func formatSeconds(sec float64) string {
	if sec == float64(int64(sec)) {
		return strconv.FormatInt(int64(sec), 10)
	}

	return strconv.FormatFloat(sec, 'f', -1, 64)
}
