package phrases

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/lestrrat-go/strftime"

	"snap_behat/domain/errs"
)

var relativeDate = regexp.MustCompile(`^([+-]?\d+)\s*(second|minute|hour|day|week|month|year)s?$`)

// ParseDate resolves a date argument in loc. Besides absolute formats it
// accepts now, today, tomorrow, yesterday and offsets such as "+2 days".
func ParseDate(value string, now time.Time, loc *time.Location) (time.Time, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	now = now.In(loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch v {
	case "":
		return time.Time{}, errs.New(errs.MalformedInput, "empty date")
	case "now":
		return now, nil
	case "today", "midnight":
		return midnight, nil
	case "tomorrow":
		return midnight.AddDate(0, 0, 1), nil
	case "yesterday":
		return midnight.AddDate(0, 0, -1), nil
	}

	if m := relativeDate.FindStringSubmatch(v); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, errs.Wrap(errs.MalformedInput, "invalid date offset "+strconv.Quote(value), err)
		}
		switch m[2] {
		case "second":
			return now.Add(time.Duration(n) * time.Second), nil
		case "minute":
			return now.Add(time.Duration(n) * time.Minute), nil
		case "hour":
			return now.Add(time.Duration(n) * time.Hour), nil
		case "day":
			return now.AddDate(0, 0, n), nil
		case "week":
			return now.AddDate(0, 0, 7*n), nil
		case "month":
			return now.AddDate(0, n, 0), nil
		default:
			return now.AddDate(n, 0, 0), nil
		}
	}

	t, err := dateparse.ParseIn(strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, errs.Wrap(errs.MalformedInput, "could not parse date "+strconv.Quote(value), err)
	}
	return t, nil
}

// DateParts is a date split into the values of separate form fields.
type DateParts struct {
	Day   int
	Month int
	Year  int
}

// Split decomposes t in loc into day, month and year.
func Split(t time.Time, loc *time.Location) DateParts {
	t = t.In(loc)
	return DateParts{Day: t.Day(), Month: int(t.Month()), Year: t.Year()}
}

// FormatDate renders t with a strftime pattern. %d is rendered without the
// leading zero, matching how the site prints dates.
func FormatDate(t time.Time, loc *time.Location, pattern string) (string, error) {
	t = t.In(loc)
	pattern = strings.ReplaceAll(pattern, "%d", strconv.Itoa(t.Day()))
	out, err := strftime.Format(pattern, t)
	if err != nil {
		return "", errs.Wrap(errs.MalformedInput, "invalid date format "+strconv.Quote(pattern), err)
	}
	return out, nil
}
