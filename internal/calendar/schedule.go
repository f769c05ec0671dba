package calendar

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"agendaapi/internal/model"
)

var (
	undefinedRe = regexp.MustCompile(`(?i)a definir|preferencialmente|entre os dias`)
	rangeRe     = regexp.MustCompile(`(?i)^((?:\d{1,2}\s*(?:,|e|a|\s)\s*)*)(\d{1,2})\s*(?:/|de)\s*(\pL+|\d{1,2})\s*(?:(?:/|de)\s*(\d{2,4}))?$`)
	monthYearRe = regexp.MustCompile(`(?i)^(\pL+)\s*(?:/|de)\s*(\d{2,4})`)
	dayRe       = regexp.MustCompile(`\d{1,2}`)
)

var exactLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

var monthPrefixes = []string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// IsUndefinedText reports whether the text explicitly leaves the date open
// ("A definir", "Preferencialmente ...", "Entre os dias ...").
func IsUndefinedText(text string) bool {
	return undefinedRe.MatchString(text)
}

// ParseScheduleText reads the free-form date column of legacy agenda sheets,
// e.g. "2025-01-29 00:00:00", "19 a 22/02/2025", "17 , 18 e 19/03/2025" or
// "Fevereiro/25 A definir". Missing years and unknown month names fall back to
// refYear and refMonth. Month-only texts resolve to the 15th. ok is false when
// the text names no usable day.
func ParseScheduleText(text string, refYear int, refMonth time.Month) (start, end model.Date, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Date{}, model.Date{}, false
	}

	if undefinedRe.MatchString(text) {
		if d, found := monthOnly(text); found {
			return d, d, true
		}
		return model.Date{}, model.Date{}, false
	}

	for _, layout := range exactLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			d := model.NewDate(t.Year(), t.Month(), t.Day())
			return d, d, true
		}
	}

	if m := rangeRe.FindStringSubmatch(text); m != nil {
		days := dayRe.FindAllString(m[1], -1)
		days = append(days, m[2])
		first, _ := strconv.Atoi(days[0])
		last, _ := strconv.Atoi(days[len(days)-1])

		month := monthFromToken(m[3], refMonth)
		year := refYear
		if m[4] != "" {
			year = expandYear(m[4])
		}

		if month < time.January || month > time.December {
			return model.Date{}, model.Date{}, false
		}
		// "28 a 02/03" starts in the month before the one written.
		startYear, startMonth := year, month
		if last < first {
			startMonth--
			if startMonth < time.January {
				startMonth, startYear = time.December, year-1
			}
		}
		s, okS := validDate(startYear, startMonth, first)
		e, okE := validDate(year, month, last)
		if okS && okE {
			return s, e, true
		}
		return model.Date{}, model.Date{}, false
	}

	if d, found := monthOnly(text); found {
		return d, d, true
	}
	return model.Date{}, model.Date{}, false
}

func monthOnly(text string) (model.Date, bool) {
	m := monthYearRe.FindStringSubmatch(text)
	if m == nil {
		return model.Date{}, false
	}
	month, known := monthFromName(m[1])
	if !known {
		return model.Date{}, false
	}
	return model.NewDate(expandYear(m[2]), month, 15), true
}

func monthFromToken(tok string, fallback time.Month) time.Month {
	if n, err := strconv.Atoi(tok); err == nil {
		return time.Month(n)
	}
	if m, ok := monthFromName(tok); ok {
		return m
	}
	return fallback
}

func monthFromName(name string) (time.Month, bool) {
	lower := strings.ToLower(name)
	for i, p := range monthPrefixes {
		if strings.HasPrefix(lower, p) {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

func expandYear(s string) int {
	y, _ := strconv.Atoi(s)
	if y < 100 {
		y += 2000
	}
	return y
}

func validDate(year int, month time.Month, day int) (model.Date, bool) {
	d := model.NewDate(year, month, day)
	if d.Day() != day || d.Month() != month {
		return model.Date{}, false
	}
	return d, true
}
