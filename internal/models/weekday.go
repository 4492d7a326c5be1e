package models

import (
	"fmt"
	"strings"
	"time"
)

// WeekDay is the API's weekday enumeration.
type WeekDay string

const (
	Monday    WeekDay = "MONDAY"
	Tuesday   WeekDay = "TUESDAY"
	Wednesday WeekDay = "WEDNESDAY"
	Thursday  WeekDay = "THURSDAY"
	Friday    WeekDay = "FRIDAY"
	Saturday  WeekDay = "SATURDAY"
	Sunday    WeekDay = "SUNDAY"
)

// WeekDays returns the seven days in routine display order (Monday first).
func WeekDays() []WeekDay {
	return []WeekDay{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

var weekDayNames = map[string]WeekDay{
	"mon": Monday, "monday": Monday, "lunes": Monday, "lun": Monday,
	"tue": Tuesday, "tuesday": Tuesday, "martes": Tuesday, "mar": Tuesday,
	"wed": Wednesday, "wednesday": Wednesday, "miercoles": Wednesday, "miércoles": Wednesday, "mie": Wednesday,
	"thu": Thursday, "thursday": Thursday, "jueves": Thursday, "jue": Thursday,
	"fri": Friday, "friday": Friday, "viernes": Friday, "vie": Friday,
	"sat": Saturday, "saturday": Saturday, "sabado": Saturday, "sábado": Saturday, "sab": Saturday,
	"sun": Sunday, "sunday": Sunday, "domingo": Sunday, "dom": Sunday,
}

// ParseWeekDay accepts English or Spanish names and three-letter forms.
func ParseWeekDay(s string) (WeekDay, error) {
	if wd, ok := weekDayNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return wd, nil
	}
	return "", fmt.Errorf("invalid weekday: %s", s)
}

// ParseWeekDays parses a comma-separated list, rejecting duplicates.
func ParseWeekDays(s string) ([]WeekDay, error) {
	seen := make(map[WeekDay]bool)
	var days []WeekDay
	for _, part := range strings.Split(s, ",") {
		wd, err := ParseWeekDay(part)
		if err != nil {
			return nil, err
		}
		if seen[wd] {
			return nil, fmt.Errorf("weekday listed twice: %s", wd)
		}
		seen[wd] = true
		days = append(days, wd)
	}
	return days, nil
}

// WeekDayOf maps a time.Weekday to the API enumeration.
func WeekDayOf(d time.Weekday) WeekDay {
	switch d {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// Label is the Spanish display name.
func (w WeekDay) Label() string {
	switch w {
	case Monday:
		return "Lunes"
	case Tuesday:
		return "Martes"
	case Wednesday:
		return "Miércoles"
	case Thursday:
		return "Jueves"
	case Friday:
		return "Viernes"
	case Saturday:
		return "Sábado"
	case Sunday:
		return "Domingo"
	default:
		return string(w)
	}
}
