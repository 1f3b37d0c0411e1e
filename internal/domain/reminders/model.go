package reminders

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Type string

const (
	TypeFixedTime Type = "FIXED_TIME"
	TypeInterval  Type = "INTERVAL"
	TypeAsNeeded  Type = "AS_NEEDED"
)

// DefaultMinutesBefore se usa cuando el recordatorio no define su propio offset.
const DefaultMinutesBefore = 5

// MaxMinutesBefore limita el aviso anticipado a un día.
const MaxMinutesBefore = 24 * 60

var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// Reminder pertenece a una medicación (back-reference por ID).
type Reminder struct {
	ID           string
	MedicationID string

	Type           Type
	ScheduleInfo   string // hora del día: "08:00" o "08:00:00"
	CronExpression string
	MinutesBefore  *int // nil => DefaultMinutesBefore

	Active bool
	JobKey string // correlación con el scheduler externo

	CreatedAt time.Time
}

func (r Reminder) LeadTime() time.Duration {
	mins := DefaultMinutesBefore
	if r.MinutesBefore != nil && *r.MinutesBefore >= 0 {
		mins = *r.MinutesBefore
	}
	return time.Duration(mins) * time.Minute
}

// TimeOfDay es una hora local sin fecha.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

var timeOfDayLayouts = []string{"15:04", "15:04:05", "15:04:05.999999999"}

// ParseTimeOfDay acepta HH:MM y HH:MM:SS (con fracción opcional).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeOfDayLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
}

// On combina la fecha civil de day con la hora, en la zona de day.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, t.Second, 0, day.Location())
}

func (t TimeOfDay) String() string {
	if t.Second != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}
