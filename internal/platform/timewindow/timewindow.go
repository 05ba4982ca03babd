// Package timewindow concentra la aritmética de ventanas temporales del
// calendario: solapamiento semiabierto [start, end) y expansión de
// recurrencias en ocurrencias concretas.
package timewindow

import (
	"errors"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

var (
	ErrInvalidWindow    = errors.New("window start must be before end")
	ErrInvalidFrequency = errors.New("unknown recurrence frequency")
	ErrInvalidCount     = errors.New("recurrence count out of range")
	ErrInvalidRule      = errors.New("malformed recurrence rule")
)

// Window es un intervalo semiabierto [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Valid() bool { return w.Start.Before(w.End) }

// Overlaps reporta si dos ventanas comparten algún instante. Con intervalos
// semiabiertos, dos ventanas espalda con espalda (end == start) no se tocan.
func Overlaps(a, b Window) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Frequency es el paso de una recurrencia simple.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(strings.ToLower(strings.TrimSpace(s))) {
	case Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	default:
		return "", ErrInvalidFrequency
	}
}

// Límites del tamaño de una serie. Una "serie" de 1 no es serie.
const (
	MinCount = 2
	MaxCount = 52
)

// Expand genera count ocurrencias a partir de la ventana inicial, todas con
// la misma duración. El paso mensual ancla el día del mes y lo recorta al
// último día en meses cortos (31 ene -> 29 feb -> 31 mar), en vez de
// saltearse el mes.
func Expand(start, end time.Time, freq Frequency, count int) ([]Window, error) {
	if !start.Before(end) {
		return nil, ErrInvalidWindow
	}
	if count < MinCount || count > MaxCount {
		return nil, ErrInvalidCount
	}

	dur := end.Sub(start)
	out := make([]Window, 0, count)

	for i := 0; i < count; i++ {
		var s time.Time
		switch freq {
		case Daily:
			s = start.AddDate(0, 0, i)
		case Weekly:
			s = start.AddDate(0, 0, 7*i)
		case Monthly:
			s = addMonthsClamped(start, i)
		default:
			return nil, ErrInvalidFrequency
		}
		out = append(out, Window{Start: s, End: s.Add(dur)})
	}

	return out, nil
}

// addMonthsClamped suma meses manteniendo el día de anclaje, recortado al
// largo del mes destino. time.AddDate no sirve acá: 31 ene + 1 mes da 2/3 mar.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	m += time.Month(months)
	if max := daysInMonth(y, m); d > max {
		d = max
	}
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Día 0 del mes siguiente = último día de este mes.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ExpandRRule expande una RRULE cruda (RFC 5545) anclada en start, con la
// duración de la ventana inicial y un tope duro de max ocurrencias. Es la
// vía de escape para patrones que frequency+count no expresa (p. ej.
// "BYDAY=MO,WE,FR").
func ExpandRRule(start, end time.Time, rule string, max int) ([]Window, error) {
	if !start.Before(end) {
		return nil, ErrInvalidWindow
	}
	if max < 1 || max > MaxCount {
		return nil, ErrInvalidCount
	}

	r, err := rrule.StrToRRule(strings.TrimSpace(rule))
	if err != nil {
		return nil, ErrInvalidRule
	}
	r.DTStart(start)

	dur := end.Sub(start)
	out := make([]Window, 0, max)

	it := r.Iterator()
	for len(out) < max {
		s, ok := it()
		if !ok {
			break
		}
		out = append(out, Window{Start: s, End: s.Add(dur)})
	}
	if len(out) == 0 {
		return nil, ErrInvalidRule
	}

	return out, nil
}
