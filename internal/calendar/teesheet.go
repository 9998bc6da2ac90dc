package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTeeTime  = errors.New("invalid tee time")
	ErrDuplicateTee    = errors.New("duplicate tee time")
	ErrInvalidTeeSheet = errors.New("invalid tee sheet parameters")
)

// DefaultTeeTimes — три слота по 8 минут, если у расписания они не заданы.
var DefaultTeeTimes = []string{"06:00", "06:08", "06:16"}

// ParseClock разбирает "ЧЧ:ММ" в смещение от полуночи.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTeeTime, s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// FormatClock — обратное к ParseClock.
func FormatClock(d time.Duration) string {
	d = d % (24 * time.Hour)
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}

// TeeSheet строит count ти-таймов от start с шагом intervalMin минут.
// Слоты не переходят через полночь.
func TeeSheet(start string, intervalMin, count int) ([]string, error) {
	if intervalMin <= 0 || count <= 0 {
		return nil, ErrInvalidTeeSheet
	}
	first, err := ParseClock(start)
	if err != nil {
		return nil, err
	}
	step := time.Duration(intervalMin) * time.Minute
	if first+step*time.Duration(count-1) >= 24*time.Hour {
		return nil, fmt.Errorf("%w: sheet runs past midnight", ErrInvalidTeeSheet)
	}
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, FormatClock(first+step*time.Duration(i)))
	}
	return out, nil
}

// NormalizeTeeTimes проверяет формат и уникальность, приводит к "ЧЧ:ММ".
// Порядок сохраняется: он задаёт номера команд.
func NormalizeTeeTimes(list []string) ([]string, error) {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, raw := range list {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		d, err := ParseClock(raw)
		if err != nil {
			return nil, err
		}
		s := FormatClock(d)
		if _, ok := seen[s]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTee, s)
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

func JoinTeeTimes(list []string) string { return strings.Join(list, ",") }

// NthWeekday возвращает n-й день недели wd в месяце (n с 1).
// false, если такого дня в месяце нет (например, пятой субботы).
func NthWeekday(year int, month time.Month, n int, wd time.Weekday) (time.Time, bool) {
	if n <= 0 {
		return time.Time{}, false
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(wd) - int(first.Weekday()) + 7) % 7
	d := first.AddDate(0, 0, offset+7*(n-1))
	if d.Month() != month {
		return time.Time{}, false
	}
	return d, true
}

// YearlyDates — n-й день недели wd каждого месяца года; месяцы без такого дня пропускаются.
func YearlyDates(year, n int, wd time.Weekday) []time.Time {
	var out []time.Time
	for m := time.January; m <= time.December; m++ {
		if d, ok := NthWeekday(year, m, n, wd); ok {
			out = append(out, d)
		}
	}
	return out
}

var shortWeekdays = map[time.Weekday]string{
	time.Monday:    "Mon",
	time.Tuesday:   "Tue",
	time.Wednesday: "Wed",
	time.Thursday:  "Thu",
	time.Friday:    "Fri",
	time.Saturday:  "Sat",
	time.Sunday:    "Sun",
}

// FormatPlayDate форматирует дату игры для людей: "2026-05-09 (Sat)".
func FormatPlayDate(d time.Time) string {
	return fmt.Sprintf("%s (%s)", d.Format("2006-01-02"), shortWeekdays[d.Weekday()])
}
