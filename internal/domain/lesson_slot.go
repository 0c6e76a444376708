package domain

import (
	"fmt"
	"time"
)

type Weekday string

const (
	WeekdayMonday    Weekday = "MON"
	WeekdayTuesday   Weekday = "TUE"
	WeekdayWednesday Weekday = "WED"
	WeekdayThursday  Weekday = "THU"
	WeekdayFriday    Weekday = "FRI"
	WeekdaySaturday  Weekday = "SAT"
)

var Weekdays = []Weekday{
	WeekdayMonday,
	WeekdayTuesday,
	WeekdayWednesday,
	WeekdayThursday,
	WeekdayFriday,
	WeekdaySaturday,
}

// WeekdayOf maps a calendar date to the school weekday enum. Sunday has no
// lessons, so the second return value reports whether the day is a school day.
func WeekdayOf(t time.Time) (Weekday, bool) {
	switch t.Weekday() {
	case time.Monday:
		return WeekdayMonday, true
	case time.Tuesday:
		return WeekdayTuesday, true
	case time.Wednesday:
		return WeekdayWednesday, true
	case time.Thursday:
		return WeekdayThursday, true
	case time.Friday:
		return WeekdayFriday, true
	case time.Saturday:
		return WeekdaySaturday, true
	default:
		return "", false
	}
}

func ParseWeekday(s string) (Weekday, error) {
	for _, wd := range Weekdays {
		if string(wd) == s {
			return wd, nil
		}
	}
	return "", fmt.Errorf("%w: unknown weekday %q", ErrInvalidInput, s)
}

// SlotKind distinguishes a real lesson from a standby slot, where the teacher
// has no class and is available to cover for absent colleagues.
type SlotKind string

const (
	SlotKindLesson  SlotKind = "lesson"
	SlotKindStandby SlotKind = "standby"
)

type LessonSlot struct {
	ID        int64    `json:"id"`
	TeacherID int64    `json:"teacherID"`
	SubjectID *int64   `json:"subjectID"`
	ClassID   *int64   `json:"classID"`
	Weekday   Weekday  `json:"weekday"`
	Period    int32    `json:"period"`
	StartTime string   `json:"startTime"` // "HH:MM:SS"
	EndTime   string   `json:"endTime"`   // "HH:MM:SS"
	Room      *string  `json:"room"`
	Kind      SlotKind `json:"kind"`
}

func (s *LessonSlot) IsStandby() bool {
	return s.Kind == SlotKindStandby
}
