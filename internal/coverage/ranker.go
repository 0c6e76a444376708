package coverage

import (
	"fmt"
	"sort"
	"time"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
)

// Ranker computes the ordered pool of substitutes for one (date, period).
// Unlike gap resolution it is fail-fast: malformed input is rejected before
// any store access, so an empty result always means nobody is free.
type Ranker struct {
	stores Stores
	bell   *BellSchedule
}

func NewRanker(stores Stores, bell *BellSchedule) *Ranker {
	return &Ranker{
		stores: stores,
		bell:   bell,
	}
}

// RankCandidates returns every active teacher free to cover (date, period),
// best candidate first. classLabel, when non-empty, activates the same-class
// affinity rule.
//
// Ordering: recoverable hours descending, then teachers of the target class,
// then surname. Standby teachers at this weekly position are always eligible
// on the strength of their own slot, though an independent absence or an
// existing booking still excludes them.
func (k *Ranker) RankCandidates(date time.Time, period int32, weekday domain.Weekday, classLabel string) ([]Candidate, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	if period < 1 || period > k.bell.MaxPeriod() {
		return nil, fmt.Errorf("%w: period %d out of range 1..%d", domain.ErrInvalidInput, period, k.bell.MaxPeriod())
	}
	if _, err := domain.ParseWeekday(string(weekday)); err != nil {
		return nil, err
	}

	teachers, err := k.stores.Teachers.GetActiveTeachers()
	if err != nil {
		return nil, err
	}

	slots, err := k.stores.Timetable.GetSlotsByWeekdayAndPeriod(weekday, period, false)
	if err != nil {
		return nil, err
	}

	// A standby slot is availability, not a lesson, so it never puts its own
	// teacher in the teaching set.
	teaching := make(map[int64]bool)
	standby := make(map[int64]bool)
	for _, slot := range slots {
		switch slot.Kind {
		case domain.SlotKindStandby:
			standby[slot.TeacherID] = true
		default:
			teaching[slot.TeacherID] = true
		}
	}

	absences, err := k.stores.Absences.GetAbsencesOverlapping(date, date)
	if err != nil {
		return nil, err
	}
	absent := make(map[int64]bool)
	for _, absence := range absences {
		absent[absence.TeacherID] = true
	}

	substituteIDs, err := k.stores.Assignments.GetActiveSubstituteIDs(date, period)
	if err != nil {
		return nil, err
	}
	booked := make(map[int64]bool)
	for _, id := range substituteIDs {
		booked[id] = true
	}

	classTeachers, err := k.teachersOfClass(classLabel)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0)
	for _, teacher := range teachers {
		if absent[teacher.ID] || booked[teacher.ID] {
			continue
		}
		if teaching[teacher.ID] && !standby[teacher.ID] {
			continue
		}

		candidates = append(candidates, Candidate{
			Teacher:   teacher,
			IsStandby: standby[teacher.ID],
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.RecoverableHours != b.RecoverableHours {
			return a.RecoverableHours > b.RecoverableHours
		}
		if classTeachers[a.ID] != classTeachers[b.ID] {
			return classTeachers[a.ID]
		}
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ID < b.ID
	})

	return candidates, nil
}

// teachersOfClass resolves the affinity set for the target class label.
// An unknown label deactivates the rule rather than failing the call.
func (k *Ranker) teachersOfClass(classLabel string) (map[int64]bool, error) {
	set := make(map[int64]bool)
	if classLabel == "" {
		return set, nil
	}

	classes, err := k.stores.Catalog.GetAllClasses()
	if err != nil {
		return nil, err
	}

	for _, class := range classes {
		if class.Label() == classLabel {
			ids, err := k.stores.Timetable.GetTeacherIDsByClass(class.ID)
			if err != nil {
				return nil, err
			}
			for _, id := range ids {
				set[id] = true
			}
			return set, nil
		}
	}

	return set, nil
}
