package coverage

import (
	"testing"
	"time"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankCandidatesExcludesBusyTeachers(t *testing.T) {
	f := newFakeStores()
	f.addTeacher(1, "Bruna", "Bassi", 0) // on standby at the slot
	f.addTeacher(2, "Carla", "Conti", 0) // teaching at the slot
	f.addTeacher(3, "Dario", "Deluca", 0) // absent that day
	f.addTeacher(4, "Elena", "Esposito", 0) // genuinely free
	f.addStandby(1, domain.WeekdayMonday, 3)
	f.addLesson(2, domain.WeekdayMonday, 3, nil, nil)
	f.addAbsence(10, 3, monday, monday)

	ranker := NewRanker(f.stores(), DefaultBellSchedule())

	candidates, err := ranker.RankCandidates(monday, 3, domain.WeekdayMonday, "")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	byID := make(map[int64]Candidate)
	for _, c := range candidates {
		byID[c.ID] = c
	}
	require.Contains(t, byID, int64(1))
	require.Contains(t, byID, int64(4))
	assert.True(t, byID[1].IsStandby)
	assert.False(t, byID[4].IsStandby)
}

func TestRankCandidatesStandbyStillExcludedWhenAbsentOrBooked(t *testing.T) {
	f := newFakeStores()
	f.addTeacher(1, "Bruna", "Bassi", 0)
	f.addTeacher(2, "Carla", "Conti", 0)
	f.addTeacher(3, "Dario", "Deluca", 0)
	f.addStandby(1, domain.WeekdayMonday, 3)
	f.addStandby(2, domain.WeekdayMonday, 3)
	f.addAbsence(10, 1, monday, monday) // standby teacher is independently absent
	f.assignments = append(f.assignments, &domain.Assignment{
		ID:           1,
		TeacherID:    3,
		SubstituteID: 2, // standby teacher already booked elsewhere this period
		Date:         monday,
		Period:       3,
		Status:       domain.AssignmentScheduled,
	})

	ranker := NewRanker(f.stores(), DefaultBellSchedule())

	candidates, err := ranker.RankCandidates(monday, 3, domain.WeekdayMonday, "")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, int64(3), candidates[0].ID)
}

func TestRankCandidatesOrdering(t *testing.T) {
	f := newFakeStores()
	f.classes[7] = &domain.Class{ID: 7, Year: 3, Section: "B"}
	f.addTeacher(1, "Anna", "Verdi", 5)
	f.addTeacher(2, "Bice", "Alberti", 5)
	f.addTeacher(3, "Caio", "Zanetti", 9)
	f.addTeacher(4, "Dina", "Alberti", 5)
	// Teacher 1 teaches class 3B at another position, granting affinity.
	f.addLesson(1, domain.WeekdayTuesday, 1, ptr(int64(7)), nil)

	ranker := NewRanker(f.stores(), DefaultBellSchedule())

	candidates, err := ranker.RankCandidates(monday, 3, domain.WeekdayMonday, "3B")
	require.NoError(t, err)
	require.Len(t, candidates, 4)

	// Highest recoverable hours first, then class affinity, then surname.
	assert.Equal(t, int64(3), candidates[0].ID)
	assert.Equal(t, int64(1), candidates[1].ID)
	assert.Equal(t, int64(2), candidates[2].ID)
	assert.Equal(t, int64(4), candidates[3].ID)
}

func TestRankCandidatesDeterministic(t *testing.T) {
	f := newFakeStores()
	f.addTeacher(1, "Anna", "Verdi", 2)
	f.addTeacher(2, "Bice", "Alberti", 2)
	f.addTeacher(3, "Caio", "Moro", 2)
	f.addTeacher(4, "Dina", "Moro", 2)

	ranker := NewRanker(f.stores(), DefaultBellSchedule())

	first, err := ranker.RankCandidates(monday, 1, domain.WeekdayMonday, "")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := ranker.RankCandidates(monday, 1, domain.WeekdayMonday, "")
		require.NoError(t, err)
		require.Equal(t, len(first), len(again))
		for j := range first {
			assert.Equal(t, first[j].ID, again[j].ID)
		}
	}

	assert.Equal(t, int64(2), first[0].ID) // Alberti
	assert.Equal(t, int64(3), first[1].ID) // Moro, Caio
	assert.Equal(t, int64(4), first[2].ID) // Moro, Dina
	assert.Equal(t, int64(1), first[3].ID) // Verdi
}

func TestRankCandidatesRejectsMalformedInput(t *testing.T) {
	ranker := NewRanker(newFakeStores().stores(), DefaultBellSchedule())

	_, err := ranker.RankCandidates(time.Time{}, 1, domain.WeekdayMonday, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ranker.RankCandidates(monday, 0, domain.WeekdayMonday, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ranker.RankCandidates(monday, 9, domain.WeekdayMonday, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ranker.RankCandidates(monday, 1, domain.Weekday("SUN"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
