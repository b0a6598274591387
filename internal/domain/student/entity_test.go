package student

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aslan-academy/academy-management/internal/domain/shared"
)

func validElementaryParams() NewStudentParams {
	return NewStudentParams{
		ID:          "d2b3b7e8-0001-4d7a-9c3a-111111111111",
		StudentID:   "ES001",
		Name:        "Kim Minjun",
		BirthDate:   time.Date(2017, 3, 14, 0, 0, 0, 0, time.UTC),
		ParentPhone: "010-1234-5678",
		Grade:       GradeThird,
		Division:    DivisionElementary,
	}
}

func validMiddleParams() NewStudentParams {
	return NewStudentParams{
		ID:        "d2b3b7e8-0002-4d7a-9c3a-222222222222",
		StudentID: "MS001",
		Name:      "Lee Seoyeon",
		BirthDate: time.Date(2012, 7, 2, 0, 0, 0, 0, time.UTC),
		Phone:     "010-9876-5432",
		Grade:     GradeSecond,
		Division:  DivisionMiddle,
	}
}

func TestStudentID_IsValid(t *testing.T) {
	valid := []StudentID{"ES001", "ES999", "MS123"}
	for _, id := range valid {
		assert.True(t, id.IsValid(), "expected %s to be valid", id)
	}

	invalid := []StudentID{"", "ES1", "ES1234", "HS001", "es001", "ES00A", "XES001"}
	for _, id := range invalid {
		assert.False(t, id.IsValid(), "expected %s to be invalid", id)
	}
}

func TestNewStudent_Elementary(t *testing.T) {
	st, err := NewStudent(validElementaryParams())
	require.NoError(t, err)

	assert.Equal(t, StudentID("ES001"), st.StudentID)
	assert.Equal(t, DivisionElementary, st.Division)
	assert.Equal(t, 0, st.AttendanceCount)
	assert.Zero(t, st.AverageScore)
	assert.False(t, st.CreatedAt.IsZero())
}

func TestNewStudent_ElementaryRequiresParentPhone(t *testing.T) {
	params := validElementaryParams()
	params.ParentPhone = ""
	params.Phone = "010-1111-2222" // own phone does not substitute

	_, err := NewStudent(params)
	assert.ErrorIs(t, err, shared.ErrParentPhoneRequired)
}

func TestNewStudent_MiddleRequiresOwnPhone(t *testing.T) {
	params := validMiddleParams()
	params.Phone = ""
	params.ParentPhone = "010-1111-2222"

	_, err := NewStudent(params)
	assert.ErrorIs(t, err, shared.ErrStudentPhoneRequired)
}

func TestNewStudent_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NewStudentParams)
	}{
		{"missing internal id", func(p *NewStudentParams) { p.ID = "" }},
		{"bad student number", func(p *NewStudentParams) { p.StudentID = "ES1" }},
		{"blank name", func(p *NewStudentParams) { p.Name = "   " }},
		{"zero birth date", func(p *NewStudentParams) { p.BirthDate = time.Time{} }},
		{"unknown grade", func(p *NewStudentParams) { p.Grade = "SEVENTH" }},
		{"unknown division", func(p *NewStudentParams) { p.Division = "HIGH" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validElementaryParams()
			tt.mutate(&params)

			_, err := NewStudent(params)
			require.Error(t, err)
			assert.True(t, shared.IsValidation(err), "expected a validation error, got %v", err)
		})
	}
}

func TestCheckIn_IncrementsCount(t *testing.T) {
	st, err := NewStudent(validElementaryParams())
	require.NoError(t, err)

	assert.Equal(t, 1, st.CheckIn())
	assert.Equal(t, 2, st.CheckIn())
	assert.Equal(t, 2, st.AttendanceCount)
}

func TestRecordScore_FirstScoreWithNoAttendance(t *testing.T) {
	st, err := NewStudent(validMiddleParams())
	require.NoError(t, err)

	// With zero check-ins the prior average carries no weight.
	avg, err := st.RecordScore(85)
	require.NoError(t, err)
	assert.Equal(t, 85.0, avg)
}

func TestRecordScore_WeightedByAttendance(t *testing.T) {
	st, err := NewStudent(validMiddleParams())
	require.NoError(t, err)

	st.AttendanceCount = 4
	st.AverageScore = 80

	// ((80 * 4) + 90) / 5 = 82
	avg, err := st.RecordScore(90)
	require.NoError(t, err)
	assert.Equal(t, 82.0, avg)
	assert.Equal(t, 82.0, st.AverageScore)
}

func TestRecordScore_RoundsToTwoDecimals(t *testing.T) {
	st, err := NewStudent(validMiddleParams())
	require.NoError(t, err)

	st.AttendanceCount = 2
	st.AverageScore = 70

	// ((70 * 2) + 85) / 3 = 74.999... -> 75.00
	avg, err := st.RecordScore(85)
	require.NoError(t, err)
	assert.Equal(t, 75.0, avg)

	st.AttendanceCount = 2
	st.AverageScore = 70.33

	// ((70.33 * 2) + 81) / 3 = 73.886... -> 73.89
	avg, err = st.RecordScore(81)
	require.NoError(t, err)
	assert.Equal(t, 73.89, avg)
}

func TestRecordScore_RejectsOutOfRange(t *testing.T) {
	st, err := NewStudent(validMiddleParams())
	require.NoError(t, err)

	st.AverageScore = 50

	for _, score := range []float64{-0.1, 100.1, 150} {
		_, err := st.RecordScore(score)
		assert.True(t, errors.Is(err, shared.ErrInvalidScore), "score %v", score)
	}

	// The average is untouched after a rejected score.
	assert.Equal(t, 50.0, st.AverageScore)

	for _, score := range []float64{0, 100} {
		_, err := st.RecordScore(score)
		assert.NoError(t, err, "boundary score %v", score)
	}
}

func TestApplyUpdate(t *testing.T) {
	st, err := NewStudent(validElementaryParams())
	require.NoError(t, err)

	err = st.ApplyUpdate(UpdateDetails{
		Name:         "Kim Minjun Jr",
		Phone:        "010-3333-4444",
		ParentPhone:  "010-5555-6666",
		Grade:        GradeFourth,
		SpecialNotes: "moved up a grade",
	})
	require.NoError(t, err)

	assert.Equal(t, "Kim Minjun Jr", st.Name)
	assert.Equal(t, GradeFourth, st.Grade)
	assert.Equal(t, "moved up a grade", st.SpecialNotes)

	// Identity fields never change through an update.
	assert.Equal(t, StudentID("ES001"), st.StudentID)
	assert.Equal(t, DivisionElementary, st.Division)
}

func TestApplyUpdate_Validation(t *testing.T) {
	st, err := NewStudent(validElementaryParams())
	require.NoError(t, err)

	err = st.ApplyUpdate(UpdateDetails{Name: "  ", Grade: GradeThird})
	assert.True(t, shared.IsValidation(err))

	err = st.ApplyUpdate(UpdateDetails{Name: "Kim", Grade: "NINTH"})
	assert.True(t, shared.IsValidation(err))
}

func TestLetterGrade(t *testing.T) {
	tests := []struct {
		average float64
		want    string
	}{
		{95, "A"}, {90, "A"},
		{89.99, "B"}, {80, "B"},
		{79.5, "C"}, {70, "C"},
		{69, "D"}, {60, "D"},
		{59.99, "F"}, {0, "F"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LetterGrade(tt.average), "average %v", tt.average)
	}
}

func TestClone(t *testing.T) {
	st, err := NewStudent(validElementaryParams())
	require.NoError(t, err)

	clone := st.Clone()
	clone.Name = "Someone Else"
	clone.AttendanceCount = 42

	assert.Equal(t, "Kim Minjun", st.Name)
	assert.Equal(t, 0, st.AttendanceCount)

	var nilStudent *Student
	assert.Nil(t, nilStudent.Clone())
}
