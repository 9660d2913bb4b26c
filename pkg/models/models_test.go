package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRange(t *testing.T) {
	jan1 := Date(2024, time.January, 1)

	assert.NoError(t, CheckRange(jan1, jan1))
	assert.NoError(t, CheckRange(jan1, Date(2024, time.December, 31)))

	err := CheckRange(jan1, Date(2025, time.January, 1))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "endDate", ve.Field)
	assert.Contains(t, ve.Message, "367")

	assert.True(t, IsValidation(CheckRange(Date(1, time.January, 1), Date(9999, time.December, 31))))
	assert.True(t, IsValidation(CheckRange(jan1.AddDate(0, 0, 1), jan1)))
}

func TestAssignmentPatch_ValidateRange(t *testing.T) {
	start := Date(2024, time.March, 1)
	end := start.AddDate(2, 0, 0)
	assert.True(t, IsValidation(AssignmentPatch{StartDate: &start, EndDate: &end}.Validate()))

	end = start.AddDate(0, 0, 30)
	assert.NoError(t, AssignmentPatch{StartDate: &start, EndDate: &end}.Validate())
}
