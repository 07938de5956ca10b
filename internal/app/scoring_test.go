package app

import (
	"testing"

	"fsqa-audit-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreSessionBreakdownOrderAndCounts(t *testing.T) {
	catalog := domain.Catalog{
		Modules: []domain.Module{
			{Code: "WATER", Name: "Agricultural Water", SortOrder: 2, Questions: []domain.Question{
				{ID: 3, Points: 10},
				{ID: 4, Points: 10},
				{ID: 5, Points: 5},
			}},
			{Code: "HARV", Name: "Harvest", SortOrder: 1, Questions: []domain.Question{
				{ID: 1, Points: 20},
				{ID: 2, Points: 5, IsAutoFail: true},
			}},
		},
	}
	session := domain.Session{ID: 9, TotalPoints: 50}
	responses := []domain.Response{
		{QuestionID: 1, Score: 18},
		{QuestionID: 2, Score: 5},
		{QuestionID: 3, Score: 10},
		{QuestionID: 77, Score: 40}, // not in catalog
	}

	result := scoreSession(session, catalog, responses)

	require.Len(t, result.Modules, 2)
	assert.Equal(t, "HARV", result.Modules[0].ModuleCode)
	assert.Equal(t, 25, result.Modules[0].MaxPoints)
	assert.Equal(t, 23, result.Modules[0].EarnedPoints)
	assert.Equal(t, 2, result.Modules[0].AnsweredCount)
	assert.Equal(t, "WATER", result.Modules[1].ModuleCode)
	assert.Equal(t, 1, result.Modules[1].AnsweredCount)
	assert.Equal(t, 3, result.Modules[1].TotalQuestions)

	assert.Equal(t, 33, result.EarnedPoints)
	assert.Equal(t, 66, result.ScorePct)
	assert.False(t, result.HasAutoFail)
	assert.Equal(t, domain.GradeD, result.Grade)
	assert.Equal(t, int64(9), result.SessionID)
}

func TestScoreSessionPercentStaysInRange(t *testing.T) {
	// The catalog grew after the session fixed its total.
	catalog := domain.Catalog{Modules: []domain.Module{{Code: "M", Questions: []domain.Question{
		{ID: 1, Points: 10},
		{ID: 2, Points: 10},
	}}}}
	result := scoreSession(domain.Session{TotalPoints: 10}, catalog, []domain.Response{
		{QuestionID: 1, Score: 10},
		{QuestionID: 2, Score: 10},
	})
	assert.Equal(t, 100, result.ScorePct)
	assert.Equal(t, domain.GradeAPlus, result.Grade)
}

func TestScoreSessionNonAutoFailZeroDoesNotFail(t *testing.T) {
	catalog := domain.Catalog{Modules: []domain.Module{{Code: "M", Questions: []domain.Question{
		{ID: 1, Points: 3},
		{ID: 2, Points: 97},
	}}}}
	result := scoreSession(domain.Session{TotalPoints: 100}, catalog, []domain.Response{
		{QuestionID: 1, Score: 0},
		{QuestionID: 2, Score: 97},
	})
	assert.False(t, result.HasAutoFail)
	assert.Equal(t, 97, result.ScorePct)
	assert.Equal(t, domain.GradeAPlus, result.Grade)
}
