package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyGradeBoundaries(t *testing.T) {
	cases := []struct {
		pct  int
		want Grade
	}{
		{100, GradeAPlus},
		{97, GradeAPlus},
		{96, GradeA},
		{92, GradeA},
		{91, GradeB},
		{85, GradeB},
		{84, GradeC},
		{75, GradeC},
		{74, GradeD},
		{0, GradeD},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyGrade(tc.pct, false), "pct=%d", tc.pct)
	}
}

func TestClassifyGradeAutoFailOverrides(t *testing.T) {
	for _, pct := range []int{0, 50, 97, 100} {
		assert.Equal(t, GradeFail, ClassifyGrade(pct, true), "pct=%d", pct)
	}
}

func TestPercentRoundsHalfUp(t *testing.T) {
	assert.Equal(t, 0, Percent(5, 0))
	assert.Equal(t, 0, Percent(0, 10))
	assert.Equal(t, 50, Percent(3, 6))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 1, Percent(1, 200))
	assert.Equal(t, 0, Percent(1, 201))
	assert.Equal(t, 100, Percent(12, 10))
}

func TestErrorTaxonomyMatchesSentinels(t *testing.T) {
	v := Invalid("score", "must be between 0 and %d", 5)
	require.True(t, errors.Is(v, ErrValidation))
	assert.Equal(t, "invalid score: must be between 0 and 5", v.Error())

	nf := fmt.Errorf("load: %w", NotFound("session", int64(7)))
	require.True(t, errors.Is(nf, ErrNotFound))
	assert.False(t, errors.Is(nf, ErrValidation))

	cause := errors.New("connection reset")
	p := Persistence("insert session", cause)
	require.True(t, errors.Is(p, ErrPersistence))
	require.True(t, errors.Is(p, cause))

	assert.Nil(t, Persistence("noop", nil))
	assert.Same(t, nf, Persistence("wrap", nf))
}
