package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "mentorlab/pkg/domain-errors"
)

func TestParseAction(t *testing.T) {
	t.Run("accepts every supported action", func(t *testing.T) {
		for _, s := range []string{"CREATE", "READ", "UPDATE", "DELETE", "LOGIN", "LOGOUT", "FAILED_LOGIN"} {
			a, err := ParseAction(s)
			require.NoError(t, err, s)
			assert.Equal(t, s, a.String())
		}
	})

	t.Run("rejects unknown and lowercase values", func(t *testing.T) {
		for _, s := range []string{"", "create", "EXPORT", "READ "} {
			_, err := ParseAction(s)
			require.Error(t, err, "%q", s)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})
}

func TestParseEntityType(t *testing.T) {
	for _, s := range []string{"USER", "ASSIGNMENT", "RESOURCE", "SUBMISSION", "COMMENT"} {
		e, err := ParseEntityType(s)
		require.NoError(t, err, s)
		assert.True(t, e.IsValid())
	}

	_, err := ParseEntityType("PROJECT")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestParseTimePeriod(t *testing.T) {
	hour, err := ParseTimePeriod("LAST_HOUR")
	require.NoError(t, err)
	assert.Equal(t, PeriodLastHour, hour)

	day, err := ParseTimePeriod("LAST_24_HOURS")
	require.NoError(t, err)
	assert.Equal(t, PeriodLast24, day)

	_, err = ParseTimePeriod("LAST_WEEK")
	require.Error(t, err)
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"MENTOR", "MENTEE", "ADMIN"} {
		r, err := ParseRole(s)
		require.NoError(t, err, s)
		assert.True(t, r.IsValid())
	}

	_, err := ParseRole("STUDENT")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
