package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOverduePolicyWarningDays(t *testing.T) {
	p := DefaultOverduePolicy()
	require.NoError(t, validateOverduePolicy(p))

	assert.False(t, p.IsWarningDay(0))
	assert.True(t, p.IsWarningDay(1))
	assert.False(t, p.IsWarningDay(2))
	assert.False(t, p.IsWarningDay(6))
	assert.True(t, p.IsWarningDay(7))
	assert.False(t, p.IsWarningDay(8))
	assert.True(t, p.IsWarningDay(14))
	assert.True(t, p.IsWarningDay(28))
}

func TestOverduePolicyValidation(t *testing.T) {
	assert.Error(t, validateOverduePolicy(OverduePolicy{FirstWarningDays: 0, RepeatFromDays: 7, RepeatIntervalDays: 7}))
	assert.Error(t, validateOverduePolicy(OverduePolicy{FirstWarningDays: 1, RepeatFromDays: 7, RepeatIntervalDays: 0}))
	assert.Error(t, validateOverduePolicy(OverduePolicy{FirstWarningDays: 5, RepeatFromDays: 3, RepeatIntervalDays: 7}))
	assert.NoError(t, validateOverduePolicy(OverduePolicy{FirstWarningDays: 3, RepeatFromDays: 10, RepeatIntervalDays: 5}))
}

func TestOverduePolicyHolderNilFallsBack(t *testing.T) {
	var holder *OverduePolicyHolder
	assert.Equal(t, DefaultOverduePolicy(), holder.Get())
}
