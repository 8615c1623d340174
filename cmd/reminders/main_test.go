package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamtasks/task-management-api/internal/config"
)

func TestReminderDays(t *testing.T) {
	cfg := &config.Config{ReminderDays: 3}

	opts, err := parseFlags(nil)
	require.NoError(t, err)
	assert.False(t, opts.daysSet)
	assert.Equal(t, 3, opts.reminderDays(cfg))

	opts, err = parseFlags([]string{"--days", "7"})
	require.NoError(t, err)
	assert.Equal(t, 7, opts.reminderDays(cfg))

	opts, err = parseFlags([]string{"--days=0"})
	require.NoError(t, err)
	assert.Equal(t, 0, opts.reminderDays(cfg))
}

func TestReminderDays_NegativeIsPassedThrough(t *testing.T) {
	opts, err := parseFlags([]string{"--days=-2"})
	require.NoError(t, err)
	assert.Equal(t, -2, opts.reminderDays(&config.Config{ReminderDays: 1}))
}

func TestParseFlags_RejectsNonNumericDays(t *testing.T) {
	_, err := parseFlags([]string{"--days", "soon"})
	assert.Error(t, err)
}
