package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("INTERVIEW_REMINDER_LEAD", "")
	t.Setenv("MAIL_MAX_PARALLEL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 30*time.Minute, cfg.Interviews.ReminderLead)
	assert.Equal(t, time.Minute, cfg.Interviews.ReminderWindow)
	assert.Equal(t, time.Minute, cfg.Interviews.TickInterval)
	assert.Equal(t, 10*time.Second, cfg.Mail.SendTimeout)
	assert.Equal(t, 4, cfg.Mail.MaxParallel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("INTERVIEW_REMINDER_LEAD", "45m")
	t.Setenv("MAIL_SEND_TIMEOUT", "3s")
	t.Setenv("JWT_AUDIENCE", "portal, mobile")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, cfg.Interviews.ReminderLead)
	assert.Equal(t, 3*time.Second, cfg.Mail.SendTimeout)
	assert.Equal(t, []string{"portal", "mobile"}, cfg.JWT.Audience)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("-5s", time.Minute))
	assert.Equal(t, 2*time.Hour, parseDuration("2h", time.Minute))
}
