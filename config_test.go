package airqd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "airqd.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
debug: true
period: 2m
serial:
  port: /dev/ttyAMA0
led:
  chip: 1
  channels: [3, 4, 5]
levels:
  - below: 12
    color: green
  - below: 35
    color: Yellow
  - color: red
    blink: 250ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, 2*time.Minute, cfg.Period.Duration)
	assert.Equal(t, "/dev/ttyAMA0", cfg.Serial.Port)
	assert.Equal(t, 0, cfg.Serial.BaudRate)
	assert.Equal(t, 1, cfg.LED.Chip)
	assert.Equal(t, []int{3, 4, 5}, cfg.LED.Channels)
	assert.Equal(t, 5000, cfg.LED.Frequency)

	require.Len(t, cfg.Levels, 3)
	assert.Equal(t, Continuous(ColorGreen), cfg.Levels[0].Command)
	assert.Equal(t, Continuous(ColorYellow), cfg.Levels[1].Command)
	assert.Equal(t, Blinking(ColorRed, 250*time.Millisecond), cfg.Levels[2].Command)
	assert.Nil(t, cfg.Levels[2].Below)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
levels:
  - color: "off"
`))
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), cfg.Period.Duration)
	assert.Equal(t, []int{0, 1, 2}, cfg.LED.Channels)
	assert.Equal(t, Off(), cfg.Levels[0].Command)
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]string{
		"negative period": "period: -1s\nlevels: [{color: red}]",
		"invalid period":  "period: often\nlevels: [{color: red}]",
		"no level":        "period: 1s",
		"unknown color":   "levels: [{color: purple}]",
		"not ascending":   "levels: [{below: 20, color: green}, {below: 10, color: red}]",
		"open-ended":      "levels: [{color: green}, {below: 10, color: red}]",
		"channels":        "led: {channels: [1, 2]}\nlevels: [{color: red}]",
		"negative blink":  "levels: [{color: red, blink: -1s}]",
		"empty level":     "levels: [~]",
		"bare level":      "levels:\n  - color: red\n  -\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDuration_JSON(t *testing.T) {
	p, err := json.Marshal(Duration{90 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(p))

	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"500ms"`), &d))
	assert.Equal(t, 500*time.Millisecond, d.Duration)
}
