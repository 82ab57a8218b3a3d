package pwm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mdouchement/airqd"
	"github.com/mdouchement/airqd/sysfs/environment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChip creates a pwmchip with already exported channels under a temporary HOST_SYS.
func fakeChip(t *testing.T, chip string, channels ...string) string {
	t.Helper()

	root := t.TempDir()
	t.Setenv(environment.KeyHostSys, root)

	dir := filepath.Join(root, "class", "pwm", chip)
	for _, ch := range channels {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, ch), 0o755))
		for _, name := range []string{"period", "duty_cycle", "enable"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, ch, name), []byte("0\n"), 0o644))
		}
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "export"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unexport"), nil, 0o644))

	return dir
}

func read(t *testing.T, path string) string {
	t.Helper()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.TrimSpace(string(raw))
}

func TestOpen(t *testing.T) {
	dir := fakeChip(t, "pwmchip1", "pwm0", "pwm1", "pwm2")

	_, err := Open(1, []int{0, 1, 2}, 5000)
	require.NoError(t, err)

	for _, ch := range []string{"pwm0", "pwm1", "pwm2"} {
		assert.Equal(t, "200000", read(t, filepath.Join(dir, ch, "period")), ch)
		assert.Equal(t, "200000", read(t, filepath.Join(dir, ch, "duty_cycle")), ch) // off
		assert.Equal(t, "1", read(t, filepath.Join(dir, ch, "enable")), ch)
	}

	// Nothing has been exported by Open.
	assert.Empty(t, read(t, filepath.Join(dir, "export")))
}

func TestLED_SetColor(t *testing.T) {
	dir := fakeChip(t, "pwmchip0", "pwm0", "pwm1", "pwm2")

	led, err := Open(0, []int{2, 1, 0}, 5000)
	require.NoError(t, err)

	require.NoError(t, led.SetColor(airqd.ColorRed))
	assert.Equal(t, "0", read(t, filepath.Join(dir, "pwm2", "duty_cycle")))      // red at full brightness
	assert.Equal(t, "200000", read(t, filepath.Join(dir, "pwm1", "duty_cycle"))) // green off
	assert.Equal(t, "200000", read(t, filepath.Join(dir, "pwm0", "duty_cycle"))) // blue off

	c := airqd.Color{R: 12, G: 128, B: 250}
	require.NoError(t, led.SetColor(c))
	actual, err := led.Color()
	require.NoError(t, err)
	assert.Equal(t, c, actual)

	require.NoError(t, led.Close())
	assert.Equal(t, "200000", read(t, filepath.Join(dir, "pwm2", "duty_cycle")))
	assert.Equal(t, "0", read(t, filepath.Join(dir, "pwm2", "enable")))
}

func TestOpen_Errors(t *testing.T) {
	fakeChip(t, "pwmchip0", "pwm0", "pwm1", "pwm2")

	_, err := Open(0, []int{0, 1}, 5000)
	assert.Error(t, err)

	_, err = Open(0, []int{0, 1, 2}, 0)
	assert.Error(t, err)

	_, err = Open(3, []int{0, 1, 2}, 5000)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_ExportTimeout(t *testing.T) {
	dir := fakeChip(t, "pwmchip0")

	_, err := Open(0, []int{0, 1, 2}, 5000)
	assert.ErrorIs(t, err, ErrExportTimeout)

	// The channel exported by Open has been released.
	assert.Equal(t, "0", read(t, filepath.Join(dir, "export")))
	assert.Equal(t, "0", read(t, filepath.Join(dir, "unexport")))
}

func TestOpen_SetupFailure(t *testing.T) {
	dir := fakeChip(t, "pwmchip0", "pwm0", "pwm1", "pwm2")

	// Writing the period of pwm1 fails.
	require.NoError(t, os.Remove(filepath.Join(dir, "pwm1", "period")))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "pwm1", "period"), 0o755))

	_, err := Open(0, []int{0, 1, 2}, 5000)
	assert.Error(t, err)

	assert.Equal(t, "0", read(t, filepath.Join(dir, "pwm0", "enable")))
	assert.Equal(t, "0", read(t, filepath.Join(dir, "pwm1", "enable")))
	assert.Empty(t, read(t, filepath.Join(dir, "unexport")))
}
