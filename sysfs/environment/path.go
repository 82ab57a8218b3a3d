package environment

import (
	"os"
	"path/filepath"
)

const KeyHostSys = "HOST_SYS"

// SysPath returns the path of elem under the sysfs mount point (HOST_SYS or /sys).
func SysPath(elem ...string) string {
	return GetEnvPath(KeyHostSys, "/sys", elem...)
}

func GetEnvPath(key, fallback string, elem ...string) (v string) {
	v = os.Getenv(key)
	if v == "" {
		v = fallback
	}

	return filepath.Join(append([]string{v}, elem...)...)
}
