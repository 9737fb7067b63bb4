package run

import "fmt"

// Exit codes at or above this value are unsigned reinterpretations of
// negative errno values produced by the Node runtime on Windows
// (e.g. -4082/EBUSY surfaces as 4294963214).
const windowsErrnoFloor = 0xFFFF0000

// IsWindowsErrnoExit reports whether code sits in the unsigned-errno range.
// These failures are treated as transient (file locks, busy handles) and
// are the only exit codes worth retrying.
func IsWindowsErrnoExit(code int) bool {
	return code >= windowsErrnoFloor
}

// FormatExitCode renders code for logs, including the signed errno form
// when the code is in the unsigned-errno range.
func FormatExitCode(code int) string {
	if IsWindowsErrnoExit(code) {
		return fmt.Sprintf("%d (windows errno %d)", code, int64(code)-(1<<32))
	}
	return fmt.Sprintf("%d", code)
}
