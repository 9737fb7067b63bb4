// Package platform probes the host once at startup and hands the result
// around as a plain value, so the rest of the core never branches on
// runtime.GOOS directly.
package platform

import (
	"bufio"
	"io"
	"os"
	"runtime"
	"strings"
)

// DistroFamily groups Linux distributions by package manager.
type DistroFamily string

const (
	DistroDebian  DistroFamily = "debian"
	DistroFedora  DistroFamily = "fedora"
	DistroArch    DistroFamily = "arch"
	DistroUnknown DistroFamily = "unknown"
)

// Info describes the host the provisioning run targets.
type Info struct {
	OS       string // runtime.GOOS value
	Elevated bool   // admin on Windows, euid 0 elsewhere
	Distro   DistroFamily
}

func (i Info) IsWindows() bool { return i.OS == "windows" }
func (i Info) IsLinux() bool   { return i.OS == "linux" }

// osReleasePath is a variable so tests can point it at a fixture.
var osReleasePath = "/etc/os-release"

// Detect probes the current host. Probe failures degrade to the safe
// answer (not elevated, unknown distro) rather than erroring.
func Detect() Info {
	info := Info{OS: runtime.GOOS, Distro: DistroUnknown}
	info.Elevated = isElevated()
	if info.IsLinux() {
		info.Distro = detectDistroFamily()
	}
	return info
}

func detectDistroFamily() DistroFamily {
	f, err := os.Open(osReleasePath)
	if err != nil {
		return DistroUnknown
	}
	defer f.Close()
	fields := parseOSRelease(f)
	return classifyDistro(fields["ID"], fields["ID_LIKE"])
}

// parseOSRelease reads os-release KEY=value pairs, stripping quotes.
func parseOSRelease(r io.Reader) map[string]string {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		fields[strings.TrimSpace(key)] = value
	}
	return fields
}

// classifyDistro maps os-release ID/ID_LIKE onto a package-manager family.
// Anything unrecognized stays DistroUnknown; package operations on an
// unknown family fail with an explicit error instead of guessing.
func classifyDistro(id, idLike string) DistroFamily {
	combined := strings.ToLower(id + " " + idLike)
	switch {
	case containsAny(combined, "ubuntu", "debian"):
		return DistroDebian
	case containsAny(combined, "fedora", "rhel", "centos"):
		return DistroFedora
	case strings.Contains(combined, "arch"):
		return DistroArch
	default:
		return DistroUnknown
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
