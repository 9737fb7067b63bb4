package platform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOSRelease(t *testing.T) {
	input := `NAME="Ubuntu"
ID=ubuntu
ID_LIKE=debian
# comment line
VERSION_CODENAME=noble

PRETTY_NAME='Ubuntu 24.04'`
	fields := parseOSRelease(strings.NewReader(input))
	if fields["ID"] != "ubuntu" {
		t.Errorf("ID = %q, want %q", fields["ID"], "ubuntu")
	}
	if fields["ID_LIKE"] != "debian" {
		t.Errorf("ID_LIKE = %q, want %q", fields["ID_LIKE"], "debian")
	}
	if fields["NAME"] != "Ubuntu" {
		t.Errorf("NAME = %q, want %q (quotes stripped)", fields["NAME"], "Ubuntu")
	}
	if fields["PRETTY_NAME"] != "Ubuntu 24.04" {
		t.Errorf("PRETTY_NAME = %q, want %q", fields["PRETTY_NAME"], "Ubuntu 24.04")
	}
}

func TestClassifyDistro(t *testing.T) {
	tests := []struct {
		id, idLike string
		want       DistroFamily
	}{
		{"ubuntu", "debian", DistroDebian},
		{"debian", "", DistroDebian},
		{"linuxmint", "ubuntu debian", DistroDebian},
		{"fedora", "", DistroFedora},
		{"rocky", "rhel centos fedora", DistroFedora},
		{"centos", "rhel fedora", DistroFedora},
		{"arch", "", DistroArch},
		{"manjaro", "arch", DistroArch},
		{"alpine", "", DistroUnknown},
		{"", "", DistroUnknown},
	}
	for _, tt := range tests {
		if got := classifyDistro(tt.id, tt.idLike); got != tt.want {
			t.Errorf("classifyDistro(%q, %q) = %q, want %q", tt.id, tt.idLike, got, tt.want)
		}
	}
}

func TestDetectDistroFamilyMissingFile(t *testing.T) {
	orig := osReleasePath
	osReleasePath = filepath.Join(t.TempDir(), "missing")
	defer func() { osReleasePath = orig }()

	if got := detectDistroFamily(); got != DistroUnknown {
		t.Fatalf("detectDistroFamily() = %q, want %q", got, DistroUnknown)
	}
}

func TestDetectDistroFamilyFromFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "os-release")
	content := "ID=fedora\nVERSION_ID=42\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	orig := osReleasePath
	osReleasePath = path
	defer func() { osReleasePath = orig }()

	if got := detectDistroFamily(); got != DistroFedora {
		t.Fatalf("detectDistroFamily() = %q, want %q", got, DistroFedora)
	}
}
