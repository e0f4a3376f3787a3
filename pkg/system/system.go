package system

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// AppFs is the filesystem used for every host file read. Tests replace it with
// an in-memory filesystem.
var AppFs = afero.NewOsFs()

const (
	osReleasePath  = "/etc/os-release"
	dpkgStatusPath = "/var/lib/dpkg/status"
)

// HostInfo describes the distribution of the running host.
type HostInfo struct {
	ID              string
	IDLike          []string
	VersionCodename string
	PrettyName      string
}

// IsDebianFamily reports whether the host uses apt/dpkg.
func (h HostInfo) IsDebianFamily() bool {
	if h.ID == "debian" || h.ID == "ubuntu" {
		return true
	}
	for _, like := range h.IDLike {
		if like == "debian" || like == "ubuntu" {
			return true
		}
	}
	return false
}

// InferHost reads /etc/os-release.
func InferHost() (*HostInfo, error) {
	f, err := AppFs.Open(osReleasePath)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", osReleasePath, err)
	}
	defer f.Close()

	info := &HostInfo{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"'`)
		switch key {
		case "ID":
			info.ID = value
		case "ID_LIKE":
			info.IDLike = strings.Fields(value)
		case "VERSION_CODENAME":
			info.VersionCodename = value
		case "PRETTY_NAME":
			info.PrettyName = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", osReleasePath, err)
	}
	return info, nil
}

// InstalledPackages returns the set of packages dpkg reports as installed.
// A missing status database yields an empty set.
func InstalledPackages() (map[string]bool, error) {
	installed := make(map[string]bool)

	exists, err := afero.Exists(AppFs, dpkgStatusPath)
	if err != nil {
		return nil, fmt.Errorf("error checking %s: %w", dpkgStatusPath, err)
	}
	if !exists {
		return installed, nil
	}

	f, err := AppFs.Open(dpkgStatusPath)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", dpkgStatusPath, err)
	}
	defer f.Close()

	// Stanzas are separated by blank lines; only "Package" and "Status" matter here.
	var name, status string
	flush := func() {
		if name != "" && strings.HasSuffix(status, " installed") && !strings.Contains(status, "not-installed") {
			installed[name] = true
		}
		name, status = "", ""
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, "Package:") {
			name = strings.TrimSpace(strings.TrimPrefix(line, "Package:"))
		} else if strings.HasPrefix(line, "Status:") {
			status = strings.TrimSpace(strings.TrimPrefix(line, "Status:"))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", dpkgStatusPath, err)
	}
	flush()

	return installed, nil
}
