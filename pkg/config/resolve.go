package config

import (
	"fmt"
	"os"

	"github.com/entrhq/dokimion/pkg/types"
)

// Environment variables consulted between flags and the config file.
const (
	EnvHost        = "DOKIMION_HOST"
	EnvPort        = "DOKIMION_PORT"
	EnvLockTimeout = "DOKIMION_LOCK_TIMEOUT"
	EnvURL         = "DOKIMION_URL"
	EnvProject     = "DOKIMION_PROJECT"
	EnvUser        = "DOKIMION_USER"
	EnvRoles       = "DOKIMION_ROLES"
	EnvTimeout     = "DOKIMION_TIMEOUT"
)

// ResolveServer merges server settings with the precedence
// flags > environment > config file > defaults. Zero fields in flags count
// as unset.
func ResolveServer(flags ServerSettings) (ServerSettings, error) {
	final := NewServerSection().Snapshot()
	if section := GetServer(); section != nil {
		final = section.Snapshot()
	}

	if v := os.Getenv(EnvHost); v != "" {
		final.Host = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := intValue(EnvPort, v)
		if err != nil {
			return ServerSettings{}, err
		}
		final.Port = port
	}
	if v := os.Getenv(EnvLockTimeout); v != "" {
		d, err := durationValue(EnvLockTimeout, v)
		if err != nil {
			return ServerSettings{}, err
		}
		final.LockTimeout = d
	}

	if flags.Host != "" {
		final.Host = flags.Host
	}
	if flags.Port != 0 {
		final.Port = flags.Port
	}
	if flags.LockTimeout != 0 {
		final.LockTimeout = flags.LockTimeout
	}
	if len(flags.Projects) > 0 {
		final.Projects = mergeProjects(final.Projects, flags.Projects)
	}

	check := &ServerSection{Host: final.Host, Port: final.Port, LockTimeout: final.LockTimeout, Projects: final.Projects}
	if err := check.Validate(); err != nil {
		return ServerSettings{}, fmt.Errorf("invalid server configuration: %w", err)
	}
	return final, nil
}

// ResolveBackend merges client settings with the precedence
// flags > environment > config file > defaults.
func ResolveBackend(flags BackendSettings) (BackendSettings, error) {
	final := NewBackendSection().Snapshot()
	if section := GetBackend(); section != nil {
		final = section.Snapshot()
	}

	if v := os.Getenv(EnvURL); v != "" {
		final.BaseURL = v
	}
	if v := os.Getenv(EnvProject); v != "" {
		final.Project = v
	}
	if v := os.Getenv(EnvUser); v != "" {
		final.User = v
	}
	if v := os.Getenv(EnvRoles); v != "" {
		final.Roles = splitList(v)
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := durationValue(EnvTimeout, v)
		if err != nil {
			return BackendSettings{}, err
		}
		final.Timeout = d
	}

	if flags.BaseURL != "" {
		final.BaseURL = flags.BaseURL
	}
	if flags.Project != "" {
		final.Project = flags.Project
	}
	if flags.User != "" {
		final.User = flags.User
	}
	if len(flags.Roles) > 0 {
		final.Roles = flags.Roles
	}
	if flags.Timeout != 0 {
		final.Timeout = flags.Timeout
	}

	check := &BackendSection{BaseURL: final.BaseURL, Project: final.Project, Timeout: final.Timeout}
	if err := check.Validate(); err != nil {
		return BackendSettings{}, fmt.Errorf("invalid backend configuration: %w", err)
	}
	return final, nil
}

// mergeProjects overlays extra on base by project ID.
func mergeProjects(base, extra []types.Project) []types.Project {
	out := append([]types.Project(nil), base...)
	for _, p := range extra {
		replaced := false
		for i := range out {
			if out[i].ID == p.ID {
				out[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, p)
		}
	}
	return out
}
