package config

import (
	"sync"
)

var (
	// globalManager is the process-wide configuration manager
	globalManager *Manager
	globalMu      sync.Mutex
)

// Initialize loads the configuration file at configPath (DefaultPath when
// empty) into the global manager. Call once at startup.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	store, err := NewFileStore(configPath)
	if err != nil {
		return err
	}

	manager := NewManager(store)
	if err := manager.RegisterSection(NewServerSection()); err != nil {
		return err
	}
	if err := manager.RegisterSection(NewBackendSection()); err != nil {
		return err
	}

	if err := manager.LoadAll(); err != nil {
		return err
	}

	globalManager = manager
	return nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}
	return globalManager
}

// IsInitialized reports whether Initialize succeeded.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

// GetServer returns the server section, or nil before Initialize.
func GetServer() *ServerSection {
	if !IsInitialized() {
		return nil
	}
	section, ok := Global().GetSection(SectionIDServer)
	if !ok {
		return nil
	}
	server, _ := section.(*ServerSection)
	return server
}

// GetBackend returns the backend section, or nil before Initialize.
func GetBackend() *BackendSection {
	if !IsInitialized() {
		return nil
	}
	section, ok := Global().GetSection(SectionIDBackend)
	if !ok {
		return nil
	}
	backend, _ := section.(*BackendSection)
	return backend
}
