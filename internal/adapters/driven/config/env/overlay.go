// Package env overlays environment variables onto a driven.ConfigStore.
//
// An optional .env file is loaded first with godotenv; variables already
// present in the process environment are never replaced by it. The
// resulting environment is read into Variables with cleanenv.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/custodia-labs/orgsync/internal/core/ports/driven"
)

// Ensure Overlay implements the interface.
var _ driven.ConfigStore = (*Overlay)(nil)

// DefaultDotenvPath is the .env file read when none is given.
const DefaultDotenvPath = ".env"

// Variables are the environment variables understood by orgsync.
type Variables struct {
	Provider   string `env:"ORGSYNC_PROVIDER" env-description:"provider type (github, azure_devops)"`
	Scope      string `env:"ORGSYNC_SCOPE" env-description:"organisation, or organization/project for Azure DevOps"`
	Token      string `env:"ORGSYNC_TOKEN" env-description:"personal access token"`
	Backend    string `env:"ORGSYNC_BACKEND" env-description:"backend kind (http, sqlite, memory)"`
	BackendURL string `env:"ORGSYNC_BACKEND_URL" env-description:"backend base URL"`
	ProjectID  string `env:"ORGSYNC_PROJECT_ID" env-description:"backend project id"`
}

// keys maps each set variable onto its config key.
func (v Variables) keys() map[string]string {
	values := map[string]string{
		"provider.type":  v.Provider,
		"provider.scope": v.Scope,
		"provider.token": v.Token,
		"backend.kind":   v.Backend,
		"backend.url":    v.BackendURL,
		"project.id":     v.ProjectID,
	}
	for k, val := range values {
		if val == "" {
			delete(values, k)
		}
	}
	return values
}

// ReadVariables loads dotenvPath when it exists and reads the environment.
// An empty dotenvPath uses DefaultDotenvPath.
func ReadVariables(dotenvPath string) (Variables, error) {
	if dotenvPath == "" {
		dotenvPath = DefaultDotenvPath
	}

	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Variables{}, fmt.Errorf("loading %s: %w", dotenvPath, err)
	}

	var vars Variables
	if err := cleanenv.ReadEnv(&vars); err != nil {
		return Variables{}, fmt.Errorf("reading environment: %w", err)
	}
	return vars, nil
}

// Overlay is a ConfigStore whose reads prefer environment variables.
// Writes go to the underlying store.
type Overlay struct {
	driven.ConfigStore
	values map[string]string
}

// NewOverlay wraps base with the variables read by ReadVariables.
func NewOverlay(base driven.ConfigStore, dotenvPath string) (*Overlay, error) {
	vars, err := ReadVariables(dotenvPath)
	if err != nil {
		return nil, err
	}
	return NewOverlayFromVariables(base, vars), nil
}

// NewOverlayFromVariables wraps base with already-read variables.
func NewOverlayFromVariables(base driven.ConfigStore, vars Variables) *Overlay {
	return &Overlay{ConfigStore: base, values: vars.keys()}
}

// Get returns the environment value for key if set, else the stored value.
func (o *Overlay) Get(key string) (any, bool) {
	if v, ok := o.values[key]; ok {
		return v, true
	}
	return o.ConfigStore.Get(key)
}

// GetString returns the environment value for key if set, else the stored value.
func (o *Overlay) GetString(key string) string {
	if v, ok := o.values[key]; ok {
		return v
	}
	return o.ConfigStore.GetString(key)
}

// Keys returns stored and overridden keys in sorted order.
func (o *Overlay) Keys() []string {
	seen := make(map[string]struct{})
	for _, k := range o.ConfigStore.Keys() {
		seen[k] = struct{}{}
	}
	for k := range o.values {
		seen[k] = struct{}{}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Overridden reports whether key is set from the environment.
func (o *Overlay) Overridden(key string) bool {
	_, ok := o.values[key]
	return ok
}
