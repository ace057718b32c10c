package config

import (
	"maps"
	"os"
	"strings"
)

// DefaultPublicPrefix marks variables that may be handed to the browser.
const DefaultPublicPrefix = "PUBLIC_"

// Env splits the process environment into private and public variables.
// Static accessors read the snapshot taken when the Env was built; dynamic
// accessors read the live environment on every call.
type Env struct {
	publicPrefix string
	private      map[string]string
	public       map[string]string
	lookup       func(string) (string, bool)
}

// NewEnv snapshots environ (KEY=VALUE pairs, as from os.Environ).
func NewEnv(environ []string, publicPrefix string) *Env {
	if publicPrefix == "" {
		publicPrefix = DefaultPublicPrefix
	}
	e := &Env{
		publicPrefix: publicPrefix,
		private:      make(map[string]string),
		public:       make(map[string]string),
		lookup:       os.LookupEnv,
	}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		if e.IsPublic(key) {
			e.public[key] = value
		} else {
			e.private[key] = value
		}
	}
	return e
}

func (e *Env) PublicPrefix() string {
	return e.publicPrefix
}

func (e *Env) IsPublic(key string) bool {
	return strings.HasPrefix(key, e.publicPrefix)
}

func (e *Env) StaticPrivate() map[string]string {
	return maps.Clone(e.private)
}

func (e *Env) StaticPublic() map[string]string {
	return maps.Clone(e.public)
}

func (e *Env) DynamicPrivate(key string) (string, bool) {
	if e.IsPublic(key) {
		return "", false
	}
	return e.lookup(key)
}

func (e *Env) DynamicPublic(key string) (string, bool) {
	if !e.IsPublic(key) {
		return "", false
	}
	return e.lookup(key)
}

// Get reads a static value regardless of visibility.
func (e *Env) Get(key string) string {
	if v, ok := e.private[key]; ok {
		return v
	}
	return e.public[key]
}
