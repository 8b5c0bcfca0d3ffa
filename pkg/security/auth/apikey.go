package auth

import (
	"errors"
	"sync"
)

// Validation errors.
var (
	ErrInvalidKey  = errors.New("invalid API key")
	ErrKeyDisabled = errors.New("API key disabled")
)

// Validator validates API keys against a configured set of keys.
// The set can be swapped atomically with Replace for hot reload.
type Validator struct {
	mu   sync.RWMutex
	keys map[string]*KeyInfo
}

// NewValidator creates a new API key validator with the given keys.
func NewValidator(keys []*KeyInfo) *Validator {
	v := &Validator{}
	v.Replace(keys)
	return v
}

// Validate checks if the given API key is valid and returns its info.
func (v *Validator) Validate(key string) (*KeyInfo, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	info, ok := v.keys[key]
	if !ok {
		return nil, ErrInvalidKey
	}

	if info.Disabled {
		return nil, ErrKeyDisabled
	}

	return info, nil
}

// List returns all configured API keys.
func (v *Validator) List() []*KeyInfo {
	v.mu.RLock()
	defer v.mu.RUnlock()

	keys := make([]*KeyInfo, 0, len(v.keys))
	for _, key := range v.keys {
		keys = append(keys, key)
	}
	return keys
}

// Replace swaps the entire key set. In-flight validations finish
// against the set they started with.
func (v *Validator) Replace(keys []*KeyInfo) {
	keyMap := make(map[string]*KeyInfo, len(keys))
	for _, key := range keys {
		keyMap[key.Key] = key
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.keys = keyMap
}

// Count returns the number of configured keys.
func (v *Validator) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.keys)
}
