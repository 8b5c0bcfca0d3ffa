package auth

// KeyInfo represents an API key with metadata.
type KeyInfo struct {
	Key      string
	Name     string
	Disabled bool
}

// KeyStore validates API keys.
type KeyStore interface {
	Validate(key string) (*KeyInfo, error)
	List() []*KeyInfo
}
