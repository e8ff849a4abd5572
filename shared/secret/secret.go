// Package secret holds provider credentials so they can be passed to the
// completion gateway without leaking through logs or serialized sessions.
package secret

import "strings"

const redacted = "****"

type Credential struct {
	key string
}

func NewCredential(key string) Credential {
	return Credential{key: strings.TrimSpace(key)}
}

// Reveal returns the raw key. Only the completion gateway should call it.
func (c Credential) Reveal() string {
	return c.key
}

func (c Credential) IsZero() bool {
	return c.key == ""
}

// Masked keeps the first and last four characters of long keys.
func (c Credential) Masked() string {
	if len(c.key) <= 8 {
		return redacted
	}

	return c.key[:4] + strings.Repeat("*", len(c.key)-8) + c.key[len(c.key)-4:]
}

func (c Credential) String() string {
	return c.Masked()
}

func (c Credential) GoString() string {
	return "secret.Credential{" + c.Masked() + "}"
}

func (c Credential) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}
