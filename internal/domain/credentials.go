package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Credentials son las API keys del usuario en el exchange (solo lectura).
type Credentials struct {
	APIKey    string
	APISecret string
}

// Trimmed devuelve las credenciales sin espacios alrededor.
func (c Credentials) Trimmed() Credentials {
	return Credentials{
		APIKey:    strings.TrimSpace(c.APIKey),
		APISecret: strings.TrimSpace(c.APISecret),
	}
}

// Empty indica si falta la key o el secret.
func (c Credentials) Empty() bool {
	t := c.Trimmed()
	return t.APIKey == "" || t.APISecret == ""
}

// AccountKey identifica la cuenta dueña de los fills sin guardar la API key en claro.
// Es un prefijo del SHA-256 de la key; vacío si no hay key.
func (c Credentials) AccountKey() string {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:12])
}
