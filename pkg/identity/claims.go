package identity

import (
	"bytes"
	"encoding/json"
)

// Claims is the verified identity a provider exchange resolves to.
type Claims struct {
	Email         string
	FirstName     string
	LastName      string
	PhotoURL      string
	EmailVerified bool
	ProviderID    string
}

// boolString tolerates providers that serialize boolean claims as strings.
// Apple is known to send email_verified as both `true` and `"true"`.
type boolString bool

func (b *boolString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = s == "true"
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = boolString(v)
	return nil
}
