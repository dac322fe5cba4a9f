package marketplace

import "strings"

// StoreCredential identifies one seller account. It is supplied by the caller
// and treated as immutable for the duration of a fetch cycle.
type StoreCredential struct {
	StoreID string `json:"storeId" validate:"required,max=64"`
	Secret  string `json:"secret" validate:"required"`
}

// Validate returns ErrInvalidCredential when either field is blank
func (c StoreCredential) Validate() error {
	if strings.TrimSpace(c.StoreID) == "" || strings.TrimSpace(c.Secret) == "" {
		return ErrInvalidCredential
	}
	return nil
}

// Masked returns a copy whose secret only keeps the last four characters,
// suitable for API responses and logs.
func (c StoreCredential) Masked() StoreCredential {
	if len(c.Secret) <= 4 {
		c.Secret = strings.Repeat("*", len(c.Secret))
		return c
	}
	c.Secret = strings.Repeat("*", len(c.Secret)-4) + c.Secret[len(c.Secret)-4:]
	return c
}

// FindCredential returns the credential whose StoreID matches storeID.
func FindCredential(creds []StoreCredential, storeID string) (StoreCredential, bool) {
	for _, c := range creds {
		if c.StoreID == storeID {
			return c, true
		}
	}
	return StoreCredential{}, false
}
