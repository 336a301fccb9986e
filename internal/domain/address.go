package domain

import (
	"net/url"
	"strings"
)

// NewAddressID is the addressId value a form submits to create an address.
const NewAddressID = "add"

// Address represents a customer shipping address held by the account service.
type Address struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address1,omitempty"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city,omitempty"`
	Province  string `json:"province,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Country   string `json:"country,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// AddressCollection is the ordered list of a customer's addresses. DefaultAddressID
// points into Addresses and is nil when the customer has no default address.
type AddressCollection struct {
	Addresses        []Address `json:"addresses"`
	DefaultAddressID *string   `json:"default_address_id,omitempty"`
}

// NormalizeAddressID decodes a raw address identifier and drops any transient
// suffix starting at the first '?'. A malformed escape leaves the value undecoded.
func NormalizeAddressID(raw string) string {
	id := DecodeAddressID(raw)
	if i := strings.IndexByte(id, '?'); i >= 0 {
		id = id[:i]
	}
	return id
}

// DecodeAddressID reverses the percent-encoding applied to an identifier placed in a
// URL. '+' is kept as is.
func DecodeAddressID(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Resolve returns the first address, in collection order, whose ID starts with the
// normalized form of rawID.
func (c *AddressCollection) Resolve(rawID string) (*Address, bool) {
	if c == nil {
		return nil, false
	}
	prefix := NormalizeAddressID(rawID)
	for i := range c.Addresses {
		if strings.HasPrefix(c.Addresses[i].ID, prefix) {
			return &c.Addresses[i], true
		}
	}
	return nil, false
}

// IsDefault reports whether id is the customer's default address.
func (c *AddressCollection) IsDefault(id string) bool {
	return c != nil && c.DefaultAddressID != nil && *c.DefaultAddressID == id
}
