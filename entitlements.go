package auth

import (
	"database/sql/driver"
	"encoding/json"
	"strings"

	"github.com/goliatone/go-errors"
)

// Entitlement is a named capability granted to an identity. The set of
// well-known entitlements is closed, but unknown names are accepted when
// explicitly parsed so deployments can extend it.
type Entitlement string

const (
	// EntitlementUser is the default entitlement every signup receives
	EntitlementUser Entitlement = "ROLE_USER"
	// EntitlementAdmin grants access to user administration routes
	EntitlementAdmin Entitlement = "ROLE_ADMIN"
)

// IsValid checks if the entitlement is one of the predefined names
func (e Entitlement) IsValid() bool {
	switch e {
	case EntitlementUser, EntitlementAdmin:
		return true
	default:
		return false
	}
}

// ParseEntitlement validates a raw name. Predefined names pass as-is; custom
// names must carry the ROLE_ prefix so a typo cannot silently become a no-op
// entitlement.
func ParseEntitlement(raw string) (Entitlement, error) {
	e := Entitlement(strings.TrimSpace(raw))
	if e == "" {
		return "", errors.New("entitlement name must not be empty", errors.CategoryValidation)
	}

	if e.IsValid() || strings.HasPrefix(string(e), "ROLE_") {
		return e, nil
	}

	return "", errors.New("unknown entitlement name", errors.CategoryValidation).
		WithMetadata(map[string]any{"entitlement": raw})
}

// EntitlementSet is an unordered, duplicate-free collection of entitlements.
// It serializes as a JSON array so bun can persist it in a single column.
type EntitlementSet []Entitlement

// NewEntitlementSet builds a set, dropping duplicates while keeping the
// first-seen order for stable serialization.
func NewEntitlementSet(entitlements ...Entitlement) EntitlementSet {
	set := make(EntitlementSet, 0, len(entitlements))
	for _, e := range entitlements {
		set = set.Add(e)
	}
	return set
}

// Has checks membership
func (s EntitlementSet) Has(e Entitlement) bool {
	for _, candidate := range s {
		if candidate == e {
			return true
		}
	}
	return false
}

// Add returns a set containing e; no-op when already present
func (s EntitlementSet) Add(e Entitlement) EntitlementSet {
	if e == "" || s.Has(e) {
		return s
	}
	return append(s, e)
}

// Join renders the set as a single claim value
func (s EntitlementSet) Join(sep string) string {
	names := make([]string, len(s))
	for i, e := range s {
		names[i] = string(e)
	}
	return strings.Join(names, sep)
}

// ParseEntitlementSet rebuilds a set from a joined claim value. Unknown or
// empty segments are dropped rather than failing verification; the claim was
// produced by us at issuance time.
func ParseEntitlementSet(joined, sep string) EntitlementSet {
	if joined == "" {
		return nil
	}

	set := make(EntitlementSet, 0, 2)
	for _, raw := range strings.Split(joined, sep) {
		if e, err := ParseEntitlement(raw); err == nil {
			set = set.Add(e)
		}
	}
	return set
}

// Value implements driver.Valuer for bun persistence
func (s EntitlementSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}

	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to serialize entitlements")
	}

	return string(data), nil
}

// Scan implements sql.Scanner for bun persistence
func (s *EntitlementSet) Scan(src any) error {
	if src == nil {
		*s = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported source type for entitlement set", errors.CategoryInternal)
	}

	if len(data) == 0 {
		*s = nil
		return nil
	}

	if err := json.Unmarshal(data, s); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to deserialize entitlements")
	}

	return nil
}
