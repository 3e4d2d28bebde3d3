package folio

import (
	"fmt"
	"slices"
	"strings"
)

// AllScope names the scope made of every account of the book.
const AllScope = "All"

// RestrictedFilter selects accounts on their Restricted flag.
type RestrictedFilter int

const (
	AnyAccount RestrictedFilter = iota
	PublicOnly
	RestrictedOnly
)

func (f RestrictedFilter) String() string {
	switch f {
	case PublicOnly:
		return "Public"
	case RestrictedOnly:
		return "Restricted"
	default:
		return "All"
	}
}

// ParseRestrictedFilter accepts "all", "public" and "restricted".
func ParseRestrictedFilter(s string) (RestrictedFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "none":
		return AnyAccount, nil
	case "public", "false":
		return PublicOnly, nil
	case "restricted", "true":
		return RestrictedOnly, nil
	}
	return AnyAccount, fmt.Errorf("unknown restricted filter %q", s)
}

func (f RestrictedFilter) accept(a Account) bool {
	switch f {
	case PublicOnly:
		return !a.Restricted
	case RestrictedOnly:
		return a.Restricted
	}
	return true
}

// Scope is a set of accounts the analytics aggregate over.
type Scope struct {
	Name       string
	Restricted RestrictedFilter
	accounts   []string // sorted
}

// NewScope creates a scope over accounts.
func NewScope(name string, accounts ...string) Scope {
	ids := slices.Clone(accounts)
	slices.Sort(ids)
	return Scope{Name: name, accounts: slices.Compact(ids)}
}

// Scope resolves name as AllScope, a group name, an account ID or an account name,
// then keeps the accounts accepted by f.
func (b *Book) Scope(name string, f RestrictedFilter) (Scope, error) {
	var ids []string
	switch {
	case strings.EqualFold(name, AllScope):
		for _, a := range b.Accounts() {
			ids = append(ids, a.ID)
		}
	case b.groups[name] != nil:
		ids = b.groups[name]
	default:
		if _, ok := b.accounts[name]; ok {
			ids = []string{name}
			break
		}
		for _, a := range b.Accounts() {
			if a.Name == name {
				ids = append(ids, a.ID)
			}
		}
		if len(ids) == 0 {
			return Scope{}, fmt.Errorf("invalid account or group name %q: %w", name, ErrUnknownAccount)
		}
	}
	kept := ids[:0:0]
	for _, id := range ids {
		if f.accept(b.accounts[id]) {
			kept = append(kept, id)
		}
	}
	s := NewScope(name, kept...)
	s.Restricted = f
	return s, nil
}

// Accounts returns the sorted account IDs of the scope.
func (s Scope) Accounts() []string { return slices.Clone(s.accounts) }

// Contains reports whether the account belongs to the scope.
func (s Scope) Contains(account string) bool {
	_, ok := slices.BinarySearch(s.accounts, account)
	return ok
}

// IsEmpty reports whether the scope has no account.
func (s Scope) IsEmpty() bool { return len(s.accounts) == 0 }

// Only returns the sub scope made of a single account of s.
func (s Scope) Only(account string) Scope {
	if !s.Contains(account) {
		return NewScope(account)
	}
	return Scope{Name: account, Restricted: s.Restricted, accounts: []string{account}}
}

func (s Scope) key() string { return strings.Join(s.accounts, "\x00") }

func (s Scope) String() string {
	if s.Restricted == AnyAccount {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.Restricted)
}
