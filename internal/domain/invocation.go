package domain

import "fmt"

// Address identifies an account (player, admin, verifier).
type Address string

func (a Address) String() string { return string(a) }

// Invocation is the host-provided context of one call: the ledger timestamp read once
// for the transaction and the set of principals that authorized it.
type Invocation struct {
	Timestamp uint64
	signers   map[Address]struct{}
}

// NewInvocation builds an invocation signed by the given principals.
func NewInvocation(timestamp uint64, signers ...Address) Invocation {
	set := make(map[Address]struct{}, len(signers))
	for _, s := range signers {
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return Invocation{Timestamp: timestamp, signers: set}
}

// Now returns the ledger timestamp in Unix seconds.
func (inv Invocation) Now() uint64 { return inv.Timestamp }

// Signed reports whether addr authorized this invocation.
func (inv Invocation) Signed(addr Address) bool {
	_, ok := inv.signers[addr]
	return ok
}

// RequireAuth fails with Unauthorized unless addr authorized this invocation.
func (inv Invocation) RequireAuth(addr Address) error {
	if addr == "" {
		return ErrUnauthorized("missing principal")
	}
	if !inv.Signed(addr) {
		return ErrUnauthorized(fmt.Sprintf("%s did not authorize this call", addr))
	}
	return nil
}

// WithSigner returns a copy of inv also signed by addr.
func (inv Invocation) WithSigner(addr Address) Invocation {
	set := make(map[Address]struct{}, len(inv.signers)+1)
	for s := range inv.signers {
		set[s] = struct{}{}
	}
	if addr != "" {
		set[addr] = struct{}{}
	}
	return Invocation{Timestamp: inv.Timestamp, signers: set}
}
