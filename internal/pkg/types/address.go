package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// addressLength is the size of an account or contract identifier in bytes.
const addressLength = 20

// Address represents a 20-byte account or contract identifier. Its canonical
// textual form is a lowercase hex string with a "0x" prefix.
type Address [addressLength]byte

// AddressFromHex parses and validates a hex-encoded address string
// (e.g., "0x00112233445566778899aabbccddeeff00112233").
func AddressFromHex(s string) (Address, error) {
	var addr Address

	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return addr, fmt.Errorf("address must start with 0x")
	}

	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return addr, fmt.Errorf("invalid address: %w", err)
	}

	if len(raw) != addressLength {
		return addr, fmt.Errorf("address must be %d bytes long, got %d", addressLength, len(raw))
	}

	copy(addr[:], raw)
	return addr, nil
}

// Hex returns the canonical lowercase hex representation with a "0x" prefix.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return a.Hex()
}

// MarshalJSON encodes the Address as a JSON hex string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Hex())
}

// UnmarshalJSON parses and validates a JSON-encoded hex address string.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid address string: %w", err)
	}

	addr, err := AddressFromHex(s)
	if err != nil {
		return err
	}

	*a = addr
	return nil
}
