package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressFromHex(t *testing.T) {
	t.Run("valid lowercase address", func(t *testing.T) {
		addr, err := AddressFromHex("0x00112233445566778899aabbccddeeff00112233")
		require.NoError(t, err)
		assert.Equal(t, "0x00112233445566778899aabbccddeeff00112233", addr.Hex())
	})

	t.Run("valid uppercase prefix", func(t *testing.T) {
		addr, err := AddressFromHex("0X00112233445566778899aabbccddeeff00112233")
		require.NoError(t, err)
		assert.Equal(t, "0x00112233445566778899aabbccddeeff00112233", addr.Hex())
	})

	t.Run("mixed case hex digits are normalized", func(t *testing.T) {
		addr, err := AddressFromHex("0x00112233445566778899AABBCCDDEEFF00112233")
		require.NoError(t, err)
		assert.Equal(t, "0x00112233445566778899aabbccddeeff00112233", addr.Hex())
	})

	t.Run("missing 0x prefix", func(t *testing.T) {
		_, err := AddressFromHex("00112233445566778899aabbccddeeff00112233")
		assert.Error(t, err)
	})

	t.Run("non-hex characters", func(t *testing.T) {
		_, err := AddressFromHex("0xzz112233445566778899aabbccddeeff00112233")
		assert.Error(t, err)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := AddressFromHex("0xaabb")
		assert.Error(t, err)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := AddressFromHex("0x00112233445566778899aabbccddeeff0011223344")
		assert.Error(t, err)
	})

	t.Run("empty string", func(t *testing.T) {
		_, err := AddressFromHex("")
		assert.Error(t, err)
	})
}

func TestAddress_JSON(t *testing.T) {
	t.Run("marshals to hex string", func(t *testing.T) {
		addr, err := AddressFromHex("0x00112233445566778899aabbccddeeff00112233")
		require.NoError(t, err)

		data, err := json.Marshal(addr)
		require.NoError(t, err)
		assert.JSONEq(t, `"0x00112233445566778899aabbccddeeff00112233"`, string(data))
	})

	t.Run("unmarshals from hex string", func(t *testing.T) {
		var addr Address
		err := json.Unmarshal([]byte(`"0x00112233445566778899aabbccddeeff00112233"`), &addr)
		require.NoError(t, err)
		assert.Equal(t, "0x00112233445566778899aabbccddeeff00112233", addr.Hex())
	})

	t.Run("rejects invalid hex string", func(t *testing.T) {
		var addr Address
		err := json.Unmarshal([]byte(`"not-an-address"`), &addr)
		assert.Error(t, err)
	})

	t.Run("rejects non-string JSON", func(t *testing.T) {
		var addr Address
		err := json.Unmarshal([]byte(`42`), &addr)
		assert.Error(t, err)
	})
}
