package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vaultgate/pkg/domain-errors"
)

func TestParseAddress(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    Address
		wantErr bool
	}{
		{
			name:  "canonical lower case",
			input: "0xabcdef0123456789abcdef0123456789abcdef01",
			want:  Address("0xabcdef0123456789abcdef0123456789abcdef01"),
		},
		{
			name:  "upper case is normalized",
			input: "0xABCDEF0123456789ABCDEF0123456789ABCDEF01",
			want:  Address("0xabcdef0123456789abcdef0123456789abcdef01"),
		},
		{
			name:  "zero address parses",
			input: "0x0000000000000000000000000000000000000000",
			want:  ZeroAddress,
		},
		{name: "empty", input: "", wantErr: true},
		{name: "missing prefix", input: "abcdef0123456789abcdef0123456789abcdef01", wantErr: true},
		{name: "too short", input: "0xabc", wantErr: true},
		{name: "too long", input: "0xabcdef0123456789abcdef0123456789abcdef0123", wantErr: true},
		{name: "non-hex digits", input: "0xzzcdef0123456789abcdef0123456789abcdef01", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAddress(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAddressIsZero(t *testing.T) {
	assert.True(t, ZeroAddress.IsZero())
	assert.True(t, Address("").IsZero())
	assert.False(t, Address("0xabcdef0123456789abcdef0123456789abcdef01").IsZero())
}
