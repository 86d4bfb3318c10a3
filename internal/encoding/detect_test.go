package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finsight/internal/encoding"
)

func TestDecode(t *testing.T) {
	// "Descrição;Montante\n" in Windows-1252: ç = 0xE7, ã = 0xE3.
	latin1 := []byte{
		'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';',
		'M', 'o', 'n', 't', 'a', 'n', 't', 'e', '\n',
	}

	type testCase struct {
		name        string
		input       []byte
		want        string
		wantCharset string
	}

	tests := []testCase{
		{
			name:        "UTF8Passthrough",
			input:       []byte("Descrição;Montante\nCafé;12,50\n"),
			want:        "Descrição;Montante\nCafé;12,50\n",
			wantCharset: encoding.UTF8,
		},
		{
			name:        "UTF8BOMStripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, []byte("Descrição;Montante\n")...),
			want:        "Descrição;Montante\n",
			wantCharset: encoding.UTF8,
		},
		{
			name:        "UTF16LE",
			input:       []byte{0xFF, 0xFE, 'O', 0x00, 'K', 0x00, '\n', 0x00},
			want:        "OK\n",
			wantCharset: encoding.UTF16LE,
		},
		{
			name:  "Latin1",
			input: latin1,
			want:  "Descrição;Montante\n",
		},
		{
			name:        "Empty",
			input:       nil,
			want:        "",
			wantCharset: encoding.UTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := encoding.Decode(bytes.NewReader(tt.input))
			require.NoError(t, err)

			got, err := io.ReadAll(d)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			if tt.wantCharset != "" {
				assert.Equal(t, tt.wantCharset, d.Charset)
			}
		})
	}
}

func TestDecode_RuneAcrossSniffWindow(t *testing.T) {
	// Place a two-byte "ç" so it straddles the 4096-byte sniff boundary.
	input := strings.Repeat("a", 4095) + "ção\n"

	d, err := encoding.Decode(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, encoding.UTF8, d.Charset)

	got, err := io.ReadAll(d)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}
