package sniffer

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectHead(t *testing.T) {
	cases := []struct {
		name string
		head []byte
		want PhotoType
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}, TypeJPEG},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00}, TypePNG},
		{"gif87a", []byte("GIF87a...."), TypeGIF},
		{"gif89a", []byte("GIF89a...."), TypeGIF},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), TypeWEBP},
		{"heic", []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'h', 'e', 'i', 'c'}, TypeHEIC},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := DetectHead(tc.head)
			require.NoError(t, err)
			require.Equal(t, tc.want, result.Type)
			require.NotEmpty(t, result.MIME)
		})
	}
}

func TestDetectHeadRejectsUnknown(t *testing.T) {
	for _, head := range [][]byte{
		nil,
		{},
		[]byte("plain text file"),
		[]byte("<svg xmlns=\"http://www.w3.org/2000/svg\"/>"),
		[]byte("%PDF-1.7"),
	} {
		_, err := DetectHead(head)
		require.ErrorIs(t, err, ErrUnknownType)
	}
}

func TestMimeTypeFromHTTP(t *testing.T) {
	header := http.Header{}
	header.Set("Content-Type", "image/jpeg; charset=binary")
	require.Equal(t, "image/jpeg", MimeTypeFromHTTP(header))

	require.Equal(t, "", MimeTypeFromHTTP(http.Header{}))
}
