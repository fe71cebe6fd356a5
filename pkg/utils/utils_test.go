package utils

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImageFile(t *testing.T) {
	u := New(10)

	header := func(contentType string, size int64) *multipart.FileHeader {
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", contentType)
		return &multipart.FileHeader{Filename: "eye.jpg", Header: h, Size: size}
	}

	tests := []struct {
		name string
		file *multipart.FileHeader
		want error
	}{
		{"nil file", nil, ErrNoFile},
		{"too large", header("image/jpeg", 11), ErrFileTooLarge},
		{"not an image", header("application/pdf", 5), ErrNotAnImage},
		{"jpeg", header("image/jpeg", 10), nil},
		{"png", header("image/png", 1), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := u.ValidateImageFile(tt.file)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeBase64Image(t *testing.T) {
	u := New(8)

	data, err := u.DecodeBase64Image(base64.StdEncoding.EncodeToString([]byte("eyes")))
	require.NoError(t, err)
	assert.Equal(t, []byte("eyes"), data)

	_, err = u.DecodeBase64Image("%%%")
	assert.Error(t, err)

	_, err = u.DecodeBase64Image(base64.StdEncoding.EncodeToString([]byte("far too many bytes")))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = u.DecodeBase64Image("")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func TestReadImageFile(t *testing.T) {
	u := New(4)

	data, err := u.ReadImageFile(memFile{bytes.NewReader([]byte("abcd"))})
	require.NoError(t, err)
	assert.Len(t, data, 4)

	_, err = u.ReadImageFile(memFile{bytes.NewReader([]byte("abcde"))})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = u.ReadImageFile(memFile{bytes.NewReader(nil)})
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestNewULIDFromTimestamp(t *testing.T) {
	u := New(0)

	id, err := u.NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)
	assert.Len(t, id, 26)
}
