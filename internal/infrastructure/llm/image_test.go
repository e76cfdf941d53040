package llm

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchImageAsBase64DataURI(t *testing.T) {
	mime, data, err := fetchImageAsBase64(context.Background(), nil, "data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, "aGVsbG8=", data)
}

func TestFetchImageAsBase64MalformedDataURI(t *testing.T) {
	_, _, err := fetchImageAsBase64(context.Background(), nil, "data:image/png,notbase64")
	assert.Error(t, err)
}

func TestFetchImageAsBase64Remote(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(payload)
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	mime, data, err := fetchImageAsBase64(context.Background(), client, srv.URL+"/pic")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, base64.StdEncoding.EncodeToString(payload), data)
}

func TestGuessMediaType(t *testing.T) {
	assert.Equal(t, "image/png", guessMediaType("https://x/pic.png"))
	assert.Equal(t, "image/webp", guessMediaType("https://x/pic.webp"))
	assert.Equal(t, "image/jpeg", guessMediaType("https://x/pic"))
}
