package auth

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenRoundTripThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}

	require.NoError(t, saveToken(path, tok))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := tokenFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "r", got.RefreshToken)
}

func TestGetGmailClient_MissingCredentials(t *testing.T) {
	dir := t.TempDir()
	_, err := GetGmailClient(context.Background(),
		filepath.Join(dir, "missing.json"), filepath.Join(dir, "token.json"),
		strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorContains(t, err, "read client secret file")
}

func TestGetGmailClient_UsesCachedToken(t *testing.T) {
	dir := t.TempDir()
	creds := filepath.Join(dir, "credential.json")
	require.NoError(t, os.WriteFile(creds, []byte(`{"installed":{"client_id":"id","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`), 0600))
	tokPath := filepath.Join(dir, "token.json")
	require.NoError(t, saveToken(tokPath, &oauth2.Token{AccessToken: "a", Expiry: time.Now().Add(time.Hour)}))

	out := &bytes.Buffer{}
	client, err := GetGmailClient(context.Background(), creds, tokPath, strings.NewReader(""), out)
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Empty(t, out.String(), "no consent prompt with a cached token")
}
