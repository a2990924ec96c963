package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJSON = `{
	"name": "Jane Doe",
	"email": "jane@example.com",
	"projectType": "New Website",
	"budgetRange": "Not Sure Yet",
	"timeline": "Flexible",
	"targetAudience": "Small retailers, age 25-45",
	"mainGoals": ["Generate leads"],
	"requiredFeatures": ["Contact form"],
	"contentStatus": "I will provide all content (text, images)"
}`

func writeRequest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "request.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestValidateCmd(t *testing.T) {
	out, _, err := execute(t, "", "validate", "-f", writeRequest(t, validJSON))
	require.NoError(t, err)
	assert.Contains(t, out, "Quote request is valid")
}

func TestValidateCmd_Stdin(t *testing.T) {
	out, _, err := execute(t, validJSON, "validate", "-f", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Quote request is valid")
}

func TestValidateCmd_Invalid(t *testing.T) {
	_, stderr, err := execute(t, "", "validate", "-f", writeRequest(t, `{"name":"Jane Doe"}`))
	require.ErrorIs(t, err, errInvalidRequest)
	assert.Contains(t, stderr, "Missing required fields: email")
	assert.Contains(t, stderr, "email: Email is required")
}

func TestValidateCmd_MissingFile(t *testing.T) {
	_, _, err := execute(t, "", "validate")
	assert.Error(t, err)

	_, _, err = execute(t, "", "validate", "-f", filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestSubmitCmd(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"Email sent successfully"}`))
	}))
	defer srv.Close()

	out, _, err := execute(t, "", "submit", "-f", writeRequest(t, validJSON), "--endpoint", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Quote request sent")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSubmitCmd_ServerRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"Too many requests. Please try again later."}`))
	}))
	defer srv.Close()

	_, _, err := execute(t, "", "submit", "-f", writeRequest(t, validJSON), "--endpoint", srv.URL)
	require.Error(t, err)
	assert.Equal(t, "Too many requests. Please try again later. (HTTP 429)", err.Error())
}

func TestSubmitCmd_InvalidNeverPosts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	body := strings.Replace(validJSON, "jane@example.com", "jane@example", 1)
	_, stderr, err := execute(t, "", "submit", "-f", writeRequest(t, body), "--endpoint", srv.URL)
	require.ErrorIs(t, err, errInvalidRequest)
	assert.Contains(t, stderr, "Invalid email format")
	assert.Zero(t, calls.Load())
}

func TestLimitsResetCmd(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("ratelimit:quote:203.0.113.5", "5"))
	require.NoError(t, mr.Set("ratelimit:quote:198.51.100.7", "2"))
	require.NoError(t, mr.Set("unrelated", "keep"))
	url := "redis://" + mr.Addr()

	out, _, err := execute(t, "", "limits", "reset", "--redis-url", url, "--client", "203.0.113.5")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 rate limit window(s)")
	assert.False(t, mr.Exists("ratelimit:quote:203.0.113.5"))

	out, _, err = execute(t, "", "limits", "reset", "--redis-url", url)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 rate limit window(s)")
	assert.True(t, mr.Exists("unrelated"))
}

func TestLimitsResetCmd_ClientIsExactKey(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("ratelimit:quote:[2001:db8::1]", "3"))
	require.NoError(t, mr.Set("ratelimit:quote:203.0.113.5", "5"))
	require.NoError(t, mr.Set("ratelimit:quote:203.0.113.6", "1"))
	url := "redis://" + mr.Addr()

	out, _, err := execute(t, "", "limits", "reset", "--redis-url", url, "--client", "[2001:db8::1]")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 rate limit window(s)")
	assert.False(t, mr.Exists("ratelimit:quote:[2001:db8::1]"))

	out, _, err = execute(t, "", "limits", "reset", "--redis-url", url, "--client", "203.0.113.?")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 rate limit window(s)")
	assert.True(t, mr.Exists("ratelimit:quote:203.0.113.5"))
	assert.True(t, mr.Exists("ratelimit:quote:203.0.113.6"))
}

func TestLimitsResetCmd_RequiresURL(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	_, _, err := execute(t, "", "limits", "reset")
	assert.EqualError(t, err, "--redis-url or REDIS_URL is required")
}
