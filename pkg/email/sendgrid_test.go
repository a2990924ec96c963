package email

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthonyhasrouny/portfolio/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sendGridPayload struct {
	From struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"from"`
	Subject          string `json:"subject"`
	Personalizations []struct {
		To []struct {
			Email string `json:"email"`
		} `json:"to"`
	} `json:"personalizations"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
	ReplyTo struct {
		Email string `json:"email"`
	} `json:"reply_to"`
}

func TestSendGridSender_Send(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		payload sendGridPayload
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender := NewSendGridSender("SG.test-key", WithSendGridHost(server.URL))
	err := sender.Send(context.Background(), testMessage())
	require.NoError(t, err)

	assert.Equal(t, "/v3/mail/send", gotPath)
	assert.Equal(t, "Bearer SG.test-key", gotAuth)
	assert.Equal(t, "noreply@example.com", payload.From.Email)
	assert.Equal(t, "Portfolio", payload.From.Name)
	assert.Equal(t, "New Quote Request: Landing Page - Jane Doe", payload.Subject)
	require.Len(t, payload.Personalizations, 1)
	require.Len(t, payload.Personalizations[0].To, 1)
	assert.Equal(t, "owner@example.com", payload.Personalizations[0].To[0].Email)
	require.Len(t, payload.Content, 2)
	assert.Equal(t, "text/plain", payload.Content[0].Type)
	assert.Equal(t, "text/html", payload.Content[1].Type)
	assert.Equal(t, "jane@acme.io", payload.ReplyTo.Email)
}

func TestSendGridSender_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"invalid api key"}]}`))
	}))
	defer server.Close()

	sender := NewSendGridSender("SG.bad", WithSendGridHost(server.URL))
	err := sender.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSendGridSender_MissingKey(t *testing.T) {
	sender := NewSendGridSender("")
	err := sender.Send(context.Background(), testMessage())
	assert.True(t, domain.IsNotConfigured(err))
	assert.Equal(t, "sendgrid", sender.Name())
}
