package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthonyhasrouny/portfolio/pkg/domain"
	"github.com/anthonyhasrouny/portfolio/pkg/email"
	"github.com/anthonyhasrouny/portfolio/pkg/logger"
	"github.com/anthonyhasrouny/portfolio/pkg/logger/loggertest"
	"github.com/anthonyhasrouny/portfolio/pkg/metrics"
	"github.com/anthonyhasrouny/portfolio/pkg/models"
	"github.com/anthonyhasrouny/portfolio/pkg/quote"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioA = `{
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

type recordingSender struct {
	err  error
	sent []email.Message
}

func (s *recordingSender) Name() string { return "test" }

func (s *recordingSender) Send(_ context.Context, msg email.Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

type outcomeRecorder struct {
	outcomes []string
}

func (r *outcomeRecorder) RecordQuoteSubmission(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

// newQuoteHandler wires a real quote service to a recording email sender.
func newQuoteHandler(t *testing.T, sender *recordingSender) (*QuoteHandler, *outcomeRecorder) {
	t.Helper()
	log := loggertest.New(t)

	renderer, err := quote.NewRenderer("https://anthonyhasrouny.com", "US")
	require.NoError(t, err)

	mailer := email.NewService(sender, nil, log)
	svc := quote.NewService(quote.NewValidator(), renderer, mailer, quote.Recipients{
		FromName:  "Portfolio",
		FromEmail: "noreply@anthonyhasrouny.com",
		To:        []string{"hello@anthonyhasrouny.com"},
	}, log)

	rec := &outcomeRecorder{}
	return NewQuoteHandler(svc, rec, log), rec
}

func postJSON(h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quote", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func withField(t *testing.T, body, field string, value any) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &m))
	if value == nil {
		delete(m, field)
	} else {
		m[field] = value
	}
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return string(out)
}

func TestQuoteHandler_ScenarioA_Accepted(t *testing.T) {
	sender := &recordingSender{}
	h, outcomes := newQuoteHandler(t, sender)

	rec := postJSON(h.Submit, scenarioA)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Email sent successfully", resp.Message)

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Subject, "Jane Doe")
	assert.Equal(t, "New Quote Request: New Website - Jane Doe", sender.sent[0].Subject)
	assert.Equal(t, "jane@example.com", sender.sent[0].ReplyTo)
	assert.Equal(t, []string{metrics.OutcomeAccepted}, outcomes.outcomes)
}

func TestQuoteHandler_ScenarioB_InvalidEmail(t *testing.T) {
	sender := &recordingSender{}
	h, outcomes := newQuoteHandler(t, sender)

	rec := postJSON(h.Submit, withField(t, scenarioA, "email", "not-an-email"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "Invalid email format", resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "email", resp.Fields[0].Field)

	assert.Empty(t, sender.sent)
	assert.Equal(t, []string{metrics.OutcomeInvalid}, outcomes.outcomes)
}

func TestQuoteHandler_MissingRequiredField(t *testing.T) {
	for _, field := range []string{"name", "email", "projectType", "timeline", "budgetRange", "targetAudience", "mainGoals", "requiredFeatures", "contentStatus"} {
		t.Run(field, func(t *testing.T) {
			sender := &recordingSender{}
			h, _ := newQuoteHandler(t, sender)

			rec := postJSON(h.Submit, withField(t, scenarioA, field, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Missing required fields: "+field, decodeError(t, rec).Error)
			assert.Empty(t, sender.sent)
		})
	}
}

func TestQuoteHandler_EnumerationOutsideLabelSet(t *testing.T) {
	sender := &recordingSender{}
	h, _ := newQuoteHandler(t, sender)

	rec := postJSON(h.Submit, withField(t, scenarioA, "budgetRange", "$1M"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "budgetRange", decodeError(t, rec).Fields[0].Field)
	assert.Empty(t, sender.sent)
}

func TestQuoteHandler_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "name=Jane"},
		{"truncated", `{"name": "Jane"`},
		{"array", `[]`},
		{"wrong type", withField(t, scenarioA, "mainGoals", "Generate leads")},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			h, outcomes := newQuoteHandler(t, sender)

			rec := postJSON(h.Submit, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, "Invalid request body", resp.Error)
			assert.Equal(t, "BAD_REQUEST", resp.Code)
			assert.Empty(t, sender.sent)
			assert.Equal(t, []string{metrics.OutcomeInvalid}, outcomes.outcomes)
		})
	}
}

func TestQuoteHandler_UnknownFieldsIgnored(t *testing.T) {
	sender := &recordingSender{}
	h, _ := newQuoteHandler(t, sender)

	rec := postJSON(h.Submit, withField(t, scenarioA, "message", "legacy free text"))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sender.sent, 1)
	assert.NotContains(t, sender.sent[0].Text, "legacy free text")
}

func TestQuoteHandler_ScenarioD_ProviderFailure(t *testing.T) {
	sender := &recordingSender{err: errors.New("resend: 401 {\"message\":\"API key is invalid\"}")}
	h, outcomes := newQuoteHandler(t, sender)

	rec := postJSON(h.Submit, scenarioA)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "Failed to send email", resp.Error)
	assert.NotContains(t, rec.Body.String(), "API key")
	assert.NotContains(t, rec.Body.String(), "401")
	assert.Len(t, sender.sent, 1, "no retry")
	assert.Equal(t, []string{metrics.OutcomeFailed}, outcomes.outcomes)
}

func TestQuoteHandler_ProviderNotConfigured(t *testing.T) {
	sender := &recordingSender{err: domain.NewNotConfiguredError("SENDGRID_API_KEY")}
	h, _ := newQuoteHandler(t, sender)

	rec := postJSON(h.Submit, scenarioA)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to send email", decodeError(t, rec).Error)
}

type stubSubmitter struct{ err error }

func (s stubSubmitter) Submit(context.Context, models.QuoteRequest) error { return s.err }

func TestQuoteHandler_UnexpectedError(t *testing.T) {
	h := NewQuoteHandler(stubSubmitter{err: errors.New("template: nil pointer")}, nil, logger.NewNop())

	rec := postJSON(h.Submit, scenarioA)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeError(t, rec).Error)
	assert.NotContains(t, rec.Body.String(), "nil pointer")
}

func TestQuoteHandler_InjectionIsEscaped(t *testing.T) {
	sender := &recordingSender{}
	h, _ := newQuoteHandler(t, sender)

	body := withField(t, scenarioA, "additionalInfo", `<script>alert("x")</script>`)
	rec := postJSON(h.Submit, body)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sender.sent, 1)
	assert.NotContains(t, sender.sent[0].HTML, "<script>")
	assert.Contains(t, sender.sent[0].HTML, "&lt;script&gt;")
}
