package sendgrid_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/freshmart/storefront/internal/models"
	sendgrid_client "github.com/freshmart/storefront/pkg/sendgrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmailService(t *testing.T) {
	service := sendgrid_client.NewEmailService("test-api-key", "sender@example.com", "Test Sender")

	assert.NotNil(t, service)
}

type sendgridV3Payload struct {
	Personalizations []struct {
		To      []map[string]string `json:"to"`
		Cc      []map[string]string `json:"cc,omitempty"`
		Bcc     []map[string]string `json:"bcc,omitempty"`
		Subject string              `json:"subject"`
	} `json:"personalizations"`
	From    map[string]string `json:"from"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func TestEmailService_Send(t *testing.T) {
	apiKey := "SG.test-api-key"
	fromEmail := "from@example.com"
	fromName := "FreshMart"
	ctx := t.Context()

	var lastRequestPayload sendgridV3Payload

	var handlerFunc http.HandlerFunc

	newMockServer := func() *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bodyBytes, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "Failed to read request body", http.StatusInternalServerError)

				return
			}

			defer r.Body.Close()

			err = json.Unmarshal(bodyBytes, &lastRequestPayload)
			if err != nil {
				http.Error(w, "Failed to unmarshal request body", http.StatusBadRequest)

				return
			}

			handlerFunc(w, r)
		}))
	}

	tests := []struct {
		name          string
		req           *models.EmailNotificationRequest
		handler       http.HandlerFunc
		expectedError string
		checkPayload  func(t *testing.T, payload sendgridV3Payload)
	}{
		{
			name: "Success - Simple Email",
			req: &models.EmailNotificationRequest{
				To:          "recipient@example.com",
				Subject:     "Welcome to FreshMart",
				Content:     "Plain text content",
				HTMLContent: "<h1>HTML Content</h1>",
			},
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method, "Expected POST request")
				assert.Equal(t, "Bearer "+apiKey, r.Header.Get("Authorization"))
				w.WriteHeader(http.StatusAccepted)
			},
			checkPayload: func(t *testing.T, p sendgridV3Payload) {
				require.Len(t, p.Personalizations, 1)
				pers := p.Personalizations[0]
				require.Len(t, pers.To, 1)
				assert.Equal(t, "recipient@example.com", pers.To[0]["email"])
				assert.Equal(t, "Welcome to FreshMart", pers.Subject)

				assert.Equal(t, fromEmail, p.From["email"])
				assert.Equal(t, fromName, p.From["name"])

				require.Len(t, p.Content, 2, "Expected text and html content blocks")
				assert.Equal(t, "text/plain", p.Content[0].Type)
				assert.Equal(t, "text/html", p.Content[1].Type)
			},
		},
		{
			name: "Success - Plain text only omits the html block",
			req: &models.EmailNotificationRequest{
				To:      "recipient@example.com",
				Subject: "Order update",
				Content: "Your order shipped",
			},
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusAccepted)
			},
			checkPayload: func(t *testing.T, p sendgridV3Payload) {
				require.Len(t, p.Content, 1)
				assert.Equal(t, "text/plain", p.Content[0].Type)
			},
		},
		{
			name: "Success - With CC and BCC",
			req: &models.EmailNotificationRequest{
				To:      "recipient@example.com",
				CC:      []string{"cc1@example.com", "cc2@example.com"},
				BCC:     []string{"bcc1@example.com"},
				Subject: "Test Subject",
				Content: "Another plain text",
			},
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusAccepted)
			},
			checkPayload: func(t *testing.T, p sendgridV3Payload) {
				require.Len(t, p.Personalizations, 1)
				pers := p.Personalizations[0]
				require.Len(t, pers.Cc, 2)
				assert.Equal(t, "cc1@example.com", pers.Cc[0]["email"])
				require.Len(t, pers.Bcc, 1)
				assert.Equal(t, "bcc1@example.com", pers.Bcc[0]["email"])
			},
		},
		{
			name: "Failure - SendGrid API Error (4xx)",
			req: &models.EmailNotificationRequest{
				To:      "bad@example.com",
				Subject: "Test Subject",
				Content: "Content",
			},
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"errors": [{"message": "Invalid email"}]}`))
			},
			expectedError: "failed to send email, status code: 400",
		},
		{
			name: "Failure - SendGrid API Error (5xx)",
			req: &models.EmailNotificationRequest{
				To:      "recipient@example.com",
				Subject: "Test Subject",
				Content: "Content",
			},
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectedError: "failed to send email, status code: 500",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lastRequestPayload = sendgridV3Payload{}
			handlerFunc = tc.handler

			mockServer := newMockServer()
			defer mockServer.Close()

			serviceImpl := sendgrid_client.NewEmailService(apiKey, fromEmail, fromName)
			serviceImpl.GetSendGridClient().Request.BaseURL = mockServer.URL

			// Act
			err := serviceImpl.Send(ctx, tc.req)

			// Assert
			if tc.expectedError == "" {
				assert.NoError(t, err, "Expected no error")
			} else {
				assert.Error(t, err, "Expected an error")
				assert.Contains(t, err.Error(), tc.expectedError, "Error message mismatch")
			}

			if tc.checkPayload != nil {
				tc.checkPayload(t, lastRequestPayload)
			}
		})
	}

	t.Run("Failure - Network Error", func(t *testing.T) {
		mockServer := newMockServer()

		serviceImpl := sendgrid_client.NewEmailService(apiKey, fromEmail, fromName)
		serviceImpl.GetSendGridClient().Request.BaseURL = mockServer.URL
		mockServer.Close()

		req := &models.EmailNotificationRequest{
			To:      "recipient@example.com",
			Subject: "Network Error Test",
			Content: "Content",
		}

		err := serviceImpl.Send(ctx, req)

		assert.Error(t, err, "Expected a network error")
	})
}
