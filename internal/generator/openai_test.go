package generator

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockTransport struct {
	Response *http.Response
	Request  *http.Request
	Body     string
}

func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.Request = req
	if req.Body != nil {
		body, _ := io.ReadAll(req.Body)
		m.Body = string(body)
	}
	return m.Response, nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func newTestGenerator(transport *MockTransport) *OpenAIGenerator {
	return NewOpenAIGenerator("test-key", "gpt-4o-mini",
		option.WithBaseURL("http://openai.test/v1/"),
		option.WithHTTPClient(&http.Client{Transport: transport}),
		option.WithMaxRetries(0),
	)
}

func TestGenerate_Success(t *testing.T) {
	transport := &MockTransport{Response: jsonResponse(http.StatusOK, `{
		"id": "resp_1",
		"object": "response",
		"status": "completed",
		"output": [{
			"type": "message",
			"id": "msg_1",
			"role": "assistant",
			"status": "completed",
			"content": [{"type": "output_text", "text": "  ## New Features\nFaster sync.  ", "annotations": []}]
		}]
	}`)}

	text, err := newTestGenerator(transport).Generate(context.Background(), "Repository: o/r")
	require.NoError(t, err)
	assert.Equal(t, "## New Features\nFaster sync.", text)
	require.NotNil(t, transport.Request)
	assert.True(t, strings.HasSuffix(transport.Request.URL.Path, "/responses"))
	assert.Contains(t, transport.Body, "Repository: o/r")
	assert.Contains(t, transport.Body, "gpt-4o-mini")
}

func TestGenerate_EmptyOutput(t *testing.T) {
	transport := &MockTransport{Response: jsonResponse(http.StatusOK, `{"id": "resp_1", "object": "response", "status": "completed", "output": []}`)}

	_, err := newTestGenerator(transport).Generate(context.Background(), "Repository: o/r")
	assert.Error(t, err)
}

func TestGenerate_APIError(t *testing.T) {
	transport := &MockTransport{Response: jsonResponse(http.StatusUnauthorized, `{"error": {"message": "bad key", "type": "invalid_request_error"}}`)}

	_, err := newTestGenerator(transport).Generate(context.Background(), "Repository: o/r")
	assert.Error(t, err)
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	_, err := newTestGenerator(&MockTransport{}).Generate(context.Background(), "   ")
	assert.Error(t, err)
}
