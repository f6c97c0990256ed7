package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsync/profile-builder/internal/config"
	"github.com/skillsync/profile-builder/internal/llm"
	"github.com/skillsync/profile-builder/internal/llm/llmtest"
	"github.com/skillsync/profile-builder/internal/parsing"
	"github.com/skillsync/profile-builder/internal/pipeline"
	"github.com/skillsync/profile-builder/internal/server/ratelimit"
)

const sampleResume = `Dana Cruz
dana.cruz@orbit.example
Experience: Data Engineer at Orbit Labs, 2020-2023
Education: MSc Statistics, Lakeside University`

const sampleOutput = `{"full_name": "Dana Cruz", "email": "dana.cruz@orbit.example"}`

func newTestServer(t *testing.T, client llm.Client, limiter *ratelimit.Limiter) *Server {
	t.Helper()
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	if limiter == nil {
		limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}
	extractor := parsing.NewExtractor(client, llm.DefaultGenerationOptions())
	return New(cfg, pipeline.NewBuilder(cfg, extractor), nil, limiter)
}

type formFile struct {
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, text string, file *formFile) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if text != "" {
		require.NoError(t, mw.WriteField(fieldText, text))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldFile, file.name))
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func postBuild(t *testing.T, s *Server, path, text string, file *formFile) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, text, file)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, llmtest.Returning(sampleOutput), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}

func TestBuild_Text(t *testing.T) {
	s := newTestServer(t, llmtest.Returning(sampleOutput), nil)

	w := postBuild(t, s, "/profile/build", sampleResume, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var profile map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "Dana Cruz", profile["full_name"])
	assert.Equal(t, []any{}, profile["skills"])
	assert.NotContains(t, profile, "request_id")
}

func TestBuild_File(t *testing.T) {
	client := llmtest.Returning(sampleOutput)
	s := newTestServer(t, client, nil)

	w := postBuild(t, s, "/profile/build", "", &formFile{name: "dana.txt", contentType: "text/plain; charset=utf-8", data: []byte(sampleResume)})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, client.LastPrompt(), "Orbit Labs")
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		client  *llmtest.MockLLMClient
		text    string
		file    *formFile
		status  int
		kind    string
		message string
	}{
		{
			name:    "no input",
			client:  llmtest.Returning(sampleOutput),
			status:  http.StatusBadRequest,
			kind:    "validation_error",
			message: "missing input",
		},
		{
			name:    "both inputs",
			client:  llmtest.Returning(sampleOutput),
			text:    sampleResume,
			file:    &formFile{name: "cv.txt", contentType: "text/plain", data: []byte(sampleResume)},
			status:  http.StatusBadRequest,
			kind:    "validation_error",
			message: "ambiguous input",
		},
		{
			name:    "generic binary content type",
			client:  llmtest.Returning(sampleOutput),
			file:    &formFile{name: "cv.pdf", contentType: "application/octet-stream", data: []byte(sampleResume)},
			status:  http.StatusBadRequest,
			kind:    "validation_error",
			message: "unsupported content-type",
		},
		{
			name:    "not a resume",
			client:  llmtest.Returning(sampleOutput),
			file:    &formFile{name: "notes.txt", contentType: "text/plain", data: []byte(strings.Repeat("lorem ipsum dolor sit amet ", 10))},
			status:  http.StatusUnprocessableEntity,
			kind:    "content_validation_error",
			message: "file content doesn't appear to be a resume",
		},
		{
			name:    "model unavailable",
			client:  llmtest.Failing(errors.New("connection reset")),
			text:    sampleResume,
			status:  http.StatusBadGateway,
			kind:    "profile_generation_error",
			message: "profile generation service unavailable",
		},
		{
			name:    "model output unusable",
			client:  llmtest.Returning("I could not find a resume here."),
			text:    sampleResume,
			status:  http.StatusUnprocessableEntity,
			kind:    "profile_generation_error",
			message: "could not build a valid profile from this resume",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.client, nil)

			w := postBuild(t, s, "/profile/build", tt.text, tt.file)

			assert.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.kind, body.Error)
			assert.Contains(t, body.Message, tt.message)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestBuild_RejectsNonMultipartBody(t *testing.T) {
	client := llmtest.Returning(sampleOutput)
	s := newTestServer(t, client, nil)

	req := httptest.NewRequest(http.MethodPost, "/profile/build", strings.NewReader(`{"profile_text": "x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeError(t, w).Error)
	assert.Zero(t, client.Calls())
}

func TestBuild_OversizedBody(t *testing.T) {
	client := llmtest.Returning(sampleOutput)
	cfg := config.Default()
	cfg.MaxRawBytes = 1000
	extractor := parsing.NewExtractor(client, llm.DefaultGenerationOptions())
	s := New(cfg, pipeline.NewBuilder(cfg, extractor), nil, ratelimit.NewLimiter(&ratelimit.Config{Enabled: false}))

	big := bytes.Repeat([]byte("Experience "), (2<<20)/11)
	w := postBuild(t, s, "/profile/build", "", &formFile{name: "cv.txt", contentType: "text/plain", data: big})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeError(t, w).Error)
	assert.Zero(t, client.Calls())
}

// countingReader records how many bytes were taken from it
type countingReader struct {
	r    io.Reader
	read int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += n
	return n, err
}

func TestBuild_RejectedFileIsNotRead(t *testing.T) {
	client := llmtest.Returning(sampleOutput)
	s := newTestServer(t, client, nil)

	const boundary = "resume-boundary"
	head := "--" + boundary + "\r\n" +
		`Content-Disposition: form-data; name="file"; filename="cv.docx"` + "\r\n" +
		"Content-Type: image/png\r\n\r\n"
	content := &countingReader{r: strings.NewReader(strings.Repeat("A", 3<<20) + "\r\n--" + boundary + "--\r\n")}

	req := httptest.NewRequest(http.MethodPost, "/profile/build", io.MultiReader(strings.NewReader(head), content))
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "validation_error", body.Error)
	assert.Contains(t, body.Message, "unsupported content-type")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Zero(t, content.read)
	assert.Zero(t, client.Calls())
}

func TestBuild_FileOverDeclaredCeiling(t *testing.T) {
	client := llmtest.Returning(sampleOutput)
	s := newTestServer(t, client, nil)

	big := bytes.Repeat([]byte("Experience "), (3<<20)/11)
	w := postBuild(t, s, "/profile/build", "", &formFile{name: "cv.txt", contentType: "text/plain", data: big})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "validation_error", body.Error)
	assert.Contains(t, body.Message, "file too large")
	assert.Zero(t, client.Calls())
}

func TestBuild_RateLimited(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled: true,
		Rules:   []ratelimit.Rule{{Method: "POST", Path: "/profile/build", Limit: 1, Window: time.Hour, Burst: 1}},
	})
	client := llmtest.Returning(sampleOutput)
	s := newTestServer(t, client, limiter)

	first := postBuild(t, s, "/profile/build", sampleResume, nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := postBuild(t, s, "/profile/build", sampleResume, nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeError(t, second).Error)
	assert.Equal(t, 1, client.Calls())
}

func TestBuild_StreamSharesBuildRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Rules:         ratelimit.DefaultRules(),
	})
	client := llmtest.Returning(sampleOutput)
	s := newTestServer(t, client, limiter)

	for i := 0; i < 5; i++ {
		w := postBuild(t, s, "/profile/build", sampleResume, nil)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := postBuild(t, s, "/profile/build/stream", sampleResume, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 5, client.Calls())
}

func TestBuildStream(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s := newTestServer(t, llmtest.Returning(sampleOutput), nil)

		w := postBuild(t, s, "/profile/build/stream", sampleResume, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
		body := w.Body.String()
		assert.Equal(t, 4, strings.Count(body, "event: state\n"))
		assert.Contains(t, body, `"to":"generating"`)
		assert.Contains(t, body, "event: profile\n")
		assert.Contains(t, body, `"full_name":"Dana Cruz"`)
	})

	t.Run("failure", func(t *testing.T) {
		s := newTestServer(t, llmtest.Failing(errors.New("timeout")), nil)

		w := postBuild(t, s, "/profile/build/stream", sampleResume, nil)

		body := w.Body.String()
		assert.Contains(t, body, `"to":"failed"`)
		assert.Contains(t, body, "event: error\n")
		assert.Contains(t, body, `"error":"profile_generation_error"`)
		assert.NotContains(t, body, "event: profile")
	})
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, llmtest.Returning(sampleOutput), nil)

	req := httptest.NewRequest(http.MethodOptions, "/profile/build", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestOutcomeOf_HidesInternalDetail(t *testing.T) {
	status, body := outcomeOf(errors.New("open /etc/secret: permission denied"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", body.Error)
	assert.Equal(t, "internal error", body.Message)
}
