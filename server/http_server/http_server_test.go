package http_server_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"humres/config"
	"humres/drawing"
	"humres/encoding"
	"humres/server/http_server"

	"github.com/stretchr/testify/require"
)

var sample = drawing.LineList{
	{{X: 0.1, Y: 0.1}, {X: 0.4, Y: 0.6}, {X: 0.9, Y: 0.2}},
	{{X: 0.5, Y: 0.5}},
}

func newServer(t *testing.T, cfg *config.Config) *http_server.Server {
	cfg.Path = filepath.Join(t.TempDir(), "humres.json")
	s, err := http_server.NewServer(cfg)
	require.NoError(t, err)
	return s
}

func do(s http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)
	return w
}

func sampleComment(t *testing.T) string {
	text, err := drawing.Encode(context.Background(), sample)
	require.NoError(t, err)
	return text
}

func TestDecode(t *testing.T) {
	s := newServer(t, config.Default())
	comment := sampleComment(t)

	t.Run("SVG", func(t *testing.T) {
		w := do(s, http.MethodPost, "/decode", comment, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
		require.Equal(t, "MISS", w.Header().Get("X-Cache"))
		require.NotEmpty(t, w.Header().Get("X-Request-Id"))
		require.True(t, strings.HasPrefix(w.Body.String(), "<svg"))
		require.Contains(t, w.Body.String(), "M390.01,128.00z")

		again := do(s, http.MethodPost, "/decode", comment, nil)
		require.Equal(t, http.StatusOK, again.Code)
		require.Equal(t, "HIT", again.Header().Get("X-Cache"))
		require.Equal(t, w.Body.String(), again.Body.String())
	})

	t.Run("EPSWithOptions", func(t *testing.T) {
		w := do(s, http.MethodPost, "/decode?format=eps&width=-100&height=abc", comment, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/postscript", w.Header().Get("Content-Type"))
		require.Contains(t, w.Body.String(), "%%BoundingBox: 0 0 100 256\n")
	})

	t.Run("PDF", func(t *testing.T) {
		w := do(s, http.MethodPost, "/decode?format=pdf", comment, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
	})

	t.Run("JSON", func(t *testing.T) {
		w := do(s, http.MethodPost, "/decode?format=json", comment, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var lines drawing.LineList
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lines))
		require.Len(t, lines, 2)
		require.Len(t, lines[0], 3)
		require.InDelta(t, 0.4, lines[0][1].X, 1.0/0xFFFF)
	})

	t.Run("Compressed", func(t *testing.T) {
		plain := do(s, http.MethodPost, "/decode?format=eps", comment, nil)
		w := do(s, http.MethodPost, "/decode?format=eps", comment, map[string]string{"Accept-Encoding": "gzip"})
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

		body, err := encoding.Decode(w.Body.Bytes(), "gzip")
		require.NoError(t, err)
		require.Equal(t, plain.Body.Bytes(), body)
	})

	t.Run("RefusedEncodings", func(t *testing.T) {
		for _, accept := range []string{"gzip;q=0", "zlib", "flate, brotli"} {
			w := do(s, http.MethodPost, "/decode?format=eps", comment, map[string]string{"Accept-Encoding": accept})
			require.Equal(t, http.StatusOK, w.Code)
			require.Empty(t, w.Header().Get("Content-Encoding"), accept)
			require.True(t, strings.HasPrefix(w.Body.String(), "%!PS-Adobe"), accept)
		}
	})

	t.Run("OversizedPayload", func(t *testing.T) {
		compressed, err := encoding.ZlibEncoderDecoder{}.Encode(make([]byte, 32<<20))
		require.NoError(t, err)
		bomb := base64.RawStdEncoding.EncodeToString(compressed) + ";"
		require.Less(t, len(bomb), 64<<10)

		w := do(s, http.MethodPost, "/decode?format=json", bomb, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("BadComment", func(t *testing.T) {
		w := do(s, http.MethodPost, "/decode", "!!not a drawing!!", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("BadFormat", func(t *testing.T) {
		w := do(s, http.MethodPost, "/decode?format=png", comment, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("WrongMethod", func(t *testing.T) {
		w := do(s, http.MethodGet, "/decode", "", nil)
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestEncode(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		s := newServer(t, config.Default())
		body, err := json.Marshal(sample)
		require.NoError(t, err)

		w := do(s, http.MethodPost, "/encode", string(body), nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, sampleComment(t), w.Body.String())

		lines, err := drawing.Decode(context.Background(), w.Body.String())
		require.NoError(t, err)
		require.Len(t, lines, 2)
	})

	t.Run("BadJSON", func(t *testing.T) {
		s := newServer(t, config.Default())
		w := do(s, http.MethodPost, "/encode", `[[{"x": "left"}]]`, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Strict", func(t *testing.T) {
		cfg := config.Default()
		cfg.Strict = true
		s := newServer(t, cfg)

		line := make(drawing.Line, 300)
		for i := range line {
			line[i] = drawing.Point{X: 0.5, Y: float64(i+1) / 301}
		}
		body, err := json.Marshal(drawing.LineList{line})
		require.NoError(t, err)

		w := do(s, http.MethodPost, "/encode", string(body), nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestReloadConfig(t *testing.T) {
	cfg := config.Default()
	s := newServer(t, cfg)
	require.NoError(t, os.WriteFile(cfg.Path, []byte(`{"render": {"width": 100}}`), 0o644))

	w := do(s, http.MethodPost, "/reload_config", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(s, http.MethodPost, "/decode?format=eps", sampleComment(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "%%BoundingBox: 0 0 100 256\n")

	require.NoError(t, os.WriteFile(cfg.Path, []byte(`{"compression": "lzma"}`), 0o644))
	w = do(s, http.MethodPost, "/reload_config", "", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUnknownPath(t *testing.T) {
	s := newServer(t, config.Default())
	w := do(s, http.MethodGet, "/favicon.ico", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
