package http_server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"humres/config"
	"humres/drawing"
	"humres/encoding"
	"humres/render"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	maxCommentBytes  = 64 << 10
	maxLineListBytes = 1 << 20
	formatJSON       = "json"
)

// Server exposes the drawing codec and renderers over HTTP.
type Server struct {
	mu    sync.RWMutex
	cfg   *config.Config
	codec *drawing.Codec
	cache *config.DocumentCache
}

func NewServer(cfg *config.Config) (*Server, error) {
	s := &Server{}
	if err := s.apply(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) apply(cfg *config.Config) error {
	codec, err := cfg.Codec()
	if err != nil {
		return err
	}
	cfg.ApplyLogLevel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.codec = codec
	s.cache = cfg.NewDocumentCache()
	return nil
}

// Reload rereads the config file the server was started with.
func (s *Server) Reload() error {
	s.mu.RLock()
	path := s.cfg.Path
	s.mu.RUnlock()

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	return s.apply(cfg)
}

func (s *Server) current() (*config.Config, *drawing.Codec, *config.DocumentCache) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.codec, s.cache
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	logr := logrus.WithFields(logrus.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"request_id": requestID,
	})
	startedAt := time.Now()
	defer func() {
		logr.WithField("duration", time.Since(startedAt).Round(time.Millisecond)).Info("Request finished")
	}()
	w.Header().Set("X-Request-Id", requestID)

	switch r.URL.Path {
	case "/decode":
		s.handleDecode(w, r, logr)
	case "/encode":
		s.handleEncode(w, r, logr)
	case "/reload_config":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := s.Reload(); err != nil {
			logr.WithError(err).Error("Error reloading config")
			http.Error(w, "Error reloading config", http.StatusInternalServerError)
			return
		}
		logr.Info("Config reloaded")
		w.WriteHeader(http.StatusOK)
	default:
		logr.Warn("Unknown path")
		http.NotFound(w, r)
	}
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request, logr *logrus.Entry) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cfg, codec, cache := s.current()

	query := r.URL.Query()
	formatName := query.Get("format")
	var format render.Format
	if formatName != formatJSON {
		var err error
		format, err = render.ParseFormat(formatName)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		formatName = string(format)
	}
	opts := render.ParseOptions(
		queryOr(query.Get("width"), cfg.Render.Width),
		queryOr(query.Get("height"), cfg.Render.Height),
		queryOr(query.Get("pen_width"), cfg.Render.PenWidth),
	)

	comment, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCommentBytes))
	if err != nil {
		logr.WithError(err).Warn("Error reading body")
		http.Error(w, "Error reading body", http.StatusBadRequest)
		return
	}

	key := config.DocumentCacheKey(formatName, opts, string(comment))
	if entry, ok := cache.Probe(key); ok {
		logr.Info("Returning from cache")
		w.Header().Set("X-Cache", "HIT")
		writeBody(w, r, logr, entry.ContentType, entry.Content)
		return
	}

	lines, err := codec.Decode(r.Context(), string(comment))
	if err != nil {
		status := decodeStatus(err)
		logr.WithError(err).WithField("status", status).Warn("Error decoding drawing")
		http.Error(w, err.Error(), status)
		return
	}
	logr = logr.WithFields(logrus.Fields{
		"lines":  len(lines),
		"points": lines.PointCount(),
		"format": formatName,
	})

	var body bytes.Buffer
	var contentType string
	if formatName == formatJSON {
		contentType = "application/json"
		err = json.NewEncoder(&body).Encode(lines)
	} else {
		contentType = format.ContentType()
		err = render.Render(&body, format, lines, opts)
	}
	if err != nil {
		logr.WithError(err).Error("Error rendering drawing")
		http.Error(w, "Error rendering drawing", http.StatusInternalServerError)
		return
	}

	cache.MbSave(key, body.Bytes(), contentType)
	w.Header().Set("X-Cache", "MISS")
	writeBody(w, r, logr, contentType, body.Bytes())
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request, logr *logrus.Entry) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_, codec, _ := s.current()

	var lines drawing.LineList
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLineListBytes)).Decode(&lines); err != nil {
		logr.WithError(err).Warn("Error decoding line list")
		http.Error(w, "Error decoding line list", http.StatusBadRequest)
		return
	}
	logr = logr.WithFields(logrus.Fields{
		"lines":  len(lines),
		"points": lines.PointCount(),
	})

	text, err := codec.Encode(r.Context(), lines)
	if err != nil {
		if errors.Is(err, drawing.ErrCapacityExceeded) {
			logr.WithError(err).Warn("Drawing does not fit")
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		logr.WithError(err).Error("Error encoding drawing")
		http.Error(w, "Error encoding drawing", http.StatusInternalServerError)
		return
	}
	writeBody(w, r, logr, "text/plain; charset=utf-8", []byte(text))
}

func decodeStatus(err error) int {
	var decodeErr *drawing.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		return http.StatusBadRequest
	case errors.Is(err, drawing.ErrTruncatedPayload):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeBody writes a response, compressed with the first encoding the
// client accepts that makes it smaller.
func writeBody(w http.ResponseWriter, r *http.Request, logr *logrus.Entry, contentType string, content []byte) {
	body, retEncoding, err := encoding.EncodeWithSomething(content, r.Header.Get("Accept-Encoding"))
	if err != nil {
		logr.WithError(err).Error("Error encoding body")
		http.Error(w, "Error encoding body", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Vary", "Accept-Encoding")
	if retEncoding != "" {
		w.Header().Set("Content-Encoding", retEncoding)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func queryOr(value string, fallback float64) string {
	if value != "" {
		return value
	}
	return strconv.FormatFloat(fallback, 'g', -1, 64)
}

func StartServer(cfg *config.Config) error {
	s, err := NewServer(cfg)
	if err != nil {
		return err
	}
	logrus.WithFields(cfg.LogrusFieldsWithAction("start")).Info("Starting server")
	return http.ListenAndServe(cfg.Listen, s)
}
