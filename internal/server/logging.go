package server

import (
	"bufio"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"time"
)

// client describes the caller from the headers the frontend sends.
type client struct {
	Platform   string
	AppVersion string
	SessionID  string
}

func clientFromRequest(r *http.Request) client {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	switch platform {
	case "ios", "android", "web":
	default:
		platform = "unknown"
	}
	return client{
		Platform:   platform,
		AppVersion: strings.TrimSpace(r.Header.Get("X-App-Version")),
		SessionID:  strings.TrimSpace(r.Header.Get("X-Session-Id")),
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades through the recorder.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		c := clientFromRequest(r)
		log.Printf("[info] %s %s status=%d duration=%s platform=%s app_version=%q session=%q",
			r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond),
			c.Platform, c.AppVersion, c.SessionID)
	})
}
