package controllers

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"postboard/app/middleware"
	"postboard/app/repositories"
	"postboard/app/services"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/sha3"
)

const maxBodyBytes = 1 << 20

// retryAfterSeconds is sent with 503 responses caused by transient failures.
const retryAfterSeconds = "1"

// isAPI reports whether the request wants JSON instead of a page.
func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api") || acceptsJSON(r.Header.Get("Accept"))
}

// acceptsJSON reports whether application/json is one of the media ranges
// listed in an Accept header. Parameters such as q or charset are ignored.
func acceptsJSON(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == "application/json" {
			return true
		}
	}
	return false
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// statusFor maps service and storage errors to HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, services.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	switch repositories.KindOf(err) {
	case repositories.KindNotFound:
		return http.StatusNotFound
	case repositories.KindConstraint:
		return http.StatusConflict
	case repositories.KindUnavailable, repositories.KindTransient:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// sendError writes err as JSON for API requests and as plain text otherwise.
// Internal errors are logged and hidden from the client.
func sendError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"request_id": middleware.GetRequestID(r.Context()),
			"path":       r.URL.Path,
		}).Error("request failed")
		msg = http.StatusText(status)
	}
	if repositories.KindOf(err) == repositories.KindTransient {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}

	if !isAPI(r) {
		http.Error(w, msg, status)
		return
	}

	body := errorResponse{Error: msg}
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields()
	}
	sendJSON(w, status, body)
}

func badRequest(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, format string, args ...interface{}) {
	sendError(w, r, log, &services.ValidationError{Err: fmt.Errorf(format, args...)})
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// sendJSONWithETag writes data with a SHA3-256 entity tag and answers a
// matching If-None-Match with 304.
func sendJSONWithETag(w http.ResponseWriter, r *http.Request, data interface{}) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		return err
	}

	etag := entityTag(buf.Bytes())
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}

func entityTag(body []byte) string {
	sum := sha3.Sum256(body)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// pathID reads the id from the {id} route variable, falling back to the
// ?id= query parameter used by the view routes.
func pathID(r *http.Request) (int64, error) {
	raw, ok := mux.Vars(r)["id"]
	if !ok {
		raw = r.URL.Query().Get("id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
