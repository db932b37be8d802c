package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"communityhub/internal/adapters/http/middleware"
	"communityhub/internal/domain/fault"
	"communityhub/internal/domain/identity"
)

// Request body limits. Event bodies carry inline base64 posters.
const (
	defaultBodyLimit = 64 << 10
	eventBodyLimit   = 8 << 20
)

var errBodyTooLarge = errors.New("request body too large")

// envelope is the success body; fields are merged next to "success".
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("response_encode_failed", "error", err)
	}
}

// ok writes {"success": true, ...fields}.
func ok(w http.ResponseWriter, status int, fields envelope) {
	body := envelope{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// okFlat writes the JSON object v with "success": true added to its top level.
// PRE: v encodes as a JSON object
func okFlat(w http.ResponseWriter, r *http.Request, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		internalError(w, r, err)
		return
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		internalError(w, r, err)
		return
	}
	fields["success"] = json.RawMessage("true")
	writeJSON(w, http.StatusOK, fields)
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error", "request_id", middleware.RequestID(r.Context()),
		"method", r.Method, "path", r.URL.Path, "error", err.Error())
	writeJSON(w, http.StatusInternalServerError, envelope{"success": false, "message": "internal server error"})
}

// writeError maps a classified error onto its status code and the failure envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBodyTooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, envelope{"success": false, "message": err.Error()})
		return
	}
	fe, isFault := fault.As(err)
	if !isFault || fe.Kind == fault.KindInternal {
		internalError(w, r, err)
		return
	}

	var status int
	switch fe.Kind {
	case fault.KindValidation:
		status = http.StatusBadRequest
	case fault.KindAuth:
		status = http.StatusUnauthorized
	case fault.KindAuthz:
		status = http.StatusForbidden
		if fe.Unauthenticated {
			status = http.StatusUnauthorized
		}
	case fault.KindConflict:
		status = http.StatusConflict
	case fault.KindNotFound:
		status = http.StatusNotFound
	case fault.KindDependency:
		status = http.StatusServiceUnavailable
		slog.Error("internal_error", "request_id", middleware.RequestID(r.Context()),
			"kind", fe.Kind.String(), "path", r.URL.Path, "error", err.Error())
	}

	body := envelope{"success": false, "message": fe.Message}
	if len(fe.Fields) > 0 {
		body["errors"] = fe.Fields
	}
	writeJSON(w, status, body)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodeJSON reads a required JSON body of at most limit bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, limit int64) error {
	return decodeBody(w, r, v, limit, false)
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return decodeBody(w, r, v, defaultBodyLimit, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any, limit int64, optional bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	err := strictDecode(r, v)
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return errBodyTooLarge
	case errors.Is(err, io.EOF):
		if optional {
			return nil
		}
		return fault.Validation("request body is required")
	default:
		slog.Debug("request_decode_failed", "path", r.URL.Path, "error", err)
		return fault.Validation("invalid JSON body")
	}
}

// caller returns the session identity, or nil for anonymous requests.
func caller(r *http.Request) identity.Identity {
	id, _ := middleware.IdentityFromContext(r.Context())
	return id
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
