package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pricelist-cli/internal/catalog"
	"github.com/sells-group/pricelist-cli/internal/normalize"
	"github.com/sells-group/pricelist-cli/internal/store"
)

// apiError is the error body of every failed request.
type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// requestError is a client error raised while reading a request.
type requestError struct {
	status  int
	message string
	details map[string]string
}

func (e *requestError) Error() string { return e.message }

func badRequest(msg string, details map[string]string) error {
	return &requestError{status: http.StatusBadRequest, message: msg, details: details}
}

// writeJSON encodes payload before writing the header, so an unencodable
// payload becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"internal","message":"encode response"}}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		zap.L().Debug("api: write response", zap.Error(err))
	}
}

// writeError maps err onto a status code and writes the error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	if eris.As(err, &reqErr) {
		writeJSON(w, reqErr.status, errorEnvelope{Error: apiError{Code: "validation", Message: reqErr.message, Details: reqErr.details}})
		return
	}

	status, code := http.StatusInternalServerError, "internal"
	switch {
	case eris.Is(err, store.ErrNotFound),
		eris.Is(err, catalog.ErrItemNotFound):
		status, code = http.StatusNotFound, "not_found"
	case eris.Is(err, catalog.ErrNoCurrentList),
		eris.Is(err, catalog.ErrNoPriorList):
		status, code = http.StatusNotFound, "no_list"
	case eris.Is(err, normalize.ErrInvalidInput):
		status, code = http.StatusBadRequest, "validation"
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		zap.L().Error("api: request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = "unexpected error"
	}
	writeJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: msg}})
}
