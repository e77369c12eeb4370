package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/just-nibble/git-digest/pkg/errcodes"
)

type envelope struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse writes data wrapped in a success envelope.
func SuccessResponse(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Status: "success", Data: data})
}

// ErrorResponse writes a plain error message.
func ErrorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Status: "error", Message: message})
}

// AppErrorResponse maps err to a status code using its errcodes kind.
func AppErrorResponse(w http.ResponseWriter, err error) {
	var appErr *errcodes.Error
	if !errors.As(err, &appErr) {
		appErr = errcodes.Wrap(err, errcodes.KindInternal, "internal server error")
	}

	message := appErr.Message
	if appErr.Kind == errcodes.KindInternal || appErr.Kind == errcodes.KindPersistence {
		message = "internal server error"
	}

	writeJSON(w, appErr.StatusCode(), envelope{Status: "error", Message: message, Code: string(appErr.Kind)})
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
