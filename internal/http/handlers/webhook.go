package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/internal/http/dtos"
	"github.com/just-nibble/git-digest/internal/usecases"
	"github.com/just-nibble/git-digest/pkg/response"
	"github.com/rs/zerolog"
)

const maxWebhookBody = 5 << 20

type WebhookHandler struct {
	pushUsecase usecases.PushUsecase
	secret      string
	timeout     time.Duration
	log         zerolog.Logger
}

// NewWebhookHandler verifies signatures only when secret is non-empty.
func NewWebhookHandler(pushUsecase usecases.PushUsecase, secret string, timeout time.Duration, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{pushUsecase: pushUsecase, secret: secret, timeout: timeout, log: log}
}

func (h *WebhookHandler) GitHub(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if !h.verifySignature(body, r.Header.Get("X-Hub-Signature-256")) {
		h.log.Warn().Str("remote", r.RemoteAddr).Msg("invalid webhook signature")
		response.ErrorResponse(w, http.StatusUnauthorized, "invalid webhook signature")
		return
	}

	event := r.Header.Get("X-GitHub-Event")
	if event != "" && event != "push" {
		h.log.Debug().Str("event", event).Msg("ignoring webhook event")
		response.SuccessResponse(w, http.StatusAccepted, dtos.EventIgnored{Event: event})
		return
	}

	var push domain.PushEvent
	if err := json.Unmarshal(body, &push); err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "invalid push payload")
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.pushUsecase.HandlePush(ctx, push)
	if err != nil {
		h.log.Error().Err(err).Str("repo", push.Repository.FullName).Msg("push handling failed")
		response.AppErrorResponse(w, err)
		return
	}

	response.SuccessResponse(w, http.StatusCreated, dtos.PushAccepted{
		Commitments: len(result.Commitments),
		Feeds:       len(result.Feeds),
	})
}

func (h *WebhookHandler) verifySignature(payload []byte, header string) bool {
	if h.secret == "" {
		return true
	}

	// GitHub signature format: "sha256=<hex>"
	provided, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(provided), []byte(expected))
}
