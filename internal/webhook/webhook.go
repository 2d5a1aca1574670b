// Package webhook accepts signed GitHub push events and triggers the
// deploy script without waiting for it.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"tuitter/internal/config"
)

// VerifySignature checks an X-Hub-Signature-256 header ("sha256=<hex>")
// against the HMAC-SHA256 of the raw body. Constant-time compare, no
// timing leak.
func VerifySignature(secret, body []byte, sigHeader string) bool {
	if !strings.HasPrefix(sigHeader, "sha256=") {
		return false
	}
	received := strings.TrimPrefix(sigHeader, "sha256=")

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(received), []byte(expected))
}

type pushPayload struct {
	Ref string `json:"ref"`
}

type Handler struct {
	cfg config.WebhookConfig
	log *logrus.Logger

	// spawn launches the deploy process without waiting; swapped in tests
	spawn func(script string) error
}

func NewHandler(cfg config.WebhookConfig, log *logrus.Logger) *Handler {
	return &Handler{
		cfg: cfg,
		log: log,
		spawn: func(script string) error {
			cmd := exec.Command(script)
			return cmd.Start()
		},
	}
}

// ServeHTTP rejects unsigned or mis-signed requests before any side
// effect, acknowledges non-deploy events, and fires the deploy script
// asynchronously for pushes to the configured ref.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Secret == "" {
		h.respond(w, http.StatusInternalServerError, map[string]any{"detail": "webhook secret not configured"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.respond(w, http.StatusBadRequest, map[string]any{"detail": "cannot read body"})
		return
	}

	if !VerifySignature([]byte(h.cfg.Secret), body, r.Header.Get("X-Hub-Signature-256")) {
		h.respond(w, http.StatusUnauthorized, map[string]any{"detail": "invalid signature"})
		return
	}

	var payload pushPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.respond(w, http.StatusBadRequest, map[string]any{"detail": "invalid JSON"})
		return
	}

	if event := r.Header.Get("X-GitHub-Event"); event != "push" {
		h.respond(w, http.StatusOK, map[string]any{"ignored": true, "reason": "not a push event"})
		return
	}
	if payload.Ref != h.cfg.DeployRef {
		h.respond(w, http.StatusOK, map[string]any{"ignored": true, "reason": "not the deploy branch"})
		return
	}

	if err := h.spawn(h.cfg.DeployScript); err != nil {
		h.log.WithError(err).Error("failed to start deploy")
		h.respond(w, http.StatusInternalServerError, map[string]any{"detail": "failed to start deploy"})
		return
	}

	h.log.WithField("ref", payload.Ref).Info("deploy started")
	h.respond(w, http.StatusAccepted, map[string]any{"ok": true, "action": "deploy", "ref": payload.Ref})
}

func (h *Handler) respond(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
