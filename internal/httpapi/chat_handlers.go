package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"tuitter/internal/chat"
)

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	viewer, err := s.users.Resolve(r.Context(), handleParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve user")
		return
	}

	summaries, err := s.chats.Summaries(r.Context(), viewer)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}

	out := make([]ConversationOut, 0, len(summaries))
	for _, sum := range summaries {
		out = append(out, newConversationOut(sum))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultMessageLimit, maxMessageLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msgs, err := s.chats.ListMessages(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	out := make([]MessageOut, 0, len(msgs))
	for i := range msgs {
		out = append(out, s.newMessageOut(r.Context(), &msgs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

type messageCreateRequest struct {
	SenderHandle string `json:"sender_handle"`
	Content      string `json:"content"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req messageCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SenderHandle == "" {
		req.SenderHandle = "yourname"
	}

	sender, err := s.users.Resolve(r.Context(), req.SenderHandle)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve sender")
		return
	}

	msg, err := s.chats.SendMessage(r.Context(), mux.Vars(r)["id"], sender, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, chat.ErrNotParticipant):
			writeError(w, http.StatusNotFound, "Conversation not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to send message")
		}
		return
	}
	s.metrics.MessagesSent.Inc()
	writeJSON(w, http.StatusCreated, s.newMessageOut(r.Context(), msg))
}

func (s *Server) handleMarkConversationRead(w http.ResponseWriter, r *http.Request) {
	viewer, err := s.users.Resolve(r.Context(), handleParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve user")
		return
	}

	if err := s.chats.MarkRead(r.Context(), mux.Vars(r)["id"], viewer); err != nil {
		if errors.Is(err, chat.ErrNotParticipant) {
			writeError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to mark conversation read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type dmOpenRequest struct {
	UserAHandle string `json:"user_a_handle"`
	UserBHandle string `json:"user_b_handle"`
}

func (s *Server) handleOpenDM(w http.ResponseWriter, r *http.Request) {
	var req dmOpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserAHandle == "" || req.UserBHandle == "" {
		writeError(w, http.StatusBadRequest, "user_a_handle and user_b_handle are required")
		return
	}

	a, err := s.users.Resolve(r.Context(), req.UserAHandle)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve user")
		return
	}
	b, err := s.users.Resolve(r.Context(), req.UserBHandle)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve user")
		return
	}

	conv, err := s.chats.OpenDirect(r.Context(), a, b)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to open conversation")
		return
	}

	writeJSON(w, http.StatusCreated, ConversationOut{
		ID:       conv.ID,
		Username: b.Handle,
	})
}
