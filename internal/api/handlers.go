package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/teris-io/shortid"

	"github.com/npezzotti/go-dmhub/internal/database"
	"github.com/npezzotti/go-dmhub/internal/server"
	"github.com/npezzotti/go-dmhub/internal/types"
)

const uniqueViolationCode = "23505"

func (s *App) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check failed:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}

func (s *App) writeJson(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Println("failed to encode response:", err)
	}
}

// listUsers serves the user directory for the member list.
func (s *App) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.db.ListUsers()
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, lo.Map(users, func(u database.User, _ int) types.User {
		return types.User{
			Id:          u.Id,
			Username:    u.Username,
			DisplayName: u.DisplayName,
		}
	}))
}

// getMessages serves the message thread between the caller and the peer named
// in the "user" query parameter.
func (s *App) getMessages(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	peer := r.URL.Query().Get("user")
	if peer == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountById(userId)
	if err != nil {
		errResp := NewNotFoundError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	thread, err := s.db.GetMessageThread(user.Username, peer)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, lo.Map(thread, func(m database.Message, _ int) types.Message {
		dto := types.Message{
			Id:                m.ExternalId,
			SenderUsername:    m.SenderUsername,
			RecipientUsername: m.RecipientUsername,
			Content:           m.Content,
			CreatedAt:         m.CreatedAt,
		}
		if m.ReadAt.Valid {
			readAt := m.ReadAt.Time
			dto.ReadAt = &readAt
		}
		return dto
	}))
}

// presence lists the usernames that currently have at least one open
// connection.
func (s *App) presence(w http.ResponseWriter, r *http.Request) {
	s.writeJson(w, http.StatusOK, map[string][]string{
		"online": s.hub.Tracker().OnlineUsers(),
	})
}

// serveWs upgrades the connection and joins the caller to the conversation
// with the peer named in the "user" query parameter.
func (s *App) serveWs(w http.ResponseWriter, r *http.Request) {
	id, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountById(id)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	peer := r.URL.Query().Get("user")
	if peer == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	connId, err := shortid.Generate()
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				// if no origin header, allow the request
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(connId, types.User{
		Id:          user.Id,
		Username:    user.Username,
		DisplayName: user.DisplayName,
	}, peer, conn, s.hub, s.log)

	if err := s.hub.Join(client); err != nil {
		s.log.Println("join:", err)
		conn.Close()
		return
	}

	go client.Write()
	go client.Read()
}
