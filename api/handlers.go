package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aloks98/securevault"
	"github.com/aloks98/securevault/dashboard"
	"github.com/aloks98/securevault/identity"
	"github.com/aloks98/securevault/internal/wire"
	"github.com/aloks98/securevault/middleware"
	"github.com/aloks98/securevault/validation"
)

const (
	maxBodyBytes = 1 << 20
	pingTimeout  = 2 * time.Second
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req wire.LoginRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.AuthResponse{User: res.User, Token: res.Token})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req wire.SignupRequest
	if !s.decode(w, r, &req) {
		return
	}

	role, err := identity.ParseRole(req.Role)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.identity.Signup(r.Context(), identity.SignupRequest{
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		Organization: req.Organization,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wire.AuthResponse{User: res.User, Token: res.Token})
}

func (s *Server) passwordReset(w http.ResponseWriter, r *http.Request) {
	var req wire.PasswordResetRequest
	if !s.decode(w, r, &req) {
		return
	}

	msg, err := s.identity.ResetPassword(r.Context(), req.Email)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.MessageResponse{Message: msg})
}

func (s *Server) recoverAccount(w http.ResponseWriter, r *http.Request) {
	var req wire.RecoveryRequest
	if !s.decode(w, r, &req) {
		return
	}

	msg, err := s.identity.RecoverAccount(r.Context(), req.Email, req.SecurityAnswer)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.MessageResponse{Message: msg})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.UserFrom(r.Context()))
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFrom(r.Context())
	view, err := dashboard.For(u.Role, s.policy)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) tasks(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFrom(r.Context())
	q := r.URL.Query().Get("q")
	tasks := dashboard.FilterTasks(dashboard.Tasks(u.Role), q)

	writeJSON(w, http.StatusOK, wire.TasksResponse{Query: q, Tasks: tasks, Counts: dashboard.CountByStatus(tasks)})
}

func (s *Server) users(w http.ResponseWriter, r *http.Request) {
	recs, err := s.directory.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := wire.UsersResponse{Users: make([]identity.User, 0, len(recs)), Total: len(recs)}
	for _, rec := range recs {
		out.Users = append(out.Users, rec.User)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := s.identity.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, wire.HealthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, wire.HealthResponse{Status: "ok"})
}

// decode reads a JSON body into form and validates it. It writes the error
// response and returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, form any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(form); err != nil {
		writeError(w, http.StatusBadRequest, wireError(wire.CodeBadRequest, "Malformed request body", nil))
		return false
	}
	if err := validation.Struct(form); err != nil {
		s.fail(w, r, err)
		return false
	}
	return true
}

// fail writes err as a JSON error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		writeError(w, http.StatusUnprocessableEntity, wireError(wire.CodeValidation, "Validation failed", verrs))
		return
	}

	se := securevault.Classify(err)
	status := statusFor(se.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeError(w, status, wireError(se.Code, se.Message, nil))
}

func statusFor(code string) int {
	switch code {
	case securevault.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case securevault.CodeEmailExists:
		return http.StatusConflict
	case securevault.CodeEmailNotFound:
		return http.StatusNotFound
	case securevault.CodeUnknownRole, securevault.CodeValidation:
		return http.StatusUnprocessableEntity
	case securevault.CodeIdentityUnavailable, securevault.CodeCanceled:
		return http.StatusServiceUnavailable
	case securevault.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) authError(w http.ResponseWriter, r *http.Request, err error) {
	status := middleware.StatusFor(err)
	switch status {
	case http.StatusUnauthorized:
		writeError(w, status, wireError(wire.CodeUnauthorized, "Please sign in", nil))
	case http.StatusForbidden:
		writeError(w, status, wireError(wire.CodeForbidden, "You do not have access to this page", nil))
	default:
		s.fail(w, r, err)
	}
}

func rateLimited(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusTooManyRequests, wireError(wire.CodeRateLimited, "Too many attempts, please try again later", nil))
}

func wireError(code, msg string, fields map[string]string) wire.Error {
	return wire.Error{Code: code, Message: msg, Fields: fields}
}

func writeError(w http.ResponseWriter, status int, e wire.Error) {
	writeJSON(w, status, wire.ErrorResponse{Error: e})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
