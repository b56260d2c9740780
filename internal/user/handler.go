package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/utilities"
)

// Handler exposes the administrative user endpoints. Routes are expected
// to be wrapped with the admin gate by the router.
type Handler struct {
	svc    *UserService
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// UpdatePasswordRequest body for the password update endpoint.
type UpdatePasswordRequest struct {
	UserID int64  `json:"user_id"`
	NewPwd string `json:"new_pwd"`
}

// InsertRequest body for the insert endpoint.
type InsertRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r)
}

func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid update password payload", "err", err)
		utilities.WriteError(w, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	if err := h.svc.ChangePassword(r.Context(), req.UserID, req.NewPwd); err != nil {
		h.writeErr(w, "update password", err)
		return
	}
	h.logger.Infow("password updated", "user_id", req.UserID)
	h.writeList(w, r)
}

func (h *Handler) Insert(w http.ResponseWriter, r *http.Request) {
	var req InsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid insert payload", "err", err)
		utilities.WriteError(w, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	u, err := h.svc.CreateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeErr(w, "insert user", err)
		return
	}
	h.logger.Infow("user inserted", "user_id", u.ID, "email", u.Email)
	h.writeList(w, r)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeErr(w, "delete user", err)
		return
	}
	h.logger.Infow("user deleted", "user_id", id)
	utilities.WriteOK(w, http.StatusOK, "")
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	u, err := h.svc.ToggleActive(r.Context(), id)
	if err != nil {
		h.writeErr(w, "change status", err)
		return
	}
	h.logger.Infow("user status changed", "user_id", id, "is_active", u.IsActive)
	utilities.WriteOK(w, http.StatusOK, "")
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		utilities.WriteError(w, http.StatusBadRequest, "invalid user id", nil)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		h.writeErr(w, "list users", err)
		return
	}
	utilities.WriteOK(w, http.StatusOK, users)
}

// writeErr maps service errors to status codes.
func (h *Handler) writeErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		utilities.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, repo.ErrDuplicateEmail):
		utilities.WriteError(w, http.StatusConflict, "email already exists", nil)
	case errors.Is(err, ErrUserNotFound):
		utilities.WriteError(w, http.StatusNotFound, "user not found", nil)
	default:
		h.logger.Errorw(op+" failed", "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, "internal error", nil)
	}
}
