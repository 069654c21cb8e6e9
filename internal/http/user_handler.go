package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront/internal/apperr"
	"github.com/tuanvumaihuynh/storefront/internal/auth"
	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/service"
)

type userHandler struct {
	userSvc service.UserService
}

func newUserHandler(userSvc service.UserService) *userHandler {
	return &userHandler{
		userSvc: userSvc,
	}
}

type createUserRequest struct {
	Name        string `json:"name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

type updateUserRequest struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Password    *string   `json:"password"`
}

func (h *userHandler) ListUsers(w http.ResponseWriter, r *http.Request) error {
	q, err := pagingQuery(r)
	if err != nil {
		return err
	}

	page, err := h.userSvc.ListUsers(r.Context(), q)
	if err != nil {
		return fmt.Errorf("user service list users: %w", err)
	}

	writeJSON(w, http.StatusOK, newPageResponse(page, newUserResponse))
	return nil
}

func (h *userHandler) GetUser(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	if err := authorizeSelf(r, id); err != nil {
		return err
	}

	user, err := h.userSvc.GetUser(r.Context(), id)
	if err != nil {
		return fmt.Errorf("user service get user: %w", err)
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
	return nil
}

func (h *userHandler) CreateUser(w http.ResponseWriter, r *http.Request) error {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	role, err := model.ParseRole(req.Role)
	if err != nil {
		// left to the validator, which reports it with the other violations
		role = model.Role(req.Role)
	}

	if role == model.RoleAdmin {
		claims, ok := auth.FromContext(r.Context())
		if !ok || !claims.HasRole(model.RoleAdmin) {
			return apperr.ForbiddenErr.WithMsgf("only admins can register admins")
		}
	}

	user, err := h.userSvc.CreateUser(r.Context(), service.CreateUserParams{
		Name:        req.Name,
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Role:        role,
	})
	if err != nil {
		return fmt.Errorf("user service create user: %w", err)
	}

	writeJSON(w, http.StatusCreated, newUserResponse(user))
	return nil
}

func (h *userHandler) UpdateUser(w http.ResponseWriter, r *http.Request) error {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	if err := authorizeSelf(r, req.ID); err != nil {
		return err
	}

	user, err := h.userSvc.UpdateUser(r.Context(), service.UpdateUserParams{
		ID:          req.ID,
		Name:        req.Name,
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		return fmt.Errorf("user service update user: %w", err)
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
	return nil
}

func (h *userHandler) DeleteUser(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	deleted, err := h.userSvc.DeleteUser(r.Context(), id)
	if err != nil {
		return fmt.Errorf("user service delete user: %w", err)
	}
	if !deleted {
		return apperr.UserNotFoundErr.WithMsgf("user %s not found", id)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// authorizeSelf lets admins act on any user and everyone else on themselves.
func authorizeSelf(r *http.Request, id uuid.UUID) error {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		return apperr.MissingTokenErr
	}

	if claims.HasRole(model.RoleAdmin) {
		return nil
	}

	callerID, err := claims.UserID()
	if err != nil || callerID != id {
		return apperr.ForbiddenErr
	}
	return nil
}
