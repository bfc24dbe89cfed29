package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicadelvalle/agenda-api/internal/domain/patient"
	"github.com/clinicadelvalle/agenda-api/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type registerRequest struct {
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	DocumentType   string `json:"document_type" binding:"required"`
	DocumentNumber string `json:"document_number" binding:"required"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Password       string `json:"password" binding:"required"`
	EPS            string `json:"eps"`
	City           string `json:"city"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.svc.RegisterPatient(c.Request.Context(), &service.RegisterPatientCommand{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		DocumentType:   patient.DocumentType(req.DocumentType),
		DocumentNumber: req.DocumentNumber,
		Email:          req.Email,
		Phone:          req.Phone,
		Password:       req.Password,
		EPS:            req.EPS,
		City:           req.City,
	}, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, p)
}

type loginRequest struct {
	DocumentNumber string `json:"document_number" binding:"required"`
	Password       string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Role         string `json:"role"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, claims, err := h.svc.Login(c.Request.Context(), req.DocumentNumber, req.Password, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, loginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Role:         string(claims.Role),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, loginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
