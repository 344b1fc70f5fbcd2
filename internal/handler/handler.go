// Package handler holds the gin endpoints: the public scanner endpoint, the
// auth endpoints and the admin catalog API.
package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MarvinH10/asistencias-app/internal/attendance"
	"github.com/MarvinH10/asistencias-app/internal/auth"
	"github.com/MarvinH10/asistencias-app/internal/catalog"
	"github.com/MarvinH10/asistencias-app/internal/queue"
)

// User-facing messages for the scanner flow.
const (
	msgInvalidCode  = "Código QR no válido. Por favor, verifica el código e intenta nuevamente."
	msgUnlinkedCode = "No se encontró un usuario asociado a este código QR. Por favor, contacta al administrador."
	msgDuplicate    = "Ya se registró una asistencia recientemente. Espera unos segundos antes de intentar nuevamente."
	msgPersistence  = "Ocurrió un error inesperado al registrar la asistencia. Intenta nuevamente o contacta al administrador."
)

var (
	registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_registrations_total",
		Help: "Successful attendance registrations by status.",
	}, []string{"status"})

	registrationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_registration_failures_total",
		Help: "Failed attendance registrations by reason.",
	}, []string{"reason"})
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	registrar *attendance.Service
	auth      *auth.Service
	catalog   *catalog.Repository
	queue     queue.Queue
}

// New creates the handler. queue may be nil when no audit stream is wired.
func New(registrar *attendance.Service, authSvc *auth.Service, cat *catalog.Repository, q queue.Queue) *Handler {
	return &Handler{registrar: registrar, auth: authSvc, catalog: cat, queue: q}
}

type registerRequest struct {
	QRCode    string `json:"qr_code" form:"qr_code" binding:"required"`
	Latitude  string `json:"latitude" form:"latitude"`
	Longitude string `json:"longitude" form:"longitude"`
}

// RegisterAttendance handles a QR scan: POST /attendance/register.
func (h *Handler) RegisterAttendance(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		registrationFailures.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	res, err := h.registrar.Register(c.Request.Context(), req.QRCode, req.Latitude, req.Longitude, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrInvalidCode):
			registrationFailures.WithLabelValues("invalid_code").Inc()
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": msgInvalidCode})
		case errors.Is(err, attendance.ErrUnlinkedCode):
			registrationFailures.WithLabelValues("unlinked_code").Inc()
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": msgUnlinkedCode})
		case errors.Is(err, attendance.ErrDuplicate):
			registrationFailures.WithLabelValues("duplicate").Inc()
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": msgDuplicate})
		default:
			registrationFailures.WithLabelValues("persistence").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": msgPersistence})
		}
		return
	}

	registrations.WithLabelValues(res.Status).Inc()
	if h.queue != nil {
		msg := queue.Message{Type: "registered", Body: []byte(res.Status)}
		if err := h.queue.Publish(c.Request.Context(), msg); err != nil {
			log.Printf("queue publish failed: %v", err)
		}
	}

	body := gin.H{
		"success":   true,
		"message":   "¡Asistencia registrada exitosamente como " + res.Status + "!",
		"user_name": res.UserName,
		"timestamp": res.Timestamp,
	}
	if res.Warning != "" {
		body["warning"] = res.Warning
	}
	c.JSON(http.StatusOK, body)
}

type loginRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	DeviceUID string `json:"device_uid"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, cred, err := h.auth.Login(c.Request.Context(), req.Email, req.Password,
		c.ClientIP(), c.Request.UserAgent(), req.DeviceUID)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "credenciales no válidas"})
			return
		}
		log.Printf("login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error interno"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_at":    pair.AccessExp.Unix(),
		"user":          gin.H{"id": cred.ID, "name": cred.Name, "email": cred.Email},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh handles POST /auth/refresh with token rotation.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefresh) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token de actualización no válido"})
			return
		}
		log.Printf("refresh failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error interno"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_at":    pair.AccessExp.Unix(),
	})
}
