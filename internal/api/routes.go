package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the REST API on r.
func (h *HTTPHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	apiGroup := r.Group("/api")
	apiGroup.Use(h.CSRFMiddleware())

	authGroup := apiGroup.Group("/auth")
	authGroup.GET("/csrf", h.CSRF)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/logout", h.Logout)
	authGroup.POST("/register", h.Register)
	authGroup.GET("/verify-email/:token", h.VerifyEmail)
	authGroup.GET("/me", h.AuthMiddleware(), h.Me)

	protected := apiGroup.Group("")
	protected.Use(h.AuthMiddleware())
	protected.GET("/payroll/me", h.MyPayrollHistory)
	protected.GET("/payroll/:id/pdf", h.PayrollSlip)
	protected.POST("/users/:id/upload-picture", h.UploadPicture)

	userAdmin := protected.Group("/users")
	userAdmin.Use(h.RequireAdmin())
	userAdmin.GET("", h.ListUsers)
	userAdmin.POST("/create", h.CreateUser)
	userAdmin.PUT("/:id/update", h.UpdateUser)
	userAdmin.DELETE("/:id/delete", h.DeleteUser)

	payrollAdmin := protected.Group("/payroll")
	payrollAdmin.Use(h.RequireAdmin())
	payrollAdmin.GET("/:id/history", h.PayrollHistory)
	payrollAdmin.POST("/:id/upsert", h.UpsertPayroll)
}
