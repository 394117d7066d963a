package http

import (
	"github.com/gin-gonic/gin"

	"github.com/harborline/portgate/internal/model"
)

// NewRouter assembles the API surface. Role gating here only guards the
// endpoints; the authoritative role × state × action checks live in the
// booking state machine's transition table.
func NewRouter(jwtSecret string, bookings *BookingHandler, gates *GateHandler, admin *AdminHandler) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	v1.Use(JWTAuth(jwtSecret))
	{
		v1.POST("/bookings", RequireRole(model.RoleCarrier, model.RoleAdmin), bookings.Create)
		v1.GET("/bookings", bookings.List)
		v1.GET("/bookings/:id", bookings.Get)
		v1.POST("/bookings/:id/confirm", RequireRole(model.RoleOperator, model.RoleAdmin), bookings.Confirm)
		v1.POST("/bookings/:id/reject", RequireRole(model.RoleOperator, model.RoleAdmin), bookings.Reject)
		v1.POST("/bookings/:id/cancel", RequireRole(model.RoleCarrier, model.RoleAdmin), bookings.Cancel)

		v1.POST("/gates/:id/scan", RequireRole(model.RoleGate, model.RoleOperator, model.RoleAdmin), gates.Scan)
		v1.GET("/gates/:id/slots", gates.ListSlots)

		adm := v1.Group("")
		adm.Use(RequireRole(model.RoleAdmin))
		{
			adm.POST("/ports", admin.CreatePort)
			adm.GET("/ports", admin.ListPorts)
			adm.POST("/terminals", admin.CreateTerminal)
			adm.POST("/carriers", admin.CreateCarrier)
			adm.POST("/slots", admin.CreateSlot)
			adm.POST("/slots/bulk", admin.CreateSlotsBulk)
			adm.POST("/gates", admin.CreateGate)
			adm.POST("/trucks", admin.CreateTruck)
			adm.POST("/users", admin.CreateUser)
		}

		v1.GET("/audit", RequireRole(model.RoleOperator, model.RoleAdmin), admin.ListAudit)
	}

	return r
}
