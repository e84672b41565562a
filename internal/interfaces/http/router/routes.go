package router

import (
	"github.com/dropship/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler of the fulfillment API
type Handlers struct {
	System     *handler.SystemHandler
	Checkout   *handler.CheckoutHandler
	SubOrders  *handler.SubOrderHandler
	Pickups    *handler.PickupHandler
	Financials *handler.FinancialsHandler
}

// Setup wires the full route tree onto the engine. Probe endpoints live at
// the root so load balancers reach them without the API prefix.
func Setup(engine *gin.Engine, h Handlers) {
	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(systemGroup(h)).
		Register(checkoutGroup(h)).
		Register(subOrderGroup(h)).
		Register(pickupGroup(h)).
		Register(financialsGroup(h))
	r.Setup()
}

func systemGroup(h Handlers) *DomainGroup {
	g := NewDomainGroup("system", "/system")
	g.GET("/info", h.System.GetSystemInfo)
	return g
}

func checkoutGroup(h Handlers) *DomainGroup {
	g := NewDomainGroup("checkout", "/checkout")
	g.POST("", h.Checkout.Checkout)
	return g
}

func subOrderGroup(h Handlers) *DomainGroup {
	g := NewDomainGroup("sub-orders", "/suborders")
	g.GET("", h.SubOrders.List)
	g.GET("/:id", h.SubOrders.GetByID)
	g.GET("/:id/tracking", h.SubOrders.Tracking)
	g.POST("/:id/transition", h.SubOrders.Transition)
	g.POST("/:id/delivery-attempts", h.SubOrders.RecordDeliveryAttempt)
	return g
}

func pickupGroup(h Handlers) *DomainGroup {
	g := NewDomainGroup("pickups", "/pickups")
	g.GET("", h.Pickups.List)
	g.POST("", h.Pickups.Create)
	g.GET("/:id", h.Pickups.GetByID)
	g.GET("/:id/manifest", h.Pickups.Manifest)
	g.GET("/:id/manifest.xlsx", h.Pickups.ManifestXLSX)
	g.POST("/:id/collect", h.Pickups.Collect)
	return g
}

func financialsGroup(h Handlers) *DomainGroup {
	g := NewDomainGroup("financials", "/financials")
	g.GET("", h.Financials.Get)
	return g
}
