package routes

import (
	"github.com/julienschmidt/httprouter"

	"medirent/booking"
	"medirent/cart"
	"medirent/checkout"
	"medirent/equipment"
	"medirent/middleware"
	"medirent/ratelim"
)

func RoutesWrapper(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	AddEquipmentRoutes(router, rateLimiter)
	AddCartRoutes(router, rateLimiter)
	AddCheckoutRoutes(router, rateLimiter)
	AddBookingRoutes(router, rateLimiter)
	AddPayRoutes(router, rateLimiter)
}

func AddEquipmentRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	public := middleware.Chain(rateLimiter.Limit, middleware.OptionalAuth)
	authed := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)

	router.GET("/api/v1/equipment/all", public(equipment.GetAllEquipment))
	router.GET("/api/v1/equipment/mine", authed(equipment.GetProviderEquipment))
	router.GET("/api/v1/equipment/item/:id", public(equipment.GetEquipment))
	router.POST("/api/v1/equipment", authed(equipment.CreateEquipment))
	router.PUT("/api/v1/equipment/item/:id", authed(equipment.UpdateEquipment))
	router.PUT("/api/v1/equipment/item/:id/mark-listed", authed(equipment.MarkListed))
	router.POST("/api/v1/equipment/item/:id/image", authed(equipment.UploadImage))
}

func AddCartRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	authed := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)

	router.GET("/api/v1/cart", authed(cart.GetCart))
	router.POST("/api/v1/cart/items", authed(cart.AddItem))
	router.PUT("/api/v1/cart/items/:itemid", authed(cart.SetQuantity))
	router.DELETE("/api/v1/cart/items/:itemid", authed(cart.RemoveItem))
	router.PUT("/api/v1/cart/items/:itemid/toggle", authed(cart.ToggleSelected))
	router.PUT("/api/v1/cart/select-all", authed(cart.SelectAll))
	router.DELETE("/api/v1/cart", authed(cart.ClearCart))
	router.POST("/api/v1/cart/refresh-stock", authed(cart.RefreshStock))
}

func AddCheckoutRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	authed := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)

	router.POST("/api/v1/checkout", authed(checkout.Checkout))
	router.POST("/api/v1/checkout/now", authed(checkout.CheckoutNow))
}

func AddBookingRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	authed := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)

	router.POST("/api/v1/booking/create", authed(booking.CreateBooking))
	router.GET("/api/v1/booking/patient", authed(booking.GetPatientBookings))
	router.GET("/api/v1/booking/provider", authed(booking.GetProviderBookings))
	router.GET("/api/v1/booking/get/:id", authed(booking.GetBooking))
	router.PUT("/api/v1/booking/status/:id", authed(booking.UpdateStatus))
	router.PUT("/api/v1/booking/cancel/:id", authed(booking.CancelBooking))
	router.PUT("/api/v1/booking/confirm-cod/:id", authed(booking.ConfirmCOD))
	router.PUT("/api/v1/booking/payment-status/:id", authed(booking.UpdatePaymentStatus))
	router.POST("/api/v1/booking/review/:id", authed(booking.SubmitReview))
	router.GET("/api/v1/booking/receipt/:id", authed(booking.PrintReceipt))

	router.GET("/ws/bookings/:role/:id", middleware.Authenticate(booking.HandleWS))
}
