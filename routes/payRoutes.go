package routes

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"medirent/middleware"
	"medirent/pay"
	"medirent/ratelim"
)

// withIdempotency bridges the http.Handler idempotency middleware onto an
// httprouter handle.
func withIdempotency(h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		pay.IdempotencyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h(w, r, ps)
		})).ServeHTTP(w, r)
	}
}

func AddPayRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	authed := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)

	router.POST("/api/v1/payment/process", authed(withIdempotency(pay.ProcessPayment)))
	router.POST("/api/v1/payment/listing-fee", authed(withIdempotency(pay.ListingFee)))
	router.GET("/api/v1/payment/transactions", authed(pay.ListTransactions))
}
