package server

import (
	"github.com/labstack/echo/v4"

	"example.com/lezzet-planner/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	authHandler *handlers.AuthHandler,
	restaurantHandler *handlers.RestaurantHandler,
	planHandler *handlers.PlanHandler,
	cartHandler *handlers.CartHandler,
	orderHandler *handlers.OrderHandler,
	addressHandler *handlers.AddressHandler,
	deliveryHandler *handlers.DeliveryHandler,
	notificationHandler *handlers.NotificationHandler,
	authMiddleware echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", authRateLimiter)

	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authHandler.Me, authMiddleware)

	restaurants := api.Group("/restaurants", authMiddleware)
	restaurants.GET("", restaurantHandler.List)
	restaurants.GET("/:id", restaurantHandler.Get)

	plan := api.Group("/plan", authMiddleware)
	plan.GET("", planHandler.Get)
	plan.POST("/reset", planHandler.Reset)
	plan.PATCH("/days/:dayIndex/complete", planHandler.CompleteDay)
	plan.POST("/days/:dayIndex/slots", planHandler.AppendSlot)
	plan.POST("/days/:dayIndex/slots/:planId/items", planHandler.StageItem)
	plan.GET("/days/:dayIndex/slots/:planId/staged", planHandler.Staged)
	plan.POST("/days/:dayIndex/slots/:planId/confirm", planHandler.Confirm)
	plan.DELETE("/days/:dayIndex/slots/:planId/staged", planHandler.DiscardStaged)
	plan.DELETE("/slots/:planId/selections/:selectionId", planHandler.RemoveSelection)

	cartGroup := api.Group("/cart", authMiddleware)
	cartGroup.GET("", cartHandler.Get)
	cartGroup.POST("/items", cartHandler.AddItem)
	cartGroup.DELETE("/items/:itemId", cartHandler.RemoveItem)
	cartGroup.DELETE("", cartHandler.Clear)
	cartGroup.POST("/checkout", cartHandler.Checkout)

	orders := api.Group("/orders", authMiddleware)
	orders.GET("", orderHandler.List)
	orders.GET("/:orderId", orderHandler.Get)

	addresses := api.Group("/addresses", authMiddleware)
	addresses.GET("", addressHandler.List)
	addresses.POST("", addressHandler.Create)
	addresses.DELETE("/:id", addressHandler.Delete)

	deliveryGroup := api.Group("/delivery", authMiddleware)
	deliveryGroup.GET("/estimate", deliveryHandler.Estimate)

	notifications := api.Group("/notifications", authMiddleware)
	notifications.GET("/stream", notificationHandler.Stream)
}
