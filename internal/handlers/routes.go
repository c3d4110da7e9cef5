package handlers

import (
	"github.com/filestore/backend/internal/middleware"
	"github.com/filestore/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Dependencies is everything the HTTP layer needs from the rest of the
// service.
type Dependencies struct {
	DB     *gorm.DB
	Access *services.AccessService
	Files  *services.FileService
	Audit  *services.AuditService
}

// RegisterRoutes mounts the health check and the /api tree on app. Global
// middleware is left to the caller.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	authHandler := NewAuthHandler(deps.DB, deps.Audit)
	usersHandler := NewUsersHandler(deps.DB)
	filesHandler := NewFilesHandler(deps.Files, deps.Access, deps.Audit)
	sharesHandler := NewSharesHandler(deps.Access, deps.Files, deps.Audit)
	authMiddleware := middleware.NewAuthMiddleware(deps.DB)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)

	api.Get("/users/search", authMiddleware.RequireAuth, usersHandler.Search)
	api.Get("/dashboard", authMiddleware.RequireAuth, filesHandler.Dashboard)
	api.Get("/shared", authMiddleware.RequireAuth, sharesHandler.ListSharedWithMe)

	fileRoutes := api.Group("/files", authMiddleware.RequireAuth)
	fileRoutes.Post("/upload", filesHandler.Upload)
	fileRoutes.Get("/", filesHandler.ListOwned)
	fileRoutes.Get("/:id/access", filesHandler.GetAccess)
	fileRoutes.Get("/:id/download", filesHandler.Download)
	fileRoutes.Get("/:id/shares", sharesHandler.ListFileShares)
	fileRoutes.Put("/:id/shares", sharesHandler.ReplaceShares)
	fileRoutes.Get("/:id", filesHandler.Get)
	fileRoutes.Delete("/:id", filesHandler.Delete)
}
