package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/avelar/vidshelf-be/internal/api/handlers"
	"github.com/avelar/vidshelf-be/internal/services"
	"github.com/avelar/vidshelf-be/internal/storage"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	userService services.UserServiceProvider,
	videoService services.VideoServiceProvider,
	categoryService services.CategoryServiceProvider,
	eventService services.EventServiceProvider,
	assets *storage.Store,
	corsOrigin string,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, assets)
	videoHandler := handlers.NewVideoHandler(videoService, assets)
	categoryHandler := handlers.NewCategoryHandler(categoryService, assets)
	eventHandler := handlers.NewEventHandler(eventService)

	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/profile", userHandler.Profile)
				r.Put("/update", userHandler.Update)
				r.Put("/password", userHandler.ChangePassword)
				r.Delete("/delete", userHandler.Delete)
			})
		})

		r.Route("/video", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", videoHandler.Create)
			r.Get("/", videoHandler.GetAll)
			r.Get("/filter", videoHandler.GetByFilter)
			r.Get("/user", videoHandler.GetByUser)
			r.Get("/user/{id}", videoHandler.GetByUser)
			r.Get("/category/{category}", videoHandler.GetByCategory)
			r.Get("/platform/{platform}", videoHandler.GetByPlatform)
			r.Get("/{id}", videoHandler.Get)
			r.Put("/{id}", videoHandler.Update)
			r.Delete("/bulk", videoHandler.DeleteBulk)
			r.Delete("/{id}", videoHandler.Delete)
		})

		r.Route("/category", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", categoryHandler.GetAll)
			r.Post("/", categoryHandler.Create)
			r.Get("/{id}", categoryHandler.Get)
			r.Put("/{id}", categoryHandler.Update)
			r.Delete("/{id}", categoryHandler.Delete)
		})

		r.Route("/event", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", eventHandler.GetRecent)
		})
	})

	return r
}
