package routes

import (
	"net/http"
	"strings"
	"time"

	"devconnector/handlers"
	"devconnector/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router needs. Health, when set, reports whether
// the backing services are reachable.
type Deps struct {
	Auth     *handlers.AuthHandler
	Profiles *handlers.ProfileHandler
	Posts    *handlers.PostHandler
	Tokens   middleware.TokenVerifier
	Origins  []string
	Health   func(*gin.Context) error
}

func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Metrics(),
	)

	origins := d.Origins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.TokenHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API Running")
	})
	router.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(c); err != nil {
				c.String(http.StatusServiceUnavailable, "UNAVAILABLE")
				return
			}
		}
		c.String(http.StatusOK, "OK")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.AuthRequired(d.Tokens)
	api := router.Group("/api")

	// Accounts
	api.POST("/users", d.Auth.Register)
	api.POST("/auth", d.Auth.Login)
	api.GET("/auth", requireAuth, d.Auth.Me)

	// Profiles
	profile := api.Group("/profile")
	profile.GET("", d.Profiles.List)
	profile.GET("/user/:user_id", d.Profiles.ByUser)
	profile.GET("/github/:username", d.Profiles.GithubRepos)
	profile.GET("/me", requireAuth, d.Profiles.Me)
	profile.POST("", requireAuth, d.Profiles.Upsert)
	profile.DELETE("", requireAuth, d.Profiles.DeleteAccount)
	profile.PUT("/experience", requireAuth, d.Profiles.AddExperience)
	profile.DELETE("/experience/:exp_id", requireAuth, d.Profiles.RemoveExperience)
	profile.PUT("/education", requireAuth, d.Profiles.AddEducation)
	profile.DELETE("/education/:edu_id", requireAuth, d.Profiles.RemoveEducation)

	// Posts
	posts := api.Group("/posts", requireAuth)
	posts.POST("", d.Posts.Create)
	posts.GET("", d.Posts.List)
	posts.GET("/:id", d.Posts.Get)
	posts.DELETE("/:id", d.Posts.Delete)
	posts.PUT("/like/:id", d.Posts.Like)
	posts.PUT("/unlike/:id", d.Posts.Unlike)
	posts.POST("/comment/:id", d.Posts.AddComment)
	posts.DELETE("/comment/:id/:comment_id", d.Posts.RemoveComment)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Endpoint not found", "path": c.Request.URL.Path})
			return
		}
		c.String(http.StatusNotFound, "Not Found")
	})

	return router
}
