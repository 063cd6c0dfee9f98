package httpapp

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	appmiddleware "photoflow/internal/middleware"
	httprouters "photoflow/internal/transport/http"
	"photoflow/internal/transport/http/dto/response"
	"photoflow/web"

	_ "photoflow/docs"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// TemplateRenderer serves the embedded pages.
type TemplateRenderer struct {
	templates *template.Template
}

func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

type Server struct {
	log        *slog.Logger
	e          *echo.Echo
	routers    *httprouters.Routers
	host       string
	port       string
	storageDir string
}

func New(log *slog.Logger, sessionSecret, host, port, storageDir string, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}

	e.Renderer = &TemplateRenderer{
		templates: template.Must(template.ParseFS(web.Templates, "templates/*.html")),
	}

	e.Use(session.Middleware(sessions.NewCookieStore([]byte(sessionSecret))))
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(appmiddleware.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	return &Server{
		log:        log,
		e:          e,
		routers:    routers,
		host:       host,
		port:       port,
		storageDir: storageDir,
	}
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(fmt.Sprintf("%s:%s", s.host, s.port)); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", op, "http server")

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

// Echo exposes the underlying engine for tests.
func (s *Server) Echo() *echo.Echo {
	return s.e
}

// requireAdminPage guards admin page routes. The decision is taken on every
// request; unauthenticated requests are redirected to the login form.
func (s *Server) requireAdminPage(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := s.routers.SessionToken(c)
		if !s.routers.AuthService.IsAuthenticated(c.Request().Context(), token) {
			return c.Redirect(http.StatusFound, "/admin/login")
		}

		return next(c)
	}
}

// redirectIfAuthenticated keeps logged-in admins off the login form.
func (s *Server) redirectIfAuthenticated(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := s.routers.SessionToken(c)
		if s.routers.AuthService.IsAuthenticated(c.Request().Context(), token) {
			return c.Redirect(http.StatusFound, "/admin/photos")
		}

		return next(c)
	}
}

// requireAdminAPI guards the JSON admin API; it answers 401 instead of
// redirecting.
func (s *Server) requireAdminAPI(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := s.routers.SessionToken(c)
		if !s.routers.AuthService.IsAuthenticated(c.Request().Context(), token) {
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationRequired)
		}

		return next(c)
	}
}

func (s *Server) BuildRouters() {
	s.e.GET("/", s.routers.Gallery)

	// The local bucket is served directly; a hosted deployment would point
	// storage.base_url at the object store instead.
	s.e.Static("/storage", s.storageDir)

	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	swagger := s.e.Group("/swag")
	{
		swagger.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	admin := s.e.Group("/admin")
	{
		admin.GET("/login", s.routers.LoginPage, s.redirectIfAuthenticated)
		admin.POST("/login", s.routers.Login)
		admin.POST("/logout", s.routers.Logout)
		admin.GET("/photos", s.routers.AdminPhotosPage, s.requireAdminPage)
	}

	api := s.e.Group("/api/v1")
	{
		api.GET("/photos", s.routers.ListPublicPhotos)

		adminAPI := api.Group("/admin", s.requireAdminAPI)
		{
			adminAPI.GET("/photos", s.routers.ListAdminPhotos)
			adminAPI.POST("/photos", s.routers.UploadPhoto)
			adminAPI.PATCH("/photos/:id", s.routers.UpdatePhoto)
			adminAPI.DELETE("/photos/:id", s.routers.DeletePhoto)
		}
	}
}
