package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/cart"
	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/checkout"
	"github.com/trezcool/darasa/core/member"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		CartSvc        *cart.Service
		CheckoutSvc    *checkout.Service
		CatalogSvc     *catalog.Service
		MemberSvc      *member.Service
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps   ServerDeps
		app    *echo.Echo
		errCh  chan error
		shutCh chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:   deps,
		app:    echo.New(),
		errCh:  make(chan error, 1),
		shutCh: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerCartAPI(v1, jwt, s.deps.CartSvc, s.deps.Validate)
	registerCheckoutAPI(v1, jwt, s.deps.CheckoutSvc)
	registerCatalogAPI(v1, jwt, s.deps.CatalogSvc)
	registerMemberAPI(v1, jwt, s.deps.MemberSvc)
}

func (s *server) Start() {
	signal.Notify(s.shutCh, os.Interrupt, syscall.SIGTERM)
	s.deps.Logger.Info(fmt.Sprintf("API listening on %s", s.deps.Conf.Server.Address()))
	s.errCh <- s.app.Start(s.deps.Conf.Server.Address())
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errCh
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutCh
}

func (s *server) signalShutdown() {
	s.shutCh <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Darasa API!")
}
