package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/dsavchuk/eshop/internal/app"
	"github.com/dsavchuk/eshop/internal/app/handlers"
	"github.com/dsavchuk/eshop/internal/config"
	"github.com/dsavchuk/eshop/internal/jwt-new/jwtmiddleware"
	"github.com/dsavchuk/eshop/internal/lib/imgstore"
	"github.com/dsavchuk/eshop/internal/lib/logger"
	"github.com/dsavchuk/eshop/internal/lib/logger/handlers/urllog"
	"github.com/dsavchuk/eshop/internal/service"
	"github.com/dsavchuk/eshop/internal/storage"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	images, err := imgstore.New(cfg.Images.Path)
	if err != nil {
		log.Error("failed to initialize image store", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize image store"))
	}

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	productRepo := storage.NewProductRepository(application.DB)
	typeRepo := storage.NewTypeRepository(application.DB)
	countryRepo := storage.NewCountryRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	userRepo := storage.NewUserRepository(application.DB)

	productService := service.NewProductService(application.Logger, application.DB, productRepo, typeRepo, countryRepo, images)
	lookupService := service.NewLookupService(application.Logger, typeRepo, countryRepo)
	orderService := service.NewOrderService(application.Logger, application.DB, orderRepo, productRepo)
	userService := service.NewUserService(application.Logger, userRepo, cfg.JWT.TokenTTL)

	// публичные эндпоинты: витрина, справочники, прием заказов, вход
	router.Post("/order", handlers.CreateOrderHandler(application.Logger, orderService))
	router.Get("/shop", handlers.ListProductsHandler(application.Logger, productService))
	router.Get("/shop/alias/{alias}", handlers.GetProductByAliasHandler(application.Logger, productService))
	router.Get("/shop/{id}", handlers.GetProductHandler(application.Logger, productService))
	router.Get("/type", handlers.ListTypesHandler(application.Logger, lookupService))
	router.Get("/country", handlers.ListCountriesHandler(application.Logger, lookupService))
	router.Post("/user/signin", handlers.SignInHandler(application.Logger, userService))
	router.Post("/user/refresh", handlers.RefreshHandler(application.Logger, userService))
	router.Get("/user/{id}", handlers.GetUserHandler(application.Logger, userService))

	// административные эндпоинты за JWT
	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware()
		r.Use(jwtMW)
		r.Put("/order", handlers.UpdateOrderHandler(application.Logger, orderService))
		r.Get("/order", handlers.ListOrdersHandler(application.Logger, orderService))
		r.Post("/shop", handlers.CreateProductHandler(application.Logger, productService))
		r.Patch("/shop/{id}", handlers.UpdateProductHandler(application.Logger, productService))
		r.Delete("/shop/{id}", handlers.DeleteProductHandler(application.Logger, productService))
		r.Post("/type", handlers.CreateTypeHandler(application.Logger, lookupService))
		r.Post("/country", handlers.CreateCountryHandler(application.Logger, lookupService))
		r.Post("/user", handlers.CreateUserHandler(application.Logger, userService))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
