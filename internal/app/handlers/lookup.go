package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dsavchuk/eshop/internal/apperr"
	"github.com/dsavchuk/eshop/internal/service"
)

// LookupRequest — создание записи справочника (тип или страна)
type LookupRequest struct {
	Name string `json:"name" validate:"required"`
}

func CreateTypeHandler(log *slog.Logger, lookupService service.LookupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateTypeHandler"
		logger := log.With(slog.String("op", op))

		var req LookupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, apperr.Validation("Type name not specified"))
			return
		}
		t, err := lookupService.CreateType(r.Context(), req.Name)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, t)
	}
}

func ListTypesHandler(log *slog.Logger, lookupService service.LookupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListTypesHandler"
		logger := log.With(slog.String("op", op))

		involved := r.URL.Query().Get("involved") != ""
		types, err := lookupService.ListTypes(r.Context(), involved)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, types)
	}
}

func CreateCountryHandler(log *slog.Logger, lookupService service.LookupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateCountryHandler"
		logger := log.With(slog.String("op", op))

		var req LookupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, apperr.Validation("Country name not specified"))
			return
		}
		c, err := lookupService.CreateCountry(r.Context(), req.Name)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, c)
	}
}

func ListCountriesHandler(log *slog.Logger, lookupService service.LookupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListCountriesHandler"
		logger := log.With(slog.String("op", op))

		involved := r.URL.Query().Get("involved") != ""
		countries, err := lookupService.ListCountries(r.Context(), involved)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, countries)
	}
}
