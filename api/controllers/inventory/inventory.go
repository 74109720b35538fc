package inventory

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/wholesale-backoffice/api/responses"
	"github.com/angelmondragon/wholesale-backoffice/api/validators"
	internalinventory "github.com/angelmondragon/wholesale-backoffice/internal/inventory"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
	"github.com/angelmondragon/wholesale-backoffice/pkg/pagination"
)

const (
	maxDescriptionLen = 2000
	maxSearchLen      = 120
)

// List returns admin items filtered by provider, category, low stock and a name search.
func List(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, params, ok := parseListQuery(w, r, logg)
		if !ok {
			return
		}
		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// LowStock is List pinned to items at or under their alert threshold.
func LowStock(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, params, ok := parseListQuery(w, r, logg)
		if !ok {
			return
		}
		filters.LowStockOnly = true
		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func Detail(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemIDParam(w, r, logg)
		if !ok {
			return
		}
		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func Create(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input internalinventory.CreateItemInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Description = validators.SanitizeOptional(input.Description, maxDescriptionLen)

		item, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func Update(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemIDParam(w, r, logg)
		if !ok {
			return
		}
		var input internalinventory.UpdateItemInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Description = validators.SanitizeOptional(input.Description, maxDescriptionLen)

		item, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func Delete(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemIDParam(w, r, logg)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// Adjust applies a manual stock correction. A negative delta that overdraws the
// item still succeeds and carries the shortfall as a warning.
func Adjust(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemIDParam(w, r, logg)
		if !ok {
			return
		}
		var input internalinventory.AdjustStockInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.AdjustStock(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var warnings []internalinventory.StockWarning
		if result.Warning != nil {
			warnings = append(warnings, *result.Warning)
		}
		responses.WriteSuccessWithWarnings(w, http.StatusOK, result, warnings)
	}
}

func parseListQuery(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (internalinventory.ListFilters, pagination.Params, bool) {
	var filters internalinventory.ListFilters
	params, err := validators.ParsePagination(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return filters, params, false
	}
	if filters.ProviderID, err = validators.ParseQueryUUID(r, "provider_id"); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return filters, params, false
	}
	if filters.CategoryID, err = validators.ParseQueryUUID(r, "category_id"); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return filters, params, false
	}
	if filters.LowStockOnly, err = validators.ParseQueryBool(r, "low_stock"); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return filters, params, false
	}
	filters.Query = validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLen)
	return filters, params, true
}

func itemIDParam(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	id, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, false
	}
	return id, true
}
