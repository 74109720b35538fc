package providerorders

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/wholesale-backoffice/api/responses"
	"github.com/angelmondragon/wholesale-backoffice/api/validators"
	"github.com/angelmondragon/wholesale-backoffice/internal/restock"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
)

// Planner runs one restock pass on demand.
type Planner interface {
	CheckAndCreateOrders(ctx context.Context) (*restock.Summary, error)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Check runs the restock planner synchronously and returns its summary.
func Check(planner Planner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if planner == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "restock planner unavailable"))
			return
		}
		summary, err := planner.CheckAndCreateOrders(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func List(svc restock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := validators.ParseQueryEnum(r, "status", enums.ParseProviderOrderStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		providerID, err := validators.ParseQueryUUID(r, "provider_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), params, restock.ListFilters{Status: status, ProviderID: providerID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func Detail(svc restock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := providerOrderIDParam(w, r, logg)
		if !ok {
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// UpdateStatus moves a provider order along PENDING, SENT, CONFIRMED, SHIPPED, RECEIVED.
func UpdateStatus(svc restock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := providerOrderIDParam(w, r, logg)
		if !ok {
			return
		}
		var body statusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseProviderOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
				WithDetails(map[string]any{"field": "status"}))
			return
		}
		order, err := svc.UpdateStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func providerOrderIDParam(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	id, err := validators.ParsePathUUID(chi.URLParam(r, "providerOrderId"), "providerOrderId")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, false
	}
	return id, true
}
