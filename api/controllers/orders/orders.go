package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/wholesale-backoffice/api/responses"
	"github.com/angelmondragon/wholesale-backoffice/api/validators"
	internalorders "github.com/angelmondragon/wholesale-backoffice/internal/orders"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
)

const maxNotesLen = 2000

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Create validates and persists a customer order. Short stock does not fail the
// request; the affected lines come back under warnings.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		var input internalorders.CreateOrderInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Notes = validators.SanitizeOptional(input.Notes, maxNotesLen)

		created, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessWithWarnings(w, http.StatusCreated, created.Order, created.Warnings)
	}
}

// List returns a page of orders filtered by status and customer.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := validators.ParseQueryEnum(r, "status", enums.ParseOrderStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := validators.ParseQueryUUID(r, "customer_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.GetAllOrders(r.Context(), params, internalorders.ListFilters{Status: status, CustomerID: customerID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := orderIDParam(w, r, logg)
		if !ok {
			return
		}
		order, err := svc.GetOrderByID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := orderIDParam(w, r, logg)
		if !ok {
			return
		}
		var body statusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
				WithDetails(map[string]any{"field": "status"}))
			return
		}

		order, err := svc.UpdateOrderStatus(r.Context(), orderID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := orderIDParam(w, r, logg)
		if !ok {
			return
		}
		order, err := svc.CancelOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func Delete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := orderIDParam(w, r, logg)
		if !ok {
			return
		}
		if err := svc.DeleteOrder(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": orderID, "deleted": true})
	}
}

// AddItem appends a line to a PENDING order.
func AddItem(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := orderIDParam(w, r, logg)
		if !ok {
			return
		}
		var line internalorders.LineInput
		if err := validators.DecodeJSONBody(r, &line); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.AddItemToOrder(r.Context(), orderID, line)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessWithWarnings(w, http.StatusOK, updated.Order, updated.Warnings)
	}
}

func orderIDParam(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	id, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, false
	}
	return id, true
}
