package controllers

import (
	"net/http"

	"github.com/angelmondragon/wholesale-backoffice/api/responses"
	"github.com/angelmondragon/wholesale-backoffice/api/validators"
	"github.com/angelmondragon/wholesale-backoffice/internal/ledger"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
)

// ListItemMovements pages an admin item's stock journal, newest first.
func ListItemMovements(journal ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, logg, "itemId")
		if !ok {
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := journal.ListByItem(r.Context(), id, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ListOrderMovements returns every stock change an order caused, oldest first.
// Movements outlive a deleted order.
func ListOrderMovements(journal ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, logg, "orderId")
		if !ok {
			return
		}
		movements, err := journal.ListByOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, movements)
	}
}
