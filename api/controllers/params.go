package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/wholesale-backoffice/api/responses"
	"github.com/angelmondragon/wholesale-backoffice/api/validators"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
)

func pathUUID(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) (uuid.UUID, bool) {
	id, err := validators.ParsePathUUID(chi.URLParam(r, name), name)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, false
	}
	return id, true
}
