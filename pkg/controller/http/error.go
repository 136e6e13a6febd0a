package http

import (
	"net/http"

	"github.com/joshua-hq/warroom/pkg/domain/model/errs"
	"github.com/joshua-hq/warroom/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.From(r.Context())

	switch {
	case goerr.HasTag(err, errs.TagValidation):
		logger.Warn("Bad Request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)

	case goerr.HasTag(err, errs.TagSubscription):
		logger.Warn("Subscription Unavailable", "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)

	case goerr.HasTag(err, errs.TagEnrichment):
		logger.Error("Enrichment Failed", "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)

	case goerr.HasTag(err, errs.TagWrite):
		errs.Handle(r.Context(), err)
		http.Error(w, err.Error(), http.StatusInternalServerError)

	default:
		errs.Handle(r.Context(), err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
