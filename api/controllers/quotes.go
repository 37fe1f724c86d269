package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/rental-pricing/api/responses"
	"github.com/angelmondragon/rental-pricing/api/validators"
	"github.com/angelmondragon/rental-pricing/internal/quotes"
	pkgerrors "github.com/angelmondragon/rental-pricing/pkg/errors"
	"github.com/angelmondragon/rental-pricing/pkg/logger"
	"github.com/angelmondragon/rental-pricing/pkg/types"
)

const maxQuoteIDLength = 64

type quoteSearchRequest struct {
	Date      string   `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string   `json:"time" validate:"required,clock"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
}

func (r quoteSearchRequest) toRequest() (quotes.Request, error) {
	date, err := types.ParseDate(r.Date)
	if err != nil {
		return quotes.Request{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed").
			WithDetails(map[string]string{"date": "must be YYYY-MM-DD"})
	}
	tod, err := types.ParseTimeOfDay(r.Time)
	if err != nil {
		return quotes.Request{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed").
			WithDetails(map[string]string{"time": "must be HH:MM or HH:MM:SS"})
	}
	return quotes.Request{
		Date:      date,
		Time:      tod,
		Longitude: *r.Longitude,
		Latitude:  *r.Latitude,
	}, nil
}

type quoteSearchResponse struct {
	Quotes []quotes.Quote `json:"quotes"`
}

// QuoteSearch prices every available product near the requested location.
func QuoteSearch(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		var payload quoteSearchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req, err := payload.toRequest()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		found, err := svc.SearchQuotes(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if found == nil {
			found = []quotes.Quote{}
		}

		responses.WriteSuccess(w, quoteSearchResponse{Quotes: found})
	}
}

// QuoteDetail returns a cached quote with its product policies.
func QuoteDetail(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		quoteID := validators.SanitizeString(chi.URLParam(r, "quoteId"), maxQuoteIDLength)
		if quoteID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "quote id is required"))
			return
		}

		detail, err := svc.GetQuoteDetail(r.Context(), quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}
