package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"
	"github.com/sksmith/print-factory/core"
	"github.com/sksmith/print-factory/core/batch"
	"github.com/sksmith/print-factory/core/material"
	"github.com/sksmith/print-factory/core/product"
)

//--
// Error response payloads & renderers
//--

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string `json:"status"`          // user-level status message
	AppCode    int64  `json:"code,omitempty"`  // application-specific error code
	ErrorText  string `json:"error,omitempty"` // application-level error message, for debugging
}

func (e *ErrResponse) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrConflict(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Conflict.",
		ErrorText:      err.Error(),
	}
}

func ErrUnprocessable(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Invalid state.",
		ErrorText:      err.Error(),
	}
}

var ErrNotFound = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}
var ErrInternalServer = &ErrResponse{
	Err:            nil,
	HTTPStatusCode: http.StatusInternalServerError,
	StatusText:     "Internal server error.",
	ErrorText:      "An internal server error has occurred.",
}

// RenderError maps domain errors onto the wire. Shortfalls and printer
// conflicts are client-resolvable, so they carry the full message; anything
// unrecognized is a 500 with the detail kept out of the response.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	var shortage *material.StockShortageError
	var conflict *batch.PrinterConflictError
	var invalidState *batch.InvalidStateError
	var unknown *batch.UnknownEntityError

	switch {
	case errors.As(err, &shortage):
		Render(w, r, ErrConflict(shortage))
	case errors.As(err, &conflict):
		Render(w, r, ErrConflict(conflict))
	case errors.As(err, &invalidState):
		Render(w, r, ErrUnprocessable(invalidState))
	case errors.As(err, &unknown):
		Render(w, r, &ErrResponse{
			Err:            unknown,
			HTTPStatusCode: http.StatusNotFound,
			StatusText:     "Resource not found.",
			ErrorText:      unknown.Error(),
		})
	case errors.Is(err, product.ErrProductInUse):
		Render(w, r, ErrConflict(err))
	case errors.Is(err, core.ErrNotFound):
		Render(w, r, ErrNotFound)
	default:
		log.Err(err).Send()
		Render(w, r, ErrInternalServer)
	}
}
