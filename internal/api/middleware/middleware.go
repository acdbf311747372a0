package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    int      `json:"code"`
	Details []string `json:"details,omitempty"`
}

// Logger logs every request after it has been served.
func Logger(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()
	chain.ProcessFilter(req, resp)

	log.Info().
		Str("method", req.Request.Method).
		Str("path", req.Request.URL.Path).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("HTTP request")
}

// RecoverPanic turns a handler panic into a 500 response.
func RecoverPanic(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("path", req.Request.URL.Path).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from panic")
			HandleError(resp, errors.New("internal server error"), http.StatusInternalServerError)
		}
	}()
	chain.ProcessFilter(req, resp)
}

// HandleError writes err as an ErrorResponse. Field validation failures are
// listed one per detail.
func HandleError(resp *restful.Response, err error, status int) {
	body := ErrorResponse{
		Error: err.Error(),
		Code:  status,
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		body.Error = "invalid request"
		for _, fe := range verrs {
			body.Details = append(body.Details, fe.Field()+": failed "+fe.Tag())
		}
	}

	if werr := resp.WriteHeaderAndEntity(status, body); werr != nil {
		log.Error().Err(werr).Msg("Failed to write error response")
	}
}
