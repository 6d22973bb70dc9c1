package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// MsgInternal replaces the message of 5xx responses in production.
const MsgInternal = "Something went wrong"

// responder is the single place errors become HTTP responses.
type responder struct {
	Production bool
}

func (rs responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, httpx.ErrBadJSON) {
		err = domain.Validation("Invalid request body", nil)
	}

	de := domain.AsError(err)
	status := de.Status
	if status == 0 {
		status = de.Kind.Status()
	}

	body := authsdk.ErrorResponse{
		Success: false,
		Error:   de.Message,
		Fields:  de.Fields,
	}

	if status >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed",
			"status", status,
			"kind", de.Kind.String(),
			"error", err,
		)
		if rs.Production {
			body.Error = MsgInternal
		} else if de.Err != nil {
			body.Detail = de.Err.Error()
		}
	}

	httpx.WriteJSON(w, status, body)
}

// notFound answers every request no route claimed.
func (rs responder) notFound(w http.ResponseWriter, r *http.Request) {
	rs.writeError(w, r, domain.NotFound("Not Found - "+r.URL.RequestURI()))
}
