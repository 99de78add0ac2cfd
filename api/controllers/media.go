package controllers

import (
	"net/http"

	"github.com/inkbound/inkbound-backend/api/responses"
	"github.com/inkbound/inkbound-backend/api/validators"
	"github.com/inkbound/inkbound-backend/internal/media"
	"github.com/inkbound/inkbound-backend/pkg/enums"
	pkgerrors "github.com/inkbound/inkbound-backend/pkg/errors"
	"github.com/inkbound/inkbound-backend/pkg/logger"
)

type mediaPresignRequest struct {
	MediaKind string `json:"media_kind" validate:"required"`
	MimeType  string `json:"mime_type" validate:"required"`
	FileName  string `json:"file_name" validate:"required,max=255"`
	SizeBytes int64  `json:"size_bytes" validate:"required,min=1"`
}

// MediaPresignUpload issues a short-lived signed PUT URL so the client can
// upload directly to the bucket.
func MediaPresignUpload(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body mediaPresignRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseMediaKind(body.MediaKind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid media_kind"))
			return
		}

		result, err := svc.PresignUpload(r.Context(), actorID, media.PresignInput{
			Kind:      kind,
			MimeType:  body.MimeType,
			FileName:  body.FileName,
			SizeBytes: body.SizeBytes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
