package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/avelar/vidshelf-be/internal/api/respond"
	"github.com/avelar/vidshelf-be/internal/apperr"
	"github.com/avelar/vidshelf-be/internal/storage"
)

const maxUploadSize = 10 << 20 // 10 MiB

// writeServiceError maps a service error onto the response envelope.
// Anything outside the taxonomy is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Unexpected service error")
	}
	respond.Error(w, status, apperr.Message(err))
}

// saveUpload stores the named multipart file and returns the generated asset
// name. A missing file returns an empty name and no error; required-ness is
// the caller's decision.
func saveUpload(r *http.Request, assets *storage.Store, kind, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()
	return assets.Save(kind, header.Filename, file)
}
