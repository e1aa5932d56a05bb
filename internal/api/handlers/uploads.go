package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/zatekoja/phr/backend/internal/domain/entities"
)

var (
	errNoFile       = errors.New("no file provided")
	errNoFileChosen = errors.New("no file selected")
	errFileTooLarge = errors.New("file too large")
)

// readUpload reads one multipart file field into memory
func readUpload(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (entities.Upload, error) {
	if r.ContentLength > maxBytes {
		return entities.Upload{}, errFileTooLarge
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return entities.Upload{}, errFileTooLarge
		}
		return entities.Upload{}, errNoFile
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return entities.Upload{}, errNoFile
	}
	defer file.Close()

	if header.Filename == "" {
		return entities.Upload{}, errNoFileChosen
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return entities.Upload{}, err
	}

	return entities.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// respondWithUploadError writes the response for a failed readUpload
func respondWithUploadError(w http.ResponseWriter, err error, missing string) {
	switch {
	case errors.Is(err, errNoFile):
		respondWithError(w, http.StatusBadRequest, missing)
	case errors.Is(err, errNoFileChosen):
		respondWithError(w, http.StatusBadRequest, "No file selected")
	case errors.Is(err, errFileTooLarge):
		respondWithError(w, http.StatusRequestEntityTooLarge, "File too large")
	default:
		respondWithError(w, http.StatusBadRequest, "Invalid upload")
	}
}
