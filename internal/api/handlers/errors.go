package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// functionError writes the {error} envelope of the function endpoints. Only
// authentication failures get their own status.
func functionError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	}
	log.Error().Err(err).Str("path", c.FullPath()).Msg("function failed")
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondError maps service errors of the dashboard endpoints to statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := err.Error()
	switch {
	case errors.Is(err, domain.ErrInvalidItem), errors.Is(err, domain.ErrInvalidItemType):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNoItemsFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		message = "internal server error"
	}
	c.JSON(status, gin.H{"error": message})
}

// decodeOptionalJSON decodes the body into dst; an empty body leaves dst as is.
func decodeOptionalJSON(c *gin.Context, dst interface{}) error {
	if c.Request.Body == nil {
		return nil
	}
	err := json.NewDecoder(c.Request.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
