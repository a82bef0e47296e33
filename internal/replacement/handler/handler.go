package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/najmulislamnajim/expire-product-api/internal/shared/apperr"
	"github.com/najmulislamnajim/expire-product-api/internal/shared/pagination"
)

// Response is the non-paginated API envelope.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse is the paginated API envelope.
type ListResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       interface{}     `json:"data"`
	Pagination pagination.Meta `json:"pagination"`
}

func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func Paginated(c *gin.Context, message string, data interface{}, meta pagination.Meta) {
	c.JSON(http.StatusOK, ListResponse{Success: true, Message: message, Data: data, Pagination: meta})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Message: message})
}

func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{Success: false, Message: message})
}

func InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Response{Success: false, Message: message})
}

// HandleError maps service errors onto HTTP statuses.
func HandleError(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		BadRequest(c, err.Error())
	case apperr.IsNotFound(err):
		NotFound(c, err.Error())
	default:
		InternalError(c, "Internal server error")
	}
}

func pageParams(c *gin.Context) (page, perPage int, ok bool) {
	page, errPage := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, errPer := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if errPage != nil || errPer != nil || page <= 0 || perPage <= 0 {
		BadRequest(c, "Invalid 'page' or 'per_page'. Must be positive integers.")
		return 0, 0, false
	}
	return page, perPage, true
}
