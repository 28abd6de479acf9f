package controllers

import (
	"fmt"
	"strconv"

	domainErrors "go-wa-dispatch/src/domain/errors"

	"github.com/gin-gonic/gin"
)

type MessageResponse struct {
	Message string `json:"message"`
}

// BindJSON decodes and validates the request body into obj.
func BindJSON(c *gin.Context, obj interface{}) error {
	return c.ShouldBindJSON(obj)
}

// ParamID reads a positive integer path parameter.
func ParamID(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, domainErrors.NewAppError(fmt.Errorf("invalid %s parameter", name), domainErrors.ValidationError)
	}
	return id, nil
}
