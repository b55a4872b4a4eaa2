package httpx

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/apperror"
)

// BindJSON decodes the request body into dst and reports failures as validation errors.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return apperror.Validation(lowerFirst(fe.Field()), fe.Field()+" failed "+fe.Tag()+" validation")
		}
		return apperror.Validation("body", "invalid request body: "+err.Error())
	}
	return nil
}

// ObjectIDParam reads a hex object id path parameter. Malformed ids are reported as
// not found so callers cannot distinguish them from absent records.
func ObjectIDParam(c *gin.Context, name, entity string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound(entity + " not found")
	}
	return id, nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
