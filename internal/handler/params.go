package handler

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medrex/clinical-api/pkg/errors"
)

// ParseIDParam reads a path parameter as a document id.
func ParseIDParam(c *gin.Context, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, errors.Validation("invalid "+name, errors.FieldError{
			Field:  name,
			Reason: "must be a valid id",
		})
	}
	return id, nil
}
