package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// CartSessionHeader selects the checkout session a cart request acts on
const CartSessionHeader = "X-Cart-Session"

var validate = validator.New()

func init() {
	// decimal.Decimal is validated as a number rather than walked as a struct
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// GetOperatorID extracts the operator ID from the Gin context
func GetOperatorID(c *gin.Context) *uuid.UUID {
	val, exists := c.Get("operator_id")
	if !exists {
		return nil
	}
	operatorID, ok := val.(uuid.UUID)
	if !ok {
		return nil
	}
	return &operatorID
}

// GetBusinessID extracts the business ID from the Gin context
func GetBusinessID(c *gin.Context) uuid.UUID {
	val, exists := c.Get("business_id")
	if !exists {
		return uuid.Nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// identity returns the caller's business and operator or writes a 401
func identity(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	operatorID := GetOperatorID(c)
	businessID := GetBusinessID(c)
	if operatorID == nil || businessID == uuid.Nil {
		response.Unauthorized(c, "User not authenticated")
		return uuid.Nil, uuid.Nil, false
	}
	return businessID, *operatorID, true
}

// cartSession returns the session named by the X-Cart-Session header,
// falling back to one session per operator
func cartSession(c *gin.Context, operatorID uuid.UUID) string {
	if s := strings.TrimSpace(c.GetHeader(CartSessionHeader)); s != "" {
		return s
	}
	return operatorID.String()
}

// pathUUID parses a UUID path parameter or writes a 400
func pathUUID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.BadRequest(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// bindAndValidate binds the JSON body and runs validator tags. It writes the
// error response itself; callers return immediately on false.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			response.BadRequest(c, "Invalid request body")
			return false
		}
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{
				Field:   fe.Field(),
				Message: fe.Field() + " failed " + fe.Tag() + " validation",
			})
		}
		response.ValidationError(c, fields)
		return false
	}
	return true
}

// requireAmount writes a 422 when a money field was omitted
func requireAmount(c *gin.Context, field string, v *decimal.Decimal) bool {
	if v == nil {
		response.ValidationError(c, []apperror.FieldError{{Field: field, Message: field + " is required"}})
		return false
	}
	return true
}
