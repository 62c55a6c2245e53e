package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/losalerces/backend/internal/apperr"
	"github.com/losalerces/backend/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateEntity runs struct tags and maps the first failure to a ConstraintViolation.
func validateEntity(entity string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate %s: %w", entity, err)
	}
	fe := verrs[0]
	return apperr.ConstraintViolation(entity, fieldPath(fe), fe.Tag(), fe.Error())
}

// fieldPath drops the root struct name: "Client.Contacts[0].Name" -> "Contacts[0].Name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.StructField()
}

func checkMoney(entity, field string, d decimal.Decimal) error {
	if model.FitsMoneyColumn(d) {
		return nil
	}
	return apperr.ConstraintViolation(entity, field, "max",
		fmt.Sprintf("%s does not fit DECIMAL(%d,%d)", d.String(), model.MoneyPrecision, model.MoneyScale))
}

// translateError maps driver and gorm errors into the apperr taxonomy.
// ErrRecordNotFound is left to the callers, they know the id.
func translateError(entity string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrConstraintViolation),
		errors.Is(err, apperr.ErrValidation):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.ConstraintViolation(entity, "", "unique", err.Error())
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperr.ConstraintViolation(entity, "", "foreign_key", err.Error())
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return apperr.ConstraintViolation(entity, "", "check", err.Error())
	}

	// Not every dialector translates everything; fall back to the message.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"), strings.Contains(msg, "duplicate key"):
		return apperr.ConstraintViolation(entity, "", "unique", err.Error())
	case strings.Contains(msg, "foreign key constraint"):
		return apperr.ConstraintViolation(entity, "", "foreign_key", err.Error())
	case strings.Contains(msg, "not null constraint"), strings.Contains(msg, "violates not-null"):
		return apperr.ConstraintViolation(entity, "", "required", err.Error())
	case strings.Contains(msg, "value too long"), strings.Contains(msg, "numeric field overflow"):
		return apperr.ConstraintViolation(entity, "", "max", err.Error())
	case strings.Contains(msg, "check constraint"):
		return apperr.ConstraintViolation(entity, "", "check", err.Error())
	}
	return fmt.Errorf("%s: %w", strings.ToLower(entity), err)
}
