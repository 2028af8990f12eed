package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockhive/internal/apperrors"
	"stockhive/internal/models"
	"stockhive/internal/validation"
)

func ptr[T any](v T) *T { return &v }

func TestStruct_CreateProduct(t *testing.T) {
	v := validation.New()

	err := v.Struct(models.CreateProductRequest{Name: "Widget", Price: ptr(9.99), Category: "Tools"})
	assert.NoError(t, err)

	err = v.Struct(models.CreateProductRequest{Name: "Widget", Price: ptr(0.0), Category: "Tools"})
	assert.NoError(t, err, "a zero price is allowed")

	err = v.Struct(models.CreateProductRequest{Name: "Widget", Price: ptr(-5.0), Category: "Tools"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	var vErr *apperrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "price cannot be less than 0", vErr.Fields["price"])
	assert.Equal(t, vErr.Fields["price"], vErr.Message)
}

func TestStruct_ListsEveryViolation(t *testing.T) {
	v := validation.New()

	err := v.Struct(models.CreateProductRequest{Stock: ptr(-1)})
	var vErr *apperrors.ValidationError
	require.True(t, errors.As(err, &vErr))

	assert.Equal(t, "name is required", vErr.Fields["name"])
	assert.Equal(t, "price is required", vErr.Fields["price"])
	assert.Equal(t, "category is required", vErr.Fields["category"])
	assert.Equal(t, "stock cannot be less than 0", vErr.Fields["stock"])
}

func TestStruct_UpdateProduct(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Struct(models.UpdateProductRequest{}))
	assert.NoError(t, v.Struct(models.UpdateProductRequest{Stock: ptr(0)}))

	err := v.Struct(models.UpdateProductRequest{Name: ptr("")})
	var vErr *apperrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "name cannot be empty", vErr.Fields["name"])
}

func TestStruct_Register(t *testing.T) {
	v := validation.New()

	err := v.Struct(models.RegisterRequest{Name: "Alice", Email: "not-an-email", Password: "123"})
	var vErr *apperrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "email must be a valid email address", vErr.Fields["email"])
	assert.Equal(t, "password must be at least 6 characters", vErr.Fields["password"])
}
