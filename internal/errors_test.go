package internal_test

import (
	"context"
	"errors"
	"net/http"

	"github.com/frahmantamala/expense-portal/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("keeps sentinels intact when adding a cause", func() {
		cause := errors.New("token is expired")
		err := internal.ErrTokenExpired.WithCause(cause)

		Expect(errors.Is(err, internal.ErrTokenExpired)).To(BeTrue())
		Expect(errors.Is(err, internal.ErrInvalidToken)).To(BeFalse())
		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(internal.ErrTokenExpired.Cause).To(BeNil())
		Expect(err.Error()).To(Equal("Token has expired: token is expired"))
	})

	It("finds an AppError through wrapping", func() {
		wrapped := errors.Join(errors.New("context"), internal.ErrActionInFlight)
		appErr, ok := internal.IsAppError(wrapped)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusConflict))

		_, ok = internal.IsAppError(errors.New("plain"))
		Expect(ok).To(BeFalse())
	})

	It("describes validation failures field by field", func() {
		err := internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: []internal.ValidationError{
				{Field: "merchant", Message: "Merchant name must be at least 2 characters."},
				{Field: "amount", Message: "Amount must be a positive number."},
				{Field: "merchant", Message: "ignored"},
			}})

		details := err.Details.(internal.ValidationErrors)
		Expect(details.FieldMessages()).To(Equal(map[string]string{
			"merchant": "Merchant name must be at least 2 characters.",
			"amount":   "Amount must be a positive number.",
		}))
		Expect(err.Error()).To(Equal("Merchant name must be at least 2 characters."))
	})
})

var _ = Describe("trace context", func() {
	It("stores and reads the trace id", func() {
		ctx := internal.ContextWithTraceID(context.Background(), "trace-1")
		Expect(internal.TraceIDFromContext(ctx)).To(Equal("trace-1"))
		Expect(internal.TraceIDFromContext(context.Background())).To(BeEmpty())
	})
})
