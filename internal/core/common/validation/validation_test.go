package validation_test

import (
	"time"

	errors "github.com/frahmantamala/expense-portal/internal"
	"github.com/frahmantamala/expense-portal/internal/core/common/validation"
	"github.com/shopspring/decimal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func fieldMessages(err *errors.AppError) map[string]string {
	Expect(err).NotTo(BeNil())
	details, ok := err.Details.(errors.ValidationErrors)
	Expect(ok).To(BeTrue())
	return details.FieldMessages()
}

var _ = Describe("ValidationBuilder", func() {
	It("passes when every rule holds", func() {
		v := validation.NewValidator()
		v.Field("merchant", "Cloudflare Cafe").Required("", "").MinLength(2, "", "")
		v.Field("amount", "25.50").Positive("", "")
		Expect(v.Validate()).To(BeNil())
	})

	It("reports only the first failing rule per field", func() {
		v := validation.NewValidator()
		v.Field("merchant", "").
			Required("Merchant is required.", errors.ErrCodeInvalidMerchant).
			MinLength(2, "Too short.", errors.ErrCodeInvalidMerchant)

		err := v.Validate()

		Expect(err.Code).To(Equal(errors.ErrCodeValidationFailed))
		Expect(fieldMessages(err)).To(Equal(map[string]string{"merchant": "Merchant is required."}))
	})

	It("collects failures across fields", func() {
		v := validation.NewValidator()
		v.Field("merchant", "X").MinLength(2, "Too short.", errors.ErrCodeInvalidMerchant)
		v.Field("category", "Food").OneOf([]string{"Meals", "Travel"}, "Pick one.", errors.ErrCodeInvalidCategory)
		v.Field("description", "fine").MaxLength(10, "", "")

		Expect(fieldMessages(v.Validate())).To(Equal(map[string]string{
			"merchant": "Too short.",
			"category": "Pick one.",
		}))
	})

	It("counts characters, not bytes", func() {
		v := validation.NewValidator()
		v.Field("merchant", "Ö").MinLength(2, "Too short.", "")
		v.Field("description", "ééé").MaxLength(3, "Too long.", "")

		Expect(fieldMessages(v.Validate())).To(Equal(map[string]string{"merchant": "Too short."}))
	})

	DescribeTable("Positive",
		func(value interface{}, ok bool) {
			v := validation.NewValidator()
			v.Field("amount", value).Positive("Amount must be a positive number.", errors.ErrCodeInvalidAmount)
			if ok {
				Expect(v.Validate()).To(BeNil())
			} else {
				Expect(fieldMessages(v.Validate())).To(HaveKey("amount"))
			}
		},
		Entry("positive string", "0.01", true),
		Entry("decimal", decimal.NewFromInt(3), true),
		Entry("zero", "0", false),
		Entry("negative", "-4", false),
		Entry("not a number", "abc", false),
		Entry("empty", "", false),
		Entry("nil decimal pointer", (*decimal.Decimal)(nil), false),
		Entry("unsupported type", 12, false),
	)

	It("treats a zero time as missing", func() {
		v := validation.NewValidator()
		v.Field("date", time.Time{}).Required("A date is required.", errors.ErrCodeDateRequired)
		Expect(fieldMessages(v.Validate())).To(Equal(map[string]string{"date": "A date is required."}))
	})

	It("runs custom rules", func() {
		v := validation.NewValidator()
		v.Field("date", "2024-02-30").Custom(func(interface{}) *errors.AppError {
			return errors.NewValidationFieldError("date", "That's not a valid date.", errors.ErrCodeInvalidDate)
		})
		Expect(fieldMessages(v.Validate())).To(Equal(map[string]string{"date": "That's not a valid date."}))
	})

	It("lets an earlier custom rule win over Required", func() {
		refused := func(interface{}) *errors.AppError {
			return errors.NewValidationFieldError("date", "That's not a valid date.", errors.ErrCodeDateOutOfRange)
		}
		v := validation.NewValidator()
		v.Field("date", time.Time{}).
			Custom(refused).
			Required("A date is required.", errors.ErrCodeDateRequired)
		Expect(fieldMessages(v.Validate())).To(Equal(map[string]string{"date": "That's not a valid date."}))
	})
})
