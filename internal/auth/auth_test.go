package auth_test

import (
	"context"
	"time"

	"github.com/frahmantamala/expense-portal/internal"
	"github.com/frahmantamala/expense-portal/internal/auth"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/user"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const secret = "0123456789abcdef0123456789abcdef"

var _ = Describe("TokenIssuer", func() {
	var (
		now    time.Time
		issuer *auth.TokenIssuer
		viewer auth.Viewer
	)

	BeforeEach(func() {
		now = time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)
		issuer = auth.NewTokenIssuer(secret, time.Hour).WithClock(func() time.Time { return now })
		viewer = auth.Viewer{ID: "m1", Name: "Max Manager", Role: user.RoleManager}
	})

	Context("Issue and Parse", func() {
		It("round-trips the viewer", func() {
			token, err := issuer.Issue(viewer)
			Expect(err).NotTo(HaveOccurred())

			parsed, err := issuer.Parse(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(*parsed).To(Equal(viewer))
		})

		It("tolerates surrounding whitespace", func() {
			token, _ := issuer.Issue(viewer)
			_, err := issuer.Parse("  " + token + "\n")
			Expect(err).NotTo(HaveOccurred())
		})

		It("refuses a viewer without an id", func() {
			_, err := issuer.Issue(auth.Viewer{Name: "Nobody", Role: user.RoleEmployee})
			Expect(err).To(HaveOccurred())
		})

		It("refuses an unknown role", func() {
			_, err := issuer.Issue(auth.Viewer{ID: "x", Role: user.Role("auditor")})
			Expect(err).To(MatchError(ContainSubstring("unknown role")))
		})
	})

	Context("Parse failures", func() {
		It("reports an expired token", func() {
			token, _ := issuer.Issue(viewer)
			now = now.Add(2 * time.Hour)

			_, err := issuer.Parse(token)
			Expect(err).To(MatchError(internal.ErrTokenExpired))
		})

		It("rejects a token signed with another secret", func() {
			other := auth.NewTokenIssuer("fedcba9876543210fedcba9876543210", time.Hour).WithClock(func() time.Time { return now })
			token, _ := other.Issue(viewer)

			_, err := issuer.Parse(token)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("rejects a token from another issuer", func() {
			other := auth.NewTokenIssuer(secret, time.Hour).WithClock(func() time.Time { return now })
			other.Issuer = "someone-else"
			token, _ := other.Issue(viewer)

			_, err := issuer.Parse(token)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("rejects an unsigned token", func() {
			claims := &auth.Claims{
				UserID: "m1",
				Role:   "manager",
				RegisteredClaims: jwt.RegisteredClaims{
					Issuer:    "expense-portal",
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				},
			}
			token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
			Expect(err).NotTo(HaveOccurred())

			_, err = issuer.Parse(token)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("rejects garbage and empty input", func() {
			_, err := issuer.Parse("not-a-token")
			Expect(err).To(MatchError(internal.ErrInvalidToken))

			_, err = issuer.Parse("")
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})
})

var _ = Describe("Viewer", func() {
	DescribeTable("CanApprove",
		func(v *auth.Viewer, expected bool) {
			Expect(v.CanApprove()).To(Equal(expected))
		},
		Entry("employee", &auth.Viewer{ID: "1", Role: user.RoleEmployee}, false),
		Entry("manager", &auth.Viewer{ID: "2", Role: user.RoleManager}, true),
		Entry("admin", &auth.Viewer{ID: "3", Role: user.RoleAdmin}, true),
		Entry("nil viewer", nil, false),
	)

	It("checks membership in a role list", func() {
		v := &auth.Viewer{ID: "2", Role: user.RoleManager}
		Expect(v.HasRole(user.RoleAdmin, user.RoleManager)).To(BeTrue())
		Expect(v.HasRole(user.RoleAdmin)).To(BeFalse())

		var none *auth.Viewer
		Expect(none.HasRole(user.RoleManager)).To(BeFalse())
	})

	It("travels through a context", func() {
		v := &auth.Viewer{ID: "2", Role: user.RoleManager}
		ctx := auth.ContextWithViewer(context.Background(), v)

		got, ok := auth.ViewerFromContext(ctx)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(v))

		_, ok = auth.ViewerFromContext(context.Background())
		Expect(ok).To(BeFalse())
	})
})
