package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/expense-portal/internal"
	"github.com/frahmantamala/expense-portal/internal/auth"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/user"
	"github.com/frahmantamala/expense-portal/internal/transport"
	"github.com/frahmantamala/expense-portal/internal/transport/middleware"
	"github.com/frahmantamala/expense-portal/internal/ui"
	"github.com/frahmantamala/expense-portal/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubParser struct {
	viewers map[string]*auth.Viewer
}

func (p stubParser) Parse(token string) (*auth.Viewer, error) {
	if v, ok := p.viewers[token]; ok {
		return v, nil
	}
	return nil, errors.New("bad token")
}

// captureViewer records the viewer the wrapped handler saw.
func captureViewer(seen **auth.Viewer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen, _ = auth.ViewerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

var _ = Describe("RequestID", func() {
	It("reuses an incoming trace id", func() {
		var seen string
		h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = internal.TraceIDFromContext(r.Context())
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(middleware.TraceHeader, "trace-42")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		Expect(seen).To(Equal("trace-42"))
		Expect(w.Header().Get(middleware.TraceHeader)).To(Equal("trace-42"))
	})

	It("mints one when absent", func() {
		var seen string
		h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = internal.TraceIDFromContext(r.Context())
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(seen).NotTo(BeEmpty())
		Expect(w.Header().Get(middleware.TraceHeader)).To(Equal(seen))
	})
})

var _ = Describe("Viewer", func() {
	var (
		manager *auth.Viewer
		wrap    func(http.Handler) http.Handler
	)

	BeforeEach(func() {
		manager = &auth.Viewer{ID: "m1", Name: "Max Manager", Role: user.RoleManager}
		parser := stubParser{viewers: map[string]*auth.Viewer{"good": manager}}
		wrap = middleware.Viewer(parser, "session", logger.Discard())
	})

	It("reads the session cookie", func() {
		var seen *auth.Viewer
		r := httptest.NewRequest(http.MethodGet, "/expenses", nil)
		r.AddCookie(&http.Cookie{Name: "session", Value: "good"})

		wrap(captureViewer(&seen)).ServeHTTP(httptest.NewRecorder(), r)

		Expect(seen).To(Equal(manager))
	})

	It("prefers a bearer header", func() {
		var seen *auth.Viewer
		r := httptest.NewRequest(http.MethodGet, "/expenses", nil)
		r.Header.Set("Authorization", "Bearer good")
		r.AddCookie(&http.Cookie{Name: "session", Value: "stale"})

		wrap(captureViewer(&seen)).ServeHTTP(httptest.NewRecorder(), r)

		Expect(seen).To(Equal(manager))
	})

	It("continues anonymously on a bad token", func() {
		seen := manager
		r := httptest.NewRequest(http.MethodGet, "/expenses", nil)
		r.AddCookie(&http.Cookie{Name: "session", Value: "forged"})
		w := httptest.NewRecorder()

		wrap(captureViewer(&seen)).ServeHTTP(w, r)

		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(seen).To(BeNil())
	})
})

var _ = Describe("RequireApprover", func() {
	var base *transport.BaseHandler

	BeforeEach(func() {
		renderer, err := ui.NewRenderer(time.UTC, "USD")
		Expect(err).NotTo(HaveOccurred())
		base = transport.NewBaseHandler(logger.Discard(), renderer, transport.NewFlash(false, logger.Discard()))
	})

	serve := func(v *auth.Viewer) *httptest.ResponseRecorder {
		var seen *auth.Viewer
		h := middleware.RequireApprover(base)(captureViewer(&seen))
		r := httptest.NewRequest(http.MethodPost, "/expenses/e1/approve", nil)
		if v != nil {
			r = r.WithContext(auth.ContextWithViewer(r.Context(), v))
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	DescribeTable("access by role",
		func(v *auth.Viewer, status int) {
			Expect(serve(v).Code).To(Equal(status))
		},
		Entry("manager", &auth.Viewer{ID: "m1", Role: user.RoleManager}, http.StatusNoContent),
		Entry("admin", &auth.Viewer{ID: "a1", Role: user.RoleAdmin}, http.StatusNoContent),
		Entry("employee", &auth.Viewer{ID: "u1", Role: user.RoleEmployee}, http.StatusForbidden),
		Entry("anonymous", nil, http.StatusUnauthorized),
	)

	It("raises a toast when refusing", func() {
		w := serve(&auth.Viewer{ID: "u1", Role: user.RoleEmployee})
		Expect(w.Header().Get("HX-Trigger")).To(ContainSubstring("You are not allowed to do that."))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("turns a panic into a 500", func() {
		h := middleware.RecoveryMiddleware(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("kaboom")
		}))
		w := httptest.NewRecorder()

		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(ContainSubstring("Something went wrong"))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("leaves the form body readable for the handler", func() {
		var merchant string
		h := middleware.LoggingMiddleware(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.ParseForm()).To(Succeed())
			merchant = r.PostForm.Get("merchant")
		}))
		r := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader("merchant=Cloudflare+Cafe&session_token=x"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		h.ServeHTTP(httptest.NewRecorder(), r)

		Expect(merchant).To(Equal("Cloudflare Cafe"))
	})
})

var _ = Describe("SecurityHeaders", func() {
	It("sets the configured headers", func() {
		h := middleware.SecurityHeaders(middleware.DefaultHeadersConfig())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		w := httptest.NewRecorder()

		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Header().Get("X-Frame-Options")).To(Equal("DENY"))
		Expect(w.Header().Get("Content-Security-Policy")).To(ContainSubstring("https://unpkg.com"))
		Expect(w.Header().Get("Strict-Transport-Security")).To(BeEmpty())
	})
})
