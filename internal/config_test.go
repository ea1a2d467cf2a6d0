package internal_test

import (
	"os"
	"time"

	"github.com/frahmantamala/expense-portal/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func setenv(key, value string) {
	prev, had := os.LookupEnv(key)
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(func() {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}

func validConfig() *internal.Config {
	return &internal.Config{
		Server: internal.ServerConfig{
			Port:              8080,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
		},
		API: internal.APIConfig{BaseURL: "http://localhost:3001", Timeout: 10 * time.Second},
		Security: internal.SecurityConfig{
			SessionSecret: "0123456789abcdef0123456789abcdef",
			TokenTTL:      time.Hour,
		},
		UI: internal.UIConfig{Timezone: "UTC"},
	}
}

var _ = Describe("Config", func() {
	It("accepts a complete configuration", func() {
		Expect(validConfig().Validate()).To(Succeed())
	})

	DescribeTable("rejects",
		func(mutate func(*internal.Config), fragment string) {
			cfg := validConfig()
			mutate(cfg)
			Expect(cfg.Validate()).To(MatchError(ContainSubstring(fragment)))
		},
		Entry("a missing API URL", func(c *internal.Config) { c.API.BaseURL = "" }, "base_url is required"),
		Entry("a non-http API URL", func(c *internal.Config) { c.API.BaseURL = "ftp://api" }, "scheme must be http or https"),
		Entry("a short session secret", func(c *internal.Config) { c.Security.SessionSecret = "short" }, "at least 32 characters"),
		Entry("a tiny token ttl", func(c *internal.Config) { c.Security.TokenTTL = time.Second }, "token_ttl"),
		Entry("an invalid port", func(c *internal.Config) { c.Server.Port = 70000 }, "invalid port"),
		Entry("an unknown timezone", func(c *internal.Config) { c.UI.Timezone = "Mars/Olympus" }, "invalid timezone"),
	)

	It("joins every problem into one error", func() {
		cfg := validConfig()
		cfg.API.BaseURL = ""
		cfg.Security.SessionSecret = ""

		err := cfg.Validate()
		Expect(err).To(MatchError(ContainSubstring("api config")))
		Expect(err).To(MatchError(ContainSubstring("security config")))
	})

	It("falls back to defaults for optional values", func() {
		cfg := validConfig()
		Expect(cfg.Security.CookieName()).To(Equal(internal.DefaultSessionCookie))
		Expect(cfg.UI.CurrencyCode()).To(Equal(internal.DefaultCurrency))

		cfg.UI.Timezone = ""
		loc, err := cfg.UI.Location()
		Expect(err).NotTo(HaveOccurred())
		Expect(loc).To(Equal(time.UTC))
	})

	Describe("LoadConfigFromEnv", func() {
		It("reads the environment", func() {
			setenv("EXPENSE_API_URL", "https://api.example.com")
			setenv("EXPENSE_API_TIMEOUT", "3s")
			setenv("EXPENSE_API_VALIDATE_RESPONSES", "true")
			setenv("HTTP_PORT", "9090")
			setenv("UI_CURRENCY", "EUR")

			cfg := internal.LoadConfigFromEnv()

			Expect(cfg.API.BaseURL).To(Equal("https://api.example.com"))
			Expect(cfg.API.Timeout).To(Equal(3 * time.Second))
			Expect(cfg.API.ValidateResponses).To(BeTrue())
			Expect(cfg.Server.Port).To(Equal(9090))
			Expect(cfg.UI.CurrencyCode()).To(Equal("EUR"))
		})

		It("keeps defaults for unparsable values", func() {
			setenv("HTTP_PORT", "eighty")
			setenv("EXPENSE_API_USER_CACHE_TTL", "soon")

			cfg := internal.LoadConfigFromEnv()

			Expect(cfg.Server.Port).To(Equal(8080))
			Expect(cfg.API.UserCacheTTL).To(Equal(time.Minute))
		})
	})
})
