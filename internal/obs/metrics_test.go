package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                            "/",
		"/metrics":                    "/metrics",
		"/api/products":               "/api/products",
		"/api/products/42":            "/api/products/:id",
		"/api/products/42?x=1":        "/api/products/:id",
		"/api/products/42/extra":      "/api/products/42/extra",
		"/api/auth/login":             "/api/auth/login",
		"/api/payments/webhook":       "/api/payments/webhook",
		"/api/products?sort_by=price": "/api/products",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
