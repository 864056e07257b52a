package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                    "/",
		"/metrics":                            "/metrics",
		"/v1/auth/login":                      "/v1/auth/login",
		"/v1/admin/users":                     "/v1/admin/users",
		"/v1/admin/users/01ABC":               "/v1/admin/users/:id",
		"/v1/admin/users/01ABC/role":          "/v1/admin/users/:id/role",
		"/v1/admin/users/01ABC/active":        "/v1/admin/users/:id/active",
		"/v1/admin/users/01ABC/sessions":      "/v1/admin/users/:id/sessions",
		"/v1/admin/users/01ABC/role?debug=1":  "/v1/admin/users/:id/role",
		"/v1/admin/users/01ABC/role/extra":    "/v1/admin/users/01ABC/role/extra",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
