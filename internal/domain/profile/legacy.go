package profile

// LegacyProfile is the customer shape exposed by the public API.
type LegacyProfile struct {
	CustomerID  *int64  `json:"customerId"`
	FullName    *string `json:"fullName"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}

// StringValue returns the value s points to, or "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
