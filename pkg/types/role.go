package types

// Role is the closed set of account roles. Role strings are embedded in JWT
// claims and stored on the users table; anything outside this set is invalid.
type Role string

const (
	RoleClient Role = "client"
	RoleTrader Role = "trader"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleTrader, RoleAdmin:
		return true
	}
	return false
}

// HomeRoute returns the frontend entry point for a role. Authenticated users
// hitting a route outside their allowed set are redirected here, never to login.
func (r Role) HomeRoute() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleTrader:
		return "/trader/dashboard"
	default:
		return "/client/dashboard"
	}
}

// LoginRoute is where unauthenticated requests are pointed to.
const LoginRoute = "/login"
