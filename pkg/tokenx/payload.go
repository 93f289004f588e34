package tokenx

// Role is the principal role carried inside a token. Only the two values
// below are recognised; anything else fails structural validation.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the recognised roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Kind distinguishes the two token kinds. The kind is fixed at issuance and
// enforced on verification so a refresh token can never stand in for an
// access token.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Identity is the minimal principal shape the rest of the application
// consumes: who the token is for and what they may do.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Payload is the set of claims carried by both token kinds. It is immutable
// once signed; a renewed token is a wholly new payload with fresh iat/exp/jti.
type Payload struct {
	Sub  string `json:"sub"`
	Name string `json:"name"`
	Role Role   `json:"role"`
	Type Kind   `json:"type"`
	Iat  int64  `json:"iat"`
	Exp  int64  `json:"exp"`
	Jti  string `json:"jti"`
}

// Identity projects the payload into the identity shape consumed downstream.
func (p *Payload) Identity() Identity {
	return Identity{ID: p.Sub, Name: p.Name, Role: p.Role}
}

// structurallyValid checks that every required claim is present and the role
// is recognised. jti is traceability-only and deliberately not required.
func (p *Payload) structurallyValid() bool {
	if p.Sub == "" || p.Name == "" {
		return false
	}
	if !p.Role.Valid() {
		return false
	}
	if p.Type != KindAccess && p.Type != KindRefresh {
		return false
	}
	return p.Iat > 0 && p.Exp > 0
}

// header is the forward-compatibility segment at the front of every token.
// Its content is structurally present but never verified.
type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}
