package amqp

import "fmt"

// Authentication is a SASL mechanism a client can offer the server during
// connection.start-ok.
type Authentication interface {
	Mechanism() string
	Response() string
}

// PlainAuth is the SASL PLAIN mechanism: a NUL-separated
// authzid\0username\0password response.
type PlainAuth struct {
	Username string
	Password string
}

func (a *PlainAuth) Mechanism() string { return "PLAIN" }
func (a *PlainAuth) Response() string {
	return fmt.Sprintf("\000%s\000%s", a.Username, a.Password)
}

// ExternalAuth is the SASL EXTERNAL mechanism: the credential is supplied
// out-of-band (typically a client TLS certificate), so the response is
// empty.
type ExternalAuth struct{}

func (a *ExternalAuth) Mechanism() string { return "EXTERNAL" }
func (a *ExternalAuth) Response() string  { return "" }

// TokenAuth implements a token-based SASL mechanism (e.g. the OAuth2/JWT
// bearer conventions some brokers expose as "PLAIN"-shaped credentials with
// the password replaced by a bearer token). The mechanism name is
// configurable because brokers disagree on it in practice.
type TokenAuth struct {
	MechanismName string // defaults to "PLAIN" if empty
	Username      string
	Token         string
}

func (a *TokenAuth) Mechanism() string {
	if a.MechanismName != "" {
		return a.MechanismName
	}
	return "PLAIN"
}

func (a *TokenAuth) Response() string {
	return fmt.Sprintf("\000%s\000%s", a.Username, a.Token)
}

// pickSASLMechanism intersects the client's ordered mechanism preference
// list with the server-advertised list, returning the first of the
// client's that the server also offers.
func pickSASLMechanism(client []Authentication, serverMechanisms []string) (Authentication, bool) {
	offered := make(map[string]bool, len(serverMechanisms))
	for _, m := range serverMechanisms {
		offered[m] = true
	}
	for _, auth := range client {
		if offered[auth.Mechanism()] {
			return auth, true
		}
	}
	return nil, false
}
