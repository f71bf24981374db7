package netaxept

import (
	"errors"
	"fmt"
	"strings"
)

type Environment int

const (
	Test Environment = iota
	Production
)

const (
	testBaseURL       = "https://test.epayment.nets.eu"
	productionBaseURL = "https://epayment.nets.eu"
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return fmt.Sprintf("Environment(%d)", int(e))
	}
}

// BaseURL is the gateway root for the environment.
func (e Environment) BaseURL() string {
	if e == Production {
		return productionBaseURL
	}
	return testBaseURL
}

func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "test", "sandbox":
		return Test, nil
	case "production", "prod", "live":
		return Production, nil
	default:
		return Test, fmt.Errorf("unknown netaxept environment %q", s)
	}
}

// Credentials identify the merchant towards the gateway. The zero value is not
// usable; build one with NewCredentials.
type Credentials struct {
	merchantID  string
	token       string
	environment Environment
	baseURL     string
}

func NewCredentials(merchantID, token string, env Environment) (Credentials, error) {
	if merchantID == "" {
		return Credentials{}, errors.New("netaxept: merchant id is required")
	}
	if token == "" {
		return Credentials{}, errors.New("netaxept: token is required")
	}
	return Credentials{
		merchantID:  merchantID,
		token:       token,
		environment: env,
		baseURL:     env.BaseURL(),
	}, nil
}

// WithBaseURL returns a copy pointing at a different gateway host. It is meant
// for staging proxies and in-process fakes.
func (c Credentials) WithBaseURL(base string) Credentials {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

func (c Credentials) MerchantID() string       { return c.merchantID }
func (c Credentials) Environment() Environment { return c.environment }
func (c Credentials) BaseURL() string          { return c.baseURL }

// String never includes the token.
func (c Credentials) String() string {
	return fmt.Sprintf("merchant=%s env=%s", c.merchantID, c.environment)
}
