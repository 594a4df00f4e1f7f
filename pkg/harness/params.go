package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parameter names as supplied by the test runner.
const (
	ParamURL             = "Url"
	ParamActorName       = "ActorName"
	ParamUsername        = "Username"
	ParamPassword        = "Password"
	ParamInvalidUser     = "InvalidUser"
	ParamInvalidPassword = "InvalidPassword"
	ParamDisplayUserName = "DisplayUserName"
)

// TestParameters are the named, optional inputs of a UI test run.
// A nil field means the parameter was not supplied; no validation is done.
type TestParameters struct {
	URL             *string `yaml:"Url,omitempty"`
	ActorName       *string `yaml:"ActorName,omitempty"`
	Username        *string `yaml:"Username,omitempty"`
	Password        *string `yaml:"Password,omitempty"`
	InvalidUser     *string `yaml:"InvalidUser,omitempty"`
	InvalidPassword *string `yaml:"InvalidPassword,omitempty"`
	DisplayUserName *string `yaml:"DisplayUserName,omitempty"`
}

// ParametersFromMap builds parameters from runner-style name/value pairs.
// Unknown names are ignored.
func ParametersFromMap(values map[string]string) TestParameters {
	var p TestParameters
	for name, value := range values {
		v := value
		switch name {
		case ParamURL:
			p.URL = &v
		case ParamActorName:
			p.ActorName = &v
		case ParamUsername:
			p.Username = &v
		case ParamPassword:
			p.Password = &v
		case ParamInvalidUser:
			p.InvalidUser = &v
		case ParamInvalidPassword:
			p.InvalidPassword = &v
		case ParamDisplayUserName:
			p.DisplayUserName = &v
		}
	}
	return p
}

// LoadParameters reads parameters from a YAML file such as:
//
//	Url: http://localhost:3000
//	Username: admin
//	Password: secret
func LoadParameters(path string) (TestParameters, error) {
	var p TestParameters

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read parameters file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse parameters file: %w", err)
	}
	return p, nil
}

// Get returns a parameter by runner name and whether it was supplied.
func (p TestParameters) Get(name string) (string, bool) {
	var v *string
	switch name {
	case ParamURL:
		v = p.URL
	case ParamActorName:
		v = p.ActorName
	case ParamUsername:
		v = p.Username
	case ParamPassword:
		v = p.Password
	case ParamInvalidUser:
		v = p.InvalidUser
	case ParamInvalidPassword:
		v = p.InvalidPassword
	case ParamDisplayUserName:
		v = p.DisplayUserName
	}
	if v == nil {
		return "", false
	}
	return *v, true
}

// StringOr returns *s, or fallback when s is nil.
func StringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
