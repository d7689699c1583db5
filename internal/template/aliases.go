package template

import (
	"fmt"
	"strings"
)

// Canonical token names.
const (
	TokenComPort1 = "comport1"
	TokenComPort2 = "comport2"
	TokenUsername = "username"
	TokenPassword = "password"
	TokenOpco     = "opco"
	TokenProgram  = "program"
	TokenWorkDir  = "wd"
)

// CanonicalTokens lists the canonical token names in display order.
var CanonicalTokens = []string{
	TokenComPort1,
	TokenComPort2,
	TokenUsername,
	TokenPassword,
	TokenOpco,
	TokenProgram,
	TokenWorkDir,
}

// AliasProfile selects which historical FIELDn mapping is in effect.
// The two lineages conflict, so exactly one applies per expander.
type AliasProfile string

const (
	// ProfileCredentials maps FIELD3..FIELD6 onto username, password, opco, program.
	ProfileCredentials AliasProfile = "credentials"
	// ProfilePorts maps FIELD3..FIELD6 onto comport1, comport2, username, password.
	ProfilePorts AliasProfile = "ports"
)

// Keys are upper case; lookups upper-case the token first.
var (
	credentialAliases = map[string]string{
		"COM1":   TokenComPort1,
		"COM2":   TokenComPort2,
		"FIELD3": TokenUsername,
		"FIELD4": TokenPassword,
		"FIELD5": TokenOpco,
		"FIELD6": TokenProgram,
		"WD":     TokenWorkDir,
	}

	portAliases = map[string]string{
		"COM1":   TokenComPort1,
		"COM2":   TokenComPort2,
		"FIELD3": TokenComPort1,
		"FIELD4": TokenComPort2,
		"FIELD5": TokenUsername,
		"FIELD6": TokenPassword,
		"WD":     TokenWorkDir,
	}
)

// ParseAliasProfile converts a config value into an AliasProfile.
// An empty string selects ProfileCredentials.
func ParseAliasProfile(s string) (AliasProfile, error) {
	switch AliasProfile(strings.ToLower(strings.TrimSpace(s))) {
	case "", ProfileCredentials:
		return ProfileCredentials, nil
	case ProfilePorts:
		return ProfilePorts, nil
	default:
		return "", fmt.Errorf("unknown field alias profile %q (expected %q or %q)", s, ProfileCredentials, ProfilePorts)
	}
}

func aliasTable(p AliasProfile) map[string]string {
	if p == ProfilePorts {
		return portAliases
	}
	return credentialAliases
}

// canonical trims a token name and maps it through the alias table.
// Names without an alias are lower-cased.
func canonical(aliases map[string]string, token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if mapped, ok := aliases[strings.ToUpper(token)]; ok {
		return mapped
	}
	return strings.ToLower(token)
}
