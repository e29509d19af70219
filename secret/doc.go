// Package secret resolves credentials referenced from configuration.
//
// A value is first expanded strictly: ${VAR} must exist, $$ is a literal
// dollar. The result is then checked for secret references of the form
//
//	secretref:<provider>:<ref>
//
// either as the whole value or inline ("Bearer secretref:env:TOKEN").
// Two providers ship with the package: "env" reads a variable and "file"
// reads a file such as a mounted container secret.
//
// Resolved values are never logged.
package secret
