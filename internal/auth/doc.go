// Package auth issues and verifies the bearer tokens the API accepts.
//
// Tokens are HS256 JWTs. The subject is the technician profile ID and the
// role claim is "technician" or "admin". There is no login flow here:
// tokens come from the identity provider or from `nosteq-core token`.
package auth
