// Package auth holds everything between a password and an authenticated
// request: argon2id password hashing, JWT issuance/verification and the
// login service that ties both to the user store.
//
// Tokens are stateless on purpose. Verification needs only the shared
// secret, so there is no session table and no way to revoke a token
// before it expires. For this system that trade-off is acceptable:
// lifetimes are short and losing a token just means logging in again.
//
// Because verifying a signature on every request costs real CPU, the
// request filter keeps a small in-memory cache of identities extracted
// from tokens it has already verified. Cached entries remember the
// token expiry and stop being honored at that exact instant.
package auth
