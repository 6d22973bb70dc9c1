/*
Package authsdk provides a client SDK for the Gatekeeper authentication service
and the JSON types shared between the service and its clients.

# Overview

The service authenticates users with an email and password and then
recognises them through two parallel proofs: a server-side session named by
a cookie, and a signed JWT returned in the response body and in a "token"
cookie. SDKClient keeps a cookie jar so both travel automatically, and can
optionally send the token as a bearer header for cookie-less callers.

	client, err := authsdk.NewSDKClient("https://auth.example.com")

	// Create an account. The client is now authenticated.
	auth, err := client.Register(ctx, authsdk.RegisterRequest{
		Name:     "Ann",
		Email:    "ann@example.com",
		Password: "Passw0rd!",
	})

	// Later, from a fresh client.
	auth, err = client.Login(ctx, authsdk.LoginRequest{Email: "ann@example.com", Password: "Passw0rd!"})

	me, err := client.Me(ctx)

	err = client.ChangePassword(ctx, authsdk.ChangePasswordRequest{
		CurrentPassword: "Passw0rd!",
		NewPassword:     "N3wPassw0rd!",
	})

	err = client.Logout(ctx)

# Errors

Every non-2xx response is returned as an *APIError carrying the status code
and the server's message:

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		// log in again
	}

# Health

GetLiveness, GetReadiness and Health call /livez, /readyz and /health.
*/
package authsdk
