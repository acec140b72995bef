/*
Package handoffsdk is the client side of the handoff service.

The portal requests a state handle on behalf of a signed-in user and sends
the browser to the destination application with it:

	client := handoffsdk.NewClient("https://handoff.example.com")
	state, err := client.RequestState(ctx, sessionToken, "analytics-prod")

The destination application redeems the handle exactly once and checks the
token with the secret it shares with the issuer:

	token, err := client.ExchangeState(ctx, stateID)
	if errors.Is(err, handoffsdk.ErrNotFound) {
		// already used or never issued
	}

	v := handoffsdk.NewVerifier("portal-handoff", "analytics-app", secret)
	claims, err := v.Verify(token)

Errors returned by the server are *APIError values and match the
predefined Err* variables by code with errors.Is.
*/
package handoffsdk
