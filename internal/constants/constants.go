package constants

const (
	HashParamIDToken = "id_token"
	HashParamState   = "state"

	QueryParamNonce        = "nonce"
	QueryParamRedirectURI  = "redirect_uri"
	QueryParamResponseType = "response_type"

	// zkLogin uses the OIDC implicit flow: the id_token comes back
	// in the URL fragment, never through a token endpoint.
	AuthorizationResponseType = "id_token"
)
