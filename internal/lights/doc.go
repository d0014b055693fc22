// Package lights provides an HTTP client for a lighting device's settings
// resource.
//
// # Overview
//
// The device exposes a single REST-style resource at <origin>/settings. The
// server is the sole authority for the device configuration; this package
// performs fresh round trips only and keeps no cache.
//
//   - client.go: HTTP client, options, request plumbing
//   - types.go: Settings snapshot, sparse Update, setting keys
//   - errors.go: NetworkError and ParseError
//
// # Client Usage
//
//	client, err := lights.NewClient("http://localhost:8000")
//	if err != nil {
//		return err
//	}
//
//	settings, err := client.FetchSettings(ctx)
//	if err != nil {
//		return err
//	}
//
//	if err := client.WriteSettings(ctx, lights.SetDimmer(0.8)); err != nil {
//		return err
//	}
//
// # Wire Contract
//
//   - GET /settings returns a JSON object with any subset of intensity_mode,
//     current_preset, all_presets and dimmer. Absent keys mean "not reported
//     by this endpoint revision", never "unset", so every Settings field is
//     optional.
//   - POST /settings takes any subset of intensity_mode, current_preset and
//     dimmer. Only the included keys change server-side. The response body is
//     ignored; a non-2xx status is the only failure signal.
//
// Bodies are JSON by default. WithFormEncoding switches writes to
// application/x-www-form-urlencoded for devices that only parse forms.
//
// # Error Handling
//
//   - NetworkError: transport failure, timeout or non-2xx status
//   - ParseError: malformed JSON or a dimmer outside [0,1] on GET
//
// Neither is retried here. Retry policy belongs to the caller.
//
// # Request Handling
//
// Every request carries Accept: application/json, a lumen User-Agent and a
// fresh X-Request-ID that also appears in the debug log. WithRateLimit puts a
// token bucket in front of the device; waiting on it honours the request
// context.
package lights
