// Lentera is the API gateway for the Lentera admin dashboard.
//
// It sits between the dashboard frontend and the services it depends on,
// providing:
//   - A single origin that proxies to the app backend, shipping,
//     payment, messaging and webinar services
//   - A uniform response envelope regardless of which upstream answered
//   - Error sanitization so upstream internals never reach the browser
//   - Request auditing and Prometheus metrics
//
// Usage:
//
//	# Start the gateway with the default configuration
//	lentera run
//
//	# Start with a custom configuration file
//	lentera run --config /etc/lentera/config.yaml
//
//	# Show version information
//	lentera version
//
//	# Validate configuration and endpoint descriptors
//	lentera validate
package main

func main() {
	Execute()
}
