// Package gateway implements the request handling behind the /v1 endpoints:
// resolve a model name through the registry, acquire the handle from the
// class manager, and translate through the inference adapter.
//
// Every error returned by a Gateway method implements StatusCode() so the
// HTTP layer can map it without knowing the taxonomy.
package gateway
