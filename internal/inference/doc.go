// Package inference translates between the OpenAI request/response schema
// and the native calling convention of loaded model handles.
package inference
