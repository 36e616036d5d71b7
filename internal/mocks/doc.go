// Package mocks provides centralized mock implementations for testing.
//
// The mocks implement the collaborator interfaces of the summarization
// pipeline (the model generator and the cache backend) with function fields
// for custom behavior and call tracking for verification.
//
// Usage:
//
//	import "github.com/phrazzld/summarizer-api/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    gen := mocks.NewMockGeneratorWithResponse("HEADLINE: ...")
//	    backend := &mocks.MockCacheBackend{GetErr: errors.New("connection refused")}
//
//	    // Use the mocks in your test...
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Document any helper methods or special functionality
package mocks
