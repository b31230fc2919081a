// Package spies provides observability test doubles: a logger spy and a
// metrics collector spy that capture calls for inspection in tests.
package spies
